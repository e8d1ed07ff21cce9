// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package scheduler fires the periodic sweep trigger.

It wraps robfig/cron with a fixed parser (optional seconds field plus
descriptors such as @hourly and @every 30m) evaluated in a configured time
zone. Overlap protection belongs to the job: the scanner drops triggers that
arrive while a sweep is running and records them as skipped.
*/
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// parser accepts 5-field, 6-field (leading seconds) and descriptor expressions.
var parser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Scheduler runs a single job on a cron schedule.
type Scheduler struct {
	cron     *cron.Cron
	schedule cron.Schedule
	location *time.Location
	expr     string
	logger   *slog.Logger
}

// Parse validates a cron expression and resolves its time zone.
func Parse(expr, timezone string) (cron.Schedule, *time.Location, error) {
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, nil, fmt.Errorf("scheduler: unknown time zone %q: %w", timezone, err)
	}

	schedule, err := ParseExpression(expr)
	if err != nil {
		return nil, nil, err
	}

	return schedule, location, nil
}

// ParseExpression validates a cron expression on its own.
func ParseExpression(expr string) (cron.Schedule, error) {
	schedule, err := parser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("scheduler: invalid cron expression %q: %w", expr, err)
	}
	return schedule, nil
}

// New builds a scheduler for expr evaluated in timezone.
func New(expr, timezone string, logger *slog.Logger) (*Scheduler, error) {
	schedule, location, err := Parse(expr, timezone)
	if err != nil {
		return nil, err
	}

	c := cron.New(
		cron.WithLocation(location),
		cron.WithParser(parser),
		cron.WithLogger(&cronLogger{logger: logger}),
		cron.WithChain(cron.Recover(&cronLogger{logger: logger})),
	)

	return &Scheduler{
		cron:     c,
		schedule: schedule,
		location: location,
		expr:     expr,
		logger:   logger,
	}, nil
}

// Register adds job to the schedule. It must be called before [Scheduler.Start].
func (s *Scheduler) Register(job func()) {
	s.cron.Schedule(s.schedule, cron.FuncJob(job))
}

// Start begins firing in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler_started",
		slog.String("expression", s.expr),
		slog.String("timezone", s.location.String()),
		slog.Time("next_run", s.Next(time.Now())),
	)
}

// Stop prevents further triggers and waits for a running job, bounded by ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()

	select {
	case <-done.Done():
		s.logger.Info("scheduler_stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler: stop: %w", ctx.Err())
	}
}

// Next reports the first activation strictly after the given instant.
func (s *Scheduler) Next(after time.Time) time.Time {
	return s.schedule.Next(after.In(s.location))
}

// cronLogger adapts cron's logger interface to slog.
type cronLogger struct {
	logger *slog.Logger
}

// Info implements cron.Logger. Cron's own info output is very chatty, so it goes to debug.
func (l *cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron_"+msg, keysAndValues...)
}

// Error implements cron.Logger.
func (l *cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron_"+msg, append([]any{slog.Any("error", err)}, keysAndValues...)...)
}
