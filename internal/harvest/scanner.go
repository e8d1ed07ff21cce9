// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package harvest is the incremental scan engine.

A sweep walks the remote catalog from the cursor position toward page 1
(newest items), assembling and storing every item not seen before:

	Idle -> Running -> Idle      (cursor drained)
	Idle -> Running -> Failed -> Idle   (first error; cursor kept on the failing page)

Retry is page-granular and happens across invocations: a failed sweep leaves
the cursor on the page that failed, and the next trigger re-reads that page
in full. Items stored before the failure are skipped by the dedup check.
Overlapping triggers are dropped by an in-process guard, never queued.
*/
package harvest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/taibuivan/yomira-harvester/internal/catalog"
	"github.com/taibuivan/yomira-harvester/internal/platform/apperr"
	"github.com/taibuivan/yomira-harvester/internal/platform/ctxutil"
	"github.com/taibuivan/yomira-harvester/internal/platform/metrics"
	"github.com/taibuivan/yomira-harvester/pkg/pagination"
	"github.com/taibuivan/yomira-harvester/pkg/uuid"
)

// Sweep outcomes reported in logs, metrics and [Status].
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
	OutcomeFatal     = "fatal"
)

// Scanner states.
const (
	StateIdle    = "idle"
	StateRunning = "running"
)

// Status is a point-in-time view of the scanner for operators.
type Status struct {
	State          string     `json:"state"`
	SweepID        string     `json:"sweep_id,omitempty"`
	Cursor         State      `json:"cursor"`
	LastOutcome    string     `json:"last_outcome,omitempty"`
	LastError      string     `json:"last_error,omitempty"`
	LastStartedAt  *time.Time `json:"last_started_at,omitempty"`
	LastFinishedAt *time.Time `json:"last_finished_at,omitempty"`
	SkippedSweeps  int64      `json:"skipped_sweeps"`
	StoredItems    int64      `json:"stored_items"`
}

// Scanner drives sweeps over the remote catalog.
type Scanner struct {
	source    Source
	assembler *Assembler
	gateway   *Gateway
	tracker   *Tracker
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time

	running atomic.Bool
	skipped atomic.Int64
	stored  atomic.Int64

	mu     sync.Mutex
	status Status
}

// NewScanner wires a scanner. The assembler reads from the same source.
func NewScanner(source Source, gateway *Gateway, tracker *Tracker, m *metrics.Metrics, logger *slog.Logger) *Scanner {
	return &Scanner{
		source:    source,
		assembler: NewAssembler(source),
		gateway:   gateway,
		tracker:   tracker,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
		status:    Status{State: StateIdle},
	}
}

// Sweep runs one sweep. It returns [ErrSweepInProgress] without side effects
// other than a skipped event when another sweep is running.
func (scanner *Scanner) Sweep(ctx context.Context) error {
	if err := scanner.acquire(); err != nil {
		return err
	}
	defer scanner.running.Store(false)

	return scanner.run(ctx)
}

// Launch starts one sweep in the background and hands its result to done.
// The single-flight guard is taken before Launch returns, so a busy scanner
// is reported as [ErrSweepInProgress] to the caller instead of to done.
func (scanner *Scanner) Launch(ctx context.Context, done func(error)) error {
	if err := scanner.acquire(); err != nil {
		return err
	}

	go func() {
		err := scanner.run(ctx)
		scanner.running.Store(false)
		if done != nil {
			done(err)
		}
	}()
	return nil
}

// acquire takes the single-flight guard or records a skipped trigger.
func (scanner *Scanner) acquire() error {
	if !scanner.running.CompareAndSwap(false, true) {
		scanner.skipped.Add(1)
		scanner.metrics.IncSkipped()
		scanner.logger.Info("sweep_skipped", slog.String("reason", "sweep already running"))
		return ErrSweepInProgress
	}
	return nil
}

// run executes one sweep while the guard is held.
func (scanner *Scanner) run(ctx context.Context) error {
	sweepID := uuid.New()
	logger := scanner.logger.With(slog.String("sweep_id", sweepID))
	ctx = ctxutil.WithLogger(ctxutil.WithSweepID(ctx, sweepID), logger)

	startedAt := scanner.now()
	scanner.setStatus(func(status *Status) {
		status.State = StateRunning
		status.SweepID = sweepID
		status.LastStartedAt = &startedAt
	})

	logger.Info("sweep_started")

	err := scanner.sweep(ctx)

	finishedAt := scanner.now()
	outcome := OutcomeCompleted
	switch {
	case apperr.IsFatal(err):
		outcome = OutcomeFatal
	case err != nil:
		outcome = OutcomeFailed
	}

	scanner.metrics.ObserveSweep(outcome, finishedAt.Sub(startedAt))
	scanner.setStatus(func(status *Status) {
		status.State = StateIdle
		status.SweepID = ""
		status.LastOutcome = outcome
		status.LastFinishedAt = &finishedAt
		status.LastError = ""
		if err != nil {
			status.LastError = err.Error()
		}
	})

	cursor := scanner.tracker.Snapshot()
	if err != nil {
		logger.Error("sweep_failed",
			slog.String("outcome", outcome),
			slog.String("kind", string(apperr.KindOf(err))),
			slog.Any("cursor", cursor),
			slog.Any("error", err),
		)
		return err
	}

	logger.Info("sweep_completed",
		slog.Any("cursor", cursor),
		slog.Duration("duration", finishedAt.Sub(startedAt)),
	)
	return nil
}

// sweep is the explicit page loop. Every return path persists the cursor.
func (scanner *Scanner) sweep(ctx context.Context) (err error) {
	logger := ctxutil.GetLogger(ctx)

	// The persisted cursor is authoritative at sweep start. A failed load
	// must not be followed by a flush of the stale in-memory value.
	if _, err := scanner.tracker.Load(ctx); err != nil {
		return fmt.Errorf("sweep: %w", err)
	}

	defer func() {
		if flushErr := scanner.tracker.Flush(ctx); flushErr != nil {
			logger.Error("cursor_flush_failed", slog.Any("error", flushErr))
			err = errors.Join(err, flushErr)
		}
	}()

	// The first page reports the current total used for initialisation and reconciliation.
	head, err := scanner.source.Comics(ctx, pagination.FirstPage)
	if err != nil {
		return fmt.Errorf("sweep: read catalog total: %w", err)
	}

	state := scanner.tracker.Update(func(state *State) {
		if state.Initialize(head.Pages) {
			logger.Info("cursor_initialized", slog.Int("total_pages", head.Pages))
			return
		}
		if state.Reconcile(head.Pages) {
			logger.Info("cursor_reconciled", slog.Int("total_pages", head.Pages), slog.Int("position", state.Position))
		}
	})
	if err := scanner.tracker.Flush(ctx); err != nil {
		return err
	}

	for state.Position > 0 {
		position := state.Position

		listing, err := scanner.source.Comics(ctx, position)
		if err != nil {
			return fmt.Errorf("sweep: read catalog page %d: %w", position, err)
		}

		// Growth while walking: the page just read has shifted, so the cursor
		// is re-pointed by reconciliation instead of being decremented.
		grew := listing.Pages > state.LastKnownTotalPages
		if grew {
			state = scanner.tracker.Update(func(state *State) { state.Reconcile(listing.Pages) })
			logger.Info("catalog_grew_during_sweep",
				slog.Int("page", position),
				slog.Int("total_pages", listing.Pages),
				slog.Int("position", state.Position),
			)
		}

		if err := scanner.processPage(ctx, position, listing.Docs); err != nil {
			return err
		}

		if !grew {
			state = scanner.tracker.Update(func(state *State) { state.Advance() })
		}
		if err := scanner.tracker.Flush(ctx); err != nil {
			return err
		}

		scanner.metrics.IncPage()
		logger.Info("page_processed",
			slog.Int("page", position),
			slog.Int("items", len(listing.Docs)),
			slog.Int("next_position", state.Position),
		)
	}

	scanner.tracker.Update(func(state *State) { state.Complete() })
	return nil
}

// processPage stores every unseen item of one page, stopping at the first failure.
func (scanner *Scanner) processPage(ctx context.Context, position int, comics []catalog.Comic) error {
	logger := ctxutil.GetLogger(ctx)

	for index, comic := range comics {
		known, err := scanner.gateway.Exists(ctx, comic.ID)
		if err != nil {
			return fmt.Errorf("sweep: page %d item %d (%s): %w", position, index+1, comic.ID, err)
		}
		if known {
			scanner.metrics.IncItem("known")
			logger.Debug("item_known", slog.String("comic_id", comic.ID))
			continue
		}

		assembled, err := scanner.assembler.Assemble(ctx, comic)
		if err != nil {
			return fmt.Errorf("sweep: page %d item %d (%s): %w", position, index+1, comic.ID, err)
		}

		_, err = scanner.gateway.Store(ctx, assembled)
		if errors.Is(err, ErrAlreadyStored) {
			scanner.metrics.IncItem("known")
			continue
		}
		if err != nil {
			return fmt.Errorf("sweep: page %d item %d (%s): %w", position, index+1, comic.ID, err)
		}

		scanner.stored.Add(1)
	}

	return nil
}

// Running reports whether a sweep is active.
func (scanner *Scanner) Running() bool {
	return scanner.running.Load()
}

// Status returns a snapshot for the operator surface.
func (scanner *Scanner) Status() Status {
	scanner.mu.Lock()
	status := scanner.status
	scanner.mu.Unlock()

	status.Cursor = scanner.tracker.Snapshot()
	status.SkippedSweeps = scanner.skipped.Load()
	status.StoredItems = scanner.stored.Load()
	return status
}

func (scanner *Scanner) setStatus(mutate func(*Status)) {
	scanner.mu.Lock()
	defer scanner.mu.Unlock()
	mutate(&scanner.status)
}
