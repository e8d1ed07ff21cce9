// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/taibuivan/yomira-harvester/internal/api"
	"github.com/taibuivan/yomira-harvester/internal/platform/apperr"
	"github.com/taibuivan/yomira-harvester/internal/platform/constants"
	pgstore "github.com/taibuivan/yomira-harvester/internal/platform/postgres"
	"github.com/taibuivan/yomira-harvester/internal/platform/scheduler"
)

// shutdownSignals flush the cursor and stop the daemon.
var shutdownSignals = []os.Signal{
	syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGUSR1, syscall.SIGUSR2,
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the harvester daemon",
		Long: `Run the harvester until a termination signal arrives.

The daemon sweeps once at start and then on every CRON_EXPRESSION activation
in CRON_TIMEZONE. A trigger that fires while a sweep is running is dropped.
On SIGINT, SIGTERM, SIGQUIT, SIGUSR1 or SIGUSR2 the cursor is flushed
before the process exits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDaemon(cmd, rootOpts)
		},
	}
}

/*
runDaemon wires the harvester and blocks until shutdown.

Startup Sequence:

 1. Logger and configuration.
 2. PostgreSQL, migrations, optional Redis, cursor.
 3. Scheduler, operator server, immediate first sweep.
 4. Block on a signal, a fatal sweep error or an operator server failure.
*/
func runDaemon(cmd *cobra.Command, opts *RootOptions) error {
	cfg, logger, err := setup(opts, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	logger.Info("harvester_initializing",
		slog.String("environment", cfg.Environment),
		slog.String("version", constants.AppVersion),
	)

	startupCtx, startupCancel := context.WithTimeout(cmd.Context(), constants.StartupTimeout)
	defer startupCancel()

	h, err := openHarvester(startupCtx, cfg, logger)
	if err != nil {
		return err
	}
	defer h.Close()

	sched, err := scheduler.New(cfg.CronExpression, cfg.CronTimezone, logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "configure schedule", err)
	}

	// Sweeps outlive the trigger that started them; only a signal ends the process.
	sweepCtx := context.WithoutCancel(cmd.Context())
	fatal := make(chan error, 1)
	onDone := func(err error) {
		if apperr.IsFatal(err) {
			select {
			case fatal <- err:
			default:
			}
		}
	}
	launch := func() error { return h.scanner.Launch(sweepCtx, onDone) }

	sched.Register(func() { onDone(h.scanner.Sweep(sweepCtx)) })

	// # Operator Surface
	serverErr := make(chan error, 1)
	var server *api.Server

	if cfg.OpsAddr != "" {
		server = api.NewServer(cfg.OpsAddr, logger, api.Dependencies{
			Scanner: h.scanner,
			Trigger: launch,
			Token:   cfg.OpsToken,
			Records: h.records,
			NextRun: func() time.Time { return sched.Next(time.Now()) },
			Metrics: h.metrics,
			CheckDatabase: func(ctx context.Context) error {
				return pgstore.Ping(ctx, h.pool)
			},
			CheckCache: h.checkRedis(),
		})

		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- err
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, shutdownSignals...)
	defer signal.Stop(quit)

	sched.Start()

	// A busy scanner has already recorded this trigger as skipped.
	_ = launch()

	// Block until a signal, a fatal credential error or a server failure
	var exitErr error
	select {
	case sig := <-quit:
		logger.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-fatal:
		logger.Error("harvester_fatal", slog.Any("error", err))
		exitErr = WrapExitError(ExitFatal, "sweep aborted", err)
	case err := <-serverErr:
		logger.Error("ops_server_failed", slog.Any("error", err))
		exitErr = WrapExitError(ExitFailure, "operator server", err)
	}

	shutdown(h, sched, server, logger)
	return exitErr
}

// shutdown persists the cursor first, then stops the trigger and the operator server.
func shutdown(h *harvester, sched *scheduler.Scheduler, server *api.Server, logger *slog.Logger) {
	flushCtx, flushCancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer flushCancel()

	if err := h.tracker.Flush(flushCtx); err != nil {
		logger.Error("cursor_flush_failed", slog.Any("error", err))
	} else {
		logger.Info("cursor_flushed", slog.Any("cursor", h.tracker.Snapshot()))
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), constants.SignalGracePeriod)
	defer stopCancel()

	if err := sched.Stop(stopCtx); err != nil {
		logger.Warn("scheduler_stop_incomplete", slog.Any("error", err))
	}

	if server != nil {
		if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
			logger.Error("ops_server_shutdown_failed", slog.Any("error", err))
		}
	}

	logger.Info("harvester_stopped")
}
