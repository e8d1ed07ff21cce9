// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/taibuivan/yomira-harvester/internal/platform/apperr"
	"github.com/taibuivan/yomira-harvester/internal/platform/constants"
)

// NewSweepCommand creates the sweep command.
func NewSweepCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Run one sweep and exit",
		Long: `Run exactly one sweep from the durable cursor and exit.

The exit status is 0 when the cursor drained, 1 when the sweep stopped on a
failure (the cursor stays on the failing page) and 3 when credentials could
not be obtained.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSweepOnce(cmd, rootOpts)
		},
	}
}

func runSweepOnce(cmd *cobra.Command, opts *RootOptions) error {
	cfg, logger, err := setup(opts, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	startupCtx, cancel := context.WithTimeout(cmd.Context(), constants.StartupTimeout)
	defer cancel()

	h, err := openHarvester(startupCtx, cfg, logger)
	if err != nil {
		return err
	}
	defer h.Close()

	if err := h.scanner.Sweep(cmd.Context()); err != nil {
		if apperr.IsFatal(err) {
			return WrapExitError(ExitFatal, "sweep aborted", err)
		}
		return WrapExitError(ExitFailure, "sweep failed", err)
	}

	return nil
}
