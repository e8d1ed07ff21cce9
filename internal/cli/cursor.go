// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/taibuivan/yomira-harvester/internal/harvest"
	"github.com/taibuivan/yomira-harvester/internal/platform/constants"
)

// CursorSetOptions holds flags for the cursor set command.
type CursorSetOptions struct {
	*RootOptions
	Position int
	Total    int
}

// NewCursorCommand creates the cursor command group.
func NewCursorCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cursor",
		Short: "Inspect or override the durable cursor",
	}

	cmd.AddCommand(newCursorShowCommand(rootOpts))
	cmd.AddCommand(newCursorSetCommand(rootOpts))

	return cmd
}

func newCursorShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the durable cursor as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tracker, closeStore, err := openTracker(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer closeStore()

			state, err := tracker.Load(cmd.Context())
			if err != nil {
				return WrapExitError(ExitFailure, "load cursor", err)
			}

			return writeState(cmd, state)
		},
	}
}

func newCursorSetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CursorSetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Overwrite the durable cursor",
		Long: `Overwrite the durable cursor.

The position must lie within [0, total]. Do not run this while the daemon is
sweeping; the daemon persists its own cursor after every page.

Example:
  harvester cursor set --position 40 --total 120`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tracker, closeStore, err := openTracker(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer closeStore()

			state := harvest.State{Position: opts.Position, LastKnownTotalPages: opts.Total}
			if err := tracker.Override(cmd.Context(), state); err != nil {
				return WrapExitError(ExitCommandError, "set cursor", err)
			}

			slog.Info("cursor_overridden",
				slog.Int("position", state.Position),
				slog.Int("last_total_pages", state.LastKnownTotalPages),
			)

			return writeState(cmd, state)
		},
	}

	cmd.Flags().IntVar(&opts.Position, "position", 0, "catalog page the next sweep starts from")
	cmd.Flags().IntVar(&opts.Total, "total", 0, "catalog page count the position refers to")
	_ = cmd.MarkFlagRequired("position")
	_ = cmd.MarkFlagRequired("total")

	return cmd
}

// openTracker builds a tracker over the configured cursor store only.
func openTracker(cmd *cobra.Command, opts *RootOptions) (*harvest.Tracker, func(), error) {
	cfg, logger, err := setup(opts, cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), constants.StartupTimeout)
	defer cancel()

	client, err := openRedis(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	closeStore := func() {
		if client != nil {
			_ = client.Close()
		}
	}

	return harvest.NewTracker(newCursorStore(cfg, client), nil), closeStore, nil
}

func writeState(cmd *cobra.Command, state harvest.State) error {
	encoded, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode cursor: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
	return err
}
