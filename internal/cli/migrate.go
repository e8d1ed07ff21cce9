// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/taibuivan/yomira-harvester/internal/platform/migration"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup(rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, logger); err != nil {
				return WrapExitError(ExitFailure, "run migrations", err)
			}

			status, err := migration.Version(cfg.DatabaseURL, cfg.MigrationPath, logger)
			if err != nil {
				return WrapExitError(ExitFailure, "read schema version", err)
			}

			logger.Info("schema_version", slog.Uint64("version", uint64(status.Version)), slog.Bool("dirty", status.Dirty))
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dirty=%t)\n", status.Version, status.Dirty)
			return err
		},
	}
}
