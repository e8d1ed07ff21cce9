// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package cli implements the harvester command line.

Commands:

  - run: the long-lived daemon (scheduler, first sweep, operator server).
  - sweep: one sweep, then exit.
  - cursor show / cursor set: inspect or override the durable cursor.
  - migrate: apply database migrations and report the schema version.

Every command reads its configuration from the environment; flags only
override what an operator changes per invocation.
*/
package cli

import (
	"github.com/spf13/cobra"

	"github.com/taibuivan/yomira-harvester/internal/platform/constants"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Debug bool
}

// NewRootCommand creates the root command for the harvester CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "harvester",
		Short:         "Incremental harvester for the picacomic catalog",
		Long:          "Walks the remote catalog from the oldest unvisited page toward the newest and stores every item not seen before.",
		Version:       constants.AppVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVar(&opts.Debug, "debug", false, "enable debug logging (overrides DEBUG)")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewSweepCommand(opts))
	cmd.AddCommand(NewCursorCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))

	return cmd
}
