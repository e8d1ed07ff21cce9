// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command harvester is the entry point of the incremental catalog harvester.
//
// No business logic lives here. Commands and wiring live in internal/cli.
package main

import (
	"fmt"
	"os"

	"github.com/taibuivan/yomira-harvester/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "harvester:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
