// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/veil-project/veil/cmd/veil/cli"
	"github.com/veil-project/veil/cmd/veil/commands"
)

func main() {
	if err := run(); err != nil {
		// Commands that already reported the problem (an unknown
		// profile, say) return an ExitError carrying the exit code.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	env := commands.NewEnvironment(cli.NewCommandLogger())
	return commands.Run(env, os.Args[1:])
}
