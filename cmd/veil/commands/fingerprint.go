// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/veil-project/veil/cmd/veil/cli"
	"github.com/veil-project/veil/lib/codec"
	"github.com/veil-project/veil/lib/profile"
)

func fingerprintCommand(env *Environment) *cli.Command {
	var diagnose bool
	return &cli.Command{
		Name:    "fingerprint",
		Summary: "Print a profile's content fingerprint",
		Description: `Print the BLAKE3 fingerprint of a profile's canonical CBOR encoding.
Two profiles with the same fingerprint compile to the same output.`,
		Usage: "veil fingerprint <profile> [--diagnose]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("fingerprint", pflag.ContinueOnError)
			flagSet.BoolVar(&diagnose, "diagnose", false, "also print the encoding in CBOR diagnostic notation")
			return flagSet
		},
		Run: func(args []string) error {
			if err := cli.RequireArgs(args, 1, "<profile>"); err != nil {
				return err
			}
			source, err := env.openSource()
			if err != nil {
				return err
			}
			p, err := env.resolve(source, args[0])
			if err != nil {
				return err
			}

			digest, err := profile.Fingerprint(p)
			if err != nil {
				return err
			}
			fmt.Fprintln(env.Stdout, digest)

			if diagnose {
				encoded, err := codec.Marshal(p)
				if err != nil {
					return err
				}
				notation, err := codec.Diagnose(encoded)
				if err != nil {
					return err
				}
				fmt.Fprintln(env.Stdout, notation)
			}
			return nil
		},
	}
}
