// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"github.com/spf13/pflag"

	"github.com/veil-project/veil/cmd/veil/cli"
	"github.com/veil-project/veil/lib/profile"
)

type presetSummary struct {
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Mode        profile.IsolationMode `json:"mode"`
	Fingerprint string                `json:"fingerprint"`
}

func presetsCommand(env *Environment) *cli.Command {
	var outputJSON bool
	return &cli.Command{
		Name:    "presets",
		Summary: "List the built-in profiles",
		Usage:   "veil presets [--json]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("presets", pflag.ContinueOnError)
			flagSet.BoolVar(&outputJSON, "json", false, "output as JSON")
			return flagSet
		},
		Run: func(args []string) error {
			var summaries []presetSummary
			for _, preset := range profile.Presets() {
				digest, err := profile.Fingerprint(preset.Profile)
				if err != nil {
					return err
				}
				summaries = append(summaries, presetSummary{
					Name:        preset.Name,
					Description: preset.Description,
					Mode:        preset.Profile.NetworkIsolation.Mode,
					Fingerprint: digest.Short(),
				})
			}

			renderer, err := env.renderer()
			if err != nil {
				return err
			}
			if outputJSON {
				return renderer.JSON(summaries)
			}
			for _, summary := range summaries {
				renderer.Heading(summary.Name)
				renderer.Note(summary.Description)
				renderer.Field("mode", string(summary.Mode))
				renderer.Field("fingerprint", summary.Fingerprint)
			}
			return nil
		},
	}
}
