// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/veil-project/veil/cmd/veil/cli"
	"github.com/veil-project/veil/lib/profile"
)

func profileCommand(env *Environment) *cli.Command {
	return &cli.Command{
		Name:    "profile",
		Summary: "Manage stored security profiles",
		Subcommands: []*cli.Command{
			profileListCommand(env),
			profileShowCommand(env),
			profileCreateCommand(env),
			profileImportCommand(env),
			profileDeleteCommand(env),
		},
	}
}

// profileSummary is one row of "veil profile list".
type profileSummary struct {
	Name        string                `json:"name"`
	Mode        profile.IsolationMode `json:"mode"`
	Tor         bool                  `json:"tor"`
	VPN         bool                  `json:"vpn"`
	Proxy       bool                  `json:"proxy"`
	Rules       int                   `json:"rules"`
	Fingerprint string                `json:"fingerprint"`
}

func summarize(p *profile.SecurityProfile) (profileSummary, error) {
	digest, err := profile.Fingerprint(p)
	if err != nil {
		return profileSummary{}, err
	}
	return profileSummary{
		Name:        p.Name,
		Mode:        p.NetworkIsolation.Mode,
		Tor:         p.RoutesThroughTor(),
		VPN:         p.VpnConfig != nil,
		Proxy:       p.ProxyConfig != nil,
		Rules:       len(p.FirewallRules),
		Fingerprint: digest.Short(),
	}, nil
}

func profileListCommand(env *Environment) *cli.Command {
	var outputJSON bool
	return &cli.Command{
		Name:    "list",
		Summary: "List stored profiles",
		Usage:   "veil profile list [--json]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("list", pflag.ContinueOnError)
			flagSet.BoolVar(&outputJSON, "json", false, "output as JSON")
			return flagSet
		},
		Run: func(args []string) error {
			store, err := env.openStore()
			if err != nil {
				return err
			}
			summaries := []profileSummary{}
			for _, p := range store.List() {
				summary, err := summarize(p)
				if err != nil {
					return err
				}
				summaries = append(summaries, summary)
			}

			renderer, err := env.renderer()
			if err != nil {
				return err
			}
			if outputJSON {
				return renderer.JSON(summaries)
			}
			if len(summaries) == 0 {
				renderer.Note("No stored profiles. Presets: veil presets")
				return nil
			}
			for _, summary := range summaries {
				renderer.Heading(summary.Name)
				renderer.Field("mode", string(summary.Mode))
				renderer.Field("tor", strconv.FormatBool(summary.Tor))
				renderer.Field("vpn", strconv.FormatBool(summary.VPN))
				renderer.Field("proxy", strconv.FormatBool(summary.Proxy))
				renderer.Field("rules", strconv.Itoa(summary.Rules))
				renderer.Field("fingerprint", summary.Fingerprint)
			}
			return nil
		},
	}
}

func profileShowCommand(env *Environment) *cli.Command {
	var outputJSON bool
	return &cli.Command{
		Name:    "show",
		Summary: "Show a stored profile or preset",
		Usage:   "veil profile show <name> [--json]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("show", pflag.ContinueOnError)
			flagSet.BoolVar(&outputJSON, "json", false, "output as JSON instead of YAML")
			return flagSet
		},
		Run: func(args []string) error {
			if err := cli.RequireArgs(args, 1, "<name>"); err != nil {
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

			renderer, err := env.renderer()
			if err != nil {
				return err
			}
			if outputJSON {
				return renderer.JSON(p)
			}
			data, err := yaml.Marshal(p)
			if err != nil {
				return fmt.Errorf("encoding profile: %w", err)
			}
			return renderer.Highlight(string(data), cli.SyntaxYAML)
		},
	}
}

func profileCreateCommand(env *Environment) *cli.Command {
	var from string
	return &cli.Command{
		Name:    "create",
		Summary: "Create a profile with default settings",
		Usage:   "veil profile create <name> [--from <preset>]",
		Examples: []cli.Example{
			{Description: "Start from the default rule set", Command: "veil profile create workstation"},
			{Description: "Copy a preset under a new name", Command: "veil profile create lab --from pentesting"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("create", pflag.ContinueOnError)
			flagSet.StringVar(&from, "from", "", "copy settings from this preset")
			return flagSet
		},
		Run: func(args []string) error {
			if err := cli.RequireArgs(args, 1, "<name>"); err != nil {
				return err
			}
			name := args[0]
			store, err := env.openStore()
			if err != nil {
				return err
			}

			if from == "" {
				if _, err := store.Create(name); err != nil {
					return err
				}
			} else {
				preset, ok := profile.LookupPreset(from)
				if !ok {
					return fmt.Errorf("unknown preset %q", from)
				}
				if _, err := store.Load(name); err == nil {
					return fmt.Errorf("profile %q already exists", name)
				}
				p := preset.Profile
				p.Name = name
				if err := store.Save(p); err != nil {
					return err
				}
			}
			fmt.Fprintf(env.Stdout, "created profile %q in %s\n", name, store.Path())
			return nil
		},
	}
}

func profileImportCommand(env *Environment) *cli.Command {
	var replace bool
	return &cli.Command{
		Name:    "import",
		Summary: "Import profiles from a YAML document",
		Description: `Import every profile in a YAML document of the form

  profiles:
    <name>:
      <profile fields>

Enum values may use any case and '_' or '-' separators ("TorOnly",
"WireGuard"). Existing profiles are kept unless --replace is given.`,
		Usage: "veil profile import <file.yaml> [--replace]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("import", pflag.ContinueOnError)
			flagSet.BoolVar(&replace, "replace", false, "overwrite profiles that already exist")
			return flagSet
		},
		Run: func(args []string) error {
			if err := cli.RequireArgs(args, 1, "<file.yaml>"); err != nil {
				return err
			}
			profiles, err := profile.LoadDocument(args[0])
			if err != nil {
				return err
			}
			store, err := env.openStore()
			if err != nil {
				return err
			}

			imported := 0
			for _, p := range profiles {
				if _, err := store.Load(p.Name); err == nil && !replace {
					fmt.Fprintf(env.Stderr, "skipping %q: already exists\n", p.Name)
					continue
				}
				if err := store.Save(p); err != nil {
					return err
				}
				imported++
			}
			fmt.Fprintf(env.Stdout, "imported %d of %d profile(s)\n", imported, len(profiles))
			return nil
		},
	}
}

func profileDeleteCommand(env *Environment) *cli.Command {
	return &cli.Command{
		Name:    "delete",
		Summary: "Delete a stored profile",
		Usage:   "veil profile delete <name>",
		Run: func(args []string) error {
			if err := cli.RequireArgs(args, 1, "<name>"); err != nil {
				return err
			}
			name := args[0]
			store, err := env.openStore()
			if err != nil {
				return err
			}
			if err := store.Delete(name); err != nil {
				if profile.IsPreset(name) {
					return fmt.Errorf("%w (built-in presets cannot be deleted)", err)
				}
				return err
			}
			fmt.Fprintf(env.Stdout, "deleted profile %q\n", name)
			return nil
		},
	}
}
