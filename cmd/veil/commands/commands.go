// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the veil command tree.
package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/veil-project/veil/cmd/veil/cli"
	"github.com/veil-project/veil/lib/config"
	"github.com/veil-project/veil/lib/profile"
	"github.com/veil-project/veil/lib/profilestore"
	"github.com/veil-project/veil/lib/version"
)

// Environment carries what every command needs from the process.
type Environment struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	// ConfigPath is the --config value. Empty falls back to
	// VEIL_CONFIG, then to the defaults.
	ConfigPath string

	config *config.Config
}

// NewEnvironment returns an environment bound to the process streams.
func NewEnvironment(logger *slog.Logger) *Environment {
	return &Environment{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Logger: logger,
	}
}

// Root builds the complete command tree.
func Root(env *Environment) *cli.Command {
	return &cli.Command{
		Name: "veil",
		Description: `Veil: VM security profile compiler.

Keeps named security profiles for virtual machines and compiles them
into QEMU arguments, iptables commands, torrc, WireGuard/OpenVPN and
proxychains configuration.`,
		Usage:      "veil [--config <file>] <command> [flags]",
		HelpOutput: env.Stderr,
		Subcommands: []*cli.Command{
			profileCommand(env),
			presetsCommand(env),
			compileCommand(env),
			fingerprintCommand(env),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(args []string) error {
					fmt.Fprintf(env.Stdout, "veil %s\n", version.Full())
					return nil
				},
			},
		},
	}
}

// Run executes the command line in args (without the program name).
func Run(env *Environment, args []string) error {
	configPath, rest, err := splitGlobalFlags(args)
	if err != nil {
		return err
	}
	env.ConfigPath = configPath
	return Root(env).Execute(rest)
}

// splitGlobalFlags consumes a leading --config flag. Only the position
// before the first command word is examined.
func splitGlobalFlags(args []string) (string, []string, error) {
	if len(args) == 0 {
		return "", args, nil
	}
	switch {
	case args[0] == "--config":
		if len(args) < 2 {
			return "", nil, fmt.Errorf("--config requires a file path")
		}
		return args[1], args[2:], nil
	case strings.HasPrefix(args[0], "--config="):
		return strings.TrimPrefix(args[0], "--config="), args[1:], nil
	}
	return "", args, nil
}

// loadConfig loads and validates the configuration once per process.
func (env *Environment) loadConfig() (*config.Config, error) {
	if env.config != nil {
		return env.config, nil
	}

	var cfg *config.Config
	var err error
	if env.ConfigPath != "" {
		cfg, err = config.LoadFile(env.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	env.config = cfg
	return cfg, nil
}

func (env *Environment) renderer() (*cli.Renderer, error) {
	cfg, err := env.loadConfig()
	if err != nil {
		return nil, err
	}
	return cli.NewRenderer(env.Stdout, cfg.Output.Color), nil
}

// openStore opens the configured profile store for mutation.
func (env *Environment) openStore() (*profilestore.Store, error) {
	cfg, err := env.loadConfig()
	if err != nil {
		return nil, err
	}
	return profilestore.Open(cfg.ProfilesPath(), profilestore.Options{Logger: env.Logger})
}

// profileSource resolves profiles for read-only commands.
type profileSource interface {
	Resolve(name string) (*profile.SecurityProfile, error)
	List() []*profile.SecurityProfile
}

// openSource opens the store for reading. A corrupt store degrades to
// the preset catalog with a warning so compile commands keep working.
func (env *Environment) openSource() (profileSource, error) {
	store, err := env.openStore()
	if errors.Is(err, profilestore.ErrCorrupt) {
		if env.Logger != nil {
			env.Logger.Warn("profile store unreadable, using presets only", "error", err)
		}
		return presetSource{}, nil
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}

// presetSource serves the built-in catalog alone.
type presetSource struct{}

func (presetSource) Resolve(name string) (*profile.SecurityProfile, error) {
	if preset, ok := profile.LookupPreset(name); ok {
		return preset.Profile, nil
	}
	return nil, fmt.Errorf("%w: %q", profilestore.ErrProfileNotFound, name)
}

func (presetSource) List() []*profile.SecurityProfile {
	return nil
}

// resolve looks name up and reports a miss with the known names and
// exit code 2.
func (env *Environment) resolve(source profileSource, name string) (*profile.SecurityProfile, error) {
	p, err := source.Resolve(name)
	if errors.Is(err, profilestore.ErrProfileNotFound) {
		fmt.Fprintf(env.Stderr, "unknown profile %q\n", name)
		fmt.Fprintf(env.Stderr, "known profiles: %s\n", strings.Join(knownNames(source), ", "))
		return nil, &cli.ExitError{Code: 2}
	}
	return p, err
}

func knownNames(source profileSource) []string {
	var names []string
	for _, p := range source.List() {
		names = append(names, p.Name)
	}
	for _, preset := range profile.Presets() {
		names = append(names, preset.Name)
	}
	return names
}
