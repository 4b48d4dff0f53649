// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/veil-project/veil/lib/profilestore"
)

// EnvironmentVariable names the config file when --config is absent.
const EnvironmentVariable = "VEIL_CONFIG"

// Color modes for terminal output.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config is the veil command configuration.
type Config struct {
	// Paths configures file locations.
	Paths PathsConfig `yaml:"paths"`

	// Compiler holds defaults for the compile commands. Flags override
	// them.
	Compiler CompilerConfig `yaml:"compiler"`

	// Output configures terminal rendering.
	Output OutputConfig `yaml:"output"`
}

// PathsConfig configures file locations.
type PathsConfig struct {
	// ConfigDir is the base directory for Veil data.
	// Default: <user config dir>/veil
	ConfigDir string `yaml:"config_dir"`

	// ProfilesFile is the profile store document. Empty means
	// security_profiles.json inside ConfigDir.
	ProfilesFile string `yaml:"profiles_file"`
}

// CompilerConfig holds compile defaults.
type CompilerConfig struct {
	// Interface is the VM tap device firewall rules bind to.
	// Default: tap0
	Interface string `yaml:"interface"`

	// ChainPrefix prefixes per-profile iptables chains.
	// Default: veil-
	ChainPrefix string `yaml:"chain_prefix"`

	// SocksPort overrides the profile's Tor SOCKS port. Zero keeps the
	// profile's own.
	SocksPort uint16 `yaml:"socks_port"`
}

// OutputConfig configures terminal rendering.
type OutputConfig struct {
	// Color is auto, always or never. Auto colors only when stdout is
	// a terminal.
	Color string `yaml:"color"`
}

// Default returns the default configuration.
func Default() *Config {
	configDir, err := os.UserConfigDir()
	if err != nil {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}

	return &Config{
		Paths: PathsConfig{
			ConfigDir: filepath.Join(configDir, "veil"),
		},
		Compiler: CompilerConfig{
			Interface:   "tap0",
			ChainPrefix: "veil-",
		},
		Output: OutputConfig{
			Color: ColorAuto,
		},
	}
}

// Load loads the file named by VEIL_CONFIG, or returns Default when the
// variable is unset.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return Default(), nil
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path. Fields the
// file leaves out keep their defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.expandVariables()
	return cfg, nil
}

// ProfilesPath returns the profile store document path.
func (c *Config) ProfilesPath() string {
	if c.Paths.ProfilesFile != "" {
		return c.Paths.ProfilesFile
	}
	return filepath.Join(c.Paths.ConfigDir, profilestore.FileName)
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"VEIL_CONFIG_DIR": c.Paths.ConfigDir,
		"HOME":            os.Getenv("HOME"),
	}

	c.Paths.ConfigDir = expandVars(c.Paths.ConfigDir, vars)
	vars["VEIL_CONFIG_DIR"] = c.Paths.ConfigDir // Update for dependent paths.

	c.Paths.ProfilesFile = expandVars(c.Paths.ProfilesFile, vars)
}

// wordPattern matches values that are pasted into shell commands as a
// single word.
var wordPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns. Provided vars
// win over the environment.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Paths.ConfigDir == "" && c.Paths.ProfilesFile == "" {
		errs = append(errs, fmt.Errorf("paths.config_dir or paths.profiles_file is required"))
	}

	if c.Compiler.Interface == "" {
		errs = append(errs, fmt.Errorf("compiler.interface is required"))
	} else if !wordPattern.MatchString(c.Compiler.Interface) {
		errs = append(errs, fmt.Errorf("compiler.interface %q may only contain letters, digits, '.', '_' and '-'", c.Compiler.Interface))
	}

	if c.Compiler.ChainPrefix == "" {
		errs = append(errs, fmt.Errorf("compiler.chain_prefix is required"))
	} else if !wordPattern.MatchString(c.Compiler.ChainPrefix) {
		errs = append(errs, fmt.Errorf("compiler.chain_prefix %q may only contain letters, digits, '.', '_' and '-'", c.Compiler.ChainPrefix))
	}

	colorValues := []string{ColorAuto, ColorAlways, ColorNever}
	if !contains(colorValues, c.Output.Color) {
		errs = append(errs, fmt.Errorf("output.color must be one of: %v", colorValues))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
