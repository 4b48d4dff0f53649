// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the veil command's settings.
//
// Settings come from one YAML file named by the VEIL_CONFIG
// environment variable or the --config flag. Without either, [Default]
// is used as is; there is no search path and no per-field environment
// override, so the effective settings are always those of exactly one
// file or of the defaults.
//
// Path values may reference ${VAR} or ${VAR:-default}. VEIL_CONFIG_DIR
// expands to the configured config directory, so
//
//	paths:
//	  config_dir: ${HOME}/.veil
//	  profiles_file: ${VEIL_CONFIG_DIR}/profiles.json
//
// keeps the profile store next to the rest of the configuration.
//
// [Config.Validate] reports every problem at once.
package config
