// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the veil command.
//
// The central type is [Command], which represents a named subcommand with
// optional nested [Command.Subcommands], a [pflag.FlagSet] factory, and a
// Run function. Commands are assembled into a tree in cmd/veil/commands
// and dispatched via [Command.Execute], which handles flag parsing,
// subcommand routing, and structured help output with examples.
//
// When a user types an unknown subcommand or flag, the framework computes
// Levenshtein edit distance against all known names and suggests the
// closest match (threshold: distance <= 3).
//
// [Renderer] styles terminal output. Headings go through lipgloss and
// compiled configuration text through chroma, both only when color is
// enabled; piped output is always plain.
package cli
