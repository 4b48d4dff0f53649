// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

// Package version provides build version information for the veil
// binary.
//
// Three package-level variables are injected at build time via
// -ldflags -X:
//
//   - [GitCommit] -- short git SHA of the build
//   - [GitDirty] -- "true" if there were uncommitted changes
//   - [BuildTime] -- UTC timestamp of the build
//
// [Version] is set manually for releases. The values default to
// "unknown" / "0.1.0-dev" in development builds and test runs.
//
// Bundles record [Short] so a compiled artifact can be traced back to
// the compiler that produced it.
package version
