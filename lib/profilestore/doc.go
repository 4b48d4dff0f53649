// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

// Package profilestore persists named security profiles in a single
// JSON document.
//
// The document is a JSON object mapping profile name to profile,
// written pretty-printed so operators can edit it by hand. Reads go
// through tidwall/jsonc, so hand edits may carry // comments and
// trailing commas. Writes always emit plain JSON.
//
// Every mutation rewrites the whole document atomically: the new
// catalog is encoded in memory, written to a temporary file in the
// same directory, fsynced, and renamed over the old file. A failed
// save leaves both the file and the in-memory catalog as they were.
//
// A [Store] is not safe for concurrent mutation. Callers that share
// one between goroutines must serialize access themselves.
//
// Error kinds:
//
//   - [ErrProfileNotFound]: the name is not in the catalog.
//   - [profile.ErrInvalidProfile]: the profile exists but cannot be
//     used, either on Save or when the file holds a bad entry.
//   - [*PersistenceError]: reading or writing the file failed; when
//     the file exists but does not parse it wraps [ErrCorrupt].
package profilestore
