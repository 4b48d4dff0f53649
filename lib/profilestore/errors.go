// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package profilestore

import (
	"errors"
	"fmt"
)

// ErrProfileNotFound is returned when a name is in neither the store
// nor, for Resolve, the preset catalog.
var ErrProfileNotFound = errors.New("security profile not found")

// ErrCorrupt marks a store file that exists but cannot be parsed.
var ErrCorrupt = errors.New("profile store is corrupt")

// PersistenceError reports a failed read or write of the store file.
type PersistenceError struct {
	// Op is "read" or "write".
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("profile store %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
