// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec holds Veil's canonical CBOR encoding.
//
// Profiles are stored and exchanged as JSON. CBOR is used only where
// Veil needs a byte-exact canonical form of a value: profile
// fingerprints and bundle digests hash the CBOR encoding, so two
// profiles that are logically equal always hash equal regardless of
// field order or whitespace in the JSON they were read from.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items.
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// Types carry `json` tags only. fxamacker/cbor reads them as a
// fallback, so one tag controls field naming for both formats.
package codec
