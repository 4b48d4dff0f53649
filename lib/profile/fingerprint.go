// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package profile

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/veil-project/veil/lib/codec"
)

// Digest is a 32-byte BLAKE3 hash.
type Digest [32]byte

// String returns the lowercase hex encoding of the digest.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// MarshalText encodes the digest as hex, so JSON and CBOR carry it as
// a string.
func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText parses a hex digest.
func (d *Digest) UnmarshalText(text []byte) error {
	parsed, err := ParseDigest(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Short returns the first 12 hex characters, for display.
func (d Digest) Short() string {
	return hex.EncodeToString(d[:6])
}

// ParseDigest parses a 64-character hex string.
func ParseDigest(s string) (Digest, error) {
	var digest Digest
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return digest, fmt.Errorf("parsing digest: %w", err)
	}
	if len(decoded) != len(digest) {
		return digest, fmt.Errorf("digest is %d bytes, want %d", len(decoded), len(digest))
	}
	copy(digest[:], decoded)
	return digest, nil
}

// DomainKey is a 32-byte BLAKE3 key that separates hash domains. Keys
// are ASCII names zero-padded to 32 bytes.
type DomainKey [32]byte

// NewDomainKey pads name into a domain key. Names longer than 32 bytes
// panic; keys are compile-time constants.
func NewDomainKey(name string) DomainKey {
	if len(name) > 32 {
		panic("profile: domain key name longer than 32 bytes: " + name)
	}
	var key DomainKey
	copy(key[:], name)
	return key
}

var profileDomainKey = NewDomainKey("veil.profile")

// KeyedHash computes the BLAKE3 keyed hash of data under key.
func KeyedHash(key DomainKey, data []byte) Digest {
	// NewKeyed only fails on a key of the wrong length.
	hasher, err := blake3.NewKeyed(key[:])
	if err != nil {
		panic("profile: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	var digest Digest
	copy(digest[:], hasher.Sum(nil))
	return digest
}

// Fingerprint hashes the canonical CBOR encoding of the profile. Equal
// profiles produce equal fingerprints no matter how their JSON or YAML
// source was laid out.
func Fingerprint(p *SecurityProfile) (Digest, error) {
	data, err := codec.Marshal(p)
	if err != nil {
		return Digest{}, fmt.Errorf("encoding profile %q: %w", p.Name, err)
	}
	return KeyedHash(profileDomainKey, data), nil
}
