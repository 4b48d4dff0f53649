// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

// Package profile defines the security profile model that every Veil
// compiler consumes.
//
// A [SecurityProfile] bundles the security posture of one virtual
// machine: whether the hypervisor sandbox is on, how the VM network is
// isolated ([NetworkIsolation]), whether traffic goes through Tor, an
// optional VPN tunnel ([VpnConfig]), an optional proxy chain
// ([ProxyConfig]), an ordered firewall rule set ([FirewallRule]) and an
// ordered virtual device list ([VirtualDevice]). Rule order is
// enforcement priority and is preserved everywhere.
//
// Profiles are treated as immutable values once handed to a compiler.
// [SecurityProfile.Clone] produces an independent deep copy; callers
// that want to change a profile clone it, modify the clone, and save it
// under the same name.
//
// Enumerations are closed string types ([IsolationMode],
// [FirewallAction], [TrafficDirection], ...). Each has a Valid method
// and, where operators type them, a Parse function accepting both the
// snake_case wire names and the CamelCase spellings.
//
// The built-in preset catalog ([Presets]) is a process-wide constant
// table. Every call returns fresh deep copies, so callers cannot mutate
// the catalog.
//
// [SecurityProfile.Validate] aggregates every problem with a profile
// into one error wrapping [ErrInvalidProfile]. Firewall rules that set
// both a single port and a port range are rejected with
// [ErrInvalidRule]; [NewFirewallRule] applies the same check at
// construction time.
//
// [Fingerprint] hashes the deterministic CBOR encoding of a profile
// with BLAKE3, giving a stable identifier for diffing successive
// compilations.
//
// This package depends only on lib/codec.
package profile
