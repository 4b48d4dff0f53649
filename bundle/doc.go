// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

// Package bundle compiles one profile with every applicable compiler
// and records the results as a single value.
//
// QEMU arguments and firewall commands are always produced. The torrc
// and transparent-proxy rules appear when the profile routes through
// Tor, the tunnel config when it has a VPN, and the proxychains config
// when it has a proxy.
//
// A bundle carries two digests. ProfileDigest is the fingerprint of
// the input profile. Digest covers the artifacts themselves, so two
// bundles with equal digests configure a VM identically even when
// their profiles differ in fields no compiler reads. [Diff] names the
// artifacts that changed between two bundles.
package bundle
