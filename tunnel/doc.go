// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

// Package tunnel renders a VPN policy as tunnel-client configuration
// text.
//
// WireGuard output is a wg-quick file and OpenVPN output is a client
// config. Key material is never generated: the WireGuard private and
// public keys and the OpenVPN CA are left as placeholders for the
// operator to fill in. Custom providers get a short stanza pointing at
// the operator's own config file.
package tunnel
