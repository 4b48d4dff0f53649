// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

// Package anonymity renders a Tor policy as torrc text.
//
// The generated file always configures the SOCKS, control and DNS
// ports, automatic .onion/.exit address mapping and the virtual address
// range. Transparent proxying, bridges, exit node selection and strict
// nodes are emitted only when the policy asks for them. The circuit
// rotation period closes the file.
//
// The text is deterministic: list order is preserved and nothing is
// read from the environment.
package anonymity
