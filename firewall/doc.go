// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

// Package firewall compiles a profile's firewall rules into iptables
// shell commands scoped to one VM interface.
//
// Each profile gets its own chain, named by prefix plus profile name
// ("veil-paranoid"). The compiled program flushes the chain, creates
// it if missing, and appends one command per rule in rule order, so
// re-running the program is idempotent. A rule with direction both
// becomes an inbound command immediately followed by its outbound
// twin.
//
// The commands are shell text: the chain creation step relies on
// "2>/dev/null || true". Callers that exec without a shell use [Split]
// to get an argv, which drops the trailing shell operators.
//
// Nothing here touches the kernel. Applying the output is the caller's
// business.
package firewall
