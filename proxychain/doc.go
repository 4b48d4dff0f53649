// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

// Package proxychain renders a profile's proxy configuration as a
// proxychains-ng config file.
//
// The chain is strict: traffic goes through every listed proxy in
// order, primary first, and fails if any hop is down.
package proxychain
