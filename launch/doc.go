// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

// Package launch compiles a security profile into QEMU command-line
// tokens.
//
// The output is an ordered token list meant to be appended to the rest
// of a QEMU invocation (machine, memory, disks). It covers the syscall
// sandbox and the network device for the profile's isolation mode:
//
//	full       -nic none
//	host_only  restricted user-mode NIC named hostonly
//	internal   multicast socket network shared with other VMs
//	tor_only   restricted user-mode NIC whose only way out is a
//	           guestfwd to the host's Tor SOCKS port
//	vpn_only   unrestricted user-mode NIC; the guest runs the tunnel
//	none       no tokens
//	filtered   no tokens; the firewall rule set does the work
//
// When the profile sets a MAC address it is attached to the first
// virtio-net-pci device. Compilation never fails and identifiers are
// passed through verbatim.
package launch
