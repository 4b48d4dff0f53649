// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package launch

import (
	"fmt"
	"strings"

	"github.com/veil-project/veil/lib/profile"
)

// NetDevice is the QEMU device model used for every generated NIC.
const NetDevice = "virtio-net-pci"

// DefaultInternalNetworkID names the socket network when a profile in
// internal mode does not set one.
const DefaultInternalNetworkID = "internal"

// Fixed addresses used by the tor_only network.
const (
	// TorGuestAddress is where the guest reaches the forwarded SOCKS
	// port inside the user-mode network.
	TorGuestAddress = "10.0.2.100"

	// InternalMulticastGroup carries internal-mode traffic between VMs.
	InternalMulticastGroup = "230.0.0.1:1234"

	// sshForward exposes guest SSH on host loopback port 2222.
	sshForward = "hostfwd=tcp:127.0.0.1:2222-:22"
)

// Options adjusts compilation.
type Options struct {
	// SocksPort is the host Tor SOCKS port forwarded into tor_only
	// guests. Zero means the profile's effective anonymity port.
	SocksPort uint16
}

// Compile returns the QEMU tokens for p.
func Compile(p *profile.SecurityProfile, options Options) []string {
	builder := newArgBuilder()

	if p.SandboxEnabled {
		builder.add("-sandbox", "on")
	}

	isolation := p.NetworkIsolation
	switch isolation.Mode {
	case profile.IsolationFull:
		builder.add("-nic", "none")

	case profile.IsolationHostOnly:
		builder.addNetwork("hostonly", "user,id=hostonly,restrict=on")

	case profile.IsolationInternal:
		id := isolation.IsolatedNetworkID
		if id == "" {
			id = DefaultInternalNetworkID
		}
		builder.addNetwork(id, fmt.Sprintf("socket,id=%s,mcast=%s", id, InternalMulticastGroup))

	case profile.IsolationTorOnly:
		socksPort := options.SocksPort
		if socksPort == 0 {
			socksPort = p.EffectiveAnonymity().SocksPort
		}
		netdev := []string{"user", "id=tornet", "restrict=on"}
		if isolation.AllowHostAccess {
			netdev = append(netdev, sshForward)
		}
		netdev = append(netdev, fmt.Sprintf("guestfwd=tcp:%s:%d-tcp:127.0.0.1:%d",
			TorGuestAddress, profile.DefaultSocksPort, socksPort))
		builder.addNetwork("tornet", strings.Join(netdev, ","))

	case profile.IsolationVpnOnly:
		builder.addNetwork("vpnnet", "user,id=vpnnet,restrict=off")

	case profile.IsolationNone, profile.IsolationFiltered:
		// Hypervisor defaults.

	default:
		// Unvalidated input; emit no network tokens rather than guess.
	}

	tokens := builder.tokens()
	if isolation.MACAddress != "" {
		tokens = PatchMAC(tokens, isolation.MACAddress)
	}
	return tokens
}

// PatchMAC appends ",mac=<mac>" to the first virtio-net-pci device
// token and returns tokens. Later devices and other tokens are left
// alone. When there is no such device the tokens are returned
// unchanged.
func PatchMAC(tokens []string, mac string) []string {
	for i, token := range tokens {
		if strings.HasPrefix(token, NetDevice) {
			tokens[i] = token + ",mac=" + mac
			break
		}
	}
	return tokens
}

// argBuilder accumulates tokens in order.
type argBuilder struct {
	args []string
}

func newArgBuilder() *argBuilder {
	return &argBuilder{args: []string{}}
}

func (b *argBuilder) add(args ...string) {
	b.args = append(b.args, args...)
}

// addNetwork emits a -netdev backend and the NIC attached to it.
func (b *argBuilder) addNetwork(id, netdev string) {
	b.add("-netdev", netdev, "-device", NetDevice+",netdev="+id)
}

func (b *argBuilder) tokens() []string {
	return b.args
}
