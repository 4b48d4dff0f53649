// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package profile

import (
	"fmt"
	"strings"
)

// IsolationMode selects the network connectivity strategy for a VM.
type IsolationMode string

const (
	// IsolationNone leaves the hypervisor's default networking in place.
	IsolationNone IsolationMode = "none"
	// IsolationFull removes every network device.
	IsolationFull IsolationMode = "full"
	// IsolationHostOnly gives the guest a restricted user-mode NIC that
	// can reach the host but not the outside world.
	IsolationHostOnly IsolationMode = "host_only"
	// IsolationInternal connects VMs to each other over a multicast
	// socket network and nothing else.
	IsolationInternal IsolationMode = "internal"
	// IsolationFiltered keeps default networking and relies on the
	// firewall rule set.
	IsolationFiltered IsolationMode = "filtered"
	// IsolationTorOnly routes guest egress through the Tor daemon.
	IsolationTorOnly IsolationMode = "tor_only"
	// IsolationVpnOnly gives the guest an unrestricted NIC; the guest
	// runs the tunnel client.
	IsolationVpnOnly IsolationMode = "vpn_only"
)

// IsolationModes lists every isolation mode in declaration order.
var IsolationModes = []IsolationMode{
	IsolationNone,
	IsolationFull,
	IsolationHostOnly,
	IsolationInternal,
	IsolationFiltered,
	IsolationTorOnly,
	IsolationVpnOnly,
}

// Valid reports whether m is one of the known isolation modes.
func (m IsolationMode) Valid() bool {
	for _, known := range IsolationModes {
		if m == known {
			return true
		}
	}
	return false
}

// ParseIsolationMode parses an isolation mode name. It accepts the
// snake_case names ("tor_only") as well as CamelCase ("TorOnly") and
// dashed ("tor-only") spellings, case-insensitively. The empty string
// parses as [IsolationNone].
func ParseIsolationMode(s string) (IsolationMode, error) {
	if s == "" {
		return IsolationNone, nil
	}
	normalized := normalizeEnum(s)
	for _, known := range IsolationModes {
		if normalizeEnum(string(known)) == normalized {
			return known, nil
		}
	}
	return "", fmt.Errorf("unknown isolation mode %q", s)
}

// FirewallAction is the verdict a firewall rule applies.
type FirewallAction string

const (
	ActionAllow FirewallAction = "allow"
	ActionDeny  FirewallAction = "deny"
	ActionDrop  FirewallAction = "drop"
	ActionLog   FirewallAction = "log"
)

// Valid reports whether a is a known firewall action.
func (a FirewallAction) Valid() bool {
	switch a {
	case ActionAllow, ActionDeny, ActionDrop, ActionLog:
		return true
	}
	return false
}

// TrafficDirection is the direction a firewall rule matches, relative
// to the VM's network interface.
type TrafficDirection string

const (
	DirectionInbound  TrafficDirection = "inbound"
	DirectionOutbound TrafficDirection = "outbound"
	// DirectionBoth expands to one inbound and one outbound rule.
	DirectionBoth TrafficDirection = "both"
)

// Valid reports whether d is a known traffic direction.
func (d TrafficDirection) Valid() bool {
	switch d {
	case DirectionInbound, DirectionOutbound, DirectionBoth:
		return true
	}
	return false
}

// VirtualDeviceType identifies the kind of virtual hardware exposed to
// the guest.
type VirtualDeviceType string

const (
	DeviceNetworkAdapter    VirtualDeviceType = "network_adapter"
	DeviceUSBController     VirtualDeviceType = "usb_controller"
	DeviceStorageController VirtualDeviceType = "storage_controller"
	DeviceAudio             VirtualDeviceType = "audio_device"
	DeviceSerialPort        VirtualDeviceType = "serial_port"
	DeviceTPM               VirtualDeviceType = "tpm"
)

// Valid reports whether t is a known device type.
func (t VirtualDeviceType) Valid() bool {
	switch t {
	case DeviceNetworkAdapter, DeviceUSBController, DeviceStorageController,
		DeviceAudio, DeviceSerialPort, DeviceTPM:
		return true
	}
	return false
}

// VpnProvider selects the tunnel client a VPN configuration targets.
type VpnProvider string

const (
	ProviderOpenVPN   VpnProvider = "openvpn"
	ProviderWireGuard VpnProvider = "wireguard"
	ProviderCustom    VpnProvider = "custom"
)

// Valid reports whether p is a known VPN provider.
func (p VpnProvider) Valid() bool {
	switch p {
	case ProviderOpenVPN, ProviderWireGuard, ProviderCustom:
		return true
	}
	return false
}

// VpnProtocol is the transport protocol of a VPN tunnel.
type VpnProtocol string

const (
	ProtocolUDP VpnProtocol = "udp"
	ProtocolTCP VpnProtocol = "tcp"
)

// Valid reports whether p is a known VPN transport protocol.
func (p VpnProtocol) Valid() bool {
	return p == ProtocolUDP || p == ProtocolTCP
}

// ProxyType is the protocol spoken by a proxy hop.
type ProxyType string

const (
	ProxySOCKS4 ProxyType = "socks4"
	ProxySOCKS5 ProxyType = "socks5"
	ProxyHTTP   ProxyType = "http"
	ProxyHTTPS  ProxyType = "https"
)

// Valid reports whether t is a known proxy type.
func (t ProxyType) Valid() bool {
	switch t {
	case ProxySOCKS4, ProxySOCKS5, ProxyHTTP, ProxyHTTPS:
		return true
	}
	return false
}

// canonicalEnum maps s onto the member of known it names under
// normalizeEnum, so "Allow", "WireGuard" and "UsbController" become
// "allow", "wireguard" and "usb_controller". Unrecognized values are
// returned unchanged for validation to report.
func canonicalEnum[T ~string](s T, known ...T) T {
	normalized := normalizeEnum(string(s))
	for _, candidate := range known {
		if normalizeEnum(string(candidate)) == normalized {
			return candidate
		}
	}
	return s
}

// normalizeEnum folds case and drops separators so that "TorOnly",
// "tor_only" and "tor-only" compare equal.
func normalizeEnum(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "_", "")
	return strings.ReplaceAll(s, "-", "")
}
