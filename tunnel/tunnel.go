// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package tunnel

import (
	"fmt"
	"strings"

	"github.com/veil-project/veil/lib/profile"
)

// Placeholders the operator replaces before use.
const (
	PrivateKeyPlaceholder      = "<YOUR_PRIVATE_KEY>"
	ServerPublicKeyPlaceholder = "<SERVER_PUBLIC_KEY>"
)

// DefaultServer is used when the policy names no server.
const DefaultServer = "vpn.example.com"

// Fixed WireGuard interface settings.
const (
	wireguardAddress    = "10.0.0.2/24"
	leakProtectionDNS   = "1.1.1.1"
	persistentKeepalive = 25
)

// killSwitchRule rejects any egress that neither leaves through the
// tunnel nor carries WireGuard's fwmark. %i is expanded by wg-quick.
const killSwitchRule = "OUTPUT ! -o %i -m mark ! --mark $(wg show %i fwmark) -m addrtype ! --dst-type LOCAL -j REJECT"

// Compile renders vpn for its provider.
func Compile(vpn *profile.VpnConfig) string {
	switch vpn.Provider {
	case profile.ProviderWireGuard:
		return wireguard(vpn)
	case profile.ProviderOpenVPN:
		return openvpn(vpn)
	case profile.ProviderCustom:
		return custom(vpn)
	default:
		return fmt.Sprintf("# Unsupported VPN provider %q\n", vpn.Provider)
	}
}

func server(vpn *profile.VpnConfig) string {
	if vpn.Server == "" {
		return DefaultServer
	}
	return vpn.Server
}

func wireguard(vpn *profile.VpnConfig) string {
	var config strings.Builder

	config.WriteString("[Interface]\n")
	fmt.Fprintf(&config, "PrivateKey = %s\n", PrivateKeyPlaceholder)
	fmt.Fprintf(&config, "Address = %s\n", wireguardAddress)
	if vpn.DNSLeakProtection {
		fmt.Fprintf(&config, "DNS = %s\n", leakProtectionDNS)
	}
	if vpn.KillSwitch {
		fmt.Fprintf(&config, "PostUp = iptables -I %s\n", killSwitchRule)
		fmt.Fprintf(&config, "PreDown = iptables -D %s\n", killSwitchRule)
	}

	config.WriteString("\n[Peer]\n")
	fmt.Fprintf(&config, "PublicKey = %s\n", ServerPublicKeyPlaceholder)
	fmt.Fprintf(&config, "Endpoint = %s:%d\n", server(vpn), vpn.Port)
	config.WriteString("AllowedIPs = 0.0.0.0/0, ::/0\n")
	fmt.Fprintf(&config, "PersistentKeepalive = %d\n", persistentKeepalive)
	return config.String()
}

func openvpn(vpn *profile.VpnConfig) string {
	var config strings.Builder

	config.WriteString("client\n")
	config.WriteString("dev tun\n")
	protocol := vpn.Protocol
	if protocol == "" {
		protocol = profile.ProtocolUDP
	}
	fmt.Fprintf(&config, "proto %s\n", protocol)
	fmt.Fprintf(&config, "remote %s %d\n", server(vpn), vpn.Port)
	config.WriteString("resolv-retry infinite\n")
	config.WriteString("nobind\n")
	config.WriteString("persist-key\n")
	if vpn.KillSwitch {
		config.WriteString("persist-tun\n")
	}
	config.WriteString("remote-cert-tls server\n")
	if vpn.Username != "" {
		config.WriteString("auth-user-pass\n")
	}
	if vpn.DNSLeakProtection {
		config.WriteString("block-outside-dns\n")
	}
	config.WriteString("<ca>\n# Paste the server CA certificate here.\n</ca>\n")
	return config.String()
}

func custom(vpn *profile.VpnConfig) string {
	var config strings.Builder
	config.WriteString("# Custom VPN provider\n")
	if vpn.ConfigFile != "" {
		fmt.Fprintf(&config, "# Configuration file: %s\n", vpn.ConfigFile)
	} else {
		config.WriteString("# No configuration file set.\n")
	}
	fmt.Fprintf(&config, "# Server: %s:%d (%s)\n", server(vpn), vpn.Port, vpn.Protocol)
	return config.String()
}
