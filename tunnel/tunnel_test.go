// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package tunnel

import (
	"strings"
	"testing"

	"github.com/veil-project/veil/lib/profile"
)

func TestWireGuardDefaults(t *testing.T) {
	t.Parallel()

	got := Compile(&profile.VpnConfig{
		Provider: profile.ProviderWireGuard,
		Protocol: profile.ProtocolUDP,
		Port:     51820,
	})
	want := `[Interface]
PrivateKey = <YOUR_PRIVATE_KEY>
Address = 10.0.0.2/24

[Peer]
PublicKey = <SERVER_PUBLIC_KEY>
Endpoint = vpn.example.com:51820
AllowedIPs = 0.0.0.0/0, ::/0
PersistentKeepalive = 25
`
	if got != want {
		t.Errorf("Compile =\n%s\nwant\n%s", got, want)
	}
}

func TestWireGuardStealthPreset(t *testing.T) {
	t.Parallel()

	preset, _ := profile.LookupPreset(profile.PresetStealth)
	vpn := preset.Profile.VpnConfig
	vpn.Server = "wg.example.net"

	config := Compile(vpn)
	for _, want := range []string{
		"DNS = 1.1.1.1\n",
		"PostUp = iptables -I OUTPUT ! -o %i",
		"PreDown = iptables -D OUTPUT ! -o %i",
		"Endpoint = wg.example.net:51820\n",
	} {
		if !strings.Contains(config, want) {
			t.Errorf("config missing %q:\n%s", want, config)
		}
	}
	if strings.Index(config, "PostUp") > strings.Index(config, "[Peer]") {
		t.Error("kill switch belongs in [Interface]")
	}
}

func TestOpenVPN(t *testing.T) {
	t.Parallel()

	config := Compile(&profile.VpnConfig{
		Provider:          profile.ProviderOpenVPN,
		Protocol:          profile.ProtocolTCP,
		Server:            "ovpn.example.org",
		Port:              1194,
		Username:          "alice",
		KillSwitch:        true,
		DNSLeakProtection: true,
	})
	for _, want := range []string{
		"client\n", "dev tun\n", "proto tcp\n", "remote ovpn.example.org 1194\n",
		"persist-tun\n", "auth-user-pass\n", "block-outside-dns\n", "<ca>\n",
	} {
		if !strings.Contains(config, want) {
			t.Errorf("config missing %q:\n%s", want, config)
		}
	}

	plain := Compile(&profile.VpnConfig{Provider: profile.ProviderOpenVPN, Port: 1194})
	for _, unwanted := range []string{"persist-tun", "auth-user-pass", "block-outside-dns"} {
		if strings.Contains(plain, unwanted) {
			t.Errorf("plain config contains %q", unwanted)
		}
	}
	if !strings.Contains(plain, "proto udp\n") {
		t.Error("protocol should default to udp")
	}
}

func TestCustomProvider(t *testing.T) {
	t.Parallel()

	config := Compile(&profile.VpnConfig{
		Provider:   profile.ProviderCustom,
		Protocol:   profile.ProtocolUDP,
		Port:       443,
		ConfigFile: "/etc/veil/corp.conf",
	})
	if !strings.Contains(config, "/etc/veil/corp.conf") {
		t.Errorf("custom config does not point at the file:\n%s", config)
	}
	for _, line := range strings.Split(strings.TrimSpace(config), "\n") {
		if !strings.HasPrefix(line, "#") {
			t.Errorf("custom stanza has a non-comment line %q", line)
		}
	}
}
