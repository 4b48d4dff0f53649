// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package profile

// Preset is a built-in, read-only profile shipped with Veil.
type Preset struct {
	Name        string
	Description string
	Profile     *SecurityProfile
}

// Preset names.
const (
	PresetParanoid   = "paranoid"
	PresetStealth    = "stealth"
	PresetIsolated   = "isolated"
	PresetPentesting = "pentesting"
)

// New returns a fresh profile with the sandbox enabled, default
// networking, the default firewall rule set and the default device set.
func New(name string) *SecurityProfile {
	return &SecurityProfile{
		Name:             name,
		SandboxEnabled:   true,
		NetworkIsolation: NetworkIsolation{Mode: IsolationNone},
		FirewallRules:    DefaultFirewallRules(),
		VirtualDevices:   DefaultVirtualDevices(),
	}
}

// DefaultFirewallRules allows outbound HTTPS, HTTP and DNS, in that
// order.
func DefaultFirewallRules() []FirewallRule {
	return []FirewallRule{
		{
			Action:      ActionAllow,
			Direction:   DirectionOutbound,
			Protocol:    "tcp",
			Port:        port(443),
			Description: "Allow HTTPS",
		},
		{
			Action:      ActionAllow,
			Direction:   DirectionOutbound,
			Protocol:    "tcp",
			Port:        port(80),
			Description: "Allow HTTP",
		},
		{
			Action:      ActionAllow,
			Direction:   DirectionOutbound,
			Protocol:    "udp",
			Port:        port(53),
			Description: "Allow DNS",
		},
	}
}

// DefaultVirtualDevices is one shared network adapter and one isolated
// USB controller.
func DefaultVirtualDevices() []VirtualDevice {
	return []VirtualDevice{
		{
			DeviceType: DeviceNetworkAdapter,
			Name:       "virtio-net",
			Enabled:    true,
		},
		{
			DeviceType: DeviceUSBController,
			Name:       "usb-tablet",
			Enabled:    true,
			Isolated:   true,
		},
	}
}

// presetTable is built once at package initialization and never handed
// out directly.
var presetTable = []Preset{
	{
		Name:        PresetParanoid,
		Description: "Maximum security - Full isolation, Tor routing, no host access",
		Profile: &SecurityProfile{
			Name:           PresetParanoid,
			SandboxEnabled: true,
			NetworkIsolation: NetworkIsolation{
				Mode:          IsolationTorOnly,
				AllowInternet: true,
				MACAddress:    "52:54:00:00:00:01",
			},
			TorEnabled: true,
			FirewallRules: []FirewallRule{
				{
					Action:      ActionDeny,
					Direction:   DirectionOutbound,
					Protocol:    "icmp",
					Description: "Block ICMP to prevent fingerprinting",
				},
				{
					Action:      ActionAllow,
					Direction:   DirectionOutbound,
					Protocol:    "tcp",
					Destination: "127.0.0.1",
					Port:        port(DefaultSocksPort),
					Description: "Allow Tor SOCKS",
				},
			},
			VirtualDevices: []VirtualDevice{
				{
					DeviceType: DeviceNetworkAdapter,
					Name:       "tor-net",
					Enabled:    true,
					Isolated:   true,
				},
			},
		},
	},
	{
		Name:        PresetStealth,
		Description: "VPN + Tor chain for maximum anonymity",
		Profile: &SecurityProfile{
			Name:           PresetStealth,
			SandboxEnabled: true,
			NetworkIsolation: NetworkIsolation{
				Mode:          IsolationVpnOnly,
				AllowInternet: true,
				MACAddress:    "52:54:00:00:00:02",
			},
			TorEnabled: true,
			VpnConfig: &VpnConfig{
				Provider:          ProviderWireGuard,
				Protocol:          ProtocolUDP,
				Port:              51820,
				KillSwitch:        true,
				DNSLeakProtection: true,
			},
			FirewallRules:  DefaultFirewallRules(),
			VirtualDevices: DefaultVirtualDevices(),
		},
	},
	{
		Name:        PresetIsolated,
		Description: "Complete network isolation - no internet access",
		Profile: &SecurityProfile{
			Name:           PresetIsolated,
			SandboxEnabled: true,
			NetworkIsolation: NetworkIsolation{
				Mode:              IsolationFull,
				IsolatedNetworkID: "isolated-net-1",
			},
			FirewallRules: []FirewallRule{
				{
					Action:      ActionDeny,
					Direction:   DirectionBoth,
					Description: "Block all traffic",
				},
			},
			VirtualDevices: []VirtualDevice{},
		},
	},
	{
		Name:        PresetPentesting,
		Description: "Isolated network with tools access",
		Profile: &SecurityProfile{
			Name:           PresetPentesting,
			SandboxEnabled: true,
			NetworkIsolation: NetworkIsolation{
				Mode:              IsolationInternal,
				AllowHostAccess:   true,
				AllowInternet:     true,
				IsolatedNetworkID: "pentest-net",
			},
			ProxyConfig: &ProxyConfig{
				ProxyType: ProxySOCKS5,
				Host:      "127.0.0.1",
				Port:      1080,
				Chain:     []ProxyHop{},
			},
			FirewallRules:  DefaultFirewallRules(),
			VirtualDevices: DefaultVirtualDevices(),
		},
	},
}

// Presets returns the built-in catalog in its fixed order. Each call
// returns fresh copies.
func Presets() []Preset {
	result := make([]Preset, len(presetTable))
	for i, preset := range presetTable {
		result[i] = Preset{
			Name:        preset.Name,
			Description: preset.Description,
			Profile:     preset.Profile.Clone(),
		}
	}
	return result
}

// LookupPreset returns a copy of the named preset.
func LookupPreset(name string) (Preset, bool) {
	for _, preset := range presetTable {
		if preset.Name == name {
			return Preset{
				Name:        preset.Name,
				Description: preset.Description,
				Profile:     preset.Profile.Clone(),
			}, true
		}
	}
	return Preset{}, false
}

// IsPreset reports whether name belongs to the built-in catalog.
func IsPreset(name string) bool {
	_, ok := LookupPreset(name)
	return ok
}

func port(p uint16) *uint16 {
	return &p
}
