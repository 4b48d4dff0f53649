// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package profile

// SecurityProfile is the unit of policy applied to one VM.
type SecurityProfile struct {
	// Name is the unique key of the profile within a store.
	Name string `json:"name" yaml:"name"`

	// SandboxEnabled turns on the hypervisor's syscall sandbox.
	SandboxEnabled bool `json:"sandbox_enabled" yaml:"sandbox_enabled"`

	NetworkIsolation NetworkIsolation `json:"network_isolation" yaml:"network_isolation"`

	// TorEnabled requests a Tor daemon configuration for this VM, even
	// when the isolation mode does not force Tor routing.
	TorEnabled bool `json:"tor_enabled" yaml:"tor_enabled"`

	VpnConfig   *VpnConfig   `json:"vpn_config,omitempty" yaml:"vpn_config,omitempty"`
	ProxyConfig *ProxyConfig `json:"proxy_config,omitempty" yaml:"proxy_config,omitempty"`

	// Anonymity overrides the Tor policy defaults. Nil means
	// DefaultAnonymityConfig.
	Anonymity *AnonymityConfig `json:"anonymity,omitempty" yaml:"anonymity,omitempty"`

	// FirewallRules are evaluated in order; order is enforcement
	// priority.
	FirewallRules []FirewallRule `json:"firewall_rules" yaml:"firewall_rules"`

	// VirtualDevices is persisted but not yet consumed by any compiler.
	VirtualDevices []VirtualDevice `json:"virtual_devices" yaml:"virtual_devices"`
}

// NetworkIsolation describes how the VM network is cut off.
// AllowHostAccess and AllowInternet are advisory; not every mode
// honors them.
type NetworkIsolation struct {
	Mode            IsolationMode `json:"mode" yaml:"mode"`
	AllowHostAccess bool          `json:"allow_host_access" yaml:"allow_host_access"`
	AllowInternet   bool          `json:"allow_internet" yaml:"allow_internet"`

	// IsolatedNetworkID names the multicast network for internal mode.
	IsolatedNetworkID string `json:"isolated_network_id,omitempty" yaml:"isolated_network_id,omitempty"`

	// MACAddress is applied to the generated network device.
	MACAddress string `json:"mac_address,omitempty" yaml:"mac_address,omitempty"`
}

// FirewallRule is one packet-filter rule. Port and PortRange are
// mutually exclusive.
type FirewallRule struct {
	Action      FirewallAction   `json:"action" yaml:"action"`
	Direction   TrafficDirection `json:"direction" yaml:"direction"`
	Protocol    string           `json:"protocol,omitempty" yaml:"protocol,omitempty"`
	Source      string           `json:"source,omitempty" yaml:"source,omitempty"`
	Destination string           `json:"destination,omitempty" yaml:"destination,omitempty"`
	Port        *uint16          `json:"port,omitempty" yaml:"port,omitempty"`
	PortRange   *PortRange       `json:"port_range,omitempty" yaml:"port_range,omitempty"`

	// Description is embedded verbatim as the rule comment.
	Description string `json:"description" yaml:"description"`
}

// PortRange is an inclusive destination port range.
type PortRange struct {
	Start uint16 `json:"start" yaml:"start"`
	End   uint16 `json:"end" yaml:"end"`
}

// VirtualDevice is a piece of virtual hardware exposed to the guest.
type VirtualDevice struct {
	DeviceType  VirtualDeviceType `json:"device_type" yaml:"device_type"`
	Name        string            `json:"name" yaml:"name"`
	Enabled     bool              `json:"enabled" yaml:"enabled"`
	Passthrough bool              `json:"passthrough" yaml:"passthrough"`
	Isolated    bool              `json:"isolated" yaml:"isolated"`
}

// VpnConfig configures the tunnel client. KillSwitch and
// DNSLeakProtection are advisory.
type VpnConfig struct {
	Provider          VpnProvider `json:"provider" yaml:"provider"`
	Protocol          VpnProtocol `json:"protocol" yaml:"protocol"`
	Server            string      `json:"server,omitempty" yaml:"server,omitempty"`
	Port              uint16      `json:"port" yaml:"port"`
	ConfigFile        string      `json:"config_file,omitempty" yaml:"config_file,omitempty"`
	Username          string      `json:"username,omitempty" yaml:"username,omitempty"`
	KillSwitch        bool        `json:"kill_switch" yaml:"kill_switch"`
	DNSLeakProtection bool        `json:"dns_leak_protection" yaml:"dns_leak_protection"`
}

// ProxyConfig is the proxy nearest the VM plus any further hops.
type ProxyConfig struct {
	ProxyType ProxyType `json:"proxy_type" yaml:"proxy_type"`
	Host      string    `json:"host" yaml:"host"`
	Port      uint16    `json:"port" yaml:"port"`
	Username  string    `json:"username,omitempty" yaml:"username,omitempty"`
	Password  string    `json:"password,omitempty" yaml:"password,omitempty"`

	// Chain lists the additional hops in order, first hop nearest the
	// VM.
	Chain []ProxyHop `json:"chain" yaml:"chain"`
}

// ProxyHop is one additional hop in a proxy chain.
type ProxyHop struct {
	ProxyType ProxyType `json:"proxy_type" yaml:"proxy_type"`
	Host      string    `json:"host" yaml:"host"`
	Port      uint16    `json:"port" yaml:"port"`
}

// AnonymityConfig is the Tor daemon policy.
type AnonymityConfig struct {
	SocksPort        uint16   `json:"socks_port" yaml:"socks_port"`
	ControlPort      uint16   `json:"control_port" yaml:"control_port"`
	DNSPort          uint16   `json:"dns_port" yaml:"dns_port"`
	TransparentProxy bool     `json:"transparent_proxy" yaml:"transparent_proxy"`
	TransPort        uint16   `json:"trans_port" yaml:"trans_port"`
	BridgeEnabled    bool     `json:"bridge_enabled" yaml:"bridge_enabled"`
	Bridges          []string `json:"bridges" yaml:"bridges"`
	ExitNodes        []string `json:"exit_nodes" yaml:"exit_nodes"`
	ExcludeExitNodes []string `json:"exclude_exit_nodes" yaml:"exclude_exit_nodes"`
	StrictNodes      bool     `json:"strict_nodes" yaml:"strict_nodes"`

	// NewCircuitPeriod is in seconds.
	NewCircuitPeriod uint32 `json:"new_circuit_period" yaml:"new_circuit_period"`
}

// Default Tor policy values.
const (
	DefaultSocksPort        uint16 = 9050
	DefaultControlPort      uint16 = 9051
	DefaultDNSPort          uint16 = 5353
	DefaultTransPort        uint16 = 9040
	DefaultNewCircuitPeriod uint32 = 30
)

// DefaultAnonymityConfig returns the Tor policy used when a profile
// does not override it.
func DefaultAnonymityConfig() AnonymityConfig {
	return AnonymityConfig{
		SocksPort:        DefaultSocksPort,
		ControlPort:      DefaultControlPort,
		DNSPort:          DefaultDNSPort,
		TransparentProxy: true,
		TransPort:        DefaultTransPort,
		Bridges:          []string{},
		ExitNodes:        []string{},
		ExcludeExitNodes: []string{},
		NewCircuitPeriod: DefaultNewCircuitPeriod,
	}
}

// EffectiveAnonymity returns a copy of the profile's Tor policy, or the
// defaults when the profile does not set one.
func (p *SecurityProfile) EffectiveAnonymity() AnonymityConfig {
	if p.Anonymity == nil {
		return DefaultAnonymityConfig()
	}
	return p.Anonymity.Clone()
}

// RoutesThroughTor reports whether the profile needs a Tor daemon.
func (p *SecurityProfile) RoutesThroughTor() bool {
	return p.TorEnabled || p.NetworkIsolation.Mode == IsolationTorOnly
}

// Clone creates a deep copy of the profile. Nil and empty slices are
// preserved as they are.
func (p *SecurityProfile) Clone() *SecurityProfile {
	clone := *p

	if p.VpnConfig != nil {
		vpn := *p.VpnConfig
		clone.VpnConfig = &vpn
	}
	if p.ProxyConfig != nil {
		proxy := *p.ProxyConfig
		proxy.Chain = cloneSlice(p.ProxyConfig.Chain)
		clone.ProxyConfig = &proxy
	}
	if p.Anonymity != nil {
		anonymity := p.Anonymity.Clone()
		clone.Anonymity = &anonymity
	}
	if p.FirewallRules != nil {
		clone.FirewallRules = make([]FirewallRule, len(p.FirewallRules))
		for i, rule := range p.FirewallRules {
			clone.FirewallRules[i] = rule.Clone()
		}
	}
	clone.VirtualDevices = cloneSlice(p.VirtualDevices)

	return &clone
}

// Clone creates a deep copy of the rule.
func (r FirewallRule) Clone() FirewallRule {
	if r.Port != nil {
		port := *r.Port
		r.Port = &port
	}
	if r.PortRange != nil {
		portRange := *r.PortRange
		r.PortRange = &portRange
	}
	return r
}

// Clone creates a deep copy of the Tor policy.
func (a AnonymityConfig) Clone() AnonymityConfig {
	a.Bridges = cloneSlice(a.Bridges)
	a.ExitNodes = cloneSlice(a.ExitNodes)
	a.ExcludeExitNodes = cloneSlice(a.ExcludeExitNodes)
	return a
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	result := make([]T, len(s))
	copy(result, s)
	return result
}
