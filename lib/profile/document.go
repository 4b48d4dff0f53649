// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package profile

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Document is a YAML file holding one or more profiles keyed by name:
//
//	profiles:
//	  workstation:
//	    sandbox_enabled: true
//	    network_isolation:
//	      mode: host_only
type Document struct {
	Profiles map[string]*SecurityProfile `yaml:"profiles"`
}

// ParseDocument parses a profile document. Map keys fill in empty name
// fields, and an empty isolation mode is read as none. Enum values are
// matched ignoring case, '_' and '-'. A name field
// that disagrees with its key is an error. Profiles are validated and
// returned sorted by name.
func ParseDocument(data []byte) ([]*SecurityProfile, error) {
	var document Document
	if err := yaml.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("parsing profile document: %w", err)
	}

	names := make([]string, 0, len(document.Profiles))
	for name := range document.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)

	profiles := make([]*SecurityProfile, 0, len(names))
	for _, name := range names {
		p := document.Profiles[name]
		if p == nil {
			return nil, fmt.Errorf("profile %q: empty definition", name)
		}
		if p.Name == "" {
			p.Name = name
		} else if p.Name != name {
			return nil, fmt.Errorf("profile %q: name field %q does not match its key", name, p.Name)
		}
		p.canonicalizeEnums()
		if err := p.Validate(); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// canonicalizeEnums rewrites enum fields spelled in another case or
// separator style ("TorOnly", "Outbound", "WireGuard") to their
// canonical values. An empty mode is read as none.
func (p *SecurityProfile) canonicalizeEnums() {
	if mode, err := ParseIsolationMode(string(p.NetworkIsolation.Mode)); err == nil {
		p.NetworkIsolation.Mode = mode
	}
	for i := range p.FirewallRules {
		rule := &p.FirewallRules[i]
		rule.Action = canonicalEnum(rule.Action, ActionAllow, ActionDeny, ActionDrop, ActionLog)
		rule.Direction = canonicalEnum(rule.Direction, DirectionInbound, DirectionOutbound, DirectionBoth)
	}
	for i := range p.VirtualDevices {
		device := &p.VirtualDevices[i]
		device.DeviceType = canonicalEnum(device.DeviceType, DeviceNetworkAdapter, DeviceUSBController,
			DeviceStorageController, DeviceAudio, DeviceSerialPort, DeviceTPM)
	}
	if vpn := p.VpnConfig; vpn != nil {
		vpn.Provider = canonicalEnum(vpn.Provider, ProviderOpenVPN, ProviderWireGuard, ProviderCustom)
		vpn.Protocol = canonicalEnum(vpn.Protocol, ProtocolUDP, ProtocolTCP)
	}
	if proxy := p.ProxyConfig; proxy != nil {
		proxyTypes := []ProxyType{ProxySOCKS4, ProxySOCKS5, ProxyHTTP, ProxyHTTPS}
		proxy.ProxyType = canonicalEnum(proxy.ProxyType, proxyTypes...)
		for i := range proxy.Chain {
			proxy.Chain[i].ProxyType = canonicalEnum(proxy.Chain[i].ProxyType, proxyTypes...)
		}
	}
}

// LoadDocument reads and parses a profile document from disk.
func LoadDocument(path string) ([]*SecurityProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile document: %w", err)
	}
	profiles, err := ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return profiles, nil
}

// MarshalDocument renders profiles as a YAML document that
// ParseDocument accepts.
func MarshalDocument(profiles ...*SecurityProfile) ([]byte, error) {
	document := Document{Profiles: make(map[string]*SecurityProfile, len(profiles))}
	for _, p := range profiles {
		document.Profiles[p.Name] = p
	}
	return yaml.Marshal(&document)
}
