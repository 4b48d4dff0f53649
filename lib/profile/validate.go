// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package profile

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/hashicorp/go-multierror"
)

// ErrInvalidProfile wraps every profile validation failure. It marks a
// profile that exists but cannot be used, as opposed to one that was
// not found.
var ErrInvalidProfile = errors.New("invalid security profile")

// NameMaxLength keeps the default firewall chain "veil-<name>" within
// the 28 characters iptables accepts for a chain name.
const NameMaxLength = 23

// namePattern admits only characters that are inert in shell words,
// chain names, file names and QEMU ids.
var namePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// ValidateName checks a profile name on its own. Store keys and
// document keys go through it before a profile exists.
func ValidateName(name string) error {
	switch {
	case name == "":
		return errors.New("name is required")
	case len(name) > NameMaxLength:
		return fmt.Errorf("name %q is longer than %d characters", name, NameMaxLength)
	case !namePattern.MatchString(name):
		return fmt.Errorf("name %q may only contain letters, digits, '.', '_' and '-'", name)
	}
	return nil
}

// Validate checks the whole profile and reports every problem at once.
// The returned error wraps ErrInvalidProfile, and also ErrInvalidRule
// when any firewall rule is at fault.
func (p *SecurityProfile) Validate() error {
	var problems *multierror.Error

	if err := ValidateName(p.Name); err != nil {
		problems = multierror.Append(problems, err)
	}
	if !p.NetworkIsolation.Mode.Valid() {
		problems = multierror.Append(problems,
			fmt.Errorf("network_isolation.mode: unknown mode %q", p.NetworkIsolation.Mode))
	}

	for i, rule := range p.FirewallRules {
		if err := rule.Validate(); err != nil {
			problems = multierror.Append(problems, fmt.Errorf("firewall_rules[%d]: %w", i, err))
		}
	}

	for i, device := range p.VirtualDevices {
		if !device.DeviceType.Valid() {
			problems = multierror.Append(problems,
				fmt.Errorf("virtual_devices[%d]: unknown device type %q", i, device.DeviceType))
		}
	}

	if vpn := p.VpnConfig; vpn != nil {
		if !vpn.Provider.Valid() {
			problems = multierror.Append(problems, fmt.Errorf("vpn_config.provider: unknown provider %q", vpn.Provider))
		}
		if !vpn.Protocol.Valid() {
			problems = multierror.Append(problems, fmt.Errorf("vpn_config.protocol: unknown protocol %q", vpn.Protocol))
		}
		if vpn.Port == 0 {
			problems = multierror.Append(problems, errors.New("vpn_config.port must be non-zero"))
		}
	}

	if proxy := p.ProxyConfig; proxy != nil {
		if !proxy.ProxyType.Valid() {
			problems = multierror.Append(problems, fmt.Errorf("proxy_config.proxy_type: unknown type %q", proxy.ProxyType))
		}
		if proxy.Host == "" {
			problems = multierror.Append(problems, errors.New("proxy_config.host is required"))
		}
		if proxy.Port == 0 {
			problems = multierror.Append(problems, errors.New("proxy_config.port must be non-zero"))
		}
		for i, hop := range proxy.Chain {
			if !hop.ProxyType.Valid() {
				problems = multierror.Append(problems,
					fmt.Errorf("proxy_config.chain[%d]: unknown type %q", i, hop.ProxyType))
			}
			if hop.Host == "" || hop.Port == 0 {
				problems = multierror.Append(problems,
					fmt.Errorf("proxy_config.chain[%d]: host and port are required", i))
			}
		}
	}

	if anonymity := p.Anonymity; anonymity != nil {
		if anonymity.SocksPort == 0 || anonymity.ControlPort == 0 || anonymity.DNSPort == 0 {
			problems = multierror.Append(problems, errors.New("anonymity: socks, control and dns ports must be non-zero"))
		}
		if anonymity.TransparentProxy && anonymity.TransPort == 0 {
			problems = multierror.Append(problems, errors.New("anonymity.trans_port must be non-zero when transparent_proxy is set"))
		}
	}

	if err := problems.ErrorOrNil(); err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidProfile, p.Name, err)
	}
	return nil
}
