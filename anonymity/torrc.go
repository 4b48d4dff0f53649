// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package anonymity

import (
	"fmt"
	"strings"

	"github.com/veil-project/veil/lib/profile"
)

// VirtualAddressNetwork is the range Tor hands out for automapped
// hostnames.
const VirtualAddressNetwork = "10.192.0.0/10"

// Compile renders cfg as a torrc for the VM called vmName.
func Compile(vmName string, cfg profile.AnonymityConfig) string {
	var torrc strings.Builder

	fmt.Fprintf(&torrc, "# Veil Tor configuration for %s\n", vmName)
	fmt.Fprintf(&torrc, "SocksPort %d\n", cfg.SocksPort)
	fmt.Fprintf(&torrc, "ControlPort %d\n", cfg.ControlPort)
	fmt.Fprintf(&torrc, "DNSPort %d\n", cfg.DNSPort)
	torrc.WriteString("AutomapHostsOnResolve 1\n")
	torrc.WriteString("AutomapHostsSuffixes .onion,.exit\n")
	fmt.Fprintf(&torrc, "VirtualAddrNetworkIPv4 %s\n", VirtualAddressNetwork)

	if cfg.TransparentProxy {
		fmt.Fprintf(&torrc, "TransPort %d\n", cfg.TransPort)
	}

	if cfg.BridgeEnabled && len(cfg.Bridges) > 0 {
		torrc.WriteString("UseBridges 1\n")
		for _, bridge := range cfg.Bridges {
			fmt.Fprintf(&torrc, "Bridge %s\n", bridge)
		}
	}

	if len(cfg.ExitNodes) > 0 {
		fmt.Fprintf(&torrc, "ExitNodes %s\n", strings.Join(cfg.ExitNodes, ","))
	}
	if len(cfg.ExcludeExitNodes) > 0 {
		fmt.Fprintf(&torrc, "ExcludeExitNodes %s\n", strings.Join(cfg.ExcludeExitNodes, ","))
	}
	if cfg.StrictNodes {
		torrc.WriteString("StrictNodes 1\n")
	}

	fmt.Fprintf(&torrc, "NewCircuitPeriod %d\n", cfg.NewCircuitPeriod)
	return torrc.String()
}

// CompileProfile renders the torrc for p using its effective Tor
// policy.
func CompileProfile(p *profile.SecurityProfile) string {
	return Compile(p.Name, p.EffectiveAnonymity())
}
