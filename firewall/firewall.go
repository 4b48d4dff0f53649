// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package firewall

import (
	"fmt"
	"strings"

	"github.com/veil-project/veil/lib/profile"
)

// DefaultChainPrefix prefixes every per-profile chain name.
const DefaultChainPrefix = "veil-"

// Options adjusts compilation.
type Options struct {
	// ChainPrefix replaces DefaultChainPrefix when non-empty.
	ChainPrefix string
}

func (o Options) prefix() string {
	if o.ChainPrefix == "" {
		return DefaultChainPrefix
	}
	return o.ChainPrefix
}

// Chain returns the chain name for a profile.
func Chain(name string, options Options) string {
	return options.prefix() + name
}

// targets maps rule actions to iptables jump targets.
var targets = map[profile.FirewallAction]string{
	profile.ActionAllow: "ACCEPT",
	profile.ActionDeny:  "REJECT",
	profile.ActionDrop:  "DROP",
	profile.ActionLog:   "LOG",
}

// Compile returns the iptables commands enforcing p's rules on iface.
// The first two commands flush and create the chain; the rest follow
// rule order.
//
// Rules with both Port and PortRange set should have been rejected by
// validation. If one gets here anyway, Port wins.
func Compile(p *profile.SecurityProfile, iface string, options Options) []string {
	chain := Chain(p.Name, options)
	commands := []string{
		"iptables -F " + chain,
		"iptables -N " + chain + " 2>/dev/null || true",
	}

	for _, rule := range p.FirewallRules {
		switch rule.Direction {
		case profile.DirectionInbound:
			commands = append(commands, ruleCommand(chain, "-i", iface, rule))
		case profile.DirectionOutbound:
			commands = append(commands, ruleCommand(chain, "-o", iface, rule))
		case profile.DirectionBoth:
			commands = append(commands,
				ruleCommand(chain, "-i", iface, rule),
				ruleCommand(chain, "-o", iface, rule))
		default:
			// Unvalidated input. Treat as inbound so the rule is not
			// silently lost.
			commands = append(commands, ruleCommand(chain, "-i", iface, rule))
		}
	}
	return commands
}

// Teardown returns the commands that flush and delete p's chain.
func Teardown(p *profile.SecurityProfile, options Options) []string {
	chain := Chain(p.Name, options)
	return []string{
		"iptables -F " + chain,
		"iptables -X " + chain,
	}
}

// TransparentProxy returns nat rules redirecting outbound HTTP and
// HTTPS to Tor's transparent proxy port. It returns nil when the
// config has transparent proxying off.
func TransparentProxy(config profile.AnonymityConfig) []string {
	if !config.TransparentProxy {
		return nil
	}
	var commands []string
	for _, port := range []int{80, 443} {
		commands = append(commands, fmt.Sprintf(
			"iptables -t nat -A OUTPUT -p tcp --dport %d -j REDIRECT --to-ports %d",
			port, config.TransPort))
	}
	return commands
}

func ruleCommand(chain, directionFlag, iface string, rule profile.FirewallRule) string {
	var command strings.Builder
	fmt.Fprintf(&command, "iptables -A %s %s %s", chain, directionFlag, iface)

	if rule.Protocol != "" {
		command.WriteString(" -p " + rule.Protocol)
	}
	if rule.Source != "" {
		command.WriteString(" -s " + rule.Source)
	}
	if rule.Destination != "" {
		command.WriteString(" -d " + rule.Destination)
	}
	if rule.Port != nil {
		fmt.Fprintf(&command, " --dport %d", *rule.Port)
	} else if rule.PortRange != nil {
		fmt.Fprintf(&command, " --dport %d:%d", rule.PortRange.Start, rule.PortRange.End)
	}

	target, ok := targets[rule.Action]
	if !ok {
		target = "REJECT"
	}
	fmt.Fprintf(&command, " -j %s -m comment --comment \"%s\"", target, escapeComment(rule.Description))
	return command.String()
}

// commentSpecials are the characters a shell still interprets inside
// double quotes.
const commentSpecials = "\"\\$`"

// escapeComment backslash-escapes every character that would end or
// expand inside a double-quoted shell word, so the description reaches
// iptables unchanged whether the command runs under sh or through
// Split.
func escapeComment(description string) string {
	if !strings.ContainsAny(description, commentSpecials) {
		return description
	}
	var escaped strings.Builder
	for _, r := range description {
		if strings.ContainsRune(commentSpecials, r) {
			escaped.WriteByte('\\')
		}
		escaped.WriteRune(r)
	}
	return escaped.String()
}
