// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package profile

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidRule is returned for firewall rules that cannot be compiled
// unambiguously, most notably rules that set both Port and PortRange.
var ErrInvalidRule = errors.New("invalid firewall rule")

// qualifierPattern covers protocol names, addresses, CIDRs and host
// names. Anything else could split or inject words in the compiled
// command.
var qualifierPattern = regexp.MustCompile(`^[A-Za-z0-9_.:/-]+$`)

// RuleOption sets an optional qualifier on a firewall rule.
type RuleOption func(*FirewallRule)

// WithProtocol restricts the rule to a protocol ("tcp", "udp", "icmp").
func WithProtocol(protocol string) RuleOption {
	return func(r *FirewallRule) { r.Protocol = protocol }
}

// WithSource restricts the rule to a source address or CIDR.
func WithSource(source string) RuleOption {
	return func(r *FirewallRule) { r.Source = source }
}

// WithDestination restricts the rule to a destination address or CIDR.
func WithDestination(destination string) RuleOption {
	return func(r *FirewallRule) { r.Destination = destination }
}

// WithPort restricts the rule to a single destination port.
func WithPort(port uint16) RuleOption {
	return func(r *FirewallRule) { r.Port = &port }
}

// WithPortRange restricts the rule to an inclusive destination port
// range.
func WithPortRange(start, end uint16) RuleOption {
	return func(r *FirewallRule) { r.PortRange = &PortRange{Start: start, End: end} }
}

// NewFirewallRule builds a rule and validates it. Combining WithPort and
// WithPortRange fails with ErrInvalidRule.
func NewFirewallRule(action FirewallAction, direction TrafficDirection, description string, options ...RuleOption) (FirewallRule, error) {
	rule := FirewallRule{
		Action:      action,
		Direction:   direction,
		Description: description,
	}
	for _, option := range options {
		option(&rule)
	}
	if err := rule.Validate(); err != nil {
		return FirewallRule{}, err
	}
	return rule, nil
}

// Validate checks that the rule is well formed. All failures wrap
// ErrInvalidRule.
func (r FirewallRule) Validate() error {
	if !r.Action.Valid() {
		return fmt.Errorf("%w: unknown action %q", ErrInvalidRule, r.Action)
	}
	if !r.Direction.Valid() {
		return fmt.Errorf("%w: unknown direction %q", ErrInvalidRule, r.Direction)
	}
	for _, qualifier := range []struct{ field, value string }{
		{"protocol", r.Protocol},
		{"source", r.Source},
		{"destination", r.Destination},
	} {
		if qualifier.value != "" && !qualifierPattern.MatchString(qualifier.value) {
			return fmt.Errorf("%w: %s %q contains characters outside [A-Za-z0-9_.:/-]",
				ErrInvalidRule, qualifier.field, qualifier.value)
		}
	}
	if r.Port != nil && r.PortRange != nil {
		return fmt.Errorf("%w: port and port_range are mutually exclusive", ErrInvalidRule)
	}
	if r.PortRange != nil && r.PortRange.Start > r.PortRange.End {
		return fmt.Errorf("%w: port_range start %d is greater than end %d",
			ErrInvalidRule, r.PortRange.Start, r.PortRange.End)
	}
	return nil
}
