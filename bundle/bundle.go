// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"fmt"
	"slices"
	"strings"

	"github.com/veil-project/veil/anonymity"
	"github.com/veil-project/veil/firewall"
	"github.com/veil-project/veil/launch"
	"github.com/veil-project/veil/lib/codec"
	"github.com/veil-project/veil/lib/profile"
	"github.com/veil-project/veil/lib/version"
	"github.com/veil-project/veil/proxychain"
	"github.com/veil-project/veil/tunnel"
)

// DefaultInterface is the VM tap device used when Options names none.
const DefaultInterface = "tap0"

// Artifact names, in bundle order.
const (
	ArtifactLaunch           = "launch"
	ArtifactFirewall         = "firewall"
	ArtifactTransparentProxy = "transparent_proxy"
	ArtifactTorrc            = "torrc"
	ArtifactTunnel           = "tunnel"
	ArtifactProxyChains      = "proxychains"
)

var bundleDomainKey = profile.NewDomainKey("veil.bundle")

// Options adjusts compilation.
type Options struct {
	// Interface is the host-side tap device the firewall rules bind
	// to. Empty means DefaultInterface.
	Interface string

	// SocksPort overrides the Tor SOCKS port forwarded into tor_only
	// guests. Zero means the profile's own.
	SocksPort uint16

	// ChainPrefix overrides the firewall chain prefix.
	ChainPrefix string
}

// Artifacts holds the compiled output. Absent artifacts are empty.
type Artifacts struct {
	LaunchArgs       []string `json:"launch_args"`
	Firewall         []string `json:"firewall"`
	TransparentProxy []string `json:"transparent_proxy,omitempty"`

	// FirewallArgv is Firewall followed by TransparentProxy, split
	// into argv lists for appliers that exec without a shell.
	FirewallArgv [][]string `json:"firewall_argv"`

	Torrc            string   `json:"torrc,omitempty"`
	Tunnel           string   `json:"tunnel,omitempty"`
	ProxyChains      string   `json:"proxychains,omitempty"`
}

// Bundle is the complete compiled configuration for one VM.
type Bundle struct {
	Profile         string         `json:"profile"`
	Interface       string         `json:"interface"`
	CompilerVersion string         `json:"compiler_version"`
	ProfileDigest   profile.Digest `json:"profile_digest"`
	Digest          profile.Digest `json:"digest"`
	Artifacts
}

// Compile validates p and runs every applicable compiler over it.
func Compile(p *profile.SecurityProfile, options Options) (*Bundle, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	profileDigest, err := profile.Fingerprint(p)
	if err != nil {
		return nil, err
	}

	iface := options.Interface
	if iface == "" {
		iface = DefaultInterface
	}
	firewallOptions := firewall.Options{ChainPrefix: options.ChainPrefix}

	artifacts := Artifacts{
		LaunchArgs: launch.Compile(p, launch.Options{SocksPort: options.SocksPort}),
		Firewall:   firewall.Compile(p, iface, firewallOptions),
	}
	if p.RoutesThroughTor() {
		tor := p.EffectiveAnonymity()
		if options.SocksPort != 0 {
			tor.SocksPort = options.SocksPort
		}
		artifacts.Torrc = anonymity.Compile(p.Name, tor)
		artifacts.TransparentProxy = firewall.TransparentProxy(tor)
	}
	if p.VpnConfig != nil {
		artifacts.Tunnel = tunnel.Compile(p.VpnConfig)
	}
	if p.ProxyConfig != nil {
		artifacts.ProxyChains = proxychain.Compile(p.ProxyConfig, proxychain.Options{})
	}

	artifacts.FirewallArgv, err = firewall.SplitAll(
		append(slices.Clone(artifacts.Firewall), artifacts.TransparentProxy...))
	if err != nil {
		return nil, fmt.Errorf("splitting firewall commands for %q: %w", p.Name, err)
	}

	encoded, err := codec.Marshal(artifacts)
	if err != nil {
		return nil, fmt.Errorf("encoding bundle for %q: %w", p.Name, err)
	}

	return &Bundle{
		Profile:         p.Name,
		Interface:       iface,
		CompilerVersion: version.Short(),
		ProfileDigest:   profileDigest,
		Digest:          profile.KeyedHash(bundleDomainKey, encoded),
		Artifacts:       artifacts,
	}, nil
}

// Contents returns each present artifact as text, keyed by artifact
// name. Token and command lists are joined one per line.
func (b *Bundle) Contents() map[string]string {
	contents := map[string]string{
		ArtifactLaunch:   strings.Join(b.LaunchArgs, "\n"),
		ArtifactFirewall: strings.Join(b.Firewall, "\n"),
	}
	if len(b.TransparentProxy) > 0 {
		contents[ArtifactTransparentProxy] = strings.Join(b.TransparentProxy, "\n")
	}
	if b.Torrc != "" {
		contents[ArtifactTorrc] = b.Torrc
	}
	if b.Tunnel != "" {
		contents[ArtifactTunnel] = b.Tunnel
	}
	if b.ProxyChains != "" {
		contents[ArtifactProxyChains] = b.ProxyChains
	}
	return contents
}

// Names returns the present artifact names in bundle order.
func (b *Bundle) Names() []string {
	contents := b.Contents()
	var names []string
	for _, name := range artifactOrder {
		if _, ok := contents[name]; ok {
			names = append(names, name)
		}
	}
	return names
}

var artifactOrder = []string{
	ArtifactLaunch,
	ArtifactFirewall,
	ArtifactTransparentProxy,
	ArtifactTorrc,
	ArtifactTunnel,
	ArtifactProxyChains,
}

// Diff returns, in bundle order, the names of artifacts whose content
// differs between a and b. An artifact present in only one bundle
// counts as different.
func Diff(a, b *Bundle) []string {
	if a.Digest == b.Digest {
		return nil
	}
	before, after := a.Contents(), b.Contents()
	var changed []string
	for _, name := range artifactOrder {
		left, inBefore := before[name]
		right, inAfter := after[name]
		if inBefore != inAfter || left != right {
			changed = append(changed, name)
		}
	}
	return changed
}
