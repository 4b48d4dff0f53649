// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package anonymity

import (
	"strings"
	"testing"

	"github.com/veil-project/veil/lib/profile"
)

func TestCompileDefaults(t *testing.T) {
	t.Parallel()

	got := Compile("vm1", profile.DefaultAnonymityConfig())
	want := `# Veil Tor configuration for vm1
SocksPort 9050
ControlPort 9051
DNSPort 5353
AutomapHostsOnResolve 1
AutomapHostsSuffixes .onion,.exit
VirtualAddrNetworkIPv4 10.192.0.0/10
TransPort 9040
NewCircuitPeriod 30
`
	if got != want {
		t.Errorf("Compile =\n%s\nwant\n%s", got, want)
	}
}

func TestCompileOptionalDirectives(t *testing.T) {
	t.Parallel()

	cfg := profile.DefaultAnonymityConfig()
	cfg.TransparentProxy = false
	cfg.BridgeEnabled = true
	cfg.Bridges = []string{"obfs4 192.0.2.1:443 AAAA", "obfs4 192.0.2.2:443 BBBB"}
	cfg.ExitNodes = []string{"{de}", "{nl}"}
	cfg.ExcludeExitNodes = []string{"{us}"}
	cfg.StrictNodes = true
	cfg.NewCircuitPeriod = 120

	lines := strings.Split(strings.TrimSuffix(Compile("vm", cfg), "\n"), "\n")
	tail := lines[7:]
	want := []string{
		"UseBridges 1",
		"Bridge obfs4 192.0.2.1:443 AAAA",
		"Bridge obfs4 192.0.2.2:443 BBBB",
		"ExitNodes {de},{nl}",
		"ExcludeExitNodes {us}",
		"StrictNodes 1",
		"NewCircuitPeriod 120",
	}
	if strings.Join(tail, "\n") != strings.Join(want, "\n") {
		t.Errorf("optional section =\n%s\nwant\n%s", strings.Join(tail, "\n"), strings.Join(want, "\n"))
	}
}

func TestBridgesNeedEnableAndEntries(t *testing.T) {
	t.Parallel()

	cfg := profile.DefaultAnonymityConfig()
	cfg.BridgeEnabled = true
	if strings.Contains(Compile("vm", cfg), "UseBridges") {
		t.Error("UseBridges emitted with an empty bridge list")
	}

	cfg.BridgeEnabled = false
	cfg.Bridges = []string{"obfs4 x"}
	if strings.Contains(Compile("vm", cfg), "Bridge") {
		t.Error("bridges emitted while disabled")
	}
}

func TestCompileProfileUsesOverride(t *testing.T) {
	t.Parallel()

	p := profile.New("custom")
	p.Anonymity = &profile.AnonymityConfig{
		SocksPort: 9150, ControlPort: 9151, DNSPort: 53,
		TransparentProxy: true, TransPort: 9140, NewCircuitPeriod: 10,
	}
	torrc := CompileProfile(p)
	for _, want := range []string{
		"# Veil Tor configuration for custom\n",
		"SocksPort 9150\n",
		"TransPort 9140\n",
		"NewCircuitPeriod 10\n",
	} {
		if !strings.Contains(torrc, want) {
			t.Errorf("torrc missing %q:\n%s", want, torrc)
		}
	}
}
