// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package firewall

import (
	"os/exec"
	"reflect"
	"strings"
	"testing"

	"github.com/veil-project/veil/lib/profile"
)

func uint16Pointer(v uint16) *uint16 { return &v }

func TestCompileSingleOutboundRule(t *testing.T) {
	t.Parallel()

	p := &profile.SecurityProfile{
		Name: "test",
		FirewallRules: []profile.FirewallRule{{
			Action:      profile.ActionAllow,
			Direction:   profile.DirectionOutbound,
			Protocol:    "tcp",
			Port:        uint16Pointer(443),
			Description: "Allow HTTPS",
		}},
	}

	got := Compile(p, "tap0", Options{})
	want := []string{
		"iptables -F veil-test",
		"iptables -N veil-test 2>/dev/null || true",
		`iptables -A veil-test -o tap0 -p tcp --dport 443 -j ACCEPT -m comment --comment "Allow HTTPS"`,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Compile =\n%s\nwant\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
}

func TestCompileNoRules(t *testing.T) {
	t.Parallel()

	got := Compile(&profile.SecurityProfile{Name: "empty"}, "tap1", Options{ChainPrefix: "vm-"})
	want := []string{"iptables -F vm-empty", "iptables -N vm-empty 2>/dev/null || true"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Compile = %q, want %q", got, want)
	}
}

func TestCompileActionsAndQualifiers(t *testing.T) {
	t.Parallel()

	p := &profile.SecurityProfile{
		Name: "q",
		FirewallRules: []profile.FirewallRule{
			{Action: profile.ActionDeny, Direction: profile.DirectionInbound, Source: "10.0.0.0/8", Description: "deny"},
			{Action: profile.ActionDrop, Direction: profile.DirectionOutbound, Destination: "1.2.3.4", Protocol: "udp",
				PortRange: &profile.PortRange{Start: 6000, End: 6010}, Description: "drop"},
			{Action: profile.ActionLog, Direction: profile.DirectionInbound, Description: "log"},
		},
	}
	got := Compile(p, "tap0", Options{})[2:]
	want := []string{
		`iptables -A veil-q -i tap0 -s 10.0.0.0/8 -j REJECT -m comment --comment "deny"`,
		`iptables -A veil-q -o tap0 -p udp -d 1.2.3.4 --dport 6000:6010 -j DROP -m comment --comment "drop"`,
		`iptables -A veil-q -i tap0 -j LOG -m comment --comment "log"`,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Compile =\n%s\nwant\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
}

func TestCompileBothDirections(t *testing.T) {
	t.Parallel()

	preset, _ := profile.LookupPreset(profile.PresetIsolated)
	got := Compile(preset.Profile, "tap0", Options{})
	want := []string{
		"iptables -F veil-isolated",
		"iptables -N veil-isolated 2>/dev/null || true",
		`iptables -A veil-isolated -i tap0 -j REJECT -m comment --comment "Block all traffic"`,
		`iptables -A veil-isolated -o tap0 -j REJECT -m comment --comment "Block all traffic"`,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Compile =\n%s\nwant\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
}

func TestCompileCommandCount(t *testing.T) {
	t.Parallel()

	for _, preset := range profile.Presets() {
		want := 2
		for _, rule := range preset.Profile.FirewallRules {
			want++
			if rule.Direction == profile.DirectionBoth {
				want++
			}
		}
		if got := len(Compile(preset.Profile, "tap0", Options{})); got != want {
			t.Errorf("preset %s: %d commands, want %d", preset.Name, got, want)
		}
	}
}

func TestCompilePortWinsOverRange(t *testing.T) {
	t.Parallel()

	p := &profile.SecurityProfile{
		Name: "x",
		FirewallRules: []profile.FirewallRule{{
			Action: profile.ActionAllow, Direction: profile.DirectionInbound,
			Port: uint16Pointer(22), PortRange: &profile.PortRange{Start: 1, End: 2},
		}},
	}
	command := Compile(p, "tap0", Options{})[2]
	if !strings.Contains(command, "--dport 22 ") || strings.Contains(command, "1:2") {
		t.Errorf("command = %q, want port 22 only", command)
	}
}

func TestCommentEscapingSurvivesSplit(t *testing.T) {
	t.Parallel()

	description := `say "hi" \ # done`
	p := &profile.SecurityProfile{
		Name: "esc",
		FirewallRules: []profile.FirewallRule{{
			Action: profile.ActionAllow, Direction: profile.DirectionOutbound, Description: description,
		}},
	}
	command := Compile(p, "tap0", Options{})[2]
	argv, err := Split(command)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if argv[len(argv)-1] != description {
		t.Errorf("comment = %q, want %q", argv[len(argv)-1], description)
	}
}

func TestCommentSurvivesShell(t *testing.T) {
	t.Parallel()

	shell, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("no sh on PATH")
	}

	descriptions := []string{
		"cost $HOME `echo injected`",
		"$(id -u) and ${PATH:-unset}",
		`say "hi" \ back\slash`,
		"it's 'single' quoted",
	}
	for _, description := range descriptions {
		p := &profile.SecurityProfile{
			Name: "sh",
			FirewallRules: []profile.FirewallRule{{
				Action: profile.ActionAllow, Direction: profile.DirectionOutbound, Description: description,
			}},
		}
		command := Compile(p, "tap0", Options{})[2]

		// A stub iptables prints its last argument, which is the
		// comment text as the shell delivered it.
		script := `iptables() { for arg; do last=$arg; done; printf '%s' "$last"; }; ` + command
		output, err := exec.Command(shell, "-c", script).Output()
		if err != nil {
			t.Fatalf("sh -c %q: %v", script, err)
		}
		if string(output) != description {
			t.Errorf("shell delivered comment %q, want %q", output, description)
		}

		argv, err := Split(command)
		if err != nil {
			t.Fatalf("Split: %v", err)
		}
		if argv[len(argv)-1] != description {
			t.Errorf("Split comment = %q, want %q", argv[len(argv)-1], description)
		}
	}
}

func TestSplitDropsShellOperators(t *testing.T) {
	t.Parallel()

	argv, err := Split("iptables -N veil-test 2>/dev/null || true")
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	want := []string{"iptables", "-N", "veil-test"}
	if !reflect.DeepEqual(argv, want) {
		t.Errorf("Split = %q, want %q", argv, want)
	}

	if _, err := Split(`iptables -A x --comment "unterminated`); err == nil {
		t.Error("Split should reject an unterminated quote")
	}
}

func TestTeardown(t *testing.T) {
	t.Parallel()

	got := Teardown(&profile.SecurityProfile{Name: "vm"}, Options{})
	want := []string{"iptables -F veil-vm", "iptables -X veil-vm"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Teardown = %q, want %q", got, want)
	}
	if Chain("vm", Options{ChainPrefix: "lab-"}) != "lab-vm" {
		t.Error("Chain ignored the prefix")
	}
}

func TestTransparentProxy(t *testing.T) {
	t.Parallel()

	got := TransparentProxy(profile.DefaultAnonymityConfig())
	want := []string{
		"iptables -t nat -A OUTPUT -p tcp --dport 80 -j REDIRECT --to-ports 9040",
		"iptables -t nat -A OUTPUT -p tcp --dport 443 -j REDIRECT --to-ports 9040",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TransparentProxy = %q, want %q", got, want)
	}

	config := profile.DefaultAnonymityConfig()
	config.TransparentProxy = false
	if got := TransparentProxy(config); len(got) != 0 {
		t.Errorf("TransparentProxy = %q, want nothing", got)
	}
}

func TestCompileDefaultRules(t *testing.T) {
	t.Parallel()

	got := Compile(profile.New("test"), "tap0", Options{})
	want := []string{
		"iptables -F veil-test",
		"iptables -N veil-test 2>/dev/null || true",
		`iptables -A veil-test -o tap0 -p tcp --dport 443 -j ACCEPT -m comment --comment "Allow HTTPS"`,
		`iptables -A veil-test -o tap0 -p tcp --dport 80 -j ACCEPT -m comment --comment "Allow HTTP"`,
		`iptables -A veil-test -o tap0 -p udp --dport 53 -j ACCEPT -m comment --comment "Allow DNS"`,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Compile =\n%s\nwant\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
}
