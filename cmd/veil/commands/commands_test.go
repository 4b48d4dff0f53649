// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/veil-project/veil/bundle"
	"github.com/veil-project/veil/cmd/veil/cli"
	"github.com/veil-project/veil/lib/profile"
)

// testHarness runs commands against a private config and store.
type testHarness struct {
	configPath   string
	profilesPath string
	stdout       bytes.Buffer
	stderr       bytes.Buffer
}

func newHarness(t *testing.T, extraConfig string) *testHarness {
	t.Helper()
	directory := t.TempDir()
	h := &testHarness{
		configPath:   filepath.Join(directory, "veil.yaml"),
		profilesPath: filepath.Join(directory, "profiles.json"),
	}
	config := "paths:\n" +
		"  config_dir: " + directory + "\n" +
		"  profiles_file: " + h.profilesPath + "\n" +
		"output:\n" +
		"  color: never\n" +
		extraConfig
	if err := os.WriteFile(h.configPath, []byte(config), 0o600); err != nil {
		t.Fatal(err)
	}
	return h
}

// run executes one command line and returns its error. Output buffers
// are reset first.
func (h *testHarness) run(args ...string) error {
	h.stdout.Reset()
	h.stderr.Reset()
	env := &Environment{Stdout: &h.stdout, Stderr: &h.stderr}
	return Run(env, append([]string{"--config", h.configPath}, args...))
}

func (h *testHarness) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	if err := h.run(args...); err != nil {
		t.Fatalf("veil %s: %v\nstderr: %s", strings.Join(args, " "), err, h.stderr.String())
	}
	return h.stdout.String()
}

func walkCommands(command *cli.Command, path []string, visit func(*cli.Command, []string)) {
	current := make([]string, len(path)+1)
	copy(current, path)
	current[len(path)] = command.Name
	visit(command, current)
	for _, sub := range command.Subcommands {
		walkCommands(sub, current, visit)
	}
}

func TestCommandTree(t *testing.T) {
	root := Root(&Environment{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}})
	walkCommands(root, nil, func(command *cli.Command, path []string) {
		name := strings.Join(path, " ")
		if command.Run == nil && len(command.Subcommands) == 0 {
			t.Errorf("%s: neither Run nor Subcommands", name)
		}
		if len(path) > 1 && command.Summary == "" {
			t.Errorf("%s: missing Summary", name)
		}
		seen := make(map[string]bool)
		for _, sub := range command.Subcommands {
			if seen[sub.Name] {
				t.Errorf("%s: duplicate subcommand %q", name, sub.Name)
			}
			seen[sub.Name] = true
		}
	})
}

func TestSplitGlobalFlags(t *testing.T) {
	tests := []struct {
		args       []string
		wantConfig string
		wantRest   []string
		wantErr    bool
	}{
		{args: nil},
		{args: []string{"presets"}, wantRest: []string{"presets"}},
		{args: []string{"--config", "a.yaml", "presets"}, wantConfig: "a.yaml", wantRest: []string{"presets"}},
		{args: []string{"--config=b.yaml", "version"}, wantConfig: "b.yaml", wantRest: []string{"version"}},
		{args: []string{"--config"}, wantErr: true},
		{args: []string{"presets", "--config", "c.yaml"}, wantRest: []string{"presets", "--config", "c.yaml"}},
	}
	for _, test := range tests {
		config, rest, err := splitGlobalFlags(test.args)
		if (err != nil) != test.wantErr {
			t.Errorf("splitGlobalFlags(%q) error = %v, want error %v", test.args, err, test.wantErr)
			continue
		}
		if config != test.wantConfig {
			t.Errorf("splitGlobalFlags(%q) config = %q, want %q", test.args, config, test.wantConfig)
		}
		if strings.Join(rest, " ") != strings.Join(test.wantRest, " ") {
			t.Errorf("splitGlobalFlags(%q) rest = %q, want %q", test.args, rest, test.wantRest)
		}
	}
}

func TestVersion(t *testing.T) {
	h := newHarness(t, "")
	if output := h.mustRun(t, "version"); !strings.HasPrefix(output, "veil ") {
		t.Errorf("version output = %q", output)
	}
}

func TestUnknownCommandSuggests(t *testing.T) {
	h := newHarness(t, "")
	err := h.run("profil")
	if err == nil || !strings.Contains(err.Error(), `did you mean "profile"`) {
		t.Errorf("error = %v, want a suggestion for profile", err)
	}
}

func TestPresetsJSON(t *testing.T) {
	h := newHarness(t, "")
	var summaries []presetSummary
	if err := json.Unmarshal([]byte(h.mustRun(t, "presets", "--json")), &summaries); err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, summary := range summaries {
		names = append(names, summary.Name)
	}
	want := "paranoid stealth isolated pentesting"
	if strings.Join(names, " ") != want {
		t.Errorf("preset names = %v, want %s", names, want)
	}
	if summaries[0].Mode != profile.IsolationTorOnly {
		t.Errorf("paranoid mode = %q", summaries[0].Mode)
	}
}

func TestProfileLifecycle(t *testing.T) {
	h := newHarness(t, "")

	if output := h.mustRun(t, "profile", "list"); !strings.Contains(output, "No stored profiles") {
		t.Errorf("empty list output = %q", output)
	}

	h.mustRun(t, "profile", "create", "workstation")
	h.mustRun(t, "profile", "create", "lab", "--from", "pentesting")
	if err := h.run("profile", "create", "lab"); err == nil {
		t.Error("creating a duplicate profile succeeded")
	}

	var summaries []profileSummary
	if err := json.Unmarshal([]byte(h.mustRun(t, "profile", "list", "--json")), &summaries); err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 2 || summaries[0].Name != "lab" || summaries[1].Name != "workstation" {
		t.Fatalf("summaries = %+v", summaries)
	}
	if summaries[0].Mode != profile.IsolationInternal || !summaries[0].Proxy {
		t.Errorf("lab summary = %+v, want the pentesting settings", summaries[0])
	}
	if summaries[1].Rules != 3 {
		t.Errorf("workstation rules = %d, want 3", summaries[1].Rules)
	}

	show := h.mustRun(t, "profile", "show", "lab")
	if !strings.Contains(show, "name: lab") || !strings.Contains(show, "isolated_network_id: pentest-net") {
		t.Errorf("show output:\n%s", show)
	}

	h.mustRun(t, "profile", "delete", "lab")
	if err := h.run("profile", "delete", "lab"); err == nil {
		t.Error("deleting a missing profile succeeded")
	}
	if _, err := os.Stat(h.profilesPath); err != nil {
		t.Errorf("profile store not written: %v", err)
	}
}

func TestProfileShowUnknown(t *testing.T) {
	h := newHarness(t, "")
	err := h.run("profile", "show", "nope")

	var exitError *cli.ExitError
	if !errors.As(err, &exitError) || exitError.Code != 2 {
		t.Fatalf("error = %v, want exit code 2", err)
	}
	if !strings.Contains(h.stderr.String(), "known profiles: paranoid, stealth") {
		t.Errorf("stderr = %q", h.stderr.String())
	}
}

func TestProfileShowJSONPreset(t *testing.T) {
	h := newHarness(t, "")
	var shown profile.SecurityProfile
	if err := json.Unmarshal([]byte(h.mustRun(t, "profile", "show", "isolated", "--json")), &shown); err != nil {
		t.Fatal(err)
	}
	if shown.Name != "isolated" || shown.NetworkIsolation.Mode != profile.IsolationFull {
		t.Errorf("shown = %+v", shown)
	}
}

func TestProfileImport(t *testing.T) {
	h := newHarness(t, "")
	document := filepath.Join(t.TempDir(), "profiles.yaml")
	data := `profiles:
  alpha:
    sandbox_enabled: true
    network_isolation:
      mode: host_only
  beta:
    network_isolation:
      mode: full
`
	if err := os.WriteFile(document, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	if output := h.mustRun(t, "profile", "import", document); !strings.Contains(output, "imported 2 of 2") {
		t.Errorf("first import output = %q", output)
	}
	if output := h.mustRun(t, "profile", "import", document); !strings.Contains(output, "imported 0 of 2") {
		t.Errorf("second import output = %q", output)
	}
	if output := h.mustRun(t, "profile", "import", document, "--replace"); !strings.Contains(output, "imported 2 of 2") {
		t.Errorf("replace import output = %q", output)
	}
}

func TestCompileLaunchSocksOverride(t *testing.T) {
	h := newHarness(t, "")
	output := h.mustRun(t, "compile", "launch", "paranoid", "--socks-port", "9150")
	if !strings.Contains(output, "guestfwd=tcp:10.0.2.100:9050-tcp:127.0.0.1:9150") {
		t.Errorf("launch output = %q", output)
	}
	if !strings.Contains(output, "mac=52:54:00:00:00:01") {
		t.Errorf("launch output lacks the preset MAC: %q", output)
	}
}

func TestCompileFirewallUsesConfigDefaults(t *testing.T) {
	h := newHarness(t, "compiler:\n  interface: tap9\n  chain_prefix: vm-\n")

	var commands []string
	if err := json.Unmarshal([]byte(h.mustRun(t, "compile", "firewall", "pentesting", "--json")), &commands); err != nil {
		t.Fatal(err)
	}
	if commands[0] != "iptables -F vm-pentesting" {
		t.Errorf("first command = %q", commands[0])
	}
	if !strings.Contains(commands[2], "-o tap9") {
		t.Errorf("rule command = %q, want interface from config", commands[2])
	}

	// Flags override the configuration.
	output := h.mustRun(t, "compile", "firewall", "pentesting", "--interface", "tap1")
	if !strings.Contains(output, "-o tap1") || strings.Contains(output, "tap9") {
		t.Errorf("flag override output:\n%s", output)
	}
}

func TestCompileFirewallArgv(t *testing.T) {
	h := newHarness(t, "")

	var argvs [][]string
	if err := json.Unmarshal([]byte(h.mustRun(t, "compile", "firewall", "isolated", "--argv")), &argvs); err != nil {
		t.Fatal(err)
	}
	want := [][]string{
		{"iptables", "-F", "veil-isolated"},
		{"iptables", "-N", "veil-isolated"},
		{"iptables", "-A", "veil-isolated", "-i", "tap0", "-j", "REJECT", "-m", "comment", "--comment", "Block all traffic"},
		{"iptables", "-A", "veil-isolated", "-o", "tap0", "-j", "REJECT", "-m", "comment", "--comment", "Block all traffic"},
	}
	if len(argvs) != len(want) {
		t.Fatalf("got %d argv lists, want %d: %q", len(argvs), len(want), argvs)
	}
	for i := range want {
		if strings.Join(argvs[i], "\x00") != strings.Join(want[i], "\x00") {
			t.Errorf("argv[%d] = %q, want %q", i, argvs[i], want[i])
		}
	}
}

func TestCompileRejectsUnsafeInterfaceFlag(t *testing.T) {
	h := newHarness(t, "")
	err := h.run("compile", "firewall", "isolated", "--interface", "tap0; reboot")
	if err == nil || !strings.Contains(err.Error(), "compiler.interface") {
		t.Errorf("error = %v, want an interface validation error", err)
	}
	if h.stdout.Len() != 0 {
		t.Errorf("stdout = %q, want nothing", h.stdout.String())
	}
}

func TestProfileCreateRejectsUnsafeName(t *testing.T) {
	h := newHarness(t, "")
	if err := h.run("profile", "create", "my vm; touch /x"); err == nil {
		t.Fatal("create with an unsafe name succeeded")
	}
	if _, err := os.Stat(h.profilesPath); !os.IsNotExist(err) {
		t.Errorf("profile store written for a rejected name: %v", err)
	}
}

func TestCompileFirewallTeardown(t *testing.T) {
	h := newHarness(t, "")
	output := h.mustRun(t, "compile", "firewall", "isolated", "--teardown")
	want := "iptables -F veil-isolated\niptables -X veil-isolated\n"
	if output != want {
		t.Errorf("teardown output = %q, want %q", output, want)
	}
}

func TestCompileMissingArtifact(t *testing.T) {
	h := newHarness(t, "")
	tests := [][]string{
		{"compile", "tor", "isolated"},
		{"compile", "tunnel", "paranoid"},
		{"compile", "proxychains", "stealth"},
	}
	for _, args := range tests {
		if err := h.run(args...); err == nil {
			t.Errorf("veil %s succeeded, want an error", strings.Join(args, " "))
		}
	}
}

func TestCompileTextArtifacts(t *testing.T) {
	h := newHarness(t, "")
	if output := h.mustRun(t, "compile", "tor", "paranoid"); !strings.HasPrefix(output, "# Veil Tor configuration for paranoid\n") {
		t.Errorf("torrc = %q", output)
	}
	if output := h.mustRun(t, "compile", "tunnel", "stealth"); !strings.Contains(output, "[Interface]") {
		t.Errorf("tunnel = %q", output)
	}
	if output := h.mustRun(t, "compile", "proxychains", "pentesting"); !strings.Contains(output, "socks5 127.0.0.1 1080") {
		t.Errorf("proxychains = %q", output)
	}
	if output := h.mustRun(t, "compile", "proxychains", "pentesting", "--no-proxy-dns"); strings.Contains(output, "proxy_dns") {
		t.Errorf("proxychains with --no-proxy-dns = %q", output)
	}
}

func TestCompileBundleJSON(t *testing.T) {
	h := newHarness(t, "")
	var compiled bundle.Bundle
	if err := json.Unmarshal([]byte(h.mustRun(t, "compile", "bundle", "stealth", "--json")), &compiled); err != nil {
		t.Fatal(err)
	}
	if compiled.Profile != "stealth" || compiled.Interface != bundle.DefaultInterface {
		t.Errorf("bundle header = %q on %q", compiled.Profile, compiled.Interface)
	}
	if compiled.Torrc == "" || compiled.Tunnel == "" || compiled.ProxyChains != "" {
		t.Errorf("bundle artifacts: torrc %t tunnel %t proxychains %t",
			compiled.Torrc != "", compiled.Tunnel != "", compiled.ProxyChains != "")
	}

	preset, _ := profile.LookupPreset("stealth")
	direct, err := bundle.Compile(preset.Profile, bundle.Options{ChainPrefix: "veil-"})
	if err != nil {
		t.Fatal(err)
	}
	if compiled.Digest != direct.Digest {
		t.Errorf("command digest %s differs from direct compile %s", compiled.Digest, direct.Digest)
	}
}

func TestCorruptStoreFallsBackToPresets(t *testing.T) {
	h := newHarness(t, "")
	if err := os.WriteFile(h.profilesPath, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	h.mustRun(t, "compile", "launch", "isolated")

	// Commands that write to the store refuse to run.
	if err := h.run("profile", "create", "x"); err == nil {
		t.Error("profile create succeeded on a corrupt store")
	}
}

func TestFingerprint(t *testing.T) {
	h := newHarness(t, "")
	preset, _ := profile.LookupPreset("paranoid")
	want, err := profile.Fingerprint(preset.Profile)
	if err != nil {
		t.Fatal(err)
	}

	if output := h.mustRun(t, "fingerprint", "paranoid"); output != want.String()+"\n" {
		t.Errorf("fingerprint = %q, want %s", output, want)
	}

	output := h.mustRun(t, "fingerprint", "paranoid", "--diagnose")
	if !strings.HasPrefix(output, want.String()+"\n") || !strings.Contains(output, `"tor_enabled": true`) {
		t.Errorf("diagnose output = %q", output)
	}
}

func TestInvalidConfigRejected(t *testing.T) {
	h := newHarness(t, "")
	if err := os.WriteFile(h.configPath, []byte("output:\n  color: sometimes\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := h.run("presets"); err == nil || !strings.Contains(err.Error(), "invalid configuration") {
		t.Errorf("error = %v, want invalid configuration", err)
	}
}
