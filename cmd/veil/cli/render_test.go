// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestRendererPlainWhenNotTerminal(t *testing.T) {
	var out bytes.Buffer
	renderer := NewRenderer(&out, ColorAuto)
	if renderer.Color() {
		t.Fatal("auto color enabled for a buffer")
	}

	renderer.Heading("paranoid")
	renderer.Field("mode", "tor_only")
	if err := renderer.Highlight("SocksPort 9050", SyntaxINI); err != nil {
		t.Fatalf("Highlight: %v", err)
	}

	want := "paranoid\n  mode: tor_only\nSocksPort 9050\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestRendererAlwaysColors(t *testing.T) {
	var out bytes.Buffer
	renderer := NewRenderer(&out, ColorAlways)
	if !renderer.Color() {
		t.Fatal("color not enabled in always mode")
	}
	if err := renderer.Highlight("[Interface]\nAddress = 10.0.0.2/24\n", SyntaxINI); err != nil {
		t.Fatalf("Highlight: %v", err)
	}
	if !strings.Contains(out.String(), "\x1b[") {
		t.Errorf("expected ANSI escapes, got %q", out.String())
	}
}

func TestRendererNeverColors(t *testing.T) {
	var out bytes.Buffer
	renderer := NewRenderer(&out, ColorNever)
	renderer.Heading("title")
	if strings.Contains(out.String(), "\x1b[") {
		t.Errorf("never mode emitted escapes: %q", out.String())
	}
}

func TestRendererJSON(t *testing.T) {
	var out bytes.Buffer
	renderer := NewRenderer(&out, ColorNever)
	if err := renderer.JSON(map[string]int{"port": 9050}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if out.String() != "{\n  \"port\": 9050\n}\n" {
		t.Errorf("JSON output = %q", out.String())
	}
}
