// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Color modes accepted by NewRenderer.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Syntax names for Highlight.
const (
	SyntaxINI   = "ini"
	SyntaxShell = "bash"
	SyntaxYAML  = "yaml"
	SyntaxJSON  = "json"
)

// Renderer writes command output, styled when color is enabled.
type Renderer struct {
	out     io.Writer
	color   bool
	heading lipgloss.Style
	label   lipgloss.Style
	faint   lipgloss.Style
}

// NewRenderer returns a renderer writing to out. In auto mode color is
// enabled only when out is a terminal, and the palette follows the
// environment (NO_COLOR, CLICOLOR_FORCE, TERM).
func NewRenderer(out io.Writer, mode string) *Renderer {
	profile := termenv.Ascii
	switch mode {
	case ColorAlways:
		profile = termenv.ANSI256
	case ColorNever:
	default:
		if isTerminal(out) {
			profile = termenv.EnvColorProfile()
		}
	}

	lipRenderer := lipgloss.NewRenderer(out, termenv.WithProfile(profile))
	// ColorProfile re-detects from the environment unless set
	// explicitly.
	lipRenderer.SetColorProfile(profile)

	return &Renderer{
		out:     out,
		color:   profile != termenv.Ascii,
		heading: lipRenderer.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		label:   lipRenderer.NewStyle().Foreground(lipgloss.Color("10")),
		faint:   lipRenderer.NewStyle().Faint(true),
	}
}

// Color reports whether output is styled.
func (r *Renderer) Color() bool {
	return r.color
}

// Heading writes a section heading line.
func (r *Renderer) Heading(text string) {
	fmt.Fprintln(r.out, r.heading.Render(text))
}

// Field writes an indented "label: value" line.
func (r *Renderer) Field(label, value string) {
	fmt.Fprintf(r.out, "  %s %s\n", r.label.Render(label+":"), value)
}

// Note writes a de-emphasized line.
func (r *Renderer) Note(text string) {
	fmt.Fprintln(r.out, r.faint.Render(text))
}

// Line writes text as is, followed by a newline.
func (r *Renderer) Line(text string) {
	fmt.Fprintln(r.out, text)
}

// Highlight writes source, syntax highlighted when color is enabled.
// A trailing newline is ensured. Highlighting failures fall back to
// plain text.
func (r *Renderer) Highlight(source, syntax string) error {
	if !strings.HasSuffix(source, "\n") {
		source += "\n"
	}
	if r.color {
		var buffer strings.Builder
		if err := quick.Highlight(&buffer, source, syntax, "terminal256", "monokai"); err == nil {
			_, err := io.WriteString(r.out, buffer.String())
			return err
		}
	}
	_, err := io.WriteString(r.out, source)
	return err
}

// JSON writes value as indented JSON.
func (r *Renderer) JSON(value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}
	data = append(data, '\n')
	_, err = r.out.Write(data)
	return err
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}
