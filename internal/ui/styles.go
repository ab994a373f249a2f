// Package ui renders the short terminal summaries printed by the CLI.
package ui

import (
	"fmt"
	"io"
	"strings"
)

// ANSI256 color codes.
const (
	colorSuccess = 71  // green
	colorFailure = 167 // red
	colorAccent  = 74  // blue
	colorMuted   = 245 // medium gray
)

// Palette styles text, or passes it through unchanged when color is off.
type Palette struct {
	color bool
}

// NewPalette returns a palette that emits ANSI codes only when color is true.
func NewPalette(color bool) Palette {
	return Palette{color: color}
}

func (p Palette) paint(code int, s string) string {
	if !p.color {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", code, s)
}

// Success returns s in the success (green) color.
func (p Palette) Success(s string) string { return p.paint(colorSuccess, s) }

// Failure returns s in the failure (red) color.
func (p Palette) Failure(s string) string { return p.paint(colorFailure, s) }

// Accent returns s in the accent (blue) color.
func (p Palette) Accent(s string) string { return p.paint(colorAccent, s) }

// Muted returns s in the muted (gray) color.
func (p Palette) Muted(s string) string { return p.paint(colorMuted, s) }

// Field is one labelled value of a summary block.
type Field struct {
	Label string
	Value any
}

// WriteSummary prints a headline followed by aligned label/value lines.
// ok selects the success or failure color for the headline.
func (p Palette) WriteSummary(w io.Writer, ok bool, headline string, fields []Field) error {
	mark, style := "✓", p.Success
	if !ok {
		mark, style = "✗", p.Failure
	}
	if _, err := fmt.Fprintf(w, "%s %s\n", style(mark), headline); err != nil {
		return err
	}

	width := 0
	for _, f := range fields {
		width = max(width, len(f.Label))
	}
	for _, f := range fields {
		pad := strings.Repeat(" ", width-len(f.Label))
		if _, err := fmt.Fprintf(w, "  %s%s  %s\n", p.Muted(f.Label), pad, p.Accent(fmt.Sprint(f.Value))); err != nil {
			return err
		}
	}
	return nil
}
