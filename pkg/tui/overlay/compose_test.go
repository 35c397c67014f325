package overlay

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/reflow/ansi"
)

func stripANSI(s string) string {
	var b strings.Builder
	inEscape := false
	for _, r := range s {
		if r == ansi.Marker {
			inEscape = true
			continue
		}
		if inEscape {
			if ansi.IsTerminator(r) {
				inEscape = false
			}
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func TestComposeCentersForeground(t *testing.T) {
	bg := strings.Repeat("..........\n", 5)
	out := Compose(strings.TrimSuffix(bg, "\n"), 10, 5, "AB\nCD", Placement{
		Horizontal: lipgloss.Center,
		Vertical:   lipgloss.Center,
	})
	lines := strings.Split(stripANSI(out), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d", len(lines))
	}
	want := []string{"..........", "....AB....", "....CD....", "..........", ".........."}
	for i, w := range want {
		if lines[i] != w {
			t.Fatalf("line %d: expected %q, got %q", i, w, lines[i])
		}
	}
}

func TestComposeKeepsWidthWithStyledBackground(t *testing.T) {
	styled := "\x1b[31mRéunion à 9h\x1b[0m and more text"
	out := Compose(styled, 30, 1, "XX", Placement{MarginX: 3})
	plain := stripANSI(out)
	if w := ansi.PrintableRuneWidth(plain); w != 30 {
		t.Fatalf("expected width 30, got %d (%q)", w, plain)
	}
	if !strings.HasPrefix(plain, "RéuXX") {
		t.Fatalf("unexpected line %q", plain)
	}
	if !strings.Contains(plain, "on à 9h") {
		t.Fatalf("expected background kept after the overlay, got %q", plain)
	}
}

func TestComposeClampsToBounds(t *testing.T) {
	out := Compose("", 4, 2, "TOO WIDE\nX\nY", Placement{Horizontal: lipgloss.Right, Vertical: lipgloss.Bottom})
	lines := strings.Split(stripANSI(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0] != "TOO " || lines[1] != "X   " {
		t.Fatalf("unexpected clamp %q", lines)
	}
}
