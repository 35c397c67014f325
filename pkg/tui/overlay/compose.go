// Package overlay draws a foreground panel over a rendered background.
package overlay

import (
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
)

// Placement controls overlay alignment and sizing.
type Placement struct {
	Horizontal lipgloss.Position
	Vertical   lipgloss.Position
	MarginX    int
	MarginY    int
	Width      int
	Height     int
}

// Compose draws foreground atop background, keeping the background visible
// outside the overlay bounds. Both may carry ANSI styling.
func Compose(background string, width, height int, foreground string, placement Placement) string {
	bgLines := normalize(background, width, height)
	if foreground == "" || width <= 0 || height <= 0 {
		return strings.Join(bgLines, "\n")
	}
	fgLines := strings.Split(foreground, "\n")

	overlayWidth := placement.Width
	if overlayWidth <= 0 {
		for _, line := range fgLines {
			if w := ansi.PrintableRuneWidth(line); w > overlayWidth {
				overlayWidth = w
			}
		}
	}
	overlayWidth = min(overlayWidth, width)

	overlayHeight := placement.Height
	if overlayHeight <= 0 {
		overlayHeight = len(fgLines)
	}
	overlayHeight = min(overlayHeight, height)
	if overlayWidth <= 0 || overlayHeight <= 0 {
		return strings.Join(bgLines, "\n")
	}

	offsetX, offsetY := offsets(width, height, overlayWidth, overlayHeight, placement)

	for row := 0; row < overlayHeight; row++ {
		y := offsetY + row
		fg := ""
		if row < len(fgLines) {
			fg = fgLines[row]
		}
		base := bgLines[y]
		left := truncate.String(base, uint(offsetX))
		right := skip(base, offsetX+overlayWidth)
		bgLines[y] = left + reset + pad(fg, overlayWidth) + reset + right
	}
	return strings.Join(bgLines, "\n")
}

const reset = "\x1b[0m"

func normalize(view string, width, height int) []string {
	lines := strings.Split(view, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	for i := range lines {
		lines[i] = pad(lines[i], width)
	}
	return lines
}

// pad fits s to exactly width cells.
func pad(s string, width int) string {
	if width <= 0 {
		return ""
	}
	w := ansi.PrintableRuneWidth(s)
	if w > width {
		s = truncate.String(s, uint(width))
		w = ansi.PrintableRuneWidth(s)
	}
	return s + strings.Repeat(" ", width-w)
}

// skip drops the first n cells of s and keeps the escape sequences met on
// the way so the remainder renders with the right style.
func skip(s string, n int) string {
	var (
		b        strings.Builder
		inEscape bool
		seen     int
	)
	for _, r := range s {
		if r == ansi.Marker {
			inEscape = true
			b.WriteRune(r)
			continue
		}
		if inEscape {
			b.WriteRune(r)
			if ansi.IsTerminator(r) {
				inEscape = false
			}
			continue
		}
		if seen < n {
			seen += ansi.PrintableRuneWidth(string(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func offsets(width, height, w, h int, placement Placement) (int, int) {
	x := placement.MarginX
	switch placement.Horizontal {
	case lipgloss.Right:
		x = width - w - placement.MarginX
	case lipgloss.Center:
		x = (width - w) / 2
	}
	x = max(0, min(x, width-w))

	y := placement.MarginY
	switch placement.Vertical {
	case lipgloss.Bottom:
		y = height - h - placement.MarginY
	case lipgloss.Center:
		y = (height - h) / 2
	}
	y = max(0, min(y, height-h))
	return x, y
}
