// Package glyph holds the symbols drawn in front of calendar items.
package glyph

import (
	"strings"

	"tableflip.dev/hubz/pkg/item"
)

type Glyph struct {
	Key       string
	Symbol    string
	Meaning   string
	Signifier bool
}

func DefaultGlyphs() []Glyph {
	g := make([]Glyph, 0, 4)

	g = append(g, Glyph{
		Key:     "e",
		Symbol:  "•",
		Meaning: "événement",
	}, Glyph{
		Key:     "t",
		Symbol:  "☐",
		Meaning: "tâche",
	}, Glyph{
		Key:       "r",
		Symbol:    "↻",
		Meaning:   "répétition",
		Signifier: true,
	}, Glyph{
		Key:       " ",
		Symbol:    " ",
		Meaning:   "aucun",
		Signifier: true,
	})

	return g
}

func (g Glyph) String() string {
	return g.Symbol
}

type Bullet int
type Signifier int

const (
	Event Bullet = iota
	Task
	Recurring Signifier = iota
	None
)

func (b Bullet) Glyph() Glyph {
	return DefaultGlyphs()[b]
}

func (b Bullet) String() string {
	return b.Glyph().String()
}

func (s Signifier) Glyph() Glyph {
	return DefaultGlyphs()[s]
}

func (s Signifier) String() string {
	return s.Glyph().String()
}

// For picks the bullet of an item.
func For(it item.Timed) Bullet {
	if it.Kind == item.KindTask {
		return Task
	}
	return Event
}

// SignifierFor marks repeated items.
func SignifierFor(rrule string) Signifier {
	if rrule != "" {
		return Recurring
	}
	return None
}

// Legend lists the meaning of every visible glyph on one line.
func Legend() string {
	var parts []string
	for _, g := range DefaultGlyphs() {
		if strings.TrimSpace(g.Symbol) == "" {
			continue
		}
		parts = append(parts, g.Symbol+" "+g.Meaning)
	}
	return strings.Join(parts, "  ")
}
