package printers

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"tableflip.dev/hubz/pkg/calendar"
	"tableflip.dev/hubz/pkg/item"
)

// Format is a structured output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts text, json and yaml.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown output format %q, want text, json or yaml", s)
	}
}

// Encode writes v as JSON or YAML.
func Encode(w io.Writer, format Format, v any) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return fmt.Errorf("format %q is not structured", format)
	}
}

// CalendarDoc is the structured form of a calendar view.
type CalendarDoc struct {
	Mode   calendar.Mode       `json:"mode" yaml:"mode"`
	Header string              `json:"header" yaml:"header"`
	From   time.Time           `json:"from" yaml:"from"`
	To     time.Time           `json:"to" yaml:"to"`
	Days   []DayDoc            `json:"days" yaml:"days"`
	Month  *calendar.MonthGrid `json:"month,omitempty" yaml:"-"`
}

// DayDoc lists the items of one day.
type DayDoc struct {
	Date  string    `json:"date" yaml:"date"`
	Label string    `json:"label" yaml:"label"`
	Items []ItemDoc `json:"items,omitempty" yaml:"items,omitempty"`
}

// ItemDoc is an item with its grid position.
type ItemDoc struct {
	ID       string    `json:"id" yaml:"id"`
	Kind     item.Kind `json:"kind" yaml:"kind"`
	Title    string    `json:"title" yaml:"title"`
	Start    time.Time `json:"start" yaml:"start"`
	End      time.Time `json:"end,omitempty" yaml:"end,omitempty"`
	Span     string    `json:"span" yaml:"span"`
	Top      int       `json:"topOffsetMinutes" yaml:"topOffsetMinutes"`
	Height   int       `json:"heightMinutes" yaml:"heightMinutes"`
	Repeated bool      `json:"repeated,omitempty" yaml:"repeated,omitempty"`
}

// NewCalendarDoc lays out items for mode around anchor. items are expected in
// anchor's location.
func NewCalendarDoc(mode calendar.Mode, anchor time.Time, items []item.Timed) CalendarDoc {
	from, to := calendar.RangeOf(mode, anchor)
	doc := CalendarDoc{
		Mode:   mode,
		Header: calendar.Header(mode, anchor),
		From:   from,
		To:     to,
	}
	for d := from; d.Before(to); d = calendar.AddDays(d, 1) {
		col := calendar.BuildColumn(d, items)
		day := DayDoc{
			Date:  calendar.FormatISODate(d),
			Label: fmt.Sprintf("%s %d %s", calendar.WeekdayName(d.Weekday()), d.Day(), calendar.MonthName(d.Month())),
		}
		for _, p := range col.Items {
			day.Items = append(day.Items, ItemDoc{
				ID:       p.Item.ID,
				Kind:     p.Item.Kind,
				Title:    p.Item.Title,
				Start:    p.Item.Start,
				End:      p.Item.End,
				Span:     Span(p.Item),
				Top:      p.Position.TopOffsetMinutes,
				Height:   p.Position.HeightMinutes,
				Repeated: p.Item.RRule != "",
			})
		}
		doc.Days = append(doc.Days, day)
	}
	if mode == calendar.ModeMonth {
		grid := calendar.BuildMonth(anchor, items)
		doc.Month = &grid
	}
	return doc
}
