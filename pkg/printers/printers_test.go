package printers

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"tableflip.dev/hubz/pkg/calendar"
	"tableflip.dev/hubz/pkg/item"
)

func init() {
	color.NoColor = true
}

func at(d, h, m int) time.Time {
	return time.Date(2024, 3, d, h, m, 0, 0, time.UTC)
}

func sample() []item.Timed {
	return []item.Timed{
		{ID: "e1", Title: "Réunion", Kind: item.KindEvent, Start: at(15, 9, 30), End: at(15, 10, 0)},
		{ID: "t1", Title: "Rapport", Kind: item.KindTask, Start: at(15, 18, 0)},
		{ID: "e2", Title: "Dentiste", Kind: item.KindEvent, Start: at(12, 14, 0), End: at(12, 15, 0)},
	}
}

func TestSpan(t *testing.T) {
	tests := []struct {
		name string
		it   item.Timed
		want string
	}{
		{"event", item.Timed{Kind: item.KindEvent, Start: at(1, 9, 30), End: at(1, 10, 15)}, "09:30-10:15"},
		{"no end", item.Timed{Kind: item.KindEvent, Start: at(1, 9, 30)}, "09:30"},
		{"task", item.Timed{Kind: item.KindTask, Start: at(1, 18, 0)}, "18:00"},
		{"whole day", item.Timed{Kind: item.KindEvent, Start: at(1, 0, 0), End: at(2, 0, 0)}, "journée"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Span(tt.it); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestMonthLongListsItemsUnderTheirDay(t *testing.T) {
	var buf bytes.Buffer
	pp := &PrettyPrint{Out: &buf}
	pp.MonthLong(calendar.BuildMonth(at(1, 0, 0), sample()), at(15, 8, 0))

	out := buf.String()
	if !strings.Contains(out, "15 V  • 09:30-10:00 Réunion") {
		t.Fatalf("expected event on the 15th, got:\n%s", out)
	}
	if !strings.Contains(out, "      ☐ 18:00 Rapport") {
		t.Fatalf("expected task indented under the first item, got:\n%s", out)
	}
	if lines := strings.Count(out, "\n"); lines != 31+1+1 {
		t.Fatalf("expected a line per day plus the extra item and a blank line, got %d", lines)
	}
}

func TestTimeGridSkipsEmptyHours(t *testing.T) {
	var buf bytes.Buffer
	pp := &PrettyPrint{Out: &buf}
	pp.TimeGrid(calendar.BuildDay(at(15, 0, 0), sample()), at(15, 8, 0))

	out := buf.String()
	for _, want := range []string{"Vendredi 15 Mar (aujourd'hui)", "09:00 • 09:30-10:00 Réunion", "18:00 ☐ 18:00 Rapport"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "  10:00 ") {
		t.Fatalf("unexpected empty slot in:\n%s", out)
	}
}

func TestItemsWithIDs(t *testing.T) {
	var buf bytes.Buffer
	pp := &PrettyPrint{Out: &buf, ShowID: true}
	pp.Items(sample()[:1]...)
	if !strings.HasPrefix(buf.String(), "e1 ") || !strings.Contains(buf.String(), "Réunion") {
		t.Fatalf("unexpected output %q", buf.String())
	}

	buf.Reset()
	pp.Items()
	if !strings.Contains(buf.String(), "aucun") {
		t.Fatalf("expected empty marker, got %q", buf.String())
	}
}

func TestCalendarDocWeek(t *testing.T) {
	doc := NewCalendarDoc(calendar.ModeWeek, at(15, 0, 0), sample())
	if doc.Header != "10 - 16 Mars 2024" {
		t.Fatalf("unexpected header %q", doc.Header)
	}
	if len(doc.Days) != 7 {
		t.Fatalf("expected 7 days, got %d", len(doc.Days))
	}
	friday := doc.Days[5]
	if friday.Date != "2024-03-15" || len(friday.Items) != 2 {
		t.Fatalf("unexpected friday %+v", friday)
	}
	if friday.Items[0].Top != 9*60+30 || friday.Items[0].Height != 30 {
		t.Fatalf("unexpected position %+v", friday.Items[0])
	}
	if doc.Month != nil {
		t.Fatalf("week doc should not carry a month grid")
	}
}

func TestEncode(t *testing.T) {
	doc := NewCalendarDoc(calendar.ModeDay, at(15, 0, 0), sample())

	var js bytes.Buffer
	if err := Encode(&js, FormatJSON, doc); err != nil {
		t.Fatalf("json: %v", err)
	}
	var back map[string]any
	if err := json.Unmarshal(js.Bytes(), &back); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if back["mode"] != "day" {
		t.Fatalf("unexpected mode %v", back["mode"])
	}

	var ym bytes.Buffer
	if err := Encode(&ym, FormatYAML, doc); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	var yback struct {
		Header string `yaml:"header"`
		Days   []struct {
			Items []struct {
				Title string `yaml:"title"`
			} `yaml:"items"`
		} `yaml:"days"`
	}
	if err := yaml.Unmarshal(ym.Bytes(), &yback); err != nil {
		t.Fatalf("decode yaml: %v", err)
	}
	if yback.Header != "Vendredi 15 Mars 2024" || len(yback.Days) != 1 || len(yback.Days[0].Items) != 2 {
		t.Fatalf("unexpected yaml %+v", yback)
	}

	if err := Encode(&ym, FormatText, doc); err == nil {
		t.Fatalf("expected text to be rejected")
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatText, "JSON": FormatJSON, "yml": FormatYAML} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Fatalf("expected error for xml")
	}
}
