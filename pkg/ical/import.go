package ical

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"tableflip.dev/hubz/pkg/item"
)

// Import reads the VEVENTs of an .ics stream. Events missing a UID or a
// start are skipped and logged. Recurrence rules are kept unexpanded.
func Import(r io.Reader, loc *time.Location) ([]item.Event, error) {
	cal, err := ics.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("ical: parse: %w", err)
	}

	var events []item.Event
	for _, ve := range cal.Events() {
		e, err := fromVEvent(ve, loc)
		if err != nil {
			slog.Warn("skipping event", "err", err)
			continue
		}
		events = append(events, e)
	}
	return events, nil
}

func fromVEvent(ve *ics.VEvent, loc *time.Location) (item.Event, error) {
	var e item.Event
	if p := ve.GetProperty(ics.ComponentPropertyUniqueId); p != nil {
		e.ID = p.Value
	}
	if e.ID == "" {
		return e, fmt.Errorf("event without UID")
	}
	if p := ve.GetProperty(ics.ComponentPropertySummary); p != nil {
		e.Title = unescape(p.Value)
	}
	if p := ve.GetProperty(ics.ComponentPropertyDescription); p != nil {
		e.Description = unescape(p.Value)
	}
	if p := ve.GetProperty(ics.ComponentPropertyLocation); p != nil {
		e.Location = unescape(p.Value)
	}

	dtStart := ve.GetProperty(ics.ComponentPropertyDtStart)
	if dtStart == nil {
		return e, fmt.Errorf("event %s without DTSTART", e.ID)
	}
	e.AllDay = isDateValue(dtStart)

	if e.AllDay {
		start, err := ve.GetAllDayStartAt()
		if err != nil {
			return e, fmt.Errorf("event %s DTSTART: %w", e.ID, err)
		}
		e.StartTime = floating(start, loc)
		if end, err := ve.GetAllDayEndAt(); err == nil {
			e.EndTime = floating(end, loc)
		} else {
			e.EndTime = e.StartTime.AddDate(0, 0, 1)
		}
	} else {
		start, err := ve.GetStartAt()
		if err != nil {
			return e, fmt.Errorf("event %s DTSTART: %w", e.ID, err)
		}
		e.StartTime = start.In(loc)
		if end, err := ve.GetEndAt(); err == nil {
			e.EndTime = end.In(loc)
		}
	}

	if p := ve.GetProperty(ics.ComponentPropertyRrule); p != nil {
		e.RRule = p.Value
	}
	return e, nil
}

func isDateValue(p *ics.IANAProperty) bool {
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

// floating keeps the wall date of an all-day value in loc.
func floating(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

var textUnescaper = strings.NewReplacer(`\,`, ",", `\;`, ";", `\n`, "\n", `\N`, "\n", `\\`, `\`)

func unescape(s string) string {
	return textUnescaper.Replace(s)
}
