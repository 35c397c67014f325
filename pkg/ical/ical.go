// Package ical converts hubz items to and from iCalendar.
package ical

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	goical "github.com/emersion/go-ical"

	"tableflip.dev/hubz/pkg/item"
)

// ProductID is written to every calendar hubz produces.
const ProductID = "-//Hubz//Calendar//FR"

// NewCalendar returns an empty VCALENDAR with the required properties.
func NewCalendar() *goical.Calendar {
	cal := goical.NewCalendar()
	cal.Props.SetText(goical.PropVersion, "2.0")
	cal.Props.SetText(goical.PropProductID, ProductID)
	return cal
}

// Export writes events as a single calendar.
func Export(w io.Writer, events []item.Event, stamp time.Time) error {
	cal := NewCalendar()
	for _, e := range events {
		cal.Children = append(cal.Children, EventComponent(e, stamp))
	}
	if err := goical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("ical: encode: %w", err)
	}
	return nil
}

// EventComponent builds a VEVENT.
func EventComponent(e item.Event, stamp time.Time) *goical.Component {
	ev := goical.NewEvent()
	ev.Props.SetText(goical.PropUID, e.ID)
	ev.Props.SetText(goical.PropSummary, e.Title)
	ev.Props.SetDateTime(goical.PropDateTimeStamp, stamp.UTC())
	if e.Description != "" {
		ev.Props.SetText(goical.PropDescription, e.Description)
	}
	if e.Location != "" {
		ev.Props.SetText(goical.PropLocation, e.Location)
	}

	if e.AllDay {
		ev.Props.SetDate(goical.PropDateTimeStart, e.StartTime)
		if !e.EndTime.IsZero() {
			ev.Props.SetDate(goical.PropDateTimeEnd, e.EndTime)
		}
	} else {
		ev.Props.SetDateTime(goical.PropDateTimeStart, e.StartTime.UTC())
		if !e.EndTime.IsZero() {
			ev.Props.SetDateTime(goical.PropDateTimeEnd, e.EndTime.UTC())
		}
	}

	if rule := strings.TrimPrefix(e.RRule, "RRULE:"); rule != "" {
		// Raw value: SetText would escape the semicolons.
		p := goical.NewProp(goical.PropRecurrenceRule)
		p.Value = rule
		ev.Props.Set(p)
	}
	return ev.Component
}

// EventFromComponent reads a VEVENT. Floating times are read in loc.
func EventFromComponent(comp *goical.Component, loc *time.Location) (item.Event, error) {
	if comp.Name != goical.CompEvent {
		return item.Event{}, fmt.Errorf("ical: expected %s, got %s", goical.CompEvent, comp.Name)
	}
	e := item.Event{
		ID:          text(comp, goical.PropUID),
		Title:       text(comp, goical.PropSummary),
		Description: text(comp, goical.PropDescription),
		Location:    text(comp, goical.PropLocation),
	}
	if e.ID == "" {
		return item.Event{}, fmt.Errorf("ical: event without UID")
	}

	prop := comp.Props.Get(goical.PropDateTimeStart)
	if prop == nil {
		return item.Event{}, fmt.Errorf("ical: event %s without DTSTART", e.ID)
	}
	start, err := prop.DateTime(loc)
	if err != nil {
		return item.Event{}, fmt.Errorf("ical: event %s DTSTART: %w", e.ID, err)
	}
	e.StartTime = start
	e.AllDay = prop.ValueType() == goical.ValueDate

	if prop := comp.Props.Get(goical.PropDateTimeEnd); prop != nil {
		if end, err := prop.DateTime(loc); err == nil {
			e.EndTime = end
		}
	} else if prop := comp.Props.Get(goical.PropDuration); prop != nil {
		if d, err := prop.Duration(); err == nil {
			e.EndTime = start.Add(d)
		}
	}

	if prop := comp.Props.Get(goical.PropRecurrenceRule); prop != nil {
		e.RRule = prop.Value
	}
	return e, nil
}

// TaskComponent builds a VTODO.
func TaskComponent(t item.Task, stamp time.Time) *goical.Component {
	todo := goical.NewComponent(goical.CompToDo)
	todo.Props.SetText(goical.PropUID, t.ID)
	todo.Props.SetText(goical.PropSummary, t.Title)
	todo.Props.SetDateTime(goical.PropDateTimeStamp, stamp.UTC())
	if t.Description != "" {
		todo.Props.SetText(goical.PropDescription, t.Description)
	}
	if t.Status != "" {
		todo.Props.SetText(goical.PropStatus, todoStatus(t.Status))
	}
	if p, ok := priorityValue(t.Priority); ok {
		todo.Props.SetText(goical.PropPriority, strconv.Itoa(p))
	}
	if t.DueDate != nil {
		todo.Props.SetDateTime(goical.PropDue, t.DueDate.UTC())
	}
	return todo
}

// TaskFromComponent reads a VTODO.
func TaskFromComponent(comp *goical.Component, loc *time.Location) (item.Task, error) {
	if comp.Name != goical.CompToDo {
		return item.Task{}, fmt.Errorf("ical: expected %s, got %s", goical.CompToDo, comp.Name)
	}
	t := item.Task{
		ID:          text(comp, goical.PropUID),
		Title:       text(comp, goical.PropSummary),
		Description: text(comp, goical.PropDescription),
		Status:      taskStatus(text(comp, goical.PropStatus)),
		Priority:    priorityName(text(comp, goical.PropPriority)),
	}
	if t.ID == "" {
		return item.Task{}, fmt.Errorf("ical: task without UID")
	}
	if prop := comp.Props.Get(goical.PropDue); prop != nil {
		due, err := prop.DateTime(loc)
		if err != nil {
			return item.Task{}, fmt.Errorf("ical: task %s DUE: %w", t.ID, err)
		}
		t.DueDate = &due
	}
	return t, nil
}

func text(comp *goical.Component, name string) string {
	prop := comp.Props.Get(name)
	if prop == nil {
		return ""
	}
	if v, err := prop.Text(); err == nil {
		return v
	}
	return prop.Value
}

// Task statuses map onto the VTODO STATUS values.
func todoStatus(s string) string {
	switch strings.ToUpper(s) {
	case "DONE", "COMPLETED":
		return "COMPLETED"
	case "IN_PROGRESS", "IN-PROCESS":
		return "IN-PROCESS"
	case "CANCELLED":
		return "CANCELLED"
	default:
		return "NEEDS-ACTION"
	}
}

func taskStatus(s string) string {
	switch strings.ToUpper(s) {
	case "COMPLETED":
		return "DONE"
	case "IN-PROCESS":
		return "IN_PROGRESS"
	case "CANCELLED":
		return "CANCELLED"
	default:
		return "TODO"
	}
}

func priorityValue(p string) (int, bool) {
	switch strings.ToUpper(p) {
	case "HIGH", "URGENT":
		return 1, true
	case "MEDIUM":
		return 5, true
	case "LOW":
		return 9, true
	}
	return 0, false
}

func priorityName(v string) string {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n == 0 {
		return ""
	}
	switch {
	case n <= 4:
		return "HIGH"
	case n == 5:
		return "MEDIUM"
	default:
		return "LOW"
	}
}
