// Package item holds the calendar domain types shared by the backends, the
// engine and the views.
package item

import (
	"fmt"
	"strings"
	"time"
)

// Kind distinguishes the two item families the calendar can place.
type Kind string

const (
	KindEvent Kind = "event"
	KindTask  Kind = "task"
)

// ParseKind accepts "event", "task" and their plurals.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "event", "events":
		return KindEvent, nil
	case "task", "tasks":
		return KindTask, nil
	default:
		return "", fmt.Errorf("item: unknown kind %q", s)
	}
}

// Event is a calendar event as stored by a backend.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime,omitempty"`
	AllDay      bool      `json:"allDay,omitempty"`
	RRule       string    `json:"rrule,omitempty"`
}

// Task is a task with an optional due date.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}

// Timed is the read-only view of an event or a task that the calendar engine
// indexes and positions. End is zero when the source has no end.
type Timed struct {
	ID    string    `json:"id"`
	Title string    `json:"title"`
	Kind  Kind      `json:"kind"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end,omitempty"`
	RRule string    `json:"rrule,omitempty"`
}

// HasEnd reports whether the item carries an end timestamp.
func (t Timed) HasEnd() bool {
	return !t.End.IsZero()
}

// Duration is End-Start, or zero when there is no end.
func (t Timed) Duration() time.Duration {
	if !t.HasEnd() {
		return 0
	}
	return t.End.Sub(t.Start)
}

// In converts both timestamps to loc.
func (t Timed) In(loc *time.Location) Timed {
	if loc == nil {
		return t
	}
	t.Start = t.Start.In(loc)
	if t.HasEnd() {
		t.End = t.End.In(loc)
	}
	return t
}

// Timed returns the calendar view of the event.
func (e Event) Timed() Timed {
	return Timed{
		ID:    e.ID,
		Title: e.Title,
		Kind:  KindEvent,
		Start: e.StartTime,
		End:   e.EndTime,
		RRule: e.RRule,
	}
}

// Timed returns the calendar view of the task. Tasks without a due date have
// no place on the calendar and report false.
func (t Task) Timed() (Timed, bool) {
	if t.DueDate == nil || t.DueDate.IsZero() {
		return Timed{}, false
	}
	return Timed{
		ID:    t.ID,
		Title: t.Title,
		Kind:  KindTask,
		Start: *t.DueDate,
	}, true
}

// FromEvents converts events, dropping those without a start.
func FromEvents(events []Event) []Timed {
	out := make([]Timed, 0, len(events))
	for _, e := range events {
		if e.StartTime.IsZero() {
			continue
		}
		out = append(out, e.Timed())
	}
	return out
}

// FromTasks converts tasks, dropping those without a due date.
func FromTasks(tasks []Task) []Timed {
	out := make([]Timed, 0, len(tasks))
	for _, t := range tasks {
		if ti, ok := t.Timed(); ok {
			out = append(out, ti)
		}
	}
	return out
}
