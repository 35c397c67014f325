package item

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"tableflip.dev/hubz/pkg/timeutil"
)

// ErrInvalidDraft is wrapped by every Draft validation failure.
var ErrInvalidDraft = errors.New("item: invalid draft")

const layoutClock = "15:04"

// Draft is the user input collected by a creation form before it becomes an
// Event or a Task.
type Draft struct {
	Kind        Kind
	Title       string
	Description string
	Location    string
	// Date carries the calendar day; its clock is ignored.
	Date time.Time
	// Time is an optional "HH:MM" start (or due) time.
	Time string
	// Duration is an optional event length such as "1h30m".
	Duration string
}

// Validate checks the draft without converting it.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return fmt.Errorf("%w: title required", ErrInvalidDraft)
	}
	if d.Date.IsZero() {
		return fmt.Errorf("%w: date required", ErrInvalidDraft)
	}
	if _, _, err := d.clock(); err != nil {
		return err
	}
	if _, err := d.length(); err != nil {
		return err
	}
	return nil
}

func (d Draft) clock() (time.Time, bool, error) {
	day := time.Date(d.Date.Year(), d.Date.Month(), d.Date.Day(), 0, 0, 0, 0, d.Date.Location())
	raw := strings.TrimSpace(d.Time)
	if raw == "" {
		return day, false, nil
	}
	c, err := time.Parse(layoutClock, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: time %q must be HH:MM", ErrInvalidDraft, raw)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), c.Hour(), c.Minute(), 0, 0, day.Location()), true, nil
}

func (d Draft) length() (time.Duration, error) {
	if strings.TrimSpace(d.Duration) == "" {
		return time.Hour, nil
	}
	dur, _, err := timeutil.ParseDuration(d.Duration)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidDraft, err)
	}
	return dur, nil
}

// Event converts the draft. A draft without a time becomes an all-day event.
func (d Draft) Event() (Event, error) {
	if err := d.Validate(); err != nil {
		return Event{}, err
	}
	start, timed, _ := d.clock()
	e := Event{
		Title:       strings.TrimSpace(d.Title),
		Description: d.Description,
		Location:    d.Location,
		StartTime:   start,
	}
	if !timed {
		e.AllDay = true
		e.EndTime = start.AddDate(0, 0, 1)
		return e, nil
	}
	length, _ := d.length()
	e.EndTime = start.Add(length)
	return e, nil
}

// Task converts the draft, using the date and optional time as due date.
func (d Draft) Task() (Task, error) {
	if err := d.Validate(); err != nil {
		return Task{}, err
	}
	due, _, _ := d.clock()
	return Task{
		Title:       strings.TrimSpace(d.Title),
		Description: d.Description,
		Status:      "TODO",
		DueDate:     &due,
	}, nil
}
