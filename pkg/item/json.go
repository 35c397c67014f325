package item

import (
	"encoding/json"
	"fmt"
	"time"
)

// MarshalJSON leaves endTime out when the event has no end.
func (e Event) MarshalJSON() ([]byte, error) {
	type plain Event
	return json.Marshal(struct {
		plain
		EndTime *time.Time `json:"endTime,omitempty"`
	}{plain(e), optional(e.EndTime)})
}

// UnmarshalJSON reads startTime and endTime as RFC 3339. A null, empty or
// absent value leaves the field zero, anything else that does not parse is an
// error.
func (e *Event) UnmarshalJSON(data []byte) error {
	type plain Event
	var w struct {
		plain
		StartTime json.RawMessage `json:"startTime"`
		EndTime   json.RawMessage `json:"endTime"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	start, err := parseTimestamp(w.StartTime)
	if err != nil {
		return fmt.Errorf("startTime: %w", err)
	}
	end, err := parseTimestamp(w.EndTime)
	if err != nil {
		return fmt.Errorf("endTime: %w", err)
	}
	*e = Event(w.plain)
	e.StartTime = start
	e.EndTime = end
	return nil
}

// UnmarshalJSON treats an empty dueDate like null.
func (t *Task) UnmarshalJSON(data []byte) error {
	type plain Task
	var w struct {
		plain
		DueDate json.RawMessage `json:"dueDate"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	due, err := parseTimestamp(w.DueDate)
	if err != nil {
		return fmt.Errorf("dueDate: %w", err)
	}
	*t = Task(w.plain)
	t.DueDate = optional(due)
	return nil
}

// MarshalJSON leaves end out for items without one.
func (t Timed) MarshalJSON() ([]byte, error) {
	type plain Timed
	return json.Marshal(struct {
		plain
		End *time.Time `json:"end,omitempty"`
	}{plain(t), optional(t.End)})
}

func optional(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func parseTimestamp(raw json.RawMessage) (time.Time, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return time.Time{}, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}, err
	}
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}
