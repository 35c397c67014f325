package item

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestFromTasksSkipsMissingDueDate(t *testing.T) {
	due := time.Date(2024, 3, 15, 14, 0, 0, 0, time.Local)
	tasks := []Task{
		{ID: "a", Title: "with due", DueDate: &due},
		{ID: "b", Title: "no due"},
		{ID: "c", Title: "zero due", DueDate: &time.Time{}},
	}
	got := FromTasks(tasks)
	if len(got) != 1 {
		t.Fatalf("expected 1 timed task, got %d", len(got))
	}
	if got[0].ID != "a" || got[0].Kind != KindTask || !got[0].Start.Equal(due) {
		t.Fatalf("unexpected timed task: %+v", got[0])
	}
	if got[0].HasEnd() {
		t.Fatalf("tasks have no end")
	}
}

func TestFromEventsSkipsZeroStart(t *testing.T) {
	start := time.Date(2024, 3, 15, 9, 30, 0, 0, time.Local)
	events := []Event{
		{ID: "a", Title: "standup", StartTime: start, EndTime: start.Add(30 * time.Minute)},
		{ID: "b", Title: "broken"},
	}
	got := FromEvents(events)
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("unexpected events: %+v", got)
	}
	if got[0].Duration() != 30*time.Minute {
		t.Fatalf("unexpected duration %v", got[0].Duration())
	}
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{"": KindEvent, "Events": KindEvent, "task": KindTask, " tasks ": KindTask} {
		got, err := ParseKind(in)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", in, err)
		}
		if got != want {
			t.Fatalf("%q: expected %s, got %s", in, want, got)
		}
	}
	if _, err := ParseKind("habit"); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestDraftEvent(t *testing.T) {
	day := time.Date(2024, 3, 15, 17, 42, 0, 0, time.Local)

	tests := []struct {
		name      string
		draft     Draft
		wantStart time.Time
		wantEnd   time.Time
		allDay    bool
	}{
		{
			name:      "timed default length",
			draft:     Draft{Title: "Réunion", Date: day, Time: "09:00"},
			wantStart: time.Date(2024, 3, 15, 9, 0, 0, 0, time.Local),
			wantEnd:   time.Date(2024, 3, 15, 10, 0, 0, 0, time.Local),
		},
		{
			name:      "timed with duration",
			draft:     Draft{Title: "Atelier", Date: day, Time: "14:30", Duration: "1h30"},
			wantStart: time.Date(2024, 3, 15, 14, 30, 0, 0, time.Local),
			wantEnd:   time.Date(2024, 3, 15, 16, 0, 0, 0, time.Local),
		},
		{
			name:      "all day",
			draft:     Draft{Title: "Congé", Date: day},
			wantStart: time.Date(2024, 3, 15, 0, 0, 0, 0, time.Local),
			wantEnd:   time.Date(2024, 3, 16, 0, 0, 0, 0, time.Local),
			allDay:    true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := tt.draft.Event()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !e.StartTime.Equal(tt.wantStart) {
				t.Errorf("start: expected %v, got %v", tt.wantStart, e.StartTime)
			}
			if !e.EndTime.Equal(tt.wantEnd) {
				t.Errorf("end: expected %v, got %v", tt.wantEnd, e.EndTime)
			}
			if e.AllDay != tt.allDay {
				t.Errorf("all day: expected %v", tt.allDay)
			}
		})
	}
}

func TestDraftInvalid(t *testing.T) {
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.Local)
	drafts := []Draft{
		{Date: day},
		{Title: "x"},
		{Title: "x", Date: day, Time: "9h"},
		{Title: "x", Date: day, Time: "09:00", Duration: "soon"},
	}
	for _, d := range drafts {
		if _, err := d.Event(); !errors.Is(err, ErrInvalidDraft) {
			t.Errorf("draft %+v: expected ErrInvalidDraft, got %v", d, err)
		}
	}
}

func TestDraftTask(t *testing.T) {
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.Local)
	task, err := Draft{Kind: KindTask, Title: "Rapport", Date: day, Time: "18:00"}.Task()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2024, 3, 15, 18, 0, 0, 0, time.Local)
	if task.DueDate == nil || !task.DueDate.Equal(want) {
		t.Fatalf("unexpected due date: %v", task.DueDate)
	}
}

func TestEventJSONOmitsMissingEnd(t *testing.T) {
	start := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		in      any
		want    string
		notWant string
	}{{
		name:    "event without end",
		in:      Event{ID: "a", Title: "Appel", StartTime: start},
		want:    `"startTime":"2024-03-15T09:00:00Z"`,
		notWant: `endTime`,
	}, {
		name: "event with end",
		in:   Event{ID: "a", Title: "Appel", StartTime: start, EndTime: start.Add(time.Hour)},
		want: `"endTime":"2024-03-15T10:00:00Z"`,
	}, {
		name:    "timed task",
		in:      Timed{ID: "t", Kind: KindTask, Start: start},
		want:    `"start":"2024-03-15T09:00:00Z"`,
		notWant: `"end"`,
	}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := json.Marshal(tt.in)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if !strings.Contains(string(raw), tt.want) {
				t.Fatalf("expected %s in %s", tt.want, raw)
			}
			if tt.notWant != "" && strings.Contains(string(raw), tt.notWant) {
				t.Fatalf("did not expect %s in %s", tt.notWant, raw)
			}
		})
	}
}

func TestUnmarshalTimestamps(t *testing.T) {
	var e Event
	if err := json.Unmarshal([]byte(`{"id":"a","title":"Appel","startTime":"2024-03-15T09:00:00+01:00","endTime":null,"allDay":true}`), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e.ID != "a" || !e.AllDay || e.StartTime.UTC().Hour() != 8 || !e.EndTime.IsZero() {
		t.Fatalf("unexpected event %+v", e)
	}

	var task Task
	if err := json.Unmarshal([]byte(`{"id":"t","title":"Relire","dueDate":""}`), &task); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if task.DueDate != nil || task.Title != "Relire" {
		t.Fatalf("expected an undated task, got %+v", task)
	}

	if err := json.Unmarshal([]byte(`{"id":"b","startTime":"not-a-date"}`), &e); err == nil {
		t.Fatalf("expected an error for a malformed startTime")
	}
	if err := json.Unmarshal([]byte(`{"id":"t","dueDate":"15/03/2024"}`), &task); err == nil {
		t.Fatalf("expected an error for a malformed dueDate")
	}
}
