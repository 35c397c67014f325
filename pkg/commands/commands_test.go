package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tableflip.dev/hubz/pkg/item"
)

// withLocalBackend points the configuration at a sqlite file under a temp dir.
func withLocalBackend(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HUBZ_CONFIG_PATH", dir)
	t.Setenv("HUBZ_BACKEND", "sqlite")
	t.Setenv("HUBZ_SQLITE_PATH", filepath.Join(dir, "hubz.db"))
	t.Setenv("HUBZ_PATH", filepath.Join(dir, "prefs"))
	t.Setenv("HUBZ_TIMEZONE", "UTC")
	t.Setenv("HUBZ_LOG_LEVEL", "")
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := New()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	if err != nil {
		t.Fatalf("hubz %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func TestEventsAddListDelete(t *testing.T) {
	withLocalBackend(t)

	out := mustRun(t, "events", "add", "Réunion", "d'équipe", "--on=2024-03-15", "--at=09:30", "--for=1h30m", "-o", "json")
	var created item.Timed
	if err := json.Unmarshal([]byte(out), &created); err != nil {
		t.Fatalf("decode created: %v\n%s", err, out)
	}
	if created.Title != "Réunion d'équipe" {
		t.Fatalf("unexpected title %q", created.Title)
	}
	wantStart := time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)
	if !created.Start.Equal(wantStart) || !created.End.Equal(wantStart.Add(90*time.Minute)) {
		t.Fatalf("unexpected span %s - %s", created.Start, created.End)
	}

	out = mustRun(t, "events", "list", "--mode=jour", "--on=2024-03-15", "-o", "json")
	var events []item.Event
	if err := json.Unmarshal([]byte(out), &events); err != nil {
		t.Fatalf("decode list: %v\n%s", err, out)
	}
	if len(events) != 1 || events[0].ID != created.ID {
		t.Fatalf("expected the created event, got %+v", events)
	}

	out = mustRun(t, "events", "delete", created.ID)
	if !strings.Contains(out, "supprimé "+created.ID) {
		t.Fatalf("unexpected delete output %q", out)
	}

	out = mustRun(t, "events", "list", "--mode=jour", "--on=2024-03-15", "-o", "json")
	events = nil
	if err := json.Unmarshal([]byte(out), &events); err != nil {
		t.Fatalf("decode list: %v\n%s", err, out)
	}
	if len(events) != 0 {
		t.Fatalf("expected no events after delete, got %+v", events)
	}
}

func TestDeleteUnknown(t *testing.T) {
	withLocalBackend(t)

	if _, err := run(t, "tasks", "delete", "task-nope"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAddRequiresTitle(t *testing.T) {
	withLocalBackend(t)

	if _, err := run(t, "events", "add"); err == nil {
		t.Fatalf("expected error without title")
	}
	if _, err := run(t, "events", "add", "Cours", "--at=25:00"); err == nil {
		t.Fatalf("expected error for invalid time")
	}
}

func TestTasksListText(t *testing.T) {
	withLocalBackend(t)

	mustRun(t, "tasks", "add", "Rendre", "le", "rapport", "--on=2024-03-18", "--at=17:00")
	mustRun(t, "tasks", "add", "Relire", "--on=2024-03-18")

	out := mustRun(t, "tasks", "list", "--ids")
	for _, want := range []string{"Tâches", "2 éléments", "Rendre le rapport", "2024-03-18 17:00", "task-"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestCalendarStructured(t *testing.T) {
	withLocalBackend(t)

	mustRun(t, "events", "add", "Yoga", "--on=2024-03-13", "--at=18:00", "--for=1h")

	out := mustRun(t, "calendar", "--mode=semaine", "--on=2024-03-15", "-o", "json")
	var doc struct {
		Mode   string `json:"mode"`
		Header string `json:"header"`
		Days   []struct {
			Date  string `json:"date"`
			Items []struct {
				Title  string `json:"title"`
				Top    int    `json:"topOffsetMinutes"`
				Height int    `json:"heightMinutes"`
			} `json:"items"`
		} `json:"days"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if doc.Mode != "week" || len(doc.Days) != 7 {
		t.Fatalf("expected a week of 7 days, got %q with %d", doc.Mode, len(doc.Days))
	}
	if doc.Days[0].Date != "2024-03-10" {
		t.Fatalf("expected week to start Sunday 2024-03-10, got %s", doc.Days[0].Date)
	}
	wed := doc.Days[3]
	if wed.Date != "2024-03-13" || len(wed.Items) != 1 {
		t.Fatalf("expected Yoga on Wednesday, got %+v", wed)
	}
	if wed.Items[0].Top != 18*60 || wed.Items[0].Height != 60 {
		t.Fatalf("unexpected position %+v", wed.Items[0])
	}
}

func TestCalendarUnknownMode(t *testing.T) {
	withLocalBackend(t)

	if _, err := run(t, "calendar", "--mode=year"); err == nil {
		t.Fatalf("expected error for an unknown mode")
	}
}

func TestExportImport(t *testing.T) {
	dir := withLocalBackend(t)

	mustRun(t, "events", "add", "Concert", "--on=2024-03-20", "--at=20:00", "--for=2h")
	file := filepath.Join(dir, "mars.ics")
	mustRun(t, "export", "--on=2024-03-01", "--file", file)

	raw, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.Contains(string(raw), "BEGIN:VCALENDAR") || !strings.Contains(string(raw), "SUMMARY:Concert") {
		t.Fatalf("unexpected export:\n%s", raw)
	}

	out := mustRun(t, "import", "--dry-run", file)
	if !strings.Contains(out, "Concert") {
		t.Fatalf("expected Concert in dry run:\n%s", out)
	}

	out = mustRun(t, "import", file)
	if !strings.Contains(out, "1 événement(s) importé(s)") {
		t.Fatalf("unexpected import output %q", out)
	}
	out = mustRun(t, "events", "list", "--on=2024-03-20", "--mode=day", "-o", "json")
	var events []item.Event
	if err := json.Unmarshal([]byte(out), &events); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected original and imported copy, got %d", len(events))
	}
}

func TestRemindOnce(t *testing.T) {
	withLocalBackend(t)

	soon := time.Now().UTC().Add(5 * time.Minute)
	mustRun(t, "events", "add", "Appel",
		"--on="+soon.Format("2006-01-02"), "--at="+soon.Format("15:04"))

	out := mustRun(t, "remind", "--lead=30m")
	if !strings.Contains(out, "Appel") {
		t.Fatalf("expected a reminder, got %q", out)
	}
	out = mustRun(t, "remind", "--lead=30m")
	if strings.Contains(out, "Appel") {
		t.Fatalf("expected the reminder to be shown once, got %q", out)
	}
}

func TestInvalidLogLevel(t *testing.T) {
	withLocalBackend(t)

	if _, err := run(t, "--log-level=bruyant", "tasks", "list"); err == nil {
		t.Fatalf("expected error for invalid log level")
	}
}

func TestUnknownBackend(t *testing.T) {
	withLocalBackend(t)

	if _, err := run(t, "--backend=ftp", "tasks", "list"); err == nil || !strings.Contains(err.Error(), "unknown backend") {
		t.Fatalf("expected unknown backend, got %v", err)
	}
}

func TestModeCompletions(t *testing.T) {
	got, _ := modeCompletions(nil, nil, "")
	if len(got) != 3 || !strings.HasPrefix(got[1], "week\t") {
		t.Fatalf("unexpected completions %v", got)
	}
}
