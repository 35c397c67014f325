// Package local is a single user sqlite backend for running hubz without the
// API.
package local

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"tableflip.dev/hubz/pkg/backend"
	"tableflip.dev/hubz/pkg/item"
)

// Storage keeps events and tasks in a sqlite file.
type Storage struct {
	db *sql.DB
}

// Open creates or opens the database at path and applies migrations.
func Open(path string) (*Storage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	s := &Storage{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close releases the database.
func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT DEFAULT '',
			location TEXT DEFAULT '',
			start_time DATETIME NOT NULL,
			end_time DATETIME,
			all_day INTEGER DEFAULT 0,
			rrule TEXT DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_start ON events(start_time)`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT DEFAULT '',
			status TEXT DEFAULT 'TODO',
			priority TEXT DEFAULT '',
			due_date DATETIME,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_due ON tasks(due_date)`,
	}
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

func newID(prefix string) string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
	}
	return prefix + "-" + hex.EncodeToString(b)
}

// ListEvents returns events starting in [from, to), plus every recurring
// series that started before to so it can be expanded.
func (s *Storage) ListEvents(ctx context.Context, from, to time.Time) ([]item.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, location, start_time, end_time, all_day, rrule
		FROM events
		WHERE start_time < ? AND (start_time >= ? OR rrule != '')
		ORDER BY start_time`, to.UTC(), from.UTC())
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []item.Event
	for rows.Next() {
		var (
			e      item.Event
			end    sql.NullTime
			allDay int
		)
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.Location, &e.StartTime, &end, &allDay, &e.RRule); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		// The driver reads an unparseable DATETIME as the zero time.
		if e.StartTime.IsZero() || (end.Valid && end.Time.IsZero()) {
			slog.Debug("skipping event with malformed timestamp", "id", e.ID)
			continue
		}
		e.StartTime = e.StartTime.Local()
		if end.Valid {
			e.EndTime = end.Time.Local()
		}
		e.AllDay = allDay == 1
		events = append(events, e)
	}
	return events, rows.Err()
}

// CreateEvent inserts e with a fresh id.
func (s *Storage) CreateEvent(ctx context.Context, e item.Event) (item.Event, error) {
	if e.ID == "" {
		e.ID = newID("evt")
	}
	var end any
	if !e.EndTime.IsZero() {
		end = e.EndTime.UTC()
	}
	allDay := 0
	if e.AllDay {
		allDay = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (id, title, description, location, start_time, end_time, all_day, rrule)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Title, e.Description, e.Location, e.StartTime.UTC(), end, allDay, e.RRule)
	if err != nil {
		return item.Event{}, fmt.Errorf("insert event: %w", err)
	}
	return e, nil
}

// DeleteEvent removes the event with id.
func (s *Storage) DeleteEvent(ctx context.Context, id string) error {
	return s.deleteFrom(ctx, "events", id)
}

// ListTasks returns all tasks, due ones first.
func (s *Storage) ListTasks(ctx context.Context) ([]item.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, status, priority, due_date
		FROM tasks
		ORDER BY due_date IS NULL, due_date, created_at`)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []item.Task
	for rows.Next() {
		var (
			t   item.Task
			due sql.NullTime
		)
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &due); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		if due.Valid && due.Time.IsZero() {
			slog.Debug("skipping task with malformed due date", "id", t.ID)
			continue
		}
		if due.Valid {
			d := due.Time.Local()
			t.DueDate = &d
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// CreateTask inserts t with a fresh id.
func (s *Storage) CreateTask(ctx context.Context, t item.Task) (item.Task, error) {
	if t.ID == "" {
		t.ID = newID("task")
	}
	if t.Status == "" {
		t.Status = "TODO"
	}
	var due any
	if t.DueDate != nil {
		due = t.DueDate.UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, title, description, status, priority, due_date)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, t.Description, t.Status, t.Priority, due)
	if err != nil {
		return item.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return t, nil
}

// DeleteTask removes the task with id.
func (s *Storage) DeleteTask(ctx context.Context, id string) error {
	return s.deleteFrom(ctx, "tasks", id)
}

func (s *Storage) deleteFrom(ctx context.Context, table, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %q: %w", table, id, backend.ErrNotFound)
	}
	return nil
}

var _ backend.Backend = (*Storage)(nil)
