// Package mcp provides the Model Context Protocol server integration for hubz.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tableflip.dev/hubz/pkg/backend"
	"tableflip.dev/hubz/pkg/calendar"
	"tableflip.dev/hubz/pkg/controller"
	"tableflip.dev/hubz/pkg/item"
	"tableflip.dev/hubz/pkg/printers"
)

// Service coordinates backend operations shared by the MCP tools and
// resources.
type Service struct {
	Backend  backend.Backend
	Location *time.Location
	Kinds    []item.Kind
	// Now defaults to time.Now.
	Now func() time.Time
}

var errNoBackend = errors.New("backend is not configured")

// NewService builds a service over b showing dates in loc.
func NewService(b backend.Backend, loc *time.Location) *Service {
	return &Service{
		Backend:  b,
		Location: loc,
		Kinds:    []item.Kind{item.KindEvent, item.KindTask},
	}
}

func (s *Service) loc() *time.Location {
	if s.Location == nil {
		return time.Local
	}
	return s.Location
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().In(s.loc())
	}
	return s.Now().In(s.loc())
}

// day parses an ISO date, empty meaning today.
func (s *Service) day(date string) (time.Time, error) {
	if strings.TrimSpace(date) == "" {
		return calendar.StartOfDay(s.now()), nil
	}
	d, err := calendar.ParseISODate(date, s.loc())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", date)
	}
	return d, nil
}

// CalendarView lays out the month, week or day around date.
func (s *Service) CalendarView(ctx context.Context, mode, date string) (printers.CalendarDoc, error) {
	if s.Backend == nil {
		return printers.CalendarDoc{}, errNoBackend
	}
	m := calendar.ModeMonth
	if strings.TrimSpace(mode) != "" {
		parsed, err := calendar.ParseMode(mode)
		if err != nil {
			return printers.CalendarDoc{}, err
		}
		m = parsed
	}
	anchor, err := s.day(date)
	if err != nil {
		return printers.CalendarDoc{}, err
	}
	from, to := calendar.RangeOf(m, anchor)
	items, err := controller.Fetch(ctx, s.Backend, s.Kinds, from, to, s.loc())
	if err != nil {
		return printers.CalendarDoc{}, err
	}
	doc := printers.NewCalendarDoc(m, anchor, items)
	// The per-day list already carries every item.
	doc.Month = nil
	return doc, nil
}

// ItemsOnDate lists the items starting on date.
func (s *Service) ItemsOnDate(ctx context.Context, date string) (printers.DayDoc, error) {
	doc, err := s.CalendarView(ctx, string(calendar.ModeDay), date)
	if err != nil {
		return printers.DayDoc{}, err
	}
	if len(doc.Days) == 0 {
		return printers.DayDoc{}, nil
	}
	return doc.Days[0], nil
}

// CreateOptions are the fields accepted by the create tools.
type CreateOptions struct {
	Title       string
	Description string
	Location    string
	Date        string
	Time        string
	Duration    string
}

// Create stores a new event or task.
func (s *Service) Create(ctx context.Context, kind item.Kind, opts CreateOptions) (item.Timed, error) {
	if s.Backend == nil {
		return item.Timed{}, errNoBackend
	}
	day, err := s.day(opts.Date)
	if err != nil {
		return item.Timed{}, err
	}
	d := item.Draft{
		Kind:        kind,
		Title:       opts.Title,
		Description: opts.Description,
		Location:    opts.Location,
		Date:        day,
		Time:        opts.Time,
	}
	if kind == item.KindEvent {
		d.Duration = opts.Duration
	}
	if err := d.Validate(); err != nil {
		return item.Timed{}, err
	}
	return backend.Create(ctx, s.Backend, d)
}

// Delete removes an event or a task.
func (s *Service) Delete(ctx context.Context, kind item.Kind, id string) error {
	if s.Backend == nil {
		return errNoBackend
	}
	if strings.TrimSpace(id) == "" {
		return errors.New("id is required")
	}
	return backend.Delete(ctx, s.Backend, kind, id)
}
