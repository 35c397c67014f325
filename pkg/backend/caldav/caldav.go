// Package caldav stores hubz events and tasks on a CalDAV server. Events are
// VEVENT objects and tasks VTODO objects in the same collection.
package caldav

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	goical "github.com/emersion/go-ical"
	"github.com/emersion/go-webdav/caldav"

	"tableflip.dev/hubz/pkg/backend"
	hical "tableflip.dev/hubz/pkg/ical"
	"tableflip.dev/hubz/pkg/item"
)

// Options configure the connection.
type Options struct {
	URL      string
	Username string
	Password string
	// Calendar is the collection path. When empty the first calendar of the
	// user is discovered.
	Calendar string
	Location *time.Location
}

// Backend is a CalDAV backed item store.
type Backend struct {
	client   *caldav.Client
	calendar string
	loc      *time.Location
	now      func() time.Time
}

type basicAuthTransport struct {
	username string
	password string
	next     http.RoundTripper
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.SetBasicAuth(t.username, t.password)
	return t.next.RoundTrip(req)
}

// New connects to the server described by opts.
func New(ctx context.Context, opts Options) (*Backend, error) {
	if opts.URL == "" {
		return nil, errors.New("caldav: url is required")
	}
	hc := &http.Client{Timeout: 30 * time.Second}
	if opts.Username != "" {
		hc.Transport = &basicAuthTransport{
			username: opts.Username,
			password: opts.Password,
			next:     http.DefaultTransport,
		}
	}

	client, err := caldav.NewClient(hc, opts.URL)
	if err != nil {
		return nil, fmt.Errorf("caldav: connect: %w", err)
	}

	b := &Backend{client: client, calendar: opts.Calendar, loc: opts.Location, now: time.Now}
	if b.loc == nil {
		b.loc = time.Local
	}
	if b.calendar == "" {
		if b.calendar, err = b.discover(ctx); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (b *Backend) discover(ctx context.Context) (string, error) {
	principal, err := b.client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return "", fmt.Errorf("caldav: find principal: %w", err)
	}
	homeSet, err := b.client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return "", fmt.Errorf("caldav: find home set: %w", err)
	}
	cals, err := b.client.FindCalendars(ctx, homeSet)
	if err != nil {
		return "", fmt.Errorf("caldav: find calendars: %w", err)
	}
	if len(cals) == 0 {
		return "", errors.New("caldav: no calendar found")
	}
	slog.Debug("discovered calendar", "path", cals[0].Path, "name", cals[0].Name)
	return cals[0].Path, nil
}

func (b *Backend) objectPath(id string) string {
	p := b.calendar
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p + id + ".ics"
}

func (b *Backend) query(ctx context.Context, comp string, from, to time.Time) ([]caldav.CalendarObject, error) {
	q := &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name:     "VCALENDAR",
			AllProps: true,
			AllComps: true,
		},
		CompFilter: caldav.CompFilter{
			Name:  "VCALENDAR",
			Comps: []caldav.CompFilter{{Name: comp, Start: from, End: to}},
		},
	}
	objs, err := b.client.QueryCalendar(ctx, b.calendar, q)
	if err != nil {
		return nil, fmt.Errorf("caldav: query %s: %w", comp, err)
	}
	return objs, nil
}

func children(obj caldav.CalendarObject, name string) []*goical.Component {
	if obj.Data == nil {
		return nil
	}
	var out []*goical.Component
	for _, c := range obj.Data.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// ListEvents returns the VEVENTs overlapping [from, to).
func (b *Backend) ListEvents(ctx context.Context, from, to time.Time) ([]item.Event, error) {
	objs, err := b.query(ctx, goical.CompEvent, from, to)
	if err != nil {
		return nil, err
	}
	return eventsOf(objs, b.loc), nil
}

// eventsOf converts the VEVENTs of objs. Components that do not convert, a
// malformed DTSTART for instance, are left out.
func eventsOf(objs []caldav.CalendarObject, loc *time.Location) []item.Event {
	var events []item.Event
	for _, obj := range objs {
		for _, comp := range children(obj, goical.CompEvent) {
			// Overrides of a single occurrence are dropped, the series is expanded locally.
			if comp.Props.Get(goical.PropRecurrenceID) != nil {
				continue
			}
			e, err := hical.EventFromComponent(comp, loc)
			if err != nil {
				slog.Debug("skipping caldav event", "path", obj.Path, "err", err)
				continue
			}
			events = append(events, e)
		}
	}
	return events
}

// CreateEvent uploads e as a new object.
func (b *Backend) CreateEvent(ctx context.Context, e item.Event) (item.Event, error) {
	if e.ID == "" {
		e.ID = newUID()
	}
	cal := hical.NewCalendar()
	cal.Children = append(cal.Children, hical.EventComponent(e, b.now()))
	if _, err := b.client.PutCalendarObject(ctx, b.objectPath(e.ID), cal); err != nil {
		return item.Event{}, fmt.Errorf("caldav: put event: %w", err)
	}
	return e, nil
}

// DeleteEvent removes the object holding the event.
func (b *Backend) DeleteEvent(ctx context.Context, id string) error {
	return b.remove(ctx, id)
}

// ListTasks returns every VTODO of the collection.
func (b *Backend) ListTasks(ctx context.Context) ([]item.Task, error) {
	objs, err := b.query(ctx, goical.CompToDo, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}
	return tasksOf(objs, b.loc), nil
}

func tasksOf(objs []caldav.CalendarObject, loc *time.Location) []item.Task {
	var tasks []item.Task
	for _, obj := range objs {
		for _, comp := range children(obj, goical.CompToDo) {
			t, err := hical.TaskFromComponent(comp, loc)
			if err != nil {
				slog.Debug("skipping caldav task", "path", obj.Path, "err", err)
				continue
			}
			tasks = append(tasks, t)
		}
	}
	return tasks
}

// CreateTask uploads t as a new object.
func (b *Backend) CreateTask(ctx context.Context, t item.Task) (item.Task, error) {
	if t.ID == "" {
		t.ID = newUID()
	}
	if t.Status == "" {
		t.Status = "TODO"
	}
	cal := hical.NewCalendar()
	cal.Children = append(cal.Children, hical.TaskComponent(t, b.now()))
	if _, err := b.client.PutCalendarObject(ctx, b.objectPath(t.ID), cal); err != nil {
		return item.Task{}, fmt.Errorf("caldav: put task: %w", err)
	}
	return t, nil
}

// DeleteTask removes the object holding the task.
func (b *Backend) DeleteTask(ctx context.Context, id string) error {
	return b.remove(ctx, id)
}

func (b *Backend) remove(ctx context.Context, id string) error {
	if err := b.client.RemoveAll(ctx, b.objectPath(id)); err != nil {
		// go-webdav does not export its HTTP error type.
		if strings.Contains(err.Error(), "404") {
			return fmt.Errorf("caldav: %s: %w", id, backend.ErrNotFound)
		}
		return fmt.Errorf("caldav: delete %s: %w", id, err)
	}
	return nil
}

func newUID() string {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%d@hubz", time.Now().UnixNano())
	}
	return hex.EncodeToString(b) + "@hubz"
}

var _ backend.Backend = (*Backend)(nil)
