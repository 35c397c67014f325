// Package controller is the calendar page: it owns the item snapshot, the view
// state and the overlay, and turns intent messages into backend calls.
//
// All state changes happen inside Update. Backend calls are returned as
// tea.Cmd values and report back with FetchedMsg, CreatedMsg or DeletedMsg.
package controller

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/hubz/pkg/backend"
	"tableflip.dev/hubz/pkg/calendar"
	"tableflip.dev/hubz/pkg/item"
	"tableflip.dev/hubz/pkg/store"
)

const (
	defaultTimeout = 30 * time.Second
	defaultToast   = 4 * time.Second
)

// ToastLevel is the severity of a toast.
type ToastLevel int

const (
	ToastInfo ToastLevel = iota
	ToastSuccess
	ToastError
)

// Toast is a transient notification.
type Toast struct {
	Level   ToastLevel
	Message string
}

// Option customizes a Page.
type Option func(*Page)

// WithKinds restricts the page to events, tasks or both (the default).
func WithKinds(kinds ...item.Kind) Option {
	return func(p *Page) {
		if len(kinds) > 0 {
			p.kinds = kinds
		}
	}
}

// WithScope names the calendar whose view mode is persisted.
func WithScope(scope string) Option {
	return func(p *Page) { p.scope = scope }
}

// WithClock replaces time.Now.
func WithClock(c calendar.Clock) Option {
	return func(p *Page) { p.clock = c }
}

// WithLocation sets the display time zone. Items are converted to it before
// they are indexed.
func WithLocation(loc *time.Location) Option {
	return func(p *Page) {
		if loc != nil {
			p.loc = loc
		}
	}
}

// WithToastDuration sets how long toasts stay up.
func WithToastDuration(d time.Duration) Option {
	return func(p *Page) { p.toastFor = d }
}

// WithTimeout bounds every backend call.
func WithTimeout(d time.Duration) Option {
	return func(p *Page) { p.timeout = d }
}

// Page is the calendar page controller.
type Page struct {
	backend backend.Backend
	prefs   store.Prefs

	kinds    []item.Kind
	scope    string
	clock    calendar.Clock
	loc      *time.Location
	timeout  time.Duration
	toastFor time.Duration

	view     *calendar.View
	overlays calendar.Overlays

	items      []item.Timed
	from, to   time.Time
	generation uint64
	loading    bool

	toast    *Toast
	toastSeq int
}

// New builds a page over b. prefs may be nil, in which case the mode is not
// persisted. The stored mode for the scope, if any, is restored.
func New(b backend.Backend, prefs store.Prefs, opts ...Option) *Page {
	p := &Page{
		backend:  b,
		prefs:    prefs,
		kinds:    []item.Kind{item.KindEvent, item.KindTask},
		scope:    store.DefaultScope,
		clock:    time.Now,
		loc:      time.Local,
		timeout:  defaultTimeout,
		toastFor: defaultToast,
	}
	for _, opt := range opts {
		opt(p)
	}
	loc := p.loc
	clock := p.clock
	p.view = calendar.NewView(func() time.Time { return clock().In(loc) })

	if p.prefs != nil {
		if raw, ok := p.prefs.ViewMode(p.scope); ok {
			if mode, err := calendar.ParseMode(raw); err == nil {
				p.view.SetMode(mode)
			} else {
				slog.Warn("ignoring stored view mode", "scope", p.scope, "mode", raw)
			}
		}
	}
	return p
}

// Init fetches the initial range.
func (p *Page) Init() tea.Cmd {
	return p.fetch()
}

// Update applies msg and returns the follow-up command, if any.
func (p *Page) Update(msg tea.Msg) tea.Cmd {
	switch m := msg.(type) {
	case RefreshMsg:
		return p.fetch()

	case NavigateMsg:
		switch m.Direction {
		case Previous:
			p.view.Previous()
		case Next:
			p.view.Next()
		case Today:
			p.view.Today()
		}
		return p.fetchIfMoved()

	case SetModeMsg:
		if p.view.Mode() == m.Mode {
			return nil
		}
		p.view.SetMode(m.Mode)
		if p.view.Mode() != m.Mode {
			return nil
		}
		p.saveMode()
		return p.fetchIfMoved()

	case SelectDayMsg:
		p.view.SelectDay(m.Date.In(p.loc))
		if m.OpenDay && p.view.Mode() != calendar.ModeDay {
			p.view.SetMode(calendar.ModeDay)
			p.saveMode()
		}
		return p.fetchIfMoved()

	case ItemClickMsg:
		p.overlays.OpenItem(m.Item)

	case DayClickMsg:
		day := m.Date.In(p.loc)
		p.overlays.OpenDayList(day, calendar.ItemsOnDate(p.items, day))

	case SlotClickMsg:
		if m.Hour < 0 || m.Hour >= calendar.HoursPerDay {
			return nil
		}
		p.overlays.OpenCreating(m.Date.In(p.loc), calendar.SlotLabel(m.Hour))

	case OpenCreateMsg:
		date := m.Date
		if date.IsZero() {
			date = p.view.Anchor()
		}
		p.overlays.OpenCreating(date.In(p.loc), "")

	case CloseOverlayMsg:
		p.overlays.Close()

	case CreateItemMsg:
		return p.create(m.Draft)

	case CreatedMsg:
		p.overlays.SubmitResult(m.Form, m.Err)
		if m.Err != nil {
			slog.Error("create failed", "kind", m.Kind, "err", m.Err)
			return p.raise(ToastError, fmt.Sprintf("Erreur lors de la création : %v", m.Err))
		}
		label := "Événement créé"
		if m.Kind == item.KindTask {
			label = "Tâche créée"
		}
		return tea.Batch(p.raise(ToastSuccess, label), p.fetch())

	case DeleteItemMsg:
		return p.delete(m.Kind, m.ID)

	case DeletedMsg:
		p.overlays.DeleteResult(m.ID, m.Err)
		if m.Err != nil {
			slog.Error("delete failed", "id", m.ID, "err", m.Err)
			return tea.Batch(p.raise(ToastError, fmt.Sprintf("Erreur lors de la suppression : %v", m.Err)), p.fetch())
		}
		return tea.Batch(p.raise(ToastSuccess, "Élément supprimé"), p.fetch())

	case FetchedMsg:
		if m.Generation != p.generation {
			slog.Debug("dropping stale fetch", "gen", m.Generation, "current", p.generation)
			return nil
		}
		p.loading = false
		if m.Err != nil {
			slog.Error("fetch failed", "err", m.Err)
			return p.raise(ToastError, fmt.Sprintf("Erreur lors du chargement : %v", m.Err))
		}
		p.items = m.Items
		p.from, p.to = m.From, m.To

	case toastExpiredMsg:
		if m.seq == p.toastSeq {
			p.toast = nil
		}
	}
	return nil
}

func (p *Page) saveMode() {
	if p.prefs == nil {
		return
	}
	if err := p.prefs.SetViewMode(p.scope, string(p.view.Mode())); err != nil {
		slog.Warn("could not save view mode", "scope", p.scope, "err", err)
	}
}

func (p *Page) fetchIfMoved() tea.Cmd {
	from, to := p.view.Range()
	if from.Equal(p.from) && to.Equal(p.to) && !p.loading {
		return nil
	}
	return p.fetch()
}

func (p *Page) fetch() tea.Cmd {
	p.generation++
	p.loading = true
	gen := p.generation
	from, to := p.view.Range()
	b, kinds, loc, timeout := p.backend, p.kinds, p.loc, p.timeout

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		items, err := Fetch(ctx, b, kinds, from, to, loc)
		return FetchedMsg{Generation: gen, From: from, To: to, Items: items, Err: err}
	}
}

func (p *Page) create(d item.Draft) tea.Cmd {
	if err := d.Validate(); err != nil {
		return p.raise(ToastError, err.Error())
	}
	b, timeout, form := p.backend, p.timeout, p.overlays.Seq()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		created, err := backend.Create(ctx, b, d)
		return CreatedMsg{Item: created, Kind: d.Kind, Form: form, Err: err}
	}
}

func (p *Page) delete(kind item.Kind, id string) tea.Cmd {
	b, timeout := p.backend, p.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return DeletedMsg{Kind: kind, ID: id, Err: backend.Delete(ctx, b, kind, id)}
	}
}

func (p *Page) raise(level ToastLevel, msg string) tea.Cmd {
	p.toastSeq++
	p.toast = &Toast{Level: level, Message: msg}
	seq := p.toastSeq
	return tea.Tick(p.toastFor, func(time.Time) tea.Msg {
		return toastExpiredMsg{seq: seq}
	})
}

// Mode returns the active view mode.
func (p *Page) Mode() calendar.Mode { return p.view.Mode() }

// Anchor returns the anchor date in the display location.
func (p *Page) Anchor() time.Time { return p.view.Anchor() }

// Header returns the French header for the current view.
func (p *Page) Header() string { return p.view.Header() }

// Range returns the visible interval.
func (p *Page) Range() (time.Time, time.Time) { return p.view.Range() }

// Now returns the page clock in the display location.
func (p *Page) Now() time.Time { return p.view.Now() }

// Location returns the display location.
func (p *Page) Location() *time.Location { return p.loc }

// Items returns the current snapshot.
func (p *Page) Items() []item.Timed { return p.items }

// Loading reports whether a fetch is in flight.
func (p *Page) Loading() bool { return p.loading }

// Overlay returns the open overlay, calendar.None when closed.
func (p *Page) Overlay() calendar.Overlay { return p.overlays.Current() }

// Toast returns the visible toast, or nil.
func (p *Page) Toast() *Toast { return p.toast }

// Scope returns the preference scope the mode is stored under.
func (p *Page) Scope() string { return p.scope }

// Kinds returns the item kinds shown.
func (p *Page) Kinds() []item.Kind { return p.kinds }

// MonthGrid lays out the anchor month.
func (p *Page) MonthGrid() calendar.MonthGrid {
	return calendar.BuildMonth(p.view.Anchor(), p.items)
}

// TimeGrid lays out the week or the day around the anchor.
func (p *Page) TimeGrid() calendar.TimeGrid {
	if p.view.Mode() == calendar.ModeDay {
		return calendar.BuildDay(p.view.Anchor(), p.items)
	}
	return calendar.BuildWeek(p.view.Anchor(), p.items)
}

// Fetch loads the items of kinds starting in [from, to), converts them to loc
// and expands recurrences. CLI and MCP callers use it directly.
func Fetch(ctx context.Context, b backend.Backend, kinds []item.Kind, from, to time.Time, loc *time.Location) ([]item.Timed, error) {
	raw, err := backend.ListTimed(ctx, b, kinds, from, to)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.Local
	}
	items := make([]item.Timed, 0, len(raw))
	for _, it := range raw {
		items = append(items, it.In(loc))
	}
	return calendar.ItemsInRange(calendar.Expand(items, from, to), from, to), nil
}
