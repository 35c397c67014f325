package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/hubz/pkg/backend"
	"tableflip.dev/hubz/pkg/calendar"
	"tableflip.dev/hubz/pkg/item"
	"tableflip.dev/hubz/pkg/store"
)

type fakeBackend struct {
	events []item.Event
	tasks  []item.Task
	nextID int

	listErr   error
	createErr error
	deleteErr error

	listCalls int
}

func (f *fakeBackend) ListEvents(_ context.Context, from, to time.Time) ([]item.Event, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.events, nil
}

func (f *fakeBackend) CreateEvent(_ context.Context, e item.Event) (item.Event, error) {
	if f.createErr != nil {
		return item.Event{}, f.createErr
	}
	f.nextID++
	e.ID = fmt.Sprintf("evt-%d", f.nextID)
	f.events = append(f.events, e)
	return e, nil
}

func (f *fakeBackend) DeleteEvent(_ context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i, e := range f.events {
		if e.ID == id {
			f.events = append(f.events[:i], f.events[i+1:]...)
			return nil
		}
	}
	return backend.ErrNotFound
}

func (f *fakeBackend) ListTasks(context.Context) ([]item.Task, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.tasks, nil
}

func (f *fakeBackend) CreateTask(_ context.Context, t item.Task) (item.Task, error) {
	if f.createErr != nil {
		return item.Task{}, f.createErr
	}
	f.nextID++
	t.ID = fmt.Sprintf("task-%d", f.nextID)
	f.tasks = append(f.tasks, t)
	return t, nil
}

func (f *fakeBackend) DeleteTask(context.Context, string) error {
	return f.deleteErr
}

type fakePrefs struct {
	modes map[string]string
}

func (f *fakePrefs) ViewMode(scope string) (string, bool) {
	m, ok := f.modes[scope]
	return m, ok
}

func (f *fakePrefs) SetViewMode(scope, mode string) error {
	if f.modes == nil {
		f.modes = map[string]string{}
	}
	f.modes[scope] = mode
	return nil
}

func (f *fakePrefs) Dismissed(string) (time.Time, bool)    { return time.Time{}, false }
func (f *fakePrefs) Dismiss(string, time.Time) error       { return nil }
func (f *fakePrefs) PruneDismissed(time.Time) (int, error) { return 0, nil }
func (f *fakePrefs) Watch(context.Context) (<-chan store.Event, error) {
	return nil, nil
}

var now = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return now }

func newTestPage(b backend.Backend, prefs store.Prefs, opts ...Option) *Page {
	opts = append([]Option{
		WithClock(fixedClock),
		WithLocation(time.UTC),
		WithToastDuration(time.Nanosecond),
	}, opts...)
	return New(b, prefs, opts...)
}

// run executes cmd synchronously and feeds every resulting message back into
// the page. Toast expiry is not fed back so tests can inspect toasts.
func run(p *Page, cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(p, c)...)
		}
		return out
	}
	if _, ok := msg.(toastExpiredMsg); ok {
		return []tea.Msg{msg}
	}
	out := []tea.Msg{msg}
	return append(out, run(p, p.Update(msg))...)
}

func at(d, h, m int) time.Time {
	return time.Date(2024, 3, d, h, m, 0, 0, time.UTC)
}

func TestInitFetchesVisibleMonth(t *testing.T) {
	due := at(20, 18, 0)
	b := &fakeBackend{
		events: []item.Event{
			{ID: "e1", Title: "Réunion", StartTime: at(15, 9, 30), EndTime: at(15, 10, 0)},
			{ID: "e2", Title: "Avril", StartTime: time.Date(2024, 4, 2, 9, 0, 0, 0, time.UTC)},
			{ID: "e3", Title: "Standup", StartTime: at(4, 8, 0), EndTime: at(4, 8, 15), RRule: "FREQ=WEEKLY;BYDAY=MO"},
		},
		tasks: []item.Task{
			{ID: "t1", Title: "Rapport", DueDate: &due},
			{ID: "t2", Title: "Sans date"},
		},
	}
	p := newTestPage(b, nil)
	run(p, p.Init())

	if p.Loading() {
		t.Fatalf("expected fetch to settle")
	}
	var standups, others int
	for _, it := range p.Items() {
		if it.ID == "e3" {
			standups++
		} else {
			others++
		}
	}
	// Mondays from the 4th: 4, 11, 18, 25.
	if standups != 4 {
		t.Fatalf("expected 4 standup occurrences, got %d", standups)
	}
	if others != 2 {
		t.Fatalf("expected the march event and the dated task, got %+v", p.Items())
	}
	if got := p.Header(); got != "Mars 2024" {
		t.Fatalf("unexpected header %q", got)
	}
}

func TestStaleFetchIsDropped(t *testing.T) {
	b := &fakeBackend{events: []item.Event{{ID: "e1", Title: "A", StartTime: at(15, 9, 0)}}}
	p := newTestPage(b, nil)

	first := p.Init()
	second := p.Update(RefreshMsg{})

	newer := second()
	older := first()

	p.Update(newer)
	if len(p.Items()) != 1 {
		t.Fatalf("expected newest fetch applied, got %+v", p.Items())
	}

	b.events = nil
	stale := older.(FetchedMsg)
	stale.Items = nil
	p.Update(stale)
	if len(p.Items()) != 1 {
		t.Fatalf("stale fetch must not replace the snapshot")
	}
}

func TestFetchFailureKeepsSnapshot(t *testing.T) {
	b := &fakeBackend{events: []item.Event{{ID: "e1", Title: "A", StartTime: at(15, 9, 0)}}}
	p := newTestPage(b, nil)
	run(p, p.Init())

	b.listErr = errors.New("connection refused")
	run(p, p.Update(RefreshMsg{}))

	if len(p.Items()) != 1 {
		t.Fatalf("expected previous snapshot kept, got %+v", p.Items())
	}
	toast := p.Toast()
	if toast == nil || toast.Level != ToastError || !strings.Contains(toast.Message, "connection refused") {
		t.Fatalf("expected error toast, got %+v", toast)
	}
}

func TestNavigationAndModePersistence(t *testing.T) {
	b := &fakeBackend{}
	prefs := &fakePrefs{}
	p := newTestPage(b, prefs, WithScope("org-7"))
	run(p, p.Init())
	calls := b.listCalls

	run(p, p.Update(SetModeMsg{Mode: calendar.ModeWeek}))
	if p.Mode() != calendar.ModeWeek {
		t.Fatalf("expected week mode")
	}
	if prefs.modes["org-7"] != "week" {
		t.Fatalf("expected mode saved for scope, got %v", prefs.modes)
	}
	if !calendar.IsSameDay(p.Anchor(), now) {
		t.Fatalf("mode change must keep the anchor, got %v", p.Anchor())
	}
	if b.listCalls != calls+1 {
		t.Fatalf("expected a refetch for the new range")
	}
	if got := p.Header(); got != "10 - 16 Mars 2024" {
		t.Fatalf("unexpected header %q", got)
	}

	run(p, p.Update(NavigateMsg{Direction: Next}))
	if got := p.Header(); got != "17 - 23 Mars 2024" {
		t.Fatalf("unexpected header after next %q", got)
	}
	run(p, p.Update(NavigateMsg{Direction: Today}))
	if !calendar.IsSameDay(p.Anchor(), now) {
		t.Fatalf("today should return to now")
	}

	calls = b.listCalls
	if cmd := p.Update(SetModeMsg{Mode: "year"}); cmd != nil {
		t.Fatalf("invalid mode should be a no-op")
	}
	if b.listCalls != calls || p.Mode() != calendar.ModeWeek {
		t.Fatalf("invalid mode changed state")
	}

	restored := newTestPage(b, prefs, WithScope("org-7"))
	if restored.Mode() != calendar.ModeWeek {
		t.Fatalf("expected stored mode restored, got %s", restored.Mode())
	}
}

func TestSelectDayOpensDayView(t *testing.T) {
	p := newTestPage(&fakeBackend{}, nil)
	run(p, p.Init())
	run(p, p.Update(SelectDayMsg{Date: at(2, 0, 0), OpenDay: true}))
	if p.Mode() != calendar.ModeDay || p.Header() != "Samedi 2 Mars 2024" {
		t.Fatalf("unexpected state %s %q", p.Mode(), p.Header())
	}
}

func TestOverlayIntents(t *testing.T) {
	b := &fakeBackend{events: []item.Event{
		{ID: "e1", Title: "A", StartTime: at(15, 9, 0)},
		{ID: "e2", Title: "B", StartTime: at(16, 9, 0)},
	}}
	p := newTestPage(b, nil)
	run(p, p.Init())

	p.Update(DayClickMsg{Date: at(15, 0, 0)})
	list, ok := p.Overlay().(calendar.ViewingDayList)
	if !ok || len(list.Items) != 1 || list.Items[0].ID != "e1" {
		t.Fatalf("expected day list with e1, got %v", p.Overlay())
	}

	p.Update(SlotClickMsg{Date: at(16, 0, 0), Hour: 14})
	creating, ok := p.Overlay().(calendar.Creating)
	if !ok || creating.Time != "14:00" || creating.Date.Day() != 16 {
		t.Fatalf("expected creating at 14:00, got %v", p.Overlay())
	}

	p.Update(ItemClickMsg{Item: p.Items()[1]})
	if v, ok := p.Overlay().(calendar.ViewingItem); !ok || v.Item.ID != "e2" {
		t.Fatalf("opening an item must replace the form, got %v", p.Overlay())
	}

	p.Update(OpenCreateMsg{})
	if c, ok := p.Overlay().(calendar.Creating); !ok || c.Time != "" || !calendar.IsSameDay(c.Date, now) {
		t.Fatalf("expected empty form on anchor, got %v", p.Overlay())
	}

	p.Update(CloseOverlayMsg{})
	if _, ok := p.Overlay().(calendar.None); !ok {
		t.Fatalf("expected overlay closed")
	}

	if cmd := p.Update(SlotClickMsg{Date: at(16, 0, 0), Hour: 24}); cmd != nil {
		t.Fatalf("out of range hour should be ignored")
	}
	if _, ok := p.Overlay().(calendar.None); !ok {
		t.Fatalf("out of range hour must not open the form")
	}
}

func TestCreateSuccessClosesFormAndRefetches(t *testing.T) {
	b := &fakeBackend{}
	p := newTestPage(b, nil)
	run(p, p.Init())

	p.Update(SlotClickMsg{Date: at(15, 0, 0), Hour: 9})
	run(p, p.Update(CreateItemMsg{Draft: item.Draft{Kind: item.KindEvent, Title: "Atelier", Date: at(15, 0, 0), Time: "09:00", Duration: "1h30"}}))

	if _, ok := p.Overlay().(calendar.None); !ok {
		t.Fatalf("expected form closed, got %v", p.Overlay())
	}
	if toast := p.Toast(); toast == nil || toast.Level != ToastSuccess || toast.Message != "Événement créé" {
		t.Fatalf("unexpected toast %+v", toast)
	}
	items := p.Items()
	if len(items) != 1 || items[0].Duration() != 90*time.Minute {
		t.Fatalf("expected created event in snapshot, got %+v", items)
	}
	if pos := calendar.PositionOf(items[0]); pos.TopOffsetMinutes != 540 || pos.HeightMinutes != 90 {
		t.Fatalf("unexpected position %+v", pos)
	}
}

func TestCreateFailureKeepsFormOpen(t *testing.T) {
	b := &fakeBackend{createErr: errors.New("quota")}
	p := newTestPage(b, nil)
	run(p, p.Init())
	p.Update(OpenCreateMsg{Date: at(15, 0, 0)})

	run(p, p.Update(CreateItemMsg{Draft: item.Draft{Kind: item.KindTask, Title: "Rapport", Date: at(15, 0, 0)}}))
	if _, ok := p.Overlay().(calendar.Creating); !ok {
		t.Fatalf("expected form kept open, got %v", p.Overlay())
	}
	if toast := p.Toast(); toast == nil || toast.Level != ToastError {
		t.Fatalf("expected error toast, got %+v", toast)
	}

	calls := b.listCalls
	run(p, p.Update(CreateItemMsg{Draft: item.Draft{Kind: item.KindTask, Date: at(15, 0, 0)}}))
	if toast := p.Toast(); toast == nil || !strings.Contains(toast.Message, "title required") {
		t.Fatalf("expected validation toast, got %+v", toast)
	}
	if b.listCalls != calls {
		t.Fatalf("invalid draft must not reach the backend")
	}
}

func TestDeleteClosesPanelEitherWay(t *testing.T) {
	tests := []struct {
		name      string
		deleteErr error
		level     ToastLevel
	}{
		{name: "success", level: ToastSuccess},
		{name: "failure", deleteErr: errors.New("forbidden"), level: ToastError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := &fakeBackend{
				events:    []item.Event{{ID: "e1", Title: "A", StartTime: at(15, 9, 0)}},
				deleteErr: tc.deleteErr,
			}
			p := newTestPage(b, nil)
			run(p, p.Init())
			p.Update(ItemClickMsg{Item: p.Items()[0]})
			calls := b.listCalls

			run(p, p.Update(DeleteItemMsg{Kind: item.KindEvent, ID: "e1"}))

			if _, ok := p.Overlay().(calendar.None); !ok {
				t.Fatalf("expected panel closed, got %v", p.Overlay())
			}
			if toast := p.Toast(); toast == nil || toast.Level != tc.level {
				t.Fatalf("unexpected toast %+v", toast)
			}
			if b.listCalls != calls+1 {
				t.Fatalf("expected a refetch after delete")
			}
		})
	}
}

func TestLateDeleteKeepsOtherPanelOpen(t *testing.T) {
	b := &fakeBackend{events: []item.Event{
		{ID: "e1", Title: "A", StartTime: at(15, 9, 0)},
		{ID: "e2", Title: "B", StartTime: at(15, 11, 0)},
	}}
	p := newTestPage(b, nil)
	run(p, p.Init())
	items := p.Items()

	p.Update(ItemClickMsg{Item: items[0]})
	pending := p.Update(DeleteItemMsg{Kind: item.KindEvent, ID: "e1"})
	p.Update(ItemClickMsg{Item: items[1]})
	run(p, pending)

	if v, ok := p.Overlay().(calendar.ViewingItem); !ok || v.Item.ID != "e2" {
		t.Fatalf("expected the panel of e2 kept open, got %v", p.Overlay())
	}
	if toast := p.Toast(); toast == nil || toast.Level != ToastSuccess {
		t.Fatalf("expected the delete to be reported, got %+v", toast)
	}
}

func TestLateCreateKeepsNewerFormOpen(t *testing.T) {
	p := newTestPage(&fakeBackend{}, nil)
	run(p, p.Init())

	p.Update(SlotClickMsg{Date: at(15, 0, 0), Hour: 9})
	pending := p.Update(CreateItemMsg{Draft: item.Draft{Kind: item.KindEvent, Title: "Atelier", Date: at(15, 0, 0), Time: "09:00"}})
	p.Update(CloseOverlayMsg{})
	p.Update(SlotClickMsg{Date: at(16, 0, 0), Hour: 14})
	run(p, pending)

	c, ok := p.Overlay().(calendar.Creating)
	if !ok || c.Time != "14:00" {
		t.Fatalf("expected the newer form kept open, got %v", p.Overlay())
	}
	if len(p.Items()) != 1 {
		t.Fatalf("expected the created event after refetch, got %+v", p.Items())
	}
}

func TestFetchExpandsSeriesWithinRange(t *testing.T) {
	b := &fakeBackend{events: []item.Event{
		{ID: "garde", Title: "Garde", StartTime: at(1, 23, 0), EndTime: at(2, 1, 0), RRule: "FREQ=DAILY"},
	}}
	items, err := Fetch(context.Background(), b, []item.Kind{item.KindEvent}, at(10, 0, 0), at(12, 0, 0), time.UTC)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(items) != 2 || !items[0].Start.Equal(at(10, 23, 0)) || !items[1].Start.Equal(at(11, 23, 0)) {
		t.Fatalf("expected the occurrences of the 10th and 11th, got %+v", items)
	}
}

func TestToastExpiry(t *testing.T) {
	p := newTestPage(&fakeBackend{}, nil)
	cmd := p.raise(ToastInfo, "un")
	p.raise(ToastInfo, "deux")

	p.Update(cmd())
	if p.Toast() == nil || p.Toast().Message != "deux" {
		t.Fatalf("an old expiry must not clear a newer toast")
	}
	p.Update(toastExpiredMsg{seq: p.toastSeq})
	if p.Toast() != nil {
		t.Fatalf("expected toast cleared")
	}
}

func TestFetchConvertsToDisplayLocation(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// 23:30 UTC on the 14th is 00:30 on the 15th in Paris.
	b := &fakeBackend{events: []item.Event{{ID: "e1", Title: "Nuit", StartTime: time.Date(2024, 3, 14, 23, 30, 0, 0, time.UTC)}}}
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, paris)
	items, err := Fetch(context.Background(), b, []item.Kind{item.KindEvent}, from, from.AddDate(0, 1, 0), paris)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(calendar.ItemsOnDate(items, time.Date(2024, 3, 15, 0, 0, 0, 0, paris))) != 1 {
		t.Fatalf("expected the event on the 15th in Paris, got %+v", items)
	}
}
