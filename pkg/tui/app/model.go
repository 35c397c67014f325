// Package teaui hosts the Bubble Tea program for the hubz calendar.
package teaui

import (
	"context"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/hubz/pkg/calendar"
	"tableflip.dev/hubz/pkg/controller"
	"tableflip.dev/hubz/pkg/store"
	"tableflip.dev/hubz/pkg/tui/help"
	"tableflip.dev/hubz/pkg/tui/theme"
)

const defaultHour = 8

// Options configures the program.
type Options struct {
	// Prefs is watched so a mode changed by another process is picked up.
	// Nil disables watching.
	Prefs store.Prefs
	// Dark selects the dark palette.
	Dark bool
}

type watchStartedMsg struct {
	ch     <-chan store.Event
	cancel context.CancelFunc
	err    error
}

type watchEventMsg struct {
	event store.Event
}

type watchStoppedMsg struct{}

// Model is the root Bubble Tea model. Navigation and overlays are owned by
// the page; the model maps keys to page intents and draws the page state.
type Model struct {
	ctx   context.Context
	page  *controller.Page
	prefs store.Prefs
	theme theme.Theme

	width  int
	height int

	// hour is the highlighted row of the week and day grids; hourTop is the
	// first row drawn.
	hour    int
	hourTop int
	// listIndex is the highlighted row of the day list overlay.
	listIndex int

	form     *form
	help     *help.Model
	showHelp bool

	watchCh     <-chan store.Event
	watchCancel context.CancelFunc
}

// New wraps page.
func New(ctx context.Context, page *controller.Page, opts Options) *Model {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Model{
		ctx:   ctx,
		page:  page,
		prefs: opts.Prefs,
		theme: theme.Default(opts.Dark),
		hour:  defaultHour,
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.page.Init(), startWatchCmd(m.ctx, m.prefs))
}

func startWatchCmd(parent context.Context, prefs store.Prefs) tea.Cmd {
	if prefs == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithCancel(parent)
		ch, err := prefs.Watch(ctx)
		if err != nil {
			cancel()
			return watchStartedMsg{err: err}
		}
		return watchStartedMsg{ch: ch, cancel: cancel}
	}
}

func (m *Model) waitForWatch() tea.Cmd {
	if m.watchCh == nil {
		return nil
	}
	ch := m.watchCh
	return func() tea.Msg {
		if ev, ok := <-ch; ok {
			return watchEventMsg{event: ev}
		}
		return watchStoppedMsg{}
	}
}

func (m *Model) stopWatch() {
	if m.watchCancel != nil {
		m.watchCancel()
		m.watchCancel = nil
	}
	m.watchCh = nil
}

func (m *Model) handleWatchEvent(ev store.Event, cmds *[]tea.Cmd) {
	switch ev.Type {
	case store.EventViewModeChanged, store.EventPrefsInvalidated:
		if ev.Type == store.EventViewModeChanged && ev.Scope != m.page.Scope() {
			return
		}
		raw, ok := m.prefs.ViewMode(m.page.Scope())
		if !ok {
			return
		}
		mode, err := calendar.ParseMode(raw)
		if err != nil {
			slog.Warn("ignoring stored view mode", "mode", raw, "err", err)
			return
		}
		*cmds = append(*cmds, m.page.Update(controller.SetModeMsg{Mode: mode}))
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.help != nil {
			m.help.SetSize(m.helpSize())
		}
		m.scrollToHour()
	case watchStartedMsg:
		if msg.err != nil {
			slog.Warn("preferences watch unavailable", "err", msg.err)
			break
		}
		m.stopWatch()
		m.watchCh = msg.ch
		m.watchCancel = msg.cancel
		cmds = append(cmds, m.waitForWatch())
	case watchEventMsg:
		m.handleWatchEvent(msg.event, &cmds)
		cmds = append(cmds, m.waitForWatch())
	case watchStoppedMsg:
		m.stopWatch()
	case tea.KeyPressMsg:
		m.handleKeyPress(msg, &cmds)
	default:
		if m.showHelp && m.help != nil {
			cmds = append(cmds, m.help.Update(msg))
		}
		cmds = append(cmds, m.page.Update(msg))
	}

	if cmd := m.syncForm(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// syncForm opens or drops the creation form to match the page overlay.
func (m *Model) syncForm() tea.Cmd {
	c, ok := m.page.Overlay().(calendar.Creating)
	if !ok {
		m.form = nil
		return nil
	}
	if m.form != nil && m.form.origin.Date.Equal(c.Date) && m.form.origin.Time == c.Time {
		return nil
	}
	m.form = newForm(c, m.page.Kinds())
	return m.form.inputs[fieldTitle].Focus()
}

func (m *Model) handleKeyPress(msg tea.KeyPressMsg, cmds *[]tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.stopWatch()
		*cmds = append(*cmds, tea.Quit)
		return
	}
	if m.showHelp {
		m.handleHelpKey(msg, cmds)
		return
	}
	switch ov := m.page.Overlay().(type) {
	case calendar.Creating:
		m.handleFormKey(msg, cmds)
	case calendar.ViewingItem:
		m.handleItemKey(ov, msg, cmds)
	case calendar.ViewingDayList:
		m.handleDayListKey(ov, msg, cmds)
	default:
		m.handleNormalKey(msg, cmds)
	}
}

func (m *Model) handleHelpKey(msg tea.KeyPressMsg, cmds *[]tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "?":
		m.showHelp = false
	default:
		*cmds = append(*cmds, m.help.Update(msg))
	}
}

func (m *Model) handleFormKey(msg tea.KeyPressMsg, cmds *[]tea.Cmd) {
	if msg.String() == "esc" {
		*cmds = append(*cmds, m.page.Update(controller.CloseOverlayMsg{}))
		return
	}
	if m.form == nil {
		return
	}
	if msg.String() == "enter" {
		// The page keeps the form open until the backend answers.
		if d, ok := m.form.submit(); ok {
			*cmds = append(*cmds, m.page.Update(controller.CreateItemMsg{Draft: d}))
		}
		return
	}
	*cmds = append(*cmds, m.form.update(msg))
}

func (m *Model) handleItemKey(ov calendar.ViewingItem, msg tea.KeyPressMsg, cmds *[]tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		*cmds = append(*cmds, m.page.Update(controller.CloseOverlayMsg{}))
	case "x", "delete":
		*cmds = append(*cmds, m.page.Update(controller.DeleteItemMsg{Kind: ov.Item.Kind, ID: ov.Item.ID}))
	}
}

func (m *Model) handleDayListKey(ov calendar.ViewingDayList, msg tea.KeyPressMsg, cmds *[]tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		*cmds = append(*cmds, m.page.Update(controller.CloseOverlayMsg{}))
	case "up", "k":
		if m.listIndex > 0 {
			m.listIndex--
		}
	case "down", "j":
		if m.listIndex < len(ov.Items)-1 {
			m.listIndex++
		}
	case "enter":
		if m.listIndex < len(ov.Items) {
			*cmds = append(*cmds, m.page.Update(controller.ItemClickMsg{Item: ov.Items[m.listIndex]}))
		}
	case "a":
		*cmds = append(*cmds, m.page.Update(controller.OpenCreateMsg{Date: ov.Date}))
	}
}

func (m *Model) handleNormalKey(msg tea.KeyPressMsg, cmds *[]tea.Cmd) {
	anchor := m.page.Anchor()
	timeGrid := m.page.Mode() != calendar.ModeMonth

	switch msg.String() {
	case "q":
		m.stopWatch()
		*cmds = append(*cmds, tea.Quit)
	case "?":
		m.showHelp = true
		if m.help == nil {
			w, h := m.helpSize()
			m.help = help.New(w, h, m.theme.Dark)
		}
	case "left", "h":
		m.selectDay(calendar.AddDays(anchor, -1), cmds)
	case "right", "l":
		m.selectDay(calendar.AddDays(anchor, 1), cmds)
	case "up", "k":
		if timeGrid {
			m.moveHour(-1)
		} else {
			m.selectDay(calendar.AddDays(anchor, -7), cmds)
		}
	case "down", "j":
		if timeGrid {
			m.moveHour(1)
		} else {
			m.selectDay(calendar.AddDays(anchor, 7), cmds)
		}
	case "[", "p":
		*cmds = append(*cmds, m.page.Update(controller.NavigateMsg{Direction: controller.Previous}))
	case "]", "n":
		*cmds = append(*cmds, m.page.Update(controller.NavigateMsg{Direction: controller.Next}))
	case "t":
		*cmds = append(*cmds, m.page.Update(controller.NavigateMsg{Direction: controller.Today}))
	case "m":
		*cmds = append(*cmds, m.page.Update(controller.SetModeMsg{Mode: calendar.ModeMonth}))
	case "w":
		*cmds = append(*cmds, m.page.Update(controller.SetModeMsg{Mode: calendar.ModeWeek}))
	case "d":
		*cmds = append(*cmds, m.page.Update(controller.SetModeMsg{Mode: calendar.ModeDay}))
	case "tab":
		*cmds = append(*cmds, m.page.Update(controller.SetModeMsg{Mode: nextMode(m.page.Mode())}))
	case "r":
		*cmds = append(*cmds, m.page.Update(controller.RefreshMsg{}))
	case "a":
		*cmds = append(*cmds, m.page.Update(controller.OpenCreateMsg{Date: anchor}))
	case "enter":
		m.activate(cmds)
	}
}

// activate opens the overlay for the highlighted cell: the day list in month
// mode, the first item of the highlighted slot or the creation form on an
// empty slot otherwise.
func (m *Model) activate(cmds *[]tea.Cmd) {
	anchor := m.page.Anchor()
	if m.page.Mode() == calendar.ModeMonth {
		m.listIndex = 0
		*cmds = append(*cmds, m.page.Update(controller.DayClickMsg{Date: anchor}))
		return
	}
	col := calendar.BuildColumn(anchor, m.page.Items())
	if placed := col.ItemsAtHour(m.hour); len(placed) > 0 {
		*cmds = append(*cmds, m.page.Update(controller.ItemClickMsg{Item: placed[0].Item}))
		return
	}
	*cmds = append(*cmds, m.page.Update(controller.SlotClickMsg{Date: anchor, Hour: m.hour}))
}

func (m *Model) selectDay(d time.Time, cmds *[]tea.Cmd) {
	*cmds = append(*cmds, m.page.Update(controller.SelectDayMsg{Date: d}))
}

func (m *Model) moveHour(delta int) {
	m.hour = max(0, min(calendar.HoursPerDay-1, m.hour+delta))
	m.scrollToHour()
}

// scrollToHour keeps the highlighted hour inside the drawn rows.
func (m *Model) scrollToHour() {
	rows := m.hourRows()
	if m.hour < m.hourTop {
		m.hourTop = m.hour
	}
	if m.hour >= m.hourTop+rows {
		m.hourTop = m.hour - rows + 1
	}
	m.hourTop = max(0, min(m.hourTop, calendar.HoursPerDay-rows))
}

func nextMode(current calendar.Mode) calendar.Mode {
	for i, mode := range calendar.Modes {
		if mode == current {
			return calendar.Modes[(i+1)%len(calendar.Modes)]
		}
	}
	return calendar.ModeMonth
}

func (m *Model) helpSize() (int, int) {
	return max(m.width*2/3, 40), max(m.height-6, 10)
}

// Run launches the interactive program and blocks until it exits.
func Run(ctx context.Context, page *controller.Page, opts Options) error {
	m := New(ctx, page, opts)
	defer m.stopWatch()
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
