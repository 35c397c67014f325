package controller

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/hubz/pkg/calendar"
	"tableflip.dev/hubz/pkg/item"
)

// Direction is a navigation step.
type Direction int

const (
	Previous Direction = iota
	Next
	Today
)

func (d Direction) String() string {
	switch d {
	case Previous:
		return "previous"
	case Next:
		return "next"
	case Today:
		return "today"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// CreateItemMsg asks the page to store a new item.
type CreateItemMsg struct {
	Draft item.Draft
}

// Describe renders the message for the debug log.
func (m CreateItemMsg) Describe() string {
	return fmt.Sprintf("kind:%s title:%q date:%s time:%q", m.Draft.Kind, m.Draft.Title, calendar.FormatISODate(m.Draft.Date), m.Draft.Time)
}

// DeleteItemMsg asks the page to delete an item.
type DeleteItemMsg struct {
	Kind item.Kind
	ID   string
}

// Describe renders the message for the debug log.
func (m DeleteItemMsg) Describe() string {
	return fmt.Sprintf("kind:%s id:%q", m.Kind, m.ID)
}

// ItemClickMsg opens an item's detail panel.
type ItemClickMsg struct {
	Item item.Timed
}

// Describe renders the message for the debug log.
func (m ItemClickMsg) Describe() string {
	return fmt.Sprintf("id:%q title:%q", m.Item.ID, m.Item.Title)
}

// DayClickMsg opens the item list of a month cell.
type DayClickMsg struct {
	Date time.Time
}

// Describe renders the message for the debug log.
func (m DayClickMsg) Describe() string {
	return "date:" + calendar.FormatISODate(m.Date)
}

// SlotClickMsg opens the creation form on an hour slot of the time grid.
type SlotClickMsg struct {
	Date time.Time
	Hour int
}

// Describe renders the message for the debug log.
func (m SlotClickMsg) Describe() string {
	return fmt.Sprintf("date:%s hour:%s", calendar.FormatISODate(m.Date), calendar.SlotLabel(m.Hour))
}

// OpenCreateMsg opens an empty creation form. A zero Date uses the anchor.
type OpenCreateMsg struct {
	Date time.Time
}

// Describe renders the message for the debug log.
func (m OpenCreateMsg) Describe() string {
	return "date:" + calendar.FormatISODate(m.Date)
}

// CloseOverlayMsg closes whatever overlay is open.
type CloseOverlayMsg struct{}

// Describe renders the message for the debug log.
func (CloseOverlayMsg) Describe() string { return "close" }

// NavigateMsg moves the anchor.
type NavigateMsg struct {
	Direction Direction
}

// Describe renders the message for the debug log.
func (m NavigateMsg) Describe() string { return m.Direction.String() }

// SetModeMsg switches between month, week and day.
type SetModeMsg struct {
	Mode calendar.Mode
}

// Describe renders the message for the debug log.
func (m SetModeMsg) Describe() string { return "mode:" + string(m.Mode) }

// SelectDayMsg moves the anchor to a given day, optionally switching to the
// day view.
type SelectDayMsg struct {
	Date    time.Time
	OpenDay bool
}

// Describe renders the message for the debug log.
func (m SelectDayMsg) Describe() string {
	return fmt.Sprintf("date:%s open:%t", calendar.FormatISODate(m.Date), m.OpenDay)
}

// RefreshMsg refetches the visible range.
type RefreshMsg struct{}

// Describe renders the message for the debug log.
func (RefreshMsg) Describe() string { return "refresh" }

// FetchedMsg carries the result of a fetch. Only the newest generation is
// applied.
type FetchedMsg struct {
	Generation uint64
	From, To   time.Time
	Items      []item.Timed
	Err        error
}

// Describe renders the message for the debug log.
func (m FetchedMsg) Describe() string {
	if m.Err != nil {
		return fmt.Sprintf("gen:%d err:%v", m.Generation, m.Err)
	}
	return fmt.Sprintf("gen:%d items:%d", m.Generation, len(m.Items))
}

// CreatedMsg carries the result of a create request.
type CreatedMsg struct {
	Item item.Timed
	Kind item.Kind
	// Form is the overlay sequence when the request was sent.
	Form int
	Err  error
}

// Describe renders the message for the debug log.
func (m CreatedMsg) Describe() string {
	if m.Err != nil {
		return fmt.Sprintf("kind:%s err:%v", m.Kind, m.Err)
	}
	return fmt.Sprintf("kind:%s id:%q", m.Kind, m.Item.ID)
}

// DeletedMsg carries the result of a delete request.
type DeletedMsg struct {
	Kind item.Kind
	ID   string
	Err  error
}

// Describe renders the message for the debug log.
func (m DeletedMsg) Describe() string {
	if m.Err != nil {
		return fmt.Sprintf("id:%q err:%v", m.ID, m.Err)
	}
	return fmt.Sprintf("id:%q", m.ID)
}

type toastExpiredMsg struct {
	seq int
}

// NavigateCmd wraps NavigateMsg in a tea.Cmd.
func NavigateCmd(d Direction) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Direction: d} }
}

// SetModeCmd wraps SetModeMsg in a tea.Cmd.
func SetModeCmd(m calendar.Mode) tea.Cmd {
	return func() tea.Msg { return SetModeMsg{Mode: m} }
}

// CreateItemCmd wraps CreateItemMsg in a tea.Cmd.
func CreateItemCmd(d item.Draft) tea.Cmd {
	return func() tea.Msg { return CreateItemMsg{Draft: d} }
}

// DeleteItemCmd wraps DeleteItemMsg in a tea.Cmd.
func DeleteItemCmd(kind item.Kind, id string) tea.Cmd {
	return func() tea.Msg { return DeleteItemMsg{Kind: kind, ID: id} }
}
