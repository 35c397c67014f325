package teaui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"tableflip.dev/hubz/pkg/calendar"
	"tableflip.dev/hubz/pkg/controller"
	"tableflip.dev/hubz/pkg/glyph"
	"tableflip.dev/hubz/pkg/item"
	"tableflip.dev/hubz/pkg/timeutil"
	"tableflip.dev/hubz/pkg/tui/overlay"
)

const (
	fallbackWidth  = 80
	fallbackHeight = 24
	// chromeRows are the header and footer lines around the grid.
	chromeRows = 2
	labelWidth = 6
)

var centered = overlay.Placement{Horizontal: lipgloss.Center, Vertical: lipgloss.Center}

func (m *Model) size() (int, int) {
	w, h := m.width, m.height
	if w <= 0 {
		w = fallbackWidth
	}
	if h <= 0 {
		h = fallbackHeight
	}
	return w, h
}

// hourRows is the number of hour rows that fit under the day headers.
func (m *Model) hourRows() int {
	_, h := m.size()
	return max(1, min(calendar.HoursPerDay, h-chromeRows-1))
}

func (m *Model) View() string {
	width, height := m.size()

	var body string
	if m.page.Mode() == calendar.ModeMonth {
		body = m.renderMonth(width, height-chromeRows)
	} else {
		body = m.renderTimeGrid(width, height-chromeRows)
	}
	screen := strings.Join([]string{m.renderHeader(width), body, m.renderFooter(width)}, "\n")

	if panel := m.renderOverlay(width); panel != "" {
		screen = overlay.Compose(screen, width, height, panel, centered)
	}
	return screen
}

func (m *Model) renderHeader(width int) string {
	th := m.theme.Header
	var tabs []string
	for _, mode := range calendar.Modes {
		style := th.Tab
		if mode == m.page.Mode() {
			style = th.ActiveTab
		}
		tabs = append(tabs, style.Render(mode.Label()))
	}
	title := th.Title.Render(m.page.Header())
	if m.page.Loading() {
		title += " " + th.Loading.Render("chargement…")
	}
	right := strings.Join(tabs, "")
	gap := width - ansi.PrintableRuneWidth(title) - ansi.PrintableRuneWidth(right)
	if gap < 1 {
		return fit(title, width)
	}
	return title + strings.Repeat(" ", gap) + right
}

func (m *Model) renderFooter(width int) string {
	if t := m.page.Toast(); t != nil {
		style := m.theme.Toast.Info
		switch t.Level {
		case controller.ToastSuccess:
			style = m.theme.Toast.Success
		case controller.ToastError:
			style = m.theme.Toast.Error
		}
		return fit(style.Render(t.Message), width)
	}
	hints := "←→ jour · [ ] période · m/w/d vue · entrée ouvrir · a ajouter · ? aide · q quitter"
	return fit(m.theme.Footer.Help.Render(hints), width)
}

func (m *Model) renderMonth(width, height int) string {
	th := m.theme.Grid
	grid := m.page.MonthGrid()
	rows := grid.Rows()
	cellW := max((width-6)/7, 4)
	cellH := max((height-1)/max(len(rows), 1), 2)

	var lines []string
	var head []string
	for d := 0; d < 7; d++ {
		head = append(head, fit(th.Weekday.Render(calendar.WeekdayShortName(weekday(d))), cellW))
	}
	lines = append(lines, strings.Join(head, " "))

	anchor := m.page.Anchor()
	now := m.page.Now()
	for _, row := range rows {
		cells := make([][]string, 0, 7)
		for _, cell := range row {
			cells = append(cells, m.renderCell(cell, cellW, cellH, anchor, now))
		}
		for i := 0; i < cellH; i++ {
			parts := make([]string, 0, 7)
			for _, c := range cells {
				parts = append(parts, c[i])
			}
			lines = append(lines, strings.Join(parts, " "))
		}
	}
	return strings.Join(clampLines(lines, height), "\n")
}

func (m *Model) renderCell(cell calendar.Cell, w, h int, anchor, now time.Time) []string {
	th := m.theme.Grid
	out := make([]string, h)
	if cell.Blank {
		for i := range out {
			out[i] = fit(th.Blank.Render(""), w)
		}
		return out
	}

	day := th.Day
	switch {
	case calendar.IsSameDay(cell.Date, anchor):
		day = th.Selected
	case calendar.IsSameDay(cell.Date, now):
		day = th.Today
	}
	out[0] = fit(day.Render(fmt.Sprintf("%2d", cell.Day())), w)

	slots := h - 1
	shown := len(cell.Items)
	if shown > slots {
		shown = max(slots-1, 0)
	}
	for i := 0; i < shown; i++ {
		out[i+1] = fit(m.itemLabel(cell.Items[i], w), w)
	}
	if rest := len(cell.Items) - shown; rest > 0 && slots > 0 {
		out[shown+1] = fit(th.More.Render(fmt.Sprintf("+%d", rest)), w)
	}
	for i := range out {
		if out[i] == "" {
			out[i] = strings.Repeat(" ", w)
		}
	}
	return out
}

func (m *Model) renderTimeGrid(width, height int) string {
	th := m.theme.Grid
	grid := m.page.TimeGrid()
	anchor := m.page.Anchor()
	now := m.page.Now()
	cols := len(grid.Columns)
	colW := max((width-labelWidth)/max(cols, 1)-1, 4)

	head := []string{strings.Repeat(" ", labelWidth-1)}
	for _, col := range grid.Columns {
		label := fmt.Sprintf("%s %d", calendar.WeekdayShortName(col.Date.Weekday()), col.Date.Day())
		style := th.Weekday
		if calendar.IsSameDay(col.Date, now) {
			style = th.Today
		}
		head = append(head, fit(style.Render(label), colW))
	}
	lines := []string{strings.Join(head, " ")}

	rows := m.hourRows()
	for hour := m.hourTop; hour < m.hourTop+rows && hour < calendar.HoursPerDay; hour++ {
		parts := []string{fit(th.SlotLabel.Render(calendar.SlotLabel(hour)), labelWidth-1)}
		for _, col := range grid.Columns {
			selected := hour == m.hour && calendar.IsSameDay(col.Date, anchor)
			parts = append(parts, m.renderSlot(col, hour, colW, selected))
		}
		lines = append(lines, strings.Join(parts, " "))
	}
	return strings.Join(clampLines(lines, height), "\n")
}

func (m *Model) renderSlot(col calendar.Column, hour, w int, selected bool) string {
	th := m.theme.Grid
	var cell string
	if starting := col.StartingAtHour(hour); len(starting) > 0 {
		label := m.itemLabel(starting[0].Item, w)
		if len(starting) > 1 {
			more := fmt.Sprintf(" +%d", len(starting)-1)
			label = fit(label, max(w-len(more), 1)) + th.More.Render(more)
		}
		cell = label
	} else if running := col.ItemsAtHour(hour); len(running) > 0 {
		cell = m.theme.Item(running[0].Item.ID).Render("│")
	} else {
		cell = th.Slot.Render("·")
	}
	if selected {
		return th.Selected.Render(fit(stripStyle(cell), w))
	}
	return fit(cell, w)
}

func (m *Model) itemLabel(it item.Timed, w int) string {
	label := it.Title
	if it.Kind == item.KindTask {
		label = glyph.Task.String() + " " + label
	} else if !isMidnight(it.Start) {
		label = it.Start.Format("15:04") + " " + label
	}
	label = truncate.StringWithTail(label, uint(max(w, 1)), "…")
	style := m.theme.Item(it.ID)
	if it.Kind == item.KindTask {
		style = style.Inherit(m.theme.Grid.Task)
	}
	return style.Render(label)
}

func (m *Model) renderOverlay(width int) string {
	if m.showHelp && m.help != nil {
		return m.help.View()
	}
	panelW := min(max(width/2, 40), width-2)
	switch ov := m.page.Overlay().(type) {
	case calendar.Creating:
		if m.form != nil {
			return m.form.view(m.theme, panelW)
		}
	case calendar.ViewingItem:
		return m.renderItemPanel(ov.Item, panelW)
	case calendar.ViewingDayList:
		return m.renderDayList(ov, panelW)
	}
	return ""
}

func (m *Model) renderItemPanel(it item.Timed, w int) string {
	th := m.theme.Modal
	kind := "Événement"
	if it.Kind == item.KindTask {
		kind = "Tâche"
	}
	inner := max(w-th.Frame.GetHorizontalFrameSize(), 8)
	lines := []string{
		th.Title.Render(wordwrap.String(it.Title, inner)),
		th.Label.Render(kind),
		"",
		row(th.Label.Render("Début"), longDate(it.Start)+" "+it.Start.Format("15:04")),
	}
	if it.HasEnd() {
		lines = append(lines,
			row(th.Label.Render("Fin"), longDate(it.End)+" "+it.End.Format("15:04")),
			row(th.Label.Render("Durée"), timeutil.FormatDuration(it.Duration())))
	}
	if it.RRule != "" {
		lines = append(lines, row(th.Label.Render("Répétition"), it.RRule))
	}
	lines = append(lines, "", m.theme.Footer.Help.Render("x supprimer · échap fermer"))
	return th.Frame.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m *Model) renderDayList(ov calendar.ViewingDayList, w int) string {
	th := m.theme.Modal
	lines := []string{th.Title.Render(longDate(ov.Date)), ""}
	if len(ov.Items) == 0 {
		lines = append(lines, th.Body.Render("Aucun élément"))
	}
	inner := max(w-th.Frame.GetHorizontalFrameSize(), 8)
	for i, it := range ov.Items {
		clock := "     "
		if it.Kind == item.KindEvent && !isMidnight(it.Start) {
			clock = it.Start.Format("15:04")
		}
		line := truncate.StringWithTail(clock+" "+it.Title, uint(inner), "…")
		if i == m.listIndex {
			line = th.Selected.Render(line)
		} else {
			line = m.theme.Item(it.ID).Render(line)
		}
		lines = append(lines, line)
	}
	lines = append(lines, "", m.theme.Footer.Help.Render("entrée détails · a ajouter · échap fermer"))
	return th.Frame.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func row(label, value string) string {
	return fit(label, 12) + " " + value
}

func longDate(t time.Time) string {
	return fmt.Sprintf("%s %d %s %d", calendar.WeekdayName(t.Weekday()), t.Day(), calendar.MonthName(t.Month()), t.Year())
}

func isMidnight(t time.Time) bool {
	return t.Hour() == 0 && t.Minute() == 0
}

// weekday maps a grid column to its weekday. Grids start on Sunday.
func weekday(col int) time.Weekday {
	return time.Weekday(col % 7)
}

// fit pads or truncates s to exactly w cells.
func fit(s string, w int) string {
	if w <= 0 {
		return ""
	}
	n := ansi.PrintableRuneWidth(s)
	if n > w {
		s = truncate.String(s, uint(w))
		n = ansi.PrintableRuneWidth(s)
	}
	return s + strings.Repeat(" ", w-n)
}

func clampLines(lines []string, height int) []string {
	if height > 0 && len(lines) > height {
		return lines[:height]
	}
	return lines
}

func stripStyle(s string) string {
	var b strings.Builder
	inEscape := false
	for _, r := range s {
		if r == ansi.Marker {
			inEscape = true
			continue
		}
		if inEscape {
			if ansi.IsTerminator(r) {
				inEscape = false
			}
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
