package printers

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/hubz/pkg/calendar"
	"tableflip.dev/hubz/pkg/item"
)

const width = len("11 12 13 14 15 16 17") // an example week

// Calendar prints the layout for mode: the month as a list of days, the week
// and the day as hour columns.
func (pp *PrettyPrint) Calendar(mode calendar.Mode, anchor, now time.Time, items []item.Timed) {
	pp.Title(calendar.Header(mode, anchor))
	switch mode {
	case calendar.ModeMonth:
		grid := calendar.BuildMonth(anchor, items)
		pp.MonthCount(grid, now)
		pp.MonthLong(grid, now)
	case calendar.ModeWeek:
		pp.TimeGrid(calendar.BuildWeek(anchor, items), now)
	default:
		pp.TimeGrid(calendar.BuildDay(anchor, items), now)
	}
}

// MonthCount prints the compact month with busy days in bold.
func (pp *PrettyPrint) MonthCount(grid calendar.MonthGrid, now time.Time) {
	w := pp.out()
	tf := color.New(color.FgWhite, color.Italic)

	m := calendar.MonthName(grid.Month.Month())
	mid := max((width-len([]rune(m)))/2, 0)
	_, _ = tf.Fprintf(w, "%s%s\n", strings.Repeat(" ", mid), m)

	head := make([]string, 0, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		head = append(head, string([]rune(calendar.WeekdayShortName(d))[:2]))
	}
	_, _ = color.New(color.Faint).Fprintln(w, strings.Join(head, " "))

	l1 := color.New(color.Faint, color.FgWhite)
	l2 := color.New(color.Bold, color.FgHiWhite)
	today := color.New(color.Bold, color.Underline)

	for _, row := range grid.Rows() {
		for _, cell := range row {
			switch {
			case cell.Blank:
				_, _ = fmt.Fprint(w, "   ")
			case calendar.IsSameDay(cell.Date, now):
				_, _ = today.Fprintf(w, "%2d", cell.Day())
				_, _ = fmt.Fprint(w, " ")
			case len(cell.Items) > 0:
				_, _ = l2.Fprintf(w, "%2d ", cell.Day())
			default:
				_, _ = l1.Fprintf(w, "%2d ", cell.Day())
			}
		}
		_, _ = fmt.Fprint(w, "\n")
	}
	_, _ = fmt.Fprint(w, "\n")
}

// MonthLong prints one line per day followed by its items.
func (pp *PrettyPrint) MonthLong(grid calendar.MonthGrid, now time.Time) {
	w := pp.out()
	p := color.New()
	b := color.New(color.Bold)
	s := color.New(color.Underline)
	bs := color.New(color.Underline, color.Bold)

	for _, cell := range grid.DayCells() {
		printer := p
		isToday := calendar.IsSameDay(cell.Date, now)
		if isToday {
			printer = b
		}
		if cell.Date.Weekday() == time.Sunday {
			printer = s
			if isToday {
				printer = bs
			}
		}
		label := string([]rune(calendar.WeekdayShortName(cell.Date.Weekday()))[:1])
		_, _ = printer.Fprintf(w, "%2d %s", cell.Day(), label)

		for i, it := range cell.Items {
			if i > 0 {
				_, _ = p.Fprint(w, "      ")
			} else {
				_, _ = p.Fprint(w, "  ")
			}
			_, _ = p.Fprintf(w, "%s %s %s\n", Marker(it), Span(it), it.Title)
		}
		if len(cell.Items) == 0 {
			_, _ = p.Fprintf(w, "\n")
		}
	}
	_, _ = p.Fprintln(w, "")
}

// TimeGrid prints each column with the hour slots that hold items.
func (pp *PrettyPrint) TimeGrid(grid calendar.TimeGrid, now time.Time) {
	w := pp.out()
	head := color.New(color.Bold)
	slot := color.New(color.Faint)
	more := color.New(color.Faint, color.Italic)

	for _, col := range grid.Columns {
		label := fmt.Sprintf("%s %d %s", calendar.WeekdayName(col.Date.Weekday()), col.Date.Day(), calendar.MonthShortName(col.Date.Month()))
		if calendar.IsSameDay(col.Date, now) {
			label += " (aujourd'hui)"
		}
		_, _ = head.Fprintln(w, label)

		if len(col.Items) == 0 {
			_, _ = more.Fprintln(w, "  aucun")
		}
		for hour := 0; hour < calendar.HoursPerDay; hour++ {
			starting := col.StartingAtHour(hour)
			if len(starting) == 0 {
				continue
			}
			_, _ = slot.Fprintf(w, "  %s ", calendar.SlotLabel(hour))
			for i, p := range starting {
				if i > 0 {
					_, _ = fmt.Fprint(w, "        ")
				}
				_, _ = fmt.Fprintf(w, "%s %s %s\n", Marker(p.Item), Span(p.Item), p.Item.Title)
			}
		}
		_, _ = fmt.Fprintln(w, "")
	}
}
