// Package printers renders calendar data for the command line.
package printers

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/hubz/pkg/glyph"
	"tableflip.dev/hubz/pkg/item"
	"tableflip.dev/hubz/pkg/timeutil"
)

type PrettyPrint struct {
	ShowID bool
	// Out defaults to color.Output.
	Out io.Writer
}

var (
	spacing = strings.Repeat(" ", len("task-171dff69f8b99dca  "))
)

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out == nil {
		return color.Output
	}
	return pp.Out
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out(), "")
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)

	if pp.ShowID {
		_, _ = t.Fprint(pp.out(), spacing)
	}
	_, _ = t.Fprintln(pp.out(), title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	if pp.ShowID {
		_, _ = t.Fprint(pp.out(), spacing)
	}
	_, _ = t.Fprint(pp.out(), title)
	_, _ = c.Fprintf(pp.out(), " - %d", count)

	switch count {
	case 0, 1:
		_, _ = c.Fprintln(pp.out(), " élément")
	default:
		_, _ = c.Fprintln(pp.out(), " éléments")
	}
}

// Items lists items one per line: time, marker, title.
func (pp *PrettyPrint) Items(items ...item.Timed) {
	if len(items) == 0 {
		f := color.New(color.Faint, color.Italic)
		if pp.ShowID {
			_, _ = f.Fprint(pp.out(), spacing)
		}
		_, _ = f.Fprint(pp.out(), " aucun\n\n")
		return
	}

	t := color.New()
	y := color.New(color.FgHiYellow, color.Italic, color.Faint)

	for _, it := range items {
		if pp.ShowID {
			_, _ = y.Fprint(pp.out(), it.ID)
			_, _ = y.Fprint(pp.out(), strings.Repeat(" ", max(len(spacing)-len(it.ID), 1)))
		}
		_, _ = t.Fprintf(pp.out(), "%s %s %s\n", Span(it), Marker(it), it.Title)
	}
	_, _ = t.Fprintln(pp.out(), "")
}

// Events prints events as a table.
func (pp *PrettyPrint) Events(events ...item.Event) {
	bold := color.New(color.Bold)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 48
	if pp.ShowID {
		tbl.AddRow(bold.Sprint("ID"), bold.Sprint("Date"), bold.Sprint("Horaire"), bold.Sprint("Durée"), bold.Sprint("Titre"))
	} else {
		tbl.AddRow(bold.Sprint("Date"), bold.Sprint("Horaire"), bold.Sprint("Durée"), bold.Sprint("Titre"))
	}
	for _, e := range events {
		it := e.Timed()
		title := e.Title
		if e.RRule != "" {
			title += " " + glyph.Recurring.String()
		}
		row := []interface{}{it.Start.Format("2006-01-02"), Span(it), timeutil.FormatDuration(it.Duration()), title}
		if pp.ShowID {
			row = append([]interface{}{e.ID}, row...)
		}
		tbl.AddRow(row...)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
}

// Tasks prints tasks as a table.
func (pp *PrettyPrint) Tasks(tasks ...item.Task) {
	bold := color.New(color.Bold)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 48
	if pp.ShowID {
		tbl.AddRow(bold.Sprint("ID"), bold.Sprint("Échéance"), bold.Sprint("Statut"), bold.Sprint("Priorité"), bold.Sprint("Titre"))
	} else {
		tbl.AddRow(bold.Sprint("Échéance"), bold.Sprint("Statut"), bold.Sprint("Priorité"), bold.Sprint("Titre"))
	}
	for _, t := range tasks {
		due := "-"
		if t.DueDate != nil {
			due = t.DueDate.Format("2006-01-02 15:04")
		}
		row := []interface{}{due, t.Status, t.Priority, t.Title}
		if pp.ShowID {
			row = append([]interface{}{t.ID}, row...)
		}
		tbl.AddRow(row...)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
}

// Span renders the time range of an item, "09:30-10:00". Tasks and items
// without an end show only the start.
func Span(it item.Timed) string {
	if !it.HasEnd() || it.Kind == item.KindTask {
		return it.Start.Format("15:04")
	}
	if it.End.Sub(it.Start) >= 24*time.Hour {
		return "journée"
	}
	return it.Start.Format("15:04") + "-" + it.End.Format("15:04")
}

// Marker is the bullet drawn before an item.
func Marker(it item.Timed) string {
	return glyph.For(it).String()
}

// Legend prints what the markers mean.
func (pp *PrettyPrint) Legend() {
	f := color.New(color.Faint)
	_, _ = f.Fprintln(pp.out(), glyph.Legend())
}
