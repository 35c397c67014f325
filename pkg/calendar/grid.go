package calendar

import (
	"fmt"
	"time"

	"tableflip.dev/hubz/pkg/item"
)

// HoursPerDay is the number of rows in a time grid column.
const HoursPerDay = 24

// Cell is one day of a month grid. Blank cells pad the first week and have a
// zero Date.
type Cell struct {
	Date  time.Time    `json:"date,omitempty"`
	Blank bool         `json:"blank,omitempty"`
	Items []item.Timed `json:"items,omitempty"`
}

// Day returns the day of month, or 0 for blanks.
func (c Cell) Day() int {
	if c.Blank {
		return 0
	}
	return c.Date.Day()
}

// MonthGrid is the month layout: LeadingBlanks empty cells followed by one
// cell per day. The last row may be short.
type MonthGrid struct {
	Month         time.Time `json:"month"`
	LeadingBlanks int       `json:"leadingBlanks"`
	Cells         []Cell    `json:"cells"`
}

// Rows splits the cells into weeks of seven. The final week is not padded.
func (g MonthGrid) Rows() [][]Cell {
	var rows [][]Cell
	for i := 0; i < len(g.Cells); i += 7 {
		end := i + 7
		if end > len(g.Cells) {
			end = len(g.Cells)
		}
		rows = append(rows, g.Cells[i:end])
	}
	return rows
}

// DayCells returns only the non-blank cells.
func (g MonthGrid) DayCells() []Cell {
	return g.Cells[g.LeadingBlanks:]
}

// BuildMonth lays out anchor's month with each day's items.
func BuildMonth(anchor time.Time, items []item.Timed) MonthGrid {
	first := FirstOfMonth(anchor)
	blanks := int(first.Weekday())
	days := DaysIn(anchor)

	cells := make([]Cell, 0, blanks+days)
	for i := 0; i < blanks; i++ {
		cells = append(cells, Cell{Blank: true})
	}
	for d := 0; d < days; d++ {
		date := AddDays(first, d)
		cells = append(cells, Cell{Date: date, Items: ItemsOnDate(items, date)})
	}
	return MonthGrid{Month: first, LeadingBlanks: blanks, Cells: cells}
}

// Placed is an item with its position in a day column.
type Placed struct {
	Item     item.Timed `json:"item"`
	Position Position   `json:"position"`
}

// Column is one day of a time grid.
type Column struct {
	Date  time.Time `json:"date"`
	Items []Placed  `json:"items,omitempty"`
}

// ItemsAtHour returns the placed items overlapping [hour:00, hour+1:00).
func (c Column) ItemsAtHour(hour int) []Placed {
	from, to := hour*60, (hour+1)*60
	var out []Placed
	for _, p := range c.Items {
		if p.Position.TopOffsetMinutes < to && p.Position.Bottom() > from {
			out = append(out, p)
		}
	}
	return out
}

// StartingAtHour returns the placed items whose top falls in the hour.
func (c Column) StartingAtHour(hour int) []Placed {
	var out []Placed
	for _, p := range c.Items {
		if p.Position.TopOffsetMinutes/60 == hour {
			out = append(out, p)
		}
	}
	return out
}

// TimeGrid is the week or day layout: columns of 24 hour rows.
type TimeGrid struct {
	Columns []Column `json:"columns"`
}

// BuildColumn places the items of one day.
func BuildColumn(date time.Time, items []item.Timed) Column {
	day := StartOfDay(date)
	onDay := ItemsOnDate(items, day)
	placed := make([]Placed, 0, len(onDay))
	for _, it := range onDay {
		placed = append(placed, Placed{Item: it, Position: PositionOf(it.In(day.Location()))})
	}
	return Column{Date: day, Items: placed}
}

// BuildWeek lays out the seven days starting at StartOfWeek(anchor).
func BuildWeek(anchor time.Time, items []item.Timed) TimeGrid {
	start := StartOfWeek(anchor)
	cols := make([]Column, 0, 7)
	for i := 0; i < 7; i++ {
		cols = append(cols, BuildColumn(AddDays(start, i), items))
	}
	return TimeGrid{Columns: cols}
}

// BuildDay lays out anchor's day as a single column.
func BuildDay(anchor time.Time, items []item.Timed) TimeGrid {
	return TimeGrid{Columns: []Column{BuildColumn(anchor, items)}}
}

// SlotLabel formats an hour row label, "09:00".
func SlotLabel(hour int) string {
	return fmt.Sprintf("%02d:00", hour)
}

// SlotTime returns the instant for hour on date's day.
func SlotTime(date time.Time, hour int) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), hour, 0, 0, 0, date.Location())
}
