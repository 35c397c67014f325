package calendar

import (
	"testing"
	"time"

	"tableflip.dev/hubz/pkg/item"
)

func TestBuildMonthCellCounts(t *testing.T) {
	for y := 2023; y <= 2025; y++ {
		for m := time.January; m <= time.December; m++ {
			anchor := date(y, m, 12)
			g := BuildMonth(anchor, nil)

			wantBlanks := int(time.Date(y, m, 1, 0, 0, 0, 0, time.Local).Weekday())
			wantDays := time.Date(y, m+1, 0, 0, 0, 0, 0, time.Local).Day()

			if g.LeadingBlanks != wantBlanks {
				t.Fatalf("%d-%02d: expected %d blanks, got %d", y, m, wantBlanks, g.LeadingBlanks)
			}
			if len(g.DayCells()) != wantDays {
				t.Fatalf("%d-%02d: expected %d day cells, got %d", y, m, wantDays, len(g.DayCells()))
			}
			if len(g.Cells) != wantBlanks+wantDays {
				t.Fatalf("%d-%02d: grid must not be padded, got %d cells", y, m, len(g.Cells))
			}
			for i, c := range g.Cells[:wantBlanks] {
				if !c.Blank || c.Day() != 0 {
					t.Fatalf("%d-%02d: cell %d should be blank", y, m, i)
				}
			}
			for i, c := range g.DayCells() {
				if c.Day() != i+1 {
					t.Fatalf("%d-%02d: cell %d has day %d", y, m, i, c.Day())
				}
			}
		}
	}
}

func TestBuildMonthMarch2024(t *testing.T) {
	items := []item.Timed{
		{ID: "a", Title: "Réunion", Start: at(2024, 3, 15, 9, 30), End: at(2024, 3, 15, 10, 0)},
		{ID: "b", Title: "Sport", Start: at(2024, 3, 15, 18, 0)},
		{ID: "c", Title: "Avril", Start: at(2024, 4, 1, 9, 0)},
	}
	g := BuildMonth(date(2024, 3, 20), items)
	if g.LeadingBlanks != 5 {
		t.Fatalf("march 2024 starts on a friday, got %d blanks", g.LeadingBlanks)
	}
	rows := g.Rows()
	if len(rows) != 6 {
		t.Fatalf("expected 6 rows, got %d", len(rows))
	}
	if last := rows[len(rows)-1]; len(last) != 1 {
		t.Fatalf("last row should hold only the 31st, got %d cells", len(last))
	}
	cell := g.DayCells()[14]
	if cell.Day() != 15 || len(cell.Items) != 2 {
		t.Fatalf("expected 2 items on the 15th, got %+v", cell)
	}
	total := 0
	for _, c := range g.DayCells() {
		total += len(c.Items)
	}
	if total != 2 {
		t.Fatalf("april item leaked into march: %d items", total)
	}
}

func TestBuildWeek(t *testing.T) {
	items := []item.Timed{
		{ID: "mon", Title: "Lundi", Start: at(2024, 3, 11, 9, 30), End: at(2024, 3, 11, 10, 0)},
		{ID: "sat", Title: "Samedi", Start: at(2024, 3, 16, 14, 0), End: at(2024, 3, 16, 14, 5)},
		{ID: "out", Title: "Dehors", Start: at(2024, 3, 17, 9, 0)},
	}
	g := BuildWeek(date(2024, 3, 15), items)
	if len(g.Columns) != 7 {
		t.Fatalf("expected 7 columns, got %d", len(g.Columns))
	}
	if !IsSameDay(g.Columns[0].Date, date(2024, 3, 10)) || !IsSameDay(g.Columns[6].Date, date(2024, 3, 16)) {
		t.Fatalf("unexpected week bounds %s..%s", FormatISODate(g.Columns[0].Date), FormatISODate(g.Columns[6].Date))
	}
	mon := g.Columns[1]
	if len(mon.Items) != 1 || mon.Items[0].Position != (Position{TopOffsetMinutes: 570, HeightMinutes: 30}) {
		t.Fatalf("unexpected monday placement: %+v", mon.Items)
	}
	sat := g.Columns[6]
	if len(sat.Items) != 1 || sat.Items[0].Position.HeightMinutes != MinHeightMinutes {
		t.Fatalf("unexpected saturday placement: %+v", sat.Items)
	}
	if got := mon.ItemsAtHour(9); len(got) != 1 {
		t.Fatalf("expected item in the 09:00 row, got %d", len(got))
	}
	if got := mon.ItemsAtHour(10); len(got) != 0 {
		t.Fatalf("item ending at 10:00 must not cover the 10:00 row")
	}
	if got := mon.StartingAtHour(9); len(got) != 1 {
		t.Fatalf("expected item starting in the 09:00 row")
	}
}

func TestBuildDay(t *testing.T) {
	items := []item.Timed{
		{ID: "a", Start: at(2024, 3, 15, 9, 0), End: at(2024, 3, 15, 11, 0)},
		{ID: "b", Start: at(2024, 3, 14, 9, 0)},
	}
	g := BuildDay(at(2024, 3, 15, 16, 0), items)
	if len(g.Columns) != 1 {
		t.Fatalf("expected a single column")
	}
	col := g.Columns[0]
	if len(col.Items) != 1 || col.Items[0].Item.ID != "a" {
		t.Fatalf("unexpected items %+v", col.Items)
	}
	if len(col.ItemsAtHour(10)) != 1 {
		t.Fatalf("a two hour item should cover the 10:00 row")
	}
}

func TestSlotLabel(t *testing.T) {
	for hour, want := range map[int]string{0: "00:00", 9: "09:00", 23: "23:00"} {
		if got := SlotLabel(hour); got != want {
			t.Errorf("hour %d: expected %s, got %s", hour, want, got)
		}
	}
	if got := SlotTime(at(2024, 3, 15, 16, 45), 9); !got.Equal(at(2024, 3, 15, 9, 0)) {
		t.Fatalf("unexpected slot time %v", got)
	}
}
