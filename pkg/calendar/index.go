package calendar

import (
	"sort"
	"time"

	"tableflip.dev/hubz/pkg/item"
)

// MinHeightMinutes is the smallest height an item occupies in a time grid so
// it always stays clickable.
const MinHeightMinutes = 15

const minutesPerDay = 24 * 60

// Position places an item inside a 24 hour column where one minute is one
// unit.
type Position struct {
	TopOffsetMinutes int `json:"topOffsetMinutes"`
	HeightMinutes    int `json:"heightMinutes"`
}

// Bottom is the first minute after the item.
func (p Position) Bottom() int {
	return p.TopOffsetMinutes + p.HeightMinutes
}

// ItemsOnDate returns the items starting on date's calendar day. Item
// timestamps are read in date's location. Items with a zero start are
// skipped. The result is ordered by start time, then title.
func ItemsOnDate(items []item.Timed, date time.Time) []item.Timed {
	loc := date.Location()
	var out []item.Timed
	for _, it := range items {
		if it.Start.IsZero() {
			continue
		}
		if IsSameDay(it.Start.In(loc), date) {
			out = append(out, it)
		}
	}
	sortItems(out)
	return out
}

// ItemsInRange returns the items starting in [from, to).
func ItemsInRange(items []item.Timed, from, to time.Time) []item.Timed {
	var out []item.Timed
	for _, it := range items {
		if it.Start.IsZero() {
			continue
		}
		if !it.Start.Before(from) && it.Start.Before(to) {
			out = append(out, it)
		}
	}
	sortItems(out)
	return out
}

// PositionOf computes where it sits in a day column. The height is the
// minute span between start and end, floored at MinHeightMinutes. Items with
// no end, a zero span or an end before the start get the floor. An end on a
// later day stretches to midnight.
func PositionOf(it item.Timed) Position {
	top := minuteOfDay(it.Start)
	height := MinHeightMinutes
	if it.HasEnd() && it.End.After(it.Start) {
		end := minuteOfDay(it.End.In(it.Start.Location()))
		if !IsSameDay(it.End.In(it.Start.Location()), it.Start) {
			end = minutesPerDay
		}
		if span := end - top; span > height {
			height = span
		}
	}
	return Position{TopOffsetMinutes: top, HeightMinutes: height}
}

func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

func sortItems(items []item.Timed) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Start.Equal(items[j].Start) {
			return items[i].Title < items[j].Title
		}
		return items[i].Start.Before(items[j].Start)
	})
}
