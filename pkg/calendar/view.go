package calendar

import (
	"fmt"
	"strings"
	"time"
)

// Mode is the active calendar layout.
type Mode string

const (
	ModeMonth Mode = "month"
	ModeWeek  Mode = "week"
	ModeDay   Mode = "day"
)

// Modes lists the modes in toggle order.
var Modes = []Mode{ModeMonth, ModeWeek, ModeDay}

// ParseMode accepts the English mode names and their French labels.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "month", "mois", "m":
		return ModeMonth, nil
	case "week", "semaine", "w":
		return ModeWeek, nil
	case "day", "jour", "d":
		return ModeDay, nil
	default:
		return "", fmt.Errorf("calendar: unknown mode %q", s)
	}
}

// Label is the French toggle label.
func (m Mode) Label() string {
	switch m {
	case ModeWeek:
		return "Semaine"
	case ModeDay:
		return "Jour"
	default:
		return "Mois"
	}
}

func (m Mode) valid() bool {
	return m == ModeMonth || m == ModeWeek || m == ModeDay
}

// Clock returns the current time. Views take one so navigation to today is
// testable.
type Clock func() time.Time

// View is the navigation state: a mode and the anchor date it centers on.
// The zero value is not ready for use; call NewView.
type View struct {
	mode   Mode
	anchor time.Time
	now    Clock
}

// NewView starts in month mode anchored on today. A nil clock uses time.Now.
func NewView(now Clock) *View {
	if now == nil {
		now = time.Now
	}
	return &View{mode: ModeMonth, anchor: now(), now: now}
}

// Mode returns the active mode.
func (v *View) Mode() Mode { return v.mode }

// Anchor returns the anchor date.
func (v *View) Anchor() time.Time { return v.anchor }

// Previous steps back one month, one week or one day.
func (v *View) Previous() { v.step(-1) }

// Next steps forward one month, one week or one day.
func (v *View) Next() { v.step(1) }

func (v *View) step(dir int) {
	switch v.mode {
	case ModeWeek:
		v.anchor = AddDays(v.anchor, 7*dir)
	case ModeDay:
		v.anchor = AddDays(v.anchor, dir)
	default:
		// AddDate normalizes overflow: Jan 31 + 1 month lands on Mar 2 or 3.
		v.anchor = v.anchor.AddDate(0, dir, 0)
	}
}

// Today moves the anchor to now and keeps the mode.
func (v *View) Today() {
	v.anchor = v.now()
}

// SetMode switches the layout without touching the anchor. Unknown modes are
// ignored.
func (v *View) SetMode(m Mode) {
	if !m.valid() {
		return
	}
	v.mode = m
}

// SelectDay moves the anchor to d.
func (v *View) SelectDay(d time.Time) {
	if d.IsZero() {
		return
	}
	v.anchor = d
}

// Range returns the visible interval [from, to).
func (v *View) Range() (time.Time, time.Time) {
	return RangeOf(v.mode, v.anchor)
}

// Header returns the French label for the current state.
func (v *View) Header() string {
	return Header(v.mode, v.anchor)
}

// Now returns the view clock's current time.
func (v *View) Now() time.Time {
	return v.now()
}

// RangeOf returns the interval [from, to) shown for mode around anchor.
func RangeOf(mode Mode, anchor time.Time) (time.Time, time.Time) {
	switch mode {
	case ModeWeek:
		from := StartOfWeek(anchor)
		return from, AddDays(from, 7)
	case ModeDay:
		from := StartOfDay(anchor)
		return from, AddDays(from, 1)
	default:
		from := FirstOfMonth(anchor)
		return from, from.AddDate(0, 1, 0)
	}
}
