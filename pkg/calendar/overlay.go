package calendar

import (
	"fmt"
	"time"

	"tableflip.dev/hubz/pkg/item"
)

// Overlay is the single detail or creation panel shown over the grid. It is
// one of None, Creating, ViewingItem or ViewingDayList.
type Overlay interface {
	isOverlay()
	fmt.Stringer
}

// None means no overlay is open.
type None struct{}

// Creating is the creation form, pre-filled with a day and an optional
// "HH:00" time.
type Creating struct {
	Date time.Time
	Time string
}

// ViewingItem shows a single item's details.
type ViewingItem struct {
	Item item.Timed
}

// ViewingDayList lists every item of one day.
type ViewingDayList struct {
	Date  time.Time
	Items []item.Timed
}

func (None) isOverlay()           {}
func (Creating) isOverlay()       {}
func (ViewingItem) isOverlay()    {}
func (ViewingDayList) isOverlay() {}

func (None) String() string { return "none" }

func (c Creating) String() string {
	if c.Time == "" {
		return fmt.Sprintf("creating(%s)", FormatISODate(c.Date))
	}
	return fmt.Sprintf("creating(%s %s)", FormatISODate(c.Date), c.Time)
}

func (v ViewingItem) String() string {
	return fmt.Sprintf("item(%s)", v.Item.ID)
}

func (v ViewingDayList) String() string {
	return fmt.Sprintf("day(%s, %d items)", FormatISODate(v.Date), len(v.Items))
}

// Overlays holds the active overlay. Opening one replaces whatever was open.
// The zero value has no overlay open.
type Overlays struct {
	current Overlay
	seq     int
}

// Seq identifies the open overlay. It changes on every Open and Close, so a
// request can tell whether the form it came from is still the one showing.
func (o *Overlays) Seq() int {
	return o.seq
}

// Current returns the active overlay, None when closed.
func (o *Overlays) Current() Overlay {
	if o.current == nil {
		return None{}
	}
	return o.current
}

// IsOpen reports whether any overlay is active.
func (o *Overlays) IsOpen() bool {
	_, closed := o.Current().(None)
	return !closed
}

// Open replaces the active overlay with ov.
func (o *Overlays) Open(ov Overlay) {
	if ov == nil {
		ov = None{}
	}
	o.current = ov
	o.seq++
}

// OpenCreating opens the creation form for date, with an optional time.
func (o *Overlays) OpenCreating(date time.Time, clock string) {
	o.Open(Creating{Date: StartOfDay(date), Time: clock})
}

// OpenItem opens the detail panel of it.
func (o *Overlays) OpenItem(it item.Timed) {
	o.Open(ViewingItem{Item: it})
}

// OpenDayList opens the list of items for date.
func (o *Overlays) OpenDayList(date time.Time, items []item.Timed) {
	o.Open(ViewingDayList{Date: StartOfDay(date), Items: items})
}

// Close returns to None.
func (o *Overlays) Close() {
	o.current = None{}
	o.seq++
}

// SubmitResult settles a create request sent while seq was current. The
// creation form closes only when err is nil, so a failed submission can be
// retried, and only when it is still the form the request came from. It
// reports whether the overlay closed.
func (o *Overlays) SubmitResult(seq int, err error) bool {
	if _, ok := o.Current().(Creating); !ok || err != nil || seq != o.seq {
		return false
	}
	o.Close()
	return true
}

// DeleteResult settles a delete request for the item id. The panel of that
// item closes whatever the outcome, the caller refetches the list either way.
// A panel opened on another item stays. It reports whether the overlay closed.
func (o *Overlays) DeleteResult(id string, err error) bool {
	if v, ok := o.Current().(ViewingItem); !ok || v.Item.ID != id {
		return false
	}
	o.Close()
	return true
}
