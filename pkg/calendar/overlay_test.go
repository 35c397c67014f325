package calendar

import (
	"errors"
	"testing"

	"tableflip.dev/hubz/pkg/item"
)

func TestOverlaysStartClosed(t *testing.T) {
	var o Overlays
	if _, ok := o.Current().(None); !ok {
		t.Fatalf("expected None, got %s", o.Current())
	}
	if o.IsOpen() {
		t.Fatalf("zero value must be closed")
	}
}

func TestOverlaysExclusive(t *testing.T) {
	var o Overlays
	o.OpenCreating(at(2024, 3, 15, 13, 0), "09:00")
	c, ok := o.Current().(Creating)
	if !ok {
		t.Fatalf("expected Creating, got %s", o.Current())
	}
	if c.Time != "09:00" || c.Date.Hour() != 0 {
		t.Fatalf("unexpected creating payload %+v", c)
	}

	it := item.Timed{ID: "evt-1", Title: "Réunion", Start: at(2024, 3, 15, 9, 0)}
	o.OpenItem(it)
	v, ok := o.Current().(ViewingItem)
	if !ok {
		t.Fatalf("expected ViewingItem, got %s", o.Current())
	}
	if v.Item.ID != "evt-1" {
		t.Fatalf("unexpected item %+v", v.Item)
	}

	o.OpenDayList(at(2024, 3, 15, 0, 0), []item.Timed{it})
	if _, ok := o.Current().(ViewingDayList); !ok {
		t.Fatalf("expected ViewingDayList, got %s", o.Current())
	}

	o.Close()
	if o.IsOpen() {
		t.Fatalf("expected closed overlay")
	}
}

func TestSubmitResult(t *testing.T) {
	var o Overlays
	o.OpenCreating(date(2024, 3, 15), "")

	seq := o.Seq()

	if o.SubmitResult(seq, errors.New("boom")) {
		t.Fatalf("failed submit must not close the form")
	}
	if _, ok := o.Current().(Creating); !ok {
		t.Fatalf("expected form kept open, got %s", o.Current())
	}
	if !o.SubmitResult(seq, nil) {
		t.Fatalf("successful submit should close the form")
	}
	if o.IsOpen() {
		t.Fatalf("expected closed overlay")
	}

	o.OpenItem(item.Timed{ID: "x"})
	if o.SubmitResult(o.Seq(), nil) {
		t.Fatalf("submit result must not close a non creating overlay")
	}
}

func TestSubmitResultForAnotherForm(t *testing.T) {
	var o Overlays
	o.OpenCreating(date(2024, 3, 15), "09:00")
	seq := o.Seq()

	o.Close()
	o.OpenCreating(date(2024, 3, 15), "09:00")
	if o.SubmitResult(seq, nil) {
		t.Fatalf("a result for an earlier form must not close a newer one")
	}
	if _, ok := o.Current().(Creating); !ok {
		t.Fatalf("expected the newer form kept open, got %s", o.Current())
	}
}

func TestDeleteResult(t *testing.T) {
	for _, err := range []error{nil, errors.New("boom")} {
		var o Overlays
		o.OpenItem(item.Timed{ID: "x"})
		if !o.DeleteResult("x", err) {
			t.Fatalf("err=%v: expected item panel to close", err)
		}
		if o.IsOpen() {
			t.Fatalf("err=%v: expected closed overlay", err)
		}
	}

	var o Overlays
	o.OpenCreating(date(2024, 3, 15), "")
	if o.DeleteResult("x", nil) {
		t.Fatalf("delete result must not close the creation form")
	}

	o.OpenItem(item.Timed{ID: "y"})
	if o.DeleteResult("x", nil) {
		t.Fatalf("delete result for x must not close the panel of y")
	}
	if v, ok := o.Current().(ViewingItem); !ok || v.Item.ID != "y" {
		t.Fatalf("expected the panel of y kept open, got %s", o.Current())
	}
}
