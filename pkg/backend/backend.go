// Package backend defines the item store the calendar page talks to and opens
// the configured implementation.
package backend

import (
	"context"
	"errors"
	"time"

	"tableflip.dev/hubz/pkg/item"
)

var (
	// ErrNotFound is returned when an item does not exist.
	ErrNotFound = errors.New("backend: not found")
	// ErrUnsupported is returned by implementations lacking an operation.
	ErrUnsupported = errors.New("backend: unsupported operation")
)

// Backend stores events and tasks.
type Backend interface {
	ListEvents(ctx context.Context, from, to time.Time) ([]item.Event, error)
	CreateEvent(ctx context.Context, e item.Event) (item.Event, error)
	DeleteEvent(ctx context.Context, id string) error

	ListTasks(ctx context.Context) ([]item.Task, error)
	CreateTask(ctx context.Context, t item.Task) (item.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// ListTimed fetches the kinds requested and converts them for the calendar.
// Tasks are filtered to the [from, to) window by due date since the task
// listing has no range.
func ListTimed(ctx context.Context, b Backend, kinds []item.Kind, from, to time.Time) ([]item.Timed, error) {
	var out []item.Timed
	for _, k := range kinds {
		switch k {
		case item.KindEvent:
			events, err := b.ListEvents(ctx, from, to)
			if err != nil {
				return nil, err
			}
			out = append(out, item.FromEvents(events)...)
		case item.KindTask:
			tasks, err := b.ListTasks(ctx)
			if err != nil {
				return nil, err
			}
			for _, t := range item.FromTasks(tasks) {
				if !t.Start.Before(from) && t.Start.Before(to) {
					out = append(out, t)
				}
			}
		}
	}
	return out, nil
}

// Create stores a draft as the kind it names.
func Create(ctx context.Context, b Backend, d item.Draft) (item.Timed, error) {
	if d.Kind == item.KindTask {
		t, err := d.Task()
		if err != nil {
			return item.Timed{}, err
		}
		created, err := b.CreateTask(ctx, t)
		if err != nil {
			return item.Timed{}, err
		}
		ti, _ := created.Timed()
		return ti, nil
	}
	e, err := d.Event()
	if err != nil {
		return item.Timed{}, err
	}
	created, err := b.CreateEvent(ctx, e)
	if err != nil {
		return item.Timed{}, err
	}
	return created.Timed(), nil
}

// Delete removes an item of the given kind.
func Delete(ctx context.Context, b Backend, kind item.Kind, id string) error {
	if kind == item.KindTask {
		return b.DeleteTask(ctx, id)
	}
	return b.DeleteEvent(ctx, id)
}
