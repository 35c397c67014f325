package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventType describes the nature of a preference change notification.
type EventType int

const (
	// EventViewModeChanged reports a new view mode for Event.Scope.
	EventViewModeChanged EventType = iota

	// EventDismissedChanged reports that the dismissed notification set
	// changed. Event.Scope carries the notification id when known.
	EventDismissedChanged

	// EventPrefsInvalidated asks callers to reload every preference.
	EventPrefsInvalidated
)

func (t EventType) String() string {
	switch t {
	case EventViewModeChanged:
		return "viewmode"
	case EventDismissedChanged:
		return "dismissed"
	default:
		return "invalidated"
	}
}

// Event is emitted by Prefs.Watch when the files under the store change,
// whether written by this process or another one.
type Event struct {
	Type  EventType
	Scope string
}

// Watch streams change events until ctx is cancelled. Callers should drain the
// returned channel; events are dropped rather than block the watcher. The
// channel is closed once ctx is done or the watcher fails.
func (p *prefs) Watch(ctx context.Context) (<-chan Event, error) {
	for _, bucket := range []string{bucketViewMode, bucketDismissed} {
		if err := os.MkdirAll(filepath.Join(p.basePath, bucket), 0o755); err != nil {
			return nil, fmt.Errorf("store: ensure %s: %w", bucket, err)
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("store: create watcher: %w", err)
	}
	var closeOnce sync.Once
	closeWatcher := func() {
		closeOnce.Do(func() {
			if err := watcher.Close(); err != nil {
				slog.Warn("store: watcher close", "err", err)
			}
		})
	}

	dirs, err := collectDirs(p.basePath)
	if err != nil {
		closeWatcher()
		return nil, fmt.Errorf("store: enumerate directories: %w", err)
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			closeWatcher()
			return nil, fmt.Errorf("store: watch %s: %w", dir, err)
		}
	}

	events := make(chan Event, 64)

	go func() {
		defer close(events)
		defer closeWatcher()

		send := func(ev Event) {
			select {
			case events <- ev:
			default:
			}
		}

		throttle := newEventThrottle(100 * time.Millisecond)
		defer throttle.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Debug("store: watcher error", "err", err)
				throttle.Enqueue(Event{Type: EventPrefsInvalidated}, send)
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if strings.HasSuffix(evt.Name, ".tmp") {
					continue
				}
				throttle.Enqueue(p.eventForPath(evt.Name), send)
			}
		}
	}()

	return events, nil
}

// collectDirs walks base and returns all directories that should be watched.
func collectDirs(base string) ([]string, error) {
	dirs := []string{base}
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() && path != base {
			dirs = append(dirs, path)
		}
		return nil
	})
	return dirs, err
}

// eventForPath classifies a diskv file path into a preference event.
func (p *prefs) eventForPath(path string) Event {
	rel, err := filepath.Rel(p.basePath, path)
	if err != nil || rel == "." {
		return Event{Type: EventPrefsInvalidated}
	}
	parts := strings.Split(rel, string(os.PathSeparator))
	if len(parts) != 2 {
		return Event{Type: EventPrefsInvalidated}
	}
	switch parts[0] {
	case bucketViewMode:
		return Event{Type: EventViewModeChanged, Scope: decodeName(parts[1])}
	case bucketDismissed:
		return Event{Type: EventDismissedChanged, Scope: decodeName(parts[1])}
	default:
		return Event{Type: EventPrefsInvalidated}
	}
}

// eventThrottle coalesces rapid change notifications so watchers reload once
// per burst of filesystem activity instead of on every write.
type eventThrottle struct {
	mu      sync.Mutex
	timer   *time.Timer
	pending map[EventType]map[string]struct{}
	delay   time.Duration
}

func newEventThrottle(delay time.Duration) *eventThrottle {
	return &eventThrottle{
		delay:   delay,
		pending: make(map[EventType]map[string]struct{}),
	}
}

func (t *eventThrottle) Enqueue(ev Event, send func(Event)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending[ev.Type] == nil {
		t.pending[ev.Type] = make(map[string]struct{})
	}
	t.pending[ev.Type][ev.Scope] = struct{}{}

	if t.timer == nil {
		t.timer = time.AfterFunc(t.delay, func() {
			t.flush(send)
		})
	}
}

func (t *eventThrottle) flush(send func(Event)) {
	t.mu.Lock()
	pending := t.pending
	t.pending = make(map[EventType]map[string]struct{})
	t.timer = nil
	t.mu.Unlock()

	for eventType, scopes := range pending {
		if eventType == EventPrefsInvalidated {
			send(Event{Type: eventType})
			continue
		}
		for scope := range scopes {
			send(Event{Type: eventType, Scope: scope})
		}
	}
}

func (t *eventThrottle) Stop() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()
}
