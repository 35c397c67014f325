// Package remind scans the calendar for items about to start and notifies the
// user once per occurrence.
package remind

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/robfig/cron/v3"

	"tableflip.dev/hubz/pkg/backend"
	"tableflip.dev/hubz/pkg/controller"
	"tableflip.dev/hubz/pkg/item"
	"tableflip.dev/hubz/pkg/store"
	"tableflip.dev/hubz/pkg/timeutil"
)

// Dismissals older than this are pruned on every scan.
const keepDismissed = 7 * 24 * time.Hour

// Notice is an item starting soon.
type Notice struct {
	Item item.Timed
	// In is the time left before the start, rounded to the minute.
	In time.Duration
}

// Key identifies one occurrence: the series id and its start.
func (n Notice) Key() string {
	return n.Item.ID + "@" + strconv.FormatInt(n.Item.Start.Unix(), 10)
}

// Service finds due notices.
type Service struct {
	backend backend.Backend
	prefs   store.Prefs
	kinds   []item.Kind
	lead    time.Duration
	loc     *time.Location
}

// NewService returns a service warning lead ahead of each start.
func NewService(b backend.Backend, prefs store.Prefs, lead time.Duration, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		backend: b,
		prefs:   prefs,
		kinds:   []item.Kind{item.KindEvent, item.KindTask},
		lead:    lead,
		loc:     loc,
	}
}

// Due returns the items starting in [now, now+lead) that were not dismissed.
func (s *Service) Due(ctx context.Context, now time.Time) ([]Notice, error) {
	if s.lead <= 0 {
		return nil, errors.New("remind: lead must be positive")
	}
	items, err := controller.Fetch(ctx, s.backend, s.kinds, now, now.Add(s.lead), s.loc)
	if err != nil {
		return nil, fmt.Errorf("remind: fetch: %w", err)
	}
	var out []Notice
	for _, it := range items {
		n := Notice{Item: it, In: it.Start.Sub(now).Round(time.Minute)}
		if s.prefs != nil {
			if _, dismissed := s.prefs.Dismissed(n.Key()); dismissed {
				continue
			}
		}
		out = append(out, n)
	}
	return out, nil
}

// Dismiss records that n was shown.
func (s *Service) Dismiss(n Notice, at time.Time) error {
	if s.prefs == nil {
		return nil
	}
	return s.prefs.Dismiss(n.Key(), at)
}

// Prune forgets dismissals older than a week.
func (s *Service) Prune(now time.Time) (int, error) {
	if s.prefs == nil {
		return 0, nil
	}
	return s.prefs.PruneDismissed(now.Add(-keepDismissed))
}

// Check runs one scan: due notices are handed to notifier and dismissed.
func (s *Service) Check(ctx context.Context, now time.Time, notifier Notifier) error {
	notices, err := s.Due(ctx, now)
	if err != nil {
		return err
	}
	if len(notices) > 0 {
		if err := notifier.Notify(ctx, notices); err != nil {
			return fmt.Errorf("remind: notify: %w", err)
		}
		for _, n := range notices {
			if err := s.Dismiss(n, now); err != nil {
				slog.Warn("could not record dismissal", "key", n.Key(), "err", err)
			}
		}
	}
	if n, err := s.Prune(now); err != nil {
		slog.Warn("could not prune dismissals", "err", err)
	} else if n > 0 {
		slog.Debug("pruned dismissals", "count", n)
	}
	return nil
}

// Notifier delivers notices.
type Notifier interface {
	Notify(ctx context.Context, notices []Notice) error
}

// WriterNotifier prints notices, one per line.
type WriterNotifier struct {
	Out io.Writer
}

// Notify implements Notifier.
func (w WriterNotifier) Notify(_ context.Context, notices []Notice) error {
	when := color.New(color.FgYellow, color.Bold)
	for _, n := range notices {
		lead := "maintenant"
		if n.In > 0 {
			lead = "dans " + timeutil.FormatDuration(n.In)
		}
		kind := "Événement"
		if n.Item.Kind == item.KindTask {
			kind = "Tâche"
		}
		if _, err := fmt.Fprintf(w.Out, "%s %s : %s (%s)\n",
			when.Sprint(n.Item.Start.Format("15:04")), kind, n.Item.Title, lead); err != nil {
			return err
		}
	}
	return nil
}

// Scheduler runs Service.Check on a cron schedule.
type Scheduler struct {
	cron     *cron.Cron
	service  *Service
	notifier Notifier
	spec     string
	now      func() time.Time
}

// NewScheduler validates spec, a five field cron expression.
func NewScheduler(svc *Service, notifier Notifier, spec string, loc *time.Location) (*Scheduler, error) {
	if spec == "" {
		spec = "* * * * *"
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("remind: schedule %q: %w", spec, err)
	}
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		service:  svc,
		notifier: notifier,
		spec:     spec,
		now:      time.Now,
	}, nil
}

// Run scans once immediately, then on every tick, until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	check := func() {
		if err := s.service.Check(ctx, s.now(), s.notifier); err != nil {
			slog.Error("reminder check failed", "err", err)
		}
	}
	if _, err := s.cron.AddFunc(s.spec, check); err != nil {
		return fmt.Errorf("remind: add schedule: %w", err)
	}

	check()
	s.cron.Start()
	slog.Info("reminder scheduler started", "schedule", s.spec)

	<-ctx.Done()
	stopped := s.cron.Stop()
	<-stopped.Done()
	slog.Info("reminder scheduler stopped")
	return nil
}
