package calendar

import (
	"log/slog"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"tableflip.dev/hubz/pkg/item"
)

const maxOccurrences = 5000

// Expand replaces every recurring item (one carrying an RRULE) with its
// occurrences starting in [from, to), the same window ItemsInRange keeps. An
// occurrence that started before from is left out even while it is running. Occurrences keep the series ID and the
// original duration. Non-recurring items pass through unchanged. An item whose
// rule does not parse is kept as a single occurrence.
func Expand(items []item.Timed, from, to time.Time) []item.Timed {
	out := make([]item.Timed, 0, len(items))
	for _, it := range items {
		if strings.TrimSpace(it.RRule) == "" || it.Start.IsZero() {
			out = append(out, it)
			continue
		}
		occ, err := occurrences(it, from, to)
		if err != nil {
			slog.Debug("calendar: recurrence rule ignored", "id", it.ID, "rrule", it.RRule, "err", err)
			out = append(out, it)
			continue
		}
		out = append(out, occ...)
	}
	return out
}

func occurrences(it item.Timed, from, to time.Time) ([]item.Timed, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(it.RRule), "RRULE:")
	r, err := rrule.StrToRRule(raw)
	if err != nil {
		return nil, err
	}
	r.DTStart(it.Start)

	var set rrule.Set
	set.RRule(r)

	duration := it.Duration()
	loc := it.Start.Location()
	starts := set.Between(from.In(loc), to.In(loc), true)
	if len(starts) > maxOccurrences {
		slog.Warn("calendar: recurrence truncated", "id", it.ID, "cap", maxOccurrences)
		starts = starts[:maxOccurrences]
	}

	out := make([]item.Timed, 0, len(starts))
	for _, s := range starts {
		if !s.Before(to) {
			continue
		}
		o := it
		o.Start = s
		if it.HasEnd() {
			o.End = s.Add(duration)
		}
		out = append(out, o)
	}
	return out, nil
}
