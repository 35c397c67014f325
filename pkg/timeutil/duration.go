package timeutil

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	segmentPattern = regexp.MustCompile(`^\s*(\d+)\s*([a-z]*)`)
	unitMap        = map[string]time.Duration{
		"m":       time.Minute,
		"min":     time.Minute,
		"mins":    time.Minute,
		"minute":  time.Minute,
		"minutes": time.Minute,
		"h":       time.Hour,
		"hr":      time.Hour,
		"hrs":     time.Hour,
		"hour":    time.Hour,
		"hours":   time.Hour,
		"d":       24 * time.Hour,
		"day":     24 * time.Hour,
		"days":    24 * time.Hour,
		"j":       24 * time.Hour,
		"jour":    24 * time.Hour,
		"jours":   24 * time.Hour,
	}
)

// ParseDuration parses event lengths and reminder windows such as "45m",
// "2h", "1h30m" or "1d". A bare number following an hour segment counts as
// minutes, so "1h30" equals "1h30m". It returns the duration and its compact
// canonical form.
func ParseDuration(input string) (time.Duration, string, error) {
	remaining := strings.ToLower(strings.TrimSpace(input))
	if remaining == "" {
		return 0, "", errors.New("duration required")
	}

	total := time.Duration(0)
	var last time.Duration
	for len(remaining) > 0 {
		matches := segmentPattern.FindStringSubmatch(remaining)
		if len(matches) != 3 {
			return 0, "", fmt.Errorf("invalid duration segment %q", strings.TrimSpace(remaining))
		}
		value, err := strconv.ParseInt(matches[1], 10, 64)
		if err != nil {
			return 0, "", fmt.Errorf("invalid duration value %q: %w", matches[1], err)
		}
		unit := matches[2]
		var base time.Duration
		switch {
		case unit == "" && last == time.Hour:
			base = time.Minute
		case unit == "":
			return 0, "", fmt.Errorf("duration %q is missing a unit", strings.TrimSpace(input))
		default:
			var ok bool
			base, ok = unitMap[unit]
			if !ok {
				return 0, "", fmt.Errorf("unsupported duration unit %q", unit)
			}
		}
		total += time.Duration(value) * base
		last = base
		remaining = remaining[len(matches[0]):]
	}

	if total <= 0 {
		return 0, "", errors.New("duration must be greater than zero")
	}
	return total, FormatDuration(total), nil
}

// FormatDuration renders a duration using day/hour/minute tokens. Seconds are
// dropped.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return "0m"
	}
	units := []struct {
		label string
		value time.Duration
	}{
		{"d", 24 * time.Hour},
		{"h", time.Hour},
		{"m", time.Minute},
	}

	var b strings.Builder
	remaining := d
	for _, u := range units {
		if remaining < u.value {
			continue
		}
		count := remaining / u.value
		remaining -= count * u.value
		fmt.Fprintf(&b, "%d%s", count, u.label)
	}
	return b.String()
}
