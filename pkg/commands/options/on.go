package options

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/hubz/pkg/calendar"
)

const (
	layoutISO      = "2006-1-2"
	layoutISOShort = "1/2"
)

// OnOptions selects the day a command works on.
type OnOptions struct {
	OnString string
}

func AddOnArgs(cmd *cobra.Command, o *OnOptions) {
	cmd.Flags().StringVar(&o.OnString, "on", "",
		`Specify a date, example: --on="2024-3-15", --on="3/15" or --on=demain.`)
}

// GetOn resolves the flag to the start of a day in loc. Empty means today.
func (o *OnOptions) GetOn(now time.Time, loc *time.Location) (time.Time, error) {
	return ParseDay(o.OnString, now, loc)
}

// ParseDay accepts ISO dates, month/day and a few relative words.
func ParseDay(s string, now time.Time, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	today := calendar.StartOfDay(now.In(loc))
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today", "aujourd'hui", "auj":
		return today, nil
	case "tomorrow", "demain":
		return calendar.AddDays(today, 1), nil
	case "yesterday", "hier":
		return calendar.AddDays(today, -1), nil
	}

	t, err := time.ParseInLocation(layoutISO, s, loc)
	if err == nil {
		return t, nil
	}
	// Let the year be the same.
	t, err = time.ParseInLocation(layoutISOShort, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD or MM/DD", s)
	}
	t = time.Date(today.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	// 1/3 typed on 12/5 means next year, not eleven months ago.
	if t.Before(today) {
		t = t.AddDate(1, 0, 0)
	}
	return t, nil
}

// ModeOptions selects the calendar layout.
type ModeOptions struct {
	Mode string
}

func AddModeArgs(cmd *cobra.Command, o *ModeOptions, def calendar.Mode) {
	cmd.Flags().StringVarP(&o.Mode, "mode", "m", string(def),
		"Layout: month, week or day (mois, semaine, jour).")
}

func (o *ModeOptions) GetMode() (calendar.Mode, error) {
	return calendar.ParseMode(o.Mode)
}
