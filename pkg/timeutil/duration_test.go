package timeutil

import (
	"testing"
	"time"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in    string
		want  time.Duration
		label string
	}{
		{"45m", 45 * time.Minute, "45m"},
		{"2h", 2 * time.Hour, "2h"},
		{"1h30m", 90 * time.Minute, "1h30m"},
		{"1h30", 90 * time.Minute, "1h30m"},
		{"90 minutes", 90 * time.Minute, "1h30m"},
		{"1d", 24 * time.Hour, "1d"},
		{" 2 jours ", 48 * time.Hour, "2d"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, label, err := ParseDuration(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			if label != tt.label {
				t.Fatalf("expected label %s, got %s", tt.label, label)
			}
		})
	}
}

func TestParseDurationInvalid(t *testing.T) {
	for _, in := range []string{"", "noop", "30", "3w", "0m"} {
		if _, _, err := ParseDuration(in); err == nil {
			t.Errorf("expected error for %q", in)
		}
	}
}

func TestFormatDurationDropsSeconds(t *testing.T) {
	if got := FormatDuration(61*time.Minute + 20*time.Second); got != "1h1m" {
		t.Fatalf("unexpected format: %s", got)
	}
	if got := FormatDuration(10 * time.Second); got != "0m" {
		t.Fatalf("unexpected format: %s", got)
	}
}
