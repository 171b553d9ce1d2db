package domain

import (
	"testing"
	"time"
)

func TestParseStatus(t *testing.T) {
	cases := map[string]Status{
		"up":      StatusUp,
		"down":    StatusDown,
		"unknown": StatusUnknown,
		"":        StatusUnknown,
		"UP":      StatusUnknown,
	}
	for in, want := range cases {
		if got := ParseStatus(in); got != want {
			t.Fatalf("ParseStatus(%q)=%q want %q", in, got, want)
		}
	}
}

func TestDowntimeInterval_Duration(t *testing.T) {
	start := time.Date(2025, 8, 18, 12, 0, 0, 0, time.UTC)
	now := start.Add(2 * time.Hour)

	open := DowntimeInterval{StartedAt: start}
	if !open.Open() {
		t.Fatalf("expected interval without end to be open")
	}
	if got := open.Duration(now); got != 2*time.Hour {
		t.Fatalf("open duration: want 2h got %v", got)
	}

	end := start.Add(30 * time.Minute)
	closed := DowntimeInterval{StartedAt: start, EndedAt: &end}
	if closed.Open() {
		t.Fatalf("expected closed interval")
	}
	if got := closed.Duration(now); got != 30*time.Minute {
		t.Fatalf("closed duration: want 30m got %v", got)
	}

	// end before start (clock skew) never yields a negative duration
	skewed := start.Add(-time.Minute)
	bad := DowntimeInterval{StartedAt: start, EndedAt: &skewed}
	if got := bad.Duration(now); got != 0 {
		t.Fatalf("skewed duration: want 0 got %v", got)
	}
}
