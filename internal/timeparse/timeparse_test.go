package timeparse

import (
	"errors"
	"strings"
	"testing"
	"time"
)

// Fixed reference: Wednesday 2026-03-04 15:00 local.
func refTime(loc *time.Location) time.Time {
	return time.Date(2026, 3, 4, 15, 0, 0, 0, loc)
}

func TestParseAt_TomorrowMorning_Kuwait(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kuwait")
	if err != nil {
		t.Fatalf("LoadLocation failed: %v", err)
	}

	dt, err := ParseAt("tomorrow 10am", loc, refTime(loc))
	if err != nil {
		t.Fatalf("ParseAt failed: %v", err)
	}

	iso := ToUTCISO(dt)
	if !strings.HasSuffix(iso, "Z") {
		t.Errorf("Expected Z suffix, got %q", iso)
	}
	// Kuwait is UTC+3, so 10:00 local is 07:00Z.
	if iso != "2026-03-05T07:00:00Z" {
		t.Errorf("Expected 2026-03-05T07:00:00Z, got %q", iso)
	}
}

func TestParseAt_Expressions(t *testing.T) {
	loc := time.UTC
	ref := refTime(loc)

	tests := []struct {
		text string
		want time.Time
	}{
		{"Friday 9:30", time.Date(2026, 3, 6, 9, 30, 0, 0, loc)},
		{"friday 9:30pm", time.Date(2026, 3, 6, 21, 30, 0, 0, loc)},
		{"today", time.Date(2026, 3, 4, 0, 0, 0, 0, loc)},
		{"next week", time.Date(2026, 3, 11, 0, 0, 0, 0, loc)},
		{"2026-12-01", time.Date(2026, 12, 1, 0, 0, 0, 0, loc)},
		{"3/15", time.Date(2026, 3, 15, 0, 0, 0, 0, loc)},
		{"march 15", time.Date(2026, 3, 15, 0, 0, 0, 0, loc)},
		{"call at noon", time.Date(2026, 3, 4, 12, 0, 0, 0, loc)},
		{"12am tomorrow", time.Date(2026, 3, 5, 0, 0, 0, 0, loc)},
		// Wednesday reference: "wednesday" resolves to the same day.
		{"wednesday", time.Date(2026, 3, 4, 0, 0, 0, 0, loc)},
		{"next wednesday", time.Date(2026, 3, 11, 0, 0, 0, 0, loc)},
	}
	for _, tc := range tests {
		got, err := ParseAt(tc.text, loc, ref)
		if err != nil {
			t.Errorf("ParseAt(%q) failed: %v", tc.text, err)
			continue
		}
		if !got.Equal(tc.want) {
			t.Errorf("ParseAt(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestParseAt_NoSignal(t *testing.T) {
	for _, text := range []string{"buy milk", "the Rise email", ""} {
		_, err := ParseAt(text, time.UTC, refTime(time.UTC))
		if !errors.Is(err, ErrNoTimeSignal) {
			t.Errorf("ParseAt(%q): expected ErrNoTimeSignal, got %v", text, err)
		}
	}
}

func TestToUTCISO_Format(t *testing.T) {
	loc := time.FixedZone("plus3", 3*3600)
	dt := time.Date(2026, 1, 2, 10, 30, 45, 987654321, loc)

	iso := ToUTCISO(dt)
	if iso != "2026-01-02T07:30:45Z" {
		t.Errorf("Expected 2026-01-02T07:30:45Z, got %q", iso)
	}
	if strings.Contains(iso, "+") {
		t.Errorf("Expected no numeric offset, got %q", iso)
	}
}

func TestRoundTrip(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kuwait")
	if err != nil {
		t.Fatalf("LoadLocation failed: %v", err)
	}

	for _, text := range []string{"tomorrow 10am", "Friday 9:30", "2026-06-01 8pm"} {
		dt, err := ParseAt(text, loc, refTime(loc))
		if err != nil {
			t.Fatalf("ParseAt(%q) failed: %v", text, err)
		}
		iso := ToUTCISO(dt)
		back, err := time.Parse(time.RFC3339, iso)
		if err != nil {
			t.Fatalf("re-parse of %q failed: %v", iso, err)
		}
		if !back.Equal(dt) {
			t.Errorf("round-trip of %q: got %v, want %v", text, back, dt)
		}
	}
}
