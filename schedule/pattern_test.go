package schedule_test

import (
	"testing"

	"github.com/warp/shift-engine/schedule"
)

func fullWeekEntries() []schedule.PatternEntry {
	entries := make([]schedule.PatternEntry, 7)
	for i := range entries {
		entries[i] = schedule.PatternEntry{Weekday: i}
	}
	entries[1] = schedule.PatternEntry{Weekday: 1, Enabled: true, Start: "07:00", End: "19:00"}
	return entries
}

func TestBuildPattern_Valid(t *testing.T) {
	pattern, err := schedule.BuildPattern(fullWeekEntries())
	if err != nil {
		t.Fatalf("BuildPattern failed: %v", err)
	}
	if pattern.EnabledCount() != 1 {
		t.Errorf("expected 1 enabled day, got %d", pattern.EnabledCount())
	}
	if !pattern[1].Enabled || pattern[1].Start.String() != "07:00" {
		t.Errorf("Monday window not preserved: %+v", pattern[1])
	}
}

func TestBuildPattern_RejectsMissingWeekday(t *testing.T) {
	entries := fullWeekEntries()[:6]
	if _, err := schedule.BuildPattern(entries); err == nil {
		t.Error("6 entries should be rejected")
	}
}

func TestBuildPattern_RejectsDuplicateWeekday(t *testing.T) {
	entries := fullWeekEntries()
	entries[6].Weekday = 0 // Sunday twice, Saturday missing
	if _, err := schedule.BuildPattern(entries); err == nil {
		t.Error("duplicate weekday should be rejected")
	}
}

func TestBuildPattern_RejectsBadClockOnEnabledDay(t *testing.T) {
	entries := fullWeekEntries()
	entries[1].End = "25:00"
	if _, err := schedule.BuildPattern(entries); err == nil {
		t.Error("malformed clock on an enabled day should be rejected")
	}
}

func TestBuildPattern_IgnoresClocksOnDisabledDays(t *testing.T) {
	// Disabled slots carry no window; their clock strings are not parsed.
	entries := fullWeekEntries()
	entries[2].Start = "not-a-clock"
	if _, err := schedule.BuildPattern(entries); err != nil {
		t.Errorf("disabled day's clock strings should be ignored, got %v", err)
	}
}

func TestEntries_RoundTrip(t *testing.T) {
	pattern, err := schedule.BuildPattern(fullWeekEntries())
	if err != nil {
		t.Fatal(err)
	}
	back, err := schedule.BuildPattern(pattern.Entries())
	if err != nil {
		t.Fatalf("re-building from Entries failed: %v", err)
	}
	if back != pattern {
		t.Errorf("pattern did not round-trip: %+v vs %+v", back, pattern)
	}
}
