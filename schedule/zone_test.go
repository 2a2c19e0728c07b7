package schedule_test

import (
	"testing"
	"time"

	"github.com/warp/shift-engine/schedule"
)

// =============================================================================
// ZONE RESOLUTION
// =============================================================================

func TestToUTC_OffsetResolvedPerDate(t *testing.T) {
	// GIVEN: Identical 07:00 local readings on opposite sides of the
	//        US daylight-saving year in Chicago
	springSide, err := schedule.ToUTC(schedule.MustDate("2024-03-10"), schedule.MustClock("07:00"), "America/Chicago")
	if err != nil {
		t.Fatalf("ToUTC failed: %v", err)
	}
	fallSide, err := schedule.ToUTC(schedule.MustDate("2024-11-03"), schedule.MustClock("07:00"), "America/Chicago")
	if err != nil {
		t.Fatalf("ToUTC failed: %v", err)
	}

	// THEN: The UTC offsets differ by exactly one hour
	// 2024-03-10 07:00 CDT = 12:00 UTC (-05:00, DST starts 02:00 that morning)
	// 2024-11-03 07:00 CST = 13:00 UTC (-06:00, DST ends 02:00 that morning)
	if springSide.Hour() != 12 {
		t.Errorf("2024-03-10 07:00 Chicago should be 12:00 UTC, got %02d:00", springSide.Hour())
	}
	if fallSide.Hour() != 13 {
		t.Errorf("2024-11-03 07:00 Chicago should be 13:00 UTC, got %02d:00", fallSide.Hour())
	}
}

func TestToUTC_UnknownZone(t *testing.T) {
	_, err := schedule.ToUTC(schedule.MustDate("2024-01-01"), schedule.MustClock("09:00"), "Mars/Olympus_Mons")
	if err == nil {
		t.Fatal("expected error for unknown zone")
	}
	if !schedule.IsValidation(err) {
		t.Errorf("unknown zone should classify as validation, got %v", err)
	}
}

func TestToLocalDisplay_RoundTrip(t *testing.T) {
	// GIVEN: A spread of dates and clock readings outside spring-forward gaps
	cases := []struct{ date, clock, zone string }{
		{"2024-01-15", "07:00", "America/Chicago"},
		{"2024-06-15", "19:30", "America/Chicago"},
		{"2024-03-10", "07:00", "America/Chicago"}, // after the gap that morning
		{"2024-11-03", "00:30", "America/Chicago"}, // before the fall-back hour
		{"2024-07-01", "23:59", "Asia/Tokyo"},
		{"2024-02-29", "00:00", "UTC"},
	}
	for _, c := range cases {
		instant, err := schedule.ToUTC(schedule.MustDate(c.date), schedule.MustClock(c.clock), c.zone)
		if err != nil {
			t.Fatalf("ToUTC(%s %s %s) failed: %v", c.date, c.clock, c.zone, err)
		}
		reading, err := schedule.ToLocalDisplay(instant, c.zone)
		if err != nil {
			t.Fatalf("ToLocalDisplay failed: %v", err)
		}
		if reading.Date.String() != c.date || reading.Time.String() != c.clock {
			t.Errorf("round trip (%s %s %s) came back as %s %s", c.date, c.clock, c.zone, reading.Date, reading.Time)
		}
	}
}

func TestToUTC_FallBackPicksFirstOccurrence(t *testing.T) {
	// GIVEN: 01:30 on 2024-11-03 in Chicago, which occurs twice
	instant, err := schedule.ToUTC(schedule.MustDate("2024-11-03"), schedule.MustClock("01:30"), "America/Chicago")
	if err != nil {
		t.Fatalf("ToUTC failed: %v", err)
	}
	// THEN: The first occurrence (still CDT, -05:00) is chosen: 06:30 UTC
	if instant.Hour() != 6 || instant.Minute() != 30 {
		t.Errorf("ambiguous 01:30 should resolve to 06:30 UTC (first occurrence), got %02d:%02d", instant.Hour(), instant.Minute())
	}
}

// =============================================================================
// INTERVAL OVERLAP
// =============================================================================

func TestOverlaps(t *testing.T) {
	at := func(h int) time.Time { return time.Date(2024, 1, 1, h, 0, 0, 0, time.UTC) }

	cases := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd     time.Time
		want                           bool
	}{
		{"disjoint", at(1), at(2), at(3), at(4), false},
		{"touching do not overlap", at(1), at(2), at(2), at(3), false},
		{"partial", at(1), at(3), at(2), at(4), true},
		{"contained", at(1), at(4), at(2), at(3), true},
		{"identical", at(1), at(2), at(1), at(2), true},
		{"zero-length never overlaps", at(2), at(2), at(1), at(3), false},
		{"two zero-length at same instant", at(2), at(2), at(2), at(2), false},
	}
	for _, c := range cases {
		got := schedule.Overlaps(c.aStart, c.aEnd, c.bStart, c.bEnd)
		if got != c.want {
			t.Errorf("%s: Overlaps = %v, want %v", c.name, got, c.want)
		}
		// Symmetry holds for every combination
		if got != schedule.Overlaps(c.bStart, c.bEnd, c.aStart, c.aEnd) {
			t.Errorf("%s: Overlaps is not symmetric", c.name)
		}
	}
}
