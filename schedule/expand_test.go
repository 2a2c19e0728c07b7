package schedule_test

import (
	"errors"
	"testing"
	"time"

	"github.com/warp/shift-engine/schedule"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func patternOn(days map[time.Weekday][2]string) schedule.WeeklyPattern {
	var p schedule.WeeklyPattern
	for wd, window := range days {
		p[int(wd)] = schedule.DayWindow{
			Enabled: true,
			Start:   schedule.MustClock(window[0]),
			End:     schedule.MustClock(window[1]),
		}
	}
	return p
}

func mwf(start, end string) schedule.WeeklyPattern {
	return patternOn(map[time.Weekday][2]string{
		time.Monday:    {start, end},
		time.Wednesday: {start, end},
		time.Friday:    {start, end},
	})
}

// =============================================================================
// EXPANSION
// =============================================================================

func TestExpand_TwoWeekMWF(t *testing.T) {
	// GIVEN: A 2-week range with Monday/Wednesday/Friday 07:00-19:00
	slots, err := schedule.Expand(
		schedule.MustDate("2024-01-01"), schedule.MustDate("2024-01-14"),
		mwf("07:00", "19:00"), "America/Chicago")
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}

	// THEN: Exactly 6 occurrences, ordered by date
	if len(slots) != 6 {
		t.Fatalf("expected 6 slots, got %d", len(slots))
	}
	wantDates := []string{"2024-01-01", "2024-01-03", "2024-01-05", "2024-01-08", "2024-01-10", "2024-01-12"}
	for i, slot := range slots {
		if slot.LocalDate.String() != wantDates[i] {
			t.Errorf("slot %d on %s, want %s", i, slot.LocalDate, wantDates[i])
		}
		if !slot.StartUTC.Before(slot.EndUTC) {
			t.Errorf("slot %d has StartUTC >= EndUTC", i)
		}
	}
}

func TestExpand_CountMatchesEnabledDates(t *testing.T) {
	// Property: slot count equals the count of in-range dates whose
	// weekday is enabled, with no off-by-one at either boundary.
	ranges := [][2]string{
		{"2024-01-01", "2024-01-01"},
		{"2024-01-01", "2024-01-07"},
		{"2024-01-03", "2024-01-17"},
		{"2023-12-25", "2024-02-29"},
	}
	patterns := []schedule.WeeklyPattern{
		patternOn(map[time.Weekday][2]string{time.Sunday: {"08:00", "16:00"}}),
		mwf("07:00", "19:00"),
		patternOn(map[time.Weekday][2]string{
			time.Saturday: {"10:00", "14:00"},
			time.Sunday:   {"10:00", "14:00"},
		}),
	}

	for _, r := range ranges {
		start, end := schedule.MustDate(r[0]), schedule.MustDate(r[1])
		for _, p := range patterns {
			want := 0
			for d := start; !d.After(end); d = d.AddDays(1) {
				if p.Window(d.Weekday()).Enabled {
					want++
				}
			}
			slots, err := schedule.Expand(start, end, p, "UTC")
			if err != nil {
				t.Fatalf("Expand(%s..%s) failed: %v", start, end, err)
			}
			if len(slots) != want {
				t.Errorf("Expand(%s..%s) produced %d slots, want %d", start, end, len(slots), want)
			}
		}
	}
}

func TestExpand_OvernightEndsNextDay(t *testing.T) {
	// GIVEN: A 2-week Monday-only 19:00-07:00 overnight pattern
	slots, err := schedule.Expand(
		schedule.MustDate("2024-01-01"), schedule.MustDate("2024-01-14"),
		patternOn(map[time.Weekday][2]string{time.Monday: {"19:00", "07:00"}}),
		"America/Chicago")
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}

	// THEN: 2 occurrences, each ending on the local day after its start
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}
	for _, slot := range slots {
		startLocal, err := schedule.ToLocalDisplay(slot.StartUTC, "America/Chicago")
		if err != nil {
			t.Fatal(err)
		}
		endLocal, err := schedule.ToLocalDisplay(slot.EndUTC, "America/Chicago")
		if err != nil {
			t.Fatal(err)
		}
		if !endLocal.Date.Equal(startLocal.Date.AddDays(1)) {
			t.Errorf("slot on %s should end the next local day, ended %s", startLocal.Date, endLocal.Date)
		}
		if !slot.StartUTC.Before(slot.EndUTC) {
			t.Errorf("overnight slot on %s has StartUTC >= EndUTC", slot.LocalDate)
		}
	}
}

func TestExpand_DSTTransitionMidRange(t *testing.T) {
	// GIVEN: A Sunday-only pattern straddling the 2024-03-10 spring forward
	slots, err := schedule.Expand(
		schedule.MustDate("2024-03-03"), schedule.MustDate("2024-03-10"),
		patternOn(map[time.Weekday][2]string{time.Sunday: {"07:00", "19:00"}}),
		"America/Chicago")
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}

	// THEN: Same local clock, offsets one hour apart
	// 2024-03-03 07:00 CST = 13:00 UTC; 2024-03-10 07:00 CDT = 12:00 UTC
	if slots[0].StartUTC.Hour() != 13 {
		t.Errorf("pre-transition start should be 13:00 UTC, got %02d:00", slots[0].StartUTC.Hour())
	}
	if slots[1].StartUTC.Hour() != 12 {
		t.Errorf("post-transition start should be 12:00 UTC, got %02d:00", slots[1].StartUTC.Hour())
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestExpand_InvertedRange(t *testing.T) {
	_, err := schedule.Expand(
		schedule.MustDate("2024-01-14"), schedule.MustDate("2024-01-01"),
		mwf("07:00", "19:00"), "UTC")
	if !errors.Is(err, schedule.ErrInvalidDateRange) {
		t.Errorf("expected ErrInvalidDateRange, got %v", err)
	}
}

func TestExpand_NoEnabledDays(t *testing.T) {
	var empty schedule.WeeklyPattern
	_, err := schedule.Expand(
		schedule.MustDate("2024-01-01"), schedule.MustDate("2024-01-14"),
		empty, "UTC")
	if !errors.Is(err, schedule.ErrNoEnabledDays) {
		t.Errorf("expected ErrNoEnabledDays, got %v", err)
	}
}

func TestExpand_RangeTooLarge(t *testing.T) {
	_, err := schedule.Expand(
		schedule.MustDate("2020-01-01"), schedule.MustDate("2030-01-01"),
		mwf("07:00", "19:00"), "UTC")
	if !errors.Is(err, schedule.ErrRangeTooLarge) {
		t.Errorf("expected ErrRangeTooLarge, got %v", err)
	}
}

func TestExpand_UnknownZone(t *testing.T) {
	_, err := schedule.Expand(
		schedule.MustDate("2024-01-01"), schedule.MustDate("2024-01-14"),
		mwf("07:00", "19:00"), "Not/AZone")
	if !errors.Is(err, schedule.ErrUnknownZone) {
		t.Errorf("expected ErrUnknownZone, got %v", err)
	}
}
