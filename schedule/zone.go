package schedule

import (
	"time"
)

// =============================================================================
// ZONE CONVERSION - Local wall clock <-> absolute instant
// =============================================================================

// loadZone resolves an IANA zone identifier. Resolution happens on every
// conversion so the offset is always computed for the specific calendar
// date, never from a cached global offset.
func loadZone(zone string) (*time.Location, error) {
	if zone == "" {
		return nil, &UnknownZoneError{Zone: zone}
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, &UnknownZoneError{Zone: zone}
	}
	return loc, nil
}

// ToUTC interprets a wall-clock reading as occurring in zone on the given
// calendar date and returns the absolute instant. During a fall-back
// transition, when the reading occurs twice, the first occurrence wins.
func ToUTC(d Date, c ClockTime, zone string) (time.Time, error) {
	loc, err := loadZone(zone)
	if err != nil {
		return time.Time{}, err
	}
	local := time.Date(d.Year(), d.Month(), d.Day(), c.Hour, c.Minute, 0, 0, loc)
	return local.UTC(), nil
}

// LocalReading is the presentation form of an instant in some zone.
type LocalReading struct {
	Date Date
	Time ClockTime
}

// ToLocalDisplay is the inverse of ToUTC. It round-trips with ToUTC for
// any instant whose wall-clock reading is not inside a spring-forward gap.
func ToLocalDisplay(instant time.Time, zone string) (LocalReading, error) {
	loc, err := loadZone(zone)
	if err != nil {
		return LocalReading{}, err
	}
	lt := instant.In(loc)
	return LocalReading{
		Date: NewDate(lt.Year(), lt.Month(), lt.Day()),
		Time: ClockTime{Hour: lt.Hour(), Minute: lt.Minute()},
	}, nil
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
// Half-open semantics: touching intervals do not overlap, and a
// zero-length interval never overlaps anything.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	if !aStart.Before(aEnd) || !bStart.Before(bEnd) {
		return false
	}
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
