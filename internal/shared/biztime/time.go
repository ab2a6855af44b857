// Package biztime normalizes all date handling to the business civil calendar.
// The delivery business runs on Indian Standard Time (UTC+5:30, no DST); every
// "same day" comparison in the core goes through CivilDate, never through raw
// instant equality, because stored timestamps may carry arbitrary times of day.
//
// Design principles:
// - All storage and transport use UTC
// - Schedule and overlay comparisons use CivilDate equality only
// - Implicit server-local timezone is prohibited
package biztime

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// TimezoneName is the fixed business timezone. It is not configurable:
// delivery zones, menus and cutoffs are all defined against IST.
const TimezoneName = "Asia/Kolkata"

// DateLayout is the wire format for civil dates.
const DateLayout = "2006-01-02"

// ErrInvalidDateFormat is returned when a date string cannot be parsed.
var ErrInvalidDateFormat = errors.New("invalid date format, expected YYYY-MM-DD")

var (
	bizLocation     *time.Location
	bizLocationOnce sync.Once
)

// Location returns the business timezone location. IST is a fixed-offset zone,
// so a zoneinfo miss falls back to a fixed +05:30 zone instead of failing.
func Location() *time.Location {
	bizLocationOnce.Do(func() {
		loc, err := time.LoadLocation(TimezoneName)
		if err != nil {
			loc = time.FixedZone("IST", 5*3600+30*60)
		}
		bizLocation = loc
	})
	return bizLocation
}

// CivilDate is a calendar day in the business timezone. The zero value is not
// a valid date; use IsZero to detect it.
type CivilDate struct {
	Year  int
	Month time.Month
	Day   int
}

// ToCivilDate converts an instant to the calendar day it falls on in IST.
func ToCivilDate(t time.Time) CivilDate {
	bt := t.In(Location())
	return CivilDate{Year: bt.Year(), Month: bt.Month(), Day: bt.Day()}
}

// ParseCivilDate parses a YYYY-MM-DD string into a CivilDate.
func ParseCivilDate(s string) (CivilDate, error) {
	t, err := time.ParseInLocation(DateLayout, s, Location())
	if err != nil {
		return CivilDate{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, s)
	}
	return CivilDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// Today returns the current calendar day in IST.
func Today() CivilDate {
	return ToCivilDate(time.Now())
}

// NowUTC returns the current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// Time returns midnight of the date in the business timezone.
func (d CivilDate) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, Location())
}

// UTCMidnight returns the instant of IST midnight of this date, in UTC.
// This is the canonical persisted representation of a civil date.
func (d CivilDate) UTCMidnight() time.Time {
	return d.Time().UTC()
}

// AddDays returns the date n calendar days later (or earlier for negative n).
func (d CivilDate) AddDays(n int) CivilDate {
	return ToCivilDate(d.Time().AddDate(0, 0, n))
}

// Weekday returns the day of week of the date.
func (d CivilDate) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// IsSunday reports whether the date falls on a Sunday.
func (d CivilDate) IsSunday() bool {
	return d.Weekday() == time.Sunday
}

// Before reports whether d is strictly earlier than other.
func (d CivilDate) Before(other CivilDate) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// After reports whether d is strictly later than other.
func (d CivilDate) After(other CivilDate) bool {
	return other.Before(d)
}

// Equal reports whether two dates denote the same calendar day.
func (d CivilDate) Equal(other CivilDate) bool {
	return d == other
}

// IsZero reports whether the date is the zero value.
func (d CivilDate) IsZero() bool {
	return d == CivilDate{}
}

// String formats the date as YYYY-MM-DD.
func (d CivilDate) String() string {
	return d.Time().Format(DateLayout)
}

// MarshalJSON encodes the date as "YYYY-MM-DD". Schedules and overlays are
// persisted as JSON documents, so civil dates must survive a round trip.
func (d CivilDate) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON decodes a "YYYY-MM-DD" string.
func (d *CivilDate) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("%w: %s", ErrInvalidDateFormat, s)
	}
	parsed, err := ParseCivilDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DaysBetween returns the signed number of calendar days from a to b.
// DaysBetween(d, d.AddDays(3)) == 3.
func DaysBetween(a, b CivilDate) int {
	return int(b.Time().Sub(a.Time()).Hours() / 24)
}

// SpanDaysInclusive returns the inclusive calendar span covered by [first, last].
// A schedule starting and ending on the same day spans 1 day.
func SpanDaysInclusive(first, last CivilDate) int {
	return DaysBetween(first, last) + 1
}

// StartOfDayUTC returns IST midnight of the day t falls on, in UTC.
// Used for range queries against UTC-stored timestamps.
func StartOfDayUTC(t time.Time) time.Time {
	return ToCivilDate(t).UTCMidnight()
}

// EndOfDayUTC returns the last nanosecond of the IST day t falls on, in UTC.
func EndOfDayUTC(t time.Time) time.Time {
	return ToCivilDate(t).AddDays(1).UTCMidnight().Add(-time.Nanosecond)
}
