// Package period resolves the calendar date of an expense record from its
// legacy input shapes and derives the day/week/month keys used for grouping.
package period

import (
	"fmt"
	"time"
)

// Date is a comparable calendar point with day precision.
type Date struct {
	Year  int
	Month int // 1-12
	Day   int
}

// FromTime truncates t to its calendar date.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: int(m), Day: d}
}

// Time returns the date at midnight UTC. Used for day arithmetic only.
func (d Date) Time() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// DayKey returns the YYYY-MM-DD grouping key.
func (d Date) DayKey() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// MonthKey returns the YYYY-MM grouping key.
func (d Date) MonthKey() string {
	return fmt.Sprintf("%04d-%02d", d.Year, d.Month)
}

// WeekKey buckets the date into a week-of-month label (W1..W5).
func (d Date) WeekKey() string {
	return fmt.Sprintf("W%d", (d.Day+6)/7)
}

// Classify resolves a record's calendar date. It tries, in priority order,
// the explicit ISO date string, the legacy DD-MM-YYYY string and finally the
// storage timestamp. The second return is false when nothing parses; callers
// must exclude such records from date-bucketed aggregates rather than fail.
func Classify(dateStr string, createdAt time.Time) (Date, bool) {
	if t, err := time.Parse("2006-01-02", dateStr); err == nil {
		return FromTime(t), true
	}
	if t, err := time.Parse("02-01-2006", dateStr); err == nil {
		return FromTime(t), true
	}
	if !createdAt.IsZero() {
		return FromTime(createdAt), true
	}
	return Date{}, false
}

// PreviousMonth returns the calendar month before (month, year), wrapping
// January back to December of the prior year.
func PreviousMonth(month, year int) (int, int) {
	if month == 1 {
		return 12, year - 1
	}
	return month - 1, year
}

// MonthsBack walks n calendar months back from (month, year).
func MonthsBack(month, year, n int) (int, int) {
	for i := 0; i < n; i++ {
		month, year = PreviousMonth(month, year)
	}
	return month, year
}

// DaysInMonth returns the number of calendar days in the given month.
func DaysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DaysLeftInMonth returns how many days remain after d in its month.
func DaysLeftInMonth(d Date) int {
	return DaysInMonth(d.Year, d.Month) - d.Day
}

// DaysBetweenInclusive counts calendar days from a through b, both ends
// included. Returns 0 when b is before a.
func DaysBetweenInclusive(a, b Date) int {
	days := int(b.Time().Sub(a.Time()).Hours()/24) + 1
	if days < 1 {
		return 0
	}
	return days
}
