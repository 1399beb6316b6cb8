package stats

import "math"

const (
	Increased Direction = "Increased"
	Decreased Direction = "Decreased"
	Unchanged Direction = "Unchanged"
)

// Direction describes how the current month relates to the previous one.
type Direction string

// MonthComparison is the month-over-month change. PercentChange is nil when
// the previous month has no spending: there is no baseline, and rendering a
// made-up percentage would mislead.
type MonthComparison struct {
	PercentChange *float64
	Direction     Direction
}

// CompareMonths computes the percentage change from prev to cur, rounded to
// two decimals. prev == 0 yields a nil PercentChange.
func CompareMonths(cur, prev float64) MonthComparison {
	cmp := MonthComparison{Direction: Unchanged}
	switch {
	case cur > prev:
		cmp.Direction = Increased
	case cur < prev:
		cmp.Direction = Decreased
	}
	if prev == 0 {
		return cmp
	}
	pct := round2((cur - prev) / prev * 100)
	cmp.PercentChange = &pct
	return cmp
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
