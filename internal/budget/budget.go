// Package budget derives usage, pace and health signals from a month's
// spending against the user's budget ceiling. All functions are pure;
// zero denominators yield sentinels instead of faults.
package budget

import "math"

const (
	HealthGood    Health = "Good"
	HealthOkay    Health = "Okay"
	HealthRisky   Health = "Risky"
	HealthUnknown Health = "Unknown"
)

const (
	PaceUnder Pace = "under"
	PaceOn    Pace = "on"
	PaceOver  Pace = "over"
)

// Usage thresholds are fixed constants, a deliberate simplification that
// consumers may parameterize later.
const (
	healthOkayPercent  = 60
	healthRiskyPercent = 85
	warnPercent        = 80

	paceOnUpper = 1.2
)

type (
	Health string
	Pace   string

	// Input is everything the monitor needs for one evaluation. Spent and
	// MonthlyBudget are base currency amounts; the day counts come from the
	// period package.
	Input struct {
		Spent         float64
		MonthlyBudget float64
		ElapsedDays   int
		DaysInMonth   int
		DaysLeft      int
	}
)

// UsagePercent is round(spent/budget*100). A missing budget means no usage
// signal, so budget <= 0 yields 0 rather than a division fault.
func UsagePercent(spent, monthlyBudget float64) int {
	if monthlyBudget <= 0 {
		return 0
	}
	return int(math.Round(spent / monthlyBudget * 100))
}

// HealthOf maps usage onto the qualitative label. No budget set gives
// Unknown, not Good.
func HealthOf(spent, monthlyBudget float64) Health {
	if monthlyBudget <= 0 {
		return HealthUnknown
	}
	percent := spent / monthlyBudget * 100
	switch {
	case percent < healthOkayPercent:
		return HealthGood
	case percent < healthRiskyPercent:
		return HealthOkay
	default:
		return HealthRisky
	}
}

// Velocity is the ratio of the actual daily burn rate to the ideal daily
// burn rate implied by the budget. It is undefined (ok false) when no day
// has elapsed or no budget is set; callers must suppress display instead of
// computing.
func Velocity(in Input) (v float64, ok bool) {
	if in.ElapsedDays <= 0 || in.MonthlyBudget <= 0 || in.DaysInMonth <= 0 {
		return 0, false
	}
	idealPerDay := in.MonthlyBudget / float64(in.DaysInMonth)
	actualPerDay := in.Spent / float64(in.ElapsedDays)
	return actualPerDay / idealPerDay, true
}

// PaceOf tiers a velocity value: under 1 is under-pace, up to 1.2 on-pace,
// beyond that overspending pace.
func PaceOf(v float64) Pace {
	switch {
	case v < 1:
		return PaceUnder
	case v <= paceOnUpper:
		return PaceOn
	default:
		return PaceOver
	}
}

// ShouldWarn reports whether the budget alert threshold is crossed. This is
// a pure signal; delivery policy belongs to the notify package.
func ShouldWarn(spent, monthlyBudget float64) bool {
	if monthlyBudget <= 0 {
		return false
	}
	return spent/monthlyBudget >= float64(warnPercent)/100
}

// SafeToSpendToday is the whole-unit amount that keeps the rest of the month
// within budget: max(floor((budget-spent)/daysLeft), 0). No days left means
// nothing is safe to spend.
func SafeToSpendToday(in Input) float64 {
	if in.DaysLeft <= 0 {
		return 0
	}
	return math.Max(math.Floor((in.MonthlyBudget-in.Spent)/float64(in.DaysLeft)), 0)
}
