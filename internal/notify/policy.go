// Package notify decides when time-sensitive reminders may be delivered.
//
// Each alert kind has its own gate policy. The daily recap is gated to at
// most once per calendar day after an evening cutoff; the budget alert fires
// every time its condition holds. That asymmetry comes from the observed
// product behavior and is kept as the default, but the registry lets callers
// swap in a different policy per alert kind.
package notify

import (
	"fmt"
	"time"
)

const (
	DailyReminder AlertKind = "daily_reminder"
	BudgetAlert   AlertKind = "budget_alert"
)

// DailyReminderCutoffHour is the local hour from which the end-of-day recap
// may fire.
const DailyReminderCutoffHour = 20

type (
	AlertKind string

	// GatePolicy decides whether an alert may fire now, given the day key of
	// its last delivery (empty when never delivered).
	GatePolicy interface {
		ShouldFire(now time.Time, lastShownDay string) bool
	}
)

// OncePerDayPolicy fires at most once per calendar day, and only from the
// cutoff hour onward. A skipped day simply never fires; there is no backlog.
type OncePerDayPolicy struct {
	CutoffHour int
}

func (p OncePerDayPolicy) ShouldFire(now time.Time, lastShownDay string) bool {
	if now.Hour() < p.CutoffHour {
		return false
	}
	return now.Format("2006-01-02") != lastShownDay
}

// AlwaysPolicy fires whenever the alert condition holds, ignoring delivery
// history.
type AlwaysPolicy struct{}

func (AlwaysPolicy) ShouldFire(time.Time, string) bool { return true }

var gatePolicies = map[AlertKind]GatePolicy{
	DailyReminder: OncePerDayPolicy{CutoffHour: DailyReminderCutoffHour},
	BudgetAlert:   AlwaysPolicy{},
}

// PolicyFor returns the gate policy registered for an alert kind.
func PolicyFor(kind AlertKind) (GatePolicy, error) {
	p, ok := gatePolicies[kind]
	if !ok {
		return nil, fmt.Errorf("unknown alert kind: %s", kind)
	}
	return p, nil
}

// RegisterPolicy replaces the policy for an alert kind, e.g. to opt the
// budget alert into once-per-day delivery.
func RegisterPolicy(kind AlertKind, p GatePolicy) {
	gatePolicies[kind] = p
}
