package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Food          Category = "Food"
	Transport     Category = "Transport"
	Shopping      Category = "Shopping"
	Bills         Category = "Bills"
	Entertainment Category = "Entertainment"
	Others        Category = "Others"
)

type (
	Category string

	// ExpenseRecord is the canonical expense shape. AmountBase is fixed at
	// write time in the base currency and never recomputed from the display
	// currency.
	ExpenseRecord struct {
		ID               string
		Title            string
		AmountBase       float64
		OriginalAmount   float64
		OriginalCurrency string
		Category         Category
		PaymentMethod    string
		Date             string // YYYY-MM-DD, may be empty or malformed on legacy rows
		CreatedAt        time.Time
		OwnerID          string
	}

	// Preferences holds per-user settings. MonthlyBudget is expressed in the
	// base currency; PreferredCurrency only affects display.
	Preferences struct {
		MonthlyBudget        float64
		PreferredCurrency    string
		DailyExpenseReminder bool
		MonthlyBudgetAlert   bool
	}

	// UserContext carries everything an aggregation call needs about the
	// caller. Passed explicitly so the computation stays free of globals.
	UserContext struct {
		OwnerID     string
		Preferences Preferences
	}
)

var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrEmptyTitle     = errors.New("empty title")
	ErrEmptyOwner     = errors.New("empty owner id")
	ErrBudgetExceeded = errors.New("monthly budget exceeded")
	ErrNotFound       = errors.New("expense not found")
)

var categories = map[Category]struct{}{
	Food: {}, Transport: {}, Shopping: {}, Bills: {}, Entertainment: {}, Others: {},
}

// ParseCategory maps free-form input (manual entry or AI-parsed) onto the
// fixed category set. Anything unrecognized becomes Others.
func ParseCategory(s string) Category {
	c := Category(strings.TrimSpace(s))
	if _, ok := categories[c]; ok {
		return c
	}
	for known := range categories {
		if strings.EqualFold(string(known), string(c)) {
			return known
		}
	}
	return Others
}

// Categories returns the fixed category set in display order.
func Categories() []Category {
	return []Category{Food, Transport, Shopping, Bills, Entertainment, Others}
}

func (e ExpenseRecord) Validate() error {
	if strings.TrimSpace(e.OwnerID) == "" {
		return ErrEmptyOwner
	}
	if len(strings.TrimSpace(e.Title)) == 0 {
		return ErrEmptyTitle
	}
	if len(e.Title) > 200 {
		return errors.New("title too long (max 200 characters)")
	}
	if e.AmountBase <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// DefaultPreferences is what an owner gets before saving anything: no
// budget, base currency display, all notifications off.
func DefaultPreferences() Preferences {
	return Preferences{PreferredCurrency: "INR"}
}

func (p Preferences) Validate() error {
	if p.MonthlyBudget < 0 {
		return errors.New("monthly budget cannot be negative")
	}
	return nil
}

// Merge applies the set fields of other onto p, matching the partial update
// semantics of the preference store: unspecified fields are preserved.
// Boolean toggles are taken from other only when the matching set flag is true.
func (p Preferences) Merge(other Preferences, setReminder, setAlert bool) Preferences {
	out := p
	if other.MonthlyBudget > 0 {
		out.MonthlyBudget = other.MonthlyBudget
	}
	if strings.TrimSpace(other.PreferredCurrency) != "" {
		out.PreferredCurrency = other.PreferredCurrency
	}
	if setReminder {
		out.DailyExpenseReminder = other.DailyExpenseReminder
	}
	if setAlert {
		out.MonthlyBudgetAlert = other.MonthlyBudgetAlert
	}
	return out
}
