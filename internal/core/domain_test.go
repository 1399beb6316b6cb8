package core

import (
	"testing"
	"time"
)

func TestExpenseRecordValidate(t *testing.T) {
	good := ExpenseRecord{
		ID:         "e1",
		Title:      "groceries",
		AmountBase: 500,
		Category:   Food,
		Date:       "2025-08-30",
		CreatedAt:  time.Now(),
		OwnerID:    "u1",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []ExpenseRecord{
		{Title: "a", AmountBase: 1, OwnerID: ""},
		{Title: "", AmountBase: 1, OwnerID: "u1"},
		{Title: "a", AmountBase: 0, OwnerID: "u1"},
		{Title: "a", AmountBase: -5, OwnerID: "u1"},
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseCategory(t *testing.T) {
	cases := []struct {
		in   string
		want Category
	}{
		{"Food", Food},
		{"food", Food},
		{" Transport ", Transport},
		{"Groceries", Others},
		{"", Others},
		{"ENTERTAINMENT", Entertainment},
	}
	for _, tc := range cases {
		if got := ParseCategory(tc.in); got != tc.want {
			t.Errorf("ParseCategory(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestPreferencesMerge(t *testing.T) {
	base := Preferences{
		MonthlyBudget:        10000,
		PreferredCurrency:    "INR",
		DailyExpenseReminder: true,
	}

	// Unset fields must be preserved.
	merged := base.Merge(Preferences{MonthlyBudget: 15000}, false, false)
	if merged.MonthlyBudget != 15000 {
		t.Fatalf("budget = %v, want 15000", merged.MonthlyBudget)
	}
	if merged.PreferredCurrency != "INR" || !merged.DailyExpenseReminder {
		t.Fatalf("unset fields were not preserved: %+v", merged)
	}

	// Toggles only change when explicitly set.
	merged = base.Merge(Preferences{DailyExpenseReminder: false, MonthlyBudgetAlert: true}, true, true)
	if merged.DailyExpenseReminder {
		t.Fatal("reminder should be disabled")
	}
	if !merged.MonthlyBudgetAlert {
		t.Fatal("alert should be enabled")
	}
}
