package ingest

import (
	"math"
	"testing"
	"time"

	"kharcha/internal/core"
)

func f(v float64) *float64 { return &v }

func TestCanonicalAmountFallback(t *testing.T) {
	cases := []struct {
		name string
		raw  RawRecord
		want float64
	}{
		{"amountBase wins", RawRecord{AmountBase: f(120), Amount: f(99)}, 120},
		{"legacy amount", RawRecord{Amount: f(99)}, 99},
		{"neither set", RawRecord{}, 0},
	}
	for _, tc := range cases {
		if got := Canonical(tc.raw).AmountBase; got != tc.want {
			t.Errorf("%s: AmountBase = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestCanonicalDefaults(t *testing.T) {
	rec := Canonical(RawRecord{
		ID:               "e1",
		Title:            "  chai  ",
		AmountBase:       f(20),
		Category:         "snacks",
		CreatedAtSeconds: 1735689600, // 2025-01-01T00:00:00Z
		OwnerID:          "u1",
	})
	if rec.Title != "chai" {
		t.Errorf("title = %q", rec.Title)
	}
	if rec.Category != core.Others {
		t.Errorf("unknown category should map to Others, got %s", rec.Category)
	}
	if rec.OriginalCurrency != "INR" {
		t.Errorf("original currency defaults to base, got %q", rec.OriginalCurrency)
	}
	if rec.OriginalAmount != 20 {
		t.Errorf("original amount defaults to base amount, got %v", rec.OriginalAmount)
	}
	if rec.CreatedAt.Year() != 2025 || rec.CreatedAt.Month() != 1 {
		t.Errorf("createdAt = %v", rec.CreatedAt)
	}
}

func TestFromParsed(t *testing.T) {
	now := time.Date(2025, 8, 30, 12, 0, 0, 0, time.UTC)
	rec, err := FromParsed(ParsedExpense{
		Title:         "uber to office",
		Amount:        12,
		Currency:      "usd",
		Category:      "Transport",
		PaymentMethod: "gpay",
	}, "u1", now)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Category != core.Transport {
		t.Errorf("category = %s", rec.Category)
	}
	if rec.PaymentMethod != core.PaymentUPI {
		t.Errorf("payment method = %s", rec.PaymentMethod)
	}
	if rec.Date != "2025-08-30" {
		t.Errorf("missing date should default to today, got %q", rec.Date)
	}
	// 12 USD at rate 0.012 is 1000 base units.
	if math.Abs(rec.AmountBase-1000) > 1e-6 {
		t.Errorf("AmountBase = %v, want 1000", rec.AmountBase)
	}
	if rec.OriginalAmount != 12 || rec.OriginalCurrency != "USD" {
		t.Errorf("audit fields lost: %+v", rec)
	}
}

func TestFromParsedRejectsBadAmount(t *testing.T) {
	_, err := FromParsed(ParsedExpense{Title: "x", Amount: 0}, "u1", time.Now())
	if err == nil {
		t.Fatal("zero amount should be rejected")
	}
}

func TestNotificationToggleMigration(t *testing.T) {
	cases := []struct {
		name                     string
		raw                      map[string]bool
		wantReminder, wantBudget bool
	}{
		{"new keys", map[string]bool{"dailyExpenseReminder": true, "monthlyBudgetAlert": true}, true, true},
		{"legacy keys", map[string]bool{"dailyReminders": true, "budgetAlerts": true}, true, true},
		{"new keys win", map[string]bool{"dailyExpenseReminder": false, "dailyReminders": true}, false, false},
		{"empty", map[string]bool{}, false, false},
	}
	for _, tc := range cases {
		r, b := NotificationToggles(tc.raw)
		if r != tc.wantReminder || b != tc.wantBudget {
			t.Errorf("%s: got (%v, %v), want (%v, %v)", tc.name, r, b, tc.wantReminder, tc.wantBudget)
		}
	}
}
