// Package ingest canonicalizes the record shapes arriving from storage, user
// input and the AI parsing service into the single shape the core consumes.
// All backward-compatible field fallbacks live here, executed once at the
// boundary, so the aggregation engine only ever sees canonical records.
package ingest

import (
	"fmt"
	"strings"
	"time"

	"kharcha/internal/core"
	"kharcha/internal/currency"
)

// RawRecord mirrors a stored document before canonicalization. Legacy rows
// may carry the amount under Amount instead of AmountBase, a DD-MM-YYYY date
// string and an epoch-seconds creation time.
type RawRecord struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	AmountBase       *float64 `json:"amountBase"`
	Amount           *float64 `json:"amount"` // legacy field, already base currency
	OriginalAmount   float64  `json:"originalAmount"`
	OriginalCurrency string   `json:"originalCurrency"`
	Category         string   `json:"category"`
	PaymentMethod    string   `json:"paymentMethod"`
	Date             string   `json:"date"`
	CreatedAtSeconds int64    `json:"createdAt"`
	OwnerID          string   `json:"-"`
}

// ParsedExpense is the structured payload the external language model claims
// to have extracted from free text. It gets no special trust: the same enum
// validation and normalization as manual entry applies.
type ParsedExpense struct {
	Title         string  `json:"title"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	Category      string  `json:"category"`
	Date          string  `json:"date"`
	PaymentMethod string  `json:"paymentMethod"`
}

// Canonical converts a raw stored row into the canonical record shape.
// Amount fallback order: amountBase, then the legacy amount field, then 0.
func Canonical(raw RawRecord) core.ExpenseRecord {
	var amount float64
	switch {
	case raw.AmountBase != nil:
		amount = *raw.AmountBase
	case raw.Amount != nil:
		amount = *raw.Amount
	}

	var createdAt time.Time
	if raw.CreatedAtSeconds > 0 {
		createdAt = time.Unix(raw.CreatedAtSeconds, 0).UTC()
	}

	origCurrency := strings.ToUpper(strings.TrimSpace(raw.OriginalCurrency))
	if origCurrency == "" {
		origCurrency = string(currency.Base)
	}
	origAmount := raw.OriginalAmount
	if origAmount == 0 {
		origAmount = amount
	}

	return core.ExpenseRecord{
		ID:               raw.ID,
		Title:            strings.TrimSpace(raw.Title),
		AmountBase:       amount,
		OriginalAmount:   origAmount,
		OriginalCurrency: origCurrency,
		Category:         core.ParseCategory(raw.Category),
		PaymentMethod:    raw.PaymentMethod,
		Date:             strings.TrimSpace(raw.Date),
		CreatedAt:        createdAt,
		OwnerID:          raw.OwnerID,
	}
}

// FromParsed builds a new record from an AI-parsed payload for an owner.
// The amount is converted to base once, here; missing dates default to today.
func FromParsed(p ParsedExpense, ownerID string, now time.Time) (core.ExpenseRecord, error) {
	if p.Amount <= 0 {
		return core.ExpenseRecord{}, fmt.Errorf("parsed amount %v: %w", p.Amount, core.ErrInvalidAmount)
	}

	code := currency.Code(strings.ToUpper(strings.TrimSpace(p.Currency)))
	if code == "" {
		code = currency.Base
	}
	date := strings.TrimSpace(p.Date)
	if date == "" {
		date = now.Format("2006-01-02")
	}

	rec := core.ExpenseRecord{
		Title:            strings.TrimSpace(p.Title),
		AmountBase:       currency.ToBase(p.Amount, code),
		OriginalAmount:   p.Amount,
		OriginalCurrency: string(code),
		Category:         core.ParseCategory(p.Category),
		PaymentMethod:    core.NormalizePaymentMethod(p.PaymentMethod),
		Date:             date,
		CreatedAt:        now,
		OwnerID:          ownerID,
	}
	if err := rec.Validate(); err != nil {
		return core.ExpenseRecord{}, err
	}
	return rec, nil
}

// NotificationToggles migrates legacy notification keys onto the current
// names. The migration is a read-time normalization: new keys win when both
// are present.
func NotificationToggles(raw map[string]bool) (dailyReminder, budgetAlert bool) {
	if v, ok := raw["dailyExpenseReminder"]; ok {
		dailyReminder = v
	} else {
		dailyReminder = raw["dailyReminders"]
	}
	if v, ok := raw["monthlyBudgetAlert"]; ok {
		budgetAlert = v
	} else {
		budgetAlert = raw["budgetAlerts"]
	}
	return dailyReminder, budgetAlert
}
