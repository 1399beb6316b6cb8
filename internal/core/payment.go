// Package core provides the expense domain model shared by every other
// package: the canonical record shape, the fixed category set, payment
// method normalization and the sentinel errors of the write path.
package core

import "strings"

const (
	PaymentCash   = "Cash"
	PaymentCard   = "Card"
	PaymentUPI    = "UPI"
	PaymentOnline = "Online"
	PaymentOther  = "Other"
)

// NormalizePaymentMethod maps a free-text payment description onto the fixed
// payment method set. The mapping is lossy and idempotent: feeding an already
// normalized value back in returns the same value.
func NormalizePaymentMethod(method string) string {
	m := strings.ToLower(strings.TrimSpace(method))
	if m == "" {
		return PaymentOther
	}

	switch {
	case strings.Contains(m, "cash"):
		return PaymentCash
	case strings.Contains(m, "card"), strings.Contains(m, "debit"), strings.Contains(m, "credit"):
		return PaymentCard
	case strings.Contains(m, "upi"), strings.Contains(m, "gpay"),
		strings.Contains(m, "phonepe"), strings.Contains(m, "paytm"):
		return PaymentUPI
	case strings.Contains(m, "online"), strings.Contains(m, "net"):
		return PaymentOnline
	}
	return PaymentOther
}

// PaymentMethods returns the normalized payment method set in display order.
func PaymentMethods() []string {
	return []string{PaymentCash, PaymentCard, PaymentUPI, PaymentOnline, PaymentOther}
}
