package core

import "testing"

func TestNormalizePaymentMethod(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"cash", PaymentCash},
		{"Paid in CASH", PaymentCash},
		{"credit card", PaymentCard},
		{"Debit", PaymentCard},
		{"gpay", PaymentUPI},
		{"PhonePe", PaymentUPI},
		{"paytm wallet", PaymentUPI},
		{"netbanking", PaymentOnline},
		{"online transfer", PaymentOnline},
		{"", PaymentOther},
		{"cheque", PaymentOther},
	}
	for _, tc := range cases {
		if got := NormalizePaymentMethod(tc.in); got != tc.want {
			t.Errorf("NormalizePaymentMethod(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizePaymentMethodIdempotent(t *testing.T) {
	inputs := []string{"cash", "debit card", "UPI", "netbanking", "bitcoin", "", "Card", "Other"}
	for _, in := range inputs {
		once := NormalizePaymentMethod(in)
		twice := NormalizePaymentMethod(once)
		if once != twice {
			t.Errorf("normalization not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}
