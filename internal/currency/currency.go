// Package currency converts amounts between the base currency and the
// supported display currencies using a fixed rate table.
//
// INR is the base currency (rate 1). Rates are expressed relative to the
// base: one base unit equals Rate(c) units of currency c. Converting into
// the base therefore divides by the rate, converting out multiplies.
package currency

import "strconv"

// Code identifies a supported currency.
type Code string

const (
	INR Code = "INR" // base currency
	USD Code = "USD"
	EUR Code = "EUR"
	GBP Code = "GBP"
)

// Base is the canonical storage and computation currency.
const Base = INR

var rates = map[Code]float64{
	INR: 1,
	USD: 0.012,
	EUR: 0.011,
	GBP: 0.0095,
}

var symbols = map[Code]string{
	INR: "₹",
	USD: "$",
	EUR: "€",
	GBP: "£",
}

// Rate returns the exchange rate for c relative to the base currency.
// Unknown codes fall back to rate 1 so that legacy data displays as-is
// instead of crashing the caller; the stored base amount is unaffected.
func Rate(c Code) float64 {
	if r, ok := rates[c]; ok {
		return r
	}
	return 1
}

// Known reports whether c is in the rate table. Callers may use this as a
// data quality signal; conversion itself never fails.
func Known(c Code) bool {
	_, ok := rates[c]
	return ok
}

// ToBase converts an amount entered in c into the base currency.
func ToBase(amount float64, c Code) float64 {
	return amount / Rate(c)
}

// FromBase converts a base currency amount into c for display.
func FromBase(amountBase float64, c Code) float64 {
	return amountBase * Rate(c)
}

// Format renders a base currency amount in c with its symbol and two
// decimal places, e.g. Format(500, INR) == "₹500.00".
func Format(amountBase float64, c Code) string {
	return symbols[c] + strconv.FormatFloat(FromBase(amountBase, c), 'f', 2, 64)
}

// Supported returns the supported currency codes, base first.
func Supported() []Code {
	return []Code{INR, USD, EUR, GBP}
}
