package currency

import (
	"math"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	amounts := []float64{0, 0.01, 1, 99.99, 500, 123456.78}
	for _, c := range Supported() {
		for _, x := range amounts {
			got := FromBase(ToBase(x, c), c)
			if math.Abs(got-x) > 1e-6 {
				t.Errorf("round trip %s %v: got %v", c, x, got)
			}
		}
	}
}

func TestUnknownCodePassThrough(t *testing.T) {
	if Known("XYZ") {
		t.Fatal("XYZ should not be a known code")
	}
	if got := ToBase(42, "XYZ"); got != 42 {
		t.Fatalf("ToBase with unknown code = %v, want 42", got)
	}
	if got := FromBase(42, "XYZ"); got != 42 {
		t.Fatalf("FromBase with unknown code = %v, want 42", got)
	}
}

func TestToBaseDividesByRate(t *testing.T) {
	// 100 USD at rate 0.012 is 100/0.012 base units.
	want := 100 / 0.012
	if got := ToBase(100, USD); math.Abs(got-want) > 1e-9 {
		t.Fatalf("ToBase(100, USD) = %v, want %v", got, want)
	}
	if got := ToBase(100, INR); got != 100 {
		t.Fatalf("ToBase(100, INR) = %v, want 100", got)
	}
}

func TestFormat(t *testing.T) {
	cases := []struct {
		base float64
		c    Code
		want string
	}{
		{500, INR, "₹500.00"},
		{1000, USD, "$12.00"},
		{0, EUR, "€0.00"},
	}
	for _, tc := range cases {
		if got := Format(tc.base, tc.c); got != tc.want {
			t.Errorf("Format(%v, %s) = %q, want %q", tc.base, tc.c, got, tc.want)
		}
	}
}
