package stats

import "testing"

func TestCompareMonthsZeroBaseline(t *testing.T) {
	cmp := CompareMonths(1234, 0)
	if cmp.PercentChange != nil {
		t.Fatalf("percent change should be nil with no baseline, got %v", *cmp.PercentChange)
	}
	if cmp.Direction != Increased {
		t.Fatalf("direction = %s, want Increased", cmp.Direction)
	}
}

func TestCompareMonths(t *testing.T) {
	cases := []struct {
		cur, prev float64
		wantPct   float64
		wantDir   Direction
	}{
		{150, 100, 50, Increased},
		{50, 100, -50, Decreased},
		{100, 100, 0, Unchanged},
		{100, 300, -66.67, Decreased},
	}
	for _, tc := range cases {
		cmp := CompareMonths(tc.cur, tc.prev)
		if cmp.Direction != tc.wantDir {
			t.Errorf("CompareMonths(%v, %v) direction = %s, want %s", tc.cur, tc.prev, cmp.Direction, tc.wantDir)
		}
		if cmp.PercentChange == nil {
			t.Errorf("CompareMonths(%v, %v) percent change is nil", tc.cur, tc.prev)
			continue
		}
		if *cmp.PercentChange != tc.wantPct {
			t.Errorf("CompareMonths(%v, %v) = %v, want %v", tc.cur, tc.prev, *cmp.PercentChange, tc.wantPct)
		}
	}
}

func TestCompareMonthsBothZero(t *testing.T) {
	cmp := CompareMonths(0, 0)
	if cmp.PercentChange != nil || cmp.Direction != Unchanged {
		t.Fatalf("got %+v", cmp)
	}
}
