// Package stats is the aggregation engine: pure, synchronous computations
// over an in-memory snapshot of one owner's expense records. Amounts are
// expected to be base-currency normalized already. Every function is
// deterministic and reentrant; recomputing from the same snapshot yields
// identical results.
package stats

import (
	"sort"

	"kharcha/internal/core"
	"kharcha/internal/period"
)

// Report holds the dashboard totals for a snapshot evaluated at a reference
// date. SkippedIDs lists records whose date could not be classified; they are
// excluded from TotalToday and TotalThisMonth but still count toward
// TotalAllTime, and are surfaced so callers can report data quality issues.
type Report struct {
	TotalAllTime   float64
	TotalToday     float64
	TotalThisMonth float64
	Count          int
	SkippedIDs     []string
}

// Compute aggregates the snapshot against the reference date today.
// An empty snapshot yields a zero report, never an error.
func Compute(records []core.ExpenseRecord, today period.Date) Report {
	r := Report{Count: len(records)}
	dayKey := today.DayKey()
	monthKey := today.MonthKey()

	for _, e := range records {
		r.TotalAllTime += e.AmountBase

		d, ok := period.Classify(e.Date, e.CreatedAt)
		if !ok {
			r.SkippedIDs = append(r.SkippedIDs, e.ID)
			continue
		}
		if d.DayKey() == dayKey {
			r.TotalToday += e.AmountBase
		}
		if d.MonthKey() == monthKey {
			r.TotalThisMonth += e.AmountBase
		}
	}
	return r
}

// MonthTotal sums the records falling in the given calendar month.
func MonthTotal(records []core.ExpenseRecord, year, month int) float64 {
	var total float64
	for _, e := range records {
		d, ok := period.Classify(e.Date, e.CreatedAt)
		if !ok {
			continue
		}
		if d.Year == year && d.Month == month {
			total += e.AmountBase
		}
	}
	return total
}

// TrailingAverage is the arithmetic mean of the totals of the n calendar
// months strictly before today's month. Months without expenses contribute
// zero rather than being excluded: a user who stopped spending is different
// from a user with no history. n <= 0 yields 0.
func TrailingAverage(records []core.ExpenseRecord, today period.Date, n int) float64 {
	if n <= 0 {
		return 0
	}
	var sum float64
	for i := 1; i <= n; i++ {
		month, year := period.MonthsBack(today.Month, today.Year, i)
		sum += MonthTotal(records, year, month)
	}
	return sum / float64(n)
}

// GroupBy sums base amounts grouped by an arbitrary classifier. Records for
// which keyFn returns "" are skipped. Iteration order of the result is
// unspecified.
func GroupBy(records []core.ExpenseRecord, keyFn func(core.ExpenseRecord) string) map[string]float64 {
	out := make(map[string]float64)
	for _, e := range records {
		key := keyFn(e)
		if key == "" {
			continue
		}
		out[key] += e.AmountBase
	}
	return out
}

// ByCategory is a GroupBy classifier over the fixed category set.
func ByCategory(e core.ExpenseRecord) string {
	return string(e.Category)
}

// ByPaymentMethod classifies by the normalized payment method.
func ByPaymentMethod(e core.ExpenseRecord) string {
	return core.NormalizePaymentMethod(e.PaymentMethod)
}

// ByDayKey, ByWeekKey and ByMonthKey classify by period; records without a
// classifiable date fall out of the grouping.
func ByDayKey(e core.ExpenseRecord) string {
	d, ok := period.Classify(e.Date, e.CreatedAt)
	if !ok {
		return ""
	}
	return d.DayKey()
}

func ByWeekKey(e core.ExpenseRecord) string {
	d, ok := period.Classify(e.Date, e.CreatedAt)
	if !ok {
		return ""
	}
	return d.WeekKey()
}

func ByMonthKey(e core.ExpenseRecord) string {
	d, ok := period.Classify(e.Date, e.CreatedAt)
	if !ok {
		return ""
	}
	return d.MonthKey()
}

// CalendarDaysSinceFirst counts the calendar days from the earliest
// classifiable record date through today, both ends included. Used as the
// velocity denominator. Returns 0 when no record has a valid date.
func CalendarDaysSinceFirst(records []core.ExpenseRecord, today period.Date) int {
	var earliest period.Date
	found := false
	for _, e := range records {
		d, ok := period.Classify(e.Date, e.CreatedAt)
		if !ok {
			continue
		}
		if !found || d.Time().Before(earliest.Time()) {
			earliest = d
			found = true
		}
	}
	if !found {
		return 0
	}
	return period.DaysBetweenInclusive(earliest, today)
}

// Recent returns up to n records ordered by creation time, newest first.
// CreatedAt is a storage timestamp and is used only for this ordering, never
// for calendar bucketing.
func Recent(records []core.ExpenseRecord, n int) []core.ExpenseRecord {
	out := make([]core.ExpenseRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// MonthlySeries returns the twelve month totals of the given year, indexed
// January first. Feeds the dashboard chart.
func MonthlySeries(records []core.ExpenseRecord, year int) [12]float64 {
	var series [12]float64
	for _, e := range records {
		d, ok := period.Classify(e.Date, e.CreatedAt)
		if !ok || d.Year != year {
			continue
		}
		series[d.Month-1] += e.AmountBase
	}
	return series
}

// PaymentInsight splits the snapshot into cash versus digital spending.
// Everything that does not normalize to Cash counts as digital.
func PaymentInsight(records []core.ExpenseRecord) (cash, digital float64) {
	for _, e := range records {
		if core.NormalizePaymentMethod(e.PaymentMethod) == core.PaymentCash {
			cash += e.AmountBase
		} else {
			digital += e.AmountBase
		}
	}
	return cash, digital
}
