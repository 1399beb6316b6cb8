package http

import (
	"log/slog"
	"net/http"

	"kharcha/internal/budget"
	"kharcha/internal/cache"
	"kharcha/internal/currency"
	"kharcha/internal/period"
	"kharcha/internal/stats"
)

const trailingMonths = 3

type comparisonJSON struct {
	PercentChange *float64 `json:"percentChange"`
	Direction     string   `json:"direction"`
}

type budgetJSON struct {
	MonthlyBudget    float64  `json:"monthlyBudget"`
	UsagePercent     int      `json:"usagePercent"`
	Health           string   `json:"health"`
	ShouldWarn       bool     `json:"shouldWarn"`
	Velocity         *float64 `json:"velocity,omitempty"`
	Pace             string   `json:"pace,omitempty"`
	SafeToSpendToday float64  `json:"safeToSpendToday"`
}

type dashboardResponse struct {
	TotalAllTime      float64       `json:"totalAllTime"`
	TotalToday        float64       `json:"totalToday"`
	TotalThisMonth    float64       `json:"totalThisMonth"`
	TotalThisMonthFmt string        `json:"totalThisMonthFormatted"`
	Count             int           `json:"count"`
	SkippedIDs        []string      `json:"skippedIds,omitempty"`
	MonthComparison   comparisonJSON `json:"monthComparison"`
	TrailingAverage   float64       `json:"trailingAverage"`
	Budget            budgetJSON    `json:"budget"`
	Recent            []expenseJSON `json:"recent"`
	MonthlySeries     [12]float64   `json:"monthlySeries"`
	CashTotal         float64       `json:"cashTotal"`
	DigitalTotal      float64       `json:"digitalTotal"`
	PreferredCurrency string        `json:"preferredCurrency"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	key := cache.Key(owner, "dashboard")
	if resp, found := s.dashboardCache.Get(key); found {
		slog.DebugContext(r.Context(), "Dashboard cache hit", "owner_id", owner)
		writeJSON(w, http.StatusOK, resp)
		return
	}

	records, err := s.service.ListExpenses(r.Context(), owner)
	if err != nil {
		slog.ErrorContext(r.Context(), "Dashboard list error", "error", err, "owner_id", owner)
		writeError(w, http.StatusInternalServerError, "failed to build dashboard")
		return
	}
	uc, err := s.service.UserContext(r.Context(), owner)
	if err != nil {
		slog.ErrorContext(r.Context(), "Dashboard preferences error", "error", err, "owner_id", owner)
		writeError(w, http.StatusInternalServerError, "failed to build dashboard")
		return
	}
	prefs := uc.Preferences

	today := period.FromTime(s.nowFn())
	report := stats.Compute(records, today)

	prevMonth, prevYear := period.PreviousMonth(today.Month, today.Year)
	prevTotal := stats.MonthTotal(records, prevYear, prevMonth)
	cmp := stats.CompareMonths(report.TotalThisMonth, prevTotal)

	resp := dashboardResponse{
		TotalAllTime:      report.TotalAllTime,
		TotalToday:        report.TotalToday,
		TotalThisMonth:    report.TotalThisMonth,
		Count:             report.Count,
		SkippedIDs:        report.SkippedIDs,
		MonthComparison:   comparisonJSON{PercentChange: cmp.PercentChange, Direction: string(cmp.Direction)},
		TrailingAverage:   stats.TrailingAverage(records, today, trailingMonths),
		MonthlySeries:     stats.MonthlySeries(records, today.Year),
		PreferredCurrency: prefs.PreferredCurrency,
	}

	code := currency.Code(prefs.PreferredCurrency)
	resp.TotalThisMonthFmt = currency.Format(report.TotalThisMonth, code)
	resp.CashTotal, resp.DigitalTotal = stats.PaymentInsight(records)

	resp.Budget = buildBudgetJSON(report.TotalThisMonth, prefs.MonthlyBudget, today)

	for _, e := range stats.Recent(records, 5) {
		resp.Recent = append(resp.Recent, toExpenseJSON(e))
	}

	s.dashboardCache.Set(key, resp)
	writeJSON(w, http.StatusOK, resp)
}

func buildBudgetJSON(spent, monthlyBudget float64, today period.Date) budgetJSON {
	daysInMonth := period.DaysInMonth(today.Year, today.Month)
	in := budget.Input{
		Spent:         spent,
		MonthlyBudget: monthlyBudget,
		ElapsedDays:   today.Day,
		DaysInMonth:   daysInMonth,
		DaysLeft:      period.DaysLeftInMonth(today),
	}

	out := budgetJSON{
		MonthlyBudget:    monthlyBudget,
		UsagePercent:     budget.UsagePercent(spent, monthlyBudget),
		Health:           string(budget.HealthOf(spent, monthlyBudget)),
		ShouldWarn:       budget.ShouldWarn(spent, monthlyBudget),
		SafeToSpendToday: budget.SafeToSpendToday(in),
	}

	if v, ok := budget.Velocity(in); ok {
		out.Velocity = &v
		out.Pace = string(budget.PaceOf(v))
	}
	return out
}
