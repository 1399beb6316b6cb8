package http

import (
	"log/slog"
	"net/http"

	"kharcha/internal/cache"
	"kharcha/internal/core"
	"kharcha/internal/stats"
)

var trendModes = map[string]func(core.ExpenseRecord) string{
	"daily":   stats.ByDayKey,
	"weekly":  stats.ByWeekKey,
	"monthly": stats.ByMonthKey,
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	mode := r.URL.Query().Get("mode")
	if mode == "" {
		mode = "daily"
	}
	keyFn, ok := trendModes[mode]
	if !ok {
		writeError(w, http.StatusBadRequest, "mode must be one of daily, weekly, monthly")
		return
	}

	s.serveGrouping(w, r, owner, cache.Key(owner, "trend", mode), keyFn)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	s.serveGrouping(w, r, owner, cache.Key(owner, "categories"), stats.ByCategory)
}

func (s *Server) handlePaymentMethods(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	s.serveGrouping(w, r, owner, cache.Key(owner, "payment-methods"), stats.ByPaymentMethod)
}

func (s *Server) serveGrouping(w http.ResponseWriter, r *http.Request, owner, key string, keyFn func(core.ExpenseRecord) string) {
	if grouped, found := s.trendCache.Get(key); found {
		slog.DebugContext(r.Context(), "Grouping cache hit", "owner_id", owner, "key", key)
		writeJSON(w, http.StatusOK, grouped)
		return
	}

	records, err := s.service.ListExpenses(r.Context(), owner)
	if err != nil {
		slog.ErrorContext(r.Context(), "Grouping list error", "error", err, "owner_id", owner)
		writeError(w, http.StatusInternalServerError, "failed to load expenses")
		return
	}

	grouped := stats.GroupBy(records, keyFn)
	s.trendCache.Set(key, grouped)
	writeJSON(w, http.StatusOK, grouped)
}
