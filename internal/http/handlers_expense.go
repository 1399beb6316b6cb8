package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"kharcha/internal/core"
	"kharcha/internal/ingest"
)

type expenseJSON struct {
	ID               string  `json:"id"`
	Title            string  `json:"title"`
	AmountBase       float64 `json:"amountBase"`
	OriginalAmount   float64 `json:"originalAmount"`
	OriginalCurrency string  `json:"originalCurrency"`
	Category         string  `json:"category"`
	PaymentMethod    string  `json:"paymentMethod"`
	Date             string  `json:"date"`
	CreatedAt        int64   `json:"createdAt"`
}

func toExpenseJSON(e core.ExpenseRecord) expenseJSON {
	return expenseJSON{
		ID:               e.ID,
		Title:            e.Title,
		AmountBase:       e.AmountBase,
		OriginalAmount:   e.OriginalAmount,
		OriginalCurrency: e.OriginalCurrency,
		Category:         string(e.Category),
		PaymentMethod:    e.PaymentMethod,
		Date:             e.Date,
		CreatedAt:        e.CreatedAt.Unix(),
	}
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var in ingest.ParsedExpense
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	in.Title = sanitizeInput(in.Title)

	rec, err := ingest.FromParsed(in, owner, s.nowFn())
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	created, err := s.service.CreateExpense(r.Context(), rec)
	if errors.Is(err, core.ErrBudgetExceeded) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Expense create error", "error", err, "owner_id", owner)
		writeError(w, http.StatusInternalServerError, "failed to save expense")
		return
	}

	s.invalidateOwner(owner)
	writeJSON(w, http.StatusCreated, toExpenseJSON(created))
}

type importResultJSON struct {
	Imported int   `json:"imported"`
	Skipped  []int `json:"skipped,omitempty"` // indexes of rejected rows
}

// handleImportExpenses backfills legacy records in bulk. Rows are
// canonicalized first, so old field shapes (amount instead of amountBase,
// DD-MM-YYYY dates, epoch created-at) come through; invalid rows are
// skipped by index instead of failing the batch.
func (s *Server) handleImportExpenses(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var raws []ingest.RawRecord
	if err := json.NewDecoder(r.Body).Decode(&raws); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var result importResultJSON
	for i, raw := range raws {
		rec := ingest.Canonical(raw)
		rec.ID = "" // storage assigns
		rec.OwnerID = owner
		rec.Title = sanitizeInput(rec.Title)

		if _, err := s.service.ImportExpense(r.Context(), rec); err != nil {
			slog.WarnContext(r.Context(), "Import row rejected", "error", err, "owner_id", owner, "index", i)
			result.Skipped = append(result.Skipped, i)
			continue
		}
		result.Imported++
	}

	if result.Imported > 0 {
		s.invalidateOwner(owner)
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	records, err := s.service.ListExpenses(r.Context(), owner)
	if err != nil {
		slog.ErrorContext(r.Context(), "Expense list error", "error", err, "owner_id", owner)
		writeError(w, http.StatusInternalServerError, "failed to list expenses")
		return
	}

	out := make([]expenseJSON, 0, len(records))
	for _, e := range records {
		out = append(out, toExpenseJSON(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	rec, err := s.service.GetExpense(r.Context(), owner, r.PathValue("id"))
	if errors.Is(err, core.ErrNotFound) {
		writeError(w, http.StatusNotFound, "expense not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Expense get error", "error", err, "owner_id", owner)
		writeError(w, http.StatusInternalServerError, "failed to load expense")
		return
	}
	writeJSON(w, http.StatusOK, toExpenseJSON(rec))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	err := s.service.DeleteExpense(r.Context(), owner, r.PathValue("id"))
	if errors.Is(err, core.ErrNotFound) {
		writeError(w, http.StatusNotFound, "expense not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Expense delete error", "error", err, "owner_id", owner)
		writeError(w, http.StatusInternalServerError, "failed to delete expense")
		return
	}

	s.invalidateOwner(owner)
	w.WriteHeader(http.StatusNoContent)
}
