// Package services provides business logic and orchestration services.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"kharcha/internal/amqp"
	"kharcha/internal/core"
	"kharcha/internal/period"
	"kharcha/internal/stats"
)

// Repository is the persistence surface the service needs. Both the SQLite
// and the in-memory repositories satisfy it.
type Repository interface {
	CreateExpense(ctx context.Context, e core.ExpenseRecord) (core.ExpenseRecord, error)
	DeleteExpense(ctx context.Context, ownerID, id string) error
	GetExpense(ctx context.Context, ownerID, id string) (core.ExpenseRecord, error)
	ListExpenses(ctx context.Context, ownerID string) ([]core.ExpenseRecord, error)
	GetPreferences(ctx context.Context, ownerID string) (core.Preferences, error)
	SavePreferences(ctx context.Context, ownerID string, p core.Preferences) error
	Close() error
}

// EventPublisher publishes expense change events for the export worker.
type EventPublisher interface {
	PublishExpenseEvent(ctx context.Context, kind string, expenseID int64, ownerID string) error
	Close() error
}

// ExpenseService orchestrates the write path: validation, the budget check,
// persistence and event publication.
type ExpenseService struct {
	repo      Repository
	publisher EventPublisher
	nowFn     func() time.Time
}

func NewExpenseService(repo Repository, publisher EventPublisher) *ExpenseService {
	return &ExpenseService{
		repo:      repo,
		publisher: publisher,
		nowFn:     time.Now,
	}
}

// CreateExpense validates and persists a record. When the owner has a
// monthly budget and the write would push that month's total past it, the
// write is rejected with core.ErrBudgetExceeded and nothing is stored.
func (s *ExpenseService) CreateExpense(ctx context.Context, e core.ExpenseRecord) (core.ExpenseRecord, error) {
	if err := e.Validate(); err != nil {
		return core.ExpenseRecord{}, err
	}

	prefs, err := s.repo.GetPreferences(ctx, e.OwnerID)
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("load preferences: %w", err)
	}

	if prefs.MonthlyBudget > 0 {
		if err := s.checkBudget(ctx, e, prefs.MonthlyBudget); err != nil {
			return core.ExpenseRecord{}, err
		}
	}

	created, err := s.repo.CreateExpense(ctx, e)
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("save expense: %w", err)
	}

	s.publishEvent(ctx, amqp.EventCreated, created.ID, created.OwnerID)

	return created, nil
}

func (s *ExpenseService) checkBudget(ctx context.Context, e core.ExpenseRecord, budget float64) error {
	target, ok := period.Classify(e.Date, e.CreatedAt)
	if !ok {
		target = period.FromTime(s.nowFn())
	}

	records, err := s.repo.ListExpenses(ctx, e.OwnerID)
	if err != nil {
		return fmt.Errorf("load expenses for budget check: %w", err)
	}

	spent := stats.MonthTotal(records, target.Year, target.Month)
	if spent+e.AmountBase > budget {
		slog.WarnContext(ctx, "Expense rejected by budget",
			"owner_id", e.OwnerID,
			"amount_base", e.AmountBase,
			"spent", spent,
			"budget", budget)
		return fmt.Errorf("spent %.2f of %.2f: %w", spent, budget, core.ErrBudgetExceeded)
	}
	return nil
}

// ImportExpense persists a canonicalized historical record. Backfills
// describe money already spent, so the budget gate does not apply; the
// export event is published like any other write.
func (s *ExpenseService) ImportExpense(ctx context.Context, e core.ExpenseRecord) (core.ExpenseRecord, error) {
	if err := e.Validate(); err != nil {
		return core.ExpenseRecord{}, err
	}

	created, err := s.repo.CreateExpense(ctx, e)
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("save expense: %w", err)
	}

	s.publishEvent(ctx, amqp.EventCreated, created.ID, created.OwnerID)

	return created, nil
}

// DeleteExpense removes an owner's record and publishes a delete event.
func (s *ExpenseService) DeleteExpense(ctx context.Context, ownerID, id string) error {
	if err := s.repo.DeleteExpense(ctx, ownerID, id); err != nil {
		return err
	}

	s.publishEvent(ctx, amqp.EventDeleted, id, ownerID)
	return nil
}

// GetExpense returns a single owner-scoped record.
func (s *ExpenseService) GetExpense(ctx context.Context, ownerID, id string) (core.ExpenseRecord, error) {
	return s.repo.GetExpense(ctx, ownerID, id)
}

// ListExpenses returns all of an owner's records, newest first.
func (s *ExpenseService) ListExpenses(ctx context.Context, ownerID string) ([]core.ExpenseRecord, error) {
	return s.repo.ListExpenses(ctx, ownerID)
}

// Preferences returns the owner's stored preferences or the defaults.
func (s *ExpenseService) Preferences(ctx context.Context, ownerID string) (core.Preferences, error) {
	return s.repo.GetPreferences(ctx, ownerID)
}

// UserContext bundles the caller identity with their stored preferences, the
// unit the read-side aggregations are evaluated for.
func (s *ExpenseService) UserContext(ctx context.Context, ownerID string) (core.UserContext, error) {
	prefs, err := s.repo.GetPreferences(ctx, ownerID)
	if err != nil {
		return core.UserContext{}, fmt.Errorf("load preferences: %w", err)
	}
	return core.UserContext{OwnerID: ownerID, Preferences: prefs}, nil
}

// UpdatePreferences merges a partial update onto the stored preferences and
// persists the result. Boolean toggles are applied only when the matching
// set flag is true, so an update that omits them preserves the stored value.
func (s *ExpenseService) UpdatePreferences(ctx context.Context, ownerID string, update core.Preferences, setReminder, setAlert bool) (core.Preferences, error) {
	if err := update.Validate(); err != nil {
		return core.Preferences{}, err
	}

	current, err := s.repo.GetPreferences(ctx, ownerID)
	if err != nil {
		return core.Preferences{}, fmt.Errorf("load preferences: %w", err)
	}

	merged := current.Merge(update, setReminder, setAlert)

	if err := s.repo.SavePreferences(ctx, ownerID, merged); err != nil {
		return core.Preferences{}, fmt.Errorf("save preferences: %w", err)
	}
	return merged, nil
}

// publishEvent is non-blocking for the caller: a dead broker never fails a
// write that already reached storage. The export worker's pending sweep
// picks up anything a lost event would have carried.
func (s *ExpenseService) publishEvent(ctx context.Context, kind, id, ownerID string) {
	if s.publisher == nil {
		slog.WarnContext(ctx, "Event publisher not available, skipping event", "kind", kind)
		return
	}

	numID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to parse expense ID for event", "id", id, "error", err)
		return
	}

	if err := s.publisher.PublishExpenseEvent(ctx, kind, numID, ownerID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish expense event",
			"kind", kind, "expense_id", numID, "error", err)
	}
}

// Close closes both storage and the event publisher
func (s *ExpenseService) Close() error {
	var errs []error

	if s.repo != nil {
		if err := s.repo.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close expense service: %v", errs)
	}

	return nil
}
