package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"kharcha/internal/amqp"
	"kharcha/internal/core"
	"kharcha/internal/period"
	"kharcha/internal/stats"
	"kharcha/internal/storage"
)

// ExportStore is the repository surface the export worker needs.
type ExportStore interface {
	GetExpense(ctx context.Context, ownerID, id string) (core.ExpenseRecord, error)
	ListExpenses(ctx context.Context, ownerID string) ([]core.ExpenseRecord, error)
	GetPendingExports(ctx context.Context, limit int) ([]storage.PendingExport, error)
	MarkExported(ctx context.Context, expenseID int64) error
	MarkExportError(ctx context.Context, expenseID int64) error
}

// RowExporter is the sheet surface. Satisfied by the Google exporter.
type RowExporter interface {
	AppendExpenseRow(ctx context.Context, rec core.ExpenseRecord) error
	AppendMonthOverview(ctx context.Context, ownerID, monthKey string, total float64, byCategory map[string]float64) error
}

// ExportWorker moves expenses from the local repository to the report sheet.
// It is driven by AMQP events, with a periodic sweep over the pending queue
// as a backup in case messages are lost.
type ExportWorker struct {
	store     ExportStore
	exporter  RowExporter
	batchSize int
	nowFn     func() time.Time
}

func NewExportWorker(store ExportStore, exporter RowExporter, batchSize int) *ExportWorker {
	return &ExportWorker{
		store:     store,
		exporter:  exporter,
		batchSize: batchSize,
		nowFn:     time.Now,
	}
}

// HandleEventMessage processes a single expense event from AMQP.
func (w *ExportWorker) HandleEventMessage(ctx context.Context, msg *amqp.ExpenseEventMessage) error {
	slog.InfoContext(ctx, "Processing expense event",
		"kind", msg.Kind,
		"expense_id", msg.ExpenseID,
		"owner_id", msg.OwnerID)

	switch msg.Kind {
	case amqp.EventCreated:
		return w.exportExpense(ctx, msg.OwnerID, msg.ExpenseID)
	case amqp.EventDeleted:
		// The row is gone from storage, so re-publish the owner's current
		// month snapshot instead of editing the append-only sheet.
		return w.exportMonthOverview(ctx, msg.OwnerID)
	default:
		slog.WarnContext(ctx, "Unknown event kind, dropping", "kind", msg.Kind)
		return nil
	}
}

func (w *ExportWorker) exportExpense(ctx context.Context, ownerID string, expenseID int64) error {
	rec, err := w.store.GetExpense(ctx, ownerID, strconv.FormatInt(expenseID, 10))
	if errors.Is(err, core.ErrNotFound) {
		// Deleted before the event was processed; nothing left to export.
		slog.WarnContext(ctx, "Expense vanished before export", "expense_id", expenseID)
		return w.store.MarkExported(ctx, expenseID)
	}
	if err != nil {
		return fmt.Errorf("get expense from storage: %w", err)
	}

	if err := w.exporter.AppendExpenseRow(ctx, rec); err != nil {
		if markErr := w.store.MarkExportError(ctx, expenseID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark export error", "expense_id", expenseID, "error", markErr)
		}
		return fmt.Errorf("append expense row: %w", err)
	}

	return w.store.MarkExported(ctx, expenseID)
}

func (w *ExportWorker) exportMonthOverview(ctx context.Context, ownerID string) error {
	records, err := w.store.ListExpenses(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("list expenses: %w", err)
	}

	today := period.FromTime(w.nowFn())
	report := stats.Compute(records, today)

	monthRecords := make([]core.ExpenseRecord, 0, len(records))
	for _, e := range records {
		if d, ok := period.Classify(e.Date, e.CreatedAt); ok && d.MonthKey() == today.MonthKey() {
			monthRecords = append(monthRecords, e)
		}
	}
	byCategory := stats.GroupBy(monthRecords, stats.ByCategory)

	if err := w.exporter.AppendMonthOverview(ctx, ownerID, today.MonthKey(), report.TotalThisMonth, byCategory); err != nil {
		return fmt.Errorf("append month overview: %w", err)
	}
	return nil
}

// ProcessPendingExports exports any expenses the event stream missed.
func (w *ExportWorker) ProcessPendingExports(ctx context.Context) error {
	pending, err := w.store.GetPendingExports(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending exports: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending exports", "count", len(pending))

	for _, p := range pending {
		if err := w.exportExpense(ctx, p.OwnerID, p.ExpenseID); err != nil {
			slog.ErrorContext(ctx, "Failed to export pending expense",
				"expense_id", p.ExpenseID,
				"attempts", p.Attempts,
				"error", err)
			continue
		}
	}

	return nil
}

// RunPendingSweep runs ProcessPendingExports on a ticker until ctx is done.
func (w *ExportWorker) RunPendingSweep(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.ProcessPendingExports(ctx); err != nil {
				slog.ErrorContext(ctx, "Pending export sweep failed", "error", err)
			}
		}
	}
}
