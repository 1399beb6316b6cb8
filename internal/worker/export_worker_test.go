package worker

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"kharcha/internal/amqp"
	"kharcha/internal/core"
	"kharcha/internal/storage"
)

type fakeExporter struct {
	rows      []core.ExpenseRecord
	overviews []string
	fail      bool
}

func (f *fakeExporter) AppendExpenseRow(_ context.Context, rec core.ExpenseRecord) error {
	if f.fail {
		return errors.New("sheets unavailable")
	}
	f.rows = append(f.rows, rec)
	return nil
}

func (f *fakeExporter) AppendMonthOverview(_ context.Context, ownerID, monthKey string, _ float64, _ map[string]float64) error {
	if f.fail {
		return errors.New("sheets unavailable")
	}
	f.overviews = append(f.overviews, ownerID+" "+monthKey)
	return nil
}

func seedExpense(t *testing.T, repo *storage.MemoryRepository, owner string) core.ExpenseRecord {
	t.Helper()
	rec, err := repo.CreateExpense(context.Background(), core.ExpenseRecord{
		Title:            "metro card",
		AmountBase:       300,
		OriginalAmount:   300,
		OriginalCurrency: "INR",
		Category:         core.Transport,
		PaymentMethod:    core.PaymentUPI,
		Date:             time.Now().UTC().Format("2006-01-02"),
		CreatedAt:        time.Now().UTC(),
		OwnerID:          owner,
	})
	if err != nil {
		t.Fatal(err)
	}
	return rec
}

func TestHandleCreatedEvent(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemoryRepository()
	exp := &fakeExporter{}
	w := NewExportWorker(repo, exp, 10)

	rec := seedExpense(t, repo, "u1")
	id, _ := strconv.ParseInt(rec.ID, 10, 64)

	err := w.HandleEventMessage(ctx, amqp.NewExpenseEventMessage(amqp.EventCreated, id, "u1"))
	if err != nil {
		t.Fatal(err)
	}
	if len(exp.rows) != 1 || exp.rows[0].Title != "metro card" {
		t.Fatalf("rows = %+v", exp.rows)
	}

	pending, err := repo.GetPendingExports(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 0 {
		t.Fatalf("expense should be marked exported, pending = %+v", pending)
	}
}

func TestHandleCreatedEventVanishedExpense(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemoryRepository()
	exp := &fakeExporter{}
	w := NewExportWorker(repo, exp, 10)

	// Event for an expense that was deleted before processing.
	err := w.HandleEventMessage(ctx, amqp.NewExpenseEventMessage(amqp.EventCreated, 999, "u1"))
	if err != nil {
		t.Fatalf("vanished expense should be dropped, not retried: %v", err)
	}
	if len(exp.rows) != 0 {
		t.Fatal("nothing should be exported")
	}
}

func TestHandleDeletedEvent(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemoryRepository()
	exp := &fakeExporter{}
	w := NewExportWorker(repo, exp, 10)

	seedExpense(t, repo, "u1")

	err := w.HandleEventMessage(ctx, amqp.NewExpenseEventMessage(amqp.EventDeleted, 42, "u1"))
	if err != nil {
		t.Fatal(err)
	}
	if len(exp.overviews) != 1 {
		t.Fatalf("overviews = %v", exp.overviews)
	}
}

func TestExportFailureKeepsPending(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemoryRepository()
	exp := &fakeExporter{fail: true}
	w := NewExportWorker(repo, exp, 10)

	rec := seedExpense(t, repo, "u1")
	id, _ := strconv.ParseInt(rec.ID, 10, 64)

	err := w.HandleEventMessage(ctx, amqp.NewExpenseEventMessage(amqp.EventCreated, id, "u1"))
	if err == nil {
		t.Fatal("export failure should surface so the delivery is requeued")
	}

	pending, err := repo.GetPendingExports(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 || pending[0].Attempts != 1 {
		t.Fatalf("pending = %+v", pending)
	}
}

func TestProcessPendingExports(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemoryRepository()
	exp := &fakeExporter{}
	w := NewExportWorker(repo, exp, 10)

	seedExpense(t, repo, "u1")
	seedExpense(t, repo, "u2")

	if err := w.ProcessPendingExports(ctx); err != nil {
		t.Fatal(err)
	}
	if len(exp.rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(exp.rows))
	}

	pending, err := repo.GetPendingExports(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 0 {
		t.Fatalf("pending = %+v, want empty", pending)
	}
}
