package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"kharcha/internal/amqp"
	"kharcha/internal/core"
	"kharcha/internal/storage"
)

type fakePublisher struct {
	mu     sync.Mutex
	events []string
	fail   bool
}

func (p *fakePublisher) PublishExpenseEvent(_ context.Context, kind string, _ int64, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("connection refused")
	}
	p.events = append(p.events, kind)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func newService(pub *fakePublisher) *ExpenseService {
	return NewExpenseService(storage.NewMemoryRepository(), pub)
}

func record(owner string, amount float64, date string) core.ExpenseRecord {
	return core.ExpenseRecord{
		Title:            "groceries",
		AmountBase:       amount,
		OriginalAmount:   amount,
		OriginalCurrency: "INR",
		Category:         core.Food,
		PaymentMethod:    core.PaymentCard,
		Date:             date,
		CreatedAt:        time.Now().UTC(),
		OwnerID:          owner,
	}
}

func TestCreateExpensePublishesEvent(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	svc := newService(pub)

	created, err := svc.CreateExpense(ctx, record("u1", 500, "2025-08-30"))
	if err != nil {
		t.Fatal(err)
	}
	if created.ID == "" {
		t.Fatal("created expense should carry an ID")
	}
	if len(pub.events) != 1 || pub.events[0] != amqp.EventCreated {
		t.Fatalf("events = %v", pub.events)
	}
}

func TestCreateExpenseRejectsInvalid(t *testing.T) {
	svc := newService(&fakePublisher{})
	bad := record("u1", 0, "2025-08-30")
	if _, err := svc.CreateExpense(context.Background(), bad); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("err = %v, want ErrInvalidAmount", err)
	}
}

func TestCreateExpenseBudgetBlock(t *testing.T) {
	ctx := context.Background()
	svc := newService(&fakePublisher{})

	_, err := svc.UpdatePreferences(ctx, "u1", core.Preferences{MonthlyBudget: 1000}, false, false)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.CreateExpense(ctx, record("u1", 800, "2025-08-10")); err != nil {
		t.Fatal(err)
	}

	// 800 + 300 would exceed 1000 in the same month.
	_, err = svc.CreateExpense(ctx, record("u1", 300, "2025-08-20"))
	if !errors.Is(err, core.ErrBudgetExceeded) {
		t.Fatalf("err = %v, want ErrBudgetExceeded", err)
	}

	// The rejected record must not be stored.
	list, err := svc.ListExpenses(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("len(list) = %d, want 1", len(list))
	}

	// A different month is unaffected by this month's spending.
	if _, err := svc.CreateExpense(ctx, record("u1", 300, "2025-09-02")); err != nil {
		t.Fatalf("next month write should pass: %v", err)
	}

	// Landing exactly on the budget is allowed.
	if _, err := svc.CreateExpense(ctx, record("u1", 200, "2025-08-25")); err != nil {
		t.Fatalf("write up to the budget should pass: %v", err)
	}
}

func TestCreateExpenseSurvivesPublishFailure(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{fail: true}
	svc := newService(pub)

	created, err := svc.CreateExpense(ctx, record("u1", 500, "2025-08-30"))
	if err != nil {
		t.Fatalf("broker failure must not fail the write: %v", err)
	}
	if _, err := svc.GetExpense(ctx, "u1", created.ID); err != nil {
		t.Fatalf("expense should be stored despite publish failure: %v", err)
	}
}

func TestImportExpenseSkipsBudgetGate(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	svc := newService(pub)

	_, err := svc.UpdatePreferences(ctx, "u1", core.Preferences{MonthlyBudget: 100}, false, false)
	if err != nil {
		t.Fatal(err)
	}

	// A backfill far beyond the budget still lands and still exports.
	created, err := svc.ImportExpense(ctx, record("u1", 5000, "2025-08-05"))
	if err != nil {
		t.Fatalf("import must bypass the budget gate: %v", err)
	}
	if created.ID == "" {
		t.Fatal("imported expense should carry an ID")
	}
	if len(pub.events) != 1 || pub.events[0] != amqp.EventCreated {
		t.Fatalf("events = %v", pub.events)
	}

	if _, err := svc.ImportExpense(ctx, record("u1", 0, "2025-08-05")); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("err = %v, want ErrInvalidAmount", err)
	}
}

func TestDeleteExpense(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	svc := newService(pub)

	created, err := svc.CreateExpense(ctx, record("u1", 500, "2025-08-30"))
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.DeleteExpense(ctx, "u1", created.ID); err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteExpense(ctx, "u1", created.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if len(pub.events) != 2 || pub.events[1] != amqp.EventDeleted {
		t.Fatalf("events = %v", pub.events)
	}
}

func TestUpdatePreferencesMerges(t *testing.T) {
	ctx := context.Background()
	svc := newService(&fakePublisher{})

	_, err := svc.UpdatePreferences(ctx, "u1", core.Preferences{
		MonthlyBudget:        5000,
		DailyExpenseReminder: true,
	}, true, false)
	if err != nil {
		t.Fatal(err)
	}

	// Updating only the currency must preserve budget and toggles.
	got, err := svc.UpdatePreferences(ctx, "u1", core.Preferences{PreferredCurrency: "EUR"}, false, false)
	if err != nil {
		t.Fatal(err)
	}
	if got.MonthlyBudget != 5000 || !got.DailyExpenseReminder || got.PreferredCurrency != "EUR" {
		t.Fatalf("merged = %+v", got)
	}
}

func TestUpdatePreferencesRejectsNegativeBudget(t *testing.T) {
	svc := newService(&fakePublisher{})
	_, err := svc.UpdatePreferences(context.Background(), "u1", core.Preferences{MonthlyBudget: -1}, false, false)
	if err == nil {
		t.Fatal("negative budget should be rejected")
	}
}
