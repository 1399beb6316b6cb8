package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"kharcha/internal/core"
	"kharcha/internal/notify"
)

// repo is the surface shared by the SQLite and memory implementations.
type repo interface {
	CreateExpense(ctx context.Context, e core.ExpenseRecord) (core.ExpenseRecord, error)
	DeleteExpense(ctx context.Context, ownerID, id string) error
	GetExpense(ctx context.Context, ownerID, id string) (core.ExpenseRecord, error)
	ListExpenses(ctx context.Context, ownerID string) ([]core.ExpenseRecord, error)
	GetPreferences(ctx context.Context, ownerID string) (core.Preferences, error)
	SavePreferences(ctx context.Context, ownerID string, p core.Preferences) error
	OwnersWithDailyReminder(ctx context.Context) ([]string, error)
	GetPendingExports(ctx context.Context, limit int) ([]PendingExport, error)
	MarkExported(ctx context.Context, expenseID int64) error
	MarkExportError(ctx context.Context, expenseID int64) error
	notify.StateStore
}

func backends(t *testing.T) map[string]repo {
	t.Helper()

	sqlite, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "kharcha.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]repo{
		"sqlite": sqlite,
		"memory": NewMemoryRepository(),
	}
}

func sample(owner string, created time.Time) core.ExpenseRecord {
	return core.ExpenseRecord{
		Title:            "lunch",
		AmountBase:       250,
		OriginalAmount:   250,
		OriginalCurrency: "INR",
		Category:         core.Food,
		PaymentMethod:    core.PaymentUPI,
		Date:             created.Format("2006-01-02"),
		CreatedAt:        created,
		OwnerID:          owner,
	}
}

func TestExpenseCRUD(t *testing.T) {
	ctx := context.Background()
	for name, r := range backends(t) {
		t.Run(name, func(t *testing.T) {
			now := time.Now().UTC().Truncate(time.Second)

			created, err := r.CreateExpense(ctx, sample("u1", now))
			require.NoError(t, err)
			require.NotEmpty(t, created.ID)

			got, err := r.GetExpense(ctx, "u1", created.ID)
			require.NoError(t, err)
			require.Equal(t, "lunch", got.Title)
			require.Equal(t, core.Food, got.Category)
			require.Equal(t, 250.0, got.AmountBase)

			// Another owner cannot see or delete it.
			_, err = r.GetExpense(ctx, "u2", created.ID)
			require.ErrorIs(t, err, core.ErrNotFound)
			require.ErrorIs(t, r.DeleteExpense(ctx, "u2", created.ID), core.ErrNotFound)

			require.NoError(t, r.DeleteExpense(ctx, "u1", created.ID))
			_, err = r.GetExpense(ctx, "u1", created.ID)
			require.ErrorIs(t, err, core.ErrNotFound)
		})
	}
}

func TestListExpensesNewestFirst(t *testing.T) {
	ctx := context.Background()
	for name, r := range backends(t) {
		t.Run(name, func(t *testing.T) {
			base := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)
			for i := 0; i < 3; i++ {
				_, err := r.CreateExpense(ctx, sample("u1", base.Add(time.Duration(i)*time.Hour)))
				require.NoError(t, err)
			}
			_, err := r.CreateExpense(ctx, sample("u2", base))
			require.NoError(t, err)

			list, err := r.ListExpenses(ctx, "u1")
			require.NoError(t, err)
			require.Len(t, list, 3)
			for i := 1; i < len(list); i++ {
				require.False(t, list[i].CreatedAt.After(list[i-1].CreatedAt))
			}
		})
	}
}

func TestListExpensesSameSecondTieBreak(t *testing.T) {
	ctx := context.Background()
	for name, r := range backends(t) {
		t.Run(name, func(t *testing.T) {
			// Identical timestamps force the ID tie-break; eleven inserts
			// cross the "9" vs "10" boundary where a lexicographic
			// comparison would misorder.
			created := time.Date(2025, 8, 30, 12, 0, 0, 0, time.UTC)
			for i := 0; i < 11; i++ {
				_, err := r.CreateExpense(ctx, sample("u1", created))
				require.NoError(t, err)
			}

			list, err := r.ListExpenses(ctx, "u1")
			require.NoError(t, err)
			require.Len(t, list, 11)
			require.Equal(t, "11", list[0].ID)
			require.Equal(t, "10", list[1].ID)
			require.Equal(t, "1", list[10].ID)
		})
	}
}

func TestPreferencesDefaultsAndUpsert(t *testing.T) {
	ctx := context.Background()
	for name, r := range backends(t) {
		t.Run(name, func(t *testing.T) {
			prefs, err := r.GetPreferences(ctx, "u1")
			require.NoError(t, err)
			require.Equal(t, core.DefaultPreferences(), prefs)

			want := core.Preferences{
				MonthlyBudget:        10000,
				PreferredCurrency:    "USD",
				DailyExpenseReminder: true,
			}
			require.NoError(t, r.SavePreferences(ctx, "u1", want))
			require.NoError(t, r.SavePreferences(ctx, "u2", core.DefaultPreferences()))

			got, err := r.GetPreferences(ctx, "u1")
			require.NoError(t, err)
			require.Equal(t, want, got)

			owners, err := r.OwnersWithDailyReminder(ctx)
			require.NoError(t, err)
			require.Equal(t, []string{"u1"}, owners)
		})
	}
}

func TestNotificationState(t *testing.T) {
	ctx := context.Background()
	for name, r := range backends(t) {
		t.Run(name, func(t *testing.T) {
			day, err := r.LastShown(ctx, "u1", notify.DailyReminder)
			require.NoError(t, err)
			require.Empty(t, day)

			require.NoError(t, r.MarkShown(ctx, "u1", notify.DailyReminder, "2025-08-30"))
			require.NoError(t, r.MarkShown(ctx, "u1", notify.DailyReminder, "2025-08-31"))

			day, err = r.LastShown(ctx, "u1", notify.DailyReminder)
			require.NoError(t, err)
			require.Equal(t, "2025-08-31", day)

			// Kinds are tracked independently.
			day, err = r.LastShown(ctx, "u1", notify.BudgetAlert)
			require.NoError(t, err)
			require.Empty(t, day)
		})
	}
}

func TestExportQueue(t *testing.T) {
	ctx := context.Background()
	for name, r := range backends(t) {
		t.Run(name, func(t *testing.T) {
			now := time.Now().UTC()
			_, err := r.CreateExpense(ctx, sample("u1", now))
			require.NoError(t, err)
			_, err = r.CreateExpense(ctx, sample("u1", now))
			require.NoError(t, err)

			pending, err := r.GetPendingExports(ctx, 10)
			require.NoError(t, err)
			require.Len(t, pending, 2)

			require.NoError(t, r.MarkExportError(ctx, pending[1].ExpenseID))
			require.NoError(t, r.MarkExported(ctx, pending[0].ExpenseID))

			pending, err = r.GetPendingExports(ctx, 10)
			require.NoError(t, err)
			require.Len(t, pending, 1)
			require.Equal(t, 1, pending[0].Attempts)
		})
	}
}
