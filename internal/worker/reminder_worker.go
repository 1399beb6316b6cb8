package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"kharcha/internal/budget"
	"kharcha/internal/core"
	"kharcha/internal/currency"
	"kharcha/internal/log"
	"kharcha/internal/notify"
	"kharcha/internal/period"
	"kharcha/internal/stats"
)

// ReminderStore is the repository surface the reminder worker needs.
type ReminderStore interface {
	OwnersWithDailyReminder(ctx context.Context) ([]string, error)
	OwnersWithBudgetAlert(ctx context.Context) ([]string, error)
	ListExpenses(ctx context.Context, ownerID string) ([]core.ExpenseRecord, error)
	GetPreferences(ctx context.Context, ownerID string) (core.Preferences, error)
}

// Notifier delivers a rendered alert to an owner.
type Notifier interface {
	Notify(ctx context.Context, ownerID string, kind notify.AlertKind, message string) error
}

// LogNotifier writes alerts to the structured log. Stands in until a real
// delivery channel is wired.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, ownerID string, kind notify.AlertKind, message string) error {
	slog.InfoContext(ctx, "Notification",
		log.FieldOwnerID, ownerID,
		log.FieldAlertKind, string(kind),
		"message", message)
	return nil
}

// ReminderWorker evaluates notification conditions on a schedule. The cron
// runner invokes Run; all gating decisions go through the policy registry.
type ReminderWorker struct {
	store    ReminderStore
	gate     *notify.Gate
	notifier Notifier
	nowFn    func() time.Time
}

func NewReminderWorker(store ReminderStore, gate *notify.Gate, notifier Notifier) *ReminderWorker {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &ReminderWorker{
		store:    store,
		gate:     gate,
		notifier: notifier,
		nowFn:    time.Now,
	}
}

// Run evaluates daily reminders and budget alerts for all opted-in owners.
func (w *ReminderWorker) Run(ctx context.Context) error {
	now := w.nowFn()

	if err := w.runDailyReminders(ctx, now); err != nil {
		return err
	}
	return w.runBudgetAlerts(ctx, now)
}

func (w *ReminderWorker) runDailyReminders(ctx context.Context, now time.Time) error {
	owners, err := w.store.OwnersWithDailyReminder(ctx)
	if err != nil {
		return fmt.Errorf("list reminder owners: %w", err)
	}

	for _, ownerID := range owners {
		ok, err := w.gate.ShouldFireDailyReminder(ctx, ownerID, now)
		if err != nil {
			slog.ErrorContext(ctx, "Reminder gate check failed", "owner_id", ownerID, "error", err)
			continue
		}
		if !ok {
			continue
		}

		msg, err := w.dailyMessage(ctx, ownerID, now)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to build daily reminder", "owner_id", ownerID, "error", err)
			continue
		}

		if err := w.notifier.Notify(ctx, ownerID, notify.DailyReminder, msg); err != nil {
			slog.ErrorContext(ctx, "Failed to deliver daily reminder", "owner_id", ownerID, "error", err)
			continue
		}
		if err := w.gate.RecordShown(ctx, ownerID, now); err != nil {
			slog.ErrorContext(ctx, "Failed to record reminder delivery", "owner_id", ownerID, "error", err)
		}
	}
	return nil
}

func (w *ReminderWorker) dailyMessage(ctx context.Context, ownerID string, now time.Time) (string, error) {
	records, err := w.store.ListExpenses(ctx, ownerID)
	if err != nil {
		return "", fmt.Errorf("list expenses: %w", err)
	}
	prefs, err := w.store.GetPreferences(ctx, ownerID)
	if err != nil {
		return "", fmt.Errorf("load preferences: %w", err)
	}

	report := stats.Compute(records, period.FromTime(now))
	code := currency.Code(prefs.PreferredCurrency)
	shown := currency.Format(report.TotalToday, code)

	if report.TotalToday == 0 {
		return "No expenses logged today. Anything to add?", nil
	}
	return fmt.Sprintf("You spent %s today.", shown), nil
}

func (w *ReminderWorker) runBudgetAlerts(ctx context.Context, now time.Time) error {
	owners, err := w.store.OwnersWithBudgetAlert(ctx)
	if err != nil {
		return fmt.Errorf("list alert owners: %w", err)
	}

	today := period.FromTime(now)
	for _, ownerID := range owners {
		prefs, err := w.store.GetPreferences(ctx, ownerID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to load preferences", "owner_id", ownerID, "error", err)
			continue
		}
		if prefs.MonthlyBudget <= 0 {
			continue
		}

		records, err := w.store.ListExpenses(ctx, ownerID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to list expenses", "owner_id", ownerID, "error", err)
			continue
		}

		spent := stats.MonthTotal(records, today.Year, today.Month)
		if !budget.ShouldWarn(spent, prefs.MonthlyBudget) {
			continue
		}

		ok, err := w.gate.ShouldFire(ctx, ownerID, notify.BudgetAlert, now)
		if err != nil {
			slog.ErrorContext(ctx, "Budget alert gate check failed", "owner_id", ownerID, "error", err)
			continue
		}
		if !ok {
			continue
		}

		pct := budget.UsagePercent(spent, prefs.MonthlyBudget)
		msg := fmt.Sprintf("You have used %d%% of your monthly budget.", pct)
		if err := w.notifier.Notify(ctx, ownerID, notify.BudgetAlert, msg); err != nil {
			slog.ErrorContext(ctx, "Failed to deliver budget alert", "owner_id", ownerID, "error", err)
			continue
		}
		if err := w.gate.RecordShownKind(ctx, ownerID, notify.BudgetAlert, now); err != nil {
			slog.ErrorContext(ctx, "Failed to record alert delivery", "owner_id", ownerID, "error", err)
		}
	}
	return nil
}
