package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"kharcha/internal/core"
	"kharcha/internal/notify"

	_ "modernc.org/sqlite"
)

// PendingExport is the minimal row the export worker needs to pick up an
// expense that has not reached the report sheet yet.
type PendingExport struct {
	ExpenseID int64
	OwnerID   string
	Attempts  int
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateExpense persists a record and enqueues it for export in the same
// transaction. The returned record carries the assigned ID.
func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.ExpenseRecord) (core.ExpenseRecord, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO expenses (owner_id, title, amount_base, original_amount, original_currency, category, payment_method, date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.OwnerID, e.Title, e.AmountBase, e.OriginalAmount, e.OriginalCurrency,
		string(e.Category), e.PaymentMethod, e.Date, createdAt.Unix())
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("insert expense: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("last insert id: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO export_state (expense_id, owner_id, status, attempts, updated_at)
		VALUES (?, ?, 'pending', 0, ?)`,
		id, e.OwnerID, time.Now().Unix()); err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("enqueue export: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("commit transaction: %w", err)
	}

	e.ID = strconv.FormatInt(id, 10)
	e.CreatedAt = createdAt

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", e.ID,
		"owner_id", e.OwnerID,
		"amount_base", e.AmountBase,
		"category", e.Category)

	return e, nil
}

// DeleteExpense removes an owner's record. Deleting someone else's record
// reports core.ErrNotFound just like a missing one.
func (r *SQLiteRepository) DeleteExpense(ctx context.Context, ownerID, id string) error {
	numID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return core.ErrNotFound
	}

	res, err := r.db.ExecContext(ctx,
		`DELETE FROM expenses WHERE id = ? AND owner_id = ?`, numID, ownerID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}

	// SQLite only enforces cascades with foreign keys on; clean up directly.
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM export_state WHERE expense_id = ?`, numID); err != nil {
		return fmt.Errorf("delete export state: %w", err)
	}
	return nil
}

// GetExpense retrieves a single owner-scoped record by ID.
func (r *SQLiteRepository) GetExpense(ctx context.Context, ownerID, id string) (core.ExpenseRecord, error) {
	numID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return core.ExpenseRecord{}, core.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, owner_id, title, amount_base, original_amount, original_currency, category, payment_method, date, created_at
		FROM expenses WHERE id = ? AND owner_id = ?`, numID, ownerID)

	rec, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ExpenseRecord{}, core.ErrNotFound
	}
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("get expense: %w", err)
	}
	return rec, nil
}

// ListExpenses returns all of an owner's records, newest first.
func (r *SQLiteRepository) ListExpenses(ctx context.Context, ownerID string) ([]core.ExpenseRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner_id, title, amount_base, original_amount, original_currency, category, payment_method, date, created_at
		FROM expenses WHERE owner_id = ? ORDER BY created_at DESC, id DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.ExpenseRecord
	for rows.Next() {
		rec, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (core.ExpenseRecord, error) {
	var (
		rec       core.ExpenseRecord
		id        int64
		category  string
		createdAt int64
	)
	if err := row.Scan(&id, &rec.OwnerID, &rec.Title, &rec.AmountBase,
		&rec.OriginalAmount, &rec.OriginalCurrency, &category,
		&rec.PaymentMethod, &rec.Date, &createdAt); err != nil {
		return core.ExpenseRecord{}, err
	}
	rec.ID = strconv.FormatInt(id, 10)
	rec.Category = core.Category(category)
	rec.CreatedAt = time.Unix(createdAt, 0).UTC()
	return rec, nil
}

// GetPreferences returns the owner's preferences, or the defaults when the
// owner has never saved any.
func (r *SQLiteRepository) GetPreferences(ctx context.Context, ownerID string) (core.Preferences, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT monthly_budget, preferred_currency, daily_expense_reminder, monthly_budget_alert
		FROM preferences WHERE owner_id = ?`, ownerID)

	var (
		prefs            core.Preferences
		reminder, budget int
	)
	err := row.Scan(&prefs.MonthlyBudget, &prefs.PreferredCurrency, &reminder, &budget)
	if errors.Is(err, sql.ErrNoRows) {
		return core.DefaultPreferences(), nil
	}
	if err != nil {
		return core.Preferences{}, fmt.Errorf("get preferences: %w", err)
	}
	prefs.DailyExpenseReminder = reminder != 0
	prefs.MonthlyBudgetAlert = budget != 0
	return prefs, nil
}

// SavePreferences upserts the owner's full preferences row. Partial-update
// merging happens in the service layer before this is called.
func (r *SQLiteRepository) SavePreferences(ctx context.Context, ownerID string, p core.Preferences) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO preferences (owner_id, monthly_budget, preferred_currency, daily_expense_reminder, monthly_budget_alert)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(owner_id) DO UPDATE SET
			monthly_budget = excluded.monthly_budget,
			preferred_currency = excluded.preferred_currency,
			daily_expense_reminder = excluded.daily_expense_reminder,
			monthly_budget_alert = excluded.monthly_budget_alert`,
		ownerID, p.MonthlyBudget, p.PreferredCurrency,
		boolToInt(p.DailyExpenseReminder), boolToInt(p.MonthlyBudgetAlert))
	if err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

// OwnersWithDailyReminder lists owners who opted into the evening recap.
func (r *SQLiteRepository) OwnersWithDailyReminder(ctx context.Context) ([]string, error) {
	return r.ownersWhere(ctx, "daily_expense_reminder = 1")
}

// OwnersWithBudgetAlert lists owners who opted into budget alerts.
func (r *SQLiteRepository) OwnersWithBudgetAlert(ctx context.Context) ([]string, error) {
	return r.ownersWhere(ctx, "monthly_budget_alert = 1")
}

func (r *SQLiteRepository) ownersWhere(ctx context.Context, cond string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT owner_id FROM preferences WHERE `+cond)
	if err != nil {
		return nil, fmt.Errorf("list owners: %w", err)
	}
	defer rows.Close()

	var owners []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan owner: %w", err)
		}
		owners = append(owners, id)
	}
	return owners, rows.Err()
}

// LastShown implements notify.StateStore.
func (r *SQLiteRepository) LastShown(ctx context.Context, ownerID string, kind notify.AlertKind) (string, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT last_shown_day FROM notification_state WHERE owner_id = ? AND kind = ?`,
		ownerID, string(kind))

	var day string
	err := row.Scan(&day)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get notification state: %w", err)
	}
	return day, nil
}

// MarkShown implements notify.StateStore.
func (r *SQLiteRepository) MarkShown(ctx context.Context, ownerID string, kind notify.AlertKind, dayKey string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notification_state (owner_id, kind, last_shown_day)
		VALUES (?, ?, ?)
		ON CONFLICT(owner_id, kind) DO UPDATE SET last_shown_day = excluded.last_shown_day`,
		ownerID, string(kind), dayKey)
	if err != nil {
		return fmt.Errorf("mark notification shown: %w", err)
	}
	return nil
}

// GetPendingExports returns expenses that have not been exported yet.
func (r *SQLiteRepository) GetPendingExports(ctx context.Context, limit int) ([]PendingExport, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT expense_id, owner_id, attempts FROM export_state
		WHERE status = 'pending' ORDER BY expense_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending exports: %w", err)
	}
	defer rows.Close()

	var out []PendingExport
	for rows.Next() {
		var p PendingExport
		if err := rows.Scan(&p.ExpenseID, &p.OwnerID, &p.Attempts); err != nil {
			return nil, fmt.Errorf("scan pending export: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// MarkExported marks an expense as successfully exported
func (r *SQLiteRepository) MarkExported(ctx context.Context, expenseID int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE export_state SET status = 'exported', updated_at = ? WHERE expense_id = ?`,
		time.Now().Unix(), expenseID)
	if err != nil {
		return fmt.Errorf("mark exported: %w", err)
	}

	slog.InfoContext(ctx, "Expense marked as exported", "expense_id", expenseID)
	return nil
}

// MarkExportError records a failed export attempt
func (r *SQLiteRepository) MarkExportError(ctx context.Context, expenseID int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE export_state SET attempts = attempts + 1, updated_at = ? WHERE expense_id = ?`,
		time.Now().Unix(), expenseID)
	if err != nil {
		return fmt.Errorf("mark export error: %w", err)
	}

	slog.WarnContext(ctx, "Expense export attempt failed", "expense_id", expenseID)
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
