package storage

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"kharcha/internal/core"
	"kharcha/internal/notify"
)

// MemoryRepository is an in-process repository with the same surface as the
// SQLite one. Used for tests and for running without a database.
type MemoryRepository struct {
	mu       sync.Mutex
	nextID   int64
	expenses map[string]core.ExpenseRecord
	prefs    map[string]core.Preferences
	shown    map[string]string
	pending  map[int64]PendingExport
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		nextID:   1,
		expenses: make(map[string]core.ExpenseRecord),
		prefs:    make(map[string]core.Preferences),
		shown:    make(map[string]string),
		pending:  make(map[int64]PendingExport),
	}
}

func (m *MemoryRepository) Close() error { return nil }

func (m *MemoryRepository) CreateExpense(_ context.Context, e core.ExpenseRecord) (core.ExpenseRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	e.ID = strconv.FormatInt(id, 10)
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	m.expenses[e.ID] = e
	m.pending[id] = PendingExport{ExpenseID: id, OwnerID: e.OwnerID}
	return e, nil
}

func (m *MemoryRepository) DeleteExpense(_ context.Context, ownerID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.expenses[id]
	if !ok || e.OwnerID != ownerID {
		return core.ErrNotFound
	}
	delete(m.expenses, id)
	if numID, err := strconv.ParseInt(id, 10, 64); err == nil {
		delete(m.pending, numID)
	}
	return nil
}

func (m *MemoryRepository) GetExpense(_ context.Context, ownerID, id string) (core.ExpenseRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.expenses[id]
	if !ok || e.OwnerID != ownerID {
		return core.ExpenseRecord{}, core.ErrNotFound
	}
	return e, nil
}

func (m *MemoryRepository) ListExpenses(_ context.Context, ownerID string) ([]core.ExpenseRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []core.ExpenseRecord
	for _, e := range m.expenses {
		if e.OwnerID == ownerID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		// IDs are numeric; comparing them as strings would put "9" after
		// "10". This keeps the ordering identical to the SQLite backend.
		return numericID(out[i].ID) > numericID(out[j].ID)
	})
	return out, nil
}

func numericID(id string) int64 {
	n, _ := strconv.ParseInt(id, 10, 64)
	return n
}

func (m *MemoryRepository) GetPreferences(_ context.Context, ownerID string) (core.Preferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.prefs[ownerID]; ok {
		return p, nil
	}
	return core.DefaultPreferences(), nil
}

func (m *MemoryRepository) SavePreferences(_ context.Context, ownerID string, p core.Preferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs[ownerID] = p
	return nil
}

func (m *MemoryRepository) OwnersWithDailyReminder(_ context.Context) ([]string, error) {
	return m.ownersWhere(func(p core.Preferences) bool { return p.DailyExpenseReminder })
}

func (m *MemoryRepository) OwnersWithBudgetAlert(_ context.Context) ([]string, error) {
	return m.ownersWhere(func(p core.Preferences) bool { return p.MonthlyBudgetAlert })
}

func (m *MemoryRepository) ownersWhere(match func(core.Preferences) bool) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var owners []string
	for id, p := range m.prefs {
		if match(p) {
			owners = append(owners, id)
		}
	}
	sort.Strings(owners)
	return owners, nil
}

func (m *MemoryRepository) LastShown(_ context.Context, ownerID string, kind notify.AlertKind) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.shown[ownerID+"/"+string(kind)], nil
}

func (m *MemoryRepository) MarkShown(_ context.Context, ownerID string, kind notify.AlertKind, dayKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shown[ownerID+"/"+string(kind)] = dayKey
	return nil
}

func (m *MemoryRepository) GetPendingExports(_ context.Context, limit int) ([]PendingExport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []PendingExport
	for _, p := range m.pending {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpenseID < out[j].ExpenseID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryRepository) MarkExported(_ context.Context, expenseID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pending, expenseID)
	return nil
}

func (m *MemoryRepository) MarkExportError(_ context.Context, expenseID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.pending[expenseID]; ok {
		p.Attempts++
		m.pending[expenseID] = p
	}
	return nil
}
