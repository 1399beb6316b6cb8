package notify

import (
	"context"
	"fmt"
	"time"
)

// StateStore persists the last delivery day per owner and alert kind. Only a
// single day key is kept, never a history; the calendar resets it naturally.
type StateStore interface {
	LastShown(ctx context.Context, ownerID string, kind AlertKind) (string, error)
	MarkShown(ctx context.Context, ownerID string, kind AlertKind, dayKey string) error
}

// Gate evaluates delivery policies against persisted state.
type Gate struct {
	store StateStore
}

func NewGate(store StateStore) *Gate {
	return &Gate{store: store}
}

// ShouldFireDailyReminder reports whether the end-of-day recap may be shown
// to the owner right now. Repeated evaluation after RecordShown within the
// same day returns false.
func (g *Gate) ShouldFireDailyReminder(ctx context.Context, ownerID string, now time.Time) (bool, error) {
	return g.ShouldFire(ctx, ownerID, DailyReminder, now)
}

// ShouldFire applies the registered policy for kind.
func (g *Gate) ShouldFire(ctx context.Context, ownerID string, kind AlertKind, now time.Time) (bool, error) {
	policy, err := PolicyFor(kind)
	if err != nil {
		return false, err
	}
	last, err := g.store.LastShown(ctx, ownerID, kind)
	if err != nil {
		return false, fmt.Errorf("load last shown state: %w", err)
	}
	return policy.ShouldFire(now, last), nil
}

// RecordShown persists today's day key for the daily reminder. Call it
// immediately after a reminder is delivered.
func (g *Gate) RecordShown(ctx context.Context, ownerID string, now time.Time) error {
	return g.RecordShownKind(ctx, ownerID, DailyReminder, now)
}

// RecordShownKind persists the delivery day for an arbitrary alert kind.
func (g *Gate) RecordShownKind(ctx context.Context, ownerID string, kind AlertKind, now time.Time) error {
	if err := g.store.MarkShown(ctx, ownerID, kind, now.Format("2006-01-02")); err != nil {
		return fmt.Errorf("persist shown state: %w", err)
	}
	return nil
}
