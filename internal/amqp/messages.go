package amqp

import (
	"encoding/json"
	"time"
)

// Event kinds carried on the expense events queue.
const (
	EventCreated = "created"
	EventDeleted = "deleted"
)

// ExpenseEventMessage is a lightweight pointer to an expense change.
// It carries only identifiers; the worker fetches the full record from the
// repository so the queue never holds stale amounts.
type ExpenseEventMessage struct {
	Kind      string    `json:"kind"`
	ExpenseID int64     `json:"expense_id"`
	OwnerID   string    `json:"owner_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewExpenseEventMessage creates an event message for an expense change
func NewExpenseEventMessage(kind string, expenseID int64, ownerID string) *ExpenseEventMessage {
	return &ExpenseEventMessage{
		Kind:      kind,
		ExpenseID: expenseID,
		OwnerID:   ownerID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ExpenseEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseEventMessageFromJSON creates a message from JSON bytes
func ExpenseEventMessageFromJSON(data []byte) (*ExpenseEventMessage, error) {
	var msg ExpenseEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
