package amqp

import (
	"encoding/json"
	"time"

	"cashflow/internal/core"

	"github.com/google/uuid"
)

// ExpenseRecordedMessage tells the alert worker that a user's ledger changed.
// It carries only ids; the worker reads current totals from the store.
type ExpenseRecordedMessage struct {
	MessageID string    `json:"message_id"`
	ExpenseID int64     `json:"expense_id"`
	UserID    int64     `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewExpenseRecordedMessage creates a message with a fresh id
func NewExpenseRecordedMessage(expenseID, userID int64) *ExpenseRecordedMessage {
	return &ExpenseRecordedMessage{
		MessageID: uuid.NewString(),
		ExpenseID: expenseID,
		UserID:    userID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ExpenseRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseRecordedMessageFromJSON creates a message from JSON bytes
func ExpenseRecordedMessageFromJSON(data []byte) (*ExpenseRecordedMessage, error) {
	var msg ExpenseRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ThresholdBreachedMessage is published once per transition into breach.
type ThresholdBreachedMessage struct {
	MessageID       string     `json:"message_id"`
	UserID          int64      `json:"user_id"`
	ThresholdID     int64      `json:"threshold_id"`
	CategoryID      *int64     `json:"category_id,omitempty"`
	CategoryName    string     `json:"category_name,omitempty"`
	Limit           core.Money `json:"limit"`
	CurrentSpending core.Money `json:"current_spending"`
	UsagePercentage float64    `json:"usage_percentage"`
	Message         string     `json:"message"`
	Timestamp       time.Time  `json:"timestamp"`
}

// NewThresholdBreachedMessage builds the message for a breach alert
func NewThresholdBreachedMessage(a core.Alert) *ThresholdBreachedMessage {
	return &ThresholdBreachedMessage{
		MessageID:       uuid.NewString(),
		UserID:          a.UserID,
		ThresholdID:     a.ThresholdID,
		CategoryID:      a.CategoryID,
		CategoryName:    a.CategoryName,
		Limit:           a.Limit,
		CurrentSpending: a.CurrentSpending,
		UsagePercentage: a.UsagePercentage,
		Message:         a.Message,
		Timestamp:       a.CreatedAt,
	}
}

// ToJSON converts the message to JSON bytes
func (m *ThresholdBreachedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ThresholdBreachedMessageFromJSON creates a message from JSON bytes
func ThresholdBreachedMessageFromJSON(data []byte) (*ThresholdBreachedMessage, error) {
	var msg ThresholdBreachedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
