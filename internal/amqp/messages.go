package amqp

import (
	"encoding/json"
	"time"

	"bilancio/internal/core"
)

// BudgetAlertMessage is the wire form of one budget alert. Amounts travel as
// integer cents; consumers format for display themselves.
type BudgetAlertMessage struct {
	UserID         int64     `json:"user_id"`
	BudgetID       int64     `json:"budget_id"`
	BudgetName     string    `json:"budget_name"`
	CategoryName   string    `json:"category_name,omitempty"`
	BudgetCents    int64     `json:"budget_cents"`
	SpentCents     int64     `json:"spent_cents"`
	RemainingCents int64     `json:"remaining_cents"`
	AlertType      string    `json:"alert_type"`
	Timestamp      time.Time `json:"timestamp"`
}

// NewBudgetAlertMessage wraps a domain alert for publishing.
func NewBudgetAlertMessage(userID int64, alert core.BudgetAlert) *BudgetAlertMessage {
	return &BudgetAlertMessage{
		UserID:         userID,
		BudgetID:       alert.BudgetID,
		BudgetName:     alert.BudgetName,
		CategoryName:   alert.CategoryName,
		BudgetCents:    alert.BudgetAmount.Cents,
		SpentCents:     alert.SpentAmount.Cents,
		RemainingCents: alert.Remaining.Cents,
		AlertType:      alert.AlertType,
		Timestamp:      time.Now(),
	}
}

func (m *BudgetAlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func BudgetAlertMessageFromJSON(data []byte) (*BudgetAlertMessage, error) {
	var msg BudgetAlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
