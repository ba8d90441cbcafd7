package events

import (
	"encoding/json"
	"time"

	"github.com/nkathuria/settleup/internal/models"
)

// ExpenseCreatedMessage announces a newly recorded expense to downstream
// consumers (exports, notifications). Amounts travel as decimal strings.
type ExpenseCreatedMessage struct {
	ExpenseID    string    `json:"expense_id"`
	GroupID      string    `json:"group_id"`
	PayerID      string    `json:"payer_id"`
	Total        string    `json:"total"`
	Participants []string  `json:"participants"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewExpenseCreatedMessage builds the message for a persisted expense.
func NewExpenseCreatedMessage(expense *models.Expense) *ExpenseCreatedMessage {
	return &ExpenseCreatedMessage{
		ExpenseID:    expense.ID,
		GroupID:      expense.GroupID,
		PayerID:      expense.PayerID,
		Total:        expense.Total.String(),
		Participants: expense.Participants(),
		Timestamp:    time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *ExpenseCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}
