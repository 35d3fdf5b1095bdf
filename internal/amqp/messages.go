package amqp

import (
	"encoding/json"
	"time"
)

// ExpensesChangedMessage tells consumers that the expense data changed and
// the dashboard should reload. It carries no payload; consumers refetch.
type ExpensesChangedMessage struct {
	Source    string    `json:"source"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewExpensesChangedMessage(source, reason string) *ExpensesChangedMessage {
	return &ExpensesChangedMessage{
		Source:    source,
		Reason:    reason,
		Timestamp: time.Now(),
	}
}

func (m *ExpensesChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExpensesChangedMessageFromJSON(data []byte) (*ExpensesChangedMessage, error) {
	var msg ExpensesChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
