package httpapi

import (
	"bytes"
	"encoding/json"
	"time"

	"spendview/internal/core"
)

type wireExpense struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Category    string    `json:"category"`
	PaymentType string    `json:"paymentType"`
	Description string    `json:"description"`
	Amount      amount    `json:"amount"`
	UserID      int64     `json:"userId"`
}

func (w wireExpense) toCore() core.Expense {
	return core.Expense{
		ID:          w.ID,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
		Category:    w.Category,
		PaymentType: w.PaymentType,
		Description: w.Description,
		Amount:      string(w.Amount),
		UserID:      w.UserID,
	}
}

// amount accepts both quoted and bare JSON numbers and keeps the text as
// sent. Malformed values are kept too; they are rejected per record later.
type amount string

func (a *amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*a = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = amount(s)
		return nil
	}
	*a = amount(b)
	return nil
}
