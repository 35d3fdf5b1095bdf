package core

import (
	"errors"
	"strconv"
	"time"
)

type (
	// Expense is a single spending record as delivered by the upstream source.
	// Amount keeps the transported decimal text; it is parsed at aggregation time.
	Expense struct {
		ID          string    `json:"id"`
		CreatedAt   time.Time `json:"createdAt"`
		UpdatedAt   time.Time `json:"updatedAt"`
		Category    string    `json:"category"`
		PaymentType string    `json:"paymentType"`
		Description string    `json:"description"`
		Amount      string    `json:"amount"`
		UserID      int64     `json:"userId"`
	}

	Category struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}

	// Field names a filterable Expense attribute.
	Field string
)

const (
	FieldID          Field = "id"
	FieldCreatedAt   Field = "createdAt"
	FieldUpdatedAt   Field = "updatedAt"
	FieldCategory    Field = "category"
	FieldPaymentType Field = "paymentType"
	FieldDescription Field = "description"
	FieldAmount      Field = "amount"
	FieldUserID      Field = "userId"
)

var ErrUnknownField = errors.New("unknown field")

// Fields lists every filterable field in declaration order.
func Fields() []Field {
	return []Field{
		FieldID, FieldCreatedAt, FieldUpdatedAt, FieldCategory,
		FieldPaymentType, FieldDescription, FieldAmount, FieldUserID,
	}
}

// ParseField maps a wire name onto a Field.
func ParseField(name string) (Field, error) {
	for _, f := range Fields() {
		if string(f) == name {
			return f, nil
		}
	}
	return "", ErrUnknownField
}

func (f Field) String() string {
	return string(f)
}

// FieldText returns the textual form of field f used for equality filtering.
// Timestamps are rendered as RFC 3339 with any fractional seconds. The second result is false for
// fields outside the known set.
func (e Expense) FieldText(f Field) (string, bool) {
	switch f {
	case FieldID:
		return e.ID, true
	case FieldCreatedAt:
		return e.CreatedAt.Format(time.RFC3339Nano), true
	case FieldUpdatedAt:
		return e.UpdatedAt.Format(time.RFC3339Nano), true
	case FieldCategory:
		return e.Category, true
	case FieldPaymentType:
		return e.PaymentType, true
	case FieldDescription:
		return e.Description, true
	case FieldAmount:
		return e.Amount, true
	case FieldUserID:
		return strconv.FormatInt(e.UserID, 10), true
	default:
		return "", false
	}
}

// Category and payment type names used by the expense bot.
const (
	CategoryMaterials  = "материалы"
	CategoryLabor      = "работа/оплата мастерам"
	CategoryTools      = "инструменты"
	CategoryFurniture  = "мебель и техника"
	CategoryUnexpected = "прочее/непредвиденное"

	PaymentCash = "наличные"
	PaymentCard = "карта"
)

// DefaultCategories returns the fixed category list for sources that do not
// publish one.
func DefaultCategories() []Category {
	return []Category{
		{ID: 1, Name: CategoryMaterials},
		{ID: 2, Name: CategoryLabor},
		{ID: 3, Name: CategoryTools},
		{ID: 4, Name: CategoryFurniture},
		{ID: 5, Name: CategoryUnexpected},
	}
}

// CategoryName resolves a category id against DefaultCategories.
func CategoryName(id int) (string, bool) {
	for _, c := range DefaultCategories() {
		if c.ID == id {
			return c.Name, true
		}
	}
	return "", false
}

// PaymentTypeName resolves a payment type id used by the bot database.
func PaymentTypeName(id int) (string, bool) {
	switch id {
	case 1:
		return PaymentCash, true
	case 2:
		return PaymentCard, true
	default:
		return "", false
	}
}
