package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseField(t *testing.T) {
	for _, f := range Fields() {
		got, err := ParseField(string(f))
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}

	_, err := ParseField("merchant")
	assert.ErrorIs(t, err, ErrUnknownField)
	_, err = ParseField("Category")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestExpenseFieldText(t *testing.T) {
	ts := time.Date(2025, 7, 16, 10, 30, 0, 0, time.UTC)
	e := Expense{
		ID:          "e1",
		CreatedAt:   ts,
		UpdatedAt:   ts.Add(time.Hour),
		Category:    CategoryTools,
		PaymentType: PaymentCard,
		Description: "drill",
		Amount:      "4500.50",
		UserID:      42,
	}

	cases := map[Field]string{
		FieldID:          "e1",
		FieldCreatedAt:   "2025-07-16T10:30:00Z",
		FieldUpdatedAt:   "2025-07-16T11:30:00Z",
		FieldCategory:    "инструменты",
		FieldPaymentType: "карта",
		FieldDescription: "drill",
		FieldAmount:      "4500.50",
		FieldUserID:      "42",
	}
	for f, want := range cases {
		got, ok := e.FieldText(f)
		assert.True(t, ok, f)
		assert.Equal(t, want, got, f)
	}

	_, ok := e.FieldText(Field("merchant"))
	assert.False(t, ok)
}

func TestExpenseFieldTextKeepsFractionalSeconds(t *testing.T) {
	cases := []struct {
		name string
		at   time.Time
		want string
	}{
		{"whole seconds", time.Date(2025, 7, 16, 10, 0, 0, 0, time.UTC), "2025-07-16T10:00:00Z"},
		{"microseconds", time.Date(2025, 7, 16, 10, 0, 0, 123456000, time.UTC), "2025-07-16T10:00:00.123456Z"},
		{"milliseconds with offset", time.Date(2025, 7, 16, 10, 0, 0, 500000000, time.FixedZone("MSK", 3*60*60)), "2025-07-16T10:00:00.5+03:00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := Expense{CreatedAt: tc.at, UpdatedAt: tc.at}
			got, ok := e.FieldText(FieldCreatedAt)
			require.True(t, ok)
			assert.Equal(t, tc.want, got)
			got, _ = e.FieldText(FieldUpdatedAt)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDefaultCategories(t *testing.T) {
	cats := DefaultCategories()
	require.Len(t, cats, 5)
	for i, c := range cats {
		assert.Equal(t, i+1, c.ID)
	}

	name, ok := CategoryName(2)
	assert.True(t, ok)
	assert.Equal(t, CategoryLabor, name)
	_, ok = CategoryName(9)
	assert.False(t, ok)

	name, ok = PaymentTypeName(1)
	assert.True(t, ok)
	assert.Equal(t, PaymentCash, name)
	_, ok = PaymentTypeName(0)
	assert.False(t, ok)
}
