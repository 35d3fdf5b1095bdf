package storage

const (
	selectExpenses = `
SELECT id, created_at, updated_at, category_id, description, amount, payment_type_id, user_id
FROM expenses
ORDER BY created_at DESC
`

	insertExpense = `
INSERT INTO expenses (
	id, created_at, updated_at, category_id, description, amount, payment_type_id, user_id
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`
)
