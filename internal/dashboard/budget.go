package dashboard

import "github.com/shopspring/decimal"

// BudgetStatus compares spend against the budget limit. Values are not
// clamped: overspending gives a negative Remaining and PercentRemaining.
type BudgetStatus struct {
	Limit            float64 `json:"limit"`
	Spent            float64 `json:"spent"`
	Remaining        float64 `json:"remaining"`
	PercentRemaining float64 `json:"percentRemaining"`
}

// Budget computes remaining = limit - spent and
// percentRemaining = 100 - spent/limit*100. A zero limit gives 0 percent.
func Budget(spent, limit decimal.Decimal) BudgetStatus {
	pct := 0.0
	if !limit.IsZero() {
		pct = decimal.NewFromInt(100).Sub(spent.Div(limit).Mul(decimal.NewFromInt(100))).InexactFloat64()
	}
	return BudgetStatus{
		Limit:            limit.InexactFloat64(),
		Spent:            spent.InexactFloat64(),
		Remaining:        limit.Sub(spent).InexactFloat64(),
		PercentRemaining: pct,
	}
}
