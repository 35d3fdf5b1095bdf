package dashboard

import (
	"time"

	"github.com/shopspring/decimal"

	"spendview/internal/category"
	"spendview/internal/core"
	"spendview/internal/filter"
	"spendview/internal/format"
)

// View is the full set of display values for one record list and filter.
type View struct {
	GroupedByDate                   Buckets             `json:"groupedByDate"`
	AmountsByDate                   DayTotals           `json:"groupedAmountsByDate"`
	Categories                      []CategoryTotal     `json:"categoryAggregates"`
	TotalSpent                      float64             `json:"totalSpent"`
	TotalSpentFormatted             string              `json:"totalSpentFormatted"`
	Budget                          BudgetStatus        `json:"budget"`
	BudgetRemainingFormatted        string              `json:"budgetRemainingFormatted"`
	BudgetPercentRemainingFormatted string              `json:"budgetPercentRemainingFormatted"`
	Filter                          []filter.Constraint `json:"filter"`
	Count                           int                 `json:"count"`
	Diagnostics                     []core.Diagnostic   `json:"diagnostics,omitempty"`
	Error                           string              `json:"error,omitempty"`
	GeneratedAt                     time.Time           `json:"generatedAt"`
}

// Builder derives views. Now defaults to time.Now; when Location is set the
// current time is converted to it before bucketing.
type Builder struct {
	Registry  *category.Registry
	Formatter *format.Formatter
	Budget    decimal.Decimal
	Location  *time.Location
	Now       func() time.Time
}

// Build filters records with cs and derives every view from the result.
// Records with a malformed amount are left out and reported in Diagnostics.
func (b *Builder) Build(records []core.Expense, cs []filter.Constraint) View {
	now := b.now()
	filtered := filter.Apply(records, cs)
	entries, diags := Parse(filtered)
	spent := Total(entries)
	budget := Budget(spent, b.Budget)

	if cs == nil {
		cs = []filter.Constraint{}
	}
	return View{
		GroupedByDate:                   GroupByDate(entries, now, b.Formatter),
		AmountsByDate:                   SumByDate(entries, now, b.Formatter),
		Categories:                      AggregateByCategory(entries, b.Registry, b.Formatter),
		TotalSpent:                      budget.Spent,
		TotalSpentFormatted:             b.Formatter.Currency(budget.Spent),
		Budget:                          budget,
		BudgetRemainingFormatted:        b.Formatter.Currency(budget.Remaining),
		BudgetPercentRemainingFormatted: format.Percent(budget.PercentRemaining, format.DefaultPercentPrecision),
		Filter:                          cs,
		Count:                           len(entries),
		Diagnostics:                     diags,
		GeneratedAt:                     now,
	}
}

func (b *Builder) now() time.Time {
	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	if b.Location != nil {
		return now().In(b.Location)
	}
	return now()
}

// Day is the current reporting day as YYYY-MM-DD. Bucket labels depend on
// it, so cached views must be keyed by it.
func (b *Builder) Day() string {
	return b.now().Format(time.DateOnly)
}

// AmountsByDateMap returns the formatted per-label totals as a lookup.
func (v View) AmountsByDateMap() map[string]string {
	return v.AmountsByDate.Formatted()
}
