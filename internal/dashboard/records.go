// Package dashboard derives the display views from a list of expenses:
// date buckets, per-day sums, per-category totals and budget usage.
package dashboard

import (
	"github.com/shopspring/decimal"

	"spendview/internal/core"
)

// Entry is an expense whose amount parsed successfully.
type Entry struct {
	core.Expense
	Value decimal.Decimal
}

// Parse splits records into usable entries and diagnostics for records whose
// amount is not a number. Order is preserved.
func Parse(records []core.Expense) ([]Entry, []core.Diagnostic) {
	entries := make([]Entry, 0, len(records))
	var diags []core.Diagnostic
	for _, r := range records {
		v, err := core.ParseAmount(r.Amount)
		if err != nil {
			diags = append(diags, core.NewDiagnostic(r.ID, core.FieldAmount, r.Amount, err))
			continue
		}
		entries = append(entries, Entry{Expense: r, Value: v})
	}
	return entries, diags
}

// Total sums the entry amounts.
func Total(entries []Entry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Value)
	}
	return total
}
