package dashboard

import (
	"sort"

	"github.com/shopspring/decimal"

	"spendview/internal/category"
	"spendview/internal/format"
)

// CategoryTotal is the share of one category in the filtered spend.
type CategoryTotal struct {
	Category         string  `json:"category"`
	Name             string  `json:"name"`
	Amount           float64 `json:"amount"`
	AmountFormatted  string  `json:"amountFormatted"`
	Percent          float64 `json:"percent"`
	PercentFormatted string  `json:"percentFormatted"`
	Color            string  `json:"color"`
	HexColor         string  `json:"hexColor"`
	Icon             string  `json:"icon,omitempty"`
}

// Percentage returns part as a percentage of total, or 0 when total is zero.
func Percentage(part, total decimal.Decimal) float64 {
	if total.IsZero() {
		return 0
	}
	return part.Div(total).Mul(decimal.NewFromInt(100)).InexactFloat64()
}

// AggregateByCategory sums entries per category name and returns the totals
// sorted by amount, largest first. Equal amounts keep the order in which their
// categories were first seen.
func AggregateByCategory(entries []Entry, reg *category.Registry, f *format.Formatter) []CategoryTotal {
	var (
		names []string
		sums  = make(map[string]decimal.Decimal)
		total = decimal.Zero
	)
	for _, e := range entries {
		sum, ok := sums[e.Category]
		if !ok {
			names = append(names, e.Category)
		}
		sums[e.Category] = sum.Add(e.Value)
		total = total.Add(e.Value)
	}

	out := make([]CategoryTotal, 0, len(names))
	for _, name := range names {
		sum := sums[name]
		amount := sum.InexactFloat64()
		pct := Percentage(sum, total)
		color := reg.ColorForName(name)
		out = append(out, CategoryTotal{
			Category:         name,
			Name:             f.Capitalize(name),
			Amount:           amount,
			AmountFormatted:  f.Currency(amount),
			Percent:          pct,
			PercentFormatted: format.Percent(pct, format.DefaultPercentPrecision),
			Color:            color,
			HexColor:         reg.HexColor(color),
			Icon:             reg.IconForName(name),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return sums[out[i].Category].GreaterThan(sums[out[j].Category])
	})
	return out
}
