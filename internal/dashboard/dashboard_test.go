package dashboard

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendview/internal/category"
	"spendview/internal/core"
	"spendview/internal/filter"
	"spendview/internal/format"
)

var (
	moscow = time.FixedZone("MSK", 3*60*60)
	now    = time.Date(2025, time.July, 16, 15, 0, 0, 0, moscow)
)

func newBuilder() *Builder {
	reg := category.New(category.DefaultPalette())
	reg.Populate(core.DefaultCategories())
	return &Builder{
		Registry:  reg,
		Formatter: format.New(format.English, "$"),
		Budget:    decimal.NewFromInt(1000),
		Now:       func() time.Time { return now },
	}
}

func expense(id, cat, amount string, at time.Time) core.Expense {
	return core.Expense{ID: id, Category: cat, Amount: amount, CreatedAt: at, Description: "item " + id}
}

func TestLabelFor(t *testing.T) {
	l := format.Russian
	cases := []struct {
		name string
		ts   time.Time
		want string
	}{
		{"now", now, "Сегодня"},
		{"start of today", time.Date(2025, 7, 16, 0, 0, 0, 0, moscow), "Сегодня"},
		{"24h earlier", now.Add(-24 * time.Hour), "Вчера"},
		{"late yesterday", time.Date(2025, 7, 15, 23, 59, 0, 0, moscow), "Вчера"},
		{"two days earlier", now.Add(-48 * time.Hour), "14 июля"},
		{"previous year same day", time.Date(2024, 7, 14, 12, 0, 0, 0, moscow), "14 июля"},
		{"tomorrow", now.Add(24 * time.Hour), "17 июля"},
		// 22:30 UTC on the 15th is 01:30 on the 16th in Moscow.
		{"other zone converted", time.Date(2025, 7, 15, 22, 30, 0, 0, time.UTC), "Сегодня"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, LabelFor(tc.ts, now, l))
		})
	}
}

func TestLabelForMonthBoundary(t *testing.T) {
	first := time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, "Yesterday", LabelFor(time.Date(2025, time.February, 28, 20, 0, 0, 0, time.UTC), first, format.English))
	assert.Equal(t, "27 February", LabelFor(time.Date(2025, time.February, 27, 20, 0, 0, 0, time.UTC), first, format.English))
}

func TestAggregateByCategory(t *testing.T) {
	b := newBuilder()
	records := []core.Expense{
		expense("1", "food", "100", now),
		expense("2", "food", "50", now),
		expense("3", "transport", "50", now),
	}
	entries, diags := Parse(records)
	require.Empty(t, diags)

	got := AggregateByCategory(entries, b.Registry, b.Formatter)
	require.Len(t, got, 2)

	assert.Equal(t, "food", got[0].Category)
	assert.Equal(t, "Food", got[0].Name)
	assert.InDelta(t, 150, got[0].Amount, 1e-9)
	assert.InDelta(t, 75, got[0].Percent, 1e-9)
	assert.Equal(t, "75%", got[0].PercentFormatted)
	assert.Equal(t, "$150", got[0].AmountFormatted)
	assert.Equal(t, category.FallbackColor, got[0].Color)
	assert.Equal(t, category.FallbackHex, got[0].HexColor)
	assert.Empty(t, got[0].Icon)

	assert.Equal(t, "transport", got[1].Category)
	assert.InDelta(t, 50, got[1].Amount, 1e-9)
	assert.Equal(t, "25%", got[1].PercentFormatted)
}

func TestAggregateByCategoryStableTies(t *testing.T) {
	b := newBuilder()
	entries, _ := Parse([]core.Expense{
		expense("1", core.CategoryTools, "30", now),
		expense("2", core.CategoryMaterials, "10", now),
		expense("3", core.CategoryLabor, "20", now),
		expense("4", core.CategoryMaterials, "20", now),
		expense("5", core.CategoryFurniture, "30", now),
	})

	got := AggregateByCategory(entries, b.Registry, b.Formatter)
	names := make([]string, 0, len(got))
	for _, c := range got {
		names = append(names, c.Category)
	}
	assert.Equal(t, []string{
		core.CategoryTools,
		core.CategoryMaterials,
		core.CategoryFurniture,
		core.CategoryLabor,
	}, names)

	assert.Equal(t, "bg-pink-500", got[0].Color)
	assert.Equal(t, "WrenchScrewdriver", got[0].Icon)
	assert.Equal(t, "Инструменты", got[0].Name)
}

func TestAggregateInvariants(t *testing.T) {
	b := newBuilder()
	records := []core.Expense{
		expense("1", "a", "10.10", now),
		expense("2", "b", "20.20", now),
		expense("3", "c", "33.33", now),
		expense("4", "a", "0.01", now),
		expense("5", "d", "7", now),
	}
	entries, _ := Parse(records)
	got := AggregateByCategory(entries, b.Registry, b.Formatter)

	var sumAmount, sumPercent float64
	for _, c := range got {
		sumAmount += c.Amount
		sumPercent += c.Percent
	}
	assert.InDelta(t, 70.64, sumAmount, 1e-6)
	assert.InDelta(t, 100, sumPercent, 0.1)
}

func TestAggregateZeroTotal(t *testing.T) {
	b := newBuilder()
	entries, _ := Parse([]core.Expense{
		expense("1", "refund", "-5", now),
		expense("2", "refund", "5", now),
	})
	got := AggregateByCategory(entries, b.Registry, b.Formatter)
	require.Len(t, got, 1)
	assert.Equal(t, 0.0, got[0].Percent)
	assert.Equal(t, "0%", got[0].PercentFormatted)
	assert.False(t, math.IsNaN(got[0].Percent))
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0.0, Percentage(decimal.NewFromInt(5), decimal.Zero))
	assert.InDelta(t, 33.3333, Percentage(decimal.NewFromInt(1), decimal.NewFromInt(3)), 1e-4)
}

func TestBudget(t *testing.T) {
	cases := []struct {
		name         string
		spent, limit int64
		remaining    float64
		pctRemaining float64
	}{
		{"under", 750, 3000, 2250, 75},
		{"exact", 3000, 3000, 0, 0},
		{"over", 4500, 3000, -1500, -50},
		{"refunds", -300, 3000, 3300, 110},
		{"zero limit", 100, 0, -100, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Budget(decimal.NewFromInt(tc.spent), decimal.NewFromInt(tc.limit))
			assert.InDelta(t, tc.remaining, got.Remaining, 1e-9)
			assert.InDelta(t, tc.pctRemaining, got.PercentRemaining, 1e-9)
		})
	}
}

func TestGroupByDate(t *testing.T) {
	b := newBuilder()
	entries, _ := Parse([]core.Expense{
		expense("1", "food", "10", now),
		expense("2", "food", "1000.5", now.Add(-26*time.Hour)),
		expense("3", "food", "5", now.Add(-time.Hour)),
		expense("4", "food", "7", now.Add(-72*time.Hour)),
	})

	groups := GroupByDate(entries, now, b.Formatter)
	all := groups.All()
	require.Len(t, all, 3)
	assert.Equal(t, "Today", all[0].Label)
	assert.Equal(t, "Yesterday", all[1].Label)
	assert.Equal(t, "13 July", all[2].Label)

	today, ok := groups.Lookup("Today")
	require.True(t, ok)
	require.Len(t, today.Items, 2)
	assert.Equal(t, "1", today.Items[0].ID)
	assert.Equal(t, "3", today.Items[1].ID)
	assert.Equal(t, "Item 1", today.Items[0].Title)
	assert.Equal(t, "$10", today.Items[0].Amount)

	_, ok = groups.Lookup("12 July")
	assert.False(t, ok)

	sums := SumByDate(entries, now, b.Formatter)
	assert.Equal(t, 3, sums.Len())
	day, ok := sums.Lookup("Today")
	require.True(t, ok)
	assert.InDelta(t, 15, day.Amount, 1e-9)
	assert.Equal(t, "$15", day.Formatted)
	assert.Equal(t, "$1,000.5", sums.Formatted()["Yesterday"])
	assert.Equal(t, []string{"Today", "Yesterday", "13 July"}, labels(sums.All()))
}

func labels(ts []DayTotal) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.Label)
	}
	return out
}

func TestBuildEmpty(t *testing.T) {
	v := newBuilder().Build(nil, nil)
	assert.Empty(t, v.Categories)
	assert.Equal(t, 0.0, v.TotalSpent)
	assert.Equal(t, "$0", v.TotalSpentFormatted)
	assert.Equal(t, "$1,000", v.BudgetRemainingFormatted)
	assert.Equal(t, "100%", v.BudgetPercentRemainingFormatted)
	assert.Equal(t, 0, v.GroupedByDate.Len())

	raw, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"groupedByDate":[]`)
	assert.Contains(t, string(raw), `"categoryAggregates":[]`)
	assert.Contains(t, string(raw), `"filter":[]`)
}

func TestBuildWithFilterAndMalformedAmount(t *testing.T) {
	b := newBuilder()
	records := []core.Expense{
		expense("1", "food", "100", now),
		expense("2", "food", "oops", now),
		expense("3", "transport", "50", now),
		expense("4", "food", "200", now.Add(-24*time.Hour)),
	}

	v := b.Build(records, []filter.Constraint{{Field: core.FieldCategory, Value: "food"}})
	assert.Equal(t, 2, v.Count)
	assert.InDelta(t, 300, v.TotalSpent, 1e-9)
	assert.Equal(t, "$300", v.TotalSpentFormatted)
	assert.Equal(t, "$700", v.BudgetRemainingFormatted)
	assert.Equal(t, "70%", v.BudgetPercentRemainingFormatted)
	require.Len(t, v.Diagnostics, 1)
	assert.Equal(t, "2", v.Diagnostics[0].RecordID)
	assert.ErrorIs(t, v.Diagnostics[0].Err, core.ErrInvalidAmount)
	require.Len(t, v.Categories, 1)
	assert.Equal(t, "100%", v.Categories[0].PercentFormatted)

	all := b.Build(records, nil)
	assert.Equal(t, 3, all.Count)
	assert.InDelta(t, 350, all.TotalSpent, 1e-9)
}

func TestBuildSkipsExponentAmounts(t *testing.T) {
	cases := []struct {
		name   string
		amount string
	}{
		{"huge exponent", "1e20000000"},
		{"float overflow", "1e400"},
		{"small exponent", "2E3"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			records := []core.Expense{
				expense("1", "food", tc.amount, now),
				expense("2", "food", "1.5", now),
			}

			entries, diags := Parse(records)
			require.Len(t, entries, 1)
			require.Len(t, diags, 1)
			assert.Equal(t, "1", diags[0].RecordID)
			assert.Equal(t, core.FieldAmount, diags[0].Field)
			assert.ErrorIs(t, diags[0].Err, core.ErrInvalidAmount)

			v := newBuilder().Build(records, nil)
			assert.False(t, math.IsInf(v.TotalSpent, 0))
			assert.InDelta(t, 1.5, v.TotalSpent, 1e-9)
			assert.Equal(t, "$1.5", v.TotalSpentFormatted)
			assert.Equal(t, 1, v.Count)
		})
	}
}

func TestBuildOverBudget(t *testing.T) {
	b := newBuilder()
	v := b.Build([]core.Expense{expense("1", "food", "1250", now)}, nil)
	assert.InDelta(t, -250, v.Budget.Remaining, 1e-9)
	assert.Equal(t, "-$250", v.BudgetRemainingFormatted)
	assert.Equal(t, "-25%", v.BudgetPercentRemainingFormatted)
}

func TestBuildUsesLocation(t *testing.T) {
	b := newBuilder()
	b.Now = func() time.Time { return time.Date(2025, 7, 16, 22, 0, 0, 0, time.UTC) }
	b.Location = moscow
	v := b.Build([]core.Expense{expense("1", "food", "1", time.Date(2025, 7, 16, 10, 0, 0, 0, time.UTC))}, nil)
	_, ok := v.GroupedByDate.Lookup("Yesterday")
	assert.True(t, ok, "17 July in Moscow makes the 16th yesterday")
}

func TestBuilderDayAndAmountsMap(t *testing.T) {
	b := newBuilder()
	assert.Equal(t, "2025-07-16", b.Day())

	b.Now = func() time.Time { return time.Date(2025, 7, 16, 22, 0, 0, 0, time.UTC) }
	b.Location = moscow
	assert.Equal(t, "2025-07-17", b.Day())

	v := newBuilder().Build([]core.Expense{
		expense("1", "food", "10", now),
		expense("2", "food", "5", now.Add(-24*time.Hour)),
	}, nil)
	assert.Equal(t, map[string]string{"Today": "$10", "Yesterday": "$5"}, v.AmountsByDateMap())
}
