package report

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendview/internal/category"
	"spendview/internal/core"
	"spendview/internal/dashboard"
	"spendview/internal/filter"
	"spendview/internal/format"
)

var now = time.Date(2025, 7, 16, 12, 0, 0, 0, time.UTC)

func buildView(records []core.Expense, cs ...filter.Constraint) dashboard.View {
	reg := category.New(category.DefaultPalette())
	reg.Populate([]core.Category{{ID: 1, Name: "food"}, {ID: 2, Name: "transport"}})
	b := &dashboard.Builder{
		Registry:  reg,
		Formatter: format.New(format.English, "$"),
		Budget:    decimal.NewFromInt(100),
		Now:       func() time.Time { return now },
	}
	return b.Build(records, cs)
}

func records() []core.Expense {
	return []core.Expense{
		{ID: "1", Category: "food", Description: "bread", Amount: "10", CreatedAt: now},
		{ID: "2", Category: "transport", Description: "bus", Amount: "20", CreatedAt: now.Add(-24 * time.Hour)},
		{ID: "3", Category: "food", Description: "milk", Amount: "oops", CreatedAt: now},
	}
}

func TestRender(t *testing.T) {
	tests := []struct {
		name    string
		view    dashboard.View
		opts    Options
		want    []string
		notWant []string
	}{
		{
			name: "summary",
			view: buildView(records()),
			want: []string{"Spending overview", "$30", "$70", "Food", "Transport", "Today", "Yesterday", "1 record(s) skipped", "3 amount=\"oops\""},
			notWant: []string{"Bread", "filter:", "last load failed"},
		},
		{
			name: "with items",
			view: buildView(records()),
			opts: Options{Items: true},
			want: []string{"Bread", "Bus"},
		},
		{
			name:    "filtered",
			view:    buildView(records(), filter.Constraint{Field: core.FieldCategory, Value: "transport"}),
			want:    []string{"filter: category=transport", "$20", "1 expense(s)"},
			notWant: []string{"skipped"},
		},
		{
			name: "empty with error",
			view: func() dashboard.View {
				v := buildView(nil)
				v.Error = "upstream down"
				return v
			}(),
			want:    []string{"last load failed: upstream down", "No expenses.", "0 expense(s)"},
			notWant: []string{"Categories"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Render(&buf, tt.view, tt.opts))
			out := buf.String()
			assert.NotContains(t, out, "\x1b[", "no escape codes when not writing to a terminal")
			for _, s := range tt.want {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.notWant {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestBar(t *testing.T) {
	st := newStyles(lipgloss.NewRenderer(&bytes.Buffer{}))
	tests := []struct {
		name         string
		spent, limit float64
		wantFilled   int
	}{
		{name: "half", spent: 50, limit: 100, wantFilled: barWidth / 2},
		{name: "overspent", spent: 150, limit: 100, wantFilled: barWidth},
		{name: "zero limit", spent: 10, limit: 0, wantFilled: 0},
		{name: "refund", spent: -10, limit: 100, wantFilled: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := bar(st, tt.spent, tt.limit)
			assert.Equal(t, tt.wantFilled, bytes.Count([]byte(got), []byte("█")))
			assert.Equal(t, barWidth-tt.wantFilled, bytes.Count([]byte(got), []byte("░")))
		})
	}
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderJSON(&buf, buildView(records())))

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.EqualValues(t, 2, out["count"])
	assert.Equal(t, "$30", out["totalSpentFormatted"])
}
