// Package report renders a dashboard view for the terminal.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"spendview/internal/dashboard"
	"spendview/internal/filter"
)

const barWidth = 30

// Options controls which sections are printed.
type Options struct {
	// Items lists every record under its date heading.
	Items bool
}

// Render writes a human-readable report of v to w. Colour is used only when
// w is a terminal.
func Render(w io.Writer, v dashboard.View, opts Options) error {
	st := newStyles(lipgloss.NewRenderer(w))
	var b strings.Builder

	b.WriteString(st.title.Render("Spending overview"))
	b.WriteString("\n")
	if len(v.Filter) > 0 {
		b.WriteString(st.subtle.Render("filter: " + filter.Key(v.Filter)))
		b.WriteString("\n")
	}
	if v.Error != "" {
		b.WriteString(st.warning.Render("last load failed: " + v.Error))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(st.box.Render(budgetBlock(st, v)))
	b.WriteString("\n\n")

	if len(v.Categories) == 0 {
		b.WriteString(st.subtle.Render("No expenses."))
		b.WriteString("\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	b.WriteString(st.header.Render("Categories"))
	b.WriteString("\n")
	if err := categoryTable(&b, st, v.Categories); err != nil {
		return err
	}
	b.WriteString("\n")

	b.WriteString(st.header.Render("By day"))
	b.WriteString("\n")
	if err := dayTable(&b, st, v, opts.Items); err != nil {
		return err
	}

	if len(v.Diagnostics) > 0 {
		b.WriteString("\n")
		b.WriteString(st.warning.Render(fmt.Sprintf("%d record(s) skipped:", len(v.Diagnostics))))
		b.WriteString("\n")
		for _, d := range v.Diagnostics {
			fmt.Fprintf(&b, "  %s %s=%q: %s\n", d.RecordID, d.Field, d.Value, d.Message)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func budgetBlock(st styles, v dashboard.View) string {
	remaining := st.good
	if v.Budget.Remaining < 0 {
		remaining = st.warning
	}
	lines := []string{
		st.label.Render("Spent      ") + v.TotalSpentFormatted,
		st.label.Render("Remaining  ") + remaining.Render(v.BudgetRemainingFormatted+" ("+v.BudgetPercentRemainingFormatted+")"),
		bar(st, v.Budget.Spent, v.Budget.Limit),
		st.subtle.Render(fmt.Sprintf("%d expense(s)", v.Count)),
	}
	return strings.Join(lines, "\n")
}

// bar draws spent against limit. Overspend fills the bar; a zero limit
// leaves it empty.
func bar(st styles, spent, limit float64) string {
	filled := 0
	if limit > 0 {
		filled = int(spent / limit * barWidth)
	}
	filled = max(0, min(filled, barWidth))
	return st.good.Render(strings.Repeat("█", filled)) + st.subtle.Render(strings.Repeat("░", barWidth-filled))
}

func categoryTable(out io.Writer, st styles, cats []dashboard.CategoryTotal) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	for _, c := range cats {
		name := c.Name
		if c.Icon != "" {
			name = c.Icon + " " + name
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t\n", st.swatch(c.HexColor).Render("●")+" "+name, c.AmountFormatted, c.PercentFormatted)
	}
	return tw.Flush()
}

func dayTable(out io.Writer, st styles, v dashboard.View, items bool) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, bucket := range v.GroupedByDate.All() {
		total := ""
		if t, ok := v.AmountsByDate.Lookup(bucket.Label); ok {
			total = t.Formatted
		}
		fmt.Fprintf(tw, "%s\t%s\n", st.label.Render(bucket.Label), total)
		if !items {
			continue
		}
		for _, it := range bucket.Items {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", it.Title, it.Amount, st.subtle.Render(it.Category))
		}
	}
	return tw.Flush()
}

// RenderJSON writes v as indented JSON.
func RenderJSON(w io.Writer, v dashboard.View) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
