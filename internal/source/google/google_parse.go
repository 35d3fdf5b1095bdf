package google

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"spendview/internal/core"
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	"02.01.2006",
}

// parseExpenses maps rows to expenses using the header row. Columns are
// matched by core.Field name, case-insensitively; createdAt and amount are
// required. Rows whose createdAt cannot be read are skipped and counted.
// The result is ordered newest first.
func parseExpenses(values [][]any) ([]core.Expense, int, error) {
	out := []core.Expense{}
	if len(values) == 0 {
		return out, 0, nil
	}

	headers := toStrings(values[0])
	cols := map[core.Field]int{}
	for _, f := range core.Fields() {
		cols[f] = indexOf(headers, string(f))
	}
	var missing []string
	for _, f := range []core.Field{core.FieldCreatedAt, core.FieldAmount} {
		if cols[f] == -1 {
			missing = append(missing, string(f))
		}
	}
	if len(missing) > 0 {
		return nil, 0, fmt.Errorf("unexpected expenses header: missing %s; got headers=%v", strings.Join(missing, ","), headers)
	}

	skipped := 0
	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		if isBlank(row) {
			continue
		}
		created, ok := parseTime(safeGet(row, cols[core.FieldCreatedAt]))
		if !ok {
			skipped++
			continue
		}
		updated, ok := parseTime(safeGet(row, cols[core.FieldUpdatedAt]))
		if !ok {
			updated = created
		}
		userID, _ := strconv.ParseInt(safeGet(row, cols[core.FieldUserID]), 10, 64)

		id := safeGet(row, cols[core.FieldID])
		if id == "" {
			id = fmt.Sprintf("row:%d", i+1)
		}
		out = append(out, core.Expense{
			ID:          id,
			CreatedAt:   created,
			UpdatedAt:   updated,
			Category:    safeGet(row, cols[core.FieldCategory]),
			PaymentType: safeGet(row, cols[core.FieldPaymentType]),
			Description: safeGet(row, cols[core.FieldDescription]),
			Amount:      safeGet(row, cols[core.FieldAmount]),
			UserID:      userID,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, skipped, nil
}

// parseCategories reads "id, name" rows. Rows without a numeric id (such as
// a header) or without a name are ignored, as are repeated ids.
func parseCategories(values [][]any) []core.Category {
	out := []core.Category{}
	seen := map[int]struct{}{}
	for _, raw := range values {
		row := toStrings(raw)
		id, err := strconv.Atoi(safeGet(row, 0))
		name := safeGet(row, 1)
		if err != nil || name == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, core.Category{ID: id, Name: name})
	}
	return out
}

func parseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		switch n := v.(type) {
		case float64:
			out[i] = strconv.FormatFloat(n, 'f', -1, 64)
		default:
			out[i] = strings.TrimSpace(fmt.Sprint(v))
		}
	}
	return out
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), target) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}

func isBlank(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}
