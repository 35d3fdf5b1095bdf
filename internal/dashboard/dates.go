package dashboard

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"spendview/internal/format"
)

// LabelFor names the day bucket of ts as seen from now. Both are compared
// in now's location: the same calendar day is locale.Today, the previous one
// locale.Yesterday, anything else "<day> <month>" without the year.
func LabelFor(ts, now time.Time, locale format.Locale) string {
	t := ts.In(now.Location())
	if sameDay(t, now) {
		return locale.Today
	}
	y, m, d := now.Date()
	if sameDay(t, time.Date(y, m, d-1, 12, 0, 0, 0, now.Location())) {
		return locale.Yesterday
	}
	return locale.DayMonth(t)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Item is a single expense line inside a date bucket.
type Item struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Amount      string    `json:"amount"`
	PaymentType string    `json:"paymentType"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Bucket groups the items sharing a date label.
type Bucket struct {
	Label string `json:"date"`
	Items []Item `json:"items"`
}

// Buckets keeps date buckets in first-seen order with a label index.
type Buckets struct {
	list  []Bucket
	index map[string]int
}

// All returns the buckets in order.
func (b Buckets) All() []Bucket {
	return append([]Bucket(nil), b.list...)
}

// Len returns the number of buckets.
func (b Buckets) Len() int {
	return len(b.list)
}

// Lookup returns the bucket labelled label.
func (b Buckets) Lookup(label string) (Bucket, bool) {
	i, ok := b.index[label]
	if !ok {
		return Bucket{}, false
	}
	return b.list[i], true
}

func (b Buckets) MarshalJSON() ([]byte, error) {
	if b.list == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(b.list)
}

// GroupByDate buckets entries by date label. Buckets appear in the order their
// first entry appears; items keep input order within a bucket.
func GroupByDate(entries []Entry, now time.Time, f *format.Formatter) Buckets {
	out := Buckets{index: make(map[string]int)}
	for _, e := range entries {
		label := LabelFor(e.CreatedAt, now, f.Locale())
		i, ok := out.index[label]
		if !ok {
			i = len(out.list)
			out.index[label] = i
			out.list = append(out.list, Bucket{Label: label})
		}
		out.list[i].Items = append(out.list[i].Items, Item{
			ID:          e.ID,
			Title:       f.Capitalize(e.Description),
			Category:    e.Category,
			Amount:      f.Currency(e.Value.InexactFloat64()),
			PaymentType: e.PaymentType,
			CreatedAt:   e.CreatedAt,
		})
	}
	return out
}

// DayTotal is the summed spend of one date label.
type DayTotal struct {
	Label     string  `json:"date"`
	Amount    float64 `json:"amount"`
	Formatted string  `json:"formatted"`
}

// DayTotals keeps per-label sums in first-seen order with a label index.
type DayTotals struct {
	list  []DayTotal
	index map[string]int
}

func (d DayTotals) All() []DayTotal {
	return append([]DayTotal(nil), d.list...)
}

func (d DayTotals) Len() int {
	return len(d.list)
}

// Lookup returns the total for label.
func (d DayTotals) Lookup(label string) (DayTotal, bool) {
	i, ok := d.index[label]
	if !ok {
		return DayTotal{}, false
	}
	return d.list[i], true
}

// Formatted maps each label to its formatted sum.
func (d DayTotals) Formatted() map[string]string {
	out := make(map[string]string, len(d.list))
	for _, t := range d.list {
		out[t.Label] = t.Formatted
	}
	return out
}

func (d DayTotals) MarshalJSON() ([]byte, error) {
	if d.list == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(d.list)
}

// SumByDate totals entry amounts per date label.
func SumByDate(entries []Entry, now time.Time, f *format.Formatter) DayTotals {
	var (
		labels []string
		sums   = make(map[string]decimal.Decimal)
	)
	for _, e := range entries {
		label := LabelFor(e.CreatedAt, now, f.Locale())
		sum, ok := sums[label]
		if !ok {
			labels = append(labels, label)
		}
		sums[label] = sum.Add(e.Value)
	}

	out := DayTotals{index: make(map[string]int, len(labels))}
	for i, label := range labels {
		amount := sums[label].InexactFloat64()
		out.index[label] = i
		out.list = append(out.list, DayTotal{
			Label:     label,
			Amount:    amount,
			Formatted: f.Currency(amount),
		})
	}
	return out
}
