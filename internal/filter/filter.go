// Package filter narrows expense lists by exact field equality.
package filter

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	"spendview/internal/core"
)

// ErrUnknownField is returned when a constraint names a field outside the
// filterable set.
var ErrUnknownField = core.ErrUnknownField

// Constraint requires a record field to equal Value.
type Constraint struct {
	Field core.Field `json:"field"`
	Value string     `json:"value"`
}

// Engine holds the active constraints in the order they were first set.
// The zero value is an empty engine ready for use.
type Engine struct {
	mu          sync.RWMutex
	constraints []Constraint
}

// NewEngine returns an engine seeded with cs, applied as successive Set calls.
func NewEngine(cs ...Constraint) *Engine {
	e := &Engine{}
	for _, c := range cs {
		e.Set(c.Field, c.Value)
	}
	return e
}

// Set adds or replaces the constraint on field. An empty value removes it.
// A replaced constraint keeps its position.
func (e *Engine) Set(field core.Field, value string) {
	if value == "" {
		e.Remove(field)
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.constraints {
		if e.constraints[i].Field == field {
			e.constraints[i].Value = value
			return
		}
	}
	e.constraints = append(e.constraints, Constraint{Field: field, Value: value})
}

// Remove drops the constraint on field, if any.
func (e *Engine) Remove(field core.Field) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.constraints {
		if e.constraints[i].Field == field {
			e.constraints = append(e.constraints[:i:i], e.constraints[i+1:]...)
			return
		}
	}
}

// Clear drops every constraint.
func (e *Engine) Clear() {
	e.mu.Lock()
	e.constraints = nil
	e.mu.Unlock()
}

// Constraints returns a copy of the active constraints.
func (e *Engine) Constraints() []Constraint {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]Constraint(nil), e.constraints...)
}

// Apply returns the records matching every active constraint, in their
// original order.
func (e *Engine) Apply(records []core.Expense) []core.Expense {
	return Apply(records, e.Constraints())
}

// Key returns a stable identifier for the active constraint set.
func (e *Engine) Key() string {
	return Key(e.Constraints())
}

// Apply filters records with cs. With no constraints every record is kept.
// A constraint on a field the record cannot render never matches.
func Apply(records []core.Expense, cs []Constraint) []core.Expense {
	out := make([]core.Expense, 0, len(records))
	for _, r := range records {
		if matches(r, cs) {
			out = append(out, r)
		}
	}
	return out
}

func matches(r core.Expense, cs []Constraint) bool {
	for _, c := range cs {
		v, ok := r.FieldText(c.Field)
		if !ok || v != c.Value {
			return false
		}
	}
	return true
}

// Key encodes cs in insertion order.
func Key(cs []Constraint) string {
	if len(cs) == 0 {
		return ""
	}
	var b []byte
	for i, c := range cs {
		if i > 0 {
			b = append(b, '&')
		}
		b = append(b, url.QueryEscape(string(c.Field))...)
		b = append(b, '=')
		b = append(b, url.QueryEscape(c.Value)...)
	}
	return string(b)
}

// FromQuery builds constraints from URL query values named after record
// fields. Parameters that are not fields are reported as ErrUnknownField
// unless listed in ignore.
func FromQuery(q url.Values, ignore ...string) ([]Constraint, error) {
	skip := make(map[string]bool, len(ignore))
	for _, k := range ignore {
		skip[k] = true
	}
	var cs []Constraint
	for _, f := range core.Fields() {
		if v := q.Get(string(f)); v != "" {
			cs = append(cs, Constraint{Field: f, Value: v})
		}
	}
	for k := range q {
		if skip[k] {
			continue
		}
		if _, err := core.ParseField(k); err != nil {
			return nil, fmt.Errorf("%w: %q", err, k)
		}
	}
	return cs, nil
}

// Parse reads a "field=value" pair such as a command-line flag.
func Parse(s string) (Constraint, error) {
	name, value, ok := strings.Cut(s, "=")
	if !ok {
		return Constraint{}, fmt.Errorf("invalid constraint %q: want field=value", s)
	}
	field, err := core.ParseField(strings.TrimSpace(name))
	if err != nil {
		return Constraint{}, fmt.Errorf("%w: %q", err, name)
	}
	return Constraint{Field: field, Value: value}, nil
}
