// Package core provides the expense record model and amount parsing.
package core

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid amount")

// ParseAmount converts the transported decimal text into a decimal value.
//
// Both dot (12.34) and comma (12,34) separators are accepted, as are spaces
// used for digit grouping ("1 000,50"). Empty or non-numeric text yields
// ErrInvalidAmount. Exponent notation is rejected so that a short string
// cannot stand for an unbounded value.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f':
			return -1
		case ',':
			return '.'
		}
		return r
	}, s)

	if !isPlainDecimal(s) {
		return decimal.Zero, fmt.Errorf("%w %q", ErrInvalidAmount, s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w %q", ErrInvalidAmount, s)
	}
	if f := d.InexactFloat64(); math.IsInf(f, 0) || math.IsNaN(f) {
		return decimal.Zero, fmt.Errorf("%w %q: out of range", ErrInvalidAmount, s)
	}
	return d, nil
}

// isPlainDecimal reports whether s is an optional sign, digits, and an
// optional dot followed by digits.
func isPlainDecimal(s string) bool {
	if s != "" && (s[0] == '+' || s[0] == '-') {
		s = s[1:]
	}
	intPart, frac, hasDot := strings.Cut(s, ".")
	if !allDigits(intPart) {
		return false
	}
	return !hasDot || allDigits(frac)
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Diagnostic reports a record that could not be used in a derivation.
type Diagnostic struct {
	RecordID string `json:"recordId"`
	Field    Field  `json:"field"`
	Value    string `json:"value"`
	Err      error  `json:"-"`
	Message  string `json:"message"`
}

// NewDiagnostic builds a Diagnostic carrying err's text.
func NewDiagnostic(id string, field Field, value string, err error) Diagnostic {
	return Diagnostic{RecordID: id, Field: field, Value: value, Err: err, Message: err.Error()}
}
