// Package format renders amounts, percentages and labels for display.
package format

import (
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Invalid is rendered in place of non-finite numbers.
const Invalid = "n/a"

// DefaultPercentPrecision is the number of decimals used by Percent callers
// that do not pick their own.
const DefaultPercentPrecision = 2

const nbsp = "\u00a0"

// Formatter renders currency amounts for a locale.
type Formatter struct {
	locale Locale
	symbol string
}

// New returns a Formatter for locale using symbol as the currency sign.
func New(locale Locale, symbol string) *Formatter {
	return &Formatter{locale: locale, symbol: symbol}
}

// Locale returns the formatter's locale.
func (f *Formatter) Locale() Locale {
	return f.locale
}

// Currency formats amount with grouping, no decimals for whole values and at
// most two otherwise, e.g. "1 000,5 ₽" for the Russian locale.
func (f *Formatter) Currency(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Invalid
	}
	p := message.NewPrinter(f.locale.Tag)
	n := p.Sprint(number.Decimal(amount, number.MinFractionDigits(0), number.MaxFractionDigits(2)))
	if f.symbol == "" {
		return n
	}
	if f.locale.SymbolAfter {
		return n + nbsp + f.symbol
	}
	if strings.HasPrefix(n, "-") {
		return "-" + f.symbol + n[1:]
	}
	return f.symbol + n
}

// Percent rounds value to precision decimals and appends "%". Whole results
// drop the fraction ("50%"), others keep exactly precision digits ("12.50%").
func Percent(value float64, precision int) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Invalid
	}
	if precision < 0 {
		precision = 0
	}
	scale := math.Pow(10, float64(precision))
	rounded := math.Round(value*scale) / scale
	if rounded == 0 {
		rounded = 0 // drop negative zero
	}
	if rounded == math.Trunc(rounded) {
		return strconv.FormatFloat(rounded, 'f', -1, 64) + "%"
	}
	return strconv.FormatFloat(rounded, 'f', precision, 64) + "%"
}

// Capitalize upper-cases the first letter of s using the formatter's locale.
func (f *Formatter) Capitalize(s string) string {
	return capitalize(s, f.locale.Tag)
}

// CapitalizeFirst upper-cases the first non-space rune of s. Leading
// whitespace and the rest of the string are kept as is.
func CapitalizeFirst(s string) string {
	return capitalize(s, language.Und)
}

func capitalize(s string, tag language.Tag) string {
	trimmed := strings.TrimLeftFunc(s, unicode.IsSpace)
	if trimmed == "" {
		return s
	}
	lead := s[:len(s)-len(trimmed)]
	r, size := utf8.DecodeRuneInString(trimmed)
	if r == utf8.RuneError {
		return s
	}
	upper := cases.Upper(tag).String(string(r))
	return lead + upper + trimmed[size:]
}
