package format

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// squash drops the grouping spaces so assertions do not depend on which
// space character the locale data uses.
func squash(s string) string {
	return strings.NewReplacer("\u00a0", "", "\u202f", "", " ", "").Replace(s)
}

func TestCurrencyRussian(t *testing.T) {
	f := New(Russian, "₽")
	cases := []struct {
		in   float64
		want string
	}{
		{150, "150₽"},
		{100.5, "100,5₽"},
		{1000.5, "1000,5₽"},
		{1234.567, "1234,57₽"},
		{3000000, "3000000₽"},
		{0, "0₽"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, squash(f.Currency(tc.in)), "amount %v", tc.in)
	}
	assert.True(t, strings.HasSuffix(f.Currency(150), "\u00a0₽"))
}

func TestCurrencyEnglish(t *testing.T) {
	f := New(English, "$")
	assert.Equal(t, "$1,000.5", squash(f.Currency(1000.5)))
	assert.Equal(t, "$42", f.Currency(42))
	assert.Equal(t, "-$250", f.Currency(-250))
}

func TestCurrencyWithoutSymbol(t *testing.T) {
	f := New(English, "")
	assert.Equal(t, "12.25", f.Currency(12.25))
}

func TestCurrencyNonFinite(t *testing.T) {
	cases := []struct {
		name string
		in   float64
	}{
		{"NaN", math.NaN()},
		{"+Inf", math.Inf(1)},
		{"-Inf", math.Inf(-1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for _, f := range []*Formatter{New(Russian, "₽"), New(English, "$")} {
				assert.Equal(t, "n/a", f.Currency(tc.in))
			}
			assert.Equal(t, "n/a", Percent(tc.in, 2))
		})
	}
}

func TestPercent(t *testing.T) {
	cases := []struct {
		in        float64
		precision int
		want      string
	}{
		{50, 2, "50%"},
		{33.333, 2, "33.33%"},
		{12.5, 2, "12.50%"},
		{66.6666, 2, "66.67%"},
		{100, 2, "100%"},
		{0, 2, "0%"},
		{-0.001, 2, "0%"},
		{-25.5, 2, "-25.50%"},
		{99.999, 2, "100%"},
		{12.345, 1, "12.3%"},
		{12.5, 0, "13%"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Percent(tc.in, tc.precision), "value %v precision %d", tc.in, tc.precision)
	}
	assert.Equal(t, Invalid, Percent(math.NaN(), 2))
	assert.Equal(t, Invalid, Percent(math.Inf(-1), 2))
}

func TestCapitalizeFirst(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", ""},
		{"   ", "   "},
		{"материалы", "Материалы"},
		{"  краска белая", "  Краска белая"},
		{"already Upper", "Already Upper"},
		{"éclair", "Éclair"},
		{"1st payment", "1st payment"},
		{"прочее/непредвиденное", "Прочее/непредвиденное"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CapitalizeFirst(tc.in), "input %q", tc.in)
	}
	assert.Equal(t, "Мебель и техника", New(Russian, "₽").Capitalize("мебель и техника"))
}

func TestLocaleFor(t *testing.T) {
	l, err := LocaleFor("RU")
	require.NoError(t, err)
	assert.Equal(t, "Сегодня", l.Today)

	l, err = LocaleFor("en")
	require.NoError(t, err)
	assert.Equal(t, "Yesterday", l.Yesterday)

	_, err = LocaleFor("it")
	assert.ErrorIs(t, err, ErrUnknownLocale)
}

func TestDayMonth(t *testing.T) {
	ts := time.Date(2025, time.July, 16, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "16 июля", Russian.DayMonth(ts))
	assert.Equal(t, "16 July", English.DayMonth(ts))
	assert.Equal(t, "1 января", Russian.DayMonth(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)))
}
