package format

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
)

var ErrUnknownLocale = errors.New("unknown locale")

// Locale carries the words and month names used by the dashboard labels.
type Locale struct {
	Code      string
	Tag       language.Tag
	Today     string
	Yesterday string
	// Months holds month names in the form used after a day number.
	Months [12]string
	// LoadError is shown when a fetch fails without a message of its own.
	LoadError string
	// SymbolAfter places the currency symbol after the number.
	SymbolAfter bool
}

var (
	Russian = Locale{
		Code:      "ru",
		Tag:       language.Russian,
		Today:     "Сегодня",
		Yesterday: "Вчера",
		Months: [12]string{
			"января", "февраля", "марта", "апреля", "мая", "июня",
			"июля", "августа", "сентября", "октября", "ноября", "декабря",
		},
		LoadError:   "Ошибка загрузки",
		SymbolAfter: true,
	}

	English = Locale{
		Code:      "en",
		Tag:       language.English,
		Today:     "Today",
		Yesterday: "Yesterday",
		Months: [12]string{
			"January", "February", "March", "April", "May", "June",
			"July", "August", "September", "October", "November", "December",
		},
		LoadError: "Failed to load",
	}
)

// LocaleFor returns the locale registered under code ("ru" or "en").
func LocaleFor(code string) (Locale, error) {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "ru", "ru-ru":
		return Russian, nil
	case "en", "en-us", "en-gb":
		return English, nil
	default:
		return Locale{}, fmt.Errorf("%w: %q", ErrUnknownLocale, code)
	}
}

// DayMonth renders t as "<day> <month>" without the year, e.g. "16 июля".
func (l Locale) DayMonth(t time.Time) string {
	return fmt.Sprintf("%d %s", t.Day(), l.Months[t.Month()-1])
}
