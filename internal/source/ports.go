// Package source declares where expense records and categories come from.
// Implementations live in the sub-packages.
package source

import (
	"context"

	"spendview/internal/core"
)

// Ports for inbound data adapters.
type (
	ExpenseFetcher interface {
		// FetchExpenses returns every expense, newest first.
		FetchExpenses(ctx context.Context) ([]core.Expense, error)
	}

	CategoryFetcher interface {
		FetchCategories(ctx context.Context) ([]core.Category, error)
	}

	// Source provides both expenses and categories.
	Source interface {
		ExpenseFetcher
		CategoryFetcher
	}
)

// DefaultCategories serves the built-in category list for backends that
// only store expenses.
type DefaultCategories struct{}

func (DefaultCategories) FetchCategories(context.Context) ([]core.Category, error) {
	return core.DefaultCategories(), nil
}

// WithDefaultCategories pairs an expense fetcher with the built-in category
// list.
func WithDefaultCategories(f ExpenseFetcher) Source {
	return struct {
		ExpenseFetcher
		DefaultCategories
	}{f, DefaultCategories{}}
}
