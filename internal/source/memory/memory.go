// Package memory serves expenses and categories from process memory,
// optionally seeded from JSON files.
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"spendview/internal/core"
	"spendview/internal/source"
)

const (
	ExpensesFile   = "expenses.json"
	CategoriesFile = "categories.json"
)

type Store struct {
	mu    sync.Mutex
	cats  []core.Category
	items []core.Expense
}

var _ source.Source = (*Store)(nil)

// New builds a store. Expenses without an id get a random one; an empty
// category list falls back to the built-in categories.
func New(items []core.Expense, cats []core.Category) *Store {
	s := &Store{cats: dedupeCategories(cats)}
	if len(s.cats) == 0 {
		s.cats = core.DefaultCategories()
	}
	s.Replace(items)
	return s
}

// NewFromFiles seeds a store from base/expenses.json and
// base/categories.json. Missing files are not an error.
func NewFromFiles(base string) (*Store, error) {
	var (
		items []core.Expense
		cats  []core.Category
	)
	if err := readJSON(filepath.Join(base, ExpensesFile), &items); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(base, CategoriesFile), &cats); err != nil {
		return nil, err
	}
	slog.Info("Seeded memory store", "dir", base, "records", len(items), "categories", len(cats))
	return New(items, cats), nil
}

// Replace swaps the stored expenses.
func (s *Store) Replace(items []core.Expense) {
	out := make([]core.Expense, len(items))
	copy(out, items)
	for i := range out {
		if strings.TrimSpace(out[i].ID) == "" {
			out[i].ID = uuid.NewString()
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	s.mu.Lock()
	s.items = out
	s.mu.Unlock()
}

// FetchExpenses returns the stored expenses, newest first.
func (s *Store) FetchExpenses(_ context.Context) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Expense{}, s.items...), nil
}

func (s *Store) FetchCategories(_ context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Category{}, s.cats...), nil
}

func readJSON(path string, into any) error {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(b, into); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func dedupeCategories(in []core.Category) []core.Category {
	seen := map[int]struct{}{}
	out := make([]core.Category, 0, len(in))
	for _, c := range in {
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			continue
		}
		if _, ok := seen[c.ID]; ok {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	return out
}
