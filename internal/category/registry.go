// Package category keeps the mapping between category ids, names, colours
// and icons.
package category

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/text/cases"

	"spendview/internal/core"
	"spendview/internal/format"
)

// UnknownID is returned by IDForName for names that are not registered.
const UnknownID = 0

// Fetcher supplies the category list.
type Fetcher interface {
	FetchCategories(ctx context.Context) ([]core.Category, error)
}

// Entry is a registered category enriched for display.
type Entry struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Display  string `json:"display"`
	Color    string `json:"color"`
	HexColor string `json:"hexColor"`
	Icon     string `json:"icon,omitempty"`
}

// Registry resolves categories by id or name. It is safe for concurrent use;
// a Populate call replaces the previous contents.
type Registry struct {
	mu       sync.RWMutex
	palette  Palette
	list     []core.Category
	idByName map[string]int
}

// New returns an empty registry using palette for colours and icons.
func New(palette Palette) *Registry {
	return &Registry{
		palette:  palette,
		idByName: make(map[string]int),
	}
}

// Populate replaces the registered categories with list. Later entries with
// a name already seen in list win.
func (r *Registry) Populate(list []core.Category) {
	idByName := make(map[string]int, len(list))
	for _, c := range list {
		idByName[nameKey(c.Name)] = c.ID
	}
	cp := append([]core.Category(nil), list...)

	r.mu.Lock()
	r.list = cp
	r.idByName = idByName
	r.mu.Unlock()
}

// Load fetches the category list and populates the registry with it. On
// failure the current contents are kept.
func (r *Registry) Load(ctx context.Context, f Fetcher) error {
	list, err := f.FetchCategories(ctx)
	if err != nil {
		return fmt.Errorf("fetch categories: %w", err)
	}
	r.Populate(list)
	slog.DebugContext(ctx, "Category registry populated", "count", len(list))
	return nil
}

// Len returns the number of registered categories.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.list)
}

// IDForName returns the id registered for name, or UnknownID.
func (r *Registry) IDForName(name string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id, ok := r.idByName[nameKey(name)]; ok {
		return id
	}
	return UnknownID
}

func (r *Registry) ColorForID(id int) string {
	if c, ok := r.palette.Colors[id]; ok {
		return c
	}
	return FallbackColor
}

func (r *Registry) ColorForName(name string) string {
	return r.ColorForID(r.IDForName(name))
}

// IconForID returns the icon for id, or "" when none is assigned.
func (r *Registry) IconForID(id int) string {
	return r.palette.Icons[id]
}

func (r *Registry) IconForName(name string) string {
	return r.IconForID(r.IDForName(name))
}

// HexColor returns the CSS colour for a colour token.
func (r *Registry) HexColor(token string) string {
	if h, ok := r.palette.Hex[token]; ok {
		return h
	}
	return FallbackHex
}

// Entries returns the registered categories in registration order.
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	list := append([]core.Category(nil), r.list...)
	r.mu.RUnlock()

	out := make([]Entry, 0, len(list))
	for _, c := range list {
		color := r.ColorForID(c.ID)
		out = append(out, Entry{
			ID:       c.ID,
			Name:     c.Name,
			Display:  format.CapitalizeFirst(c.Name),
			Color:    color,
			HexColor: r.HexColor(color),
			Icon:     r.IconForID(c.ID),
		})
	}
	return out
}

// nameKey folds case and surrounding whitespace so lookups do not depend on
// either.
func nameKey(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}
