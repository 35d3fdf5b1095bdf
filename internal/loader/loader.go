// Package loader owns the current expense snapshot and refreshes it on
// demand.
package loader

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"spendview/internal/category"
	"spendview/internal/core"
	"spendview/internal/format"
	"spendview/internal/log"
	"spendview/internal/source"
)

// DefaultFetchTimeout bounds a fetch when no WithFetchTimeout is given.
const DefaultFetchTimeout = 30 * time.Second

// Snapshot is a consistent copy of the loader state.
type Snapshot struct {
	Records      []core.Expense `json:"-"`
	Count        int            `json:"records"`
	Generation   uint64         `json:"generation"`
	Error        string         `json:"error,omitempty"`
	Loading      bool           `json:"loading"`
	NeedsRefresh bool           `json:"needsRefresh"`
	LoadedAt     time.Time      `json:"loadedAt"`
	Ready        bool           `json:"ready"`
}

// Loader fetches expenses and categories when flagged as stale. Concurrent
// Load calls share one fetch; a result older than the last applied one is
// dropped.
type Loader struct {
	expenses   source.ExpenseFetcher
	categories source.CategoryFetcher
	registry   *category.Registry
	locale     format.Locale
	logger     *log.Logger
	slog       *log.StructuredLogger
	now        func() time.Time
	timeout    time.Duration

	group  singleflight.Group
	issued atomic.Uint64

	mu           sync.RWMutex
	needsRefresh bool
	loading      bool
	ready        bool
	records      []core.Expense
	generation   uint64
	errText      string
	loadedAt     time.Time
}

// Option customises a Loader.
type Option func(*Loader)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Loader) { l.now = now }
}

// WithFetchTimeout bounds a single fetch. Defaults to DefaultFetchTimeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(l *Loader) { l.timeout = d }
}

// WithLogger sets the logger. Defaults to a loader-component logger on
// stdout.
func WithLogger(logger *log.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// New returns a loader that needs a refresh. categories may be nil, in which
// case reg is left untouched. A nil reg gets the default palette.
func New(expenses source.ExpenseFetcher, categories source.CategoryFetcher, reg *category.Registry, locale format.Locale, opts ...Option) *Loader {
	l := &Loader{
		expenses:     expenses,
		categories:   categories,
		registry:     reg,
		locale:       locale,
		now:          time.Now,
		timeout:      DefaultFetchTimeout,
		needsRefresh: true,
	}
	if l.registry == nil {
		l.registry = category.New(category.DefaultPalette())
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		cfg := log.DefaultConfig()
		cfg.Component = log.ComponentLoader
		l.logger = log.New(cfg)
	}
	l.slog = log.NewStructuredLogger(l.logger)
	return l
}

// NeedUpdate marks the snapshot stale. The next Load fetches.
func (l *Loader) NeedUpdate() {
	l.mu.Lock()
	l.needsRefresh = true
	l.mu.Unlock()
}

// Load fetches when the snapshot is stale, or waits for the fetch already
// in flight, and returns the fetch error, if any. It is a no-op otherwise. A
// NeedUpdate that arrives while a fetch is running stays pending for the next
// Load.
//
// The fetch is shared by every waiting caller, so it runs detached from ctx
// under the loader's own timeout. A caller whose ctx ends first gets ctx's
// error while the fetch carries on.
func (l *Loader) Load(ctx context.Context) error {
	l.mu.RLock()
	pending := l.needsRefresh || l.loading
	l.mu.RUnlock()
	if !pending {
		l.logger.DebugContext(ctx, "Skipping load, snapshot is current", log.FieldOperation, log.OpLoad)
		return nil
	}

	ch := l.group.DoChan("load", func() (any, error) {
		return nil, l.loadIfStale(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		l.logger.DebugContext(ctx, "Caller left before load finished",
			log.FieldOperation, log.OpLoad, log.FieldError, ctx.Err())
		return ctx.Err()
	}
}

// loadIfStale runs inside the shared call. A fetch that completed between
// the caller's check and the call leaves nothing to do.
func (l *Loader) loadIfStale(ctx context.Context) error {
	l.mu.RLock()
	stale := l.needsRefresh
	l.mu.RUnlock()
	if !stale {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()
	return l.fetch(ctx)
}

type result struct {
	records    []core.Expense
	categories []core.Category
}

func (l *Loader) fetch(ctx context.Context) error {
	gen := l.issued.Add(1)

	l.mu.Lock()
	l.needsRefresh = false
	l.loading = true
	l.errText = ""
	l.mu.Unlock()

	var res result
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		records, err := l.expenses.FetchExpenses(gctx)
		res.records = records
		return err
	})
	if l.categories != nil {
		g.Go(func() error {
			cats, err := l.categories.FetchCategories(gctx)
			res.categories = cats
			return err
		})
	}
	err := g.Wait()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.loading = false
	l.ready = true

	if gen <= l.generation {
		l.logger.WarnContext(ctx, "Discarding stale load result",
			log.FieldGeneration, gen, "applied", l.generation)
		return nil
	}

	if err != nil {
		l.errText = err.Error()
		if l.errText == "" {
			l.errText = l.locale.LoadError
		}
		l.slog.LogError(ctx, "Failed to load expenses", err, log.ComponentLoader, log.OpFetch,
			log.NewFields().WithLoad(gen, len(l.records), l.registry.Len()))
		return err
	}

	if res.records == nil {
		res.records = []core.Expense{}
	}
	l.records = res.records
	l.generation = gen
	l.loadedAt = l.now()
	if l.categories != nil {
		l.registry.Populate(res.categories)
	}
	l.slog.LogLoaded(ctx, gen, len(res.records), l.registry.Len())
	return nil
}

// Snapshot returns a copy of the current state.
func (l *Loader) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Snapshot{
		Records:      append([]core.Expense{}, l.records...),
		Count:        len(l.records),
		Generation:   l.generation,
		Error:        l.errText,
		Loading:      l.loading,
		NeedsRefresh: l.needsRefresh,
		LoadedAt:     l.loadedAt,
		Ready:        l.ready,
	}
}

// Generation is the token of the last applied successful load; zero before
// the first one.
func (l *Loader) Generation() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.generation
}

// Ready reports whether at least one load attempt has finished.
func (l *Loader) Ready() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.ready
}

// Registry exposes the category registry populated by the loader.
func (l *Loader) Registry() *category.Registry {
	return l.registry
}
