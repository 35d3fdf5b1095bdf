package loader

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendview/internal/category"
	"spendview/internal/core"
	"spendview/internal/format"
	"spendview/internal/log"
)

type fakeSource struct {
	mu      sync.Mutex
	calls   atomic.Int32
	records []core.Expense
	cats    []core.Category
	err     error
	catErr  error
	block   chan struct{}
	started chan struct{}
}

func (f *fakeSource) FetchExpenses(ctx context.Context) ([]core.Expense, error) {
	f.calls.Add(1)
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]core.Expense(nil), f.records...), nil
}

func (f *fakeSource) FetchCategories(context.Context) ([]core.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cats, f.catErr
}

func (f *fakeSource) set(records []core.Expense, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records, f.err = records, err
}

var fixedNow = time.Date(2025, 7, 16, 12, 0, 0, 0, time.UTC)

func newLoader(src *fakeSource) *Loader {
	logger := log.New(log.Config{Output: io.Discard, Component: log.ComponentLoader})
	return New(src, src, category.New(category.DefaultPalette()), format.Russian,
		WithLogger(logger), WithClock(func() time.Time { return fixedNow }))
}

func TestLoadFetchesOnlyWhenStale(t *testing.T) {
	src := &fakeSource{
		records: []core.Expense{{ID: "1", Amount: "10"}},
		cats:    core.DefaultCategories(),
	}
	l := newLoader(src)

	snap := l.Snapshot()
	assert.True(t, snap.NeedsRefresh)
	assert.False(t, snap.Ready)
	assert.Empty(t, snap.Records)

	require.NoError(t, l.Load(context.Background()))
	require.NoError(t, l.Load(context.Background()))
	assert.Equal(t, int32(1), src.calls.Load())

	snap = l.Snapshot()
	assert.False(t, snap.NeedsRefresh)
	assert.True(t, snap.Ready)
	assert.Equal(t, uint64(1), snap.Generation)
	assert.Equal(t, 1, snap.Count)
	assert.Equal(t, fixedNow, snap.LoadedAt)
	assert.Equal(t, 5, l.Registry().Len())

	l.NeedUpdate()
	require.NoError(t, l.Load(context.Background()))
	assert.Equal(t, int32(2), src.calls.Load())
	assert.Equal(t, uint64(2), l.Generation())
}

func TestLoadFailureKeepsPreviousRecords(t *testing.T) {
	src := &fakeSource{records: []core.Expense{{ID: "1", Amount: "10"}}}
	l := newLoader(src)
	require.NoError(t, l.Load(context.Background()))

	boom := errors.New("upstream unavailable")
	src.set(nil, boom)
	l.NeedUpdate()

	err := l.Load(context.Background())
	require.ErrorIs(t, err, boom)

	snap := l.Snapshot()
	assert.Equal(t, "upstream unavailable", snap.Error)
	assert.False(t, snap.NeedsRefresh)
	assert.False(t, snap.Loading)
	assert.Equal(t, uint64(1), snap.Generation)
	require.Len(t, snap.Records, 1)
	assert.Equal(t, "1", snap.Records[0].ID)

	// A later success clears the error.
	src.set([]core.Expense{{ID: "2", Amount: "5"}}, nil)
	l.NeedUpdate()
	require.NoError(t, l.Load(context.Background()))
	snap = l.Snapshot()
	assert.Empty(t, snap.Error)
	assert.Equal(t, "2", snap.Records[0].ID)
}

type emptyErr struct{}

func (emptyErr) Error() string { return "" }

func TestLoadFailureWithoutMessageUsesLocaleDefault(t *testing.T) {
	src := &fakeSource{err: emptyErr{}}
	l := newLoader(src)

	require.Error(t, l.Load(context.Background()))
	snap := l.Snapshot()
	assert.Equal(t, format.Russian.LoadError, snap.Error)
	assert.True(t, snap.Ready)
	assert.Empty(t, snap.Records)
	assert.NotNil(t, snap.Records)
}

func TestCategoryFailureFailsLoad(t *testing.T) {
	src := &fakeSource{records: []core.Expense{{ID: "1"}}, catErr: errors.New("no categories")}
	l := newLoader(src)

	err := l.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, l.Snapshot().Count)
	assert.Equal(t, 0, l.Registry().Len())
}

func TestConcurrentLoadsShareOneFetch(t *testing.T) {
	src := &fakeSource{
		records: []core.Expense{{ID: "1", Amount: "10"}},
		block:   make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	l := newLoader(src)

	var wg sync.WaitGroup
	errs := make([]error, 5)
	wg.Add(1)
	go func() {
		defer wg.Done()
		errs[0] = l.Load(context.Background())
	}()
	<-src.started

	assert.True(t, l.Snapshot().Loading)
	for i := 1; i < len(errs); i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = l.Load(context.Background())
		}(i)
	}

	// Give the followers time to join the in-flight call.
	time.Sleep(20 * time.Millisecond)
	close(src.block)
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), src.calls.Load())
	assert.Equal(t, uint64(1), l.Generation())
}

func TestNeedUpdateDuringFetchStaysPending(t *testing.T) {
	src := &fakeSource{
		records: []core.Expense{{ID: "1"}},
		block:   make(chan struct{}),
		started: make(chan struct{}, 2),
	}
	l := newLoader(src)

	done := make(chan error, 1)
	go func() { done <- l.Load(context.Background()) }()
	<-src.started

	l.NeedUpdate()
	close(src.block)
	require.NoError(t, <-done)

	assert.True(t, l.Snapshot().NeedsRefresh)
	require.NoError(t, l.Load(context.Background()))
	assert.Equal(t, int32(2), src.calls.Load())
	assert.Equal(t, uint64(2), l.Generation())
}

func TestStaleResultIsDiscarded(t *testing.T) {
	src := &fakeSource{records: []core.Expense{{ID: "new"}}}
	l := newLoader(src)
	require.NoError(t, l.Load(context.Background()))

	// Simulate a fetch whose token predates the applied generation.
	l.mu.Lock()
	l.generation = 10
	l.mu.Unlock()
	l.NeedUpdate()
	src.set([]core.Expense{{ID: "stale"}}, nil)

	require.NoError(t, l.Load(context.Background()))
	snap := l.Snapshot()
	assert.Equal(t, uint64(10), snap.Generation)
	assert.Equal(t, "new", snap.Records[0].ID)
}

func TestLoadWithoutCategoryFetcher(t *testing.T) {
	src := &fakeSource{records: []core.Expense{{ID: "1"}}}
	reg := category.New(category.DefaultPalette())
	reg.Populate([]core.Category{{ID: 9, Name: "custom"}})

	l := New(src, nil, reg, format.English, WithLogger(log.New(log.Config{Output: io.Discard})))
	require.NoError(t, l.Load(context.Background()))
	assert.Equal(t, 9, l.Registry().IDForName("custom"))
}

func TestSnapshotIsACopy(t *testing.T) {
	src := &fakeSource{records: []core.Expense{{ID: "1"}}}
	l := newLoader(src)
	require.NoError(t, l.Load(context.Background()))

	snap := l.Snapshot()
	snap.Records[0].ID = "changed"
	assert.Equal(t, "1", l.Snapshot().Records[0].ID)
}

func TestCancelledCallerDoesNotAbortSharedFetch(t *testing.T) {
	src := &fakeSource{
		records: []core.Expense{{ID: "1", Amount: "10"}},
		block:   make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	l := newLoader(src)

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() { first <- l.Load(ctx) }()
	<-src.started

	cancel()
	require.ErrorIs(t, <-first, context.Canceled)
	assert.True(t, l.Snapshot().Loading)

	second := make(chan error, 1)
	go func() { second <- l.Load(context.Background()) }()
	time.Sleep(20 * time.Millisecond)
	close(src.block)
	require.NoError(t, <-second)

	snap := l.Snapshot()
	assert.Empty(t, snap.Error)
	assert.False(t, snap.NeedsRefresh)
	assert.Equal(t, 1, snap.Count)
	assert.Equal(t, uint64(1), snap.Generation)

	require.NoError(t, l.Load(context.Background()))
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestFetchTimeoutIsOwnedByLoader(t *testing.T) {
	src := &fakeSource{
		records: []core.Expense{{ID: "1"}},
		block:   make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	logger := log.New(log.Config{Output: io.Discard})
	l := New(src, src, nil, format.English, WithLogger(logger), WithFetchTimeout(20*time.Millisecond))

	err := l.Load(context.Background())
	require.ErrorIs(t, err, context.DeadlineExceeded)

	snap := l.Snapshot()
	assert.NotEmpty(t, snap.Error)
	assert.False(t, snap.Loading)
	assert.True(t, snap.Ready)
	assert.Equal(t, uint64(0), snap.Generation)
}

func TestSharedCallRechecksStaleness(t *testing.T) {
	cases := []struct {
		name      string
		needs     bool
		wantCalls int32
	}{
		{"current snapshot skips fetch", false, 1},
		{"stale snapshot fetches", true, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := &fakeSource{records: []core.Expense{{ID: "1"}}}
			l := newLoader(src)
			require.NoError(t, l.Load(context.Background()))
			if tc.needs {
				l.NeedUpdate()
			}

			// A caller that saw the snapshot stale before the first fetch
			// finished reaches the shared call afterwards.
			require.NoError(t, l.loadIfStale(context.Background()))
			assert.Equal(t, tc.wantCalls, src.calls.Load())
		})
	}
}
