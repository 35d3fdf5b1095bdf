package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendview/internal/core"
)

func TestStoreOrdersAndAssignsIDs(t *testing.T) {
	base := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	s := New([]core.Expense{
		{ID: "a", CreatedAt: base},
		{CreatedAt: base.Add(2 * time.Hour)},
		{ID: "c", CreatedAt: base.Add(time.Hour)},
		{ID: "d", CreatedAt: base.Add(time.Hour)},
	}, nil)

	got, err := s.FetchExpenses(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.NotEmpty(t, got[0].ID)
	assert.Equal(t, []string{"c", "d", "a"}, []string{got[1].ID, got[2].ID, got[3].ID})

	cats, err := s.FetchCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, core.DefaultCategories(), cats)

	got[1].ID = "mutated"
	again, _ := s.FetchExpenses(context.Background())
	assert.Equal(t, "c", again[1].ID)
}

func TestNewFromFiles(t *testing.T) {
	dir := t.TempDir()

	s, err := NewFromFiles(dir)
	require.NoError(t, err)
	got, _ := s.FetchExpenses(context.Background())
	assert.Empty(t, got)

	mustWrite := func(name, content string) {
		t.Helper()
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	mustWrite(ExpensesFile, `[{"id":"x","createdAt":"2025-07-16T10:00:00Z","category":"мебель и техника","amount":"99"}]`)
	mustWrite(CategoriesFile, `[{"id":4,"name":" мебель и техника "},{"id":4,"name":"dup"},{"id":9,"name":""}]`)

	s, err = NewFromFiles(dir)
	require.NoError(t, err)
	got, _ = s.FetchExpenses(context.Background())
	require.Len(t, got, 1)
	assert.Equal(t, "99", got[0].Amount)

	cats, _ := s.FetchCategories(context.Background())
	assert.Equal(t, []core.Category{{ID: 4, Name: "мебель и техника"}}, cats)
}

func TestNewFromFilesRejectsBadJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ExpensesFile), []byte("{"), 0o644))

	_, err := NewFromFiles(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}
