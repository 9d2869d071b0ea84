package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/CG3-Media/dexo-activity/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "activities.db"), time.UTC)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func insertAt(t *testing.T, s *SQLiteStore, content, category string, at time.Time) {
	t.Helper()
	_, err := s.db.Exec(
		`INSERT INTO activities (content, category, created_at) VALUES (?, ?, ?)`,
		content, category, at.UTC().Format(sqliteTimeFormat))
	require.NoError(t, err)
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t)

	a := &models.Activity{Content: "Went for a run", Category: "fitness", Details: "5k"}
	require.NoError(t, s.Append(ctx, a))
	assert.NotZero(t, a.ID)

	got, err := s.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Went for a run", got.Content)
	assert.Equal(t, "fitness", got.Category)
	assert.Equal(t, "5k", got.Details)
	assert.True(t, a.CreatedAt.Equal(got.CreatedAt))
}

func TestSQLiteStoreEmptyDetailsStaysEmpty(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t)

	a := &models.Activity{Content: "no details", Category: "general"}
	require.NoError(t, s.Append(ctx, a))

	got, err := s.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Details)
}

func TestSQLiteStoreGetNotFound(t *testing.T) {
	s := newTestSQLiteStore(t)
	_, err := s.Get(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStoreSchemaIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activities.db")
	s, err := NewSQLiteStore(path, time.UTC)
	require.NoError(t, err)
	require.NoError(t, s.Append(context.Background(), &models.Activity{Content: "x", Category: "general"}))
	require.NoError(t, s.Close())

	// Reopening runs schema creation and the details migration again.
	s2, err := NewSQLiteStore(path, time.UTC)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.List(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSQLiteStoreListFilters(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t)
	day1 := time.Date(2025, 6, 14, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	insertAt(t, s, "Fixed the bug", "work", day1)
	insertAt(t, s, "Morning walk", "fitness", day2)
	insertAt(t, s, "Code review", "work", day2)

	got, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Fixed the bug", got[2].Content)

	got, err = s.List(ctx, Filter{Search: "FIX"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Fixed the bug", got[0].Content)

	got, err = s.List(ctx, Filter{Date: "2025-06-15"})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = s.List(ctx, Filter{Search: "work", Date: "2025-06-15"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Code review", got[0].Content)

	got, err = s.List(ctx, Filter{Date: "bogus"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLiteStoreDayBoundary(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t)
	insertAt(t, s, "last minute", "general", time.Date(2025, 6, 14, 23, 59, 0, 0, time.UTC))

	got, err := s.List(ctx, Filter{Date: "2025-06-14"})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = s.List(ctx, Filter{Date: "2025-06-15"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLiteStoreDistinctDays(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t)
	insertAt(t, s, "a", "general", time.Date(2025, 6, 13, 8, 0, 0, 0, time.UTC))
	insertAt(t, s, "b", "general", time.Date(2025, 6, 14, 9, 0, 0, 0, time.UTC))
	insertAt(t, s, "c", "general", time.Date(2025, 6, 14, 18, 0, 0, 0, time.UTC))

	days, err := s.DistinctDays(ctx, 14)
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-06-14", "2025-06-13"}, days)
}
