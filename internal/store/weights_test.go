// ABOUTME: Tests for weight entry persistence, pagination, and owner scoping
// ABOUTME: Pagination walks every entry exactly once across page boundaries

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedWeightEntries(t *testing.T, s *SQLiteStore, userID string, n int) []string {
	t.Helper()

	base := time.Date(2026, 8, 1, 8, 0, 0, 0, time.UTC)
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		entry := &WeightEntry{
			UserID:     userID,
			MeasuredAt: base.Add(time.Duration(i) * 24 * time.Hour),
			WeightLbs:  180 + float64(i),
		}
		require.NoError(t, s.UpsertWeightEntry(context.Background(), entry))
		ids = append(ids, entry.ID)
	}
	return ids
}

func TestUpsertWeightEntryCreate(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	createTestUser(t, s, "u1", "a@example.com")

	entry := &WeightEntry{
		UserID:     "u1",
		MeasuredAt: time.Date(2026, 8, 30, 8, 0, 0, 0, time.UTC),
		WeightLbs:  182.4,
		Notes:      "after morning run",
	}
	require.NoError(t, s.UpsertWeightEntry(ctx, entry))
	assert.NotEmpty(t, entry.ID, "insert assigns an id")

	entries, err := s.ListWeightEntries(ctx, "u1", 10, "")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 182.4, entries[0].WeightLbs)
	assert.Equal(t, "after morning run", entries[0].Notes)
	assert.True(t, entries[0].MeasuredAt.Equal(entry.MeasuredAt))
}

func TestUpsertWeightEntryUpdate(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	createTestUser(t, s, "u1", "a@example.com")
	ids := seedWeightEntries(t, s, "u1", 1)

	entry := &WeightEntry{
		ID:         ids[0],
		UserID:     "u1",
		MeasuredAt: time.Date(2026, 8, 1, 8, 0, 0, 0, time.UTC),
		WeightLbs:  179.0,
	}
	require.NoError(t, s.UpsertWeightEntry(ctx, entry))

	entries, err := s.ListWeightEntries(ctx, "u1", 10, "")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 179.0, entries[0].WeightLbs)
}

func TestUpsertWeightEntryForeignOwner(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	createTestUser(t, s, "u1", "a@example.com")
	createTestUser(t, s, "u2", "b@example.com")
	ids := seedWeightEntries(t, s, "u1", 1)

	err := s.UpsertWeightEntry(ctx, &WeightEntry{
		ID:         ids[0],
		UserID:     "u2",
		MeasuredAt: time.Now().UTC(),
		WeightLbs:  100,
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListWeightEntriesOrderAndPagination(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	createTestUser(t, s, "u1", "a@example.com")
	seedWeightEntries(t, s, "u1", 7)

	// Newest first.
	page, err := s.ListWeightEntries(ctx, "u1", 3, "")
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.Equal(t, 186.0, page[0].WeightLbs)

	// Walking with cursors yields each entry exactly once.
	seen := make(map[string]bool)
	cursor := ""
	for {
		page, err := s.ListWeightEntries(ctx, "u1", 3, cursor)
		require.NoError(t, err)
		if len(page) == 0 {
			break
		}
		for _, e := range page {
			assert.False(t, seen[e.ID], "entry %s returned twice", e.ID)
			seen[e.ID] = true
		}
		cursor = page[len(page)-1].ID
	}
	assert.Len(t, seen, 7)
}

func TestListWeightEntriesTiedTimestamps(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	createTestUser(t, s, "u1", "a@example.com")

	at := time.Date(2026, 8, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.UpsertWeightEntry(ctx, &WeightEntry{
			UserID:     "u1",
			MeasuredAt: at,
			WeightLbs:  180,
		}))
	}

	seen := make(map[string]bool)
	cursor := ""
	for {
		page, err := s.ListWeightEntries(ctx, "u1", 2, cursor)
		require.NoError(t, err)
		if len(page) == 0 {
			break
		}
		for _, e := range page {
			assert.False(t, seen[e.ID], "entry %s returned twice", e.ID)
			seen[e.ID] = true
		}
		cursor = page[len(page)-1].ID
	}
	assert.Len(t, seen, 5, "tied timestamps break on entry id")
}

func TestListWeightEntriesBadCursor(t *testing.T) {
	s := setupTestStore(t)
	createTestUser(t, s, "u1", "a@example.com")

	_, err := s.ListWeightEntries(context.Background(), "u1", 10, "bogus")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteWeightEntriesOwnerScoped(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	createTestUser(t, s, "u1", "a@example.com")
	createTestUser(t, s, "u2", "b@example.com")
	mine := seedWeightEntries(t, s, "u1", 3)
	foreign := seedWeightEntries(t, s, "u2", 1)

	deleted, err := s.DeleteWeightEntries(ctx, "u1", []string{mine[0], mine[1], foreign[0], "ghost"})
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	remaining, err := s.ListWeightEntries(ctx, "u2", 10, "")
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

func TestDeleteWeightEntriesEmptySet(t *testing.T) {
	s := setupTestStore(t)

	deleted, err := s.DeleteWeightEntries(context.Background(), "u1", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, deleted)
}
