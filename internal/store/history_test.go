package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHistory(t *testing.T) *History {
	t.Helper()
	h, err := NewHistory(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })
	return h
}

func TestNewHistory_CreatesSchema(t *testing.T) {
	h := newTestHistory(t)

	var count int
	err := h.db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='practice_sessions'").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestHistory_RecordAndRecent(t *testing.T) {
	h := newTestHistory(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, p := range []string{"sliding_window", "two_pointers", "sliding_window"} {
		require.NoError(t, h.Record(ctx, SessionRecord{
			ID:           fmt.Sprintf("id-%d", i),
			Pattern:      p,
			TemplateName: "Template",
			Language:     "python",
			FilePath:     "/tmp/" + p + ".py",
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		}))
	}

	recent, err := h.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "id-2", recent[0].ID)
	assert.Equal(t, "id-1", recent[1].ID)
	assert.True(t, recent[0].CreatedAt.Equal(base.Add(2*time.Minute)))

	all, err := h.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestHistory_RecordIsIdempotentPerID(t *testing.T) {
	h := newTestHistory(t)
	ctx := context.Background()

	rec := SessionRecord{ID: "same", Pattern: "backtracking", TemplateName: "Basic Backtracking", Language: "python", FilePath: "x.py"}
	require.NoError(t, h.Record(ctx, rec))
	require.NoError(t, h.Record(ctx, rec))

	all, err := h.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.False(t, all[0].CreatedAt.IsZero())
}

func TestHistory_RecordRequiresID(t *testing.T) {
	h := newTestHistory(t)
	assert.Error(t, h.Record(context.Background(), SessionRecord{Pattern: "x"}))
}

func TestHistory_CountByPattern(t *testing.T) {
	h := newTestHistory(t)
	ctx := context.Background()

	patterns := []string{"two_pointers", "sliding_window", "two_pointers", "backtracking", "two_pointers", "sliding_window"}
	for i, p := range patterns {
		require.NoError(t, h.Record(ctx, SessionRecord{ID: fmt.Sprint(i), Pattern: p}))
	}

	got, err := h.CountByPattern(ctx)
	require.NoError(t, err)
	want := []PatternCount{
		{"two_pointers", 3},
		{"sliding_window", 2},
		{"backtracking", 1},
	}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("CountByPattern() mismatch (-want +got):\n%s", d)
	}
}

func TestHistory_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")
	ctx := context.Background()

	h, err := NewHistory(path)
	require.NoError(t, err)
	require.NoError(t, h.Record(ctx, SessionRecord{ID: "a", Pattern: "dynamic_programming"}))
	require.NoError(t, h.Close())

	h, err = NewHistory(path)
	require.NoError(t, err)
	defer h.Close()
	assert.Equal(t, path, h.Path())

	recent, err := h.Recent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "dynamic_programming", recent[0].Pattern)
}
