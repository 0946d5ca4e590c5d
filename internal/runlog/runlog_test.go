package runlog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestLog(t *testing.T) *Log {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func TestStartCompleteRecent(t *testing.T) {
	l := openTestLog(t)
	ctx := context.Background()

	id, err := l.Start(ctx, "cache")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	require.NoError(t, l.Complete(ctx, id, 4096, 120))

	entries, err := l.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, id, e.ID)
	assert.Equal(t, "cache", e.Job)
	assert.Equal(t, "complete", e.Status)
	assert.Equal(t, 4096, e.RawRows)
	assert.Equal(t, 120, e.FilteredRows)
	require.NotNil(t, e.CompletedAt)
	assert.Empty(t, e.Error)
}

func TestFail(t *testing.T) {
	l := openTestLog(t)
	ctx := context.Background()

	id, err := l.Start(ctx, "backfill")
	require.NoError(t, err)
	require.NoError(t, l.Fail(ctx, id, errors.New("provider error: rate limit exceeded")))

	entries, err := l.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "failed", entries[0].Status)
	assert.Contains(t, entries[0].Error, "rate limit exceeded")
}

func TestRecentHonorsLimit(t *testing.T) {
	l := openTestLog(t)
	ctx := context.Background()

	for range 5 {
		id, err := l.Start(ctx, "cache")
		require.NoError(t, err)
		require.NoError(t, l.Complete(ctx, id, 1000, 50))
	}

	entries, err := l.Recent(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestRecentEmpty(t *testing.T) {
	l := openTestLog(t)
	entries, err := l.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
