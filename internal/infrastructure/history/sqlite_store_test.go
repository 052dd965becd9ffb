package history

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/gitbrew/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "history", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSaveAndRecordsNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	for i, cmd := range []string{"git status", "git add .", "git push"} {
		require.NoError(t, store.Save(ctx, domain.HistoryRecord{
			RunID:     "run-1",
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Intent:    "ship it",
			Command:   cmd,
			Verdict:   domain.VerdictMutating,
			State:     domain.StateExecuted,
		}))
	}

	records, err := store.Records(ctx, 2, "")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "git push", records[0].Command)
	assert.Equal(t, "git add .", records[1].Command)
	assert.Equal(t, domain.StateExecuted, records[0].State)
	assert.True(t, records[0].Succeeded())

	found, err := store.Records(ctx, 0, "status")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "git status", found[0].Command)
}

func TestPruneAndClear(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.HistoryRecord{Command: "git log", Timestamp: time.Now().AddDate(0, 0, -40)}))
	require.NoError(t, store.Save(ctx, domain.HistoryRecord{Command: "git diff"}))

	removed, err := store.Prune(ctx, 30)
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	records, err := store.Records(ctx, 0, "")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "git diff", records[0].Command)

	require.NoError(t, store.Clear(ctx))
	records, err = store.Records(ctx, 0, "")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestExportJSON(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, domain.HistoryRecord{RunID: "r", Command: "git status"}))
	require.NoError(t, store.Save(ctx, domain.HistoryRecord{RunID: "r", Command: "git log"}))

	var buf bytes.Buffer
	n, err := store.ExportJSON(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, strings.Split(strings.TrimSpace(buf.String()), "\n"), 2)
	assert.Contains(t, buf.String(), `"command":"git status"`)
}
