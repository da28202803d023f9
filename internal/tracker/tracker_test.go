package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartek5186/sheet2woo/internal/db"
	"github.com/bartek5186/sheet2woo/internal/kv"
)

func newTestTracker(t *testing.T) *Tracker {
	t.Helper()
	h, err := db.OpenMemory()
	require.NoError(t, err)
	require.NoError(t, h.Migrate())
	return New(kv.DocumentScope(h.DB, "sheet-1"))
}

func TestDiff_ReportsMissingIDsInSnapshotOrder(t *testing.T) {
	tr := newTestTracker(t)

	require.NoError(t, tr.Snapshot([]string{"1", "2", "3"}))

	deleted, err := tr.Diff([]string{"1", "3"})
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, deleted)

	deleted, err = tr.Diff(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, deleted)
}

func TestDiff_NoSnapshot(t *testing.T) {
	tr := newTestTracker(t)

	deleted, err := tr.Diff([]string{"1", "2"})
	require.NoError(t, err)
	assert.Empty(t, deleted)
}

func TestDiff_NothingDeleted(t *testing.T) {
	tr := newTestTracker(t)

	require.NoError(t, tr.Snapshot([]string{"1", "2"}))

	deleted, err := tr.Diff([]string{"2", "1", "99"})
	require.NoError(t, err)
	assert.Empty(t, deleted)
}

func TestSnapshot_ReplacesPrevious(t *testing.T) {
	tr := newTestTracker(t)

	require.NoError(t, tr.Snapshot([]string{"1", "2", "3"}))
	require.NoError(t, tr.Snapshot([]string{"4"}))

	deleted, err := tr.Diff([]string{})
	require.NoError(t, err)
	assert.Equal(t, []string{"4"}, deleted)
}

func TestClear_ThenDiffIsEmpty(t *testing.T) {
	tr := newTestTracker(t)

	require.NoError(t, tr.Snapshot([]string{"1", "2", "3"}))
	require.NoError(t, tr.Clear())

	deleted, err := tr.Diff([]string{"1"})
	require.NoError(t, err)
	assert.Empty(t, deleted)

	// clearing twice is fine
	require.NoError(t, tr.Clear())
}

func TestSnapshot_EmptySet(t *testing.T) {
	tr := newTestTracker(t)

	require.NoError(t, tr.Snapshot(nil))

	deleted, err := tr.Diff([]string{"1"})
	require.NoError(t, err)
	assert.Empty(t, deleted)
}
