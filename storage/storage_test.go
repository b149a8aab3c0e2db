package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tailplane/config"
	"tailplane/model"
)

func TestSaveSnapshotLayout(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)
	require.NoError(t, store.EnsureDirs())

	at := time.Date(2026, 3, 7, 14, 5, 9, 0, time.UTC)
	snap := NewSnapshot(config.Default(), []string{"tailwind.config.yaml"}, at)
	require.NoError(t, store.SaveSnapshot(snap))

	path := filepath.Join(dir, "snapshots", "2026", "03", "07", "2026-03-07T14-05-09.000000000Z.json")
	_, err := os.Stat(path)
	require.NoError(t, err)

	assert.Equal(t, config.Default().Digest(), snap.Digest)
}

func TestListSnapshotsRange(t *testing.T) {
	store := New(t.TempDir())

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for _, offset := range []time.Duration{48 * time.Hour, 0, 24 * time.Hour} {
		require.NoError(t, store.SaveSnapshot(NewSnapshot(config.Default(), nil, base.Add(offset))))
	}

	all, err := store.ListSnapshots(time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].Timestamp.Equal(base))
	assert.True(t, all[2].Timestamp.Equal(base.Add(48*time.Hour)))

	some, err := store.ListSnapshots(base.Add(time.Hour), base.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, some, 1)
	assert.True(t, some[0].Timestamp.Equal(base.Add(24*time.Hour)))
}

func TestListSnapshotsEmptyStore(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "missing"))

	snaps, err := store.ListSnapshots(time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, snaps)

	_, err = store.Latest()
	assert.ErrorIs(t, err, ErrNoSnapshots)
}

func TestLatestAndRestore(t *testing.T) {
	store := New(t.TempDir())

	first := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveSnapshot(NewSnapshot(config.Default(), nil, first)))

	later, err := config.New([]string{"./**/*.html"}, nil, model.DarkModeMedia)
	require.NoError(t, err)
	require.NoError(t, store.SaveSnapshot(NewSnapshot(later, []string{"a.json", "b.toml"}, first.Add(time.Minute))))

	snap, err := store.Latest()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.json", "b.toml"}, snap.Sources)

	rec, err := Restore(snap)
	require.NoError(t, err)
	assert.True(t, rec.Equal(later))
}

func TestSaveSnapshotRejectsIncomplete(t *testing.T) {
	store := New(t.TempDir())

	require.Error(t, store.SaveSnapshot(nil))
	require.Error(t, store.SaveSnapshot(&model.Snapshot{}))
}
