package store

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supplelab/tierank/schema"
)

func TestSnapshotStore_NoneBackend(t *testing.T) {
	store, err := NewSnapshotStore(snapshotTable, schema.NoneBackend, "")
	require.NoError(t, err)

	assert.NoError(t, store.Set("id", []byte("[]"), 1, 100))

	_, _, _, err = store.Get("id")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	_, err = store.Latest()
	assert.ErrorIs(t, err, sql.ErrNoRows)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "none", status.Backend)
	assert.False(t, status.Connected)

	assert.NoError(t, store.Close())
}

func TestSnapshotStore_InvalidTableName(t *testing.T) {
	_, err := NewSnapshotStore("snapshots; DROP TABLE x", schema.SQLiteBackend, ":memory:")
	assert.Error(t, err)
}

func TestSnapshotStore_UnsupportedBackend(t *testing.T) {
	_, err := NewSnapshotStore(snapshotTable, schema.DatabaseBackend("redis"), "")
	assert.Error(t, err)
}

func TestSnapshotStore_SQLite(t *testing.T) {
	store, err := NewSnapshotStore(snapshotTable, schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	_, _, _, err = store.Get("missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	require.NoError(t, store.Set("older", []byte(`[{"id":"a"}]`), 1, 1000))
	require.NoError(t, store.Set("newer", []byte(`[{"id":"b"}]`), 1, 2000))

	value, version, ts, err := store.Get("older")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"a"}]`, string(value))
	assert.Equal(t, 1, version)
	assert.Equal(t, int64(1000), ts)

	latest, err := store.Latest()
	require.NoError(t, err)
	assert.Equal(t, "newer", latest)

	// Storing an identical catalog again refreshes it.
	require.NoError(t, store.Set("older", []byte(`[{"id":"a"}]`), 2, 3000))
	latest, err = store.Latest()
	require.NoError(t, err)
	assert.Equal(t, "older", latest)

	_, version, _, err = store.Get("older")
	require.NoError(t, err)
	assert.Equal(t, 2, version)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Equal(t, 2, status.TotalSnapshots)
	assert.Equal(t, "older", status.LatestID)
	assert.Equal(t, int64(3000), status.LastEntryTime.Unix())
	assert.Equal(t, int64(2000), status.OldestEntryTime.Unix())
	assert.Greater(t, status.TableSizeBytes, int64(0))
}

func TestSnapshotStore_SQLiteFilePersists(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "snapshots.db")

	store, err := NewSnapshotStore(snapshotTable, schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Set("abc", []byte("[]"), 1, 42))
	require.NoError(t, store.Close())

	reopened, err := NewSnapshotStore(snapshotTable, schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	value, _, ts, err := reopened.Get("abc")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(value))
	assert.Equal(t, int64(42), ts)

	require.NoError(t, ClearSnapshots(schema.SQLiteBackend, dbPath, ""))
	assert.NoFileExists(t, dbPath)
}
