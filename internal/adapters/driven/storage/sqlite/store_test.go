package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "/doc/comments/offset", `[]`))
	require.NoError(t, s.Set(ctx, "/doc/comments/offset", `[{"id":"1"}]`))

	value, ok, err := s.Get(ctx, "/doc/comments/offset")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `[{"id":"1"}]`, value)
}

func TestStoreRemove(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Set(ctx, "k", "v"))
	require.NoError(t, s.Remove(ctx, "k"))
	require.NoError(t, s.Remove(ctx, "k"), "removing an absent key is fine")

	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "k", "v"))
	require.NoError(t, first.Close())

	// Reopening runs migrations again; they must be idempotent.
	second, err := NewStore(dir)
	require.NoError(t, err)
	defer second.Close()

	value, ok, err := second.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v", value)
}

func TestStoreCreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")

	s, err := NewStore(dir)
	require.NoError(t, err)
	defer s.Close()

	_, statErr := os.Stat(s.Path())
	assert.NoError(t, statErr)
}

func TestMigrationVersion(t *testing.T) {
	v, err := migrationVersion("0001_create_kv.up.sql")
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	_, err = migrationVersion("nounderscore")
	assert.Error(t, err)
	_, err = migrationVersion("abc_create.up.sql")
	assert.Error(t, err)
}
