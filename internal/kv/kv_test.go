package kv

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runBackendContract(t *testing.T, b Backend) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		v, ok, err := b.Get(ctx, "absent")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, v)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, b.Set(ctx, "shoplens_wishlist", `[{"id":"w1"}]`))

		v, ok, err := b.Get(ctx, "shoplens_wishlist")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, `[{"id":"w1"}]`, v)
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, b.Set(ctx, "shoplens_wishlist", `[]`))

		v, ok, err := b.Get(ctx, "shoplens_wishlist")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, `[]`, v)
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		require.NoError(t, b.Remove(ctx, "shoplens_wishlist"))
		require.NoError(t, b.Remove(ctx, "shoplens_wishlist"))

		_, ok, err := b.Get(ctx, "shoplens_wishlist")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestMemoryBackend(t *testing.T) {
	runBackendContract(t, NewMemory())
}

func TestFileBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "storage.json")

	f, err := NewFile(path)
	require.NoError(t, err)
	runBackendContract(t, f)

	t.Run("reload from disk", func(t *testing.T) {
		ctx := context.Background()
		require.NoError(t, f.Set(ctx, "shoplens_search_history", `[{"id":"h1"}]`))

		reopened, err := NewFile(path)
		require.NoError(t, err)

		v, ok, err := reopened.Get(ctx, "shoplens_search_history")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, `[{"id":"h1"}]`, v)
	})

	t.Run("corrupt file fails open", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))

		_, err := NewFile(bad)
		assert.Error(t, err)
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := NewFile("")
		assert.Error(t, err)
	})
}

func TestSQLiteBackend(t *testing.T) {
	s, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	runBackendContract(t, s)
}

func TestSQLiteBackend_PersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s1, err := OpenSQLite(dir)
	require.NoError(t, err)
	require.NoError(t, s1.Set(ctx, "shoplens_price_alerts", `[{"id":"a1"}]`))
	require.NoError(t, s1.Close())

	s2, err := OpenSQLite(dir)
	require.NoError(t, err)
	defer s2.Close()

	v, ok, err := s2.Get(ctx, "shoplens_price_alerts")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"a1"}]`, v)
}

func TestSQLiteBackend_DataDirError(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	_, err := OpenSQLite(filepath.Join(blocker, "data"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create data directory")
}

func TestPostgresBackend(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	pg, err := OpenPostgres(context.Background(), PostgresConfig{DSN: dsn, MaxConns: 2})
	require.NoError(t, err)
	t.Cleanup(func() { pg.Close() })

	runBackendContract(t, pg)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("memory by default", func(t *testing.T) {
		s, err := Open(ctx, Options{}, logger)
		require.NoError(t, err)
		assert.IsType(t, &Memory{}, s)
	})

	t.Run("file", func(t *testing.T) {
		s, err := Open(ctx, Options{Type: "file", FilePath: filepath.Join(t.TempDir(), "s.json")}, logger)
		require.NoError(t, err)
		assert.IsType(t, &File{}, s)
	})

	t.Run("sqlite", func(t *testing.T) {
		s, err := Open(ctx, Options{Type: "sqlite", DataDir: ":memory:"}, logger)
		require.NoError(t, err)
		defer s.Close()
		assert.IsType(t, &SQLite{}, s)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := Open(ctx, Options{Type: "etcd"}, logger)
		assert.ErrorIs(t, err, ErrUnknownBackend)
	})
}
