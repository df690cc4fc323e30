package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseBackend runs the same contract checks against any Backend
func exerciseBackend(t *testing.T, b Backend) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := b.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, b.Set(ctx, StorageKey, []byte(`{"a":1}`)))
	value, ok, err := b.Get(ctx, StorageKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"a":1}`, string(value))

	require.NoError(t, b.Set(ctx, StorageKey, []byte(`{}`)))
	value, _, err = b.Get(ctx, StorageKey)
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(value))

	require.NoError(t, b.Remove(ctx, StorageKey))
	_, ok, err = b.Get(ctx, StorageKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, b.Remove(ctx, StorageKey))
}

func TestMemoryBackend(t *testing.T) {
	exerciseBackend(t, NewMemoryBackend())
}

func TestMemoryBackend_CopiesValues(t *testing.T) {
	b := NewMemoryBackend()
	ctx := context.Background()

	value := []byte("abc")
	require.NoError(t, b.Set(ctx, "k", value))
	value[0] = 'x'

	got, _, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestFileBackend(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "state")
	b, err := NewFileBackend(dir)
	require.NoError(t, err)

	exerciseBackend(t, b)

	require.NoError(t, b.Set(context.Background(), StorageKey, []byte(`{}`)))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary files must not be left behind")
	assert.Equal(t, StorageKey+".json", entries[0].Name())
}

func TestSQLiteBackend(t *testing.T) {
	b, err := OpenSQLiteBackend(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })

	exerciseBackend(t, b)
}

func TestSQLiteBackend_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db", "worktime.db")
	b, err := OpenSQLiteBackend(path)
	require.NoError(t, err)

	require.NoError(t, b.Set(context.Background(), StorageKey, []byte(`{"x":{}}`)))
	require.NoError(t, b.Close())

	reopened, err := OpenSQLiteBackend(path)
	require.NoError(t, err)
	t.Cleanup(func() { reopened.Close() })

	value, ok, err := reopened.Get(context.Background(), StorageKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"x":{}}`, string(value))
}

func TestRedisBackend(t *testing.T) {
	addr := os.Getenv("WORKTIME_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("WORKTIME_TEST_REDIS_ADDR not set")
	}

	b, err := NewRedisBackend(addr, "", 0, "worktime-test:")
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })

	exerciseBackend(t, b)
}
