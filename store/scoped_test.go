package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkantrust/abassist/store"
)

func TestScopedLogReleasesFile(t *testing.T) {
	for _, backend := range []string{store.BackendBolt, store.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "log.db")
			scoped, err := store.NewScopedLog(backend, path)
			require.NoError(t, err)
			ctx := context.Background()

			first, err := scoped.Append(ctx, sampleRecord("a.xml"))
			require.NoError(t, err)
			assert.Equal(t, uint64(1), first.ID)

			// The file is free again, so a second handle opens at once.
			l, err := store.Open(backend, path)
			require.NoError(t, err)
			got, err := l.Get(ctx, first.ID)
			require.NoError(t, err)
			assert.Equal(t, "a.xml", got.TemplateName)
			require.NoError(t, l.Close())

			second, err := scoped.Append(ctx, sampleRecord("b.xml"))
			require.NoError(t, err)
			assert.Equal(t, uint64(2), second.ID)

			got, err = scoped.Get(ctx, second.ID)
			require.NoError(t, err)
			assert.Equal(t, "b.xml", got.TemplateName)
		})
	}
}

func TestScopedLogLockedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.db")
	held, err := store.Open(store.BackendBolt, path)
	require.NoError(t, err)
	t.Cleanup(func() { held.Close() })

	scoped, err := store.NewScopedLog(store.BackendBolt, path)
	require.NoError(t, err)
	_, err = scoped.Append(context.Background(), sampleRecord("a.xml"))
	assert.Error(t, err)
}

func TestScopedLogDefaults(t *testing.T) {
	scoped, err := store.NewScopedLog("", "")
	require.NoError(t, err)
	assert.Equal(t, store.DefaultBoltPath, scoped.Path())

	scoped, err = store.NewScopedLog(store.BackendSQLite, "")
	require.NoError(t, err)
	assert.Equal(t, store.DefaultSQLitePath, scoped.Path())

	_, err = store.NewScopedLog("mongo", "")
	assert.Error(t, err)
}

func TestOpenDefaultPathsDiffer(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })

	sqliteLog, err := store.Open(store.BackendSQLite, "")
	require.NoError(t, err)
	require.NoError(t, sqliteLog.Close())

	boltLog, err := store.Open(store.BackendBolt, "")
	require.NoError(t, err, "bolt must not reuse the SQLite file")
	require.NoError(t, boltLog.Close())

	assert.FileExists(t, filepath.Join(dir, store.DefaultBoltPath))
	assert.FileExists(t, filepath.Join(dir, store.DefaultSQLitePath))
}
