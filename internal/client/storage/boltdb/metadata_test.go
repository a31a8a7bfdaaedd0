package boltdb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"github.com/iudanet/ground/internal/client/storage"
)

// createTestStorage создает временное BoltDB хранилище и инициализирует buckets
func createTestStorage(t *testing.T) *Storage {
	t.Helper()

	store, err := New(context.Background(), filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})

	return store
}

func TestSaveAndGetLastSyncTimestamp(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	// Изначально, если timestamp не сохранён, ожидаем 0
	ts, err := store.GetLastSyncTimestamp(ctx, "project-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), ts)

	require.NoError(t, store.SaveLastSyncTimestamp(ctx, "project-1", 1234567890))
	require.NoError(t, store.SaveLastSyncTimestamp(ctx, "project-2", 7))

	gotTS, err := store.GetLastSyncTimestamp(ctx, "project-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1234567890), gotTS)

	gotTS, err = store.GetLastSyncTimestamp(ctx, "project-2")
	require.NoError(t, err)
	assert.Equal(t, int64(7), gotTS, "watermarks are kept per project")
}

func TestGetLastSyncTimestamp_BucketMissing(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	// Удаляем bucket metadata напрямую
	err := store.db.Update(func(tx *bbolt.Tx) error {
		return tx.DeleteBucket(bucketMetadata)
	})
	require.NoError(t, err)

	_, err = store.GetLastSyncTimestamp(ctx, "project-1")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "metadata bucket not found")

	err = store.SaveLastSyncTimestamp(ctx, "project-1", 42)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "metadata bucket not found")
}

func TestGetNodeID_Persistent(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "client.db")

	store, err := New(ctx, dbPath)
	require.NoError(t, err)

	first, err := store.GetNodeID(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, first)

	again, err := store.GetNodeID(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, again)
	require.NoError(t, store.Close())

	reopened, err := New(ctx, dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	afterRestart, err := reopened.GetNodeID(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, afterRestart)
}

func TestMetadata_Closed(t *testing.T) {
	store, err := New(context.Background(), filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = store.GetNodeID(context.Background())
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}
