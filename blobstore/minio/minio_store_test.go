package minio

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/hupe1980/asmref/blobstore"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(minio.ErrorResponse{Code: "NoSuchKey"}))
	assert.True(t, isNotFound(minio.ErrorResponse{Code: "NotFound"}))
	assert.False(t, isNotFound(minio.ErrorResponse{Code: "AccessDenied"}))
}

func TestNew_BadEndpoint(t *testing.T) {
	_, err := New(Config{Endpoint: ""}, "b", "", nil)
	assert.Error(t, err)
}

// TestMinioStore_Integration requires a running MinIO instance.
func TestMinioStore_Integration(t *testing.T) {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		t.Skip("Skipping MinIO integration test: MINIO_ENDPOINT not set")
	}
	bucket := "test-asmref"
	ctx := context.Background()

	store, err := New(Config{
		Endpoint:  endpoint,
		AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		SecretKey: os.Getenv("MINIO_SECRET_KEY"),
	}, bucket, "test-prefix/", nil)
	require.NoError(t, err)

	exists, err := store.client.BucketExists(ctx, bucket)
	if err != nil {
		t.Skipf("MinIO not available: %v", err)
	}
	if !exists {
		require.NoError(t, store.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	data := []byte("hello minio world")
	require.NoError(t, store.Put(ctx, "test.winmd", data))

	blob, err := store.Open(ctx, "test.winmd")
	require.NoError(t, err)
	require.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, 5)
	n, err := blob.ReadAt(ctx, buf, 6)
	require.NoError(t, err)
	assert.Equal(t, "minio", string(buf[:n]))

	n, err = blob.ReadAt(ctx, buf, int64(len(data))-3)
	assert.Equal(t, 3, n)
	assert.ErrorIs(t, err, io.EOF)

	all, err := blobstore.ReadAll(ctx, blob)
	require.NoError(t, err)
	assert.Equal(t, data, all)
	require.NoError(t, blob.Close())

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, names, "test.winmd")

	_, err = store.Open(ctx, "missing.winmd")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	_ = store.client.RemoveObject(ctx, bucket, store.key("test.winmd"), minio.RemoveObjectOptions{})
}
