package objectstore_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/roncuevas/LocalJSON/cache"
	"github.com/roncuevas/LocalJSON/errors"
	"github.com/roncuevas/LocalJSON/internal/storetest"
	"github.com/roncuevas/LocalJSON/store"
	"github.com/roncuevas/LocalJSON/store/objectstore"
)

const testBucket = "localjson-test"

// setupMinIO starts a MinIO container and returns a client for it.
func setupMinIO(t *testing.T) *minio.Client {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "minio/minio:latest",
		ExposedPorts: []string{"9000/tcp"},
		Env: map[string]string{
			"MINIO_ROOT_USER":     "minioadmin",
			"MINIO_ROOT_PASSWORD": "minioadmin",
		},
		Cmd:        []string{"server", "/data"},
		WaitingFor: wait.ForHTTP("/minio/health/live").WithPort("9000/tcp"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start MinIO container")
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err, "failed to get container endpoint")

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
		Secure: false,
	})
	require.NoError(t, err, "failed to create MinIO client")
	return client
}

func TestIntegration_Conformance(t *testing.T) {
	client := setupMinIO(t)

	// Every subtest gets its own prefix so they share one bucket.
	var n atomic.Int64
	newStore := func(t *testing.T) *objectstore.Store {
		s, err := objectstore.New(objectstore.Config{
			Client: client,
			Bucket: testBucket,
			Prefix: fmt.Sprintf("run-%d", n.Add(1)),
		})
		require.NoError(t, err)
		require.NoError(t, s.EnsureBucket(context.Background()))
		return s
	}

	t.Run("store", func(t *testing.T) {
		storetest.Run(t, func(t *testing.T) store.Store { return newStore(t) })
	})

	t.Run("cached", func(t *testing.T) {
		storetest.Run(t, func(t *testing.T) store.Store {
			return cache.MustNew(newStore(t))
		})
	})

	t.Run("content type", func(t *testing.T) {
		ctx := context.Background()
		s, err := objectstore.New(objectstore.Config{Client: client, Bucket: testBucket, Prefix: "typed"})
		require.NoError(t, err)
		require.NoError(t, s.EnsureBucket(ctx))
		require.NoError(t, s.Put(ctx, "doc.json", map[string]string{"a": "b"}))

		info, err := client.StatObject(ctx, testBucket, "typed/doc.json", minio.StatObjectOptions{})
		require.NoError(t, err)
		assert.Equal(t, objectstore.ContentType, info.ContentType)
	})
}

func TestIntegration_MissingBucket(t *testing.T) {
	client := setupMinIO(t)
	s, err := objectstore.New(objectstore.Config{Client: client, Bucket: "does-not-exist"})
	require.NoError(t, err)

	_, err = s.Get(context.Background(), "a.json")
	assert.True(t, errors.IsNotFound(err))

	ok, err := s.Exists(context.Background(), "a.json")
	require.NoError(t, err)
	assert.False(t, ok)
}
