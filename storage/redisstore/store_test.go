package redisstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/LuckyYaduvanshi5/clash-cash-arena/storage"
	"github.com/LuckyYaduvanshi5/clash-cash-arena/storage/storetest"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
			Labels: map[string]string{
				"test":      "arena-redis",
				"test-name": t.Name(),
			},
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate redis container: %v", err)
		}
	})

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client, err := Connect(ctx, "redis://"+endpoint)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestStore_Contract(t *testing.T) {
	client := setupRedis(t)

	n := 0
	storetest.Run(t, func(t *testing.T) storage.Store {
		n++
		return NewWithNamespace(client, fmt.Sprintf("test%d", n))
	})
}

func TestStore_NamespacesAreIsolated(t *testing.T) {
	client := setupRedis(t)
	ctx := context.Background()

	a := NewWithNamespace(client, "a")
	b := NewWithNamespace(client, "b")

	_, err := a.Put(ctx, "match/1", []byte(`{}`))
	require.NoError(t, err)

	_, err = b.Get(ctx, "match/1")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	recs, err := b.List(ctx, "match/")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestDecode(t *testing.T) {
	_, err := decode("k", map[string]string{})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = decode("k", map[string]string{fieldVersion: "x"})
	assert.Error(t, err)

	rec, err := decode("k", map[string]string{fieldVersion: "3", fieldData: `{"a":1}`, fieldUpdated: "0"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), rec.Version)
	assert.Equal(t, `{"a":1}`, string(rec.Value))
}
