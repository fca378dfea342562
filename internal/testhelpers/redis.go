package testhelpers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

type TestRedis struct {
	Container testcontainers.Container
	Client    *redis.Client
	Addr      string
}

func SetupTestRedis(t *testing.T) *TestRedis {
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForLog("Ready to accept connections").
				WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	addr := fmt.Sprintf("%s:%d", host, port.Int())
	client := redis.NewClient(&redis.Options{Addr: addr})
	require.NoError(t, client.Ping(ctx).Err())

	return &TestRedis{
		Container: container,
		Client:    client,
		Addr:      addr,
	}
}

func (tr *TestRedis) Flush(t *testing.T) {
	require.NoError(t, tr.Client.FlushDB(context.Background()).Err())
}

func (tr *TestRedis) Cleanup(t *testing.T) {
	_ = tr.Client.Close()
	require.NoError(t, tr.Container.Terminate(context.Background()))
}
