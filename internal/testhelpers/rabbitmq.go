package testhelpers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

type TestRabbitMQ struct {
	Container testcontainers.Container
	URL       string
}

func SetupTestRabbitMQ(t *testing.T) *TestRabbitMQ {
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "rabbitmq:3.13-alpine",
			ExposedPorts: []string{"5672/tcp"},
			WaitingFor: wait.ForLog("Server startup complete").
				WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5672")
	require.NoError(t, err)

	return &TestRabbitMQ{
		Container: container,
		URL:       fmt.Sprintf("amqp://guest:guest@%s:%d/", host, port.Int()),
	}
}

func (tr *TestRabbitMQ) Cleanup(t *testing.T) {
	require.NoError(t, tr.Container.Terminate(context.Background()))
}
