// Package testhelpers provides containers and in-memory fakes shared by tests.
package testhelpers

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DanielPopoola/labresult-gateway/internal/adapters/postgres"
	"github.com/DanielPopoola/labresult-gateway/internal/config"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	pgImage    = "postgres:16-alpine"
	pgUser     = "lab"
	pgPassword = "lab-secret"
	pgName     = "labresults_test"
)

// TestDatabase is a migrated postgres container. It is terminated through
// t.Cleanup.
type TestDatabase struct {
	Container testcontainers.Container
	DB        *postgres.DB
	Config    *config.DatabaseConfig
}

func SetupTestDatabase(t *testing.T) *TestDatabase {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        pgImage,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     pgUser,
				"POSTGRES_PASSWORD": pgPassword,
				"POSTGRES_DB":       pgName,
			},
			// The entrypoint restarts the server once after init scripts.
			WaitingFor: wait.ForAll(
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
				wait.ForListeningPort("5432/tcp"),
			).WithDeadline(90 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := &config.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		User:            pgUser,
		Password:        pgPassword,
		Name:            pgName,
		SSLMode:         "disable",
		MaxOpenConns:    8,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 10 * time.Minute,
	}

	db, err := postgres.Connect(ctx, cfg, DiscardLogger())
	require.NoError(t, err)
	t.Cleanup(db.Close)

	applied, err := postgres.Migrate(ctx, db)
	require.NoError(t, err)
	require.NotEmpty(t, applied, "expected a fresh database")

	return &TestDatabase{Container: container, DB: db, Config: cfg}
}

// CleanTables empties every table and resets sequences between tests.
func (td *TestDatabase) CleanTables(t *testing.T) {
	t.Helper()
	_, err := td.DB.Pool.Exec(context.Background(),
		"TRUNCATE TABLE audit_logs, payment_settings, results, payments, patients RESTART IDENTITY CASCADE")
	require.NoError(t, err)
}

// DiscardLogger keeps test output quiet.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
