package test_utils

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mystuff/mystuff/internal/config"
	"github.com/mystuff/mystuff/internal/database"
	log "github.com/sirupsen/logrus"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

const (
	pgDatabase = "mystuff"
	pgUser     = "test_mystuff"
	pgPassword = "test_mystuff"
)

// SetupPostgres starts a Postgres container, applies all migrations and returns
// a pool connected to it. The test is skipped with -short or when no container
// runtime is available.
func SetupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping Postgres container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := postgres.Run(
		ctx, "postgres:18.1-alpine",
		postgres.WithDatabase(pgDatabase),
		postgres.WithUsername(pgUser),
		postgres.WithPassword(pgPassword),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, container)
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to read container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("Failed to read container port: %v", err)
	}
	log.Infof("Postgres container started at %s:%d", host, port.Int())

	cfg := config.Database{
		Host:   host,
		Port:   port.Int(),
		User:   pgUser,
		Pass:   pgPassword,
		Name:   pgDatabase,
		Schema: "public",
	}
	if err := database.MigratePostgres(cfg); err != nil {
		t.Fatalf("Failed to apply migrations: %v", err)
	}

	pool, err := database.OpenPostgres(ctx, cfg)
	if err != nil {
		t.Fatalf("Failed to open database connection: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}
