package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/repository"
	"storefront/internal/store"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test gateway instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	Gateway   config.GatewayConfig
}

// SetupTestDB creates a PostgreSQL test container with the storefront schema
// applied.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	gwConfig := config.GatewayConfig{
		URL:             connStr,
		MaxConnections:  10,
		MinConnections:  2,
		MaxConnLifetime: 300,
	}

	pool, err := database.NewPool(ctx, gwConfig, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := database.Migrate(ctx, pool, zerolog.Nop()); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		Gateway:   gwConfig,
	}
}

// NewSession starts a state container over its own pool, the way a separate
// storefront process would.
func NewSession(t *testing.T, db *TestDB) *store.Container {
	t.Helper()

	ctx := context.Background()

	pool, err := database.NewPool(ctx, db.Gateway, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to create session pool: %v", err)
	}

	opts := store.DefaultOptions()
	opts.WriteTimeout = 5 * time.Second
	opts.ReconnectInitialInterval = 50 * time.Millisecond
	opts.ReconnectMaxInterval = time.Second

	c := store.New(repository.NewGateway(pool, 16, zerolog.Nop()), opts, zerolog.Nop())
	if err := c.Start(ctx); err != nil {
		pool.Close()
		t.Fatalf("failed to start session: %v", err)
	}

	t.Cleanup(func() {
		c.Close()
		pool.Close()
	})

	return c
}

// CleanupDB cleans all data from the storefront tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"products", "categories", "store_config"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}
