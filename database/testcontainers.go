package database

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	tclog "github.com/testcontainers/testcontainers-go/log"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

const (
	// TestImageEnv overrides the Postgres image used by container tests
	TestImageEnv = "COUNTRY_CACHE_TEST_POSTGRES_IMAGE"

	defaultTestImage = "postgres:16-alpine"
	testDatabase     = "countries_test"
	testUser         = "countries"
	testPassword     = "countries"
)

type silentLogger struct{}

func (silentLogger) Printf(string, ...any) {}

var _ tclog.Logger = silentLogger{}

func testImage() string {
	if image := os.Getenv(TestImageEnv); image != "" {
		return image
	}
	return defaultTestImage
}

// SetupTestDBContainer starts a Postgres container and returns a pool on its
// empty database. Container tests are skipped under -short.
func SetupTestDBContainer(t *testing.T, ctx context.Context) (*pgxpool.Pool, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping Postgres container test in short mode")
	}

	container, err := postgres.Run(ctx, testImage(),
		postgres.WithDatabase(testDatabase),
		postgres.WithUsername(testUser),
		postgres.WithPassword(testPassword),
		postgres.BasicWaitStrategies(),
		tc.WithLogger(silentLogger{}),
	)
	require.NoError(t, err)

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	require.NoError(t, pool.Ping(ctx))

	return pool, func() {
		pool.Close()
		tc.CleanupContainer(t, container)
	}
}

// SetupTestDB is SetupTestDBContainer with the schema migrated. The down
// migrations are exercised once on the way.
func SetupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	t.Helper()

	pool, cleanup := SetupTestDBContainer(t, context.Background())

	connStr := pool.Config().ConnString()
	require.NoError(t, MigrateUp(connStr))
	require.NoError(t, MigrateDown(connStr, 0))
	require.NoError(t, MigrateUp(connStr))

	return pool, cleanup
}
