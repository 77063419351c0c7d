//go:build integration

// Package integration runs the services against real PostgreSQL and Redis
// containers started with testcontainers.
package integration

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/migration"
	"github.com/cmlibra71/keenan-group-channels/migrations"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	sharedMu       sync.Mutex
	sharedPostgres *tcpostgres.PostgresContainer
	sharedDSN      string
	sharedRedis    testcontainers.Container
	sharedRedisURL string
)

// TestDB is a migrated connection to the shared PostgreSQL container.
type TestDB struct {
	DB    *gorm.DB
	SqlDB *sql.DB
	DSN   string
	t     *testing.T
}

func skipShort(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}

// NewTestDB returns a connection to the shared container with every table
// truncated. The container is started and migrated on first use.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	skipShort(t)

	sharedMu.Lock()
	if sharedPostgres == nil {
		ctx := context.Background()
		container, err := tcpostgres.Run(ctx,
			"postgres:16-alpine",
			tcpostgres.WithDatabase("commerce_test"),
			tcpostgres.WithUsername("postgres"),
			tcpostgres.WithPassword("postgres"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second)),
		)
		if err != nil {
			sharedMu.Unlock()
			require.NoError(t, err, "Failed to start PostgreSQL container")
		}
		dsn, err := container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			sharedMu.Unlock()
			require.NoError(t, err, "Failed to get connection string")
		}

		_, sqlDB := connect(t, dsn)
		m, err := migration.New(sqlDB, migrations.FS, zap.NewNop())
		if err == nil {
			err = m.Up()
		}
		_ = sqlDB.Close()
		if err != nil {
			sharedMu.Unlock()
			require.NoError(t, err, "Failed to run migrations")
		}

		sharedPostgres = container
		sharedDSN = dsn
	}
	dsn := sharedDSN
	sharedMu.Unlock()

	db, sqlDB := connect(t, dsn)
	tdb := &TestDB{DB: db, SqlDB: sqlDB, DSN: dsn, t: t}
	tdb.CleanTables()
	t.Cleanup(func() { _ = sqlDB.Close() })
	return tdb
}

// CleanTables truncates every application table and resets identities.
func (tdb *TestDB) CleanTables() {
	tdb.t.Helper()

	var tables []string
	err := tdb.DB.Raw(`
		SELECT tablename FROM pg_tables
		WHERE schemaname = 'public' AND tablename != ?
	`, migration.MigrationsTable).Scan(&tables).Error
	require.NoError(tdb.t, err, "Failed to list tables")

	for _, table := range tables {
		err := tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %q RESTART IDENTITY CASCADE", table)).Error
		require.NoError(tdb.t, err, "Failed to truncate %s", table)
	}
}

func connect(t *testing.T, dsn string) (*gorm.DB, *sql.DB) {
	t.Helper()

	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	if os.Getenv("TEST_DB_DEBUG") != "" {
		cfg.Logger = logger.Default.LogMode(logger.Info)
	}
	db, err := gorm.Open(gormpostgres.Open(dsn), cfg)
	require.NoError(t, err, "Failed to connect to database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	return db, sqlDB
}

// NewRedisClient returns a client for the shared Redis container with the
// database flushed.
func NewRedisClient(t *testing.T) redis.UniversalClient {
	t.Helper()
	skipShort(t)
	ctx := context.Background()

	sharedMu.Lock()
	if sharedRedis == nil {
		container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "redis:7-alpine",
				ExposedPorts: []string{"6379/tcp"},
				WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
			},
			Started: true,
		})
		if err != nil {
			sharedMu.Unlock()
			require.NoError(t, err, "Failed to start Redis container")
		}
		endpoint, err := container.Endpoint(ctx, "")
		if err != nil {
			sharedMu.Unlock()
			require.NoError(t, err, "Failed to get Redis endpoint")
		}
		sharedRedis = container
		sharedRedisURL = endpoint
	}
	addr := sharedRedisURL
	sharedMu.Unlock()

	client := redis.NewClient(&redis.Options{Addr: addr})
	require.NoError(t, client.FlushDB(ctx).Err())
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// TerminateContainers stops the shared containers. TestMain calls it.
func TerminateContainers() {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if sharedPostgres != nil {
		_ = sharedPostgres.Terminate(ctx)
		sharedPostgres = nil
	}
	if sharedRedis != nil {
		_ = sharedRedis.Terminate(ctx)
		sharedRedis = nil
	}
}
