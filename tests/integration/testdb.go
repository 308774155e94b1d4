//go:build integration

// Package integration runs the provisioning stack against a real PostgreSQL
// started with testcontainers. Run with: go test -tags integration ./tests/integration/...
package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/campus/backend/internal/domain/tenancy"
	"github.com/campus/backend/internal/infrastructure/config"
	"github.com/campus/backend/internal/infrastructure/migration"
	"github.com/campus/backend/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	testDBName   = "campus_test"
	testUser     = "campus"
	testPassword = "campus"
	globalSchema = "public"
)

// TestDB is a migrated PostgreSQL container with the provisioning schema
type TestDB struct {
	DB        *persistence.Database
	SQL       *sql.DB
	container *tcpostgres.PostgresContainer
}

// NewTestDB starts PostgreSQL, applies the global migrations and registers cleanup
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase(testDBName),
		tcpostgres.WithUsername(testUser),
		tcpostgres.WithPassword(testPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	db, err := persistence.NewDatabase(&config.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		User:            testUser,
		Password:        testPassword,
		DBName:          testDBName,
		SSLMode:         "disable",
		GlobalSchema:    globalSchema,
		MaxOpenConns:    20,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5,
		ConnMaxIdleTime: 1,
	})
	require.NoError(t, err, "Failed to connect to test database")
	t.Cleanup(func() { _ = db.Close() })

	sqlDB, err := db.DB.DB()
	require.NoError(t, err)

	m, err := migration.New(sqlDB, findMigrationsPath(t), globalSchema, nil)
	require.NoError(t, err, "Failed to create migrator")
	require.NoError(t, m.Up(), "Failed to run global migrations")

	return &TestDB{DB: db, SQL: sqlDB, container: container}
}

// findMigrationsPath locates the repository migrations directory
func findMigrationsPath(t *testing.T) string {
	t.Helper()
	_, filename, _, ok := runtime.Caller(0)
	require.True(t, ok, "Failed to locate test source")
	return filepath.Join(filepath.Dir(filename), "..", "..", "migrations")
}

// Bootstrap creates a tenant partition and applies the tenant migrations to it
func (d *TestDB) Bootstrap(t *testing.T, partition string) {
	t.Helper()
	_, err := migration.NewTenantSchema(d.SQL, nil).Bootstrap(context.Background(), partition)
	require.NoError(t, err, "Failed to bootstrap partition %s", partition)
}

// SeedPlan inserts a plan with per-role grants; the "" role grants to everyone
func (d *TestDB) SeedPlan(t *testing.T, slug string, grants map[string][]string) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := d.SQL.Exec(`INSERT INTO plans (id, slug, name) VALUES ($1, $2, $3)`, id, slug, slug)
	require.NoError(t, err)
	for role, keys := range grants {
		for _, k := range keys {
			_, err := d.SQL.Exec(
				`INSERT INTO plan_permissions (plan_id, permission_key, role_type) VALUES ($1, $2, $3)`,
				id, k, role)
			require.NoError(t, err)
		}
	}
	return id
}

// SeedInstitution inserts an institution and bootstraps its partition
func (d *TestDB) SeedInstitution(t *testing.T, partition string, planID uuid.UUID, status tenancy.InstitutionStatus) uuid.UUID {
	t.Helper()

	d.Bootstrap(t, partition)
	meta, err := json.Marshal(map[string]string{"region": "north"})
	require.NoError(t, err)

	id := uuid.New()
	_, err = d.SQL.Exec(
		`INSERT INTO institutions (id, name, partition_name, sub_domain, type, plan_id, status, metadata)
		 VALUES ($1, $2, $3, $4, 'school', $5, $6, $7)`,
		id, "Institution "+partition, partition, subDomainOf(partition), planID, string(status), meta)
	require.NoError(t, err)
	return id
}

// SetStatus changes the status of an institution
func (d *TestDB) SetStatus(t *testing.T, partition string, status tenancy.InstitutionStatus) {
	t.Helper()
	_, err := d.SQL.Exec(`UPDATE institutions SET status = $1, updated_at = NOW() WHERE partition_name = $2`,
		string(status), partition)
	require.NoError(t, err)
}

// Count counts rows of a partition table matching where
func (d *TestDB) Count(t *testing.T, partition, table, where string, args ...any) int {
	t.Helper()

	query := fmt.Sprintf("SELECT COUNT(*) FROM %s.%s", partition, table)
	if where != "" {
		query += " WHERE " + where
	}
	var n int
	require.NoError(t, d.SQL.QueryRow(query, args...).Scan(&n))
	return n
}

func subDomainOf(partition string) string {
	return strings.ReplaceAll(partition, "_", "-")
}
