package migration

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/campus/backend/internal/domain/tenancy"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

//go:embed tenantsql/*.sql
var tenantMigrations embed.FS

// tenantSource returns the embedded migrations every tenant partition runs
func tenantSource() (source.Driver, error) {
	return iofs.New(tenantMigrations, "tenantsql")
}

// TenantSchema creates tenant partitions and keeps their tables migrated.
// Each partition is a PostgreSQL schema with its own schema_migrations table.
type TenantSchema struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewTenantSchema creates a TenantSchema
func NewTenantSchema(db *sql.DB, logger *zap.Logger) *TenantSchema {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TenantSchema{db: db, logger: logger}
}

// Bootstrap creates the partition schema if needed and applies every pending
// tenant migration inside it. Running it on an up-to-date partition is a no-op.
// It returns the partition's migration version.
func (s *TenantSchema) Bootstrap(ctx context.Context, partition string) (uint, error) {
	if err := tenancy.ValidatePartitionName(partition); err != nil {
		return 0, err
	}
	log := s.logger.With(zap.String("partition", partition))

	// search_path is connection state, so the whole run stays on one connection
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	quoted := pq.QuoteIdentifier(partition)
	if _, err := conn.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+quoted); err != nil {
		return 0, fmt.Errorf("create schema %s: %w", partition, err)
	}
	if _, err := conn.ExecContext(ctx, "SET search_path TO "+quoted); err != nil {
		return 0, fmt.Errorf("set search_path: %w", err)
	}
	defer func() {
		// the connection goes back to the pool afterwards
		if _, err := conn.ExecContext(context.WithoutCancel(ctx), "RESET search_path"); err != nil {
			log.Warn("Failed to reset search_path", zap.Error(err))
		}
	}()

	src, err := tenantSource()
	if err != nil {
		return 0, fmt.Errorf("load tenant migrations: %w", err)
	}
	driver, err := postgres.WithConnection(ctx, conn, &postgres.Config{
		SchemaName:      partition,
		MigrationsTable: MigrationsTable,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create postgres driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return 0, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("tenant migration up failed: %w", err)
	}

	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		return 0, fmt.Errorf("failed to get migration version: %w", verr)
	}
	if dirty {
		return version, fmt.Errorf("partition %s is dirty at version %d", partition, version)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		log.Info("Tenant partition up to date", zap.Uint("version", version))
	} else {
		log.Info("Tenant partition migrated", zap.Uint("version", version))
	}
	return version, nil
}

// LatestTenantVersion returns the highest embedded tenant migration version
func LatestTenantVersion() (uint, error) {
	src, err := tenantSource()
	if err != nil {
		return 0, err
	}
	defer src.Close()

	version, err := src.First()
	if err != nil {
		return 0, err
	}
	for {
		next, err := src.Next(version)
		if err != nil {
			// fs.ErrNotExist marks the last version
			return version, nil
		}
		version = next
	}
}
