package persistence

import (
	"fmt"
	"time"

	"github.com/campus/backend/internal/domain/tenancy"
	"github.com/campus/backend/internal/infrastructure/config"
	"github.com/campus/backend/internal/infrastructure/persistence/tenant"
	"github.com/campus/backend/internal/infrastructure/telemetry"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Plugin is anything that installs callbacks on a GORM DB, e.g. tracing
type Plugin interface {
	Register(db *gorm.DB) error
}

// Database holds the database connection and hands out partition-scoped handles
type Database struct {
	DB           *gorm.DB
	globalSchema string
}

// Option configures NewDatabase
type Option func(*options)

type options struct {
	logger  gormlogger.Interface
	plugins []Plugin
}

// WithLogger sets the GORM logger
func WithLogger(l gormlogger.Interface) Option {
	return func(o *options) { o.logger = l }
}

// WithPlugin registers an additional GORM plugin
func WithPlugin(p Plugin) Option {
	return func(o *options) { o.plugins = append(o.plugins, p) }
}

// NewDatabase opens a PostgreSQL connection with the given configuration
func NewDatabase(cfg *config.DatabaseConfig, opts ...Option) (*Database, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig(opts))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return NewDatabaseFromGorm(db, cfg.GlobalSchema, opts...)
}

// NewDatabaseFromGorm wraps an open GORM DB, installing the partition guard and plugins.
// Tests use it with SQLite or sqlmock connections.
func NewDatabaseFromGorm(db *gorm.DB, globalSchema string, opts ...Option) (*Database, error) {
	o := collectOptions(opts)
	if err := tenant.NewPartitionGuard().RegisterCallbacks(db); err != nil {
		return nil, fmt.Errorf("failed to register partition guard: %w", err)
	}
	for _, p := range o.plugins {
		if err := p.Register(db); err != nil {
			return nil, fmt.Errorf("failed to register plugin: %w", err)
		}
	}
	// validates the schema name
	_ = tenant.NewGlobalDB(db, globalSchema)
	return &Database{DB: db, globalSchema: globalSchema}, nil
}

func collectOptions(opts []Option) options {
	o := options{logger: gormlogger.Default.LogMode(gormlogger.Silent)}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func gormConfig(opts []Option) *gorm.Config {
	return &gorm.Config{
		Logger:                 collectOptions(opts).logger,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	}
}

// Tenant returns a handle routed to the partition of tc.
// Panics if tc is not resolved.
func (d *Database) Tenant(tc tenancy.TenantContext) *tenant.TenantDB {
	return tenant.NewTenantDB(d.DB, tc)
}

// Global returns a handle routed to the global partition
func (d *Database) Global() *tenant.GlobalDB {
	return tenant.NewGlobalDB(d.DB, d.globalSchema)
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping checks if the database connection is alive
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Ping()
}

// Stats returns database connection pool statistics
func (d *Database) Stats() (ConnectionStats, error) {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return ConnectionStats{}, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	stats := sqlDB.Stats()
	return ConnectionStats{
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration,
	}, nil
}

// PoolStats adapts Stats to the connection pool gauges
func (d *Database) PoolStats() (telemetry.PoolStats, error) {
	stats, err := d.Stats()
	return telemetry.PoolStats(stats), err
}

// ConnectionStats holds database connection pool statistics
type ConnectionStats struct {
	MaxOpenConnections int
	OpenConnections    int
	InUse              int
	Idle               int
	WaitCount          int64
	WaitDuration       time.Duration
}
