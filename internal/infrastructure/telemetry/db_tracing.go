package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/campus/backend/internal/infrastructure/persistence/tenant"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool          // include query variables in spans (dev only)
	SlowQueryThresh time.Duration // 0 disables slow query marking
	DBName          string
}

// DBTracingPlugin registers otelgorm and annotates its spans with the
// partition a statement ran in.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracingPlugin creates a new database tracing plugin
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	return &DBTracingPlugin{config: cfg, logger: logger}
}

type queryStartKey struct{}

// Register installs the plugin on db. It is a no-op when tracing is disabled.
func (p *DBTracingPlugin) Register(db *gorm.DB) error {
	if !p.config.Enabled {
		p.logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(p.config.DBName)}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	cb := db.Callback()
	if err := cb.Create().Before("gorm:create").Register("campus_trace:before_create", p.before); err != nil {
		return err
	}
	if err := cb.Query().Before("gorm:query").Register("campus_trace:before_query", p.before); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:update").Register("campus_trace:before_update", p.before); err != nil {
		return err
	}
	// must run while the otelgorm span is still open
	if err := cb.Create().After("gorm:create").Before("otel:after_create").Register("campus_trace:after_create", p.after); err != nil {
		return err
	}
	if err := cb.Query().After("gorm:query").Before("otel:after_query").Register("campus_trace:after_query", p.after); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Before("otel:after_update").Register("campus_trace:after_update", p.after); err != nil {
		return err
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
	)
	return nil
}

func (p *DBTracingPlugin) before(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
	}
}

// after tags the statement's span with its partition, rows affected and slowness
func (p *DBTracingPlugin) after(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	if v, ok := db.Get(tenant.PartitionSettingKey); ok {
		if partition, _ := v.(string); partition != "" {
			span.SetAttributes(attribute.String(AttrPartition, partition))
		}
	}
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		RecordError(span, db.Error)
	}

	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok || p.config.SlowQueryThresh <= 0 {
		return
	}
	if elapsed := time.Since(start); elapsed > p.config.SlowQueryThresh {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
	}
}
