package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// PoolStats is a snapshot of a database connection pool
type PoolStats struct {
	MaxOpenConnections int
	OpenConnections    int
	InUse              int
	Idle               int
	WaitCount          int64
	WaitDuration       time.Duration
}

// PoolStatsFunc reads the current pool statistics
type PoolStatsFunc func() (PoolStats, error)

// DBPoolMetrics exports connection pool statistics as observable instruments.
// The pool is read once per collection cycle of the meter's reader, so no
// background goroutine is involved.
type DBPoolMetrics struct {
	registration metric.Registration
	logger       *zap.Logger
}

// NewDBPoolMetrics registers the pool instruments on meter:
//
//	db_pool_connections{db.pool.state=open|in_use|idle}
//	db_pool_connections_max
//	db_pool_wait_total
//	db_pool_wait_duration_seconds
func NewDBPoolMetrics(meter metric.Meter, stats PoolStatsFunc, logger *zap.Logger) (*DBPoolMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	connections, err := meter.Int64ObservableGauge("db_pool_connections",
		metric.WithDescription("Number of connections in the pool by state"),
		metric.WithUnit("{connection}"))
	if err != nil {
		return nil, err
	}
	maxConnections, err := meter.Int64ObservableGauge("db_pool_connections_max",
		metric.WithDescription("Maximum number of open connections"),
		metric.WithUnit("{connection}"))
	if err != nil {
		return nil, err
	}
	waits, err := meter.Int64ObservableCounter("db_pool_wait_total",
		metric.WithDescription("Connections that had to be waited for"),
		metric.WithUnit("{wait}"))
	if err != nil {
		return nil, err
	}
	waitDuration, err := meter.Float64ObservableCounter("db_pool_wait_duration_seconds",
		metric.WithDescription("Total time blocked waiting for a connection"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	m := &DBPoolMetrics{logger: logger}
	m.registration, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		s, err := stats()
		if err != nil {
			m.logger.Warn("Failed to read connection pool stats", zap.Error(err))
			return nil
		}
		o.ObserveInt64(connections, int64(s.OpenConnections), metric.WithAttributes(attribute.String(AttrPoolState, "open")))
		o.ObserveInt64(connections, int64(s.InUse), metric.WithAttributes(attribute.String(AttrPoolState, "in_use")))
		o.ObserveInt64(connections, int64(s.Idle), metric.WithAttributes(attribute.String(AttrPoolState, "idle")))
		o.ObserveInt64(maxConnections, int64(s.MaxOpenConnections))
		o.ObserveInt64(waits, s.WaitCount)
		o.ObserveFloat64(waitDuration, s.WaitDuration.Seconds())
		return nil
	}, connections, maxConnections, waits, waitDuration)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Stop unregisters the pool callback
func (m *DBPoolMetrics) Stop() error {
	if m == nil || m.registration == nil {
		return nil
	}
	return m.registration.Unregister()
}
