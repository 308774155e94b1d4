package cache

import (
	"fmt"

	"github.com/campus/backend/internal/domain/tenancy"
	"github.com/campus/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// TenantCacheFactory creates tenant context caches based on configuration
type TenantCacheFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
	opts                  []Option
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*TenantCacheFactory)

// WithFactoryLogger sets the logger for the factory and the caches it creates
func WithFactoryLogger(logger *zap.Logger) FactoryOption {
	return func(f *TenantCacheFactory) {
		f.logger = logger
		f.opts = append(f.opts, WithLogger(logger))
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory cache when Redis is unavailable.
// Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *TenantCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// WithCacheOptions passes options to every cache the factory creates
func WithCacheOptions(opts ...Option) FactoryOption {
	return func(f *TenantCacheFactory) {
		f.opts = append(f.opts, opts...)
	}
}

// NewTenantCacheFactory creates a new factory
func NewTenantCacheFactory(cfg config.RedisConfig, opts ...FactoryOption) *TenantCacheFactory {
	f := &TenantCacheFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateCache returns a Redis cache when Redis is enabled and reachable.
// Otherwise it falls back to an in-memory cache if fallback is allowed.
func (f *TenantCacheFactory) CreateCache() (tenancy.ContextCache, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory tenant cache")
		return NewInMemoryTenantCache(f.opts...), nil
	}

	c, err := NewRedisTenantCache(f.redisConfig, f.opts...)
	if err == nil {
		f.logger.Info("Using Redis tenant cache", zap.String("addr", f.redisConfig.Addr()))
		return c, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for tenant cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory tenant cache. "+
		"Suspensions propagate per instance after the cache TTL.",
		zap.Error(err),
	)
	return NewInMemoryTenantCache(f.opts...), nil
}
