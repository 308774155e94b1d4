package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/campus/backend/internal/domain/tenancy"
	"github.com/campus/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultTenantTTL     = 60 * time.Second
	defaultConnectTimeout = 5 * time.Second
)

// RedisTenantCache implements tenancy.ContextCache using Redis
type RedisTenantCache struct {
	client     *redis.Client
	ownsClient bool // true if we created the client and should close it
	prefix     string
	ttl        time.Duration
	logger     *zap.Logger
}

// Option is a functional option shared by the tenant cache implementations
type Option func(*cacheOptions)

type cacheOptions struct {
	ttl    time.Duration
	prefix string
	logger *zap.Logger
}

// WithTTL sets the default TTL used when Set is called with ttl 0
func WithTTL(ttl time.Duration) Option {
	return func(o *cacheOptions) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

// WithKeyPrefix sets the Redis key prefix, e.g. "campus:"
func WithKeyPrefix(prefix string) Option {
	return func(o *cacheOptions) { o.prefix = prefix }
}

// WithLogger sets the logger for the cache
func WithLogger(logger *zap.Logger) Option {
	return func(o *cacheOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func buildOptions(opts []Option) cacheOptions {
	o := cacheOptions{ttl: defaultTenantTTL, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewRedisTenantCache connects to Redis and returns a cache owning the client
func NewRedisTenantCache(cfg config.RedisConfig, opts ...Option) (*RedisTenantCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), defaultConnectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	c := NewRedisTenantCacheWithClient(client, append([]Option{WithKeyPrefix(cfg.KeyPrefix)}, opts...)...)
	c.ownsClient = true
	return c, nil
}

// NewRedisTenantCacheWithClient creates a cache with an existing Redis client.
// The caller retains ownership of the client.
func NewRedisTenantCacheWithClient(client *redis.Client, opts ...Option) *RedisTenantCache {
	o := buildOptions(opts)
	return &RedisTenantCache{
		client: client,
		prefix: o.prefix,
		ttl:    o.ttl,
		logger: o.logger,
	}
}

func (c *RedisTenantCache) key(ref string) string {
	return c.prefix + "tenant:" + ref
}

// Get retrieves a tenant context from cache
func (c *RedisTenantCache) Get(ctx context.Context, ref string) (*tenancy.TenantContext, error) {
	cacheKey := c.key(ref)

	data, err := c.client.Get(ctx, cacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		c.logger.Error("Failed to get tenant context from cache", zap.String("ref", ref), zap.Error(err))
		return nil, fmt.Errorf("failed to get tenant from cache: %w", err)
	}

	var tc tenancy.TenantContext
	if err := json.Unmarshal(data, &tc); err != nil {
		c.logger.Warn("Dropping corrupted tenant cache entry", zap.String("ref", ref), zap.Error(err))
		_ = c.client.Del(ctx, cacheKey)
		return nil, nil
	}
	return &tc, nil
}

// Set stores a tenant context in cache
func (c *RedisTenantCache) Set(ctx context.Context, ref string, tc tenancy.TenantContext, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.ttl
	}
	data, err := json.Marshal(tc)
	if err != nil {
		return fmt.Errorf("failed to marshal tenant context: %w", err)
	}
	if err := c.client.Set(ctx, c.key(ref), data, ttl).Err(); err != nil {
		c.logger.Error("Failed to set tenant context in cache", zap.String("ref", ref), zap.Error(err))
		return fmt.Errorf("failed to set tenant in cache: %w", err)
	}
	return nil
}

// Delete removes cached tenant contexts
func (c *RedisTenantCache) Delete(ctx context.Context, refs ...string) error {
	if len(refs) == 0 {
		return nil
	}
	keys := make([]string, len(refs))
	for i, ref := range refs {
		keys[i] = c.key(ref)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete tenant from cache: %w", err)
	}
	return nil
}

// Close releases the client if the cache owns it
func (c *RedisTenantCache) Close() error {
	if c.ownsClient {
		return c.client.Close()
	}
	return nil
}

var _ tenancy.ContextCache = (*RedisTenantCache)(nil)
