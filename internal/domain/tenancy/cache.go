package tenancy

import (
	"context"
	"time"
)

// ContextCache caches resolved tenant contexts by the reference they were resolved from
// (institution ID, partition name or sub-domain).
//
// Cache keys follow the pattern {prefix}tenant:{ref}
type ContextCache interface {
	// Get returns nil, nil on a cache miss
	Get(ctx context.Context, ref string) (*TenantContext, error)

	// Set stores tc under ref. A zero ttl uses the implementation default.
	Set(ctx context.Context, ref string, tc TenantContext, ttl time.Duration) error

	// Delete removes the given refs
	Delete(ctx context.Context, refs ...string) error

	// Close releases any resources held by the cache
	Close() error
}
