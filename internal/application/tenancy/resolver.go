// Package tenancy resolves tenant references to partition contexts and reads
// plan data from the global partition for provisioning workflows.
package tenancy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/campus/backend/internal/domain/shared"
	"github.com/campus/backend/internal/domain/tenancy"
	"github.com/campus/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Resolver maps a tenant reference (institution ID, partition name or sub-domain)
// to a TenantContext. It only reads the global partition.
type Resolver struct {
	institutions tenancy.InstitutionRepository
	cache        tenancy.ContextCache
	cacheTTL     time.Duration
	logger       *zap.Logger
}

// ResolverOption configures a Resolver
type ResolverOption func(*Resolver)

// WithCache enables caching of resolved contexts. A ttl <= 0 disables it.
func WithCache(cache tenancy.ContextCache, ttl time.Duration) ResolverOption {
	return func(r *Resolver) {
		if ttl > 0 {
			r.cache = cache
			r.cacheTTL = ttl
		}
	}
}

// WithResolverLogger sets the logger
func WithResolverLogger(logger *zap.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResolver creates a new Resolver
func NewResolver(institutions tenancy.InstitutionRepository, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		institutions: institutions,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the context of an active tenant, using the cache when enabled.
// Returns TENANT_NOT_FOUND if no non-deleted institution matches ref and
// TENANT_SUSPENDED if the institution is not active.
func (r *Resolver) Resolve(ctx context.Context, ref string) (tenancy.TenantContext, error) {
	ref = normalizeRef(ref)
	if ref == "" {
		return tenancy.TenantContext{}, shared.ErrTenantNotFound
	}

	if r.cache != nil {
		cached, err := r.cache.Get(ctx, ref)
		if err != nil {
			r.logger.Warn("Tenant cache read failed, resolving from database",
				zap.String("ref", ref), zap.Error(err))
		} else if cached != nil {
			return *cached, nil
		}
	}

	return r.resolve(ctx, ref)
}

// ResolveFresh resolves ref bypassing the cache. Status-sensitive operations use it
// so a suspension is observed immediately. The cache is refreshed or purged.
func (r *Resolver) ResolveFresh(ctx context.Context, ref string) (tenancy.TenantContext, error) {
	ref = normalizeRef(ref)
	if ref == "" {
		return tenancy.TenantContext{}, shared.ErrTenantNotFound
	}
	return r.resolve(ctx, ref)
}

// Invalidate drops cached contexts for the given references
func (r *Resolver) Invalidate(ctx context.Context, refs ...string) error {
	if r.cache == nil {
		return nil
	}
	normalized := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref = normalizeRef(ref); ref != "" {
			normalized = append(normalized, ref)
		}
	}
	return r.cache.Delete(ctx, normalized...)
}

func (r *Resolver) resolve(ctx context.Context, ref string) (tenancy.TenantContext, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "tenancy", "resolve", attribute.String("tenant.ref", ref))
	defer span.End()

	inst, err := r.lookup(ctx, ref)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			r.forget(ctx, ref)
			return tenancy.TenantContext{}, shared.ErrTenantNotFound
		}
		telemetry.RecordError(span, err)
		return tenancy.TenantContext{}, fmt.Errorf("resolve tenant %q: %w", ref, err)
	}

	tc := tenancy.NewTenantContext(inst)
	span.SetAttributes(
		attribute.String(telemetry.AttrTenantID, tc.TenantID.String()),
		attribute.String(telemetry.AttrPartition, tc.PartitionName),
	)

	if !tc.IsResolved() {
		// the row exists but its partition name cannot address a schema
		r.logger.Error("Institution has an invalid partition name",
			zap.String("tenant_id", tc.TenantID.String()),
			zap.String("partition", tc.PartitionName))
		r.forget(ctx, ref)
		return tenancy.TenantContext{}, shared.ErrTenantNotFound
	}
	if !tc.IsActive() {
		r.forget(ctx, ref)
		return tenancy.TenantContext{}, &shared.DomainError{
			Code:    shared.CodeTenantSuspended,
			Message: fmt.Sprintf("Tenant is %s", tc.Status),
		}
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, ref, tc, r.cacheTTL); err != nil {
			r.logger.Warn("Tenant cache write failed", zap.String("ref", ref), zap.Error(err))
		}
	}
	return tc, nil
}

// lookup tries the reference as an institution ID, then as a partition name,
// then as a sub-domain.
func (r *Resolver) lookup(ctx context.Context, ref string) (*tenancy.Institution, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return r.institutions.FindByID(ctx, id)
	}
	if tenancy.IsValidPartitionName(ref) {
		inst, err := r.institutions.FindByPartitionName(ctx, ref)
		if !errors.Is(err, shared.ErrNotFound) {
			return inst, err
		}
	}
	return r.institutions.FindBySubDomain(ctx, ref)
}

func (r *Resolver) forget(ctx context.Context, ref string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Delete(ctx, ref); err != nil {
		r.logger.Warn("Tenant cache delete failed", zap.String("ref", ref), zap.Error(err))
	}
}

func normalizeRef(ref string) string {
	return strings.ToLower(strings.TrimSpace(ref))
}
