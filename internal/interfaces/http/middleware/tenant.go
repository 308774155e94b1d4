package middleware

import (
	"context"
	"strings"

	"github.com/campus/backend/internal/domain/tenancy"
	"github.com/campus/backend/internal/infrastructure/logger"
	"github.com/campus/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Keys used to store request identity in gin.Context
const (
	TenantContextKey = "tenant_context"
	ActorIDKey       = "actor_id"
	TenantHeaderKey  = "X-Tenant-ID"
	UserHeaderKey    = "X-User-ID"
)

// TenantResolver turns a tenant reference into a TenantContext
type TenantResolver interface {
	Resolve(ctx context.Context, ref string) (tenancy.TenantContext, error)
}

// TenantMiddlewareConfig holds configuration for tenant middleware
type TenantMiddlewareConfig struct {
	Resolver TenantResolver
	// SubdomainEnabled falls back to the request host when X-Tenant-ID is absent
	SubdomainEnabled bool
	// BaseDomain is the base domain for subdomain extraction (e.g., "campus.example")
	BaseDomain string
	// SkipPaths are paths that don't require tenant context (e.g., health check)
	SkipPaths []string
	Logger    *zap.Logger
}

// DefaultTenantConfig returns default tenant middleware configuration
func DefaultTenantConfig(resolver TenantResolver) TenantMiddlewareConfig {
	return TenantMiddlewareConfig{
		Resolver:  resolver,
		SkipPaths: []string{"/health", "/healthz", "/ready"},
	}
}

// TenantMiddlewareWithConfig resolves the tenant of every request.
// Extraction order: X-Tenant-ID header > subdomain.
// The resolver only returns active tenants, so a suspended or pending
// institution is refused here with 403 TENANT_SUSPENDED. The workflows
// re-check status because a cached context can outlive a suspension.
func TenantMiddlewareWithConfig(cfg TenantMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath || strings.HasPrefix(path, skipPath+"/") {
				c.Next()
				return
			}
		}

		ref := strings.TrimSpace(c.GetHeader(TenantHeaderKey))
		method := "header"
		if ref == "" && cfg.SubdomainEnabled && cfg.BaseDomain != "" {
			ref = extractTenantFromSubdomain(c.Request.Host, cfg.BaseDomain)
			method = "subdomain"
		}
		if ref == "" {
			abortWithCode(c, dto.ErrCodeTenantRequired, "Tenant identification required")
			return
		}

		ctx := c.Request.Context()
		tc, err := cfg.Resolver.Resolve(ctx, ref)
		if err != nil {
			log := cfg.Logger
			if log == nil {
				log = logger.FromContext(ctx)
			}
			log.Warn("Tenant resolution failed",
				zap.String("tenant_ref", ref),
				zap.String("method", method),
				zap.Error(err),
			)
			status, resp := dto.FromError(err, logger.GetRequestID(ctx))
			c.AbortWithStatusJSON(status, resp)
			return
		}

		c.Set(TenantContextKey, tc)
		ctx, _ = logger.WithTenant(ctx, logger.FromContext(ctx), tc.TenantID.String(), tc.PartitionName)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// Actor reads the acting administrator from X-User-ID. Authentication happens
// upstream of this service; the header only has to carry a UUID.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, err := uuid.Parse(strings.TrimSpace(c.GetHeader(UserHeaderKey)))
		if err != nil || actorID == uuid.Nil {
			abortWithCode(c, dto.ErrCodeUnauthorized, "A valid X-User-ID header is required")
			return
		}

		c.Set(ActorIDKey, actorID)
		ctx := c.Request.Context()
		ctx, _ = logger.WithActorID(ctx, logger.FromContext(ctx), actorID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// extractTenantFromSubdomain extracts tenant code from subdomain
// e.g., "north.campus.example" with baseDomain "campus.example" returns "north"
func extractTenantFromSubdomain(host, baseDomain string) string {
	if idx := strings.Index(host, ":"); idx != -1 {
		host = host[:idx]
	}
	if !strings.HasSuffix(host, baseDomain) {
		return ""
	}

	subdomain := strings.TrimSuffix(host, "."+baseDomain)
	if subdomain == host || subdomain == "" || subdomain == "www" {
		return ""
	}

	parts := strings.Split(subdomain, ".")
	return parts[0]
}

func abortWithCode(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(dto.GetHTTPStatus(code),
		dto.NewErrorResponseWithRequestID(code, message, logger.GetRequestID(c.Request.Context())))
}

// GetTenantContext retrieves the resolved tenant from gin.Context
func GetTenantContext(c *gin.Context) (tenancy.TenantContext, bool) {
	v, exists := c.Get(TenantContextKey)
	if !exists {
		return tenancy.TenantContext{}, false
	}
	tc, ok := v.(tenancy.TenantContext)
	return tc, ok
}

// GetActorID retrieves the acting user from gin.Context
func GetActorID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(ActorIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
