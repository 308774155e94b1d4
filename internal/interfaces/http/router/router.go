package router

import (
	"github.com/campus/backend/internal/infrastructure/config"
	"github.com/campus/backend/internal/infrastructure/logger"
	"github.com/campus/backend/internal/interfaces/http/dto"
	"github.com/campus/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	apiVersion string
	middleware []gin.HandlerFunc
	registrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// WithAPIMiddleware adds middleware that runs for every versioned API route
func WithAPIMiddleware(mw ...gin.HandlerFunc) RouterOption {
	return func(r *Router) {
		r.middleware = append(r.middleware, mw...)
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a RouteRegistrar to be registered later
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)
	if len(r.middleware) > 0 {
		api.Use(r.middleware...)
	}
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// EngineConfig holds what the HTTP engine needs besides the handlers
type EngineConfig struct {
	Mode        string
	ServiceName string
	Tracing     bool
	HTTP        config.HTTPConfig
	Logger      *zap.Logger
}

// NewEngine creates a gin engine with the process-wide middleware chain:
// recovery, tracing, request logging, security headers, CORS, body limit.
func NewEngine(cfg EngineConfig) (*gin.Engine, error) {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return nil, err
	}
	engine.Use(
		logger.Recovery(log),
		middleware.TracingWithConfig(middleware.TracingConfig{ServiceName: cfg.ServiceName, Enabled: cfg.Tracing}),
		middleware.SpanErrorMarker(),
		logger.GinMiddleware(log),
		middleware.Secure(),
		middleware.CORSWithConfig(middleware.CORSConfigFrom(cfg.HTTP)),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(dto.GetHTTPStatus(dto.ErrCodeRouteNotFound),
			dto.NewErrorResponseWithRequestID(dto.ErrCodeRouteNotFound, "Route not found", logger.GetRequestID(c.Request.Context())))
	})
	return engine, nil
}

// TenantScope returns the middleware every provisioning route runs behind
func TenantScope(resolver middleware.TenantResolver, log *zap.Logger) []gin.HandlerFunc {
	cfg := middleware.DefaultTenantConfig(resolver)
	cfg.Logger = log
	return []gin.HandlerFunc{
		middleware.TenantMiddlewareWithConfig(cfg),
		middleware.Actor(),
		middleware.SpanAttributes(),
	}
}
