package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/campus/backend/internal/application/provisioning"
	apptenancy "github.com/campus/backend/internal/application/tenancy"
	"github.com/campus/backend/internal/infrastructure/cache"
	"github.com/campus/backend/internal/infrastructure/config"
	"github.com/campus/backend/internal/infrastructure/logger"
	"github.com/campus/backend/internal/infrastructure/notification"
	"github.com/campus/backend/internal/infrastructure/persistence"
	"github.com/campus/backend/internal/infrastructure/telemetry"
	"github.com/campus/backend/internal/interfaces/http/handler"
	"github.com/campus/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Campus Provisioning API
//	@version		1.0
//	@description	Tenant-isolated user provisioning for the admin console
//	@BasePath		/api/v1

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	lp, err := telemetry.NewLoggerProvider(context.Background(), telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize log export", zap.Error(err))
	}
	if lp.IsEnabled() {
		log = telemetry.NewBridgedLogger(log.Core(), telemetry.NewZapOTELCore(telemetry.ZapBridgeConfig{
			ServiceName:    cfg.Telemetry.ServiceName,
			LoggerProvider: lp,
			Level:          zapcore.InfoLevel,
		}), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	}

	log.Info("Starting provisioning service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	tp, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	mp, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	meter := mp.Meter(telemetry.MeterName)

	db, err := persistence.NewDatabase(&cfg.Database,
		persistence.WithLogger(logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))),
		persistence.WithPlugin(telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: 200 * time.Millisecond,
			DBName:          cfg.Database.DBName,
		}, log)),
	)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("global_schema", cfg.Database.GlobalSchema))

	poolMetrics, err := telemetry.NewDBPoolMetrics(meter, db.PoolStats, log)
	if err != nil {
		log.Fatal("Failed to register connection pool metrics", zap.Error(err))
	}
	defer func() {
		_ = poolMetrics.Stop()
	}()
	provisioningMetrics, err := telemetry.NewProvisioningMetrics(meter)
	if err != nil {
		log.Fatal("Failed to register provisioning metrics", zap.Error(err))
	}

	tenantCache, err := cache.NewTenantCacheFactory(cfg.Redis,
		cache.WithFactoryLogger(log),
		cache.WithCacheOptions(cache.WithKeyPrefix(cfg.Redis.KeyPrefix), cache.WithLogger(log)),
	).CreateCache()
	if err != nil {
		log.Fatal("Failed to create tenant cache", zap.Error(err))
	}
	defer func() {
		_ = tenantCache.Close()
	}()

	global := db.Global()
	institutions := persistence.NewGormInstitutionRepository(global)
	resolver := apptenancy.NewResolver(institutions,
		apptenancy.WithCache(tenantCache, cfg.Tenancy.CacheTTL),
		apptenancy.WithResolverLogger(log),
	)
	lookup := apptenancy.NewLookup(institutions, persistence.NewGormPlanRepository(global), log)

	notifier, err := notification.New(cfg.Mail, log)
	if err != nil {
		log.Fatal("Failed to initialize credential notifier", zap.Error(err))
	}

	service := provisioning.NewService(
		persistence.NewGormTransactionScope(db.DB),
		lookup,
		resolver,
		log,
		provisioning.WithConfig(provisioning.Config{
			TxTimeout:          cfg.Provisioning.TxTimeout,
			BulkConcurrency:    cfg.Provisioning.BulkConcurrency,
			MaxBatchSize:       cfg.Provisioning.MaxBatchSize,
			TempPasswordLength: cfg.Provisioning.TempPasswordLength,
			BcryptCost:         cfg.Provisioning.BcryptCost,
		}),
		provisioning.WithNotifier(notifier),
		provisioning.WithMetrics(provisioningMetrics),
	)

	mode := gin.DebugMode
	if cfg.App.Env == "production" {
		mode = gin.ReleaseMode
	}
	engine, err := router.NewEngine(router.EngineConfig{
		Mode:        mode,
		ServiceName: cfg.Telemetry.ServiceName,
		Tracing:     tp.IsEnabled(),
		HTTP:        cfg.HTTP,
		Logger:      log,
	})
	if err != nil {
		log.Fatal("Failed to configure HTTP engine", zap.Error(err))
	}

	system := handler.NewSystemHandler(cfg.App.Name, version, db)
	engine.GET("/health", system.Health)

	router.NewRouter(engine, router.WithAPIMiddleware(router.TenantScope(resolver, log)...)).
		Register(handler.NewProvisioningHandler(service)).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// in-flight provisioning transactions finish or roll back before this returns
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := tp.Shutdown(ctx); err != nil {
		log.Error("Failed to flush traces", zap.Error(err))
	}
	if err := mp.Shutdown(ctx); err != nil {
		log.Error("Failed to flush metrics", zap.Error(err))
	}
	if err := lp.Shutdown(ctx); err != nil {
		log.Error("Failed to flush logs", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
