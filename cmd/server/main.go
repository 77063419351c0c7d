package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlibra71/keenan-group-channels/internal/application/catalog"
	"github.com/cmlibra71/keenan-group-channels/internal/application/storefront"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/auth"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/cache"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/config"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/logger"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/scheduler"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/storage"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/telemetry"
	"github.com/cmlibra71/keenan-group-channels/internal/interfaces/http/handler"
	"github.com/cmlibra71/keenan-group-channels/internal/interfaces/http/middleware"
	"github.com/cmlibra71/keenan-group-channels/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/cmlibra71/keenan-group-channels/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

//	@title			Keenan Group Channels API
//	@version		3.0
//	@description	Multi-channel commerce API. Admin resources live under /api/v3, the public storefront under /storefront.

//	@BasePath	/

//	@securityDefinitions.apikey	APIKeyAuth
//	@in							header
//	@name						X-Auth-Token
//	@description				Admin API key

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting channels server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
		zap.Int64("channel_id", cfg.Storefront.ChannelID),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		os.Exit(1)
	}
	log.Info("Server exited gracefully")
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	// Tracing
	tracerCfg := telemetry.ConfigFrom(cfg.Telemetry)
	tracerCfg.ServiceVersion = version
	tp, err := telemetry.NewTracerProvider(ctx, tracerCfg, log)
	if err != nil {
		return err
	}
	defer shutdownWithTimeout(log, "tracer provider", tp.Shutdown)

	lp, err := telemetry.NewLoggerProvider(ctx, tracerCfg, log)
	if err != nil {
		return err
	}
	defer shutdownWithTimeout(log, "logger provider", lp.Shutdown)
	log = lp.Bridge(log, logger.ParseLevel(cfg.Log.Level))

	mp, err := telemetry.NewMeterProvider(ctx, tracerCfg, log)
	if err != nil {
		return err
	}
	defer shutdownWithTimeout(log, "meter provider", mp.Shutdown)

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.ProfilingServerAddress,
		ApplicationName: cfg.Telemetry.ServiceName,
	}, log)
	if err != nil {
		return err
	}
	defer func() { _ = profiler.Stop() }()

	// Database
	db, err := persistence.NewDatabase(&cfg.Database,
		persistence.WithLogger(log, logger.GormLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh))
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBName:          "commerce",
	}, log)
	if err := dbTracing.Register(db.DB); err != nil {
		return err
	}

	var metrics *telemetry.Metrics
	if cfg.Telemetry.MetricsEnabled {
		metrics = telemetry.NewMetrics()
		sqlDB, err := db.DB.DB()
		if err != nil {
			return err
		}
		if err := metrics.RegisterDB(sqlDB, "commerce"); err != nil {
			return err
		}
	}

	// Caches
	caches := cache.NewFactory(cfg.Redis, cache.WithLogger(log), cache.WithInMemoryFallback(!cfg.App.IsProduction()))
	defer func() { _ = caches.Close() }()

	siteCache, err := caches.SiteConfigCache(ctx, cfg.Storefront.SiteConfigTTL)
	if err != nil {
		return err
	}
	defer func() { _ = siteCache.Close() }()
	if tiered, ok := siteCache.(*cache.TieredSiteConfigCache); ok {
		go func() {
			err := tiered.StartInvalidationSubscription(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Warn("Site config invalidation subscription failed", zap.Error(err))
			}
		}()
	}

	idempotency, err := caches.IdempotencyStore(ctx)
	if err != nil {
		return err
	}

	redisClient, err := caches.Redis(ctx)
	if err != nil {
		return err
	}
	var blacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	if redisClient != nil {
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
	}

	// Services
	notifier := cache.NewNotifier(siteCache, log)
	core := storefront.NewServices(db.DB, notifier)

	var imageOpts []catalog.ImageOption
	if cfg.Storage.Enabled {
		store, err := storage.NewS3ObjectStore(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			return err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return err
		}
		imageOpts = append(imageOpts, catalog.WithObjectStore(store, cfg.Storage.MaxUploadSize))
	}
	admin := handler.NewAdminServices(core, db.DB, imageOpts...)

	sessions, err := auth.NewSessionManager(cfg.Session)
	if err != nil {
		return err
	}
	sfOpts := []storefront.Option{
		storefront.WithSiteCache(siteCache, cfg.Storefront.SiteConfigTTL),
		storefront.WithTokenBlacklist(blacklist),
		storefront.WithIdempotencyStore(idempotency),
		storefront.WithDefaultCountry(cfg.Storefront.DefaultCountry),
	}
	if metrics != nil {
		sfOpts = append(sfOpts, storefront.WithMetrics(metrics))
	}
	if mp.IsEnabled() {
		business, err := telemetry.NewBusinessMetrics(mp.Meter("storefront"))
		if err != nil {
			return err
		}
		sfOpts = append(sfOpts, storefront.WithMetrics(business))
	}
	sf := storefront.New(cfg.Storefront.ChannelID, core, sessions, sfOpts...)

	// Expiry sweeper
	sched, err := scheduler.New(scheduler.Config{
		Enabled:    cfg.Scheduler.Enabled,
		Schedule:   cfg.Scheduler.CartExpirySchedule,
		JobTimeout: cfg.Scheduler.JobTimeout,
	}, log, scheduler.SalesExpiryTasks(admin.Carts, admin.Quotes))
	if err != nil {
		return err
	}
	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer shutdownWithTimeout(log, "scheduler", sched.Stop)

	// HTTP
	var limiter middleware.Limiter
	if cfg.HTTP.RateLimitEnabled {
		if redisClient != nil {
			limiter = middleware.NewRedisRateLimiter(redisClient, "", cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		} else {
			local := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
			defer local.Stop()
			limiter = local
		}
	}
	engine := newEngine(cfg, log, metrics, limiter)

	systemOpts := []handler.SystemOption{
		handler.WithVersion(version),
		handler.WithChannel(cfg.Storefront.ChannelID),
		handler.WithDatabase(db),
	}
	if redisClient != nil {
		systemOpts = append(systemOpts, handler.WithHealthCheck("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}))
	}
	system := handler.NewSystemHandler(cfg.App.Name, systemOpts...)
	engine.GET("/health", system.Health)
	if metrics != nil {
		engine.GET("/metrics", gin.WrapH(metrics.Handler()))
	}
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:    cfg.Swagger.Enabled,
			AllowedIPs: cfg.Swagger.AllowedIPs,
		}),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	api := router.NewRouter(engine, router.WithMiddleware(middleware.APIKeyAuth(cfg.Admin.APIKeys)))
	router.RegisterAdmin(api, handler.NewAdminHandlers(admin), system).Setup()

	router.RegisterStorefront(engine,
		handler.NewStorefrontHandler(sf, handler.CookieOptions{
			Domain:     cfg.Storefront.CookieDomain,
			Secure:     cfg.Storefront.CookieSecure,
			CartMaxAge: cfg.Storefront.CartMaxAge,
		}),
		middleware.StorefrontContext(sf.ChannelID(), sf),
		middleware.SpanAttributes(sf.ChannelID()),
	)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newEngine builds the gin engine with the global middleware stack, in order:
// request id, panic recovery, access log, tracing, metrics, security
// headers, CORS, body limit and the rate limit when limiter is set.
func newEngine(cfg *config.Config, log *zap.Logger, metrics *telemetry.Metrics, limiter middleware.Limiter) *gin.Engine {
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log, middleware.RespondPanic))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	if metrics != nil {
		engine.Use(middleware.Metrics(metrics))
	}
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if limiter != nil {
		engine.Use(middleware.RateLimit(limiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}
	return engine
}

func shutdownWithTimeout(log *zap.Logger, name string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := fn(ctx); err != nil {
		log.Error("Shutdown failed", zap.String("component", name), zap.Error(err))
	}
}
