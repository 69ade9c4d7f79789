package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	appreceivable "github.com/erp/receivables/internal/application/receivable"
	"github.com/erp/receivables/internal/infrastructure/auth"
	"github.com/erp/receivables/internal/infrastructure/cache"
	"github.com/erp/receivables/internal/infrastructure/config"
	"github.com/erp/receivables/internal/infrastructure/event"
	"github.com/erp/receivables/internal/infrastructure/logger"
	"github.com/erp/receivables/internal/infrastructure/persistence"
	"github.com/erp/receivables/internal/infrastructure/scheduler"
	"github.com/erp/receivables/internal/infrastructure/telemetry"
	"github.com/erp/receivables/internal/interfaces/http/handler"
	"github.com/erp/receivables/internal/interfaces/http/middleware"
	"github.com/erp/receivables/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/erp/receivables/docs"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Receivables API
//	@version		1.0
//	@description	Receipt allocation and reconciliation against invoices and advances

//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry first, so the logger can tee into the OTEL log pipeline
	bootLog, err := logger.NewForEnvironment(cfg.App.Env)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	providers, err := telemetry.Setup(ctx, cfg.Telemetry, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to set up telemetry", zap.Error(err))
	}

	logCfg := &logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output}
	log, err := logger.New(logCfg, providers.ZapCore(logger.ParseLevel(cfg.Log.Level)))
	if err != nil {
		bootLog.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting receivables service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// Database with zap-backed GORM logging, tracing and pool metrics
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithGormLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := telemetry.NewDBTracingPlugin(telemetry.DBTracing(cfg.Telemetry), log).RegisterOtelGorm(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	dbMetricsCfg := telemetry.DefaultDBMetricsConfig()
	dbMetricsCfg.Enabled = providers.Meter.IsEnabled()
	dbMetrics, err := telemetry.RegisterDBMetrics(db.DB, providers.Meter, dbMetricsCfg, log)
	if err != nil {
		log.Fatal("Failed to register database metrics", zap.Error(err))
	}
	if dbMetrics != nil {
		defer dbMetrics.Stop()
	}

	// Coordination stores: Idempotency-Key records and the scanner run lock
	stores, err := cache.NewStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.Redis.Required),
	).Create(ctx)
	if err != nil {
		log.Fatal("Failed to create coordination stores", zap.Error(err))
	}
	defer func() {
		if err := stores.Close(); err != nil {
			log.Error("Error closing coordination stores", zap.Error(err))
		}
	}()
	if !stores.UsesRedis() {
		log.Warn("Scanner run lock and idempotency keys are process-local; run a single instance")
	}

	// Events are written to the outbox in the same transaction as the change
	eventSerializer := event.NewEventSerializer()
	event.RegisterAllEvents(eventSerializer)
	outboxRepo := event.NewGormOutboxRepository(db.DB)
	scope := persistence.NewGormTransactionScope(db.DB, event.NewOutboxPublisher(eventSerializer))
	auditSink := persistence.NewGormAuditSink(db.DB)

	metrics, err := telemetry.NewReceivableMetrics(telemetry.ReceivableMetricsConfig{
		Meter:    providers.Meter.Meter("receivables"),
		Logger:   log,
		Provider: telemetry.NewGormReceivableSnapshotProvider(db.DB),
	})
	if err != nil {
		log.Fatal("Failed to create receivable metrics", zap.Error(err))
	}
	if providers.Meter.IsEnabled() {
		metrics.StartPeriodicCollection(ctx, time.Minute)
		defer metrics.Stop()
	}

	// Application services
	guard := appreceivable.NewPeriodLockGuard(scope, auditSink, log)
	projector := appreceivable.NewBalanceProjector(scope, auditSink, log)
	receiptService := appreceivable.NewReceiptService(scope, auditSink, guard, projector,
		appreceivable.WithReceiptLogger(log),
		appreceivable.WithReceiptMetrics(metrics),
	)
	documentService := appreceivable.NewDebtDocumentService(scope, auditSink, guard, projector,
		appreceivable.WithDocumentLogger(log),
		appreceivable.WithDocumentMetrics(metrics),
	)
	scanner := appreceivable.NewSuggestionScanner(scope, stores.RunLocker,
		appreceivable.WithScannerLogger(log),
		appreceivable.WithScannerMetrics(metrics),
		appreceivable.WithScannerLimit(cfg.Scanner.Limit),
		appreceivable.WithScannerLockTTL(cfg.Scanner.LockTTL),
	)

	// Background jobs
	eventBus := event.NewInMemoryEventBus(log)
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		_ = eventBus.Stop(context.Background())
	}()
	stopJobs := startBackgroundJobs(ctx, cfg, log, scanner, event.NewOutboxProcessor(
		outboxRepo, eventBus, eventSerializer,
		event.OutboxProcessorConfig{BatchSize: cfg.Event.BatchSize, CleanupRetention: cfg.Event.CleanupRetention},
		log,
	))

	// HTTP server
	if err := middleware.SetupValidator(); err != nil {
		log.Fatal("Failed to register request validators", zap.Error(err))
	}
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	var rateLimiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer rateLimiter.Stop()
	}
	tokens := auth.NewJWTService(cfg.JWT)
	useMiddleware(engine, cfg, log, tokens, rateLimiter)

	// The global JWT check skips /swagger/, SwaggerProtection decides instead
	docsAuth := middleware.JWTAuthMiddleware(middleware.JWTMiddlewareConfig{Validator: tokens, Logger: log})
	engine.GET("/swagger/*any", middleware.SwaggerProtection(cfg.Swagger, docsAuth), ginSwagger.WrapHandler(swaggerFiles.Handler))

	var idempotency gin.HandlerFunc
	if cfg.Idempotency.Enabled {
		idempotency = middleware.Idempotency(middleware.IdempotencyConfig{
			Store: stores.Idempotency,
			TTL:   cfg.Idempotency.TTL,
		})
	}
	router.Setup(engine, router.Handlers{
		Receipts:    handler.NewReceiptHandler(receiptService),
		Documents:   handler.NewDebtDocumentHandler(documentService),
		PeriodLocks: handler.NewPeriodLockHandler(guard),
		Suggestions: handler.NewSuggestionHandler(scanner),
		Customers:   handler.NewCustomerHandler(projector),
		System:      handler.NewSystemHandler(cfg.App.Name, version, db),
		Outbox:      handler.NewOutboxHandler(outboxRepo),
		Idempotency: idempotency,
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down server...")
	case err := <-serverErr:
		log.Error("Server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	stopJobs(shutdownCtx)
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down telemetry", zap.Error(err))
	}

	log.Info("Server exited")
}

// useMiddleware installs the global middleware chain. Order matters: the
// request ID and recovery wrap everything, tracing starts before auth so
// rejected requests are traced, and rate limiting runs once the caller is known.
func useMiddleware(engine *gin.Engine, cfg *config.Config, log *zap.Logger, tokens middleware.TokenValidator, limiter *middleware.RateLimiter) {
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))

	tracingCfg := middleware.DefaultTracingConfig()
	tracingCfg.ServiceName = cfg.Telemetry.ServiceName
	tracingCfg.Enabled = cfg.Telemetry.Enabled
	engine.Use(middleware.TracingWithConfig(tracingCfg))
	engine.Use(middleware.SpanErrorMarker())

	engine.Use(middleware.Secure())
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	engine.Use(middleware.CORSWithConfig(corsCfg))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	engine.Use(middleware.Timeout(cfg.HTTP.RequestTimeout))

	engine.Use(middleware.JWTAuthMiddleware(middleware.JWTMiddlewareConfig{
		Validator:    tokens,
		SkipPaths:    []string{"/health"},
		SkipPrefixes: []string{"/swagger/"},
		Logger:       log,
	}))
	engine.Use(middleware.TracingAttributeInjector())
	engine.Use(middleware.Profiling())

	metricsCfg := middleware.DefaultHTTPMetricsConfig()
	metricsCfg.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled
	engine.Use(middleware.HTTPMetrics(metricsCfg))

	if limiter != nil {
		engine.Use(middleware.RateLimit(limiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}
}

// startBackgroundJobs starts the worker pool and the interval triggers for
// the suggestion scanner and outbox delivery. The returned function stops them.
func startBackgroundJobs(
	ctx context.Context,
	cfg *config.Config,
	log *zap.Logger,
	scanner *appreceivable.SuggestionScanner,
	processor *event.OutboxProcessor,
) func(context.Context) {
	if !cfg.Scheduler.Enabled {
		log.Info("Scheduler disabled, suggestion scan and outbox delivery only run on demand")
		return func(context.Context) {}
	}

	sched, err := scheduler.NewScheduler(scheduler.SchedulerConfig{
		Enabled:           cfg.Scheduler.Enabled,
		MaxConcurrentJobs: cfg.Scheduler.MaxConcurrentJobs,
		JobTimeout:        cfg.Scheduler.JobTimeout,
		RetryAttempts:     cfg.Scheduler.RetryAttempts,
		RetryDelay:        cfg.Scheduler.RetryDelay,
	}, log)
	if err != nil {
		log.Fatal("Invalid scheduler configuration", zap.Error(err))
	}

	var triggers []scheduler.TriggerConfig
	if cfg.Scanner.Enabled {
		sched.Register(scheduler.JobSuggestionScan, scheduler.NewSuggestionScanJob(scanner, appreceivable.ScanOptions{
			SellerTaxCodes: cfg.Scanner.SellerTaxCodes,
			Limit:          cfg.Scanner.Limit,
		}, log))
		triggers = append(triggers, scheduler.TriggerConfig{JobName: scheduler.JobSuggestionScan, Interval: cfg.Scanner.Interval})
	}
	if cfg.Event.ProcessorEnabled {
		sched.Register(scheduler.JobOutboxDelivery, scheduler.NewOutboxDeliveryJob(processor, cfg.Event.BatchSize))
		sched.Register(scheduler.JobOutboxCleanup, scheduler.NewOutboxCleanupJob(processor))
		triggers = append(triggers,
			scheduler.TriggerConfig{JobName: scheduler.JobOutboxDelivery, Interval: cfg.Event.PollInterval, RunOnStart: true},
			scheduler.TriggerConfig{JobName: scheduler.JobOutboxCleanup, Interval: cfg.Event.CleanupInterval},
		)
	}

	if err := sched.Start(ctx); err != nil {
		log.Fatal("Failed to start scheduler", zap.Error(err))
	}

	started := make([]*scheduler.Trigger, 0, len(triggers))
	for _, tc := range triggers {
		trigger, err := scheduler.NewTrigger(tc, sched, log)
		if err != nil {
			log.Fatal("Invalid trigger configuration", zap.String("job", tc.JobName), zap.Error(err))
		}
		if err := trigger.Start(ctx); err != nil {
			log.Fatal("Failed to start trigger", zap.String("job", tc.JobName), zap.Error(err))
		}
		started = append(started, trigger)
		log.Info("Background job scheduled", zap.String("job", tc.JobName), zap.Duration("interval", tc.Interval))
	}

	return func(ctx context.Context) {
		for _, trigger := range started {
			if err := trigger.Stop(ctx); err != nil {
				log.Error("Error stopping trigger", zap.Error(err))
			}
		}
		if err := sched.Stop(ctx); err != nil {
			log.Error("Error stopping scheduler", zap.Error(err))
		}
	}
}
