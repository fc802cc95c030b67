package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	appservice "github.com/curelink/curelink/internal/application/service"
	"github.com/curelink/curelink/internal/config"
	"github.com/curelink/curelink/internal/infrastructure/audit"
	"github.com/curelink/curelink/internal/infrastructure/monitoring"
	"github.com/curelink/curelink/internal/infrastructure/persistence/postgres"
	"github.com/curelink/curelink/internal/infrastructure/persistence/redis"
	"github.com/curelink/curelink/internal/infrastructure/scholar"
	"github.com/curelink/curelink/internal/infrastructure/secrets"
	"github.com/curelink/curelink/internal/interfaces/http/handlers"
	"github.com/curelink/curelink/internal/interfaces/http/middleware"
	"github.com/curelink/curelink/internal/interfaces/http/router"
	domainservice "github.com/curelink/curelink/internal/domain/service"
	"github.com/curelink/curelink/pkg/logger"
)

func main() {
	startupLogger, _ := monitoring.NewZapLogger(&config.LogConfig{Level: "info", Format: "json"})

	cfg, err := config.LoadConfig(startupLogger)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	appLogger, err := monitoring.NewZapLogger(&cfg.Log)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}

	ctx := context.Background()

	cleanup, err := monitoring.InitTracer(&cfg.Tracing, appLogger)
	if err != nil {
		appLogger.Fatal(ctx, "failed to initialize tracer", err)
	}
	defer cleanup()

	db, err := postgres.NewDBConnection(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal(ctx, "failed to connect to database", err)
	}
	defer db.Close()

	redisConn, err := redis.NewRedisConnection(&cfg.Redis, appLogger)
	if err != nil {
		appLogger.Fatal(ctx, "failed to connect to redis", err)
	}
	defer redisConn.Close()

	originSalt, err := secrets.ResolveOriginSalt(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal(ctx, "failed to resolve origin salt", err)
	}

	metrics := monitoring.NewMetrics()

	quotaLimit := config.NewQuotaLimit(cfg.Quota.Limit)
	config.WatchQuotaLimit(quotaLimit, appLogger)

	identityRepo := postgres.NewIdentityRepository(db.DB(), appLogger)
	originRepo := redis.NewOriginRepository(redisConn.Client(), cfg.Quota.OriginTTL, appLogger)

	var auditService domainservice.AuditService
	if cfg.Kafka.Enabled() {
		auditService = audit.NewKafkaProducer(&cfg.Kafka, appLogger)
	} else {
		auditService = audit.NewLogAuditService(appLogger)
	}
	defer auditService.Close()

	quotaService := appservice.NewQuotaService(
		identityRepo, originRepo, quotaLimit, cfg.Quota, originSalt, metrics, appLogger,
	)
	resolver := appservice.NewIdentityResolver(identityRepo, metrics, cfg.Quota.StoreTimeout, appLogger)
	scholarService := scholar.NewService(&cfg.Scholar, metrics, appLogger)
	searchService := appservice.NewSearchAppService(
		quotaService, scholarService, auditService, metrics, originSalt, appLogger,
	)

	cookiePolicy := middleware.NewCookiePolicy(cfg.Cookie.Name, cfg.Cookie.Profile)
	sessionMW := middleware.DetectSession(appLogger)
	identityMW := middleware.AnonymousIdentity(resolver, auditService, cookiePolicy, appLogger)

	searchHandler := handlers.NewSearchHandler(searchService, quotaLimit, appLogger)
	healthHandler := handlers.NewHealthHandler(db, redisConn, appLogger)

	r := router.NewRouter(cfg, appLogger, healthHandler, searchHandler, sessionMW, identityMW)

	errCh := make(chan error, 1)
	go func() {
		errCh <- r.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			appLogger.Fatal(ctx, "HTTP server failed", err)
		}
	case sig := <-quit:
		appLogger.Info(ctx, "shutdown signal received, draining requests",
			logger.String("signal", sig.String()),
		)

		shutdownCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
		defer cancel()
		if err := r.Stop(shutdownCtx); err != nil {
			appLogger.Error(ctx, "server forced to shut down", err)
		}
	}

	appLogger.Info(ctx, "server stopped")
}
