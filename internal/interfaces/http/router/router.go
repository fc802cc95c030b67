// Package router assembles the gin engine, middleware chain, and HTTP
// server lifecycle.
package router

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"github.com/curelink/curelink/internal/config"
	"github.com/curelink/curelink/internal/interfaces/http/handlers"
	"github.com/curelink/curelink/internal/interfaces/http/middleware"
	"github.com/curelink/curelink/pkg/logger"
)

// Router wires handlers and middleware into the HTTP server.
type Router struct {
	engine        *gin.Engine
	config        *config.Config
	logger        logger.Logger
	healthHandler *handlers.HealthHandler
	searchHandler *handlers.SearchHandler
	session       gin.HandlerFunc
	identity      gin.HandlerFunc
	server        *http.Server
}

// NewRouter creates the router.
func NewRouter(
	cfg *config.Config,
	log logger.Logger,
	healthHandler *handlers.HealthHandler,
	searchHandler *handlers.SearchHandler,
	session gin.HandlerFunc,
	identity gin.HandlerFunc,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	return &Router{
		engine:        engine,
		config:        cfg,
		logger:        log,
		healthHandler: healthHandler,
		searchHandler: searchHandler,
		session:       session,
		identity:      identity,
	}
}

// SetupRoutes registers middleware and routes.
func (r *Router) SetupRoutes() {
	r.engine.Use(gin.Recovery())
	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.Observability(otel.Tracer("curelink/http"), r.logger))

	corsConfig := cors.Config{
		AllowOrigins:     r.config.Server.CORSAllowOrigins,
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID", "X-Quota-Limit", "X-Quota-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	r.engine.Use(cors.New(corsConfig))

	r.engine.GET("/health/live", r.healthHandler.LivenessCheck)
	r.engine.GET("/health/ready", r.healthHandler.ReadinessCheck)

	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if r.config.Monitoring.PprofEnabled {
		pprof.Register(r.engine)
	}

	v1 := r.engine.Group("/api/v1")
	v1.Use(r.session)
	v1.Use(r.identity)
	{
		v1.GET("/search", r.searchHandler.Search)
		v1.GET("/quota", r.searchHandler.Quota)
	}

	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":             "not_found",
			"error_description": "The requested resource was not found",
		})
	})
}

// Start runs the HTTP server until Stop is called or it fails.
func (r *Router) Start() error {
	r.SetupRoutes()

	addr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	r.server = &http.Server{
		Addr:           addr,
		Handler:        r.engine,
		ReadTimeout:    time.Duration(r.config.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(r.config.Server.WriteTimeout) * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	r.logger.Info(context.Background(), "starting HTTP server", logger.String("address", addr))

	if err := r.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop shuts the server down, draining in-flight requests.
func (r *Router) Stop(ctx context.Context) error {
	if r.server == nil {
		return nil
	}
	r.logger.Info(ctx, "stopping HTTP server")
	return r.server.Shutdown(ctx)
}

// Engine exposes the gin engine, mainly for tests.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
