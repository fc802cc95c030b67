package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/curelink/curelink/internal/infrastructure/persistence/postgres"
	"github.com/curelink/curelink/internal/infrastructure/persistence/redis"
	"github.com/curelink/curelink/pkg/logger"
)

// HealthHandler provides liveness and readiness endpoints. Readiness
// checks the backing stores; liveness only reports that the process is
// serving. The stores failing does not make the process unhealthy,
// quota enforcement degrades per its failure policy instead.
type HealthHandler struct {
	db    *postgres.DBConnection
	redis *redis.RedisConnection
	log   logger.Logger
}

// NewHealthHandler creates the health handler.
func NewHealthHandler(db *postgres.DBConnection, redis *redis.RedisConnection, log logger.Logger) *HealthHandler {
	return &HealthHandler{
		db:    db,
		redis: redis,
		log:   log,
	}
}

// LivenessCheck reports the process is up.
// GET /health/live
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"timestamp": time.Now().UTC(),
	})
}

// ReadinessCheck pings the backing stores concurrently.
// GET /health/ready
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checks := h.performChecks(ctx)

	status := "ready"
	httpStatus := http.StatusOK
	for _, checkStatus := range checks {
		if checkStatus != "ok" {
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
			break
		}
	}

	c.JSON(httpStatus, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC(),
		"checks":    checks,
	})
}

func (h *HealthHandler) performChecks(ctx context.Context) map[string]string {
	checks := make(map[string]string, 2)
	var mu sync.Mutex
	var wg sync.WaitGroup

	record := func(name string, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			h.log.Warn(ctx, "readiness check failed",
				logger.String("dependency", name),
				logger.Error(err),
			)
			checks[name] = err.Error()
			return
		}
		checks[name] = "ok"
	}

	wg.Add(2)
	go func() {
		defer wg.Done()
		record("postgres", h.db.Ping(ctx))
	}()
	go func() {
		defer wg.Done()
		record("redis", h.redis.Ping(ctx))
	}()
	wg.Wait()

	return checks
}
