package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/seatsurge/eventbooking/pkg/database"
	"github.com/seatsurge/eventbooking/pkg/redis"
)

// HealthHandler reports process and dependency health
type HealthHandler struct {
	db    *database.PostgresDB
	redis *redis.Client
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *database.PostgresDB, redis *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: redis}
}

// Health handles GET /health: liveness plus dependency status
func (h *HealthHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()

	status := http.StatusOK
	overall := "ok"
	dbStatus := "up"
	redisStatus := "up"

	if h.db != nil {
		if err := h.db.HealthCheck(ctx); err != nil {
			dbStatus = "down"
			overall = "degraded"
			status = http.StatusServiceUnavailable
		}
	}
	if h.redis != nil {
		if err := h.redis.HealthCheck(ctx); err != nil {
			// Reads degrade to the ledger when Redis is down; the service
			// stays available.
			redisStatus = "down"
		}
	}

	c.JSON(status, gin.H{
		"status": overall,
		"time":   time.Now().UTC(),
		"checks": gin.H{
			"postgres": dbStatus,
			"redis":    redisStatus,
		},
	})
}

// Ready handles GET /ready: strict readiness, every dependency must be up
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx := c.Request.Context()

	if h.db != nil {
		if err := h.db.HealthCheck(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "reason": "postgres"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
