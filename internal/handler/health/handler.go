package health

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

type Handler struct {
	db    *sqlx.DB
	redis *redis.Client
}

func NewHandler(db *sqlx.DB, rdb *redis.Client) *Handler {
	return &Handler{db: db, redis: rdb}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready verifies the service's backing stores are reachable.
func (h *Handler) Ready(c *gin.Context) {
	ctx := c.Request.Context()
	checks := gin.H{}
	healthy := true

	dbStart := time.Now()
	if err := h.db.PingContext(ctx); err != nil {
		checks["database"] = gin.H{"status": "down", "error": err.Error()}
		healthy = false
	} else {
		checks["database"] = gin.H{"status": "up", "latency_ms": time.Since(dbStart).Milliseconds()}
	}

	redisStart := time.Now()
	if err := h.redis.Ping(ctx).Err(); err != nil {
		checks["redis"] = gin.H{"status": "down", "error": err.Error()}
		healthy = false
	} else {
		checks["redis"] = gin.H{"status": "up", "latency_ms": time.Since(redisStart).Milliseconds()}
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"checks": checks})
}
