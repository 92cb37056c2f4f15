package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Check probes one dependency. Returning an error marks the service not ready.
type Check func(ctx context.Context) error

// Handler serves liveness, readiness and version endpoints.
type Handler struct {
	version string
	checks  map[string]Check
	logger  *slog.Logger
	timeout time.Duration
}

// NewHandler creates a health handler with named readiness checks.
func NewHandler(version string, checks map[string]Check, logger *slog.Logger) *Handler {
	return &Handler{
		version: version,
		checks:  checks,
		logger:  logger,
		timeout: 2 * time.Second,
	}
}

// Response represents the health check response.
type Response struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Health is a liveness probe that always returns OK.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Version:   h.version,
	})
}

// Ready runs every registered check.
func (h *Handler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	status := "ready"
	results := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.logger.WarnContext(ctx, "readiness check failed", slog.String("check", name), slog.String("error", err.Error()))
			results[name] = "unhealthy"
			status = "not_ready"
			continue
		}
		results[name] = "ok"
	}

	code := http.StatusOK
	if status != "ready" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, Response{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Version:   h.version,
		Checks:    results,
	})
}

// Version returns version information about the service.
func (h *Handler) Version(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"version": h.version})
}

// RegisterRoutes mounts the probes on the engine root.
func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)
	r.GET("/version", h.Version)
}
