package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/campuskit/forum-service/internal/cache"
)

// Pinger checks durable-store connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler exposes liveness and readiness probes.
type HealthHandler struct {
	db    Pinger
	cache cache.Cache
}

// NewHealthHandler constructs handler.
func NewHealthHandler(db Pinger, c cache.Cache) *HealthHandler {
	return &HealthHandler{db: db, cache: c}
}

// Live handles GET /health/live.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Ready handles GET /health/ready.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	checks := fiber.Map{"postgres": "ok", "redis": "ok"}
	status := http.StatusOK
	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			checks["postgres"] = "unavailable"
			status = http.StatusServiceUnavailable
		}
	}
	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			checks["redis"] = "unavailable"
			status = http.StatusServiceUnavailable
		}
	}
	return c.Status(status).JSON(checks)
}
