package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	service string
	checks  map[string]HealthCheck
}

func NewHealthHandler(serviceName string, checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{service: serviceName, checks: checks}
}

// Health answers 503 as soon as one dependency is down.
func (h *HealthHandler) Health(c *gin.Context) {
	status := http.StatusOK
	dependencies := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(c.Request.Context()); err != nil {
			dependencies[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		dependencies[name] = "up"
	}

	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	c.JSON(status, gin.H{
		"service":      h.service,
		"status":       state,
		"dependencies": dependencies,
		"timestamp":    time.Now(),
	})
}
