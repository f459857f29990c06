package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger проверяет доступность зависимости (pgx pool, redis)
type Pinger func(ctx context.Context) error

// HealthHandler отчет о состоянии сервиса
type HealthHandler struct {
	checks map[string]Pinger
}

// NewHealthHandler создает обработчик; checks может быть пустым
func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// HealthCheck обработчик для проверки работоспособности сервиса
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := "OK"
	deps := make(map[string]string, len(h.checks))
	for name, ping := range h.checks {
		if err := ping(ctx); err != nil {
			deps[name] = err.Error()
			status = "DEGRADED"
			continue
		}
		deps[name] = "OK"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       status,
		"time":         time.Now().Format(time.RFC3339),
		"dependencies": deps,
	})
}
