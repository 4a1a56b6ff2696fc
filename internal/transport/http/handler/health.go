package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"todo-api/internal/bootstrap"
)

type HealthHandler struct {
	app *bootstrap.App
}

type dependencyStatus struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

func NewHealthHandler(app *bootstrap.App) *HealthHandler {
	return &HealthHandler{app: app}
}

func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	dbStatus := h.checkDatabase(ctx)

	status, statusCode := "ok", http.StatusOK
	if !dbStatus.OK {
		status, statusCode = "unavailable", http.StatusServiceUnavailable
		h.app.Logger.Warn("health check failed", slog.String("dependency", "database"), slog.String("error", dbStatus.Message))
	}

	c.JSON(statusCode, gin.H{
		"status":     status,
		"app":        h.app.Config.App.Name,
		"env":        h.app.Config.App.Env,
		"uptime_sec": int(time.Since(h.app.StartedAt).Seconds()),
		"dependencies": gin.H{
			"database": dbStatus,
		},
	})
}

func (h *HealthHandler) checkDatabase(ctx context.Context) dependencyStatus {
	sqlDB, err := h.app.DB.DB()
	if err != nil {
		return dependencyStatus{OK: false, Message: err.Error()}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return dependencyStatus{OK: false, Message: err.Error()}
	}
	return dependencyStatus{OK: true}
}
