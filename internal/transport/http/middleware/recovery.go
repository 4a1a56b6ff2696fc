package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"todo-api/internal/transport/http/response"
)

// Recovery turns a panic into the standard 500 envelope.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		logger.Error("panic recovered",
			slog.String("request_id", GetRequestID(c)),
			slog.Any("panic", recovered),
		)
		response.Error(c, http.StatusInternalServerError, "Internal server error", nil)
		c.Abort()
	})
}
