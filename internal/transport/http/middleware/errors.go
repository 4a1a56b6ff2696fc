package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"todo-api/internal/app"
	"todo-api/internal/repository"
	"todo-api/internal/transport/http/response"
	"todo-api/internal/validation"
)

// ErrorHandler is the only place failures become HTTP responses. Handlers and
// middleware record an error with c.Error and return without writing.
func ErrorHandler(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status, message, details := Classify(err)

		level := slog.LevelWarn
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.LogAttrs(c.Request.Context(), level, "request failed",
			slog.String("request_id", GetRequestID(c)),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status_code", status),
			slog.String("error", err.Error()),
		)

		response.Error(c, status, message, details)
	}
}

// Classify maps an error to its status, client message and optional field
// details.
func Classify(err error) (int, string, interface{}) {
	var verr *validation.Errors
	var appErr *app.Error
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, "Validation error", verr.Fields
	case errors.Is(err, repository.ErrDuplicate):
		return http.StatusConflict, "Resource already exists", nil
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "Resource not found", nil
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, "Request body too large", nil
	case errors.As(err, &appErr):
		return appErr.Status, appErr.Message, nil
	default:
		return http.StatusInternalServerError, "Internal server error", nil
	}
}
