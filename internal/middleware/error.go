package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// Recovery turns a panic in a handler into a generic JSON 500.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				panicRecoveries.Inc()
				logger.Error("panic in handler",
					"error", err,
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"request_id", RequestIDFrom(c))
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Error:     "Internal Server Error",
					RequestID: RequestIDFrom(c),
				})
			}
		}()
		c.Next()
	}
}
