package middleware

import (
	"time"

	"github.com/Shogun05/VoiceFrame/application/ports/outbound"
	"github.com/gin-gonic/gin"
)

// RequestLogger replaces gin's text access log with structured entries.
func RequestLogger(logger outbound.LoggerPort) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := map[string]interface{}{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
			"client":   c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			logger.ErrorWithFields(c.Errors.Last(), "request failed", fields)
			return
		}
		logger.InfoWithFields("request handled", fields)
	}
}
