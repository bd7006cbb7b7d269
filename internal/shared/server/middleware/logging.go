package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"portfolio-backend/internal/shared/telemetry"
)

// Context keys handlers may set to enrich the request log line.
const (
	UploadSessionIDKey = "uploadSessionId"
	ResumeActionKey    = "resumeAction"
)

// Logging emits one structured line per request once the handler chain has
// finished. Server errors log at error level and client errors at warn.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		logAt(c.Writer.Status())("request.complete", map[string]any{
			"request_id":        RequestIDFromContext(c),
			"method":            c.Request.Method,
			"path":              c.Request.URL.Path,
			"route":             c.FullPath(),
			"status":            c.Writer.Status(),
			"duration_ms":       float64(latency.Microseconds()) / 1000.0,
			"user_id":           UserIDFromContext(c),
			"upload_session_id": c.GetString(UploadSessionIDKey),
			"resume_action":     c.GetString(ResumeActionKey),
			"client_ip":         c.ClientIP(),
			"user_agent":        c.Request.UserAgent(),
			"errors":            c.Errors.ByType(gin.ErrorTypePrivate).String(),
		})
	}
}

func logAt(status int) func(string, map[string]any) {
	switch {
	case status >= http.StatusInternalServerError:
		return telemetry.Error
	case status >= http.StatusBadRequest:
		return telemetry.Warn
	default:
		return telemetry.Info
	}
}
