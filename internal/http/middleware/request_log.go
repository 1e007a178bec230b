package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/appregistry-backend/internal/platform/ctxutil"
	"github.com/yungbote/appregistry-backend/internal/platform/logger"
)

// RequestLog writes one line per request. 5xx responses log at error level.
func RequestLog(log *logger.Logger) gin.HandlerFunc {
	reqLog := log.With("Middleware", "RequestLog")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		kv := []interface{}{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if td := ctxutil.GetTraceData(c.Request.Context()); td != nil {
			kv = append(kv, "request_id", td.RequestID)
			if td.TraceID != "" {
				kv = append(kv, "trace_id", td.TraceID)
			}
		}
		if len(c.Errors) > 0 {
			kv = append(kv, "error", c.Errors.String())
		}
		switch status := c.Writer.Status(); {
		case status >= 500:
			reqLog.Error("request", kv...)
		case status >= 400:
			reqLog.Warn("request", kv...)
		default:
			reqLog.Debug("request", kv...)
		}
	}
}
