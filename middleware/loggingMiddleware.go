package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lucsky/cuid"
)

const (
	RequestIDHeader = "X-Request-Id"

	requestIDKey = "request_id"
)

// RequestLogger tags each request with an id (the caller's X-Request-Id when
// present) and logs it once it completes.
func RequestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = cuid.New()
		}
		c.Set(requestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		start := time.Now()
		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= 500 {
			level = slog.LevelError
		}
		log.LogAttrs(c.Request.Context(), level, "request handled",
			slog.String("action", "http_request"),
			slog.String("request_id", requestID),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Int("bytes", c.Writer.Size()),
			slog.Duration("duration", time.Since(start)),
		)
	}
}

// RequestID returns the id assigned by RequestLogger, or "" outside it.
func RequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
