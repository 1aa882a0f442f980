// Package events provides middleware for request logging and metrics
package events

import (
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/danielrjepsen/Nory-sub001/internal/logger"
	"github.com/danielrjepsen/Nory-sub001/internal/metrics"
	"github.com/danielrjepsen/Nory-sub001/internal/response"
	"github.com/danielrjepsen/Nory-sub001/internal/validation"
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-ID"

var quietPaths = map[string]struct{}{
	"/ping":    {},
	"/metrics": {},
}

// CreateEvent returns a middleware that tags, logs and times every request
func CreateEvent(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if validation.ValidateUUID(requestID, "request id") != nil {
			requestID = uuid.NewString()
		}
		c.Set(response.RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()

		latency := time.Since(startTime)
		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(c.Request.Method, route, strconv.Itoa(status), latency.Seconds())

		level := log.InfoLevel
		if _, quiet := quietPaths[route]; quiet {
			level = log.DebugLevel
		}
		if status >= 500 {
			level = log.ErrorLevel
		} else if status >= 400 {
			level = log.WarnLevel
		}

		logger.HTTP().Log(level, "Request completed",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", latency,
			"size", c.Writer.Size(),
			"remote_addr", c.ClientIP(),
		)
	}
}

// RequestID returns the id assigned to the request by CreateEvent
func RequestID(c *gin.Context) string {
	return c.GetString(response.RequestIDKey)
}
