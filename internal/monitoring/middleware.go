package monitoring

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// MonitoringMiddleware records request metrics and logs every request
func MonitoringMiddleware(metrics *Metrics, logger *Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		// route template keeps label cardinality bounded
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveHTTP(c.Request.Method, route, statusCode, duration)

		logger.RequestLogger(
			c.Request.Method,
			c.Request.URL.Path,
			c.ClientIP(),
			c.GetHeader("User-Agent"),
			c.Writer.Header().Get("X-Request-ID"),
			statusCode,
			duration,
		)

		if duration > 5*time.Second {
			logger.Warn("Slow request", "path", route, "duration_ms", duration.Milliseconds())
		}
	}
}

// maxRankBodyBytes flags ranking bodies far above what the candidate limit needs
const maxRankBodyBytes = 1 << 20

// SecurityMonitoringMiddleware logs suspicious clients and oversized ranking bodies
func SecurityMonitoringMiddleware(logger *Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userAgent := c.GetHeader("User-Agent")
		details := make(map[string]interface{})

		if c.Request.Method == "POST" && c.Request.ContentLength > maxRankBodyBytes {
			details["type"] = "large_request_body"
			details["size_bytes"] = c.Request.ContentLength
			details["path"] = c.Request.URL.Path
		}
		if containsSuspiciousUserAgent(userAgent) {
			details["type"] = "suspicious_user_agent"
		}

		if len(details) > 0 {
			logger.SecurityLogger("suspicious_activity_detected", c.ClientIP(), userAgent, details)
		}

		c.Next()
	}
}

var suspiciousAgents = []string{
	"sqlmap",
	"nmap",
	"masscan",
	"zmap",
	"dirbuster",
	"gobuster",
	"nikto",
	"acunetix",
}

func containsSuspiciousUserAgent(userAgent string) bool {
	ua := strings.ToLower(userAgent)
	for _, agent := range suspiciousAgents {
		if strings.Contains(ua, agent) {
			return true
		}
	}
	return false
}
