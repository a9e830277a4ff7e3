package monitoring

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/criteria-ranker/internal/ranking"
)

// Logger provides enhanced structured logging with context
type Logger struct {
	*slog.Logger
}

// NewLogger creates a JSON logger on stdout at the given level
func NewLogger(level slog.Level) *Logger {
	return NewLoggerTo(os.Stdout, level)
}

// NewLoggerTo creates a JSON logger writing to w
func NewLoggerTo(w io.Writer, level slog.Level) *Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{
					Key:   "timestamp",
					Value: slog.StringValue(a.Value.Time().Format(time.RFC3339)),
				}
			}
			return a
		},
	})

	return &Logger{
		Logger: slog.New(handler),
	}
}

// ParseLevel maps debug/info/warn/error to a slog level, defaulting to info
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// RequestLogger logs HTTP request details
func (l *Logger) RequestLogger(method, path, ip, userAgent, requestID string, statusCode int, duration time.Duration) {
	level := slog.LevelInfo
	if statusCode >= 500 {
		level = slog.LevelError
	}

	l.Log(context.Background(), level, "HTTP Request",
		"method", method,
		"path", path,
		"ip", ip,
		"user_agent", userAgent,
		"request_id", requestID,
		"status_code", statusCode,
		"duration_ms", duration.Milliseconds(),
	)
}

// RankingLogger logs the outcome of one ranking
func (l *Logger) RankingLogger(r *ranking.Ranking, duration time.Duration) {
	attrs := []any{
		"source", r.Source,
		"candidates", len(r.Candidates),
		"criteria", len(r.Criteria),
		"external_ms", r.ExternalDuration.Milliseconds(),
		"duration_ms", duration.Milliseconds(),
	}
	if r.FallbackReason != "" {
		attrs = append(attrs, "fallback_reason", r.FallbackReason)
	}
	if len(r.Results) > 0 {
		attrs = append(attrs, "top_score", r.Results[0].Score)
	}

	l.Info("Ranking Completed", attrs...)
}

// ExternalAPILogger logs external API calls
func (l *Logger) ExternalAPILogger(apiName, operation string, duration time.Duration, err error) {
	level := slog.LevelInfo
	attrs := []any{
		"api_name", apiName,
		"operation", operation,
		"duration_ms", duration.Milliseconds(),
		"success", err == nil,
	}
	if err != nil {
		level = slog.LevelWarn
		attrs = append(attrs, "error", err.Error())
	}

	l.Log(context.Background(), level, "External API Call", attrs...)
}

// SystemLogger logs system-level events
func (l *Logger) SystemLogger(event, details string) {
	l.Info("System Event",
		"event", event,
		"details", details,
		"uptime", time.Since(startTime).Round(time.Second).String(),
	)
}

// SecurityLogger logs security-related events
func (l *Logger) SecurityLogger(event, ip, userAgent string, details map[string]interface{}) {
	attrs := []any{
		"event", event,
		"ip", ip,
		"user_agent", userAgent,
	}

	for key, value := range details {
		attrs = append(attrs, key, value)
	}

	l.Warn("Security Event", attrs...)
}

var startTime = time.Now()

// Uptime reports how long the process has been running
func Uptime() time.Duration {
	return time.Since(startTime)
}
