package monitoring

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/criteria-ranker/internal/ranking"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}

func TestMetrics_Register(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics()
	require.NoError(t, m.Register(reg))
	assert.Error(t, m.Register(reg), "double registration must fail")
}

func TestMetrics_ObserveRanking(t *testing.T) {
	m := NewMetrics()

	m.ObserveRanking(&ranking.Ranking{Candidates: []string{"a"}, Source: ranking.SourceExternal})
	m.ObserveRanking(&ranking.Ranking{
		Candidates:       []string{"a", "b"},
		Source:           ranking.SourceHeuristic,
		FallbackReason:   ranking.FallbackReasonUnavailable,
		ExternalDuration: time.Millisecond,
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.rankingRequests.WithLabelValues("external")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rankingRequests.WithLabelValues("heuristic")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rankingFallbacks.WithLabelValues("service_unavailable")))

	stats := m.GetStats()
	assert.EqualValues(t, 2, stats["rankings"])
	assert.EqualValues(t, 1, stats["fallbacks"])
}

func TestMonitoringMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	m := NewMetrics()
	logger := NewLoggerTo(&buf, slog.LevelInfo)

	router := gin.New()
	router.Use(MonitoringMiddleware(m, logger))
	router.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/42", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/items/:id", "404")))
	assert.EqualValues(t, 1, m.GetStats()["errors"])
	assert.Contains(t, buf.String(), `"msg":"HTTP Request"`)
	assert.Contains(t, buf.String(), `"timestamp"`)
}

func TestSecurityMonitoringMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, slog.LevelInfo)

	router := gin.New()
	router.Use(SecurityMonitoringMiddleware(logger))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0")
	router.ServeHTTP(httptest.NewRecorder(), req)
	assert.Empty(t, buf.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("User-Agent", "sqlmap/1.7")
	router.ServeHTTP(httptest.NewRecorder(), req)
	assert.True(t, strings.Contains(buf.String(), "suspicious_user_agent"))
}
