package monitoring

import (
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ZanzyTHEbar/criteria-ranker/internal/ranking"
)

// Metric names
const (
	MetricRankingRequests  = "ranking_requests_total"
	MetricRankingFallbacks = "ranking_fallbacks_total"
	MetricExternalDuration = "ranking_external_duration_seconds"
	MetricCandidates       = "ranking_candidates"
	MetricScoreRequests    = "scoring_requests_total"
	MetricBudgetChecks     = "ranking_budget_checks_total"
	MetricHTTPRequests     = "http_requests_total"
	MetricHTTPDuration     = "http_request_duration_seconds"
)

// Metrics holds the Prometheus collectors plus a few counters for /health
type Metrics struct {
	rankingRequests  *prometheus.CounterVec
	rankingFallbacks *prometheus.CounterVec
	externalDuration prometheus.Histogram
	candidates       prometheus.Histogram
	scoreRequests    prometheus.Counter
	budgetChecks     *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec

	requestCount int64
	errorCount   int64
	rankCount    int64
	fallbacks    int64
}

// NewMetrics creates the collectors. They are not registered; call Register.
func NewMetrics() *Metrics {
	return &Metrics{
		rankingRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricRankingRequests,
			Help: "Completed rankings by score source",
		}, []string{"source"}),
		rankingFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricRankingFallbacks,
			Help: "Rankings that fell back to the heuristic, by reason",
		}, []string{"reason"}),
		externalDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    MetricExternalDuration,
			Help:    "Time spent attempting external ranking",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		candidates: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    MetricCandidates,
			Help:    "Normalized candidates per ranking",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 200},
		}),
		scoreRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricScoreRequests,
			Help: "Completed weighted factor scoring requests",
		}),
		budgetChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricBudgetChecks,
			Help: "External call budget checks by backend and outcome",
		}, []string{"backend", "outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricHTTPRequests,
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    MetricHTTPDuration,
			Help:    "HTTP request latency by method and route",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
}

// Register registers every collector with reg
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Collectors returns all Prometheus collectors
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.rankingRequests,
		m.rankingFallbacks,
		m.externalDuration,
		m.candidates,
		m.scoreRequests,
		m.budgetChecks,
		m.httpRequests,
		m.httpDuration,
	}
}

// ObserveRanking records the outcome of one ranking
func (m *Metrics) ObserveRanking(r *ranking.Ranking) {
	atomic.AddInt64(&m.rankCount, 1)
	m.rankingRequests.WithLabelValues(string(r.Source)).Inc()
	m.candidates.Observe(float64(len(r.Candidates)))
	m.externalDuration.Observe(r.ExternalDuration.Seconds())
	if r.FallbackReason != "" {
		atomic.AddInt64(&m.fallbacks, 1)
		m.rankingFallbacks.WithLabelValues(r.FallbackReason).Inc()
	}
}

// ObserveScoring records one weighted factor scoring request
func (m *Metrics) ObserveScoring() {
	m.scoreRequests.Inc()
}

// ObserveBudget records one call budget check
func (m *Metrics) ObserveBudget(backend string, allowed bool) {
	outcome := "allowed"
	if !allowed {
		outcome = "rejected"
	}
	m.budgetChecks.WithLabelValues(backend, outcome).Inc()
}

// ObserveHTTP records one served request
func (m *Metrics) ObserveHTTP(method, path string, status int, duration time.Duration) {
	atomic.AddInt64(&m.requestCount, 1)
	if status >= 400 {
		atomic.AddInt64(&m.errorCount, 1)
	}
	m.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// GetStats returns the summary shown on /health
func (m *Metrics) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"requests":       atomic.LoadInt64(&m.requestCount),
		"errors":         atomic.LoadInt64(&m.errorCount),
		"rankings":       atomic.LoadInt64(&m.rankCount),
		"fallbacks":      atomic.LoadInt64(&m.fallbacks),
		"uptime_seconds": int64(Uptime().Seconds()),
	}
}
