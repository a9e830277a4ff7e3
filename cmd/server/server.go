package main

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/ZanzyTHEbar/criteria-ranker/internal/config"
	"github.com/ZanzyTHEbar/criteria-ranker/internal/monitoring"
	"github.com/ZanzyTHEbar/criteria-ranker/internal/ranking"
	"github.com/ZanzyTHEbar/criteria-ranker/internal/ratelimit"
	"github.com/ZanzyTHEbar/criteria-ranker/internal/resilience"
)

// serviceStatus describes the external ranking service for GET /rank
type serviceStatus interface {
	Configured() bool
	Model() string
}

// server owns everything the HTTP handlers share
type server struct {
	cfg      *config.Config
	logger   *monitoring.Logger
	metrics  *monitoring.Metrics
	registry *prometheus.Registry
	ranker   *ranking.Ranker
	status   serviceStatus
	breaker  *resilience.CircuitBreaker
	limiter  *ratelimit.RateLimiter
}

// newServer wraps factory with the circuit breaker and then the call budget,
// so budget rejections never count as breaker failures. redisClient may be nil.
func newServer(cfg *config.Config, logger *monitoring.Logger, status serviceStatus, factory ranking.ClientFactory, redisClient *ratelimit.RedisClient) (*server, error) {
	registry := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics()
	if err := metrics.Register(registry); err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}
	if err := registry.Register(collectors.NewGoCollector()); err != nil {
		return nil, fmt.Errorf("register go collector: %w", err)
	}

	limiter := ratelimit.NewRateLimiter(redisClient, ratelimit.DefaultConfig(), metrics)

	breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		FailureThreshold: cfg.BreakerFailureThreshold,
		RecoveryTimeout:  cfg.BreakerRecoveryTimeout,
		OnStateChange: func(from, to resilience.CircuitBreakerState) {
			logger.Warn("Circuit breaker state changed", "from", from.String(), "to", to.String())
		},
	})

	guarded := ratelimit.GuardFactory(limiter, ratelimit.PerMinute(cfg.LLMCallsPerMinute),
		resilience.GuardFactory(breaker, factory))

	ranker := ranking.NewRanker(guarded,
		ranking.WithNormalizer(ranking.NewNormalizer(cfg.MaxCandidates, cfg.CandidateDelimiters)),
		ranking.WithLogger(logger.Logger),
	)

	return &server{
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics,
		registry: registry,
		ranker:   ranker,
		status:   status,
		breaker:  breaker,
		limiter:  limiter,
	}, nil
}

// requestTimeout bounds a ranking request: the external call plus scoring slack
func (s *server) requestTimeout() time.Duration {
	return s.cfg.OpenAITimeout + 5*time.Second
}

// Close stops background work
func (s *server) Close() {
	s.limiter.Close()
}
