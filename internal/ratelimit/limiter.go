package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"golang.org/x/time/rate"
)

// Backend names reported to the recorder
const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config holds rate limiter configuration
type Config struct {
	// BurstMultiplier scales the in-memory bucket size; 1 keeps it equal to the limit
	BurstMultiplier int
	CleanupInterval time.Duration
	KeyPrefix       string
}

// DefaultConfig returns default rate limiting configuration
func DefaultConfig() Config {
	return Config{
		BurstMultiplier: 1,
		CleanupInterval: time.Hour,
		KeyPrefix:       "ranker:budget:",
	}
}

// Rate is a number of events allowed per period
type Rate struct {
	Limit  int
	Period time.Duration
}

// PerMinute builds a Rate of n per minute
func PerMinute(n int) Rate {
	return Rate{Limit: n, Period: time.Minute}
}

// Result represents the result of a rate limit check
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
	Backend    string
}

// Recorder receives one observation per check
type Recorder interface {
	ObserveBudget(backend string, allowed bool)
}

// RateLimiter counts events against a shared Redis window when available and
// an in-memory token bucket otherwise
type RateLimiter struct {
	redisLimiter *redis_rate.Limiter
	redisClient  *RedisClient
	config       Config
	recorder     Recorder

	fallbackLimiters map[string]*rate.Limiter
	fallbackMutex    sync.Mutex

	stop     chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter creates a rate limiter. redisClient may be nil or disabled.
func NewRateLimiter(redisClient *RedisClient, config Config, recorder Recorder) *RateLimiter {
	defaults := DefaultConfig()
	if config.BurstMultiplier <= 0 {
		config.BurstMultiplier = defaults.BurstMultiplier
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = defaults.CleanupInterval
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = defaults.KeyPrefix
	}

	rl := &RateLimiter{
		redisClient:      redisClient,
		config:           config,
		recorder:         recorder,
		fallbackLimiters: make(map[string]*rate.Limiter),
		stop:             make(chan struct{}),
	}

	if redisClient.IsEnabled() {
		rl.redisLimiter = redis_rate.NewLimiter(redisClient.GetClient())
		slog.Info("Redis call budget initialized")
	} else {
		slog.Info("Using in-memory call budget")
	}

	go rl.cleanupFallbackLimiters()

	return rl
}

// Allow consumes one event for key. Redis failures fall back to memory.
func (rl *RateLimiter) Allow(ctx context.Context, key string, r Rate) (*Result, error) {
	if r.Limit <= 0 || r.Period <= 0 {
		return nil, fmt.Errorf("invalid rate %d/%s", r.Limit, r.Period)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fullKey := rl.config.KeyPrefix + key
	var (
		result *Result
		err    error
	)
	if rl.redisLimiter != nil {
		result, err = rl.allowRedis(ctx, fullKey, r)
		if err != nil {
			slog.Warn("Redis budget check failed, using memory", "key", fullKey, "error", err)
			result = rl.allowFallback(fullKey, r)
		}
	} else {
		result = rl.allowFallback(fullKey, r)
	}

	if rl.recorder != nil {
		rl.recorder.ObserveBudget(result.Backend, result.Allowed)
	}
	return result, nil
}

func (rl *RateLimiter) allowRedis(ctx context.Context, key string, r Rate) (*Result, error) {
	res, err := rl.redisLimiter.Allow(ctx, key, redis_rate.Limit{
		Rate:   r.Limit,
		Burst:  r.Limit,
		Period: r.Period,
	})
	if err != nil {
		return nil, fmt.Errorf("redis rate limit check failed: %w", err)
	}

	return &Result{
		Allowed:    res.Allowed > 0,
		Limit:      res.Limit.Rate,
		Remaining:  res.Remaining,
		ResetAt:    time.Now().Add(res.ResetAfter),
		RetryAfter: max(res.RetryAfter, 0),
		Backend:    BackendRedis,
	}, nil
}

func (rl *RateLimiter) allowFallback(key string, r Rate) *Result {
	rl.fallbackMutex.Lock()
	limiter, exists := rl.fallbackLimiters[key]
	if !exists {
		every := rate.Limit(float64(r.Limit) / r.Period.Seconds())
		limiter = rate.NewLimiter(every, r.Limit*rl.config.BurstMultiplier)
		rl.fallbackLimiters[key] = limiter
	}
	rl.fallbackMutex.Unlock()

	now := time.Now()
	allowed := limiter.AllowN(now, 1)
	remaining := int(limiter.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}

	result := &Result{
		Allowed:   allowed,
		Limit:     r.Limit,
		Remaining: remaining,
		ResetAt:   now.Add(r.Period),
		Backend:   BackendMemory,
	}
	if !allowed {
		// time for one token to refill
		result.RetryAfter = time.Duration(float64(time.Second) / float64(limiter.Limit()))
	}
	return result
}

// Reset forgets the count for key
func (rl *RateLimiter) Reset(ctx context.Context, key string) error {
	fullKey := rl.config.KeyPrefix + key

	rl.fallbackMutex.Lock()
	delete(rl.fallbackLimiters, fullKey)
	rl.fallbackMutex.Unlock()

	if rl.redisLimiter != nil {
		return rl.redisLimiter.Reset(ctx, fullKey)
	}
	return nil
}

func (rl *RateLimiter) cleanupFallbackLimiters() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.fallbackMutex.Lock()
			if len(rl.fallbackLimiters) > 1000 {
				slog.Info("Cleaning up in-memory budgets", "count", len(rl.fallbackLimiters))
				rl.fallbackLimiters = make(map[string]*rate.Limiter)
			}
			rl.fallbackMutex.Unlock()
		}
	}
}

// Close stops the cleanup goroutine. The Redis client is owned by the caller.
func (rl *RateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// GetStats returns rate limiter statistics
func (rl *RateLimiter) GetStats() map[string]interface{} {
	rl.fallbackMutex.Lock()
	fallbackCount := len(rl.fallbackLimiters)
	rl.fallbackMutex.Unlock()

	stats := map[string]interface{}{
		"redis_enabled":     rl.redisClient.IsEnabled(),
		"fallback_limiters": fallbackCount,
	}
	if rl.redisClient.IsEnabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()
		stats["redis_healthy"] = rl.redisClient.HealthCheck(ctx) == nil
		stats["redis_pool"] = rl.redisClient.GetPoolStats()
	}
	return stats
}
