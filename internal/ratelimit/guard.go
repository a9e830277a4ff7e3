package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ZanzyTHEbar/criteria-ranker/internal/ranking"
)

// FallbackReasonRateLimited is reported when the call budget is spent
const FallbackReasonRateLimited = "rate_limited"

// BudgetKey is the single shared key for outbound ranking calls
const BudgetKey = "llm"

// BudgetExceededError is returned instead of calling the external service
type BudgetExceededError struct {
	Limit      int
	RetryAfter time.Duration
}

func (e *BudgetExceededError) Error() string {
	return fmt.Sprintf("external ranking budget of %d calls exhausted, retry after %s", e.Limit, e.RetryAfter)
}

// FallbackReason names the heuristic fallback caused by the budget
func (e *BudgetExceededError) FallbackReason() string {
	return FallbackReasonRateLimited
}

// GuardFactory spends one unit of budget per external call made by clients
// built by next. A limiter failure lets the call through.
func GuardFactory(rl *RateLimiter, r Rate, next ranking.ClientFactory) ranking.ClientFactory {
	if rl == nil || next == nil || r.Limit <= 0 {
		return next
	}
	return func() (ranking.ExternalRanker, error) {
		client, err := next()
		if err != nil || client == nil {
			return client, err
		}
		return &GuardRanker{limiter: rl, rate: r, next: client}, nil
	}
}

// GuardRanker checks the budget before each external ranking call
type GuardRanker struct {
	limiter *RateLimiter
	rate    Rate
	next    ranking.ExternalRanker
}

// RequestRanking implements ranking.ExternalRanker
func (g *GuardRanker) RequestRanking(ctx context.Context, criteria ranking.Criteria, candidates []string) ([]ranking.Result, error) {
	res, err := g.limiter.Allow(ctx, BudgetKey, g.rate)
	switch {
	case err != nil && ctx.Err() != nil:
		return nil, ctx.Err()
	case err != nil:
		slog.Warn("Call budget check failed, allowing call", "error", err)
	case !res.Allowed:
		return nil, &BudgetExceededError{Limit: res.Limit, RetryAfter: res.RetryAfter}
	}
	return g.next.RequestRanking(ctx, criteria, candidates)
}
