package resilience

import (
	"context"

	"github.com/ZanzyTHEbar/criteria-ranker/internal/ranking"
)

// GuardFactory wraps every client built by next with the breaker. Factory
// errors such as an unconfigured service pass through untouched.
func GuardFactory(cb *CircuitBreaker, next ranking.ClientFactory) ranking.ClientFactory {
	if cb == nil || next == nil {
		return next
	}
	return func() (ranking.ExternalRanker, error) {
		client, err := next()
		if err != nil || client == nil {
			return client, err
		}
		return &GuardRanker{breaker: cb, next: client}, nil
	}
}

// GuardRanker runs each external ranking call through a circuit breaker
type GuardRanker struct {
	breaker *CircuitBreaker
	next    ranking.ExternalRanker
}

// NewGuardRanker wraps a single client
func NewGuardRanker(cb *CircuitBreaker, next ranking.ExternalRanker) *GuardRanker {
	return &GuardRanker{breaker: cb, next: next}
}

// RequestRanking implements ranking.ExternalRanker
func (g *GuardRanker) RequestRanking(ctx context.Context, criteria ranking.Criteria, candidates []string) ([]ranking.Result, error) {
	var results []ranking.Result
	err := g.breaker.Call(func() error {
		var err error
		results, err = g.next.RequestRanking(ctx, criteria, candidates)
		return err
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}
