package resilience

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/criteria-ranker/internal/ranking"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestBreaker(threshold int, recovery time.Duration) (*CircuitBreaker, *fakeClock) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: threshold, RecoveryTimeout: recovery})
	cb.now = clock.Now
	return cb, clock
}

var errBoom = errors.New("boom")

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb, _ := newTestBreaker(3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, cb.Call(func() error { return errBoom }), errBoom)
	}
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Call(func() error { called = true; return nil })
	assert.False(t, called)

	var cbErr *CircuitBreakerError
	require.ErrorAs(t, err, &cbErr)
	assert.Equal(t, FallbackReasonCircuitOpen, ranking.ClassifyFailure(err))
}

func TestCircuitBreaker_SuccessResetsFailures(t *testing.T) {
	cb, _ := newTestBreaker(2, time.Minute)

	_ = cb.Call(func() error { return errBoom })
	require.NoError(t, cb.Call(func() error { return nil }))
	_ = cb.Call(func() error { return errBoom })

	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, 1, cb.Failures())
}

func TestCircuitBreaker_HalfOpenTrialCall(t *testing.T) {
	cb, clock := newTestBreaker(1, 10*time.Second)

	_ = cb.Call(func() error { return errBoom })
	require.Equal(t, StateOpen, cb.State())

	clock.Advance(11 * time.Second)
	require.NoError(t, cb.Call(func() error { return nil }))
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_FailedTrialReopens(t *testing.T) {
	cb, clock := newTestBreaker(1, 10*time.Second)

	_ = cb.Call(func() error { return errBoom })
	clock.Advance(11 * time.Second)
	_ = cb.Call(func() error { return errBoom })

	assert.Equal(t, StateOpen, cb.State())
	assert.Error(t, cb.Call(func() error { return nil }))
}

func TestCircuitBreaker_OneTrialAtATime(t *testing.T) {
	cb, clock := newTestBreaker(1, time.Second)
	_ = cb.Call(func() error { return errBoom })
	clock.Advance(2 * time.Second)

	var second error
	_ = cb.Call(func() error {
		second = cb.Call(func() error { return nil })
		return nil
	})

	var cbErr *CircuitBreakerError
	require.ErrorAs(t, second, &cbErr)
	assert.Equal(t, StateHalfOpen, cbErr.State)
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_PanickingTrialReopens(t *testing.T) {
	cb, clock := newTestBreaker(1, 10*time.Second)

	_ = cb.Call(func() error { return errBoom })
	clock.Advance(11 * time.Second)

	assert.PanicsWithValue(t, "driver bug", func() {
		_ = cb.Call(func() error { panic("driver bug") })
	})
	assert.Equal(t, StateOpen, cb.State())

	var cbErr *CircuitBreakerError
	require.ErrorAs(t, cb.Call(func() error { return nil }), &cbErr)
	assert.Equal(t, StateOpen, cbErr.State)

	clock.Advance(11 * time.Second)
	require.NoError(t, cb.Call(func() error { return nil }))
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_PanicCountsAsFailure(t *testing.T) {
	cb, _ := newTestBreaker(2, time.Minute)

	assert.Panics(t, func() {
		_ = cb.Call(func() error { panic("boom") })
	})
	assert.Equal(t, 1, cb.Failures())
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_IgnoresCallerCancellation(t *testing.T) {
	cb, _ := newTestBreaker(1, time.Minute)

	_ = cb.Call(func() error { return context.Canceled })
	assert.Equal(t, StateClosed, cb.State())
	assert.Zero(t, cb.Failures())
}

func TestCircuitBreaker_StateChangeHook(t *testing.T) {
	var transitions []string
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 1,
		OnStateChange: func(from, to CircuitBreakerState) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})

	_ = cb.Call(func() error { return errBoom })
	cb.Reset()

	assert.Equal(t, []string{"closed->open", "open->closed"}, transitions)
	assert.Equal(t, "closed", cb.GetStats()["state"])
}

type stubRanker struct {
	results []ranking.Result
	err     error
	calls   int
}

func (s *stubRanker) RequestRanking(context.Context, ranking.Criteria, []string) ([]ranking.Result, error) {
	s.calls++
	return s.results, s.err
}

func TestGuardFactory(t *testing.T) {
	cb, _ := newTestBreaker(2, time.Minute)
	stub := &stubRanker{err: errBoom}
	factory := GuardFactory(cb, func() (ranking.ExternalRanker, error) { return stub, nil })

	r := ranking.NewRanker(factory)
	for i := 0; i < 3; i++ {
		got, err := r.Rank(context.Background(), ranking.Criteria{"w": 1}, []string{"A"})
		require.NoError(t, err)
		assert.Equal(t, ranking.SourceHeuristic, got.Source)
		if i < 2 {
			assert.Equal(t, ranking.FallbackReasonTransport, got.FallbackReason)
		} else {
			assert.Equal(t, FallbackReasonCircuitOpen, got.FallbackReason)
		}
	}
	assert.Equal(t, 2, stub.calls)
}

func TestGuardFactory_PassesFactoryErrors(t *testing.T) {
	cb, _ := newTestBreaker(1, time.Minute)
	factory := GuardFactory(cb, func() (ranking.ExternalRanker, error) { return nil, ranking.ErrServiceUnavailable })

	for i := 0; i < 3; i++ {
		_, err := factory()
		assert.ErrorIs(t, err, ranking.ErrServiceUnavailable)
	}
	assert.Equal(t, StateClosed, cb.State())
}

func TestGuardRanker_Success(t *testing.T) {
	cb, _ := newTestBreaker(1, time.Minute)
	stub := &stubRanker{results: []ranking.Result{{Candidate: "A", Score: 10}}}

	got, err := NewGuardRanker(cb, stub).RequestRanking(context.Background(), nil, []string{"A"})
	require.NoError(t, err)
	assert.Equal(t, stub.results, got)
}

func TestNewHTTPClient(t *testing.T) {
	c := NewHTTPClient(HTTPClientConfig{Timeout: 3 * time.Second})
	assert.Equal(t, 3*time.Second, c.Timeout)
	assert.NotNil(t, c.Transport)
}
