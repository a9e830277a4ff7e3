package resilience

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// CircuitBreakerState represents the state of the circuit breaker
type CircuitBreakerState int32

const (
	StateClosed CircuitBreakerState = iota
	StateOpen
	StateHalfOpen
)

func (s CircuitBreakerState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// FallbackReasonCircuitOpen is reported when the breaker rejects a call
const FallbackReasonCircuitOpen = "circuit_open"

// CircuitBreakerConfig holds configuration for the circuit breaker
type CircuitBreakerConfig struct {
	FailureThreshold int           `json:"failure_threshold"` // consecutive failures before opening
	RecoveryTimeout  time.Duration `json:"recovery_timeout"`  // wait before a half-open trial call
	SuccessThreshold int           `json:"success_threshold"` // trial successes needed to close

	// OnStateChange is called outside the lock after every transition
	OnStateChange func(from, to CircuitBreakerState)
}

// CircuitBreaker guards calls to the external ranking service. Caller
// cancellation is not counted as a failure.
type CircuitBreaker struct {
	config CircuitBreakerConfig
	now    func() time.Time

	mu            sync.Mutex
	state         CircuitBreakerState
	failures      int
	successes     int
	trialInFlight bool
	nextAttempt   time.Time
}

// NewCircuitBreaker creates a new circuit breaker, filling in defaults
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = 5
	}
	if config.RecoveryTimeout <= 0 {
		config.RecoveryTimeout = 30 * time.Second
	}
	if config.SuccessThreshold <= 0 {
		config.SuccessThreshold = 1
	}

	return &CircuitBreaker{
		config: config,
		now:    time.Now,
		state:  StateClosed,
	}
}

// Call executes fn with circuit breaker protection. A panic in fn is recorded
// as a failure and then re-raised.
func (cb *CircuitBreaker) Call(fn func() error) error {
	if err := cb.acquire(); err != nil {
		return err
	}

	recorded := false
	defer func() {
		if recorded {
			return
		}
		p := recover()
		if p == nil {
			// runtime.Goexit
			cb.record(errors.New("circuit breaker call did not return"))
			return
		}
		cb.record(fmt.Errorf("circuit breaker call panicked: %v", p))
		panic(p)
	}()

	err := fn()
	recorded = true
	cb.record(err)
	return err
}

// acquire admits a call or rejects it while open. In half-open state only one
// trial call is in flight at a time.
func (cb *CircuitBreaker) acquire() error {
	cb.mu.Lock()
	from := cb.state

	switch cb.state {
	case StateOpen:
		if cb.now().Before(cb.nextAttempt) {
			cb.mu.Unlock()
			return NewCircuitBreakerError("circuit breaker is open", StateOpen)
		}
		cb.state = StateHalfOpen
		cb.successes = 0
		cb.trialInFlight = true
	case StateHalfOpen:
		if cb.trialInFlight {
			cb.mu.Unlock()
			return NewCircuitBreakerError("circuit breaker trial call in flight", StateHalfOpen)
		}
		cb.trialInFlight = true
	}

	to := cb.state
	cb.mu.Unlock()
	cb.notify(from, to)
	return nil
}

func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	from := cb.state
	cb.trialInFlight = false

	switch {
	case err == nil:
		cb.failures = 0
		if cb.state == StateHalfOpen {
			cb.successes++
			if cb.successes >= cb.config.SuccessThreshold {
				cb.state = StateClosed
			}
		}
	case errors.Is(err, context.Canceled):
		// the caller gave up; says nothing about the service
	default:
		cb.failures++
		cb.successes = 0
		if cb.state == StateHalfOpen || cb.failures >= cb.config.FailureThreshold {
			cb.state = StateOpen
			cb.nextAttempt = cb.now().Add(cb.config.RecoveryTimeout)
		}
	}

	to := cb.state
	cb.mu.Unlock()
	cb.notify(from, to)
}

func (cb *CircuitBreaker) notify(from, to CircuitBreakerState) {
	if from != to && cb.config.OnStateChange != nil {
		cb.config.OnStateChange(from, to)
	}
}

// State returns the current state of the circuit breaker
func (cb *CircuitBreaker) State() CircuitBreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Failures returns the current consecutive failure count
func (cb *CircuitBreaker) Failures() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.failures
}

// Reset resets the circuit breaker to closed state
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	from := cb.state
	cb.state = StateClosed
	cb.failures = 0
	cb.successes = 0
	cb.trialInFlight = false
	cb.mu.Unlock()
	cb.notify(from, StateClosed)
}

// GetStats returns the breaker state for /health
func (cb *CircuitBreaker) GetStats() map[string]interface{} {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return map[string]interface{}{
		"state":    cb.state.String(),
		"failures": cb.failures,
	}
}

// CircuitBreakerError represents an error from the circuit breaker
type CircuitBreakerError struct {
	Message string
	State   CircuitBreakerState
}

func (e *CircuitBreakerError) Error() string {
	return e.Message
}

// FallbackReason names the heuristic fallback caused by a rejected call
func (e *CircuitBreakerError) FallbackReason() string {
	return FallbackReasonCircuitOpen
}

// NewCircuitBreakerError creates a new circuit breaker error
func NewCircuitBreakerError(message string, state CircuitBreakerState) *CircuitBreakerError {
	return &CircuitBreakerError{
		Message: message,
		State:   state,
	}
}
