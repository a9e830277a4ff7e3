package ranking

import (
	"context"
	"errors"
	"fmt"
)

// Input errors. These are the only errors Rank returns.
var (
	ErrInvalidCriteria = errors.New("criteria must contain at least one numeric weight")
	ErrNoCandidates    = errors.New("at least one candidate is required")
	ErrInvalidFactors  = errors.New("invalid item factors")
)

// External ranking errors. Rank absorbs these into the heuristic fallback.
var (
	ErrServiceUnavailable = errors.New("external ranking service is not configured")
	ErrMalformedResponse  = errors.New("external ranking response is malformed")
)

// Fallback reasons reported on Ranking.FallbackReason and in metrics
const (
	FallbackReasonUnavailable = "service_unavailable"
	FallbackReasonRequest     = "request_failed"
	FallbackReasonMalformed   = "malformed_response"
	FallbackReasonCanceled    = "canceled"
	FallbackReasonTransport   = "transport"
)

// RequestFailedError reports a non-success status from the external service
type RequestFailedError struct {
	Status int
	Cause  error
}

func (e *RequestFailedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("external ranking request failed with status %d: %v", e.Status, e.Cause)
	}
	return fmt.Sprintf("external ranking request failed with status %d", e.Status)
}

func (e *RequestFailedError) Unwrap() error {
	return e.Cause
}

// FallbackReasoner is implemented by errors that name their own fallback reason,
// such as the circuit breaker and call budget decorators
type FallbackReasoner interface {
	FallbackReason() string
}

// IsInputError reports whether err is a caller input defect
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidCriteria) ||
		errors.Is(err, ErrNoCandidates) ||
		errors.Is(err, ErrInvalidFactors)
}

// ClassifyFailure maps an external ranking failure to a fallback reason
func ClassifyFailure(err error) string {
	var reasoner FallbackReasoner
	if errors.As(err, &reasoner) {
		return reasoner.FallbackReason()
	}

	var reqErr *RequestFailedError
	switch {
	case errors.Is(err, ErrServiceUnavailable):
		return FallbackReasonUnavailable
	case errors.As(err, &reqErr):
		return FallbackReasonRequest
	case errors.Is(err, ErrMalformedResponse):
		return FallbackReasonMalformed
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return FallbackReasonCanceled
	default:
		return FallbackReasonTransport
	}
}
