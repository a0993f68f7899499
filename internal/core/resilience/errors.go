package resilience

import (
	"errors"
	"net"
	"strings"
	"syscall"
)

// Kind classifies a GatewayError so the API layer can map it to an HTTP
// status and so WithRetry/the circuit breaker can decide whether it is worth
// another attempt (spec §7).
type Kind string

const (
	KindUnauthorized Kind = "unauthorized"
	KindNotFound     Kind = "not_found"
	KindValidation   Kind = "validation"
	KindUnavailable  Kind = "unavailable"
	KindUpstream     Kind = "upstream"
	KindInternal     Kind = "internal"
)

// GatewayError is the typed error every Inventory-facing operation returns.
// Only KindUpstream and KindUnavailable are retryable; the rest reflect a
// caller or configuration mistake that retrying cannot fix.
type GatewayError struct {
	Kind       Kind
	Message    string
	StatusCode int // upstream HTTP status, 0 if not applicable
	Err        error
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// NewGatewayError constructs a GatewayError of the given kind.
func NewGatewayError(kind Kind, message string, err error) *GatewayError {
	return &GatewayError{Kind: kind, Message: message, Err: err}
}

// IsRetryableKind reports whether errors of this kind should be retried.
func (k Kind) IsRetryableKind() bool {
	return k == KindUpstream || k == KindUnavailable
}

// Common retry/breaker sentinel errors.
var (
	// ErrMaxRetriesExceeded is wrapped into the final error once all
	// attempts are exhausted.
	ErrMaxRetriesExceeded = errors.New("maximum retry attempts exceeded")

	// ErrCircuitOpen names an open-breaker rejection. CircuitBreaker reports
	// rejection through Allow returning false, and the Resilient Client
	// surfaces it as a KindUnavailable GatewayError; neither returns this
	// value.
	ErrCircuitOpen = errors.New("circuit breaker is open")
)

// DefaultErrorChecker classifies plain Go errors as retryable unless they
// report Temporary() == false: transient network and timeout errors are
// retryable, and so is any other error without Kind information.
// GatewayError values are classified by Kind first; DefaultErrorChecker only
// inspects the underlying error when no Kind information is present.
type DefaultErrorChecker struct{}

// IsRetryable implements RetryableErrorChecker.
func (c *DefaultErrorChecker) IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var gerr *GatewayError
	if errors.As(err, &gerr) {
		return gerr.Kind.IsRetryableKind()
	}

	if isTransientNetworkError(err) {
		return true
	}
	if isTimeoutError(err) {
		return true
	}

	type temporary interface {
		Temporary() bool
	}
	if te, ok := err.(temporary); ok {
		return te.Temporary()
	}

	return true
}

// isTransientNetworkError determines if a network error is transient.
func isTransientNetworkError(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.Temporary()
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if errors.Is(opErr.Err, syscall.ECONNREFUSED) ||
			errors.Is(opErr.Err, syscall.ECONNRESET) ||
			errors.Is(opErr.Err, syscall.ENETUNREACH) ||
			errors.Is(opErr.Err, syscall.EHOSTUNREACH) {
			return true
		}
		return true
	}

	return false
}

// isTimeoutError checks if an error represents a timeout.
func isTimeoutError(err error) bool {
	errMsg := strings.ToLower(err.Error())
	for _, indicator := range []string{"timeout", "deadline exceeded", "timed out", "i/o timeout"} {
		if strings.Contains(errMsg, indicator) {
			return true
		}
	}

	type timeout interface {
		Timeout() bool
	}
	if te, ok := err.(timeout); ok {
		return te.Timeout()
	}

	return false
}

// ChainedErrorChecker returns true if any of its checkers does.
type ChainedErrorChecker struct {
	Checkers []RetryableErrorChecker
}

func (c *ChainedErrorChecker) IsRetryable(err error) bool {
	for _, checker := range c.Checkers {
		if checker.IsRetryable(err) {
			return true
		}
	}
	return false
}

// NeverRetryChecker always returns false.
type NeverRetryChecker struct{}

func (c *NeverRetryChecker) IsRetryable(err error) bool { return false }
