// Package errors is the outer HTTP error envelope: it maps the Gateway's
// internal resilience.Kind taxonomy onto JSON responses and status codes
// (spec §7's user-visible mapping).
package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/vitaliisemenov/netgate/internal/core/resilience"
)

// Code is the wire-visible error code, distinct from resilience.Kind so the
// HTTP contract doesn't leak internal naming.
type Code string

const (
	CodeValidation   Code = "VALIDATION_ERROR"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeNotFound     Code = "NOT_FOUND"
	CodeUnavailable  Code = "UNAVAILABLE"
	CodeUpstream     Code = "UPSTREAM_ERROR"
	CodeInternal     Code = "INTERNAL_ERROR"
	CodeRateLimited  Code = "RATE_LIMIT_EXCEEDED"
)

// APIError is the JSON body returned to clients on failure.
type APIError struct {
	Code      Code   `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Timestamp string `json:"timestamp"`
}

// ErrorResponse wraps APIError as the top-level JSON envelope.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// NewAPIError constructs an APIError stamped with the current time.
func NewAPIError(code Code, message string) *APIError {
	return &APIError{Code: code, Message: message, Timestamp: time.Now().UTC().Format(time.RFC3339)}
}

// WithRequestID attaches a request id and returns the receiver for
// chaining.
func (e *APIError) WithRequestID(requestID string) *APIError {
	e.RequestID = requestID
	return e
}

// StatusCode maps an APIError's code to an HTTP status per spec §7.
func (e *APIError) StatusCode() int {
	switch e.Code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeUnavailable, CodeUpstream, CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func (e *APIError) Error() string {
	return string(e.Code) + ": " + e.Message
}

// WriteError writes err as a JSON envelope with the matching status code.
func WriteError(w http.ResponseWriter, err *APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode())
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: *err})
}

// FromGatewayError maps a resilience.GatewayError (or any error, via
// errors.As) to the APIError the HTTP layer returns. Errors that are not
// a GatewayError are treated as internal.
func FromGatewayError(err error) *APIError {
	var gerr *resilience.GatewayError
	if errors.As(err, &gerr) {
		switch gerr.Kind {
		case resilience.KindValidation:
			return NewAPIError(CodeValidation, gerr.Message)
		case resilience.KindUnauthorized:
			return NewAPIError(CodeUnauthorized, gerr.Message)
		case resilience.KindNotFound:
			return NewAPIError(CodeNotFound, gerr.Message)
		case resilience.KindUnavailable:
			return NewAPIError(CodeUnavailable, gerr.Message)
		case resilience.KindUpstream:
			return NewAPIError(CodeUpstream, gerr.Message)
		default:
			return NewAPIError(CodeInternal, gerr.Message)
		}
	}
	return NewAPIError(CodeInternal, err.Error())
}
