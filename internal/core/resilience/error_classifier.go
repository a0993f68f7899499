package resilience

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"
)

// ClassifyError buckets an error into a short label for metrics (C4's
// per-error-type counters). GatewayError values classify by Kind; everything
// else falls back to inspecting the underlying network/context error.
func ClassifyError(err error) string {
	if err == nil {
		return "none"
	}

	var gerr *GatewayError
	if errors.As(err, &gerr) {
		return string(gerr.Kind)
	}

	if errors.Is(err, context.Canceled) {
		return "context_cancelled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "context_deadline"
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return "dns"
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if errors.Is(opErr.Err, syscall.ECONNREFUSED) ||
			errors.Is(opErr.Err, syscall.ECONNRESET) ||
			errors.Is(opErr.Err, syscall.ENETUNREACH) ||
			errors.Is(opErr.Err, syscall.EHOSTUNREACH) {
			return "network"
		}
		return "network"
	}

	errMsg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errMsg, "rate limit") || strings.Contains(errMsg, "too many requests") || strings.Contains(errMsg, "429"):
		return "rate_limit"
	case strings.Contains(errMsg, "timeout") || strings.Contains(errMsg, "deadline exceeded") || strings.Contains(errMsg, "timed out"):
		return "timeout"
	case strings.Contains(errMsg, "connection") || strings.Contains(errMsg, "network"):
		return "network"
	default:
		return "unknown"
	}
}
