// Package middleware holds the Gateway's HTTP middleware chain: request id
// propagation, structured access logging, CORS, rate limiting, and tenant
// header extraction.
package middleware

type contextKey string

const (
	// RequestIDContextKey is the context key for the request id.
	RequestIDContextKey contextKey = "request_id"

	// TenantContextKey is the context key for the X-Tenant-Id header value.
	TenantContextKey contextKey = "tenant_id"
)

const (
	// RequestIDHeader is the header name clients may set, and that every
	// response echoes back.
	RequestIDHeader = "X-Request-ID"

	// TenantHeader is the app-tenant identity header required on every
	// tenant-scoped route (spec §6).
	TenantHeader = "X-Tenant-Id"

	RateLimitLimitHeader     = "X-RateLimit-Limit"
	RateLimitRemainingHeader = "X-RateLimit-Remaining"
	RateLimitResetHeader     = "X-RateLimit-Reset"
)
