// Package api assembles the Gateway's thin outer HTTP shell (spec §6):
// the middleware chain plus one handler per external interface, dispatching
// into the core components wired by cmd/gateway.
package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vitaliisemenov/netgate/internal/api/middleware"
)

// RouterConfig controls which cross-cutting middleware the router installs.
type RouterConfig struct {
	Logger             *slog.Logger
	CORSConfig         middleware.CORSConfig
	RateLimitPerMinute int
	RateLimitBurst     int
	EnableRateLimit    bool
	EnableCORS         bool
}

// DefaultRouterConfig mirrors the Gateway's default posture: CORS and rate
// limiting both on, 120 requests/minute with a burst of 20.
func DefaultRouterConfig(logger *slog.Logger) RouterConfig {
	return RouterConfig{
		Logger:             logger,
		CORSConfig:         middleware.DefaultCORSConfig(),
		RateLimitPerMinute: 120,
		RateLimitBurst:     20,
		EnableRateLimit:    true,
		EnableCORS:         true,
	}
}

// NewRouter builds the full route table. Global middleware runs in the
// order: RequestID, Logging, CORS, RateLimit; RequireTenant applies only
// to the routes spec §6 lists a tenant header for.
func NewRouter(h *Handlers, config RouterConfig) *mux.Router {
	router := mux.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logging(config.Logger))
	if config.EnableCORS {
		router.Use(middleware.CORS(config.CORSConfig))
	}
	if config.EnableRateLimit {
		router.Use(middleware.RateLimit(config.RateLimitPerMinute, config.RateLimitBurst))
	}

	router.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	router.HandleFunc("/metrics", h.Metrics).Methods(http.MethodGet)

	tenanted := router.NewRoute().Subrouter()
	tenanted.Use(middleware.RequireTenant)

	tenanted.HandleFunc("/orders/site", h.CreateSiteOrder).Methods(http.MethodPost)
	tenanted.HandleFunc("/orders/{id}/status", h.OrderStatus).Methods(http.MethodGet)
	tenanted.HandleFunc("/tenants/{tenant_id}/sites", h.ListTenantSites).Methods(http.MethodGet)

	return router
}
