package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitaliisemenov/netgate/internal/core/domain"
)

func newTestRouter(t *testing.T, upstream http.HandlerFunc) http.Handler {
	t.Helper()
	h, _ := newTestStack(t, upstream)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(h, DefaultRouterConfig(logger))
}

func TestRouterHealthAndMetricsNeedNoTenantHeader(t *testing.T) {
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(domain.SiteListPage{})
	})

	for _, path := range []string{"/health", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.NotEqual(t, http.StatusUnauthorized, rec.Code, "path %s should not require a tenant header", path)
	}
}

func TestRouterOrdersRouteRequiresTenantHeader(t *testing.T) {
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("upstream should not be called without a tenant header")
	})

	req := httptest.NewRequest(http.MethodPost, "/orders/site", strings.NewReader(`{"name":"Site A"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouterFullRoundTripCreatesOrder(t *testing.T) {
	id := 7
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		var req domain.CreateSiteRequest
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(domain.Site{ID: &id, Name: req.Name, Tenant: req.Tenant})
	})

	req := httptest.NewRequest(http.MethodPost, "/orders/site", strings.NewReader(`{"name":"Site A"}`))
	req.Header.Set("X-Tenant-Id", "t1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var body createSiteOrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "t1", body.TenantID)
}

func TestRouterRateLimitsExcessiveRequests(t *testing.T) {
	h, _ := newTestStack(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(domain.SiteListPage{})
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	config := DefaultRouterConfig(logger)
	config.RateLimitPerMinute = 60
	config.RateLimitBurst = 2
	router := NewRouter(h, config)

	var lastCode int
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		lastCode = rec.Code
	}
	assert.Equal(t, http.StatusTooManyRequests, lastCode)
}
