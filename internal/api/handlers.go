package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	apierrors "github.com/vitaliisemenov/netgate/internal/api/errors"
	"github.com/vitaliisemenov/netgate/internal/api/middleware"
	"github.com/vitaliisemenov/netgate/internal/core/domain"
	"github.com/vitaliisemenov/netgate/internal/orders"
	"github.com/vitaliisemenov/netgate/internal/resilientclient"
	"github.com/vitaliisemenov/netgate/internal/tenant"
	"github.com/vitaliisemenov/netgate/internal/workflow"
	"github.com/vitaliisemenov/netgate/pkg/metrics"
)

// healthProbeTimeout is the per-call timeout for the upstream connectivity
// probe (spec §5: "default 2s for health probes").
const healthProbeTimeout = 2 * time.Second

const serviceName = "netgate"

// Version is the build version reported by /health. Overridden at link
// time; "dev" otherwise.
var Version = "dev"

type upstreamHealth struct {
	Connected      bool   `json:"connected"`
	ResponseTimeMs int64  `json:"response_time_ms"`
	Error          string `json:"error,omitempty"`
}

type breakerHealth struct {
	State        string `json:"state"`
	FailureCount int    `json:"failure_count"`
}

type healthResponse struct {
	Status    string          `json:"status"`
	Service   string          `json:"service"`
	Version   string          `json:"version"`
	Timestamp string          `json:"timestamp"`
	Upstream  *upstreamHealth `json:"upstream,omitempty"`
	Breaker   *breakerHealth  `json:"breaker,omitempty"`
}

// Handlers holds the process-global collaborators the HTTP surface dispatches
// to. Constructed once at startup (spec §5's "resource scoping") and shared
// by reference across every request.
type Handlers struct {
	resilient *resilientclient.Client
	orders    *orders.Service
	access    *tenant.Access
	workflows *workflow.Manager
	metrics   *metrics.Registry
}

// NewHandlers wires the collaborators behind the HTTP surface.
func NewHandlers(resilient *resilientclient.Client, orderSvc *orders.Service, access *tenant.Access, workflows *workflow.Manager, metricsReg *metrics.Registry) *Handlers {
	return &Handlers{
		resilient: resilient,
		orders:    orderSvc,
		access:    access,
		workflows: workflows,
		metrics:   metricsReg,
	}
}

// Health probes upstream connectivity with a short-lived ListSites(limit=1)
// call and reports circuit breaker state, degrading to 503 when either is
// unhealthy (grounded on the original health check: a connectivity probe
// under a bounded timeout plus the breaker's current state).
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:    "healthy",
		Service:   serviceName,
		Version:   Version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	degraded := false

	if h.resilient != nil && h.resilient.Configured() {
		ctx, cancel := context.WithTimeout(r.Context(), healthProbeTimeout)
		defer cancel()

		limit := 1
		start := time.Now()
		_, err := h.resilient.ListSites(ctx, domain.ListSitesQuery{Limit: &limit})
		elapsed := time.Since(start)

		up := &upstreamHealth{
			Connected:      err == nil,
			ResponseTimeMs: elapsed.Milliseconds(),
		}
		if err != nil {
			up.Error = err.Error()
			degraded = true
		}
		resp.Upstream = up

		state, failures := h.resilient.BreakerState()
		resp.Breaker = &breakerHealth{State: state, FailureCount: failures}
		if state == "open" {
			degraded = true
		}
	}

	status := http.StatusOK
	if degraded {
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, resp)
}

// Metrics reports the by-value counters snapshot (spec §6: "200 with
// counters snapshot").
func (h *Handlers) Metrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.metrics.Snapshot())
}

type createSiteOrderResponse struct {
	OrderID     string `json:"order_id"`
	TenantID    string `json:"tenant_id"`
	InventoryID *int   `json:"inventory_id,omitempty"`
	State       string `json:"state"`
	SiteName    string `json:"site_name"`
}

// CreateSiteOrder handles POST /orders/site.
func (h *Handlers) CreateSiteOrder(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	appTenant := middleware.TenantFromContext(r.Context())

	var order domain.SiteOrder
	if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
		apierrors.WriteError(w, apierrors.NewAPIError(apierrors.CodeValidation, "malformed JSON body").WithRequestID(requestID))
		return
	}

	result, err := h.orders.Submit(r.Context(), appTenant, "site", order)
	if err != nil {
		apierrors.WriteError(w, apierrors.FromGatewayError(err).WithRequestID(requestID))
		return
	}

	writeJSON(w, http.StatusCreated, createSiteOrderResponse{
		OrderID:     result.OrderID,
		TenantID:    result.TenantID,
		InventoryID: result.InventoryID,
		State:       string(result.State),
		SiteName:    order.Name,
	})
}

type orderStatusResponse struct {
	OrderID     string    `json:"order_id"`
	State       string    `json:"state"`
	InventoryID *int      `json:"inventory_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// OrderStatus handles GET /orders/{id}/status.
func (h *Handlers) OrderStatus(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	appTenant := middleware.TenantFromContext(r.Context())
	orderID := mux.Vars(r)["id"]

	entry, err := h.orders.Status(appTenant, orderID)
	if err != nil {
		apierrors.WriteError(w, apierrors.FromGatewayError(err).WithRequestID(requestID))
		return
	}

	writeJSON(w, http.StatusOK, orderStatusResponse{
		OrderID:     entry.OrderID,
		State:       string(entry.State),
		InventoryID: entry.InventoryID,
		CreatedAt:   entry.CreatedAt,
		UpdatedAt:   entry.UpdatedAt,
	})
}

// ListTenantSites handles GET /tenants/{tenant_id}/sites. The path tenant
// must equal the X-Tenant-Id header (spec §6); a mismatch is 401 rather
// than 404, so the API never confirms or denies another tenant's existence.
func (h *Handlers) ListTenantSites(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	appTenant := middleware.TenantFromContext(r.Context())
	pathTenant := mux.Vars(r)["tenant_id"]

	if pathTenant != appTenant {
		apierrors.WriteError(w, apierrors.NewAPIError(apierrors.CodeUnauthorized, "tenant header does not match path").WithRequestID(requestID))
		return
	}

	page, err := h.access.ListSites(r.Context(), appTenant, nil, nil)
	if err != nil {
		apierrors.WriteError(w, apierrors.FromGatewayError(err).WithRequestID(requestID))
		return
	}

	writeJSON(w, http.StatusOK, page)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
