// Package orders implements the Order Processor Registry (spec §4.C9): a
// plugin registry keyed by order-type string, plus the Order Service
// pipeline (§4.C11) that drives a processor through validate, transform,
// enrich and submit.
package orders

import (
	"context"

	"github.com/vitaliisemenov/netgate/internal/core/domain"
	"github.com/vitaliisemenov/netgate/internal/core/resilience"
)

// SubmitClient is the subset of the Tenant Access Layer a processor submits
// through. Only the operations a processor needs are exposed here, so a
// processor cannot reach across tenants or resource kinds it was not built
// for.
type SubmitClient interface {
	CreateSite(ctx context.Context, appTenant string, req domain.CreateSiteRequest) (domain.Site, error)
}

// Processor implements one order type's validate/transform/enrich/submit
// cycle. order is the raw JSON-decoded request body; resource is whatever
// the processor's submit step returns (a domain.Site today).
type Processor interface {
	// OrderType is this processor's registry key, e.g. "site".
	OrderType() string

	// Validate checks order against the constraints in §3 of the spec.
	// Returns a *resilience.GatewayError with KindValidation on failure.
	Validate(order interface{}) error

	// Transform builds the upstream request from order, scoping it to
	// mappedTenant.
	Transform(order interface{}, mappedTenant int) (interface{}, error)

	// EnrichRequest merges enrichment data into the transformed request
	// before submission.
	EnrichRequest(request interface{}, enrichment domain.Enrichment) interface{}

	// Submit sends the request through client and returns the created
	// resource.
	Submit(ctx context.Context, client SubmitClient, appTenant string, request interface{}) (interface{}, error)

	// EnrichResource applies post-creation enrichment to the submitted
	// resource before it is returned to the caller.
	EnrichResource(resource interface{}, enrichment domain.Enrichment) interface{}
}

// Registry is the order-type -> Processor map. It holds no lock: Register
// happens only at startup wiring, before requests arrive, and Get happens
// on every request.
type Registry struct {
	processors  map[string]Processor
	defaultType string
}

// NewRegistry returns an empty registry with defaultType as the order type
// used when a caller does not specify one.
func NewRegistry(defaultType string) *Registry {
	return &Registry{
		processors:  make(map[string]Processor),
		defaultType: defaultType,
	}
}

// Register adds or replaces the processor for its OrderType().
func (r *Registry) Register(p Processor) {
	r.processors[p.OrderType()] = p
}

// Resolve looks up the processor for orderType, or the registry's default
// processor if orderType is empty. An unknown order type is a Validation
// error per spec §4.C9.
func (r *Registry) Resolve(orderType string) (Processor, error) {
	if orderType == "" {
		orderType = r.defaultType
	}
	p, ok := r.processors[orderType]
	if !ok {
		return nil, resilience.NewGatewayError(resilience.KindValidation, "unknown order type: "+orderType, nil)
	}
	return p, nil
}

// Types returns the registered order-type keys.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.processors))
	for t := range r.processors {
		types = append(types, t)
	}
	return types
}
