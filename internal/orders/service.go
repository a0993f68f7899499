package orders

import (
	"context"

	"github.com/vitaliisemenov/netgate/internal/core/domain"
	"github.com/vitaliisemenov/netgate/internal/core/resilience"
	"github.com/vitaliisemenov/netgate/internal/tenant"
	"github.com/vitaliisemenov/netgate/internal/workflow"
)

// Result is what the Order Service pipeline returns on success.
type Result struct {
	OrderID     string
	TenantID    string
	Resource    interface{}
	State       workflow.State
	InventoryID *int
}

// Service is the Order Service pipeline (spec §4.C11): it drives a
// Processor through validate -> transform -> enrich -> submit, recording
// every step in the Workflow Manager.
type Service struct {
	registry   *Registry
	workflows  *workflow.Manager
	mapper     *tenant.Mapper
	access     SubmitClient
	enricher   func(appTenant string) domain.Enrichment
}

// NewService constructs an Order Service. enrichmentFor supplies the
// enrichment payload to merge for a given app-tenant; pass a function that
// always returns the zero Enrichment if no enrichment source is wired.
func NewService(registry *Registry, workflows *workflow.Manager, mapper *tenant.Mapper, access SubmitClient, enrichmentFor func(appTenant string) domain.Enrichment) *Service {
	if enrichmentFor == nil {
		enrichmentFor = func(string) domain.Enrichment { return domain.Enrichment{} }
	}
	return &Service{
		registry:  registry,
		workflows: workflows,
		mapper:    mapper,
		access:    access,
		enricher:  enrichmentFor,
	}
}

// Submit runs the full pipeline for order under appTenant, using
// orderType's processor (or the registry default if orderType is empty).
func (s *Service) Submit(ctx context.Context, appTenant string, orderType string, order interface{}) (Result, error) {
	processor, err := s.registry.Resolve(orderType)
	if err != nil {
		return Result{}, err
	}

	// Step 2: validate before any workflow exists.
	if err := processor.Validate(order); err != nil {
		return Result{}, err
	}

	mappedTenant, ok := s.mapper.Resolve(appTenant)
	if !ok {
		return Result{}, resilience.NewGatewayError(resilience.KindUnauthorized, "unknown app tenant", nil)
	}

	// Step 3: create workflow, Pending -> Validated.
	orderID := s.workflows.Create(appTenant)
	if err := s.workflows.Transition(orderID, workflow.StateValidated); err != nil {
		return Result{}, resilience.NewGatewayError(resilience.KindInternal, "workflow could not reach Validated immediately after creation", err)
	}

	// Step 4-5: transform and enrich the request. Transform only fails on an
	// internal invariant breach (the order already passed Validate), so
	// there is no Failed transition to attempt from Validated; the
	// workflow is simply left at its last completed transition.
	request, err := processor.Transform(order, mappedTenant)
	if err != nil {
		return Result{}, resilience.NewGatewayError(resilience.KindInternal, "order transform failed", err)
	}
	enrichment := s.enricher(appTenant)
	request = processor.EnrichRequest(request, enrichment)

	// Step 6: Validated -> Processing.
	if err := s.workflows.Transition(orderID, workflow.StateProcessing); err != nil {
		return Result{}, resilience.NewGatewayError(resilience.KindInternal, "workflow could not reach Processing", err)
	}

	// Step 7: submit through the Tenant Access Layer + Resilient Client.
	resource, err := processor.Submit(ctx, s.access, appTenant, request)
	if err != nil {
		_ = s.workflows.MarkFailed(orderID, err.Error())
		return Result{}, resilience.NewGatewayError(resilience.KindUpstream, "order submission failed", err)
	}

	resource = processor.EnrichResource(resource, enrichment)

	inventoryID := resourceID(resource)
	if inventoryID != nil {
		if err := s.workflows.MarkCompleted(orderID, *inventoryID); err != nil {
			return Result{}, resilience.NewGatewayError(resilience.KindInternal, "workflow could not reach Completed", err)
		}
	} else if err := s.workflows.Transition(orderID, workflow.StateCompleted); err != nil {
		return Result{}, resilience.NewGatewayError(resilience.KindInternal, "workflow could not reach Completed", err)
	}

	return Result{
		OrderID:     orderID,
		TenantID:    appTenant,
		Resource:    resource,
		State:       workflow.StateCompleted,
		InventoryID: inventoryID,
	}, nil
}

// Status returns the current workflow entry for orderID, scoped to
// appTenant: an order id belonging to a different tenant is reported as
// not found rather than leaking its existence.
func (s *Service) Status(appTenant, orderID string) (workflow.Entry, error) {
	entry, err := s.workflows.Get(orderID)
	if err != nil {
		return workflow.Entry{}, resilience.NewGatewayError(resilience.KindNotFound, "order not found", err)
	}
	if entry.TenantID != appTenant {
		return workflow.Entry{}, resilience.NewGatewayError(resilience.KindNotFound, "order not found", nil)
	}
	return entry, nil
}

// resourceID extracts the inventory id from a submitted resource, if any.
func resourceID(resource interface{}) *int {
	switch r := resource.(type) {
	case domain.Site:
		return r.ID
	case domain.Device:
		return r.ID
	default:
		return nil
	}
}
