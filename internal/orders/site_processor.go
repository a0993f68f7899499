package orders

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/vitaliisemenov/netgate/internal/core/domain"
	"github.com/vitaliisemenov/netgate/internal/core/resilience"
)

var siteNamePattern = `^[A-Za-z0-9 _.()-]+$`

// SiteProcessor is the "site" order type: materializes a domain.SiteOrder
// as an Inventory site.
type SiteProcessor struct {
	validate *validator.Validate
	enricher *domain.Enricher
}

// NewSiteProcessor constructs a SiteProcessor with a validator registered
// for the site-name charset rule from spec §3.
func NewSiteProcessor(enricher *domain.Enricher) *SiteProcessor {
	v := validator.New()
	_ = v.RegisterValidation("netgate_sitename", validateSiteName)
	return &SiteProcessor{validate: v, enricher: enricher}
}

func validateSiteName(fl validator.FieldLevel) bool {
	name := strings.TrimSpace(fl.Field().String())
	if name == "" {
		return false
	}
	for _, r := range name {
		if !(r >= 'a' && r <= 'z') && !(r >= 'A' && r <= 'Z') && !(r >= '0' && r <= '9') &&
			r != ' ' && r != '-' && r != '_' && r != '.' && r != '(' && r != ')' {
			return false
		}
	}
	return true
}

// OrderType implements Processor.
func (p *SiteProcessor) OrderType() string { return "site" }

// Validate implements Processor. order must be a *domain.SiteOrder (or a
// value convertible to one); fields are trimmed before the charset/length
// checks per spec §3.
func (p *SiteProcessor) Validate(order interface{}) error {
	so, ok := order.(domain.SiteOrder)
	if !ok {
		if ptr, okPtr := order.(*domain.SiteOrder); okPtr {
			so = *ptr
		} else {
			return resilience.NewGatewayError(resilience.KindValidation, "order is not a site order", nil)
		}
	}

	so.Name = strings.TrimSpace(so.Name)
	so.Description = strings.TrimSpace(so.Description)
	so.Address = strings.TrimSpace(so.Address)

	if err := p.validate.Struct(so); err != nil {
		return resilience.NewGatewayError(resilience.KindValidation, fmt.Sprintf("invalid site order: %s", err), err)
	}
	return nil
}

// Transform implements Processor: builds a CreateSiteRequest scoped to
// mappedTenant.
func (p *SiteProcessor) Transform(order interface{}, mappedTenant int) (interface{}, error) {
	so, ok := order.(domain.SiteOrder)
	if !ok {
		if ptr, okPtr := order.(*domain.SiteOrder); okPtr {
			so = *ptr
		} else {
			return nil, resilience.NewGatewayError(resilience.KindInternal, "order is not a site order", nil)
		}
	}

	req := domain.CreateSiteRequest{
		Name:        strings.TrimSpace(so.Name),
		Description: strings.TrimSpace(so.Description),
		PhysicalAddress: strings.TrimSpace(so.Address),
		Tenant:      &mappedTenant,
	}
	return req, nil
}

// EnrichRequest implements Processor: folds enrichment data into the
// request before submission so the created resource arrives pre-enriched.
func (p *SiteProcessor) EnrichRequest(request interface{}, enrichment domain.Enrichment) interface{} {
	req, ok := request.(domain.CreateSiteRequest)
	if !ok {
		return request
	}

	site := domain.Site{
		Name:            req.Name,
		Description:     req.Description,
		PhysicalAddress: req.PhysicalAddress,
		Tenant:          req.Tenant,
	}
	if status := domain.ComputeStatus(enrichment); status != "" {
		site.Status = status
	}

	enriched := p.enricher.EnrichSite(site, enrichment)

	req.Description = enriched.Description
	req.Status = enriched.Status
	req.Facility = enriched.Facility
	req.Latitude = enriched.Latitude
	req.Longitude = enriched.Longitude
	req.ContactName = enriched.ContactName
	req.ContactPhone = enriched.ContactPhone
	req.ContactEmail = enriched.ContactEmail
	req.Tags = enriched.Tags
	return req
}

// Submit implements Processor: calls through the Tenant Access Layer.
func (p *SiteProcessor) Submit(ctx context.Context, client SubmitClient, appTenant string, request interface{}) (interface{}, error) {
	req, ok := request.(domain.CreateSiteRequest)
	if !ok {
		return nil, resilience.NewGatewayError(resilience.KindInternal, "request is not a CreateSiteRequest", nil)
	}
	return client.CreateSite(ctx, appTenant, req)
}

// EnrichResource implements Processor: applies post-creation enrichment to
// the resource the Inventory returned (custom fields are idempotent so
// this is safe even though EnrichRequest already folded enrichment into
// the request).
func (p *SiteProcessor) EnrichResource(resource interface{}, enrichment domain.Enrichment) interface{} {
	site, ok := resource.(domain.Site)
	if !ok {
		return resource
	}
	return p.enricher.EnrichSite(site, enrichment)
}
