// Package domain holds the Gateway's wire and business types: site orders,
// Inventory resources, and enrichment payloads.
package domain

import "time"

// SiteOrder is the tenant-submitted request to materialize a site in the
// Inventory.
type SiteOrder struct {
	Name        string `json:"name" validate:"required,max=100,netgate_sitename"`
	Description string `json:"description,omitempty" validate:"omitempty,max=500"`
	Address     string `json:"address,omitempty" validate:"omitempty,max=200"`
}

// SiteStatus is the lifecycle status of an Inventory site.
type SiteStatus string

const (
	SiteStatusActive  SiteStatus = "active"
	SiteStatusPlanned SiteStatus = "planned"
	SiteStatusRetired SiteStatus = "retired"
	SiteStatusStaging SiteStatus = "staging"
)

// Site is the Inventory's representation of a site (§3 of the spec).
type Site struct {
	ID               *int                   `json:"id,omitempty"`
	Name             string                 `json:"name"`
	Slug             string                 `json:"slug,omitempty"`
	Description      string                 `json:"description,omitempty"`
	Status           SiteStatus             `json:"status,omitempty"`
	Region           string                 `json:"region,omitempty"`
	Tenant           *int                   `json:"tenant,omitempty"`
	Facility         string                 `json:"facility,omitempty"`
	PhysicalAddress  string                 `json:"physical_address,omitempty"`
	ShippingAddress  string                 `json:"shipping_address,omitempty"`
	Latitude         *float64               `json:"latitude,omitempty"`
	Longitude        *float64               `json:"longitude,omitempty"`
	ContactName      string                 `json:"contact_name,omitempty"`
	ContactPhone     string                 `json:"contact_phone,omitempty"`
	ContactEmail     string                 `json:"contact_email,omitempty"`
	Comments         string                 `json:"comments,omitempty"`
	Tags             []string               `json:"tags,omitempty"`
	CustomFields     map[string]interface{} `json:"custom_fields,omitempty"`
	Created          string                 `json:"created,omitempty"`
	LastUpdated      string                 `json:"last_updated,omitempty"`
}

// CreateSiteRequest is the payload synthesized for the Inventory's create-site
// operation.
type CreateSiteRequest struct {
	Name            string     `json:"name"`
	Slug            string     `json:"slug,omitempty"`
	Description     string     `json:"description,omitempty"`
	Status          SiteStatus `json:"status,omitempty"`
	Region          string     `json:"region,omitempty"`
	Tenant          *int       `json:"tenant,omitempty"`
	Facility        string     `json:"facility,omitempty"`
	PhysicalAddress string     `json:"physical_address,omitempty"`
	ShippingAddress string     `json:"shipping_address,omitempty"`
	Latitude        *float64   `json:"latitude,omitempty"`
	Longitude       *float64   `json:"longitude,omitempty"`
	ContactName     string     `json:"contact_name,omitempty"`
	ContactPhone    string     `json:"contact_phone,omitempty"`
	ContactEmail    string     `json:"contact_email,omitempty"`
	Comments        string     `json:"comments,omitempty"`
	Tags            []string   `json:"tags,omitempty"`
}

// UpdateSiteRequest is a partial update to an existing site; nil fields are
// left untouched.
type UpdateSiteRequest struct {
	Name            *string    `json:"name,omitempty"`
	Description     *string    `json:"description,omitempty"`
	Status          SiteStatus `json:"status,omitempty"`
	Tags            []string   `json:"tags,omitempty"`
}

// ListSitesQuery describes a filtered, paginated site listing. Tenant/Limit/
// Offset are pointers so an absent filter can be told apart from an explicit
// zero (see SPEC_FULL.md's degradation-cache key note).
type ListSitesQuery struct {
	Tenant *int
	Limit  *int
	Offset *int
}

// SiteListPage is the page of results the Inventory returns for a list
// operation.
type SiteListPage struct {
	Count    int    `json:"count"`
	Next     string `json:"next,omitempty"`
	Previous string `json:"previous,omitempty"`
	Results  []Site `json:"results"`
}

// IsZero reports whether s is the zero Site value: no name and no id.
func (s Site) IsZero() bool {
	return s.Name == "" && s.ID == nil
}

// Now is a seam so callers that need deterministic timestamps in tests can
// substitute it; production code always uses time.Now directly.
var Now = time.Now
