package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Enricher applies external metadata onto newly-created resources (spec
// §4.C12). All rules are idempotent: applying the same Enrichment twice to
// the same resource leaves it unchanged the second time.
type Enricher struct {
	defaultTags     []string
	environmentTags map[string][]string
}

// NewEnricher returns an Enricher with the default tag set ("netgate",
// "enriched") and environment-derived tag map.
func NewEnricher() *Enricher {
	return &Enricher{
		defaultTags: []string{"netgate", "enriched"},
		environmentTags: map[string][]string{
			"production":  {"prod", "critical"},
			"staging":     {"staging", "test"},
			"development": {"dev", "non-prod"},
		},
	}
}

// NewEnricherWithConfig returns an Enricher with caller-supplied defaults.
func NewEnricherWithConfig(defaultTags []string, environmentTags map[string][]string) *Enricher {
	return &Enricher{defaultTags: defaultTags, environmentTags: environmentTags}
}

// EnrichSite applies computed fields, merged metadata, and business tags to
// a site and returns the result. site is passed by value and returned
// modified; callers hold the enriched copy, not an aliased mutation.
func (e *Enricher) EnrichSite(site Site, enrichment Enrichment) Site {
	e.addComputedFieldsSite(&site, enrichment)
	e.mergeCustomFields(&site.CustomFields, enrichment)
	site.Tags = e.businessTags(site.Tags, site.Status.tagSuffix(), enrichment)
	return site
}

// EnrichDevice applies computed fields, merged metadata, and business tags
// to a device.
func (e *Enricher) EnrichDevice(device Device, enrichment Enrichment) Device {
	e.addComputedFieldsDevice(&device, enrichment)
	e.mergeCustomFields(&device.CustomFields, enrichment)
	device.Tags = e.businessTags(device.Tags, "", enrichment)
	return device
}

func (e *Enricher) addComputedFieldsSite(site *Site, enrichment Enrichment) {
	if enrichment.Geographic != nil {
		if site.Latitude == nil {
			lat := enrichment.Geographic.Latitude
			site.Latitude = &lat
		}
		if site.Longitude == nil {
			lon := enrichment.Geographic.Longitude
			site.Longitude = &lon
		}
	}

	if enrichment.Contact != nil {
		if site.ContactName == "" {
			site.ContactName = enrichment.Contact.Name
		}
		if site.ContactEmail == "" {
			site.ContactEmail = enrichment.Contact.Email
		}
		if site.ContactPhone == "" {
			site.ContactPhone = enrichment.Contact.Phone
		}
	}

	if site.Description == "" {
		var parts []string
		if enrichment.Business != nil && enrichment.Business.Environment != "" {
			parts = append(parts, "Environment: "+enrichment.Business.Environment)
		}
		if enrichment.Geographic != nil && enrichment.Geographic.Country != "" {
			parts = append(parts, "Country: "+enrichment.Geographic.Country)
		}
		if len(parts) > 0 {
			site.Description = strings.Join(parts, ", ")
		}
	}

	if site.Facility == "" && enrichment.Business != nil && enrichment.Business.CostCenter != "" {
		site.Facility = "FAC-" + strings.ToUpper(enrichment.Business.CostCenter)
	}
}

func (e *Enricher) addComputedFieldsDevice(device *Device, enrichment Enrichment) {
	if device.AssetTag == "" && enrichment.Business != nil && enrichment.Business.CostCenter != "" {
		device.AssetTag = "AT-" + enrichment.Business.CostCenter
	}
}

// mergeCustomFields copies business metadata and free-form metadata into
// custom_fields, later sources overriding earlier ones.
func (e *Enricher) mergeCustomFields(customFields *map[string]interface{}, enrichment Enrichment) {
	if enrichment.Business == nil && len(enrichment.Metadata) == 0 {
		return
	}
	if *customFields == nil {
		*customFields = make(map[string]interface{})
	}

	if enrichment.Business != nil {
		if enrichment.Business.CostCenter != "" {
			(*customFields)["cost_center"] = enrichment.Business.CostCenter
		}
		if enrichment.Business.ProjectCode != "" {
			(*customFields)["project_code"] = enrichment.Business.ProjectCode
		}
		if enrichment.Business.Environment != "" {
			(*customFields)["environment"] = enrichment.Business.Environment
		}
		if enrichment.Business.Priority != "" {
			(*customFields)["priority"] = enrichment.Business.Priority
		}
	}

	for k, v := range enrichment.Metadata {
		(*customFields)[k] = v
	}
}

// businessTags computes the final sorted, deduplicated tag set: existing
// tags, configured defaults, environment-derived tags, priority/cost-
// center/country/region-derived tags, the caller-supplied tag list, and an
// optional status-derived tag.
func (e *Enricher) businessTags(existing []string, statusTag string, enrichment Enrichment) []string {
	set := make(map[string]struct{})
	add := func(tags ...string) {
		for _, t := range tags {
			if t != "" {
				set[t] = struct{}{}
			}
		}
	}

	add(existing...)
	add(e.defaultTags...)

	if enrichment.Business != nil {
		if enrichment.Business.Environment != "" {
			add(e.environmentTags[strings.ToLower(enrichment.Business.Environment)]...)
		}
		if enrichment.Business.Priority != "" {
			add(fmt.Sprintf("priority-%s", strings.ToLower(enrichment.Business.Priority)))
		}
		if enrichment.Business.CostCenter != "" {
			add(fmt.Sprintf("cost-center-%s", strings.ToLower(enrichment.Business.CostCenter)))
		}
	}

	if enrichment.Geographic != nil {
		if enrichment.Geographic.Country != "" {
			add(fmt.Sprintf("country-%s", strings.ToLower(enrichment.Geographic.Country)))
		}
		if enrichment.Geographic.Region != "" {
			add(fmt.Sprintf("region-%s", strings.ToLower(enrichment.Geographic.Region)))
		}
	}

	add(enrichment.Tags...)
	add(statusTag)

	tags := make([]string, 0, len(set))
	for t := range set {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// tagSuffix returns the status-derived tag for a site status, or "" for an
// unset/unknown status.
func (s SiteStatus) tagSuffix() string {
	switch s {
	case SiteStatusActive:
		return "status-active"
	case SiteStatusPlanned:
		return "status-planned"
	case SiteStatusRetired:
		return "status-retired"
	case SiteStatusStaging:
		return "status-staging"
	default:
		return ""
	}
}

// ComputeStatus derives a site status from an enrichment's business
// environment field: production -> Active, staging -> Staging,
// development -> Planned, anything else -> "" (no change).
func ComputeStatus(enrichment Enrichment) SiteStatus {
	if enrichment.Business == nil {
		return ""
	}
	switch strings.ToLower(enrichment.Business.Environment) {
	case "production":
		return SiteStatusActive
	case "staging":
		return SiteStatusStaging
	case "development":
		return SiteStatusPlanned
	default:
		return ""
	}
}
