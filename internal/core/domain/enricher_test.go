package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func fullEnrichment() Enrichment {
	return Enrichment{
		Geographic: &GeographicData{Latitude: 1.5, Longitude: 2.5, Country: "USA", Region: "East"},
		Contact:    &ContactData{Name: "Jane", Email: "jane@example.com", Phone: "555-0100"},
		Business:   &BusinessMetadata{CostCenter: "cc1", ProjectCode: "proj1", Environment: "production", Priority: "high"},
		Tags:       []string{"custom-tag"},
		Metadata:   map[string]string{"owner": "platform-team"},
	}
}

func TestEnrichSiteFillsUnsetGeoAndContact(t *testing.T) {
	e := NewEnricher()
	site := Site{Name: "s", Status: SiteStatusActive}
	got := e.EnrichSite(site, fullEnrichment())

	assert.Equal(t, 1.5, *got.Latitude)
	assert.Equal(t, 2.5, *got.Longitude)
	assert.Equal(t, "Jane", got.ContactName)
	assert.Equal(t, "FAC-CC1", got.Facility)
	assert.Equal(t, "Environment: production, Country: USA", got.Description)
}

func TestEnrichSiteDoesNotOverwriteSetFields(t *testing.T) {
	e := NewEnricher()
	existingLat := 99.0
	site := Site{Name: "s", Latitude: &existingLat, ContactName: "Existing", Description: "keep me"}
	got := e.EnrichSite(site, fullEnrichment())

	assert.Equal(t, 99.0, *got.Latitude)
	assert.Equal(t, "Existing", got.ContactName)
	assert.Equal(t, "keep me", got.Description)
}

func TestEnrichSiteMergesCustomFields(t *testing.T) {
	e := NewEnricher()
	site := Site{Name: "s"}
	got := e.EnrichSite(site, fullEnrichment())

	assert.Equal(t, "cc1", got.CustomFields["cost_center"])
	assert.Equal(t, "proj1", got.CustomFields["project_code"])
	assert.Equal(t, "production", got.CustomFields["environment"])
	assert.Equal(t, "high", got.CustomFields["priority"])
	assert.Equal(t, "platform-team", got.CustomFields["owner"])
}

func TestEnrichSiteTagsAreSortedAndDeduplicated(t *testing.T) {
	e := NewEnricher()
	site := Site{Name: "s", Status: SiteStatusActive, Tags: []string{"enriched", "manual-tag"}}
	got := e.EnrichSite(site, fullEnrichment())

	expected := []string{
		"cost-center-cc1", "country-usa", "critical", "custom-tag", "enriched",
		"manual-tag", "netgate", "priority-high", "prod", "region-east", "status-active",
	}
	assert.Equal(t, expected, got.Tags)
}

func TestEnrichSiteIsIdempotent(t *testing.T) {
	e := NewEnricher()
	site := Site{Name: "s", Status: SiteStatusActive}
	enrichment := fullEnrichment()

	once := e.EnrichSite(site, enrichment)
	twice := e.EnrichSite(once, enrichment)

	assert.Equal(t, once, twice)
}

func TestEnrichDeviceDerivesAssetTagFromCostCenter(t *testing.T) {
	e := NewEnricher()
	device := Device{Name: "d"}
	got := e.EnrichDevice(device, fullEnrichment())
	assert.Equal(t, "AT-cc1", got.AssetTag)
}

func TestComputeStatusFromEnvironment(t *testing.T) {
	assert.Equal(t, SiteStatusActive, ComputeStatus(Enrichment{Business: &BusinessMetadata{Environment: "production"}}))
	assert.Equal(t, SiteStatusStaging, ComputeStatus(Enrichment{Business: &BusinessMetadata{Environment: "staging"}}))
	assert.Equal(t, SiteStatusPlanned, ComputeStatus(Enrichment{Business: &BusinessMetadata{Environment: "development"}}))
	assert.Equal(t, SiteStatus(""), ComputeStatus(Enrichment{Business: &BusinessMetadata{Environment: "unknown"}}))
	assert.Equal(t, SiteStatus(""), ComputeStatus(Enrichment{}))
}

func TestMergeTakesFirstNonEmptySourceForScalars(t *testing.T) {
	a := Enrichment{Business: &BusinessMetadata{Environment: "production"}, Tags: []string{"a"}}
	b := Enrichment{Business: &BusinessMetadata{Environment: "staging"}, Tags: []string{"b"}}

	merged := Merge(a, b)
	assert.Equal(t, "production", merged.Business.Environment)
	assert.Equal(t, []string{"a", "b"}, merged.Tags)
}

func TestMergeMetadataLaterOverridesEarlier(t *testing.T) {
	a := Enrichment{Metadata: map[string]string{"k": "from-a"}}
	b := Enrichment{Metadata: map[string]string{"k": "from-b"}}

	merged := Merge(a, b)
	assert.Equal(t, "from-b", merged.Metadata["k"])
}
