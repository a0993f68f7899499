package cache

import (
	"fmt"

	"github.com/vitaliisemenov/netgate/internal/core/domain"
)

// ResourceKind distinguishes the four key shapes the caches key by (spec
// §4.C7: "Site(id) | Device(id) | SiteList(queryString) | DeviceList
// (queryString)").
type ResourceKind string

const (
	KindSite       ResourceKind = "site"
	KindDevice     ResourceKind = "device"
	KindSiteList   ResourceKind = "site_list"
	KindDeviceList ResourceKind = "device_list"
)

// Key is a structured cache key. Two Keys are equal iff String() matches.
type Key struct {
	Kind  ResourceKind
	ID    int    // meaningful for KindSite/KindDevice
	Query string // meaningful for KindSiteList/KindDeviceList
}

// String renders the key canonically for use as a map key.
func (k Key) String() string {
	switch k.Kind {
	case KindSite, KindDevice:
		return fmt.Sprintf("%s:%d", k.Kind, k.ID)
	default:
		return fmt.Sprintf("%s:%s", k.Kind, k.Query)
	}
}

// SiteKey builds a single-site key.
func SiteKey(id int) Key { return Key{Kind: KindSite, ID: id} }

// DeviceKey builds a single-device key.
func DeviceKey(id int) Key { return Key{Kind: KindDevice, ID: id} }

// SiteListKey builds a site-list key from a query. Pointer fields are
// encoded with an explicit sentinel for "absent" so a caller's explicit
// zero never collides with "filter not supplied" (resolves the
// unwrap_or(0) ambiguity flagged in the spec's design notes).
func SiteListKey(q domain.ListSitesQuery) Key {
	return Key{Kind: KindSiteList, Query: fmt.Sprintf("tenant=%s&limit=%s&offset=%s",
		intPtrToken(q.Tenant), intPtrToken(q.Limit), intPtrToken(q.Offset))}
}

// DeviceListKey builds a device-list key from a query.
func DeviceListKey(q domain.ListDevicesQuery) Key {
	return Key{Kind: KindDeviceList, Query: fmt.Sprintf("site=%s&tenant=%s&limit=%s&offset=%s",
		intPtrToken(q.Site), intPtrToken(q.Tenant), intPtrToken(q.Limit), intPtrToken(q.Offset))}
}

// intPtrToken renders *int as "-" when nil and the decimal value otherwise,
// so 0 and "absent" never produce the same token.
func intPtrToken(p *int) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *p)
}
