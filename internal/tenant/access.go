package tenant

import (
	"context"

	"github.com/vitaliisemenov/netgate/internal/cache"
	"github.com/vitaliisemenov/netgate/internal/core/domain"
	"github.com/vitaliisemenov/netgate/internal/core/resilience"
	"github.com/vitaliisemenov/netgate/internal/resilientclient"
)

// Access is the Tenant Access Layer (spec §4.C8). It wraps a Resilient
// Client with the app-tenant ↔ inventory-tenant mapping and the
// defense-in-depth filtering/ownership checks every resource operation
// must pass. A Fresh Cache (C7) sits in front of the client on read paths
// when one is configured; at most one of memFresh/redisFresh is non-nil.
type Access struct {
	client *resilientclient.Client
	mapper *Mapper

	memFresh   *cache.Fresh
	redisFresh *cache.RedisFresh
}

// NewAccess constructs an Access layer over client, sharing mapper with
// whatever else resolves tenant identity (the Order Service resolves
// tenants through the same Mapper instance). Reads go straight
// to client until a cache is attached with WithMemoryCache/WithRedisCache.
func NewAccess(client *resilientclient.Client, mapper *Mapper) *Access {
	return &Access{client: client, mapper: mapper}
}

// WithMemoryCache attaches an in-memory Fresh Cache in front of read paths.
func (a *Access) WithMemoryCache(f *cache.Fresh) *Access {
	a.memFresh = f
	return a
}

// WithRedisCache attaches a Redis-backed Fresh Cache in front of read
// paths.
func (a *Access) WithRedisCache(r *cache.RedisFresh) *Access {
	a.redisFresh = r
	return a
}

// cacheGet looks up key in whichever Fresh Cache backend is configured and
// decodes it into dest, which must be a pointer. ok is false on miss, on a
// backend error (Redis), or when no cache is attached.
func (a *Access) cacheGet(ctx context.Context, key cache.Key, dest interface{}) bool {
	switch {
	case a.memFresh != nil:
		v, found := a.memFresh.Get(key)
		if !found {
			return false
		}
		switch d := dest.(type) {
		case *domain.Site:
			s, ok := v.(domain.Site)
			if !ok {
				return false
			}
			*d = s
		case *domain.Device:
			dv, ok := v.(domain.Device)
			if !ok {
				return false
			}
			*d = dv
		case *domain.SiteListPage:
			p, ok := v.(domain.SiteListPage)
			if !ok {
				return false
			}
			*d = p
		case *domain.DeviceListPage:
			p, ok := v.(domain.DeviceListPage)
			if !ok {
				return false
			}
			*d = p
		default:
			return false
		}
		return true
	case a.redisFresh != nil:
		found, err := a.redisFresh.Get(ctx, key, dest)
		if err != nil {
			return false
		}
		return found
	default:
		return false
	}
}

// cachePut stores value under key in whichever Fresh Cache backend is
// configured. Redis errors are swallowed: the cache is an optimization, not
// a correctness requirement, and a failed Put just means the next read
// goes to the client again.
func (a *Access) cachePut(ctx context.Context, key cache.Key, value interface{}) {
	switch {
	case a.memFresh != nil:
		a.memFresh.Put(key, value)
	case a.redisFresh != nil:
		_ = a.redisFresh.Put(ctx, key, value)
	}
}

// cacheInvalidate applies the configured invalidation strategy to whichever
// Fresh Cache backend is attached following a successful write.
func (a *Access) cacheInvalidate(ctx context.Context, writtenKey cache.Key, resourceKind cache.ResourceKind) {
	switch {
	case a.memFresh != nil:
		a.memFresh.Invalidate(writtenKey, resourceKind)
	case a.redisFresh != nil:
		_ = a.redisFresh.Invalidate(ctx, writtenKey, resourceKind)
	}
}

// resolve maps appTenant to its inventory-tenant id, or KindUnauthorized if
// the app-tenant is unknown.
func (a *Access) resolve(appTenant string) (int, error) {
	id, ok := a.mapper.Resolve(appTenant)
	if !ok {
		return 0, resilience.NewGatewayError(resilience.KindUnauthorized, "unknown app tenant", nil)
	}
	return id, nil
}

// GetSite fetches a site and verifies it belongs to appTenant. A Fresh
// Cache hit still goes through the ownership check below: the cache key is
// id-only, not tenant-scoped, so a cached entry is no more trusted than a
// live one.
func (a *Access) GetSite(ctx context.Context, appTenant string, id int) (domain.Site, error) {
	mappedTenant, err := a.resolve(appTenant)
	if err != nil {
		return domain.Site{}, err
	}

	key := cache.SiteKey(id)
	var site domain.Site
	if !a.cacheGet(ctx, key, &site) {
		site, err = a.client.GetSite(ctx, id)
		if err != nil {
			return domain.Site{}, err
		}
		a.cachePut(ctx, key, site)
	}

	if site.Tenant == nil || *site.Tenant != mappedTenant {
		return domain.Site{}, resilience.NewGatewayError(resilience.KindUnauthorized, "site does not belong to the requesting tenant", nil)
	}
	return site, nil
}

// ListSites lists sites for appTenant, passing the mapped tenant as an
// upstream filter and re-filtering locally in case the upstream filter is
// not enforced (defense in depth, per spec §3's invariant on list reads).
func (a *Access) ListSites(ctx context.Context, appTenant string, limit, offset *int) (domain.SiteListPage, error) {
	mappedTenant, err := a.resolve(appTenant)
	if err != nil {
		return domain.SiteListPage{}, err
	}

	query := domain.ListSitesQuery{Tenant: &mappedTenant, Limit: limit, Offset: offset}
	key := cache.SiteListKey(query)

	var page domain.SiteListPage
	if !a.cacheGet(ctx, key, &page) {
		page, err = a.client.ListSites(ctx, query)
		if err != nil {
			return domain.SiteListPage{}, err
		}
		a.cachePut(ctx, key, page)
	}

	filtered := page.Results[:0:0]
	for _, s := range page.Results {
		if s.Tenant != nil && *s.Tenant == mappedTenant {
			filtered = append(filtered, s)
		}
	}
	page.Results = filtered
	page.Count = len(filtered)
	return page, nil
}

// CreateSite forces req.Tenant to the caller's mapped tenant before
// submission, then verifies the created resource still belongs to it.
func (a *Access) CreateSite(ctx context.Context, appTenant string, req domain.CreateSiteRequest) (domain.Site, error) {
	mappedTenant, err := a.resolve(appTenant)
	if err != nil {
		return domain.Site{}, err
	}
	req.Tenant = &mappedTenant

	site, err := a.client.CreateSite(ctx, req)
	if err != nil {
		return domain.Site{}, err
	}
	if site.Tenant == nil || *site.Tenant != mappedTenant {
		return domain.Site{}, resilience.NewGatewayError(resilience.KindUnauthorized, "created site does not belong to the requesting tenant", nil)
	}
	if site.ID != nil {
		a.cacheInvalidate(ctx, cache.SiteKey(*site.ID), cache.KindSite)
	}
	return site, nil
}

// UpdateSite performs the checked get (IDOR guard) before updating.
func (a *Access) UpdateSite(ctx context.Context, appTenant string, id int, req domain.UpdateSiteRequest) (domain.Site, error) {
	if _, err := a.GetSite(ctx, appTenant, id); err != nil {
		return domain.Site{}, err
	}
	site, err := a.client.UpdateSite(ctx, id, req)
	if err != nil {
		return domain.Site{}, err
	}
	a.cacheInvalidate(ctx, cache.SiteKey(id), cache.KindSite)
	return site, nil
}

// DeleteSite performs the checked get (IDOR guard) before deleting.
func (a *Access) DeleteSite(ctx context.Context, appTenant string, id int) error {
	if _, err := a.GetSite(ctx, appTenant, id); err != nil {
		return err
	}
	if err := a.client.DeleteSite(ctx, id); err != nil {
		return err
	}
	a.cacheInvalidate(ctx, cache.SiteKey(id), cache.KindSite)
	return nil
}

// GetDevice fetches a device and verifies it belongs to appTenant. Same
// cache-then-ownership-check order as GetSite.
func (a *Access) GetDevice(ctx context.Context, appTenant string, id int) (domain.Device, error) {
	mappedTenant, err := a.resolve(appTenant)
	if err != nil {
		return domain.Device{}, err
	}

	key := cache.DeviceKey(id)
	var device domain.Device
	if !a.cacheGet(ctx, key, &device) {
		device, err = a.client.GetDevice(ctx, id)
		if err != nil {
			return domain.Device{}, err
		}
		a.cachePut(ctx, key, device)
	}
	if device.Tenant == nil || *device.Tenant != mappedTenant {
		return domain.Device{}, resilience.NewGatewayError(resilience.KindUnauthorized, "device does not belong to the requesting tenant", nil)
	}
	return device, nil
}

// ListDevices lists devices for appTenant with the same defense-in-depth
// re-filtering as ListSites.
func (a *Access) ListDevices(ctx context.Context, appTenant string, site, limit, offset *int) (domain.DeviceListPage, error) {
	mappedTenant, err := a.resolve(appTenant)
	if err != nil {
		return domain.DeviceListPage{}, err
	}

	query := domain.ListDevicesQuery{Site: site, Tenant: &mappedTenant, Limit: limit, Offset: offset}
	key := cache.DeviceListKey(query)

	var page domain.DeviceListPage
	if !a.cacheGet(ctx, key, &page) {
		page, err = a.client.ListDevices(ctx, query)
		if err != nil {
			return domain.DeviceListPage{}, err
		}
		a.cachePut(ctx, key, page)
	}

	filtered := page.Results[:0:0]
	for _, d := range page.Results {
		if d.Tenant != nil && *d.Tenant == mappedTenant {
			filtered = append(filtered, d)
		}
	}
	page.Results = filtered
	page.Count = len(filtered)
	return page, nil
}

// CreateDevice forces req.Tenant to the caller's mapped tenant before
// submission.
func (a *Access) CreateDevice(ctx context.Context, appTenant string, req domain.CreateDeviceRequest) (domain.Device, error) {
	mappedTenant, err := a.resolve(appTenant)
	if err != nil {
		return domain.Device{}, err
	}
	req.Tenant = &mappedTenant

	device, err := a.client.CreateDevice(ctx, req)
	if err != nil {
		return domain.Device{}, err
	}
	if device.Tenant == nil || *device.Tenant != mappedTenant {
		return domain.Device{}, resilience.NewGatewayError(resilience.KindUnauthorized, "created device does not belong to the requesting tenant", nil)
	}
	if device.ID != nil {
		a.cacheInvalidate(ctx, cache.DeviceKey(*device.ID), cache.KindDevice)
	}
	return device, nil
}

// UpdateDevice performs the checked get before updating.
func (a *Access) UpdateDevice(ctx context.Context, appTenant string, id int, req domain.UpdateDeviceRequest) (domain.Device, error) {
	if _, err := a.GetDevice(ctx, appTenant, id); err != nil {
		return domain.Device{}, err
	}
	device, err := a.client.UpdateDevice(ctx, id, req)
	if err != nil {
		return domain.Device{}, err
	}
	a.cacheInvalidate(ctx, cache.DeviceKey(id), cache.KindDevice)
	return device, nil
}

// DeleteDevice performs the checked get before deleting.
func (a *Access) DeleteDevice(ctx context.Context, appTenant string, id int) error {
	if _, err := a.GetDevice(ctx, appTenant, id); err != nil {
		return err
	}
	if err := a.client.DeleteDevice(ctx, id); err != nil {
		return err
	}
	a.cacheInvalidate(ctx, cache.DeviceKey(id), cache.KindDevice)
	return nil
}
