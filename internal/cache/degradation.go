package cache

import (
	"sync"
	"time"
)

// DegradationConfig configures a Degradation cache.
type DegradationConfig struct {
	TTL time.Duration
}

// DefaultDegradationConfig returns the spec's default: 5 minute TTL.
func DefaultDegradationConfig() DegradationConfig {
	return DegradationConfig{TTL: 5 * time.Minute}
}

type degradationEntry struct {
	value    interface{}
	cachedAt time.Time
}

// Degradation is a stale-but-available cache (spec §4.C5): four keyed maps
// (single site, single device, site-list, device-list), each entry stamped
// with cached_at. It is only consulted by the Resilient Client when the
// live path is unavailable (breaker Open or upstream error); Get never
// itself decides freshness policy beyond the TTL.
type Degradation struct {
	mu  sync.RWMutex
	ttl time.Duration

	sites      map[int]degradationEntry
	devices    map[int]degradationEntry
	siteLists  map[string]degradationEntry
	deviceLists map[string]degradationEntry
}

// NewDegradation constructs a Degradation cache.
func NewDegradation(cfg DegradationConfig) *Degradation {
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}
	return &Degradation{
		ttl:         cfg.TTL,
		sites:       make(map[int]degradationEntry),
		devices:     make(map[int]degradationEntry),
		siteLists:   make(map[string]degradationEntry),
		deviceLists: make(map[string]degradationEntry),
	}
}

func (d *Degradation) fresh(e degradationEntry, ok bool) (degradationEntry, bool) {
	if !ok {
		return degradationEntry{}, false
	}
	if time.Since(e.cachedAt) > d.ttl {
		return degradationEntry{}, false
	}
	return e, true
}

// GetSite returns the cached site, if present and within TTL.
func (d *Degradation) GetSite(id int) (interface{}, bool) {
	d.mu.RLock()
	e, ok := d.sites[id]
	d.mu.RUnlock()
	e, ok = d.fresh(e, ok)
	if !ok {
		return nil, false
	}
	return e.value, true
}

// PutSite opportunistically populates the single-site map on a successful
// read or create; it never evicts.
func (d *Degradation) PutSite(id int, value interface{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sites[id] = degradationEntry{value: value, cachedAt: time.Now()}
}

// GetDevice returns the cached device, if present and within TTL.
func (d *Degradation) GetDevice(id int) (interface{}, bool) {
	d.mu.RLock()
	e, ok := d.devices[id]
	d.mu.RUnlock()
	e, ok = d.fresh(e, ok)
	if !ok {
		return nil, false
	}
	return e.value, true
}

// PutDevice populates the single-device map.
func (d *Degradation) PutDevice(id int, value interface{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.devices[id] = degradationEntry{value: value, cachedAt: time.Now()}
}

// GetSiteList returns the cached site-list page for queryKey, if present
// and within TTL.
func (d *Degradation) GetSiteList(queryKey string) (interface{}, bool) {
	d.mu.RLock()
	e, ok := d.siteLists[queryKey]
	d.mu.RUnlock()
	e, ok = d.fresh(e, ok)
	if !ok {
		return nil, false
	}
	return e.value, true
}

// PutSiteList populates the site-list map.
func (d *Degradation) PutSiteList(queryKey string, value interface{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.siteLists[queryKey] = degradationEntry{value: value, cachedAt: time.Now()}
}

// GetDeviceList returns the cached device-list page for queryKey, if
// present and within TTL.
func (d *Degradation) GetDeviceList(queryKey string) (interface{}, bool) {
	d.mu.RLock()
	e, ok := d.deviceLists[queryKey]
	d.mu.RUnlock()
	e, ok = d.fresh(e, ok)
	if !ok {
		return nil, false
	}
	return e.value, true
}

// PutDeviceList populates the device-list map.
func (d *Degradation) PutDeviceList(queryKey string, value interface{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.deviceLists[queryKey] = degradationEntry{value: value, cachedAt: time.Now()}
}
