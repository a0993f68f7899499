package cache

import (
	"sync"
	"time"
)

// InvalidationStrategy determines which keys a successful write clears from
// the fresh cache (spec §4.C7).
type InvalidationStrategy string

const (
	// InvalidateNever clears nothing.
	InvalidateNever InvalidationStrategy = "never"
	// InvalidateWriteThrough clears only the single written key.
	InvalidateWriteThrough InvalidationStrategy = "write_through"
	// InvalidateWriteBack clears the single key plus every list key of the
	// same resource type.
	InvalidateWriteBack InvalidationStrategy = "write_back"
	// InvalidateTypeBased clears every list key of the same resource type.
	InvalidateTypeBased InvalidationStrategy = "type_based"
)

// CacheEvent names one occurrence a Fresh/RedisFresh cache can report
// through FreshConfig.OnEvent, for C4's Prometheus cache counters.
type CacheEvent string

const (
	EventHit        CacheEvent = "hit"
	EventMiss       CacheEvent = "miss"
	EventPut        CacheEvent = "put"
	EventEvict      CacheEvent = "evict"
	EventInvalidate CacheEvent = "invalidate"
)

// FreshConfig configures a Fresh cache.
type FreshConfig struct {
	DefaultTTL     time.Duration
	MaxSize        int // 0 means unbounded
	Strategy       InvalidationStrategy
	MetricsEnabled bool

	// OnEvent, if set, is called once per cache event (hit/miss/put/evict/
	// invalidate), letting a caller feed an external metrics registry
	// without this package depending on one. Hit/miss firing follows
	// MetricsEnabled the same way the internal counters below do; put/
	// evict/invalidate always fire.
	OnEvent func(CacheEvent)
}

func (cfg FreshConfig) fire(e CacheEvent) {
	if cfg.OnEvent != nil {
		cfg.OnEvent(e)
	}
}

// Snapshot is a by-value read of the cache's counters, shaped like C4's
// metrics snapshot but scoped to this cache instance.
type Snapshot struct {
	Hits      uint64
	Misses    uint64
	Puts      uint64
	Evictions uint64
	Invalidations uint64
}

type entry struct {
	value     interface{}
	expiresAt time.Time
}

// Fresh is an in-memory TTL + max-size + FIFO-eviction cache keyed by Key.
// Eviction order is tracked explicitly via the order slice rather than
// relying on Go's unordered map iteration, per the spec's design note on
// "simple FIFO".
type Fresh struct {
	mu     sync.RWMutex
	cfg    FreshConfig
	data   map[string]entry
	order  []string
	hits, misses, puts, evictions, invalidations uint64
}

// NewFresh constructs a Fresh cache.
func NewFresh(cfg FreshConfig) *Fresh {
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = 30 * time.Second
	}
	return &Fresh{
		cfg:  cfg,
		data: make(map[string]entry),
	}
}

// Get returns the cached value for key, or ok=false on miss or expiry.
// Expiry is lazy: an expired entry is removed on the first Get that finds
// it.
func (f *Fresh) Get(key Key) (interface{}, bool) {
	k := key.String()

	f.mu.RLock()
	e, found := f.data[k]
	f.mu.RUnlock()

	if !found {
		f.recordMiss()
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		f.mu.Lock()
		delete(f.data, k)
		f.removeFromOrder(k)
		f.mu.Unlock()
		f.recordMiss()
		return nil, false
	}

	f.recordHit()
	return e.value, true
}

// Put inserts or overwrites a key with the cache's default TTL, evicting the
// oldest key by insertion order if MaxSize would be exceeded.
func (f *Fresh) Put(key Key, value interface{}) {
	f.PutWithTTL(key, value, f.cfg.DefaultTTL)
}

// PutWithTTL is Put with an explicit TTL override.
func (f *Fresh) PutWithTTL(key Key, value interface{}, ttl time.Duration) {
	k := key.String()

	f.mu.Lock()
	defer f.mu.Unlock()

	_, existed := f.data[k]
	f.data[k] = entry{value: value, expiresAt: time.Now().Add(ttl)}
	if !existed {
		f.order = append(f.order, k)
	}
	f.puts++
	f.cfg.fire(EventPut)

	if f.cfg.MaxSize > 0 {
		for len(f.data) > f.cfg.MaxSize {
			f.evictOldestLocked()
		}
	}
}

// evictOldestLocked removes the oldest key by insertion order. Caller must
// hold f.mu.
func (f *Fresh) evictOldestLocked() {
	if len(f.order) == 0 {
		return
	}
	oldest := f.order[0]
	f.order = f.order[1:]
	if _, ok := f.data[oldest]; ok {
		delete(f.data, oldest)
		f.evictions++
		f.cfg.fire(EventEvict)
	}
}

func (f *Fresh) removeFromOrder(k string) {
	for i, ok := range f.order {
		if ok == k {
			f.order = append(f.order[:i], f.order[i+1:]...)
			return
		}
	}
}

// Invalidate applies the cache's configured InvalidationStrategy following
// a successful write to writtenKey of the given resource kind.
func (f *Fresh) Invalidate(writtenKey Key, resourceKind ResourceKind) {
	switch f.cfg.Strategy {
	case InvalidateNever:
		return
	case InvalidateWriteThrough:
		f.remove(writtenKey)
	case InvalidateWriteBack:
		f.remove(writtenKey)
		f.removeListKeysOf(resourceKind)
	case InvalidateTypeBased:
		f.removeListKeysOf(resourceKind)
	}
}

func (f *Fresh) remove(key Key) {
	k := key.String()
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[k]; ok {
		delete(f.data, k)
		f.removeFromOrder(k)
		f.invalidations++
		f.cfg.fire(EventInvalidate)
	}
}

// removeListKeysOf removes every cached list key belonging to the list kind
// paired with resourceKind (site -> site_list, device -> device_list).
func (f *Fresh) removeListKeysOf(resourceKind ResourceKind) {
	listKind := KindSiteList
	if resourceKind == KindDevice {
		listKind = KindDeviceList
	}
	prefix := string(listKind) + ":"

	f.mu.Lock()
	defer f.mu.Unlock()
	for k := range f.data {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(f.data, k)
			f.removeFromOrder(k)
			f.invalidations++
			f.cfg.fire(EventInvalidate)
		}
	}
}

// Snapshot returns a consistent by-value read of this cache's counters.
func (f *Fresh) Snapshot() Snapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return Snapshot{
		Hits:          f.hits,
		Misses:        f.misses,
		Puts:          f.puts,
		Evictions:     f.evictions,
		Invalidations: f.invalidations,
	}
}

func (f *Fresh) recordHit() {
	if !f.cfg.MetricsEnabled {
		return
	}
	f.mu.Lock()
	f.hits++
	f.mu.Unlock()
	f.cfg.fire(EventHit)
}

func (f *Fresh) recordMiss() {
	if !f.cfg.MetricsEnabled {
		return
	}
	f.mu.Lock()
	f.misses++
	f.mu.Unlock()
	f.cfg.fire(EventMiss)
}
