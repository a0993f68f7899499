package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitaliisemenov/netgate/internal/core/domain"
)

func TestFreshPutThenGetHits(t *testing.T) {
	c := NewFresh(FreshConfig{DefaultTTL: time.Minute, MetricsEnabled: true})
	c.Put(SiteKey(1), "site-1")

	v, ok := c.Get(SiteKey(1))
	require.True(t, ok)
	assert.Equal(t, "site-1", v)
	assert.EqualValues(t, 1, c.Snapshot().Hits)
}

func TestFreshMissOnUnknownKey(t *testing.T) {
	c := NewFresh(FreshConfig{DefaultTTL: time.Minute, MetricsEnabled: true})
	_, ok := c.Get(SiteKey(99))
	assert.False(t, ok)
	assert.EqualValues(t, 1, c.Snapshot().Misses)
}

func TestFreshEntryExpiresLazily(t *testing.T) {
	c := NewFresh(FreshConfig{DefaultTTL: time.Millisecond})
	c.Put(SiteKey(1), "site-1")
	time.Sleep(5 * time.Millisecond)

	_, ok := c.Get(SiteKey(1))
	assert.False(t, ok)
}

func TestFreshRespectsMaxSizeWithFIFOEviction(t *testing.T) {
	c := NewFresh(FreshConfig{DefaultTTL: time.Minute, MaxSize: 2, MetricsEnabled: true})
	c.Put(SiteKey(1), "a")
	c.Put(SiteKey(2), "b")
	c.Put(SiteKey(3), "c")

	_, ok1 := c.Get(SiteKey(1))
	assert.False(t, ok1, "oldest key should have been evicted")

	_, ok2 := c.Get(SiteKey(2))
	_, ok3 := c.Get(SiteKey(3))
	assert.True(t, ok2)
	assert.True(t, ok3)
	assert.EqualValues(t, 1, c.Snapshot().Evictions)
}

func TestFreshInvalidateWriteThroughClearsOnlySingleKey(t *testing.T) {
	c := NewFresh(FreshConfig{DefaultTTL: time.Minute, Strategy: InvalidateWriteThrough})
	c.Put(SiteKey(1), "a")
	c.Put(Key{Kind: KindSiteList, Query: "q"}, "list")

	c.Invalidate(SiteKey(1), KindSite)

	_, okSite := c.Get(SiteKey(1))
	_, okList := c.Get(Key{Kind: KindSiteList, Query: "q"})
	assert.False(t, okSite)
	assert.True(t, okList)
}

func TestFreshInvalidateWriteBackClearsKeyAndListKeys(t *testing.T) {
	c := NewFresh(FreshConfig{DefaultTTL: time.Minute, Strategy: InvalidateWriteBack})
	c.Put(SiteKey(1), "a")
	c.Put(Key{Kind: KindSiteList, Query: "q1"}, "l1")
	c.Put(Key{Kind: KindSiteList, Query: "q2"}, "l2")
	c.Put(DeviceKey(5), "d")

	c.Invalidate(SiteKey(1), KindSite)

	_, okSite := c.Get(SiteKey(1))
	_, okL1 := c.Get(Key{Kind: KindSiteList, Query: "q1"})
	_, okL2 := c.Get(Key{Kind: KindSiteList, Query: "q2"})
	_, okDevice := c.Get(DeviceKey(5))

	assert.False(t, okSite)
	assert.False(t, okL1)
	assert.False(t, okL2)
	assert.True(t, okDevice, "device keys must not be touched by a site invalidation")
}

func TestFreshInvalidateNeverClearsNothing(t *testing.T) {
	c := NewFresh(FreshConfig{DefaultTTL: time.Minute, Strategy: InvalidateNever})
	c.Put(SiteKey(1), "a")
	c.Invalidate(SiteKey(1), KindSite)
	_, ok := c.Get(SiteKey(1))
	assert.True(t, ok)
}

func TestFreshAbsentVsZeroFilterDoNotCollide(t *testing.T) {
	absent := SiteListKey(domain.ListSitesQuery{})
	zero := 0
	explicit := SiteListKey(domain.ListSitesQuery{Tenant: &zero})
	assert.NotEqual(t, absent.String(), explicit.String())
}
