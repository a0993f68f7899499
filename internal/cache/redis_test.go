package cache

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisFresh(t *testing.T, cfg FreshConfig) *RedisFresh {
	t.Helper()
	mr := miniredis.RunT(t)
	rf, err := NewRedisFresh(RedisConfig{Addr: mr.Addr()}, cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { rf.Close() })
	return rf
}

func TestRedisFreshPutThenGetHits(t *testing.T) {
	rf := newTestRedisFresh(t, FreshConfig{DefaultTTL: time.Minute})
	require.NoError(t, rf.Put(t.Context(), SiteKey(1), "site-1"))

	var dest string
	ok, err := rf.Get(t.Context(), SiteKey(1), &dest)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "site-1", dest)
}

func TestRedisFreshMissReturnsFalse(t *testing.T) {
	rf := newTestRedisFresh(t, FreshConfig{DefaultTTL: time.Minute})
	var dest string
	ok, err := rf.Get(t.Context(), SiteKey(99), &dest)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisFreshInvalidateWriteBackClearsListKeys(t *testing.T) {
	rf := newTestRedisFresh(t, FreshConfig{DefaultTTL: time.Minute, Strategy: InvalidateWriteBack})
	require.NoError(t, rf.Put(t.Context(), SiteKey(1), "a"))
	require.NoError(t, rf.Put(t.Context(), Key{Kind: KindSiteList, Query: "q"}, "list"))

	require.NoError(t, rf.Invalidate(t.Context(), SiteKey(1), KindSite))

	var dest string
	okSite, _ := rf.Get(t.Context(), SiteKey(1), &dest)
	okList, _ := rf.Get(t.Context(), Key{Kind: KindSiteList, Query: "q"}, &dest)
	assert.False(t, okSite)
	assert.False(t, okList)
}
