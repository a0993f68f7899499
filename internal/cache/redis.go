package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures a distributed Fresh cache backend. This is the
// optional deployment the spec's Fresh Cache component can be backed by
// when multiple Gateway instances need to share one cache (the in-memory
// Fresh is the default, single-process backend).
type RedisConfig struct {
	Addr     string
	Password string
	DB       int

	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// ErrCacheMiss names a cache miss. RedisFresh.Get does not return it: a
// miss is reported as (false, nil), mirroring Fresh's bool-ok return.
var ErrCacheMiss = errors.New("cache: key not found")

// RedisFresh is a Redis-backed Fresh cache. It implements the same
// invalidation-strategy semantics as Fresh but stores entries remotely as
// JSON, trading local speed for cross-instance consistency. RedisFresh does
// not enforce MaxSize and performs no FIFO eviction: entries are bounded
// only by their TTL expiry in Redis.
type RedisFresh struct {
	client *redis.Client
	cfg    FreshConfig
	logger *slog.Logger
}

// NewRedisFresh dials Redis and returns a RedisFresh, or an error if the
// initial ping fails.
func NewRedisFresh(redisCfg RedisConfig, cfg FreshConfig, logger *slog.Logger) (*RedisFresh, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = 30 * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:         redisCfg.Addr,
		Password:     redisCfg.Password,
		DB:           redisCfg.DB,
		PoolSize:     redisCfg.PoolSize,
		DialTimeout:  redisCfg.DialTimeout,
		ReadTimeout:  redisCfg.ReadTimeout,
		WriteTimeout: redisCfg.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisFresh{client: client, cfg: cfg, logger: logger}, nil
}

// Get looks up key and decodes its JSON value into dest.
func (r *RedisFresh) Get(ctx context.Context, key Key, dest interface{}) (bool, error) {
	val, err := r.client.Get(ctx, key.String()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			if r.cfg.MetricsEnabled {
				r.cfg.fire(EventMiss)
			}
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, err
	}
	if r.cfg.MetricsEnabled {
		r.cfg.fire(EventHit)
	}
	return true, nil
}

// Put stores value under key with the cache's default TTL.
func (r *RedisFresh) Put(ctx context.Context, key Key, value interface{}) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, key.String(), b, r.cfg.DefaultTTL).Err(); err != nil {
		return err
	}
	r.cfg.fire(EventPut)
	return nil
}

// Invalidate applies the configured InvalidationStrategy remotely.
func (r *RedisFresh) Invalidate(ctx context.Context, writtenKey Key, resourceKind ResourceKind) error {
	switch r.cfg.Strategy {
	case InvalidateNever:
		return nil
	case InvalidateWriteThrough:
		if err := r.client.Del(ctx, writtenKey.String()).Err(); err != nil {
			return err
		}
		r.cfg.fire(EventInvalidate)
		return nil
	case InvalidateWriteBack:
		if err := r.client.Del(ctx, writtenKey.String()).Err(); err != nil {
			return err
		}
		r.cfg.fire(EventInvalidate)
		return r.deleteListKeysOf(ctx, resourceKind)
	case InvalidateTypeBased:
		return r.deleteListKeysOf(ctx, resourceKind)
	}
	return nil
}

func (r *RedisFresh) deleteListKeysOf(ctx context.Context, resourceKind ResourceKind) error {
	listKind := KindSiteList
	if resourceKind == KindDevice {
		listKind = KindDeviceList
	}
	pattern := string(listKind) + ":*"

	iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return err
	}
	for range keys {
		r.cfg.fire(EventInvalidate)
	}
	return nil
}

// Close releases the underlying Redis connection pool.
func (r *RedisFresh) Close() error {
	return r.client.Close()
}
