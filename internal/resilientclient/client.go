// Package resilientclient implements the Resilient Client (spec §4.C6): a
// typed façade composing the Inventory Transport (C1), Retry Engine (C2),
// Circuit Breaker (C3), API Metrics (C4), and Degradation Cache (C5) into
// one client the Tenant Access Layer calls through.
package resilientclient

import (
	"context"
	"log/slog"
	"time"

	"github.com/vitaliisemenov/netgate/internal/cache"
	"github.com/vitaliisemenov/netgate/internal/core/domain"
	"github.com/vitaliisemenov/netgate/internal/core/resilience"
	"github.com/vitaliisemenov/netgate/internal/inventory"
	"github.com/vitaliisemenov/netgate/pkg/metrics"
)

// Client composes C1-C5 behind one interface. A nil *inventory.Client is
// valid (e.g. when INVENTORY_TOKEN is unset) — every call then fails
// immediately with KindUnavailable without touching the breaker, so
// health/metrics endpoints still function.
type Client struct {
	transport   *inventory.Client
	breaker     *resilience.CircuitBreaker
	retryPolicy resilience.RetryPolicy
	degradation *cache.Degradation
	metrics     *metrics.Registry
	logger      *slog.Logger
}

// New constructs a Resilient Client. transport may be nil.
func New(transport *inventory.Client, breaker *resilience.CircuitBreaker, retryPolicy resilience.RetryPolicy, degradation *cache.Degradation, reg *metrics.Registry, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		transport:   transport,
		breaker:     breaker,
		retryPolicy: retryPolicy,
		degradation: degradation,
		metrics:     reg,
		logger:      logger,
	}
}

// readThrough implements the four-step read flow from spec §4.C6, generic
// over the result type. fetch is the C1 call (already bound to its
// arguments); degradationGet/degradationPut access the right degradation
// cache slot for this resource.
func readThrough[T any](ctx context.Context, c *Client, fetch func(context.Context) (T, error), degradationGet func() (interface{}, bool), degradationPut func(T)) (T, error) {
	var zero T

	if c.transport == nil {
		if v, ok := degradationGet(); ok {
			return v.(T), nil
		}
		return zero, resilience.NewGatewayError(resilience.KindUnavailable, "inventory integration is not configured", nil)
	}

	if !c.breaker.Allow() {
		c.metrics.RecordBreakerRejection()
		if v, ok := degradationGet(); ok {
			c.logger.Warn("breaker open, served from degradation cache")
			return v.(T), nil
		}
		return zero, resilience.NewGatewayError(resilience.KindUnavailable, "circuit breaker open and no cached value available", nil)
	}

	c.metrics.RecordRequestStart()
	start := time.Now()

	policy := c.retryPolicy
	policy.Logger = c.logger
	policy.OnRetry = c.metrics.RecordRetry
	result, err := resilience.WithRetryFunc(ctx, policy, func() (T, error) { return fetch(ctx) })

	duration := time.Since(start)

	if err == nil {
		c.breaker.RecordSuccess()
		c.metrics.RecordSuccess(duration)
		degradationPut(result)
		return result, nil
	}

	c.breaker.RecordFailure()
	c.metrics.RecordFailure(duration, resilience.ClassifyError(err))

	if v, ok := degradationGet(); ok {
		c.logger.Warn("live read failed, served from degradation cache", "error", err)
		return v.(T), nil
	}
	return zero, err
}

// writeThrough implements the write flow: same breaker/retry/metrics
// bookkeeping as readThrough but never falls back to the degradation
// cache on failure; callers see the real error.
func writeThrough[T any](ctx context.Context, c *Client, write func(context.Context) (T, error), onSuccess func(T)) (T, error) {
	var zero T

	if c.transport == nil {
		return zero, resilience.NewGatewayError(resilience.KindUnavailable, "inventory integration is not configured", nil)
	}

	if !c.breaker.Allow() {
		c.metrics.RecordBreakerRejection()
		return zero, resilience.NewGatewayError(resilience.KindUnavailable, "circuit breaker open", nil)
	}

	c.metrics.RecordRequestStart()
	start := time.Now()

	policy := c.retryPolicy
	policy.Logger = c.logger
	policy.OnRetry = c.metrics.RecordRetry
	result, err := resilience.WithRetryFunc(ctx, policy, func() (T, error) { return write(ctx) })

	duration := time.Since(start)

	if err == nil {
		c.breaker.RecordSuccess()
		c.metrics.RecordSuccess(duration)
		if onSuccess != nil {
			onSuccess(result)
		}
		return result, nil
	}

	c.breaker.RecordFailure()
	c.metrics.RecordFailure(duration, resilience.ClassifyError(err))
	return zero, err
}

// Configured reports whether an upstream transport is wired in. False when
// INVENTORY_TOKEN was left unset at startup.
func (c *Client) Configured() bool {
	return c.transport != nil
}

// BreakerState reports the circuit breaker's current state and consecutive
// failure count, for the health endpoint. A nil transport (no breaker
// configured) reports "closed"/0 since there is nothing to trip.
func (c *Client) BreakerState() (string, int) {
	if c.transport == nil {
		return resilience.StateClosed.String(), 0
	}
	return c.breaker.State().String(), c.breaker.FailureCount()
}

// GetSite reads a site through the full resilience stack.
func (c *Client) GetSite(ctx context.Context, id int) (domain.Site, error) {
	return readThrough(ctx, c,
		func(ctx context.Context) (domain.Site, error) { return c.transport.GetSite(ctx, id) },
		func() (interface{}, bool) { return c.degradation.GetSite(id) },
		func(s domain.Site) { c.degradation.PutSite(id, s) },
	)
}

// ListSites lists sites through the full resilience stack.
func (c *Client) ListSites(ctx context.Context, q domain.ListSitesQuery) (domain.SiteListPage, error) {
	queryKey := cache.SiteListKey(q).String()
	return readThrough(ctx, c,
		func(ctx context.Context) (domain.SiteListPage, error) { return c.transport.ListSites(ctx, q) },
		func() (interface{}, bool) { return c.degradation.GetSiteList(queryKey) },
		func(p domain.SiteListPage) { c.degradation.PutSiteList(queryKey, p) },
	)
}

// CreateSite creates a site. On success the created resource also
// populates the single-site degradation slot so a subsequent get can fall
// back to it.
func (c *Client) CreateSite(ctx context.Context, req domain.CreateSiteRequest) (domain.Site, error) {
	return writeThrough(ctx, c,
		func(ctx context.Context) (domain.Site, error) { return c.transport.CreateSite(ctx, req) },
		func(s domain.Site) {
			if s.ID != nil {
				c.degradation.PutSite(*s.ID, s)
			}
		},
	)
}

// UpdateSite updates a site.
func (c *Client) UpdateSite(ctx context.Context, id int, req domain.UpdateSiteRequest) (domain.Site, error) {
	return writeThrough(ctx, c,
		func(ctx context.Context) (domain.Site, error) { return c.transport.UpdateSite(ctx, id, req) },
		func(s domain.Site) { c.degradation.PutSite(id, s) },
	)
}

// DeleteSite deletes a site.
func (c *Client) DeleteSite(ctx context.Context, id int) error {
	_, err := writeThrough(ctx, c,
		func(ctx context.Context) (struct{}, error) { return struct{}{}, c.transport.DeleteSite(ctx, id) },
		nil,
	)
	return err
}

// GetDevice reads a device through the full resilience stack.
func (c *Client) GetDevice(ctx context.Context, id int) (domain.Device, error) {
	return readThrough(ctx, c,
		func(ctx context.Context) (domain.Device, error) { return c.transport.GetDevice(ctx, id) },
		func() (interface{}, bool) { return c.degradation.GetDevice(id) },
		func(d domain.Device) { c.degradation.PutDevice(id, d) },
	)
}

// ListDevices lists devices through the full resilience stack.
func (c *Client) ListDevices(ctx context.Context, q domain.ListDevicesQuery) (domain.DeviceListPage, error) {
	queryKey := cache.DeviceListKey(q).String()
	return readThrough(ctx, c,
		func(ctx context.Context) (domain.DeviceListPage, error) { return c.transport.ListDevices(ctx, q) },
		func() (interface{}, bool) { return c.degradation.GetDeviceList(queryKey) },
		func(p domain.DeviceListPage) { c.degradation.PutDeviceList(queryKey, p) },
	)
}

// CreateDevice creates a device.
func (c *Client) CreateDevice(ctx context.Context, req domain.CreateDeviceRequest) (domain.Device, error) {
	return writeThrough(ctx, c,
		func(ctx context.Context) (domain.Device, error) { return c.transport.CreateDevice(ctx, req) },
		func(d domain.Device) {
			if d.ID != nil {
				c.degradation.PutDevice(*d.ID, d)
			}
		},
	)
}

// UpdateDevice updates a device.
func (c *Client) UpdateDevice(ctx context.Context, id int, req domain.UpdateDeviceRequest) (domain.Device, error) {
	return writeThrough(ctx, c,
		func(ctx context.Context) (domain.Device, error) { return c.transport.UpdateDevice(ctx, id, req) },
		func(d domain.Device) { c.degradation.PutDevice(id, d) },
	)
}

// DeleteDevice deletes a device.
func (c *Client) DeleteDevice(ctx context.Context, id int) error {
	_, err := writeThrough(ctx, c,
		func(ctx context.Context) (struct{}, error) { return struct{}{}, c.transport.DeleteDevice(ctx, id) },
		nil,
	)
	return err
}
