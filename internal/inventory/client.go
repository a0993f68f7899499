// Package inventory is the raw Inventory transport (spec §4.C1): typed CRUD
// operations over sites and devices, translating HTTP responses into
// resilience.GatewayError values the rest of the Gateway can classify and
// retry.
package inventory

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vitaliisemenov/netgate/internal/core/domain"
	"github.com/vitaliisemenov/netgate/internal/core/resilience"
)

const apiRoot = "/api"

// Client is a thin, retry-free HTTP client for the Inventory's DCIM API.
// Retries, circuit breaking, caching, and metrics are layered on top of it
// by the Resilient Client (C6); Client itself only knows how to shape and
// parse one request at a time.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// New constructs a Client. Construction fails with a KindUnauthorized
// GatewayError if token is empty — a Gateway with no token still starts
// (health/metrics still work), but no Client is wired into the pipeline.
func New(baseURL, token string, timeout time.Duration) (*Client, error) {
	if token == "" {
		return nil, resilience.NewGatewayError(resilience.KindUnauthorized, "inventory token is empty", nil)
	}

	if _, err := url.Parse(baseURL); err != nil {
		return nil, resilience.NewGatewayError(resilience.KindInternal, "malformed inventory base URL", err)
	}

	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     30 * time.Second,
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   5 * time.Second,
				ResponseHeaderTimeout: timeout,
			},
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
	}, nil
}

func (c *Client) url(path string) string {
	return c.baseURL + apiRoot + path
}

// do executes one HTTP request, decoding a JSON body into out (if out is
// non-nil and the response carries one). Status codes map onto the taxonomy
// in spec §4.C1.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return resilience.NewGatewayError(resilience.KindInternal, "failed to marshal request body", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return resilience.NewGatewayError(resilience.KindInternal, "failed to build request", err)
	}
	req.Header.Set("Authorization", "Token "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return resilience.NewGatewayError(resilience.KindUpstream, "inventory request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resilience.NewGatewayError(resilience.KindUpstream, "failed to read inventory response", err)
	}

	if err := statusToError(resp.StatusCode, respBody); err != nil {
		return err
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return resilience.NewGatewayError(resilience.KindInternal, "failed to decode inventory response", err)
	}
	return nil
}

// statusToError maps an HTTP status code to a GatewayError per spec's table.
// 2xx returns nil.
func statusToError(status int, body []byte) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == 401 || status == 403:
		return resilience.NewGatewayError(resilience.KindUnauthorized, fmt.Sprintf("inventory rejected credentials (HTTP %d)", status), nil)
	case status == 404:
		return resilience.NewGatewayError(resilience.KindNotFound, "resource not found in inventory", nil)
	case status == 400 || status == 422:
		return resilience.NewGatewayError(resilience.KindValidation, fmt.Sprintf("inventory rejected request: %s", string(body)), nil)
	case status >= 500:
		return resilience.NewGatewayError(resilience.KindUpstream, fmt.Sprintf("inventory returned HTTP %d", status), nil)
	default:
		return resilience.NewGatewayError(resilience.KindUpstream, fmt.Sprintf("unexpected inventory status HTTP %d", status), nil)
	}
}

// CreateSite issues POST /api/dcim/sites/.
func (c *Client) CreateSite(ctx context.Context, req domain.CreateSiteRequest) (domain.Site, error) {
	var site domain.Site
	err := c.do(ctx, http.MethodPost, "/dcim/sites/", req, &site)
	return site, err
}

// GetSite issues GET /api/dcim/sites/{id}/.
func (c *Client) GetSite(ctx context.Context, id int) (domain.Site, error) {
	var site domain.Site
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/dcim/sites/%d/", id), nil, &site)
	return site, err
}

// ListSites issues GET /api/dcim/sites/ with optional tenant/limit/offset
// query parameters.
func (c *Client) ListSites(ctx context.Context, q domain.ListSitesQuery) (domain.SiteListPage, error) {
	var page domain.SiteListPage
	err := c.do(ctx, http.MethodGet, "/dcim/sites/"+buildQuery(q.Tenant, q.Limit, q.Offset), nil, &page)
	return page, err
}

// UpdateSite issues PATCH /api/dcim/sites/{id}/.
func (c *Client) UpdateSite(ctx context.Context, id int, req domain.UpdateSiteRequest) (domain.Site, error) {
	var site domain.Site
	err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/dcim/sites/%d/", id), req, &site)
	return site, err
}

// DeleteSite issues DELETE /api/dcim/sites/{id}/.
func (c *Client) DeleteSite(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/dcim/sites/%d/", id), nil, nil)
}

// CreateDevice issues POST /api/dcim/devices/.
func (c *Client) CreateDevice(ctx context.Context, req domain.CreateDeviceRequest) (domain.Device, error) {
	var device domain.Device
	err := c.do(ctx, http.MethodPost, "/dcim/devices/", req, &device)
	return device, err
}

// GetDevice issues GET /api/dcim/devices/{id}/.
func (c *Client) GetDevice(ctx context.Context, id int) (domain.Device, error) {
	var device domain.Device
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/dcim/devices/%d/", id), nil, &device)
	return device, err
}

// ListDevices issues GET /api/dcim/devices/ with optional site/tenant/limit/
// offset query parameters.
func (c *Client) ListDevices(ctx context.Context, q domain.ListDevicesQuery) (domain.DeviceListPage, error) {
	var page domain.DeviceListPage
	err := c.do(ctx, http.MethodGet, "/dcim/devices/"+buildDeviceQuery(q), nil, &page)
	return page, err
}

// UpdateDevice issues PATCH /api/dcim/devices/{id}/.
func (c *Client) UpdateDevice(ctx context.Context, id int, req domain.UpdateDeviceRequest) (domain.Device, error) {
	var device domain.Device
	err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/dcim/devices/%d/", id), req, &device)
	return device, err
}

// DeleteDevice issues DELETE /api/dcim/devices/{id}/.
func (c *Client) DeleteDevice(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/dcim/devices/%d/", id), nil, nil)
}

func buildQuery(tenant, limit, offset *int) string {
	v := url.Values{}
	if tenant != nil {
		v.Set("tenant_id", fmt.Sprintf("%d", *tenant))
	}
	if limit != nil {
		v.Set("limit", fmt.Sprintf("%d", *limit))
	}
	if offset != nil {
		v.Set("offset", fmt.Sprintf("%d", *offset))
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

func buildDeviceQuery(q domain.ListDevicesQuery) string {
	v := url.Values{}
	if q.Site != nil {
		v.Set("site_id", fmt.Sprintf("%d", *q.Site))
	}
	if q.Tenant != nil {
		v.Set("tenant_id", fmt.Sprintf("%d", *q.Tenant))
	}
	if q.Limit != nil {
		v.Set("limit", fmt.Sprintf("%d", *q.Limit))
	}
	if q.Offset != nil {
		v.Set("offset", fmt.Sprintf("%d", *q.Offset))
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}
