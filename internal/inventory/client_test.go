package inventory

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitaliisemenov/netgate/internal/core/domain"
	"github.com/vitaliisemenov/netgate/internal/core/resilience"
)

func TestNewRejectsEmptyToken(t *testing.T) {
	_, err := New("http://localhost:8000", "", 0)
	require.Error(t, err)
	var gerr *resilience.GatewayError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, resilience.KindUnauthorized, gerr.Kind)
}

func TestCreateSiteSendsAuthHeaderAndTrimsBaseURL(t *testing.T) {
	var gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(domain.Site{Name: "Test Site"})
	}))
	defer srv.Close()

	c, err := New(srv.URL+"/", "secret-token", 0)
	require.NoError(t, err)

	site, err := c.CreateSite(t.Context(), domain.CreateSiteRequest{Name: "Test Site"})
	require.NoError(t, err)
	assert.Equal(t, "Test Site", site.Name)
	assert.Equal(t, "Token secret-token", gotAuth)
	assert.Equal(t, "/api/dcim/sites/", gotPath)
}

func TestGetSiteMapsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c, err := New(srv.URL, "token", 0)
	require.NoError(t, err)

	_, err = c.GetSite(t.Context(), 999)
	require.Error(t, err)
	var gerr *resilience.GatewayError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, resilience.KindNotFound, gerr.Kind)
}

func TestGetSiteMapsUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c, err := New(srv.URL, "token", 0)
	require.NoError(t, err)

	_, err = c.GetSite(t.Context(), 1)
	require.Error(t, err)
	var gerr *resilience.GatewayError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, resilience.KindUnauthorized, gerr.Kind)
}

func TestGetSiteMapsServerErrorToUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := New(srv.URL, "token", 0)
	require.NoError(t, err)

	_, err = c.GetSite(t.Context(), 1)
	require.Error(t, err)
	var gerr *resilience.GatewayError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, resilience.KindUpstream, gerr.Kind)
	assert.True(t, gerr.Kind.IsRetryableKind())
}

func TestGetSiteMapsValidationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"bad input"}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL, "token", 0)
	require.NoError(t, err)

	_, err = c.GetSite(t.Context(), 1)
	require.Error(t, err)
	var gerr *resilience.GatewayError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, resilience.KindValidation, gerr.Kind)
}

func TestListSitesBuildsQueryString(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode(domain.SiteListPage{Count: 0, Results: []domain.Site{}})
	}))
	defer srv.Close()

	c, err := New(srv.URL, "token", 0)
	require.NoError(t, err)

	tenant, limit := 10, 20
	_, err = c.ListSites(t.Context(), domain.ListSitesQuery{Tenant: &tenant, Limit: &limit})
	require.NoError(t, err)
	assert.Contains(t, gotQuery, "tenant_id=10")
	assert.Contains(t, gotQuery, "limit=20")
}

func TestDeleteSiteSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c, err := New(srv.URL, "token", 0)
	require.NoError(t, err)
	require.NoError(t, c.DeleteSite(t.Context(), 1))
}
