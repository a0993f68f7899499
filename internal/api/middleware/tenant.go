package middleware

import (
	"context"
	"net/http"

	apierrors "github.com/vitaliisemenov/netgate/internal/api/errors"
)

// RequireTenant rejects requests missing (or carrying an empty) X-Tenant-Id
// header with 401, and stores the header value on the request context for
// handlers to read (spec §6's tenant header requirement).
func RequireTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenantID := r.Header.Get(TenantHeader)
		if tenantID == "" {
			err := apierrors.NewAPIError(apierrors.CodeUnauthorized, "missing "+TenantHeader+" header").
				WithRequestID(GetRequestID(r.Context()))
			apierrors.WriteError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), TenantContextKey, tenantID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// TenantFromContext reads the tenant id RequireTenant stashed, or "" if
// absent.
func TenantFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(TenantContextKey).(string); ok {
		return id
	}
	return ""
}
