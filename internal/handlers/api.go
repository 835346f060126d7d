package handlers

import (
	"net/http"
	"strconv"
	"strings"

	applog "pantry/internal/log"
	"pantry/internal/metrics"
	"pantry/internal/tenant"
)

// apiScope checks the preconditions shared by every tenant-scoped API
// handler and returns the request with the customer attached to its log
// context.
func apiScope(w http.ResponseWriter, r *http.Request) (*http.Request, tenant.ID, bool) {
	if database == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "database not configured")
		return r, tenant.None, false
	}
	if _, ok := currentUserID(r); !ok {
		writeJSONError(w, http.StatusUnauthorized, "authentication required")
		return r, tenant.None, false
	}
	customer, err := tenants().Resolve(r.Context())
	if err != nil {
		metrics.TenantRejections.Inc()
		writeJSONError(w, http.StatusUnauthorized, "select a customer first")
		return r, tenant.None, false
	}
	return r.WithContext(applog.WithCustomer(r.Context(), uint(customer))), customer, true
}

// splitID parses "<id>[/<rest>]". ok is false when the id is not a positive
// integer.
func splitID(path string) (id uint, rest string, ok bool) {
	head, rest, _ := strings.Cut(strings.Trim(path, "/"), "/")
	parsed, err := strconv.ParseUint(head, 10, 64)
	if err != nil || parsed == 0 {
		return 0, "", false
	}
	return uint(parsed), strings.Trim(rest, "/"), true
}
