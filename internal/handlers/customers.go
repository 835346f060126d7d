package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"pantry/internal/tenant"
	"pantry/internal/views/components"
)

type customerResponse struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Selected bool   `json:"selected"`
}

// Customers lists the customers the signed-in user belongs to. HTMX and
// browser requests receive the selection form, API clients receive JSON.
func Customers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if database == nil {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}
	userID, ok := currentUserID(r)
	if !ok {
		redirectToLogin(w, r)
		return
	}

	customers, err := memberships(r, userID)
	if err != nil {
		writeServiceError(w, r, err, "load customers")
		return
	}
	selected, _ := tenants().Resolve(r.Context())

	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		payload := make([]customerResponse, 0, len(customers))
		for _, customer := range customers {
			payload = append(payload, customerResponse{ID: customer.ID, Name: customer.Name, Selected: tenant.ID(customer.ID) == selected})
		}
		writeJSON(w, http.StatusOK, payload)
		return
	}

	options := make([]components.CustomerOption, 0, len(customers))
	for _, customer := range customers {
		options = append(options, components.CustomerOption{ID: customer.ID, Name: customer.Name, Selected: tenant.ID(customer.ID) == selected})
	}
	renderComponent(w, r, components.CustomerPicker(options))
}

// SelectCustomer switches the session to one of the user's customers.
func SelectCustomer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if database == nil || sessionManager == nil {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}
	userID, ok := currentUserID(r)
	if !ok {
		redirectToLogin(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}
	requested, err := strconv.ParseUint(strings.TrimSpace(r.PostFormValue("customer_id")), 10, 64)
	if err != nil || requested == 0 {
		http.Error(w, "select a customer", http.StatusBadRequest)
		return
	}

	customers, err := memberships(r, userID)
	if err != nil {
		writeServiceError(w, r, err, "load customers")
		return
	}
	for _, customer := range customers {
		if uint64(customer.ID) != requested {
			continue
		}
		if err := sessionManager.RenewToken(r.Context()); err != nil {
			writeServiceError(w, r, err, "switch customer")
			return
		}
		if err := tenants().Select(r.Context(), tenant.ID(customer.ID)); err != nil {
			writeServiceError(w, r, err, "switch customer")
			return
		}
		redirectToApp(w, r)
		return
	}

	// Customers the user does not belong to look the same as missing ones.
	http.NotFound(w, r)
}

// App is the signed-in landing page. It lets the user pick or switch the
// customer they are working for.
func App(w http.ResponseWriter, r *http.Request) {
	Customers(w, r)
}
