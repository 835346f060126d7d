package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pantry/internal/handlers"
	applog "pantry/internal/log"
)

const requestIDHeader = "X-Request-ID"

type route struct {
	path    string
	handler http.Handler
}

func newRouter(metrics MetricsConfig) http.Handler {
	mux := http.NewServeMux()
	applog.Debug(context.Background(), "registering http routes")

	app := handlers.RequireAuthentication(http.HandlerFunc(handlers.App))
	routes := []route{
		{"/healthz", http.HandlerFunc(handlers.Health)},
		{"/login", http.HandlerFunc(handlers.Login)},
		{"/logout", http.HandlerFunc(handlers.Logout)},
		{"/app", app},
		{"/app/customers", handlers.RequireAuthentication(http.HandlerFunc(handlers.Customers))},
		{"/app/customers/select", handlers.RequireAuthentication(http.HandlerFunc(handlers.SelectCustomer))},
		{"/app/api/recipe-ingredients/", http.HandlerFunc(handlers.RecipeIngredientResource)},
	}
	resources := map[string]http.Handler{
		"/app/api/recipes":         handlers.RecipeResource,
		"/app/api/vendors":         handlers.VendorResource,
		"/app/api/ingredients":     handlers.IngredientResource,
		"/app/api/components":      handlers.ComponentResource,
		"/app/api/nutrition":       handlers.NutritionResource,
		"/app/api/meal-categories": handlers.MealCategoryResource,
		"/app/api/serving-sizes":   handlers.ServingSizeResource,
	}
	for prefix, handler := range resources {
		routes = append(routes, route{prefix, handler}, route{prefix + "/", handler})
	}
	if metrics.Enabled {
		routes = append(routes, route{metrics.Path, promhttp.Handler()})
	}

	for _, r := range routes {
		mux.Handle(r.path, r.handler)
		applog.Debug(context.Background(), "route registered", "path", r.path)
	}
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, "/app", http.StatusSeeOther)
	})
	return mux
}

// withRequestID tags every request with an id, reusing a sane inbound
// X-Request-ID when present, and echoes it on the response.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(applog.WithRequestID(r.Context(), id)))
	})
}
