package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/shopfront/pkg/router"
)

func ok(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func tag(value string) router.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("X-Chain", value)
			next.ServeHTTP(w, r)
		})
	}
}

func TestGroupPrefixAndMiddlewareOrder(t *testing.T) {
	r := router.New()
	api := r.Group("/api", tag("api"))
	orders := api.Group("orders", tag("orders"))
	orders.Put("/{id}/status", "orders.status", ok, tag("route"))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/orders/7/status", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"api", "orders", "route"}, rec.Header().Values("X-Chain"))
}

func TestNamedRouteURL(t *testing.T) {
	r := router.New()
	r.Group("/api/products").Get("/{id}", "products.show", ok)

	url, err := r.URL("products.show", map[string]string{"id": "abc"})
	require.NoError(t, err)
	assert.Equal(t, "/api/products/abc", url)

	_, err = r.URL("products.show", nil)
	assert.Error(t, err)

	_, err = r.URL("missing", nil)
	assert.Error(t, err)
}

func TestRoutesSorted(t *testing.T) {
	r := router.New()
	g := r.Group("/api/categories")
	g.Delete("/{id}", "categories.delete", ok)
	g.Get("/", "categories.index", ok)
	g.Post("/", "categories.store", ok)
	r.Get("/health", "", ok)

	routes := r.Routes()
	require.Len(t, routes, 4)
	assert.Equal(t, router.RouteInfo{Method: http.MethodGet, Path: "/api/categories", Name: "categories.index"}, routes[0])
	assert.Equal(t, http.MethodPost, routes[1].Method)
	assert.Equal(t, "/api/categories/{id}", routes[2].Path)
	assert.Equal(t, "/health", routes[3].Path)
}
