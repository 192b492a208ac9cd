// Package kernel assembles the HTTP handler: global middleware, the
// operational endpoints and the /api route table.
package kernel

import (
	"context"
	"net/http"
	"time"

	"github.com/shashiranjanraj/shopfront/app/controllers"
	"github.com/shashiranjanraj/shopfront/app/routes"
	"github.com/shashiranjanraj/shopfront/pkg/auth"
	"github.com/shashiranjanraj/shopfront/pkg/metrics"
	"github.com/shashiranjanraj/shopfront/pkg/middleware"
	"github.com/shashiranjanraj/shopfront/pkg/reqid"
	"github.com/shashiranjanraj/shopfront/pkg/response"
	"github.com/shashiranjanraj/shopfront/pkg/router"
)

// Options carries what the kernel needs from the bootstrap.
type Options struct {
	Gate        *auth.Gate
	Controllers controllers.Set
	// Health is consulted by GET /health; nil always reports ok.
	Health func(ctx context.Context) error
	// RateLimit is requests per minute per client; zero disables it.
	RateLimit int
}

// NewRouter builds the router with every route registered.
func NewRouter(o Options) *router.Router {
	r := router.New()

	// Global middleware stack (outermost → innermost):
	//  1. Prometheus metrics, for total latency
	//  2. Recovery
	//  3. Request ID, before anything logs
	//  4. Logger
	//  5. Rate limiter
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	if o.RateLimit > 0 {
		r.Use(middleware.RateLimit(o.RateLimit, time.Minute))
	}

	r.HandleFunc("/metrics", metrics.Handler())
	r.HandleFunc("/health", health(o.Health))
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	routes.RegisterAPI(r, o.Gate, o.Controllers)
	return r
}

func health(probe func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if probe != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := probe(ctx); err != nil {
				response.Error(w, http.StatusServiceUnavailable, "Database unavailable")
				return
			}
		}
		response.Success(w, map[string]string{"status": "ok"})
	}
}
