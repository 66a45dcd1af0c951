/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Request logging
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for frontend
  5. httprate:   Per-IP request limit on /api (RouterOptions.RateLimit)

ROUTE GROUPS:
  /api/arrears/*        Compute, save, list, export
  /api/reference/*      Pay matrix and DA history
  /api/scenarios/*      Demo scenarios
  /healthz              Liveness

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

// RouterOptions configures the middleware stack.
type RouterOptions struct {
	CORSOrigins []string
	// RateLimit is requests per minute per client IP on /api; 0 disables it.
	RateLimit int
}

// DefaultRouterOptions matches the configuration defaults.
func DefaultRouterOptions() RouterOptions {
	return RouterOptions{
		CORSOrigins: []string{"http://localhost:5173", "http://localhost:8080"},
		RateLimit:   60,
	}
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", h.Health)

	// API routes
	r.Route("/api", func(r chi.Router) {
		if opts.RateLimit > 0 {
			r.Use(httprate.LimitByIP(opts.RateLimit, time.Minute))
		}

		// Arrear routes
		r.Route("/arrears", func(r chi.Router) {
			r.Get("/", h.ListArrears)
			r.Post("/", h.CreateArrear)
			r.Post("/preview", h.PreviewArrear)
			r.Get("/{id}", h.GetArrear)
			r.Delete("/{id}", h.DeleteArrear)
			r.Get("/{id}/export", h.ExportArrear)
		})

		// Reference data routes
		r.Route("/reference", func(r chi.Router) {
			r.Get("/pay-matrix", h.GetPayMatrix)
			r.Get("/pay-matrix/export", h.ExportPayMatrix)
			r.Get("/da-rates", h.GetDARates)
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Post("/{id}/run", h.RunScenario)
		})
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Salary Arrear Engine</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Salary Arrear Engine API</h1>
<h2>API Endpoints</h2>
<ul>
<li><a href="/api/arrears">/api/arrears</a> - Saved reports</li>
<li><a href="/api/reference/pay-matrix">/api/reference/pay-matrix</a> - Pay matrix</li>
<li><a href="/api/reference/da-rates">/api/reference/da-rates</a> - DA history</li>
<li><a href="/api/scenarios">/api/scenarios</a> - Demo scenarios</li>
</ul>
</body>
</html>`))
	})

	return r
}
