/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for a local frontend
  5. RateLimit:  Per-IP token bucket
  6. CacheGET:   Short-TTL cache over read endpoints

SEE ALSO:
  - handlers.go: handler implementations
  - cmd/server/main.go: server startup
*/
package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// RouterOptions tunes the middleware stack.
type RouterOptions struct {
	AllowedOrigins  []string
	RateLimitPerSec float64
	RateLimitBurst  int
	CacheTTL        time.Duration
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	if opts.RateLimitPerSec > 0 {
		r.Use(RateLimit(rate.Limit(opts.RateLimitPerSec), opts.RateLimitBurst))
	}
	if opts.CacheTTL > 0 {
		r.Use(CacheGET(cache.New(opts.CacheTTL, 10*opts.CacheTTL), opts.CacheTTL))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Route("/contracts", func(r chi.Router) {
			r.Get("/", h.ListContracts)
			r.Post("/", h.CreateContract)
			r.Get("/{id}", h.GetContract)
			r.Put("/{id}", h.UpdateContract)
			r.Get("/{id}/occurrences", h.ContractOccurrences)
			r.Get("/{id}/payroll", h.ContractPayroll)
		})

		r.Route("/occurrences", func(r chi.Router) {
			r.Get("/", h.OccurrencesInRange)
			r.Post("/", h.CreateManualOccurrence)
			r.Post("/{id}/complete", h.CompleteOccurrence)
		})

		r.Route("/audit", func(r chi.Router) {
			r.Get("/", h.AuditAll)
			r.Get("/{id}", h.AuditContract)
		})
	})

	return r
}
