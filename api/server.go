/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/summary              Aggregate totals
  /api/debtors/*            Debtor and debt management

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/summary", h.GetSummary)

		r.Route("/debtors", func(r chi.Router) {
			r.Get("/", h.ListDebtors)
			r.Post("/", h.CreateDebtor)

			r.Route("/{name}", func(r chi.Router) {
				r.Get("/", h.GetDebtor)

				r.Route("/debts", func(r chi.Router) {
					r.Post("/", h.CreateDebt)

					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", h.GetDebt)
						r.Patch("/", h.EditDebt)
						r.Post("/payments", h.AddPayment)
						r.Post("/events", h.AddEvent)
						r.Put("/events/{idx}", h.UpdateEvent)
						r.Delete("/events/{idx}", h.DeleteEvent)
					})
				})
			})
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
