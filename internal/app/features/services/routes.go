// internal/app/features/services/routes.go
package services

import (
	"github.com/acuerdohq/acuerdo/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the subrouter for /services. Every route runs behind
// credential verification.
func Routes(h *Handler, am *auth.Manager) chi.Router {
	r := chi.NewRouter()
	r.Use(am.LoadUser, am.RequireUser)

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Post("/join", h.Join)

	r.Route("/{serviceID}", func(r chi.Router) {
		r.Get("/", h.Detail)
		r.Put("/agreement", h.ProposeTerms)
		r.Post("/accept", h.Accept)
	})

	return r
}
