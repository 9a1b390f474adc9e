// internal/app/features/authn/routes.go
package authn

import (
	"github.com/acuerdohq/acuerdo/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the subrouter for /auth.
func Routes(h *Handler, am *auth.Manager) chi.Router {
	r := chi.NewRouter()

	r.Post("/signup", h.Signup)
	r.Post("/login", h.Login)

	r.Group(func(r chi.Router) {
		r.Use(am.LoadUser)
		r.Post("/logout", h.Logout)
	})

	return r
}

// MeRoutes returns the subrouter for /me.
func MeRoutes(h *Handler, am *auth.Manager) chi.Router {
	r := chi.NewRouter()
	r.Use(am.LoadUser, am.RequireUser)
	r.Get("/", h.Me)
	return r
}
