// internal/app/features/authn/logout.go
package authn

import (
	"net/http"

	"github.com/acuerdohq/acuerdo/internal/app/system/httpjson"
)

// Logout handles POST /auth/logout. It revokes the current credential and
// clears the cookie; calling it without a valid session still succeeds.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Auth.ClearSession(r.Context(), w, r)
	httpjson.Respond(w, http.StatusOK, map[string]string{"status": "signed out"})
}
