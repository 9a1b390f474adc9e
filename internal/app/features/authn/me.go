// internal/app/features/authn/me.go
package authn

import (
	"net/http"

	"github.com/acuerdohq/acuerdo/internal/app/system/auth"
	"github.com/acuerdohq/acuerdo/internal/app/system/httpjson"
)

// Me handles GET /me. RequireUser guarantees an identity is present.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Unauthenticated(w)
		return
	}
	httpjson.Respond(w, http.StatusOK, userView{
		ID:    id.UserID.Hex(),
		Name:  id.Name,
		Email: id.Email,
	})
}
