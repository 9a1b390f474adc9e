// internal/app/features/services/list.go
package services

import (
	"net/http"

	"github.com/acuerdohq/acuerdo/internal/app/system/auth"
	"github.com/acuerdohq/acuerdo/internal/app/system/httpjson"
)

// List handles GET /services: every service the user is a party to,
// newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Unauthenticated(w)
		return
	}

	list, err := h.Engine.ListForUser(r.Context(), id.UserID)
	if err != nil {
		h.ErrLog.Domain(w, r, err)
		return
	}

	httpjson.Respond(w, http.StatusOK, listResponse{Services: viewsOf(list, id.UserID)})
}
