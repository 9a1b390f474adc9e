// internal/app/features/services/create.go
package services

import (
	"encoding/json"
	"net/http"

	"github.com/acuerdohq/acuerdo/internal/app/system/auth"
	"github.com/acuerdohq/acuerdo/internal/app/system/httpjson"
)

// Create handles POST /services.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Unauthenticated(w)
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.BadRequest(w, r, "create service: decode body", err)
		return
	}

	svc, err := h.Engine.Create(r.Context(), id.UserID, req.Title)
	if err != nil {
		h.ErrLog.Domain(w, r, err)
		return
	}

	httpjson.Respond(w, http.StatusCreated, viewOf(svc, id.UserID))
}
