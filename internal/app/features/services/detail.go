// internal/app/features/services/detail.go
package services

import (
	"net/http"

	"github.com/acuerdohq/acuerdo/internal/app/system/auth"
	"github.com/acuerdohq/acuerdo/internal/app/system/httpjson"
)

// Detail handles GET /services/{serviceID}.
func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Unauthenticated(w)
		return
	}

	serviceID, err := pathServiceID(r)
	if err != nil {
		httpjson.Error(w, http.StatusNotFound, "service not found")
		return
	}

	svc, err := h.Engine.Get(r.Context(), id.UserID, serviceID)
	if err != nil {
		h.ErrLog.Domain(w, r, err)
		return
	}

	httpjson.Respond(w, http.StatusOK, viewOf(svc, id.UserID))
}
