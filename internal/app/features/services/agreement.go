// internal/app/features/services/agreement.go
package services

import (
	"encoding/json"
	"net/http"

	"github.com/acuerdohq/acuerdo/internal/app/system/auth"
	"github.com/acuerdohq/acuerdo/internal/app/system/httpjson"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProposeTerms handles PUT /services/{serviceID}/agreement.
func (h *Handler) ProposeTerms(w http.ResponseWriter, r *http.Request) {
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

	var req agreementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.BadRequest(w, r, "propose terms: decode body", err)
		return
	}

	svc, err := h.Engine.ProposeTerms(r.Context(), id.UserID, serviceID, req.Agreement)
	if err != nil {
		h.ErrLog.Domain(w, r, err)
		return
	}

	httpjson.Respond(w, http.StatusOK, viewOf(svc, id.UserID))
}

// Accept handles POST /services/{serviceID}/accept.
func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
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

	svc, err := h.Engine.AcceptAgreement(r.Context(), id.UserID, serviceID)
	if err != nil {
		h.ErrLog.Domain(w, r, err)
		return
	}

	httpjson.Respond(w, http.StatusOK, viewOf(svc, id.UserID))
}

// pathServiceID parses the {serviceID} URL segment. A malformed ID is
// indistinguishable from a missing record to the caller.
func pathServiceID(r *http.Request) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(chi.URLParam(r, "serviceID"))
}
