// internal/app/features/services/join.go
package services

import (
	"encoding/json"
	"net/http"

	"github.com/acuerdohq/acuerdo/internal/app/system/auth"
	"github.com/acuerdohq/acuerdo/internal/app/system/httpjson"
	"github.com/acuerdohq/acuerdo/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// Join handles POST /services/join.
func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Unauthenticated(w)
		return
	}

	// Codes are short; unlimited attempts would make them guessable.
	if !h.joinLim.Allow(ratelimit.ClientKey(r)) {
		h.Log.Warn("join rate limited",
			zap.String("client", ratelimit.ClientKey(r)),
			zap.String("user_id", id.UserID.Hex()))
		httpjson.Error(w, http.StatusTooManyRequests, "Too many attempts. Try again later.")
		return
	}

	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.BadRequest(w, r, "join service: decode body", err)
		return
	}

	svc, err := h.Engine.Join(r.Context(), id.UserID, req.InviteCode)
	if err != nil {
		h.ErrLog.Domain(w, r, err)
		return
	}

	httpjson.Respond(w, http.StatusOK, viewOf(svc, id.UserID))
}
