// internal/app/features/authn/login.go
package authn

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	userstore "github.com/acuerdohq/acuerdo/internal/app/store/users"
	"github.com/acuerdohq/acuerdo/internal/app/system/httpjson"
	"github.com/acuerdohq/acuerdo/internal/app/system/ratelimit"
	"github.com/acuerdohq/acuerdo/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// The login failure body never reveals whether the email exists.
const msgBadLogin = "Incorrect email or password."

// Login handles POST /auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.BadRequest(w, r, "login: decode body", err)
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || req.Password == "" {
		httpjson.Error(w, http.StatusBadRequest, "Email and password are required.")
		return
	}

	// Attempts are counted per client and email so one address cannot be
	// brute-forced from a single source.
	if !h.limiter.Allow(ratelimit.ClientKey(r) + "|" + email) {
		h.Log.Warn("login rate limited",
			zap.String("client", ratelimit.ClientKey(r)))
		httpjson.Error(w, http.StatusTooManyRequests, "Too many attempts. Try again later.")
		return
	}

	users := userstore.New(h.DB)
	user, err := users.GetByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			httpjson.Error(w, http.StatusUnauthorized, msgBadLogin)
			return
		}
		h.ErrLog.ServerError(w, r, "login: load user", err)
		return
	}

	if user.AuthMethod != models.AuthMethodPassword || user.PasswordHash == "" {
		httpjson.Error(w, http.StatusUnauthorized, msgBadLogin)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		httpjson.Error(w, http.StatusUnauthorized, msgBadLogin)
		return
	}
	if user.Status != "active" {
		httpjson.Error(w, http.StatusUnauthorized, msgBadLogin)
		return
	}

	token, err := h.Auth.IssueSession(r.Context(), w, r, user)
	if err != nil {
		h.ErrLog.ServerError(w, r, "login: issue session", err)
		return
	}

	httpjson.Respond(w, http.StatusOK, sessionResponse{Token: token, User: viewOf(user)})
}
