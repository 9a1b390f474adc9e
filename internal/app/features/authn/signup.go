// internal/app/features/authn/signup.go
package authn

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"

	userstore "github.com/acuerdohq/acuerdo/internal/app/store/users"
	"github.com/acuerdohq/acuerdo/internal/app/system/httpjson"
	"github.com/acuerdohq/acuerdo/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 8

// Signup handles POST /auth/signup.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.BadRequest(w, r, "signup: decode body", err)
		return
	}

	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(strings.ToLower(req.Email))

	if name == "" {
		httpjson.Error(w, http.StatusBadRequest, "Name is required.")
		return
	}
	if _, err := mail.ParseAddress(email); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "A valid email address is required.")
		return
	}
	if len(req.Password) < minPasswordLen {
		httpjson.Error(w, http.StatusBadRequest, "Password must be at least 8 characters.")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.ErrLog.ServerError(w, r, "signup: hash password", err)
		return
	}

	users := userstore.New(h.DB)
	user, err := users.Create(r.Context(), models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		AuthMethod:   models.AuthMethodPassword,
	})
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			httpjson.Error(w, http.StatusConflict, "An account with this email already exists.")
			return
		}
		h.ErrLog.ServerError(w, r, "signup: create user", err)
		return
	}

	token, err := h.Auth.IssueSession(r.Context(), w, r, user)
	if err != nil {
		h.ErrLog.ServerError(w, r, "signup: issue session", err)
		return
	}

	h.Log.Info("account created",
		zap.String("user_id", user.ID.Hex()))
	httpjson.Respond(w, http.StatusCreated, sessionResponse{Token: token, User: viewOf(user)})
}
