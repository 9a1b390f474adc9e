// Package auth resolves a request's bearer credential into an identity
// before any domain code runs. The credential travels either in an
// Authorization header (API clients) or in an HttpOnly session cookie
// (browser clients); both paths go through the same verification on every
// mutating call: signature and time claims, then the server-side session
// record (so a revoked credential fails exactly like an expired one), then
// a fresh user load (so a disabled account takes effect immediately).
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	sessionstore "github.com/acuerdohq/acuerdo/internal/app/store/sessions"
	userstore "github.com/acuerdohq/acuerdo/internal/app/store/users"
	"github.com/acuerdohq/acuerdo/internal/app/system/httpjson"
	"github.com/acuerdohq/acuerdo/internal/domain/models"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ErrInvalidCredential covers every verification failure: missing,
// malformed, expired, revoked, or belonging to a disabled account.
// Callers surface all of them identically.
var ErrInvalidCredential = errors.New("invalid credential")

const cookieTokenKey = "token"

// Identity is the verified actor injected into the request context.
type Identity struct {
	UserID  primitive.ObjectID
	TokenID string
	Name    string
	Email   string
}

type ctxKey string

const identityKey ctxKey = "identity"

// CurrentUser returns the verified identity for the request, if any.
func CurrentUser(r *http.Request) (*Identity, bool) {
	id, ok := r.Context().Value(identityKey).(*Identity)
	return id, ok
}

// WithTestUser injects an identity directly, bypassing verification.
// Handler tests only.
func WithTestUser(r *http.Request, id *Identity) *http.Request {
	return withIdentity(r, id)
}

func withIdentity(r *http.Request, id *Identity) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), identityKey, id))
}

// Manager issues, verifies, and revokes credentials, and carries them in
// session cookies for browser clients.
type Manager struct {
	tokens   *TokenManager
	sessions *sessionstore.Store
	users    *userstore.Store

	cookies    *sessions.CookieStore
	cookieName string

	log *zap.Logger
}

// NewManager builds the auth Manager. The session key signs cookies; the
// token secret signs credentials. Secure controls cookie flags and should
// be true outside local development.
func NewManager(db *mongo.Database, tokenSecret string, tokenExpiry time.Duration, sessionKey, cookieName, cookieDomain string, secure bool, logger *zap.Logger) (*Manager, error) {
	if sessionKey == "" {
		return nil, errors.New("session key is empty; provide >=32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}

	tokens, err := NewTokenManager(tokenSecret, tokenExpiry)
	if err != nil {
		return nil, err
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options = &sessions.Options{
		Domain:   cookieDomain,
		Path:     "/",
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(tokens.Expiry().Seconds()),
	}

	return &Manager{
		tokens:     tokens,
		sessions:   sessionstore.New(db),
		users:      userstore.New(db),
		cookies:    store,
		cookieName: cookieName,
		log:        logger,
	}, nil
}

// IssueSession signs a credential for the user, records it for revocation,
// and sets the session cookie. The signed token is also returned so API
// clients can use it as a bearer credential.
func (m *Manager) IssueSession(ctx context.Context, w http.ResponseWriter, r *http.Request, user models.User) (string, error) {
	token, tokenID, expiresAt, err := m.tokens.Issue(user.ID)
	if err != nil {
		return "", err
	}

	if err := m.sessions.Save(ctx, tokenID, user.ID, expiresAt, clientIP(r), r.UserAgent()); err != nil {
		return "", err
	}

	sess, err := m.cookies.Get(r, m.cookieName)
	if err != nil {
		// A stale or tampered cookie decodes to an error plus a fresh
		// session, which is all we need here.
		if scErr, ok := err.(securecookie.Error); ok && scErr.IsDecode() {
			m.log.Warn("session cookie invalid, using fresh session",
				zap.String("user_id", user.ID.Hex()))
		} else {
			m.log.Error("session store error during issue, using fresh session",
				zap.Error(err),
				zap.String("user_id", user.ID.Hex()))
		}
	}
	sess.Values[cookieTokenKey] = token
	if err := sess.Save(r, w); err != nil {
		return "", err
	}

	m.log.Info("session issued",
		zap.String("user_id", user.ID.Hex()),
		zap.Time("expires_at", expiresAt))
	return token, nil
}

// ClearSession revokes the request's credential and expires the cookie.
// Safe to call without a valid credential.
func (m *Manager) ClearSession(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	if cred := m.credentialFrom(r); cred != "" {
		if _, tokenID, err := m.tokens.Parse(cred); err == nil {
			if err := m.sessions.Revoke(ctx, tokenID); err != nil {
				m.log.Error("revoke session failed", zap.Error(err))
			}
		}
	}

	sess, _ := m.cookies.Get(r, m.cookieName)
	delete(sess.Values, cookieTokenKey)
	sess.Options.MaxAge = -1
	_ = sess.Save(r, w)
}

// Verify resolves a raw credential into an identity, or fails closed with
// ErrInvalidCredential. Every step re-runs on every call; nothing about a
// prior verification is cached.
func (m *Manager) Verify(ctx context.Context, credential string) (*Identity, error) {
	if credential == "" {
		return nil, ErrInvalidCredential
	}

	userID, tokenID, err := m.tokens.Parse(credential)
	if err != nil {
		return nil, ErrInvalidCredential
	}

	live, err := m.sessions.IsLive(ctx, tokenID)
	if err != nil {
		m.log.Error("session liveness check failed", zap.Error(err))
		return nil, ErrInvalidCredential
	}
	if !live {
		return nil, ErrInvalidCredential
	}

	user, err := m.users.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, userstore.ErrNotFound) {
			m.log.Error("user load failed during verification", zap.Error(err))
		}
		return nil, ErrInvalidCredential
	}
	if user.Status != "active" {
		return nil, ErrInvalidCredential
	}

	return &Identity{
		UserID:  user.ID,
		TokenID: tokenID,
		Name:    user.Name,
		Email:   user.Email,
	}, nil
}

// LoadUser verifies the request credential, if present, and injects the
// identity into context. Requests without a usable credential continue
// anonymously; RequireUser decides whether that matters.
func (m *Manager) LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cred := m.credentialFrom(r); cred != "" {
			if id, err := m.Verify(r.Context(), cred); err == nil {
				r = withIdentity(r, id)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireUser rejects requests with no verified identity. The 401 body is
// uniform regardless of why verification failed.
func (m *Manager) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			httpjson.Unauthenticated(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// credentialFrom pulls the raw credential from the Authorization header,
// falling back to the session cookie.
func (m *Manager) credentialFrom(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if strings.HasPrefix(h, "Bearer ") {
			return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		}
		return ""
	}

	sess, err := m.cookies.Get(r, m.cookieName)
	if err != nil {
		return ""
	}
	if tok, ok := sess.Values[cookieTokenKey].(string); ok {
		return tok
	}
	return ""
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	if xr := r.Header.Get("X-Real-IP"); xr != "" {
		return strings.TrimSpace(xr)
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i > 0 {
		host = host[:i]
	}
	return host
}
