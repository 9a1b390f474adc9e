package authn_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/acuerdohq/acuerdo/internal/app/features/authn"
	userstore "github.com/acuerdohq/acuerdo/internal/app/store/users"
	"github.com/acuerdohq/acuerdo/internal/app/system/auth"
	"github.com/acuerdohq/acuerdo/internal/app/system/httpjson"
	"github.com/acuerdohq/acuerdo/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*authn.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	authMgr, err := auth.NewManager(db, "test-token-secret-0123456789ABCD", time.Hour,
		"test-session-key-0123456789ABCDEF", "test-session", "", false, logger)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	handler := authn.NewHandler(db, authMgr, httpjson.NewErrorLogger(logger), 100, time.Minute, logger)
	return handler, db
}

func TestSignup_Success(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := testutil.NewJSONRequest(t, "POST", "/auth/signup", map[string]string{
		"name":     "Ana Garcia",
		"email":    "ana@example.com",
		"password": "correct horse battery",
	})

	rec := httptest.NewRecorder()
	handler.Signup(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var got struct {
		Token string `json:"token"`
		User  struct {
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"user"`
	}
	testutil.DecodeJSON(t, rec, &got)

	if got.Token == "" {
		t.Error("expected a bearer token in the response")
	}
	if got.User.Email != "ana@example.com" {
		t.Errorf("email: got %q", got.User.Email)
	}
}

func TestSignup_Validation(t *testing.T) {
	handler, _ := newTestHandler(t)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"missing name", map[string]string{"email": "a@b.com", "password": "longenough"}},
		{"bad email", map[string]string{"name": "A", "email": "not-an-email", "password": "longenough"}},
		{"short password", map[string]string{"name": "A", "email": "a@b.com", "password": "short"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.NewJSONRequest(t, "POST", "/auth/signup", tt.body)
			rec := httptest.NewRecorder()
			handler.Signup(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
			}
		})
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures := testutil.NewFixtures(t, db)
	fixtures.CreateUser(ctx, "Existing", "taken@example.com")

	// The fixture skips index creation; create the unique index the
	// duplicate check relies on.
	if err := userstore.New(db).EnsureIndexes(ctx); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}

	req := testutil.NewJSONRequest(t, "POST", "/auth/signup", map[string]string{
		"name":     "Second",
		"email":    "taken@example.com",
		"password": "longenough",
	})

	rec := httptest.NewRecorder()
	handler.Signup(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("expected status %d, got %d", http.StatusConflict, rec.Code)
	}
}

func TestLoginAndLogout(t *testing.T) {
	handler, _ := newTestHandler(t)

	signup := testutil.NewJSONRequest(t, "POST", "/auth/signup", map[string]string{
		"name":     "Luis",
		"email":    "luis@example.com",
		"password": "correct horse battery",
	})
	rec := httptest.NewRecorder()
	handler.Signup(rec, signup)
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup failed: %d %s", rec.Code, rec.Body.String())
	}

	login := testutil.NewJSONRequest(t, "POST", "/auth/login", map[string]string{
		"email":    "Luis@Example.com",
		"password": "correct horse battery",
	})
	rec = httptest.NewRecorder()
	handler.Login(rec, login)
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}

	var session struct {
		Token string `json:"token"`
	}
	testutil.DecodeJSON(t, rec, &session)
	if session.Token == "" {
		t.Fatal("expected a bearer token")
	}

	logout := httptest.NewRequest("POST", "/auth/logout", nil)
	logout.Header.Set("Authorization", "Bearer "+session.Token)
	rec = httptest.NewRecorder()
	handler.Logout(rec, logout)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout failed: %d", rec.Code)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	handler, _ := newTestHandler(t)

	signup := testutil.NewJSONRequest(t, "POST", "/auth/signup", map[string]string{
		"name":     "Eve",
		"email":    "eve@example.com",
		"password": "the right password",
	})
	rec := httptest.NewRecorder()
	handler.Signup(rec, signup)
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup failed: %d", rec.Code)
	}

	login := testutil.NewJSONRequest(t, "POST", "/auth/login", map[string]string{
		"email":    "eve@example.com",
		"password": "the wrong password",
	})
	rec = httptest.NewRecorder()
	handler.Login(rec, login)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	handler, _ := newTestHandler(t)

	login := testutil.NewJSONRequest(t, "POST", "/auth/login", map[string]string{
		"email":    "ghost@example.com",
		"password": "whatever password",
	})
	rec := httptest.NewRecorder()
	handler.Login(rec, login)

	// Unknown email and wrong password answer identically.
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestLogin_RateLimited(t *testing.T) {
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	authMgr, err := auth.NewManager(db, "test-token-secret-0123456789ABCD", time.Hour,
		"test-session-key-0123456789ABCDEF", "test-session", "", false, logger)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	handler := authn.NewHandler(db, authMgr, httpjson.NewErrorLogger(logger), 2, time.Minute, logger)

	for i := 0; i < 2; i++ {
		login := testutil.NewJSONRequest(t, "POST", "/auth/login", map[string]string{
			"email":    "target@example.com",
			"password": "guess",
		})
		rec := httptest.NewRecorder()
		handler.Login(rec, login)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i+1, rec.Code)
		}
	}

	login := testutil.NewJSONRequest(t, "POST", "/auth/login", map[string]string{
		"email":    "target@example.com",
		"password": "guess",
	})
	rec := httptest.NewRecorder()
	handler.Login(rec, login)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected status %d, got %d", http.StatusTooManyRequests, rec.Code)
	}
}

func TestMe(t *testing.T) {
	handler, _ := newTestHandler(t)

	id := testutil.TestIdentity("Maria", "maria@example.com")
	req := httptest.NewRequest("GET", "/me", nil)
	req = testutil.WithUser(req, id)

	rec := httptest.NewRecorder()
	handler.Me(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var got struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	testutil.DecodeJSON(t, rec, &got)
	if got.ID != id.UserID.Hex() {
		t.Errorf("id: got %q, want %q", got.ID, id.UserID.Hex())
	}
	if got.Email != "maria@example.com" {
		t.Errorf("email: got %q", got.Email)
	}
}
