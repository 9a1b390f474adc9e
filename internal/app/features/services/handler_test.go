package services_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/acuerdohq/acuerdo/internal/app/features/services"
	"github.com/acuerdohq/acuerdo/internal/app/lifecycle"
	servicestore "github.com/acuerdohq/acuerdo/internal/app/store/services"
	"github.com/acuerdohq/acuerdo/internal/app/system/auth"
	"github.com/acuerdohq/acuerdo/internal/app/system/httpjson"
	"github.com/acuerdohq/acuerdo/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*services.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	engine := lifecycle.NewEngine(servicestore.New(db), lifecycle.Policy{}, logger)
	handler := services.NewHandler(engine, httpjson.NewErrorLogger(logger), 100, time.Minute, logger)
	fixtures := testutil.NewFixtures(t, db)
	return handler, fixtures
}

func TestCreate_Success(t *testing.T) {
	handler, _ := newTestHandler(t)

	user := testutil.TestIdentity("Creator", "creator@test.com")
	req := testutil.NewJSONRequest(t, "POST", "/services", map[string]string{"title": "Garden Maintenance"})
	req = testutil.WithUser(req, user)

	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var got struct {
		ID         string `json:"id"`
		Title      string `json:"title"`
		Status     string `json:"status"`
		InviteCode string `json:"invite_code"`
		Role       string `json:"role"`
	}
	testutil.DecodeJSON(t, rec, &got)

	if got.Title != "Garden Maintenance" {
		t.Errorf("title: got %q", got.Title)
	}
	if got.Status != "pending_invite" {
		t.Errorf("status: got %q, want pending_invite", got.Status)
	}
	if len(got.InviteCode) != 8 {
		t.Errorf("invite code %q should be visible to the creator", got.InviteCode)
	}
	if got.Role != "creator" {
		t.Errorf("role: got %q, want creator", got.Role)
	}
}

func TestCreate_EmptyTitle(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := testutil.NewJSONRequest(t, "POST", "/services", map[string]string{"title": "   "})
	req = testutil.WithUser(req, testutil.TestIdentity("Creator", "creator@test.com"))

	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestJoin_Success(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Creator", "creator@test.com")
	fixtures.CreateService(ctx, creator.ID, "Dog Walking", "joincode")

	joiner := testutil.TestIdentity("Joiner", "joiner@test.com")
	req := testutil.NewJSONRequest(t, "POST", "/services/join", map[string]string{"invite_code": "JOINCODE"})
	req = testutil.WithUser(req, joiner)

	rec := httptest.NewRecorder()
	handler.Join(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var got struct {
		Status        string `json:"status"`
		ParticipantID string `json:"participant_id"`
		Role          string `json:"role"`
		InviteCode    string `json:"invite_code"`
	}
	testutil.DecodeJSON(t, rec, &got)

	if got.Status != "pending_agreement" {
		t.Errorf("status: got %q, want pending_agreement", got.Status)
	}
	if got.ParticipantID != joiner.UserID.Hex() {
		t.Errorf("participant: got %q, want %q", got.ParticipantID, joiner.UserID.Hex())
	}
	if got.Role != "participant" {
		t.Errorf("role: got %q, want participant", got.Role)
	}
	if got.InviteCode != "" {
		t.Error("invite code should not be visible to the participant")
	}
}

func TestJoin_UnknownCode(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := testutil.NewJSONRequest(t, "POST", "/services/join", map[string]string{"invite_code": "zzzzzzzz"})
	req = testutil.WithUser(req, testutil.TestIdentity("Joiner", "joiner@test.com"))

	rec := httptest.NewRecorder()
	handler.Join(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestJoin_OwnService(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := testutil.TestIdentity("Creator", "creator@test.com")
	fixtures.CreateService(ctx, creator.UserID, "Lawn Care", "selfcode")

	req := testutil.NewJSONRequest(t, "POST", "/services/join", map[string]string{"invite_code": "selfcode"})
	req = testutil.WithUser(req, creator)

	rec := httptest.NewRecorder()
	handler.Join(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("expected status %d, got %d", http.StatusConflict, rec.Code)
	}
}

func TestProposeTerms_Success(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := testutil.TestIdentity("Creator", "creator@test.com")
	participant := testutil.TestIdentity("Participant", "part@test.com")
	svc := fixtures.CreateJoinedService(ctx, creator.UserID, participant.UserID, "Painting", "prop0001")

	req := testutil.NewJSONRequest(t, "PUT", "/services/"+svc.ID.Hex()+"/agreement",
		map[string]string{"agreement": "Two coats, white, done by Friday."})
	req = testutil.WithUser(req, creator)
	req = testutil.WithChiURLParam(req, "serviceID", svc.ID.Hex())

	rec := httptest.NewRecorder()
	handler.ProposeTerms(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var got struct {
		Agreement string `json:"agreement"`
	}
	testutil.DecodeJSON(t, rec, &got)
	if got.Agreement != "Two coats, white, done by Friday." {
		t.Errorf("agreement: got %q", got.Agreement)
	}
}

func TestProposeTerms_ParticipantForbidden(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := testutil.TestIdentity("Creator", "creator@test.com")
	participant := testutil.TestIdentity("Participant", "part@test.com")
	svc := fixtures.CreateJoinedService(ctx, creator.UserID, participant.UserID, "Painting", "prop0002")

	req := testutil.NewJSONRequest(t, "PUT", "/services/"+svc.ID.Hex()+"/agreement",
		map[string]string{"agreement": "my terms instead"})
	req = testutil.WithUser(req, participant)
	req = testutil.WithChiURLParam(req, "serviceID", svc.ID.Hex())

	rec := httptest.NewRecorder()
	handler.ProposeTerms(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status %d, got %d", http.StatusForbidden, rec.Code)
	}
}

func TestAccept_Success(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := testutil.TestIdentity("Creator", "creator@test.com")
	participant := testutil.TestIdentity("Participant", "part@test.com")
	svc := fixtures.CreateJoinedService(ctx, creator.UserID, participant.UserID, "Tutoring", "acpt0001")

	req := testutil.NewJSONRequest(t, "POST", "/services/"+svc.ID.Hex()+"/accept", nil)
	req = testutil.WithUser(req, participant)
	req = testutil.WithChiURLParam(req, "serviceID", svc.ID.Hex())

	rec := httptest.NewRecorder()
	handler.Accept(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var got struct {
		Status string `json:"status"`
	}
	testutil.DecodeJSON(t, rec, &got)
	if got.Status != "active" {
		t.Errorf("status: got %q, want active", got.Status)
	}
}

func TestAccept_CreatorForbidden(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := testutil.TestIdentity("Creator", "creator@test.com")
	participant := testutil.TestIdentity("Participant", "part@test.com")
	svc := fixtures.CreateJoinedService(ctx, creator.UserID, participant.UserID, "Tutoring", "acpt0002")

	req := testutil.NewJSONRequest(t, "POST", "/services/"+svc.ID.Hex()+"/accept", nil)
	req = testutil.WithUser(req, creator)
	req = testutil.WithChiURLParam(req, "serviceID", svc.ID.Hex())

	rec := httptest.NewRecorder()
	handler.Accept(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status %d, got %d", http.StatusForbidden, rec.Code)
	}
}

func TestDetail_StrangerForbidden(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := testutil.TestIdentity("Creator", "creator@test.com")
	svc := fixtures.CreateService(ctx, creator.UserID, "Private", "priv0001")

	req := httptest.NewRequest("GET", "/services/"+svc.ID.Hex(), nil)
	req = testutil.WithUser(req, testutil.TestIdentity("Stranger", "stranger@test.com"))
	req = testutil.WithChiURLParam(req, "serviceID", svc.ID.Hex())

	rec := httptest.NewRecorder()
	handler.Detail(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status %d, got %d", http.StatusForbidden, rec.Code)
	}
}

func TestDetail_MalformedID(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := httptest.NewRequest("GET", "/services/not-an-id", nil)
	req = testutil.WithUser(req, testutil.TestIdentity("User", "user@test.com"))
	req = testutil.WithChiURLParam(req, "serviceID", "not-an-id")

	rec := httptest.NewRecorder()
	handler.Detail(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestList_OnlyOwnServices(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := testutil.TestIdentity("Alice", "alice@test.com")
	bob := testutil.TestIdentity("Bob", "bob@test.com")

	fixtures.CreateService(ctx, alice.UserID, "Alice Creates", "list0001")
	fixtures.CreateJoinedService(ctx, bob.UserID, alice.UserID, "Alice Joins", "list0002")
	fixtures.CreateService(ctx, bob.UserID, "Bob Only", "list0003")

	req := httptest.NewRequest("GET", "/services", nil)
	req = testutil.WithUser(req, alice)

	rec := httptest.NewRecorder()
	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var got struct {
		Services []struct {
			Title string `json:"title"`
			Role  string `json:"role"`
		} `json:"services"`
	}
	testutil.DecodeJSON(t, rec, &got)

	if len(got.Services) != 2 {
		t.Fatalf("expected 2 services, got %d", len(got.Services))
	}
	roles := map[string]string{}
	for _, svc := range got.Services {
		roles[svc.Title] = svc.Role
	}
	if roles["Alice Creates"] != "creator" || roles["Alice Joins"] != "participant" {
		t.Errorf("unexpected roles: %v", roles)
	}
}

func TestRoutes_RequireAuthentication(t *testing.T) {
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	engine := lifecycle.NewEngine(servicestore.New(db), lifecycle.Policy{}, logger)
	handler := services.NewHandler(engine, httpjson.NewErrorLogger(logger), 100, time.Minute, logger)

	authMgr, err := auth.NewManager(db, "test-token-secret-0123456789ABCD", time.Hour,
		"test-session-key-0123456789ABCDEF", "test-session", "", false, logger)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	router := services.Routes(handler, authMgr)

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}
