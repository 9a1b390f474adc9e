package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/acuerdohq/acuerdo/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestIdentity returns a verified identity for handler tests.
func TestIdentity(name, email string) *auth.Identity {
	return &auth.Identity{
		UserID: primitive.NewObjectID(),
		Name:   name,
		Email:  email,
	}
}

// WithUser injects an identity into the request, bypassing credential
// verification.
func WithUser(r *http.Request, id *auth.Identity) *http.Request {
	return auth.WithTestUser(r, id)
}

// NewJSONRequest builds a request with a JSON-encoded body.
func NewJSONRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	r := httptest.NewRequest(method, target, &buf)
	r.Header.Set("Content-Type", "application/json")
	return r
}

// DecodeJSON decodes a recorded response body into out.
func DecodeJSON(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
}
