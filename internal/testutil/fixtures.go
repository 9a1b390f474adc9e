package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/acuerdohq/acuerdo/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a user with the given name and email.
func (f *Fixtures) CreateUser(ctx context.Context, name, email string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:         primitive.NewObjectID(),
		Name:       name,
		NameCI:     text.Fold(name),
		Email:      email,
		EmailCI:    text.Fold(email),
		AuthMethod: models.AuthMethodPassword,
		Status:     "active",
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateService inserts a service in the pending_invite state owned by
// creatorID.
func (f *Fixtures) CreateService(ctx context.Context, creatorID primitive.ObjectID, title, code string) models.Service {
	f.t.Helper()

	now := time.Now().UTC()
	svc := models.Service{
		ID:         primitive.NewObjectID(),
		Title:      title,
		TitleCI:    text.Fold(title),
		CreatorID:  creatorID,
		Status:     models.StatusPendingInvite,
		InviteCode: code,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := f.db.Collection("services").InsertOne(ctx, svc); err != nil {
		f.t.Fatalf("failed to create test service: %v", err)
	}
	return svc
}

// CreateJoinedService inserts a service in the pending_agreement state
// with both parties attached.
func (f *Fixtures) CreateJoinedService(ctx context.Context, creatorID, participantID primitive.ObjectID, title, code string) models.Service {
	f.t.Helper()

	svc := f.CreateService(ctx, creatorID, title, code)
	svc.ParticipantID = &participantID
	svc.Status = models.StatusPendingAgreement
	svc.Version = 2

	if _, err := f.db.Collection("services").ReplaceOne(ctx,
		map[string]any{"_id": svc.ID}, svc); err != nil {
		f.t.Fatalf("failed to advance test service: %v", err)
	}
	return svc
}

// CreateActiveService inserts a fully activated service with agreement
// text in place.
func (f *Fixtures) CreateActiveService(ctx context.Context, creatorID, participantID primitive.ObjectID, title, code, agreement string) models.Service {
	f.t.Helper()

	svc := f.CreateJoinedService(ctx, creatorID, participantID, title, code)
	svc.Agreement = agreement
	svc.Status = models.StatusActive
	svc.Version = 4

	if _, err := f.db.Collection("services").ReplaceOne(ctx,
		map[string]any{"_id": svc.ID}, svc); err != nil {
		f.t.Fatalf("failed to activate test service: %v", err)
	}
	return svc
}
