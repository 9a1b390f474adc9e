package userstore_test

import (
	"errors"
	"testing"

	userstore "github.com/acuerdohq/acuerdo/internal/app/store/users"
	"github.com/acuerdohq/acuerdo/internal/domain/models"
	"github.com/acuerdohq/acuerdo/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{
		Name:       "Ana Garcia",
		Email:      "ana@example.com",
		AuthMethod: models.AuthMethodPassword,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.EmailCI == "" || created.NameCI == "" {
		t.Error("expected fold fields to be set")
	}
	if created.Status != "active" {
		t.Errorf("status: got %q, want active", created.Status)
	}
}

func TestStore_Create_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}

	u := models.User{Name: "First", Email: "dupe@example.com", AuthMethod: models.AuthMethodPassword}
	if _, err := store.Create(ctx, u); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	// Same address with different casing hits the folded unique index.
	u.Name = "Second"
	u.Email = "Dupe@Example.com"
	if _, err := store.Create(ctx, u); !errors.Is(err, userstore.ErrDuplicateEmail) {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestStore_GetByEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created := fixtures.CreateUser(ctx, "Luis Perez", "luis@example.com")

	got, err := store.GetByEmail(ctx, "LUIS@example.com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("got user %v, want %v", got.ID, created.ID)
	}

	if _, err := store.GetByEmail(ctx, "nobody@example.com"); !errors.Is(err, userstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_UpsertGoogle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// First Google login creates the account.
	created, err := store.UpsertGoogle(ctx, "g@example.com", "G User")
	if err != nil {
		t.Fatalf("UpsertGoogle failed: %v", err)
	}
	if created.AuthMethod != models.AuthMethodGoogle {
		t.Errorf("auth method: got %q, want %q", created.AuthMethod, models.AuthMethodGoogle)
	}

	// Second login finds the same record and refreshes the name.
	again, err := store.UpsertGoogle(ctx, "g@example.com", "G User Renamed")
	if err != nil {
		t.Fatalf("second UpsertGoogle failed: %v", err)
	}
	if again.ID != created.ID {
		t.Errorf("expected same account, got %v and %v", created.ID, again.ID)
	}
	if again.Name != "G User Renamed" {
		t.Errorf("name: got %q, want refreshed name", again.Name)
	}
}
