// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/acuerdohq/acuerdo/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("an account with this email already exists")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// Create inserts a new user. Name/email fold fields, timestamps, and a
// default active status are assigned here.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	now := time.Now().UTC()
	u.ID = primitive.NewObjectID()
	u.NameCI = text.Fold(u.Name)
	u.EmailCI = text.Fold(u.Email)
	if u.Status == "" {
		u.Status = "active"
	}
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// GetByID retrieves a user by ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	return u, nil
}

// GetByEmail retrieves a user by folded email.
func (s *Store) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"email_ci": text.Fold(email)}).Decode(&u)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	return u, nil
}

// UpsertGoogle finds the account for a Google sign-in by email, creating
// it on first login. An existing password account keeps its hash; only the
// name is refreshed when Google reports a non-empty one.
func (s *Store) UpsertGoogle(ctx context.Context, email, name string) (models.User, error) {
	existing, err := s.GetByEmail(ctx, email)
	if err == nil {
		if name != "" && name != existing.Name {
			set := bson.M{
				"name":       name,
				"name_ci":    text.Fold(name),
				"updated_at": time.Now().UTC(),
			}
			if _, err := s.c.UpdateByID(ctx, existing.ID, bson.M{"$set": set}); err != nil {
				return models.User{}, err
			}
			existing.Name = name
		}
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return models.User{}, err
	}

	created, err := s.Create(ctx, models.User{
		Name:       name,
		Email:      email,
		AuthMethod: models.AuthMethodGoogle,
	})
	if errors.Is(err, ErrDuplicateEmail) {
		// Lost a race with another first login; the record exists now.
		return s.GetByEmail(ctx, email)
	}
	return created, err
}

// EnsureIndexes creates indexes for the users collection.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_users_email_ci"),
		},
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}},
			Options: options.Index().SetName("idx_users_name_ci"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}
