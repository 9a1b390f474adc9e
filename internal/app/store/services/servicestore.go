// internal/app/store/services/servicestore.go
package servicestore

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
	// ErrNotFound means no service matched the lookup.
	ErrNotFound = errors.New("service not found")

	// ErrDuplicateCode means an insert collided with the unique
	// invite_code index.
	ErrDuplicateCode = errors.New("invite code already in use")

	// ErrNoMatch means a guarded write's precondition matched no document:
	// the record moved on between the caller's read and the write.
	ErrNoMatch = errors.New("service state changed since read")
)

// Store persists Service documents. All transition writes are single
// conditional document updates: the precondition and the field changes
// land atomically, so a lost race can never leave a half-written record.
type Store struct {
	c *mongo.Collection
}

// New creates a services Store over the given database.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("services")}
}

// Insert persists a new service. ID, TitleCI, Version, and timestamps are
// assigned here; Status defaults to pending_invite.
func (s *Store) Insert(ctx context.Context, svc models.Service) (models.Service, error) {
	now := time.Now().UTC()
	svc.ID = primitive.NewObjectID()
	svc.TitleCI = text.Fold(svc.Title)
	if svc.Status == "" {
		svc.Status = models.StatusPendingInvite
	}
	svc.Version = 1
	svc.CreatedAt = now
	svc.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, svc); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Service{}, ErrDuplicateCode
		}
		return models.Service{}, err
	}
	return svc, nil
}

// GetByID retrieves a service by its ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Service, error) {
	var svc models.Service
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&svc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Service{}, ErrNotFound
		}
		return models.Service{}, err
	}
	return svc, nil
}

// GetByInviteCode retrieves the service holding the given invite code.
func (s *Store) GetByInviteCode(ctx context.Context, code string) (models.Service, error) {
	var svc models.Service
	err := s.c.FindOne(ctx, bson.M{"invite_code": code}).Decode(&svc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Service{}, ErrNotFound
		}
		return models.Service{}, err
	}
	return svc, nil
}

// ListForUser returns services where the user is creator or participant,
// newest first. The single $or query yields each document once.
func (s *Store) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Service, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"creator_id": userID},
		bson.M{"participant_id": userID},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var services []models.Service
	if err := cur.All(ctx, &services); err != nil {
		return nil, err
	}
	return services, nil
}

// ApplyJoin sets the participant and advances the status, conditional on
// the service still being pending_invite with no participant. Returns
// ErrNoMatch when the precondition no longer holds (including when the id
// itself is gone; callers re-read to tell the cases apart).
func (s *Store) ApplyJoin(ctx context.Context, id, participantID primitive.ObjectID) (models.Service, error) {
	filter := bson.M{
		"_id":            id,
		"status":         models.StatusPendingInvite,
		"participant_id": bson.M{"$exists": false},
	}
	update := bson.M{
		"$set": bson.M{
			"participant_id": participantID,
			"status":         models.StatusPendingAgreement,
			"updated_at":     time.Now().UTC(),
		},
		"$inc": bson.M{"version": 1},
	}
	return s.applyGuarded(ctx, filter, update)
}

// ApplyAgreement overwrites the agreement text, conditional on the actor
// being the creator and the status still pending_agreement.
func (s *Store) ApplyAgreement(ctx context.Context, id, creatorID primitive.ObjectID, text string) (models.Service, error) {
	filter := bson.M{
		"_id":        id,
		"creator_id": creatorID,
		"status":     models.StatusPendingAgreement,
	}
	update := bson.M{
		"$set": bson.M{
			"agreement":  text,
			"updated_at": time.Now().UTC(),
		},
		"$inc": bson.M{"version": 1},
	}
	return s.applyGuarded(ctx, filter, update)
}

// ApplyActivate advances the status to active, conditional on the actor
// being the participant and the status still pending_agreement.
func (s *Store) ApplyActivate(ctx context.Context, id, participantID primitive.ObjectID) (models.Service, error) {
	filter := bson.M{
		"_id":            id,
		"participant_id": participantID,
		"status":         models.StatusPendingAgreement,
	}
	update := bson.M{
		"$set": bson.M{
			"status":     models.StatusActive,
			"updated_at": time.Now().UTC(),
		},
		"$inc": bson.M{"version": 1},
	}
	return s.applyGuarded(ctx, filter, update)
}

func (s *Store) applyGuarded(ctx context.Context, filter, update bson.M) (models.Service, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var svc models.Service
	err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&svc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Service{}, ErrNoMatch
		}
		return models.Service{}, err
	}
	return svc, nil
}

// EnsureIndexes creates indexes for the services collection.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		// Invite codes are looked up on every join and must be unique.
		{
			Keys:    bson.D{{Key: "invite_code", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_services_invite_code"),
		},
		// Dashboard listing by creator.
		{
			Keys:    bson.D{{Key: "creator_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_services_creator"),
		},
		// Dashboard listing by participant.
		{
			Keys:    bson.D{{Key: "participant_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_services_participant"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}
