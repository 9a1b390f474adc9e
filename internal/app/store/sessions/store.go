// internal/app/store/sessions/store.go
package sessions

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Session records one issued credential so it can be revoked server-side.
// A credential is live only while its record exists, is unexpired, and has
// no revoked_at; verification treats all three failures identically.
type Session struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	TokenID   string             `bson:"token_id"` // the jti claim
	UserID    primitive.ObjectID `bson:"user_id"`
	CreatedAt time.Time          `bson:"created_at"`
	ExpiresAt time.Time          `bson:"expires_at"`
	RevokedAt *time.Time         `bson:"revoked_at,omitempty"`

	IP        string `bson:"ip,omitempty"`
	UserAgent string `bson:"user_agent,omitempty"`
}

// Store manages issued-credential records.
type Store struct {
	c *mongo.Collection
}

// New creates a sessions Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("sessions")}
}

// Save records a freshly issued credential.
func (s *Store) Save(ctx context.Context, tokenID string, userID primitive.ObjectID, expiresAt time.Time, ip, userAgent string) error {
	sess := Session{
		ID:        primitive.NewObjectID(),
		TokenID:   tokenID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: expiresAt,
		IP:        ip,
		UserAgent: userAgent,
	}
	_, err := s.c.InsertOne(ctx, sess)
	return err
}

// IsLive reports whether the credential with the given token ID is still
// usable: present, unexpired, and not revoked.
func (s *Store) IsLive(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{
		"token_id":   tokenID,
		"expires_at": bson.M{"$gt": time.Now().UTC()},
		"revoked_at": bson.M{"$exists": false},
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Revoke marks one credential as unusable. Revoking an already revoked or
// unknown token is a no-op.
func (s *Store) Revoke(ctx context.Context, tokenID string) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"token_id": tokenID, "revoked_at": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{"revoked_at": time.Now().UTC()}},
	)
	return err
}

// RevokeAllForUser invalidates every live credential for a user, for
// password changes or account lockout.
func (s *Store) RevokeAllForUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"user_id": userID, "revoked_at": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{"revoked_at": time.Now().UTC()}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// PurgeRevoked deletes revoked records older than the given age. Revoked
// sessions are kept briefly so verification failures show up in the
// collection, then reaped here; expired ones are handled by the TTL index.
func (s *Store) PurgeRevoked(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	res, err := s.c.DeleteMany(ctx, bson.M{
		"revoked_at": bson.M{"$lt": cutoff},
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// EnsureIndexes creates indexes for the sessions collection. Expired
// records are reaped by a TTL index keyed on expires_at.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_sessions_token_id"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_sessions_user"),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("idx_sessions_ttl"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}
