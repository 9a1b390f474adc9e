// internal/domain/models/service.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Service lifecycle statuses. A service only ever moves forward:
// pending_invite -> pending_agreement -> active.
const (
	StatusPendingInvite    = "pending_invite"
	StatusPendingAgreement = "pending_agreement"
	StatusActive           = "active"
)

// statusRank orders the lifecycle statuses for monotonicity checks.
var statusRank = map[string]int{
	StatusPendingInvite:    0,
	StatusPendingAgreement: 1,
	StatusActive:           2,
}

// StatusRank returns the position of a status in the lifecycle, or -1 for
// an unknown status.
func StatusRank(status string) int {
	if r, ok := statusRank[status]; ok {
		return r
	}
	return -1
}

// Service is the central record of one agreement-in-progress between a
// creator and a participant.
//
// NOTE:
//   - ParticipantID is nil until a second user joins with the invite code,
//     and is set exactly once.
//   - Agreement holds free-text terms; only the creator may write it, and
//     only while the service is pending_agreement.
//   - Version is incremented on every write. Transition writes are
//     conditional on the prior state, so concurrent mutations lose cleanly
//     instead of overwriting each other.
type Service struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title   string             `bson:"title" json:"title"`
	TitleCI string             `bson:"title_ci" json:"-"`

	CreatorID     primitive.ObjectID  `bson:"creator_id" json:"creator_id"`
	ParticipantID *primitive.ObjectID `bson:"participant_id,omitempty" json:"participant_id,omitempty"`

	Status     string `bson:"status" json:"status"`
	InviteCode string `bson:"invite_code" json:"invite_code"`
	Agreement  string `bson:"agreement,omitempty" json:"agreement,omitempty"`

	Version int64 `bson:"version" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasParticipant returns true once a second party has joined.
func (s Service) HasParticipant() bool {
	return s.ParticipantID != nil && !s.ParticipantID.IsZero()
}

// IsCreator reports whether the given user created this service.
func (s Service) IsCreator(userID primitive.ObjectID) bool {
	return s.CreatorID == userID
}

// IsParticipant reports whether the given user joined this service.
func (s Service) IsParticipant(userID primitive.ObjectID) bool {
	return s.HasParticipant() && *s.ParticipantID == userID
}

// IsParty reports whether the given user is the creator or the participant.
func (s Service) IsParty(userID primitive.ObjectID) bool {
	return s.IsCreator(userID) || s.IsParticipant(userID)
}
