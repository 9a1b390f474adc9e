package lifecycle_test

import (
	"testing"

	"github.com/acuerdohq/acuerdo/internal/app/lifecycle"
	"github.com/acuerdohq/acuerdo/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCanJoin(t *testing.T) {
	creator := primitive.NewObjectID()
	joiner := primitive.NewObjectID()
	other := primitive.NewObjectID()

	tests := []struct {
		name     string
		svc      models.Service
		actor    primitive.ObjectID
		wantKind lifecycle.Kind
	}{
		{
			name:  "open service accepts a stranger",
			svc:   models.Service{CreatorID: creator, Status: models.StatusPendingInvite},
			actor: joiner,
		},
		{
			name:     "creator cannot join own service",
			svc:      models.Service{CreatorID: creator, Status: models.StatusPendingInvite},
			actor:    creator,
			wantKind: lifecycle.KindConflict,
		},
		{
			name: "creator probing own joined service still sees self-join answer",
			svc: models.Service{
				CreatorID:     creator,
				ParticipantID: &joiner,
				Status:        models.StatusPendingAgreement,
			},
			actor:    creator,
			wantKind: lifecycle.KindConflict,
		},
		{
			name: "occupied service rejects a third party",
			svc: models.Service{
				CreatorID:     creator,
				ParticipantID: &joiner,
				Status:        models.StatusPendingAgreement,
			},
			actor:    other,
			wantKind: lifecycle.KindConflict,
		},
		{
			name: "active service rejects joining",
			svc: models.Service{
				CreatorID:     creator,
				ParticipantID: &joiner,
				Status:        models.StatusActive,
			},
			actor:    other,
			wantKind: lifecycle.KindConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := lifecycle.CanJoin(tt.svc, tt.actor)
			if tt.wantKind == 0 {
				if err != nil {
					t.Fatalf("expected join to be allowed, got %v", err)
				}
				return
			}
			if !lifecycle.IsKind(err, tt.wantKind) {
				t.Fatalf("expected %v error, got %v", tt.wantKind, err)
			}
		})
	}
}

func TestCanProposeTerms(t *testing.T) {
	creator := primitive.NewObjectID()
	participant := primitive.NewObjectID()

	pending := models.Service{
		CreatorID:     creator,
		ParticipantID: &participant,
		Status:        models.StatusPendingAgreement,
	}

	if err := lifecycle.CanProposeTerms(pending, creator); err != nil {
		t.Fatalf("creator should be able to edit: %v", err)
	}

	if err := lifecycle.CanProposeTerms(pending, participant); !lifecycle.IsKind(err, lifecycle.KindAuthorization) {
		t.Fatalf("participant edit should be an authorization error, got %v", err)
	}

	unjoined := models.Service{CreatorID: creator, Status: models.StatusPendingInvite}
	if err := lifecycle.CanProposeTerms(unjoined, creator); !lifecycle.IsKind(err, lifecycle.KindConflict) {
		t.Fatalf("editing before join should conflict, got %v", err)
	}

	active := models.Service{
		CreatorID:     creator,
		ParticipantID: &participant,
		Status:        models.StatusActive,
	}
	if err := lifecycle.CanProposeTerms(active, creator); !lifecycle.IsKind(err, lifecycle.KindConflict) {
		t.Fatalf("editing an active agreement should conflict, got %v", err)
	}
}

func TestCanAcceptAgreement(t *testing.T) {
	creator := primitive.NewObjectID()
	participant := primitive.NewObjectID()

	pending := models.Service{
		CreatorID:     creator,
		ParticipantID: &participant,
		Status:        models.StatusPendingAgreement,
		Agreement:     "both parties water the plants",
	}

	if err := lifecycle.CanAcceptAgreement(pending, participant, false); err != nil {
		t.Fatalf("participant should be able to accept: %v", err)
	}

	if err := lifecycle.CanAcceptAgreement(pending, creator, false); !lifecycle.IsKind(err, lifecycle.KindAuthorization) {
		t.Fatalf("creator acceptance should be an authorization error, got %v", err)
	}

	empty := pending
	empty.Agreement = ""
	if err := lifecycle.CanAcceptAgreement(empty, participant, false); err != nil {
		t.Fatalf("empty terms are acceptable under the default policy: %v", err)
	}
	if err := lifecycle.CanAcceptAgreement(empty, participant, true); !lifecycle.IsKind(err, lifecycle.KindConflict) {
		t.Fatalf("empty terms should conflict when text is required, got %v", err)
	}

	active := pending
	active.Status = models.StatusActive
	if err := lifecycle.CanAcceptAgreement(active, participant, false); !lifecycle.IsKind(err, lifecycle.KindConflict) {
		t.Fatalf("double acceptance should conflict, got %v", err)
	}
}
