// internal/app/features/services/types.go
package services

import (
	"time"

	"github.com/acuerdohq/acuerdo/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type createRequest struct {
	Title string `json:"title"`
}

type joinRequest struct {
	InviteCode string `json:"invite_code"`
}

type agreementRequest struct {
	Agreement string `json:"agreement"`
}

// serviceView is the wire shape for one service. The invite code is only
// present for the creator while the service is still waiting for someone
// to join.
type serviceView struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Status        string    `json:"status"`
	InviteCode    string    `json:"invite_code,omitempty"`
	CreatorID     string    `json:"creator_id"`
	ParticipantID string    `json:"participant_id,omitempty"`
	Agreement     string    `json:"agreement"`
	Role          string    `json:"role"`
	Version       int64     `json:"version"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type listResponse struct {
	Services []serviceView `json:"services"`
}

func viewOf(svc models.Service, viewer primitive.ObjectID) serviceView {
	v := serviceView{
		ID:        svc.ID.Hex(),
		Title:     svc.Title,
		Status:    svc.Status,
		CreatorID: svc.CreatorID.Hex(),
		Agreement: svc.Agreement,
		Version:   svc.Version,
		CreatedAt: svc.CreatedAt,
		UpdatedAt: svc.UpdatedAt,
	}
	if svc.HasParticipant() {
		v.ParticipantID = svc.ParticipantID.Hex()
	}
	if svc.IsCreator(viewer) {
		v.Role = "creator"
		if svc.Status == models.StatusPendingInvite {
			v.InviteCode = svc.InviteCode
		}
	} else {
		v.Role = "participant"
	}
	return v
}

func viewsOf(list []models.Service, viewer primitive.ObjectID) []serviceView {
	out := make([]serviceView, 0, len(list))
	for _, svc := range list {
		out = append(out, viewOf(svc, viewer))
	}
	return out
}
