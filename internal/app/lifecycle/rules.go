// internal/app/lifecycle/rules.go
package lifecycle

import (
	"github.com/acuerdohq/acuerdo/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Input limits for service fields.
const (
	MaxTitleLen     = 200
	MaxAgreementLen = 20000
)

// The rules below are pure: they look only at the record and the actor,
// never at storage. The engine evaluates them against a fresh read and the
// store re-checks the same preconditions inside the conditional write, so a
// rule that passed here can still lose a race and be re-evaluated.

// CanJoin reports whether actor may join svc. Self-join is rejected before
// anything else, so a creator probing their own code sees the same answer
// in every status.
func CanJoin(svc models.Service, actor primitive.ObjectID) error {
	if svc.IsCreator(actor) {
		return Conflictf("you cannot join your own service")
	}
	if svc.HasParticipant() {
		return Conflictf("this service already has a participant")
	}
	if svc.Status != models.StatusPendingInvite {
		return Conflictf("this service is no longer open for joining")
	}
	return nil
}

// CanProposeTerms reports whether actor may write agreement terms on svc.
// Only the creator may edit, and only while the agreement is pending.
func CanProposeTerms(svc models.Service, actor primitive.ObjectID) error {
	if !svc.IsCreator(actor) {
		return Authorizationf("only the creator may edit this agreement")
	}
	if svc.Status != models.StatusPendingAgreement {
		if svc.Status == models.StatusPendingInvite {
			return Conflictf("the agreement cannot be edited until a participant joins")
		}
		return Conflictf("this agreement can no longer be edited")
	}
	return nil
}

// CanAcceptAgreement reports whether actor may accept the agreement on svc.
// requireText additionally demands non-empty agreement terms; the default
// policy allows accepting with no text, matching the product's current
// behavior.
func CanAcceptAgreement(svc models.Service, actor primitive.ObjectID, requireText bool) error {
	if !svc.IsParticipant(actor) {
		return Authorizationf("only the participant may accept this agreement")
	}
	if svc.Status != models.StatusPendingAgreement {
		return Conflictf("this agreement cannot be accepted in its current state")
	}
	if requireText && svc.Agreement == "" {
		return Conflictf("the agreement has no terms to accept yet")
	}
	return nil
}
