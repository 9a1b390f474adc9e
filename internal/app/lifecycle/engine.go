// Package lifecycle is the decision layer for the service agreement state
// machine: pending_invite -> pending_agreement -> active.
//
// Every mutating operation takes the acting user's identity as an explicit
// parameter (resolved once at the HTTP boundary, never re-derived here),
// loads a fresh record, evaluates the pure rules in rules.go, and writes
// through a guarded store update whose precondition repeats the rule. When
// a concurrent request wins the race between the read and the write, the
// guarded update matches nothing and the operation re-reads to return the
// accurate conflict instead of silently overwriting.
package lifecycle

import (
	"context"
	"errors"
	"strings"

	servicestore "github.com/acuerdohq/acuerdo/internal/app/store/services"
	"github.com/acuerdohq/acuerdo/internal/app/system/invitecode"
	"github.com/acuerdohq/acuerdo/internal/domain/models"
	"github.com/microcosm-cc/bluemonday"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// codeRetries bounds invite-code regeneration when an insert collides with
// the unique invite_code index.
const codeRetries = 5

// Store is the persistence contract the engine writes through. The mongo
// implementation lives in internal/app/store/services; tests use an
// in-memory double. Implementations return servicestore.ErrNotFound,
// servicestore.ErrDuplicateCode, and servicestore.ErrNoMatch as documented
// on each method.
type Store interface {
	// Insert persists a new service. Returns servicestore.ErrDuplicateCode
	// when the invite code collides with an existing one.
	Insert(ctx context.Context, svc models.Service) (models.Service, error)

	// GetByID returns servicestore.ErrNotFound when no service matches.
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Service, error)

	// GetByInviteCode returns servicestore.ErrNotFound when no service
	// matches.
	GetByInviteCode(ctx context.Context, code string) (models.Service, error)

	// ListForUser returns every service where the user is creator or
	// participant, each service once.
	ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Service, error)

	// ApplyJoin sets the participant and advances the status to
	// pending_agreement in one conditional write. The precondition requires
	// status pending_invite and no participant; servicestore.ErrNoMatch
	// means the precondition no longer holds.
	ApplyJoin(ctx context.Context, id, participantID primitive.ObjectID) (models.Service, error)

	// ApplyAgreement overwrites the agreement text in one conditional
	// write keyed on the creator and status pending_agreement.
	ApplyAgreement(ctx context.Context, id, creatorID primitive.ObjectID, text string) (models.Service, error)

	// ApplyActivate advances the status to active in one conditional write
	// keyed on the participant and status pending_agreement.
	ApplyActivate(ctx context.Context, id, participantID primitive.ObjectID) (models.Service, error)
}

// Policy holds the product decisions the engine leaves configurable.
type Policy struct {
	// RequireAgreementText rejects acceptance while the agreement is empty.
	// Off by default: the product currently allows accepting a service
	// whose terms were never written.
	RequireAgreementText bool
}

// Engine executes lifecycle transitions. It is stateless between calls;
// all durable state lives in the store and every read is fresh.
type Engine struct {
	store    Store
	policy   Policy
	sanitize *bluemonday.Policy
	log      *zap.Logger
}

// NewEngine builds an Engine over the given store.
func NewEngine(store Store, policy Policy, logger *zap.Logger) *Engine {
	return &Engine{
		store:    store,
		policy:   policy,
		sanitize: bluemonday.StrictPolicy(),
		log:      logger,
	}
}

// Create opens a new service owned by actor with a fresh invite code.
func (e *Engine) Create(ctx context.Context, actor primitive.ObjectID, title string) (models.Service, error) {
	title = strings.TrimSpace(e.sanitize.Sanitize(title))
	if title == "" {
		return models.Service{}, Validationf("title is required")
	}
	if len(title) > MaxTitleLen {
		return models.Service{}, Validationf("title must be at most %d characters", MaxTitleLen)
	}

	for attempt := 0; attempt < codeRetries; attempt++ {
		code, err := invitecode.Generate()
		if err != nil {
			return models.Service{}, Storage("generate invite code", err)
		}

		created, err := e.store.Insert(ctx, models.Service{
			Title:      title,
			CreatorID:  actor,
			Status:     models.StatusPendingInvite,
			InviteCode: code,
		})
		if errors.Is(err, servicestore.ErrDuplicateCode) {
			e.log.Warn("invite code collision, regenerating",
				zap.Int("attempt", attempt+1))
			continue
		}
		if err != nil {
			return models.Service{}, Storage("insert service", err)
		}

		e.log.Info("service created",
			zap.String("service_id", created.ID.Hex()),
			zap.String("creator_id", actor.Hex()))
		return created, nil
	}
	return models.Service{}, Storage("invite code space exhausted after retries", nil)
}

// Join attaches actor as the participant of the service matching code and
// advances it to pending_agreement.
func (e *Engine) Join(ctx context.Context, actor primitive.ObjectID, code string) (models.Service, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return models.Service{}, Validationf("invite code is required")
	}
	if !invitecode.Valid(code) {
		return models.Service{}, NotFoundf("invite code not recognized")
	}

	svc, err := e.store.GetByInviteCode(ctx, code)
	if errors.Is(err, servicestore.ErrNotFound) {
		return models.Service{}, NotFoundf("invite code not recognized")
	}
	if err != nil {
		return models.Service{}, Storage("look up invite code", err)
	}

	if err := CanJoin(svc, actor); err != nil {
		return models.Service{}, err
	}

	joined, err := e.store.ApplyJoin(ctx, svc.ID, actor)
	if errors.Is(err, servicestore.ErrNoMatch) {
		// Lost a race; re-read to report the state that beat us.
		return models.Service{}, e.rederive(ctx, svc.ID, func(fresh models.Service) error {
			return CanJoin(fresh, actor)
		})
	}
	if err != nil {
		return models.Service{}, Storage("join service", err)
	}

	e.log.Info("participant joined service",
		zap.String("service_id", joined.ID.Hex()),
		zap.String("participant_id", actor.Hex()))
	return joined, nil
}

// ProposeTerms overwrites the agreement text while it is still editable.
// Re-saving identical text is a no-op: the record is returned unchanged.
func (e *Engine) ProposeTerms(ctx context.Context, actor, serviceID primitive.ObjectID, text string) (models.Service, error) {
	text = strings.TrimSpace(e.sanitize.Sanitize(text))
	if text == "" {
		return models.Service{}, Validationf("agreement terms are required")
	}
	if len(text) > MaxAgreementLen {
		return models.Service{}, Validationf("agreement terms must be at most %d characters", MaxAgreementLen)
	}

	svc, err := e.load(ctx, serviceID)
	if err != nil {
		return models.Service{}, err
	}
	if err := CanProposeTerms(svc, actor); err != nil {
		return models.Service{}, err
	}
	if svc.Agreement == text {
		return svc, nil
	}

	updated, err := e.store.ApplyAgreement(ctx, serviceID, actor, text)
	if errors.Is(err, servicestore.ErrNoMatch) {
		return models.Service{}, e.rederive(ctx, serviceID, func(fresh models.Service) error {
			return CanProposeTerms(fresh, actor)
		})
	}
	if err != nil {
		return models.Service{}, Storage("save agreement terms", err)
	}

	e.log.Info("agreement terms saved",
		zap.String("service_id", serviceID.Hex()),
		zap.Int("length", len(text)))
	return updated, nil
}

// AcceptAgreement activates the service on behalf of its participant.
func (e *Engine) AcceptAgreement(ctx context.Context, actor, serviceID primitive.ObjectID) (models.Service, error) {
	svc, err := e.load(ctx, serviceID)
	if err != nil {
		return models.Service{}, err
	}
	if err := CanAcceptAgreement(svc, actor, e.policy.RequireAgreementText); err != nil {
		return models.Service{}, err
	}

	updated, err := e.store.ApplyActivate(ctx, serviceID, actor)
	if errors.Is(err, servicestore.ErrNoMatch) {
		return models.Service{}, e.rederive(ctx, serviceID, func(fresh models.Service) error {
			return CanAcceptAgreement(fresh, actor, e.policy.RequireAgreementText)
		})
	}
	if err != nil {
		return models.Service{}, Storage("accept agreement", err)
	}

	e.log.Info("agreement accepted",
		zap.String("service_id", serviceID.Hex()),
		zap.String("participant_id", actor.Hex()))
	return updated, nil
}

// ListForUser returns every service the user is a party to.
func (e *Engine) ListForUser(ctx context.Context, actor primitive.ObjectID) ([]models.Service, error) {
	list, err := e.store.ListForUser(ctx, actor)
	if err != nil {
		return nil, Storage("list services", err)
	}
	return list, nil
}

// Get returns one service, visible only to its parties.
func (e *Engine) Get(ctx context.Context, actor, serviceID primitive.ObjectID) (models.Service, error) {
	svc, err := e.load(ctx, serviceID)
	if err != nil {
		return models.Service{}, err
	}
	if !svc.IsParty(actor) {
		return models.Service{}, Authorizationf("you are not a party to this service")
	}
	return svc, nil
}

func (e *Engine) load(ctx context.Context, id primitive.ObjectID) (models.Service, error) {
	svc, err := e.store.GetByID(ctx, id)
	if errors.Is(err, servicestore.ErrNotFound) {
		return models.Service{}, NotFoundf("service not found")
	}
	if err != nil {
		return models.Service{}, Storage("load service", err)
	}
	return svc, nil
}

// rederive re-reads a record after a guarded write matched nothing and
// reruns the check to produce the precise error. Falls back to a generic
// conflict when the fresh record somehow still passes.
func (e *Engine) rederive(ctx context.Context, id primitive.ObjectID, check func(models.Service) error) error {
	fresh, err := e.load(ctx, id)
	if err != nil {
		return err
	}
	if err := check(fresh); err != nil {
		return err
	}
	return Conflictf("the service changed while processing your request; please try again")
}
