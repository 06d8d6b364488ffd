package funnel

import (
	"context"

	"github.com/crm/backend/internal/domain/funnel"
	"github.com/crm/backend/internal/domain/identity"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OpportunityService owns the stage/closure state machine, visibility
// filtering, and transition validation.
type OpportunityService struct {
	opportunityRepo funnel.OpportunityRepository
	contactRepo     funnel.ContactRepository
	clientRepo      funnel.ClientRepository
	txManager       shared.TransactionManager
	eventPublisher  shared.EventPublisher
	logger          *zap.Logger
}

// NewOpportunityService creates a new OpportunityService
func NewOpportunityService(
	opportunityRepo funnel.OpportunityRepository,
	contactRepo funnel.ContactRepository,
	clientRepo funnel.ClientRepository,
	txManager shared.TransactionManager,
	logger *zap.Logger,
) *OpportunityService {
	return &OpportunityService{
		opportunityRepo: opportunityRepo,
		contactRepo:     contactRepo,
		clientRepo:      clientRepo,
		txManager:       txManager,
		logger:          logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *OpportunityService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// List retrieves opportunities visible to the actor, with filtering
func (s *OpportunityService) List(ctx context.Context, actor identity.Actor, filter OpportunityListFilter) ([]OpportunityResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Filters:  make(map[string]interface{}),
	}

	if filter.Stage != nil {
		domainFilter.Filters["stage"] = string(*filter.Stage)
	}
	if len(filter.ExcludeStages) > 0 {
		domainFilter.Filters["exclude_stages"] = stageStrings(filter.ExcludeStages)
	}
	if filter.OriginID != nil {
		domainFilter.Filters["origin_id"] = *filter.OriginID
	}
	if filter.ProductLike != "" {
		domainFilter.Filters["product_like"] = filter.ProductLike
	}
	if filter.ClosureState != nil {
		domainFilter.Filters["closure_state"] = string(*filter.ClosureState)
	}

	// Role visibility: restrict the owner set, and for telemarketers the
	// stage subset as well.
	ownerIDs := visibleOwnerIntersection(actor, filter.OwnerIDs)
	if ownerIDs != nil {
		if len(ownerIDs) == 0 {
			return []OpportunityResponse{}, 0, nil
		}
		domainFilter.Filters["owner_ids"] = ownerIDs
	}
	if actor.Role == identity.RoleTelemarketer {
		domainFilter.Filters["stages"] = stageStrings(funnel.TelemarketerStages)
	}

	opps, err := s.opportunityRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.opportunityRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToOpportunityResponses(opps), total, nil
}

// GetByID retrieves a single opportunity, enforcing the ownership predicate.
// A record outside the actor's visibility yields AccessDenied, distinct from
// NotFound.
func (s *OpportunityService) GetByID(ctx context.Context, actor identity.Actor, id uuid.UUID) (*OpportunityResponse, error) {
	opp, err := s.visibleOpportunity(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	response := ToOpportunityResponse(opp)
	return &response, nil
}

// Create opens a new opportunity for a contact. An existing active-closure
// opportunity for the same contact is a conflict carrying the existing record,
// unless the caller forces the create.
func (s *OpportunityService) Create(ctx context.Context, actor identity.Actor, req CreateOpportunityRequest) (*OpportunityResponse, error) {
	ownerID := actor.UserID
	if req.OwnerUserID != nil {
		ownerID = *req.OwnerUserID
	}
	if !actor.CanActFor(ownerID) {
		return nil, shared.ErrAccessDenied
	}

	contact, err := s.contactRepo.FindByID(ctx, req.ContactID)
	if err != nil {
		return nil, err
	}

	var opp *funnel.Opportunity
	err = s.txManager.Transaction(ctx, func(txCtx context.Context) error {
		if !req.Force {
			existing, err := s.opportunityRepo.FindActiveByContact(txCtx, contact.ID)
			if err != nil && !shared.IsNotFound(err) {
				return err
			}
			if existing != nil {
				return shared.NewConflictError("Contact already has an active opportunity", ToOpportunityResponse(existing))
			}
		}

		opp, err = funnel.NewContactOpportunity(contact.ID, ownerID)
		if err != nil {
			return err
		}
		if req.OriginID != nil {
			opp.SetOrigin(*req.OriginID, req.SourceLabel)
		} else if req.SourceLabel != "" {
			opp.SetOrigin(uuid.Nil, req.SourceLabel)
		}
		if req.Product != "" || req.EstimatedValue != nil {
			value := opp.EstimatedValue
			if req.EstimatedValue != nil {
				value = *req.EstimatedValue
			}
			if err := opp.SetProduct(req.Product, value); err != nil {
				return err
			}
		}

		return s.opportunityRepo.Save(txCtx, opp)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, opp)

	response := ToOpportunityResponse(opp)
	return &response, nil
}

// TransitionStage moves an opportunity to a new stage. Reaching Won on a
// contact-bound opportunity promotes the contact to a client inside the same
// transaction.
func (s *OpportunityService) TransitionStage(ctx context.Context, actor identity.Actor, id uuid.UUID, req TransitionStageRequest) (*OpportunityResponse, error) {
	opp, err := s.visibleOpportunity(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if actor.Role == identity.RoleTelemarketer && !req.Stage.VisibleToTelemarketer() {
		return nil, shared.ErrForbiddenTransition
	}

	if err := opp.ChangeStage(req.Stage, funnel.StageChange{
		AppointmentAt:  req.AppointmentAt,
		NextAction:     req.NextAction,
		NextActionDate: req.NextActionDate,
		LossReason:     req.LossReason,
	}); err != nil {
		return nil, err
	}

	err = s.txManager.Transaction(ctx, func(txCtx context.Context) error {
		if opp.Stage == funnel.StageWon && opp.BelongsToContact() {
			if _, err := s.promoteLocked(txCtx, opp); err != nil {
				return err
			}
		}
		return s.opportunityRepo.Save(txCtx, opp)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, opp)

	response := ToOpportunityResponse(opp)
	return &response, nil
}

// SetClosureState sets the closure sub-state of an opportunity
func (s *OpportunityService) SetClosureState(ctx context.Context, actor identity.Actor, id uuid.UUID, req SetClosureRequest) (*OpportunityResponse, error) {
	opp, err := s.visibleOpportunity(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if err := opp.SetClosure(req.State, req.Reason, req.NextContactDate); err != nil {
		return nil, err
	}
	if err := s.opportunityRepo.Save(ctx, opp); err != nil {
		return nil, err
	}

	response := ToOpportunityResponse(opp)
	return &response, nil
}

// PromoteToClient promotes a won, contact-bound opportunity into a client.
// The four promotion effects are one atomic transaction. Calling it on an
// opportunity already bound to a client returns that client's id.
func (s *OpportunityService) PromoteToClient(ctx context.Context, opportunityID uuid.UUID) (uuid.UUID, error) {
	opp, err := s.opportunityRepo.FindByID(ctx, opportunityID)
	if err != nil {
		return uuid.Nil, err
	}
	if opp.ClientID != nil {
		return *opp.ClientID, nil
	}
	if opp.Stage != funnel.StageWon {
		return uuid.Nil, shared.NewDomainError(shared.CodePreconditionFailed, "Only a won opportunity can be promoted")
	}

	var clientID uuid.UUID
	err = s.txManager.Transaction(ctx, func(txCtx context.Context) error {
		clientID, err = s.promoteLocked(txCtx, opp)
		if err != nil {
			return err
		}
		return s.opportunityRepo.Save(txCtx, opp)
	})
	if err != nil {
		return uuid.Nil, err
	}

	s.publishEvents(ctx, opp)

	return clientID, nil
}

// promoteLocked applies the promotion sequence inside the caller's
// transaction: create the client from the contact's identity fields, mark the
// contact converted, re-point the opportunity, and ensure the billing shell.
func (s *OpportunityService) promoteLocked(txCtx context.Context, opp *funnel.Opportunity) (uuid.UUID, error) {
	if opp.ContactID == nil {
		return uuid.Nil, shared.NewValidationError("Opportunity is not bound to a contact")
	}

	contact, err := s.contactRepo.FindByID(txCtx, *opp.ContactID)
	if err != nil {
		return uuid.Nil, err
	}

	client, err := funnel.NewClientFromContact(contact)
	if err != nil {
		return uuid.Nil, err
	}
	if err := s.clientRepo.Save(txCtx, client); err != nil {
		return uuid.Nil, err
	}

	if err := contact.MarkConverted(client.ID); err != nil {
		return uuid.Nil, err
	}
	if err := s.contactRepo.Save(txCtx, contact); err != nil {
		return uuid.Nil, err
	}

	if err := opp.AttachToClient(client.ID); err != nil {
		return uuid.Nil, err
	}

	if err := s.clientRepo.EnsureBillingAccount(txCtx, client.ID); err != nil {
		return uuid.Nil, err
	}

	return client.ID, nil
}

// Delete removes an opportunity. Only an actor with ownership of the record
// may remove it.
func (s *OpportunityService) Delete(ctx context.Context, actor identity.Actor, id uuid.UUID) error {
	opp, err := s.opportunityRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanActFor(opp.OwnerUserID) {
		return shared.ErrAccessDenied
	}
	return s.opportunityRepo.Delete(ctx, id)
}

// Reassign moves an opportunity to another seller. Distributors only.
func (s *OpportunityService) Reassign(ctx context.Context, actor identity.Actor, id uuid.UUID, req ReassignOpportunityRequest) (*OpportunityResponse, error) {
	if !actor.IsDistributor() {
		return nil, shared.ErrAccessDenied
	}
	opp, err := s.opportunityRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := opp.Reassign(req.OwnerUserID); err != nil {
		return nil, err
	}
	if err := s.opportunityRepo.Save(ctx, opp); err != nil {
		return nil, err
	}
	response := ToOpportunityResponse(opp)
	return &response, nil
}

// visibleOpportunity loads an opportunity and enforces the actor's visibility:
// ownership first, then the telemarketer stage cutoff.
func (s *OpportunityService) visibleOpportunity(ctx context.Context, actor identity.Actor, id uuid.UUID) (*funnel.Opportunity, error) {
	opp, err := s.opportunityRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanActFor(opp.OwnerUserID) {
		return nil, shared.ErrAccessDenied
	}
	if actor.Role == identity.RoleTelemarketer && !opp.Stage.VisibleToTelemarketer() {
		return nil, shared.ErrAccessDenied
	}
	return opp, nil
}

// publishEvents publishes the aggregate's pending events. Publish failures
// are logged, never propagated: the write has already committed.
func (s *OpportunityService) publishEvents(ctx context.Context, agg shared.AggregateRoot) {
	if s.eventPublisher == nil {
		return
	}
	events := agg.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish domain events",
			zap.String("aggregate_id", agg.GetID().String()),
			zap.Error(err),
		)
	}
	agg.ClearDomainEvents()
}

// visibleOwnerIntersection narrows a requested owner filter to the actor's
// visible owner set. nil means unrestricted.
func visibleOwnerIntersection(actor identity.Actor, requested []uuid.UUID) []uuid.UUID {
	visible := actor.VisibleOwnerIDs()
	if visible == nil {
		return requested
	}
	if len(requested) == 0 {
		return visible
	}
	allowed := make(map[uuid.UUID]bool, len(visible))
	for _, id := range visible {
		allowed[id] = true
	}
	intersection := make([]uuid.UUID, 0, len(requested))
	for _, id := range requested {
		if allowed[id] {
			intersection = append(intersection, id)
		}
	}
	return intersection
}

func stageStrings(stages []funnel.Stage) []string {
	out := make([]string, len(stages))
	for i, s := range stages {
		out[i] = string(s)
	}
	return out
}
