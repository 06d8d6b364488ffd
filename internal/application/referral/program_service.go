package referral

import (
	"context"
	"time"

	"github.com/crm/backend/internal/domain/funnel"
	"github.com/crm/backend/internal/domain/identity"
	"github.com/crm/backend/internal/domain/referral"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProgramService owns program creation, derived status computation, and
// reward/notification gating.
type ProgramService struct {
	programRepo     referral.ProgramRepository
	referralRepo    referral.ReferralRepository
	opportunityRepo funnel.OpportunityRepository
	txManager       shared.TransactionManager
	eventPublisher  shared.EventPublisher
	logger          *zap.Logger
}

// NewProgramService creates a new ProgramService
func NewProgramService(
	programRepo referral.ProgramRepository,
	referralRepo referral.ReferralRepository,
	opportunityRepo funnel.OpportunityRepository,
	txManager shared.TransactionManager,
	logger *zap.Logger,
) *ProgramService {
	return &ProgramService{
		programRepo:     programRepo,
		referralRepo:    referralRepo,
		opportunityRepo: opportunityRepo,
		txManager:       txManager,
		logger:          logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *ProgramService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create opens a referral program. Idempotent per (opportunity, type): when a
// non-cancelled program of the same type already exists on the opportunity it
// is returned as-is. An opportunity qualifies once it has completed a demo;
// a distributor may override that precondition.
func (s *ProgramService) Create(ctx context.Context, actor identity.Actor, req CreateProgramRequest) (*ProgramResponse, error) {
	var (
		ownerType referral.OwnerType
		ownerID   uuid.UUID
		advisorID = actor.UserID
	)

	if req.OpportunityID != nil {
		opp, err := s.opportunityRepo.FindByID(ctx, *req.OpportunityID)
		if err != nil {
			return nil, err
		}
		if !actor.CanActFor(opp.OwnerUserID) {
			return nil, shared.ErrAccessDenied
		}

		existing, err := s.programRepo.FindByOpportunityAndType(ctx, opp.ID, req.Type)
		if err != nil && !shared.IsNotFound(err) {
			return nil, err
		}
		if existing != nil {
			response := ToProgramResponse(existing)
			return &response, nil
		}

		if opp.Stage.Order() < funnel.StageDemoCompleted.Order() {
			if !req.Override || !actor.IsDistributor() {
				return nil, shared.NewDomainError(shared.CodePreconditionFailed,
					"Opportunity has not completed a demo yet")
			}
		}

		switch {
		case opp.ContactID != nil:
			ownerType, ownerID = referral.OwnerContact, *opp.ContactID
		case opp.ClientID != nil:
			ownerType, ownerID = referral.OwnerClient, *opp.ClientID
		}
		advisorID = opp.OwnerUserID
	} else {
		if req.OwnerType == nil || req.OwnerID == nil {
			return nil, shared.NewValidationError("A program without an opportunity requires an explicit owner")
		}
		ownerType, ownerID = *req.OwnerType, *req.OwnerID
	}

	if req.AdvisorUserID != nil {
		advisorID = *req.AdvisorUserID
	}

	program, err := referral.NewProgram(req.Type, ownerType, ownerID, advisorID, req.OpportunityID)
	if err != nil {
		return nil, err
	}
	if req.GiftValue != nil {
		if err := program.SetGiftValue(*req.GiftValue); err != nil {
			return nil, err
		}
	}

	if err := s.programRepo.Save(ctx, program); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, program)

	response := ToProgramResponse(program)
	return &response, nil
}

// Get returns a program with its status recomputed from its referrals plus
// elapsed time, along with the referral list. A status change observed on read
// is written back opportunistically; a write-back failure is logged and the
// recomputed status served anyway.
func (s *ProgramService) Get(ctx context.Context, programID uuid.UUID) (*ProgramDetailResponse, error) {
	program, err := s.programRepo.FindByID(ctx, programID)
	if err != nil {
		return nil, err
	}

	referrals, err := s.referralRepo.FindByProgram(ctx, programID)
	if err != nil {
		return nil, err
	}
	metrics, err := s.referralRepo.MetricsByProgram(ctx, programID)
	if err != nil {
		return nil, err
	}

	if program.Reconcile(metrics, time.Now()) {
		if err := s.programRepo.Save(ctx, program); err != nil {
			s.logger.Warn("failed to write back reconciled program status",
				zap.String("program_id", program.ID.String()),
				zap.Error(err),
			)
		} else {
			s.publishEvents(ctx, program)
		}
	}

	return &ProgramDetailResponse{
		Program:   ToProgramResponse(program),
		Referrals: ToReferralResponses(referrals),
	}, nil
}

// ListByOwner returns the programs attached to a contact or client
func (s *ProgramService) ListByOwner(ctx context.Context, ownerType referral.OwnerType, ownerID uuid.UUID) ([]ProgramResponse, error) {
	programs, err := s.programRepo.FindByOwner(ctx, ownerType, ownerID)
	if err != nil {
		return nil, err
	}
	responses := make([]ProgramResponse, len(programs))
	for i := range programs {
		responses[i] = ToProgramResponse(&programs[i])
	}
	return responses, nil
}

// UpdateState patches a program's reward and notification state. Marking the
// gift delivered before the program is gift-eligible fails the precondition.
func (s *ProgramService) UpdateState(ctx context.Context, programID uuid.UUID, req UpdateProgramStateRequest) (*ProgramResponse, error) {
	program, err := s.programRepo.FindByID(ctx, programID)
	if err != nil {
		return nil, err
	}

	metrics, err := s.referralRepo.MetricsByProgram(ctx, programID)
	if err != nil {
		return nil, err
	}
	program.Reconcile(metrics, time.Now())

	if req.GiftValue != nil {
		if err := program.SetGiftValue(*req.GiftValue); err != nil {
			return nil, err
		}
	}
	if req.InvitationSent != nil && *req.InvitationSent {
		program.RecordInvitationSent(time.Now())
	}
	if req.GiftDelivered != nil && *req.GiftDelivered {
		if err := program.MarkGiftDelivered(time.Now()); err != nil {
			return nil, err
		}
	}
	if req.Cancel != nil && *req.Cancel {
		if err := program.Cancel(); err != nil {
			return nil, err
		}
	}

	if err := s.programRepo.Save(ctx, program); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, program)

	response := ToProgramResponse(program)
	return &response, nil
}

// publishEvents publishes the aggregate's pending events. Publish failures
// are logged, never propagated: the write has already committed.
func (s *ProgramService) publishEvents(ctx context.Context, agg shared.AggregateRoot) {
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
