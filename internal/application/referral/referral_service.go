package referral

import (
	"context"
	"time"

	appfunnel "github.com/crm/backend/internal/application/funnel"
	"github.com/crm/backend/internal/domain/funnel"
	"github.com/crm/backend/internal/domain/identity"
	"github.com/crm/backend/internal/domain/referral"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReferralService owns referral ingestion: manual entry, pasted free text,
// and structured bulk import, each cascading into the funnel.
type ReferralService struct {
	programRepo     referral.ProgramRepository
	referralRepo    referral.ReferralRepository
	opportunityRepo funnel.OpportunityRepository
	contactRepo     funnel.ContactRepository
	clientRepo      funnel.ClientRepository
	originRepo      funnel.OriginRepository
	contactResolver *appfunnel.ContactResolver
	txManager       shared.TransactionManager
	notifier        referral.Notifier
	eventPublisher  shared.EventPublisher
	logger          *zap.Logger
}

// NewReferralService creates a new ReferralService
func NewReferralService(
	programRepo referral.ProgramRepository,
	referralRepo referral.ReferralRepository,
	opportunityRepo funnel.OpportunityRepository,
	contactRepo funnel.ContactRepository,
	clientRepo funnel.ClientRepository,
	originRepo funnel.OriginRepository,
	contactResolver *appfunnel.ContactResolver,
	txManager shared.TransactionManager,
	notifier referral.Notifier,
	logger *zap.Logger,
) *ReferralService {
	return &ReferralService{
		programRepo:     programRepo,
		referralRepo:    referralRepo,
		opportunityRepo: opportunityRepo,
		contactRepo:     contactRepo,
		clientRepo:      clientRepo,
		originRepo:      originRepo,
		contactResolver: contactResolver,
		txManager:       txManager,
		notifier:        notifier,
		logger:          logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *ReferralService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Add records a single referral and cascades it into the funnel inside one
// transaction. A phone already present on the program is a conflict carrying
// the existing referral.
func (s *ReferralService) Add(ctx context.Context, actor identity.Actor, programID uuid.UUID, req AddReferralRequest) (*ReferralResponse, error) {
	program, err := s.loadWritableProgram(ctx, actor, programID)
	if err != nil {
		return nil, err
	}

	digits, valid := funnel.NormalizePhone(req.Phone)
	if req.Phone != "" && !valid {
		return nil, shared.NewValidationError("Phone must contain exactly ten digits")
	}

	var added *referral.Referral
	err = s.txManager.Transaction(ctx, func(txCtx context.Context) error {
		if valid {
			exists, err := s.referralRepo.ExistsByProgramAndPhone(txCtx, program.ID, digits)
			if err != nil {
				return err
			}
			if exists {
				return shared.NewConflictError("This phone is already referred on the program", nil)
			}
		}

		added, err = s.ingest(txCtx, program, req.Name, digits)
		if err != nil {
			return err
		}
		return s.reconcileProgram(txCtx, program)
	})
	if err != nil {
		return nil, err
	}

	s.notifySummary(ctx, program)
	s.publishEvents(ctx, added, program)

	response := ToReferralResponse(added)
	return &response, nil
}

// Import ingests a bulk of referrals, either pasted free text or structured
// rows, in one transaction. Rows whose phone duplicates an earlier row or an
// existing referral on the program are skipped; rows with no usable name or a
// malformed phone are counted invalid. The whole batch commits or none of it.
func (s *ReferralService) Import(ctx context.Context, actor identity.Actor, programID uuid.UUID, req ImportReferralsRequest) (*ImportResult, error) {
	rows := make([]ParsedRow, 0, len(req.Rows))
	if req.Text != "" {
		rows = append(rows, ParsePastedText(req.Text)...)
	}
	for _, r := range req.Rows {
		rows = append(rows, ParsedRow{Name: r.Name, Phone: r.Phone})
	}
	if len(rows) == 0 {
		return nil, shared.NewValidationError("Nothing to import")
	}

	program, err := s.loadWritableProgram(ctx, actor, programID)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	var added []*referral.Referral
	err = s.txManager.Transaction(ctx, func(txCtx context.Context) error {
		seen := make(map[string]bool)
		for _, row := range rows {
			if row.Name == "" {
				result.Invalid++
				continue
			}
			digits, valid := funnel.NormalizePhone(row.Phone)
			if row.Phone != "" && !valid {
				result.Invalid++
				continue
			}

			if valid {
				if seen[digits] {
					result.Skipped++
					continue
				}
				exists, err := s.referralRepo.ExistsByProgramAndPhone(txCtx, program.ID, digits)
				if err != nil {
					return err
				}
				if exists {
					result.Skipped++
					continue
				}
				seen[digits] = true
			}

			r, err := s.ingest(txCtx, program, row.Name, digits)
			if err != nil {
				return err
			}
			added = append(added, r)
			result.Inserted++
		}
		return s.reconcileProgram(txCtx, program)
	})
	if err != nil {
		return nil, err
	}

	if result.Inserted > 0 {
		s.notifySummary(ctx, program)
	}
	aggregates := make([]shared.AggregateRoot, 0, len(added)+1)
	for _, r := range added {
		aggregates = append(aggregates, r)
	}
	s.publishEvents(ctx, append(aggregates, program)...)

	return result, nil
}

// UpdateStatus moves a referral forward. Crossing into demo territory updates
// the program's cached counts and may complete it.
func (s *ReferralService) UpdateStatus(ctx context.Context, actor identity.Actor, referralID uuid.UUID, req UpdateReferralStatusRequest) (*ReferralResponse, error) {
	r, err := s.referralRepo.FindByID(ctx, referralID)
	if err != nil {
		return nil, err
	}
	program, err := s.programRepo.FindByID(ctx, r.ProgramID)
	if err != nil {
		return nil, err
	}
	if !actor.CanActFor(program.AdvisorUserID) {
		return nil, shared.ErrAccessDenied
	}

	reachedDemoBefore := r.Status.ReachedDemo()
	if err := r.UpdateStatus(req.Status); err != nil {
		return nil, err
	}

	err = s.txManager.Transaction(ctx, func(txCtx context.Context) error {
		if err := s.referralRepo.Save(txCtx, r); err != nil {
			return err
		}
		return s.reconcileProgram(txCtx, program)
	})
	if err != nil {
		return nil, err
	}

	if !reachedDemoBefore && r.Status.ReachedDemo() {
		if err := s.notifier.SendDemoUpdate(ctx, program.ID, r.Name, program.DemoCount); err != nil {
			s.logger.Warn("failed to send demo update",
				zap.String("program_id", program.ID.String()),
				zap.Error(err),
			)
		}
	}
	s.publishEvents(ctx, r, program)

	response := ToReferralResponse(r)
	return &response, nil
}

// Delete removes a referral. Records the referral exclusively spawned, its
// contact and opportunity, are removed in the same transaction: the cascade is
// symmetric with creation.
func (s *ReferralService) Delete(ctx context.Context, actor identity.Actor, referralID uuid.UUID) error {
	r, err := s.referralRepo.FindByID(ctx, referralID)
	if err != nil {
		return err
	}
	program, err := s.programRepo.FindByID(ctx, r.ProgramID)
	if err != nil {
		return err
	}
	if !actor.CanActFor(program.AdvisorUserID) {
		return shared.ErrAccessDenied
	}

	return s.txManager.Transaction(ctx, func(txCtx context.Context) error {
		if r.SpawnedOpportunityID != nil {
			if err := s.opportunityRepo.Delete(txCtx, *r.SpawnedOpportunityID); err != nil && !shared.IsNotFound(err) {
				return err
			}
		}
		if r.SpawnedContactID != nil {
			if err := s.contactRepo.Delete(txCtx, *r.SpawnedContactID); err != nil && !shared.IsNotFound(err) {
				return err
			}
		}
		if err := s.referralRepo.Delete(txCtx, r.ID); err != nil {
			return err
		}
		return s.reconcileProgram(txCtx, program)
	})
}

// ingest records one referral and cascades it: the referred person is resolved
// to a contact (deduplicated by phone digits), and a NewLead opportunity with
// the referral origin is opened for the contact unless an active one exists.
// Runs inside the caller's transaction.
func (s *ReferralService) ingest(txCtx context.Context, program *referral.ReferralProgram, name, phoneDigits string) (*referral.Referral, error) {
	r, err := referral.NewReferral(program.ID, name, phoneDigits)
	if err != nil {
		return nil, err
	}

	referrerType := funnel.ReferredByContact
	if program.OwnerType == referral.OwnerClient {
		referrerType = funnel.ReferredByClient
	}

	contact, created, err := s.contactResolver.ResolveOrCreate(
		txCtx, name, phoneDigits, referrerType, program.OwnerID, program.AdvisorUserID,
	)
	if err != nil {
		return nil, err
	}
	r.LinkContact(contact.ID)

	var spawnedContactID, spawnedOpportunityID *uuid.UUID
	if created {
		id := contact.ID
		spawnedContactID = &id
	}

	active, err := s.opportunityRepo.FindActiveByContact(txCtx, contact.ID)
	if err != nil && !shared.IsNotFound(err) {
		return nil, err
	}
	if active == nil {
		opp, err := funnel.NewContactOpportunity(contact.ID, program.AdvisorUserID)
		if err != nil {
			return nil, err
		}
		origin, err := s.originRepo.FindByName(txCtx, funnel.OriginNameReferral)
		if err != nil && !shared.IsNotFound(err) {
			return nil, err
		}
		if origin != nil {
			opp.SetOrigin(origin.ID, funnel.OriginNameReferral)
		} else {
			opp.SetOrigin(uuid.Nil, funnel.OriginNameReferral)
		}
		if err := s.opportunityRepo.Save(txCtx, opp); err != nil {
			return nil, err
		}
		id := opp.ID
		spawnedOpportunityID = &id
	}

	r.LinkSpawned(spawnedContactID, spawnedOpportunityID)

	if err := s.referralRepo.Save(txCtx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// reconcileProgram refreshes the program's cached counts and derived status
// from the source facts and persists it. Runs inside the caller's transaction.
func (s *ReferralService) reconcileProgram(txCtx context.Context, program *referral.ReferralProgram) error {
	metrics, err := s.referralRepo.MetricsByProgram(txCtx, program.ID)
	if err != nil {
		return err
	}
	program.Reconcile(metrics, time.Now())
	return s.programRepo.Save(txCtx, program)
}

// loadWritableProgram loads a program and checks the actor may ingest into it.
// Cancelled programs accept no referrals.
func (s *ReferralService) loadWritableProgram(ctx context.Context, actor identity.Actor, programID uuid.UUID) (*referral.ReferralProgram, error) {
	program, err := s.programRepo.FindByID(ctx, programID)
	if err != nil {
		return nil, err
	}
	if !actor.CanActFor(program.AdvisorUserID) {
		return nil, shared.ErrAccessDenied
	}
	if program.IsCancelled() {
		return nil, shared.NewDomainError(shared.CodePreconditionFailed, "Program is cancelled")
	}
	return program, nil
}

// notifySummary tells the program owner how many referrals the program now
// holds. Fire and forget: a delivery failure is logged, never propagated.
func (s *ReferralService) notifySummary(ctx context.Context, program *referral.ReferralProgram) {
	ownerName := s.ownerName(ctx, program)
	if err := s.notifier.SendReferralSummary(ctx, program.ID, ownerName, program.ReferralCount); err != nil {
		s.logger.Warn("failed to send referral summary",
			zap.String("program_id", program.ID.String()),
			zap.Error(err),
		)
	}
}

func (s *ReferralService) ownerName(ctx context.Context, program *referral.ReferralProgram) string {
	switch program.OwnerType {
	case referral.OwnerContact:
		if contact, err := s.contactRepo.FindByID(ctx, program.OwnerID); err == nil {
			return contact.Name
		}
	case referral.OwnerClient:
		if client, err := s.clientRepo.FindByID(ctx, program.OwnerID); err == nil {
			return client.Name
		}
	}
	return ""
}

// publishEvents publishes pending events from the touched aggregates. Publish
// failures are logged, never propagated: the writes have already committed.
func (s *ReferralService) publishEvents(ctx context.Context, aggregates ...shared.AggregateRoot) {
	if s.eventPublisher == nil {
		return
	}
	for _, agg := range aggregates {
		events := agg.GetDomainEvents()
		if len(events) == 0 {
			continue
		}
		if err := s.eventPublisher.Publish(ctx, events...); err != nil {
			s.logger.Warn("failed to publish domain events",
				zap.String("aggregate_id", agg.GetID().String()),
				zap.Error(err),
			)
		}
		agg.ClearDomainEvents()
	}
}
