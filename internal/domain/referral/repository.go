package referral

import (
	"context"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ProgramRepository persists ReferralProgram aggregates
type ProgramRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ReferralProgram, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]ReferralProgram, error)
	// FindByOpportunityAndType returns the non-cancelled program of the given
	// type attached to an opportunity, or ErrNotFound.
	FindByOpportunityAndType(ctx context.Context, opportunityID uuid.UUID, pType ProgramType) (*ReferralProgram, error)
	FindByOwner(ctx context.Context, ownerType OwnerType, ownerID uuid.UUID) ([]ReferralProgram, error)
	Save(ctx context.Context, program *ReferralProgram) error
}

// ReferralRepository persists Referral aggregates
type ReferralRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Referral, error)
	FindByProgram(ctx context.Context, programID uuid.UUID) ([]Referral, error)
	// MetricsByProgram counts the program's referrals and how many reached
	// demo status. These are the source facts status derivation runs on.
	MetricsByProgram(ctx context.Context, programID uuid.UUID) (Metrics, error)
	ExistsByProgramAndPhone(ctx context.Context, programID uuid.UUID, phoneDigits string) (bool, error)
	Save(ctx context.Context, r *Referral) error
	Delete(ctx context.Context, id uuid.UUID) error
}
