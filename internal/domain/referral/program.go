package referral

import (
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProgramType represents the reward mechanism attached to a program
type ProgramType string

const (
	ProgramTwentyAndWin   ProgramType = "TWENTY_AND_WIN"
	ProgramFourInFourteen ProgramType = "FOUR_IN_FOURTEEN"
	ProgramSimpleReferral ProgramType = "SIMPLE_REFERRAL"
)

// IsValid checks if the type is a known ProgramType
func (t ProgramType) IsValid() bool {
	switch t {
	case ProgramTwentyAndWin, ProgramFourInFourteen, ProgramSimpleReferral:
		return true
	}
	return false
}

// String returns the string representation of ProgramType
func (t ProgramType) String() string {
	return string(t)
}

// ProgramStatus is derived from the program's referral children plus elapsed
// time. The stored value is a cache, never the source of truth.
type ProgramStatus string

const (
	ProgramStatusPending   ProgramStatus = "PENDING"
	ProgramStatusActive    ProgramStatus = "ACTIVE"
	ProgramStatusCompleted ProgramStatus = "COMPLETED"
	ProgramStatusExpired   ProgramStatus = "EXPIRED"
	ProgramStatusCancelled ProgramStatus = "CANCELLED"
)

// String returns the string representation of ProgramStatus
func (s ProgramStatus) String() string {
	return string(s)
}

// OwnerType identifies what kind of record owns a program
type OwnerType string

const (
	OwnerContact OwnerType = "contact"
	OwnerClient  OwnerType = "client"
)

// Threshold constants for the reward mechanisms
const (
	TwentyAndWinThreshold       = 20
	FourInFourteenDemoThreshold = 4
	FourInFourteenWindowDays    = 14
)

// Metrics are the source facts program status derives from
type Metrics struct {
	ReferralCount int
	DemoCount     int
}

// ReferralProgram is a reward mechanism attached to an opportunity, or
// directly to an owner for simple referrals.
type ReferralProgram struct {
	shared.BaseAggregateRoot
	Type ProgramType `gorm:"type:varchar(30);not null;index"`

	OwnerType OwnerType `gorm:"type:varchar(20);not null"`
	OwnerID   uuid.UUID `gorm:"type:uuid;not null;index"`

	OpportunityID *uuid.UUID `gorm:"type:uuid;index"`
	AdvisorUserID uuid.UUID  `gorm:"type:uuid;not null"`

	Status    ProgramStatus `gorm:"type:varchar(20);not null;default:'PENDING'"` // cached, derived
	StartDate time.Time     `gorm:"not null"`
	EndDate   *time.Time    // set only for the time-boxed type

	ReferralCount int `gorm:"not null;default:0"` // cached
	DemoCount     int `gorm:"not null;default:0"` // cached

	InvitationSentAt *time.Time
	GiftDeliveredAt  *time.Time
	GiftValue        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (ReferralProgram) TableName() string {
	return "referral_programs"
}

// NewProgram creates a referral program. The time-boxed type gets an end date
// fourteen days from creation.
func NewProgram(pType ProgramType, ownerType OwnerType, ownerID, advisorUserID uuid.UUID, opportunityID *uuid.UUID) (*ReferralProgram, error) {
	if !pType.IsValid() {
		return nil, shared.NewValidationError("Unknown program type")
	}
	if ownerID == uuid.Nil {
		return nil, shared.NewValidationError("Program owner cannot be empty")
	}
	if ownerType != OwnerContact && ownerType != OwnerClient {
		return nil, shared.NewValidationError("Program owner must be a contact or a client")
	}
	if advisorUserID == uuid.Nil {
		return nil, shared.NewValidationError("Program advisor cannot be empty")
	}

	now := time.Now()
	program := &ReferralProgram{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Type:              pType,
		OwnerType:         ownerType,
		OwnerID:           ownerID,
		OpportunityID:     opportunityID,
		AdvisorUserID:     advisorUserID,
		StartDate:         now,
		GiftValue:         decimal.Zero,
	}

	switch pType {
	case ProgramFourInFourteen:
		end := now.AddDate(0, 0, FourInFourteenWindowDays)
		program.EndDate = &end
		program.Status = ProgramStatusActive
	case ProgramTwentyAndWin:
		program.Status = ProgramStatusPending
	case ProgramSimpleReferral:
		program.Status = ProgramStatusActive
	}

	program.AddDomainEvent(NewProgramCreatedEvent(program))

	return program, nil
}

// DeriveStatus computes the status from source facts. It is pure: the receiver
// is read for type, end date, and the current cached status, which guards the
// sticky completed state against a downgrade when clock checks re-run.
func (p *ReferralProgram) DeriveStatus(metrics Metrics, now time.Time) ProgramStatus {
	if p.Status == ProgramStatusCancelled {
		return ProgramStatusCancelled
	}

	switch p.Type {
	case ProgramTwentyAndWin:
		if metrics.ReferralCount >= TwentyAndWinThreshold {
			return ProgramStatusActive
		}
		return ProgramStatusPending
	case ProgramFourInFourteen:
		// completion is sticky: check the cached status before ever
		// downgrading to expired
		if p.Status == ProgramStatusCompleted {
			return ProgramStatusCompleted
		}
		if p.EndDate != nil && now.After(*p.EndDate) {
			return ProgramStatusExpired
		}
		if metrics.DemoCount >= FourInFourteenDemoThreshold {
			return ProgramStatusCompleted
		}
		return ProgramStatusActive
	case ProgramSimpleReferral:
		return ProgramStatusActive
	}
	return p.Status
}

// Reconcile recomputes the cached status and counters from source facts and
// reports whether anything changed, so the caller writes back only on change.
func (p *ReferralProgram) Reconcile(metrics Metrics, now time.Time) bool {
	derived := p.DeriveStatus(metrics, now)
	changed := p.Status != derived ||
		p.ReferralCount != metrics.ReferralCount ||
		p.DemoCount != metrics.DemoCount

	if !changed {
		return false
	}

	if p.Status != derived && derived == ProgramStatusCompleted {
		p.AddDomainEvent(NewProgramCompletedEvent(p))
	}

	p.Status = derived
	p.ReferralCount = metrics.ReferralCount
	p.DemoCount = metrics.DemoCount
	p.UpdatedAt = now

	return true
}

// GiftEligible reports whether the program's reward may be delivered
func (p *ReferralProgram) GiftEligible() bool {
	switch p.Type {
	case ProgramTwentyAndWin:
		return p.ReferralCount >= TwentyAndWinThreshold && p.InvitationSentAt != nil
	case ProgramFourInFourteen:
		return p.Status == ProgramStatusCompleted
	}
	return false
}

// RecordInvitationSent records the invitation notification once; the first
// timestamp wins and later calls are no-ops.
func (p *ReferralProgram) RecordInvitationSent(at time.Time) {
	if p.InvitationSentAt != nil {
		return
	}
	p.InvitationSentAt = &at
	p.UpdatedAt = time.Now()
}

// MarkGiftDelivered records gift delivery. The gift can be delivered only
// while the program is gift-eligible.
func (p *ReferralProgram) MarkGiftDelivered(at time.Time) error {
	if p.GiftDeliveredAt != nil {
		return nil
	}
	if !p.GiftEligible() {
		return shared.NewDomainError(shared.CodePreconditionFailed, "Program is not gift-eligible")
	}
	p.GiftDeliveredAt = &at
	p.UpdatedAt = time.Now()
	return nil
}

// SetGiftValue records the value of the reward
func (p *ReferralProgram) SetGiftValue(value decimal.Decimal) error {
	if value.IsNegative() {
		return shared.NewValidationError("Gift value cannot be negative")
	}
	p.GiftValue = value
	p.UpdatedAt = time.Now()
	return nil
}

// Cancel cancels the program. Cancelled is terminal.
func (p *ReferralProgram) Cancel() error {
	if p.Status == ProgramStatusCancelled {
		return nil
	}
	if p.Status == ProgramStatusCompleted {
		return shared.NewDomainError(shared.CodePreconditionFailed, "A completed program cannot be cancelled")
	}
	p.Status = ProgramStatusCancelled
	p.UpdatedAt = time.Now()
	return nil
}

// IsCancelled reports whether the program has been cancelled
func (p *ReferralProgram) IsCancelled() bool {
	return p.Status == ProgramStatusCancelled
}
