package funnel

import (
	"fmt"
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Stage represents the opportunity's position in the sales funnel
type Stage string

const (
	StageNewLead              Stage = "NEW_LEAD"
	StageContactAttempted     Stage = "CONTACT_ATTEMPTED"
	StageContacted            Stage = "CONTACTED"
	StageQualification        Stage = "QUALIFICATION"
	StageAppointmentScheduled Stage = "APPOINTMENT_SCHEDULED"
	StageDemoCompleted        Stage = "DEMO_COMPLETED"
	StageProposal             Stage = "PROPOSAL"
	StageFollowUp             Stage = "FOLLOW_UP"
	StageWon                  Stage = "WON"
	StageLost                 Stage = "LOST"
)

// stageOrder fixes the funnel ordering. The model permits jumping stages; the
// ordering exists for display and for the telemarketer visibility cutoff.
var stageOrder = map[Stage]int{
	StageNewLead:              0,
	StageContactAttempted:     1,
	StageContacted:            2,
	StageQualification:        3,
	StageAppointmentScheduled: 4,
	StageDemoCompleted:        5,
	StageProposal:             6,
	StageFollowUp:             7,
	StageWon:                  8,
	StageLost:                 9,
}

// IsValid checks if the stage is a known Stage
func (s Stage) IsValid() bool {
	_, ok := stageOrder[s]
	return ok
}

// String returns the string representation of Stage
func (s Stage) String() string {
	return string(s)
}

// Order returns the position of the stage in the funnel
func (s Stage) Order() int {
	return stageOrder[s]
}

// IsTerminal reports whether the stage accepts no further transitions
func (s Stage) IsTerminal() bool {
	return s == StageWon || s == StageLost
}

// TelemarketerStages is the reduced stage subset telemarketers may see and set
var TelemarketerStages = []Stage{
	StageNewLead,
	StageContactAttempted,
	StageContacted,
	StageQualification,
}

// VisibleToTelemarketer reports whether the stage falls inside the
// telemarketer subset
func (s Stage) VisibleToTelemarketer() bool {
	for _, allowed := range TelemarketerStages {
		if s == allowed {
			return true
		}
	}
	return false
}

// ClosureState describes engagement status independent of funnel position
type ClosureState string

const (
	ClosureActive        ClosureState = "ACTIVE"
	ClosureFollowUp      ClosureState = "FOLLOW_UP"
	ClosureNotInterested ClosureState = "NOT_INTERESTED"
)

// IsValid checks if the closure state is known
func (c ClosureState) IsValid() bool {
	switch c {
	case ClosureActive, ClosureFollowUp, ClosureNotInterested:
		return true
	}
	return false
}

// String returns the string representation of ClosureState
func (c ClosureState) String() string {
	return string(c)
}

// StageChange carries the transition-specific fields a stage write may require
type StageChange struct {
	AppointmentAt  *time.Time
	NextAction     string
	NextActionDate *time.Time
	LossReason     string
}

// Opportunity is the funnel unit. It belongs to exactly one prospect entity:
// a contact before conversion, a client after.
type Opportunity struct {
	shared.BaseAggregateRoot
	ContactID *uuid.UUID `gorm:"type:uuid;index"`
	ClientID  *uuid.UUID `gorm:"type:uuid;index"`

	OwnerUserID uuid.UUID  `gorm:"type:uuid;not null;index"`
	OriginID    *uuid.UUID `gorm:"type:uuid"`
	SourceLabel string     `gorm:"type:varchar(100)"`
	Product     string     `gorm:"type:varchar(200)"`

	EstimatedValue decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`

	Stage        Stage        `gorm:"type:varchar(30);not null;default:'NEW_LEAD';index"`
	ClosureState ClosureState `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`

	AppointmentAt   *time.Time
	NextAction      string `gorm:"type:varchar(300)"`
	NextActionDate  *time.Time
	NextContactDate *time.Time
	LossReason      string `gorm:"type:varchar(300)"`
	ClosureReason   string `gorm:"type:varchar(300)"`

	WonAt  *time.Time
	LostAt *time.Time
}

// TableName returns the table name for GORM
func (Opportunity) TableName() string {
	return "opportunities"
}

// NewContactOpportunity creates an opportunity bound to a contact, starting at
// NewLead with an active closure state
func NewContactOpportunity(contactID, ownerUserID uuid.UUID) (*Opportunity, error) {
	if contactID == uuid.Nil {
		return nil, shared.NewValidationError("Contact ID cannot be empty")
	}
	if ownerUserID == uuid.Nil {
		return nil, shared.NewValidationError("Owner user ID cannot be empty")
	}

	cID := contactID
	opp := &Opportunity{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ContactID:         &cID,
		OwnerUserID:       ownerUserID,
		EstimatedValue:    decimal.Zero,
		Stage:             StageNewLead,
		ClosureState:      ClosureActive,
	}

	opp.AddDomainEvent(NewOpportunityCreatedEvent(opp))

	return opp, nil
}

// BelongsToContact reports whether the opportunity is still bound to a contact
func (o *Opportunity) BelongsToContact() bool {
	return o.ContactID != nil
}

// IsActive reports whether the closure state is active
func (o *Opportunity) IsActive() bool {
	return o.ClosureState == ClosureActive
}

// ValidateProspectLink checks the exactly-one-prospect invariant
func (o *Opportunity) ValidateProspectLink() error {
	if o.ContactID != nil && o.ClientID != nil {
		return shared.NewValidationError("Opportunity cannot reference both a contact and a client")
	}
	if o.ContactID == nil && o.ClientID == nil {
		return shared.NewValidationError("Opportunity must reference a contact or a client")
	}
	return nil
}

// ChangeStage moves the opportunity to a new stage. Jumps are permitted; the
// validation is per target stage, applied on every stage write. Terminal
// stages accept no further transition.
func (o *Opportunity) ChangeStage(newStage Stage, extra StageChange) error {
	if !newStage.IsValid() {
		return shared.NewValidationError(fmt.Sprintf("Unknown stage %q", newStage))
	}
	if o.Stage.IsTerminal() {
		return shared.NewValidationError(fmt.Sprintf("Opportunity is closed in %s and cannot change stage", o.Stage))
	}

	switch newStage {
	case StageAppointmentScheduled:
		if extra.AppointmentAt == nil {
			return shared.NewValidationError("An appointment datetime is required to schedule an appointment")
		}
		o.AppointmentAt = extra.AppointmentAt
	case StageFollowUp:
		if extra.NextAction == "" {
			return shared.NewValidationError("A next action is required to mark an opportunity for follow up")
		}
		if extra.NextActionDate == nil {
			return shared.NewValidationError("A next action date is required to mark an opportunity for follow up")
		}
		o.NextAction = extra.NextAction
		o.NextActionDate = extra.NextActionDate
	case StageLost:
		if extra.LossReason == "" {
			return shared.NewValidationError("A loss reason is required to mark an opportunity as lost")
		}
		o.LossReason = extra.LossReason
	}

	previous := o.Stage
	now := time.Now()
	o.Stage = newStage
	o.UpdatedAt = now

	switch newStage {
	case StageWon:
		o.WonAt = &now
		o.AddDomainEvent(NewOpportunityWonEvent(o))
	case StageLost:
		o.LostAt = &now
		o.AddDomainEvent(NewOpportunityLostEvent(o))
	default:
		o.AddDomainEvent(NewOpportunityStageChangedEvent(o, previous))
	}

	return nil
}

// SetClosure sets the closure sub-state. A follow-up requires the next contact
// date; marking not interested requires a reason on every path.
func (o *Opportunity) SetClosure(state ClosureState, reason string, nextContactDate *time.Time) error {
	if !state.IsValid() {
		return shared.NewValidationError(fmt.Sprintf("Unknown closure state %q", state))
	}

	switch state {
	case ClosureFollowUp:
		if nextContactDate == nil {
			return shared.NewValidationError("A next contact date is required to set follow up")
		}
		o.NextContactDate = nextContactDate
	case ClosureNotInterested:
		if reason == "" {
			return shared.NewValidationError("A reason is required to mark not interested")
		}
		o.ClosureReason = reason
	}

	o.ClosureState = state
	o.UpdatedAt = time.Now()

	return nil
}

// SetOrigin tags the opportunity with an origin classification
func (o *Opportunity) SetOrigin(originID uuid.UUID, label string) {
	if originID != uuid.Nil {
		o.OriginID = &originID
	}
	o.SourceLabel = label
	o.UpdatedAt = time.Now()
}

// SetProduct sets the product of interest and its estimated value
func (o *Opportunity) SetProduct(product string, estimatedValue decimal.Decimal) error {
	if estimatedValue.IsNegative() {
		return shared.NewValidationError("Estimated value cannot be negative")
	}
	o.Product = product
	o.EstimatedValue = estimatedValue
	o.UpdatedAt = time.Now()
	return nil
}

// Reassign moves the opportunity to another owning seller
func (o *Opportunity) Reassign(ownerUserID uuid.UUID) error {
	if ownerUserID == uuid.Nil {
		return shared.NewValidationError("Owner user ID cannot be empty")
	}
	o.OwnerUserID = ownerUserID
	o.UpdatedAt = time.Now()
	return nil
}

// AttachToClient re-points a won opportunity from its contact to the client
// created at promotion. The contact link is cleared so the exactly-one-prospect
// invariant keeps holding.
func (o *Opportunity) AttachToClient(clientID uuid.UUID) error {
	if clientID == uuid.Nil {
		return shared.NewValidationError("Client ID cannot be empty")
	}
	if o.Stage != StageWon {
		return shared.NewDomainError(shared.CodePreconditionFailed, "Only a won opportunity can be attached to a client")
	}
	cID := clientID
	o.ClientID = &cID
	o.ContactID = nil
	o.UpdatedAt = time.Now()
	return nil
}
