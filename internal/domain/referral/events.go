package referral

import (
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constants
const (
	AggregateTypeProgram  = "ReferralProgram"
	AggregateTypeReferral = "Referral"
)

// Event type constants
const (
	EventTypeProgramCreated      = "ReferralProgramCreated"
	EventTypeProgramCompleted    = "ReferralProgramCompleted"
	EventTypeReferralAdded       = "ReferralAdded"
	EventTypeReferralReachedDemo = "ReferralReachedDemo"
)

// ProgramCreatedEvent is raised when a referral program is opened
type ProgramCreatedEvent struct {
	shared.BaseDomainEvent
	ProgramID   uuid.UUID   `json:"program_id"`
	ProgramType ProgramType `json:"program_type"`
	OwnerID     uuid.UUID   `json:"owner_id"`
}

// NewProgramCreatedEvent creates a new ProgramCreatedEvent
func NewProgramCreatedEvent(program *ReferralProgram) *ProgramCreatedEvent {
	return &ProgramCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProgramCreated, AggregateTypeProgram, program.ID),
		ProgramID:       program.ID,
		ProgramType:     program.Type,
		OwnerID:         program.OwnerID,
	}
}

// ProgramCompletedEvent is raised once when a program derives Completed
type ProgramCompletedEvent struct {
	shared.BaseDomainEvent
	ProgramID   uuid.UUID   `json:"program_id"`
	ProgramType ProgramType `json:"program_type"`
	OwnerID     uuid.UUID   `json:"owner_id"`
}

// NewProgramCompletedEvent creates a new ProgramCompletedEvent
func NewProgramCompletedEvent(program *ReferralProgram) *ProgramCompletedEvent {
	return &ProgramCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProgramCompleted, AggregateTypeProgram, program.ID),
		ProgramID:       program.ID,
		ProgramType:     program.Type,
		OwnerID:         program.OwnerID,
	}
}

// ReferralAddedEvent is raised when a referral is recorded in a program
type ReferralAddedEvent struct {
	shared.BaseDomainEvent
	ReferralID uuid.UUID `json:"referral_id"`
	ProgramID  uuid.UUID `json:"program_id"`
	Name       string    `json:"name"`
}

// NewReferralAddedEvent creates a new ReferralAddedEvent
func NewReferralAddedEvent(r *Referral) *ReferralAddedEvent {
	return &ReferralAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReferralAdded, AggregateTypeReferral, r.ID),
		ReferralID:      r.ID,
		ProgramID:       r.ProgramID,
		Name:            r.Name,
	}
}

// ReferralReachedDemoEvent is raised when a referred person completes a demo
type ReferralReachedDemoEvent struct {
	shared.BaseDomainEvent
	ReferralID uuid.UUID `json:"referral_id"`
	ProgramID  uuid.UUID `json:"program_id"`
	Name       string    `json:"name"`
}

// NewReferralReachedDemoEvent creates a new ReferralReachedDemoEvent
func NewReferralReachedDemoEvent(r *Referral) *ReferralReachedDemoEvent {
	return &ReferralReachedDemoEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReferralReachedDemo, AggregateTypeReferral, r.ID),
		ReferralID:      r.ID,
		ProgramID:       r.ProgramID,
		Name:            r.Name,
	}
}
