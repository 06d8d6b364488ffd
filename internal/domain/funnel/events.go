package funnel

import (
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constants
const (
	AggregateTypeContact     = "Contact"
	AggregateTypeClient      = "Client"
	AggregateTypeOpportunity = "Opportunity"
)

// Event type constants
const (
	EventTypeContactCreated          = "ContactCreated"
	EventTypeContactConverted        = "ContactConverted"
	EventTypeClientCreated           = "ClientCreated"
	EventTypeOpportunityCreated      = "OpportunityCreated"
	EventTypeOpportunityStageChanged = "OpportunityStageChanged"
	EventTypeOpportunityWon          = "OpportunityWon"
	EventTypeOpportunityLost         = "OpportunityLost"
)

// ContactCreatedEvent is raised when a new contact enters the funnel
type ContactCreatedEvent struct {
	shared.BaseDomainEvent
	ContactID  uuid.UUID `json:"contact_id"`
	Name       string    `json:"name"`
	AssignedTo uuid.UUID `json:"assigned_to"`
	OriginType string    `json:"origin_type"`
}

// NewContactCreatedEvent creates a new ContactCreatedEvent
func NewContactCreatedEvent(contact *Contact) *ContactCreatedEvent {
	return &ContactCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContactCreated, AggregateTypeContact, contact.ID),
		ContactID:       contact.ID,
		Name:            contact.Name,
		AssignedTo:      contact.AssignedTo,
		OriginType:      contact.OriginType,
	}
}

// ContactConvertedEvent is raised when a contact is promoted to a client
type ContactConvertedEvent struct {
	shared.BaseDomainEvent
	ContactID uuid.UUID `json:"contact_id"`
	ClientID  uuid.UUID `json:"client_id"`
}

// NewContactConvertedEvent creates a new ContactConvertedEvent
func NewContactConvertedEvent(contact *Contact) *ContactConvertedEvent {
	var clientID uuid.UUID
	if contact.ClientID != nil {
		clientID = *contact.ClientID
	}
	return &ContactConvertedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContactConverted, AggregateTypeContact, contact.ID),
		ContactID:       contact.ID,
		ClientID:        clientID,
	}
}

// ClientCreatedEvent is raised when a client record is created at promotion
type ClientCreatedEvent struct {
	shared.BaseDomainEvent
	ClientID uuid.UUID `json:"client_id"`
	Name     string    `json:"name"`
}

// NewClientCreatedEvent creates a new ClientCreatedEvent
func NewClientCreatedEvent(client *Client) *ClientCreatedEvent {
	return &ClientCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClientCreated, AggregateTypeClient, client.ID),
		ClientID:        client.ID,
		Name:            client.Name,
	}
}

// OpportunityCreatedEvent is raised when an opportunity enters the funnel
type OpportunityCreatedEvent struct {
	shared.BaseDomainEvent
	OpportunityID uuid.UUID  `json:"opportunity_id"`
	ContactID     *uuid.UUID `json:"contact_id,omitempty"`
	OwnerUserID   uuid.UUID  `json:"owner_user_id"`
}

// NewOpportunityCreatedEvent creates a new OpportunityCreatedEvent
func NewOpportunityCreatedEvent(opp *Opportunity) *OpportunityCreatedEvent {
	return &OpportunityCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOpportunityCreated, AggregateTypeOpportunity, opp.ID),
		OpportunityID:   opp.ID,
		ContactID:       opp.ContactID,
		OwnerUserID:     opp.OwnerUserID,
	}
}

// OpportunityStageChangedEvent is raised on every non-terminal stage write
type OpportunityStageChangedEvent struct {
	shared.BaseDomainEvent
	OpportunityID uuid.UUID `json:"opportunity_id"`
	FromStage     Stage     `json:"from_stage"`
	ToStage       Stage     `json:"to_stage"`
	OwnerUserID   uuid.UUID `json:"owner_user_id"`
}

// NewOpportunityStageChangedEvent creates a new OpportunityStageChangedEvent
func NewOpportunityStageChangedEvent(opp *Opportunity, from Stage) *OpportunityStageChangedEvent {
	return &OpportunityStageChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOpportunityStageChanged, AggregateTypeOpportunity, opp.ID),
		OpportunityID:   opp.ID,
		FromStage:       from,
		ToStage:         opp.Stage,
		OwnerUserID:     opp.OwnerUserID,
	}
}

// OpportunityWonEvent is raised when an opportunity reaches the Won stage.
// This event triggers promotion side effects in the application layer.
type OpportunityWonEvent struct {
	shared.BaseDomainEvent
	OpportunityID uuid.UUID  `json:"opportunity_id"`
	ContactID     *uuid.UUID `json:"contact_id,omitempty"`
	OwnerUserID   uuid.UUID  `json:"owner_user_id"`
}

// NewOpportunityWonEvent creates a new OpportunityWonEvent
func NewOpportunityWonEvent(opp *Opportunity) *OpportunityWonEvent {
	return &OpportunityWonEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOpportunityWon, AggregateTypeOpportunity, opp.ID),
		OpportunityID:   opp.ID,
		ContactID:       opp.ContactID,
		OwnerUserID:     opp.OwnerUserID,
	}
}

// OpportunityLostEvent is raised when an opportunity reaches the Lost stage
type OpportunityLostEvent struct {
	shared.BaseDomainEvent
	OpportunityID uuid.UUID `json:"opportunity_id"`
	LossReason    string    `json:"loss_reason"`
	OwnerUserID   uuid.UUID `json:"owner_user_id"`
}

// NewOpportunityLostEvent creates a new OpportunityLostEvent
func NewOpportunityLostEvent(opp *Opportunity) *OpportunityLostEvent {
	return &OpportunityLostEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOpportunityLost, AggregateTypeOpportunity, opp.ID),
		OpportunityID:   opp.ID,
		LossReason:      opp.LossReason,
		OwnerUserID:     opp.OwnerUserID,
	}
}
