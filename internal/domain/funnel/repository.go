package funnel

import (
	"context"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ContactRepository persists Contact aggregates
type ContactRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Contact, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Contact, error)
	// FindByPhoneDigits looks up an existing contact by canonical ten-digit
	// phone, falling back to legacy free-form phone columns with punctuation
	// stripped in the query.
	FindByPhoneDigits(ctx context.Context, digits string) (*Contact, error)
	Save(ctx context.Context, contact *Contact) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// ClientRepository persists Client aggregates and their billing-account shells
type ClientRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Client, error)
	Save(ctx context.Context, client *Client) error
	// EnsureBillingAccount creates the billing-account shell for a client if
	// one does not already exist.
	EnsureBillingAccount(ctx context.Context, clientID uuid.UUID) error
}

// OpportunityRepository persists Opportunity aggregates
type OpportunityRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Opportunity, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Opportunity, error)
	// FindActiveByContact returns the contact's opportunity with an active
	// closure state, or ErrNotFound when none exists.
	FindActiveByContact(ctx context.Context, contactID uuid.UUID) (*Opportunity, error)
	FindByContact(ctx context.Context, contactID uuid.UUID) ([]Opportunity, error)
	Save(ctx context.Context, opp *Opportunity) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// OriginRepository persists origin classification records
type OriginRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Origin, error)
	FindByName(ctx context.Context, name string) (*Origin, error)
	// EnsureByName returns the origin with the given name, creating it with
	// the given kind when missing.
	EnsureByName(ctx context.Context, name, kind string) (*Origin, error)
	Save(ctx context.Context, origin *Origin) error
}
