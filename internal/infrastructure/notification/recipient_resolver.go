package notification

import (
	"context"
	"fmt"

	"github.com/crm/backend/internal/domain/funnel"
	"github.com/crm/backend/internal/domain/referral"
	"github.com/google/uuid"
)

// Recipient is the resolved delivery target for a program notification
type Recipient struct {
	Name  string
	Email string
}

// RecipientResolver resolves the owner of a program to a deliverable address.
// An owner without an email resolves to a Recipient with an empty Email.
type RecipientResolver interface {
	RecipientFor(ctx context.Context, programID uuid.UUID) (Recipient, error)
}

// ProgramOwnerResolver resolves recipients from the program's owning contact
// or client record.
type ProgramOwnerResolver struct {
	programRepo referral.ProgramRepository
	contactRepo funnel.ContactRepository
	clientRepo  funnel.ClientRepository
}

// NewProgramOwnerResolver creates a new ProgramOwnerResolver
func NewProgramOwnerResolver(programRepo referral.ProgramRepository, contactRepo funnel.ContactRepository, clientRepo funnel.ClientRepository) *ProgramOwnerResolver {
	return &ProgramOwnerResolver{
		programRepo: programRepo,
		contactRepo: contactRepo,
		clientRepo:  clientRepo,
	}
}

// RecipientFor resolves the program's owner to a recipient
func (r *ProgramOwnerResolver) RecipientFor(ctx context.Context, programID uuid.UUID) (Recipient, error) {
	program, err := r.programRepo.FindByID(ctx, programID)
	if err != nil {
		return Recipient{}, err
	}

	switch program.OwnerType {
	case referral.OwnerContact:
		contact, err := r.contactRepo.FindByID(ctx, program.OwnerID)
		if err != nil {
			return Recipient{}, err
		}
		return Recipient{Name: contact.Name, Email: contact.Email}, nil
	case referral.OwnerClient:
		client, err := r.clientRepo.FindByID(ctx, program.OwnerID)
		if err != nil {
			return Recipient{}, err
		}
		return Recipient{Name: client.Name, Email: client.Email}, nil
	}
	return Recipient{}, fmt.Errorf("unknown owner type %q on program %s", program.OwnerType, programID)
}
