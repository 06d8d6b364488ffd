package funnel

import (
	"context"

	"github.com/crm/backend/internal/domain/funnel"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ContactResolver resolves a (name, phone) pair to an existing contact or
// creates a minimal one. Shared by lead intake and the referral cascade.
type ContactResolver struct {
	contactRepo funnel.ContactRepository
}

// NewContactResolver creates a new ContactResolver
func NewContactResolver(contactRepo funnel.ContactRepository) *ContactResolver {
	return &ContactResolver{contactRepo: contactRepo}
}

// ResolveOrCreate finds the contact matching the normalized phone, or creates
// a minimal referred contact assigned to the given seller. The second return
// reports whether a contact was created by this call.
func (r *ContactResolver) ResolveOrCreate(
	ctx context.Context,
	name, phone string,
	referrerType funnel.ReferredByType,
	referrerID uuid.UUID,
	assignedTo uuid.UUID,
) (*funnel.Contact, bool, error) {
	digits, valid := funnel.NormalizePhone(phone)
	if valid {
		existing, err := r.contactRepo.FindByPhoneDigits(ctx, digits)
		if err != nil && !shared.IsNotFound(err) {
			return nil, false, err
		}
		if existing != nil {
			return existing, false, nil
		}
	}

	contact, err := funnel.NewReferredContact(name, phone, referrerType, referrerID, assignedTo)
	if err != nil {
		return nil, false, err
	}
	if err := r.contactRepo.Save(ctx, contact); err != nil {
		return nil, false, err
	}
	return contact, true, nil
}
