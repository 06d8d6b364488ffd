package funnel

import (
	"context"

	"github.com/crm/backend/internal/domain/funnel"
	"github.com/crm/backend/internal/domain/identity"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ContactService handles contact intake and qualification updates
type ContactService struct {
	contactRepo funnel.ContactRepository
}

// NewContactService creates a new ContactService
func NewContactService(contactRepo funnel.ContactRepository) *ContactService {
	return &ContactService{contactRepo: contactRepo}
}

// Create registers a contact from intake data
func (s *ContactService) Create(ctx context.Context, actor identity.Actor, req CreateContactRequest) (*ContactResponse, error) {
	assignedTo := actor.UserID
	if req.AssignedTo != nil {
		assignedTo = *req.AssignedTo
	}
	if !actor.CanActFor(assignedTo) {
		return nil, shared.ErrAccessDenied
	}

	contact, err := funnel.NewContact(req.Name, req.Phone, assignedTo)
	if err != nil {
		return nil, err
	}
	contact.Email = req.Email
	contact.Address = req.Address
	// empty city/state keep the sentinel defaults
	contact.UpdateQualification("", "", req.City, req.State)

	if err := s.contactRepo.Save(ctx, contact); err != nil {
		return nil, err
	}

	response := ToContactResponse(contact)
	return &response, nil
}

// GetByID retrieves a contact visible to the actor
func (s *ContactService) GetByID(ctx context.Context, actor identity.Actor, id uuid.UUID) (*ContactResponse, error) {
	contact, err := s.contactRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanActFor(contact.AssignedTo) {
		return nil, shared.ErrAccessDenied
	}
	response := ToContactResponse(contact)
	return &response, nil
}

// UpdateQualification updates a contact's qualification fields
func (s *ContactService) UpdateQualification(ctx context.Context, actor identity.Actor, id uuid.UUID, req UpdateQualificationRequest) (*ContactResponse, error) {
	contact, err := s.contactRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanActFor(contact.AssignedTo) {
		return nil, shared.ErrAccessDenied
	}

	contact.UpdateQualification(req.MaritalStatus, req.HomeOwnership, req.City, req.State)
	if err := s.contactRepo.Save(ctx, contact); err != nil {
		return nil, err
	}

	response := ToContactResponse(contact)
	return &response, nil
}

// Delete removes a contact. Deliberate distributor action only.
func (s *ContactService) Delete(ctx context.Context, actor identity.Actor, id uuid.UUID) error {
	if !actor.IsDistributor() {
		return shared.ErrAccessDenied
	}
	if _, err := s.contactRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.contactRepo.Delete(ctx, id)
}
