package funnel

import (
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Unspecified is the sentinel stored in NOT-NULL business columns that the
// referral cascade cannot populate from a bare name+phone pair.
const Unspecified = "unspecified"

// ReferredByType classifies who referred a contact
type ReferredByType string

const (
	ReferredByNone    ReferredByType = "none"
	ReferredByContact ReferredByType = "contact"
	ReferredByClient  ReferredByType = "client"
)

// Contact represents an unconverted prospect. It is the aggregate root for
// prospect identity, qualification and referral provenance.
type Contact struct {
	shared.BaseAggregateRoot
	Name        string `gorm:"type:varchar(200);not null"`
	Phone       string `gorm:"type:varchar(50)"`  // as entered
	PhoneDigits string `gorm:"type:varchar(10);index"` // canonical ten digits, empty when unknown
	Email       string `gorm:"type:varchar(200)"`
	Address     string `gorm:"type:text"`
	City        string `gorm:"type:varchar(100);not null"`
	State       string `gorm:"type:varchar(100);not null"`

	OriginType         string         `gorm:"type:varchar(50);not null"`
	ReferredByType     ReferredByType `gorm:"type:varchar(20);not null;default:'none'"`
	ReferredByID       *uuid.UUID     `gorm:"type:uuid"`
	RelationToReferrer string         `gorm:"type:varchar(100);not null"`

	AssignedTo uuid.UUID `gorm:"type:uuid;not null;index"` // owning seller

	MaritalStatus string `gorm:"type:varchar(50)"`
	HomeOwnership string `gorm:"type:varchar(50)"`

	Converted bool       `gorm:"not null;default:false"`
	ClientID  *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (Contact) TableName() string {
	return "contacts"
}

// NewContact creates a contact from intake data
func NewContact(name, phone string, assignedTo uuid.UUID) (*Contact, error) {
	if name == "" {
		return nil, shared.NewValidationError("Contact name cannot be empty")
	}
	if assignedTo == uuid.Nil {
		return nil, shared.NewValidationError("Contact must be assigned to a seller")
	}

	digits, _ := NormalizePhone(phone)

	contact := &Contact{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		Name:               name,
		Phone:              phone,
		PhoneDigits:        digits,
		City:               Unspecified,
		State:              Unspecified,
		OriginType:         Unspecified,
		ReferredByType:     ReferredByNone,
		RelationToReferrer: Unspecified,
		AssignedTo:         assignedTo,
	}

	contact.AddDomainEvent(NewContactCreatedEvent(contact))

	return contact, nil
}

// NewReferredContact creates the minimal contact spawned by the referral
// cascade. Business columns the cascade cannot know are filled with the
// unspecified sentinel rather than null.
func NewReferredContact(name, phone string, referrerType ReferredByType, referrerID uuid.UUID, assignedTo uuid.UUID) (*Contact, error) {
	contact, err := NewContact(name, phone, assignedTo)
	if err != nil {
		return nil, err
	}
	contact.OriginType = "referral"
	contact.ReferredByType = referrerType
	contact.ReferredByID = &referrerID
	return contact, nil
}

// UpdateIdentity updates the contact's identity fields
func (c *Contact) UpdateIdentity(name, phone, email, address string) error {
	if name == "" {
		return shared.NewValidationError("Contact name cannot be empty")
	}
	digits, _ := NormalizePhone(phone)
	c.Name = name
	c.Phone = phone
	c.PhoneDigits = digits
	c.Email = email
	c.Address = address
	c.UpdatedAt = time.Now()
	return nil
}

// UpdateQualification updates the qualification fields collected by sellers
func (c *Contact) UpdateQualification(maritalStatus, homeOwnership, city, state string) {
	if maritalStatus != "" {
		c.MaritalStatus = maritalStatus
	}
	if homeOwnership != "" {
		c.HomeOwnership = homeOwnership
	}
	if city != "" {
		c.City = city
	}
	if state != "" {
		c.State = state
	}
	c.UpdatedAt = time.Now()
}

// Reassign moves the contact to another seller
func (c *Contact) Reassign(sellerID uuid.UUID) error {
	if sellerID == uuid.Nil {
		return shared.NewValidationError("Contact must be assigned to a seller")
	}
	c.AssignedTo = sellerID
	c.UpdatedAt = time.Now()
	return nil
}

// MarkConverted links the contact to the client it was promoted into.
// A contact converts exactly once.
func (c *Contact) MarkConverted(clientID uuid.UUID) error {
	if c.Converted {
		return shared.NewDomainError(shared.CodeConflict, "Contact is already converted")
	}
	if clientID == uuid.Nil {
		return shared.NewValidationError("Client ID cannot be empty")
	}
	c.Converted = true
	c.ClientID = &clientID
	c.UpdatedAt = time.Now()

	c.AddDomainEvent(NewContactConvertedEvent(c))

	return nil
}
