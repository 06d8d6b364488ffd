package funnel

import (
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Client represents a converted, paying customer. It is created exactly once,
// when an opportunity bound to a contact reaches the Won stage.
type Client struct {
	shared.BaseAggregateRoot
	Name        string     `gorm:"type:varchar(200);not null"`
	Phone       string     `gorm:"type:varchar(50)"`
	PhoneDigits string     `gorm:"type:varchar(10);index"`
	Email       string     `gorm:"type:varchar(200)"`
	Address     string     `gorm:"type:text"`
	City        string     `gorm:"type:varchar(100)"`
	State       string     `gorm:"type:varchar(100)"`
	ContactID   *uuid.UUID `gorm:"type:uuid;index"` // the contact this client was promoted from
}

// TableName returns the table name for GORM
func (Client) TableName() string {
	return "clients"
}

// NewClientFromContact creates a client by copying identity fields from a contact
func NewClientFromContact(contact *Contact) (*Client, error) {
	if contact == nil {
		return nil, shared.NewValidationError("Contact is required to create a client")
	}
	if contact.Name == "" {
		return nil, shared.NewValidationError("Contact name cannot be empty")
	}

	contactID := contact.ID
	client := &Client{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              contact.Name,
		Phone:             contact.Phone,
		PhoneDigits:       contact.PhoneDigits,
		Email:             contact.Email,
		Address:           contact.Address,
		City:              contact.City,
		State:             contact.State,
		ContactID:         &contactID,
	}

	client.AddDomainEvent(NewClientCreatedEvent(client))

	return client, nil
}

// UpdateIdentity updates the client's identity fields
func (c *Client) UpdateIdentity(name, phone, email, address string) error {
	if name == "" {
		return shared.NewValidationError("Client name cannot be empty")
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

// BillingAccount is the account shell ensured for every client at promotion.
// Billing state beyond the shell lives outside this context.
type BillingAccount struct {
	shared.BaseEntity
	ClientID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Status   string    `gorm:"type:varchar(20);not null;default:'open'"`
}

// TableName returns the table name for GORM
func (BillingAccount) TableName() string {
	return "billing_accounts"
}

// NewBillingAccount creates an open billing account shell for a client
func NewBillingAccount(clientID uuid.UUID) (*BillingAccount, error) {
	if clientID == uuid.Nil {
		return nil, shared.NewValidationError("Client ID cannot be empty")
	}
	return &BillingAccount{
		BaseEntity: shared.NewBaseEntity(),
		ClientID:   clientID,
		Status:     "open",
	}, nil
}
