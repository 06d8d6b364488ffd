package persistence

import (
	"context"
	"errors"

	"github.com/crm/backend/internal/domain/funnel"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormClientRepository implements funnel.ClientRepository using GORM
type GormClientRepository struct {
	db *gorm.DB
}

// NewGormClientRepository creates a new GormClientRepository
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// FindByID finds a client by its ID
func (r *GormClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*funnel.Client, error) {
	var client funnel.Client
	if err := dbFrom(ctx, r.db).First(&client, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &client, nil
}

// Save creates or updates a client
func (r *GormClientRepository) Save(ctx context.Context, client *funnel.Client) error {
	return dbFrom(ctx, r.db).Save(client).Error
}

// EnsureBillingAccount creates the billing-account shell for a client when
// one does not already exist. Idempotent.
func (r *GormClientRepository) EnsureBillingAccount(ctx context.Context, clientID uuid.UUID) error {
	db := dbFrom(ctx, r.db)

	var existing funnel.BillingAccount
	err := db.First(&existing, "client_id = ?", clientID).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	account, err := funnel.NewBillingAccount(clientID)
	if err != nil {
		return err
	}
	return db.Create(account).Error
}
