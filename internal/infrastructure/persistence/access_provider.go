package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/crm/backend/internal/domain/identity"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// userRecord is the persistence shape of a login user. Users are not a domain
// aggregate in this context; only their role and delegation set matter.
type userRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username  string    `gorm:"type:varchar(100);not null;uniqueIndex"`
	Role      string    `gorm:"type:varchar(50);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (userRecord) TableName() string {
	return "users"
}

// delegationRecord links a telemarketer to a seller they may act for
type delegationRecord struct {
	TelemarketerID uuid.UUID `gorm:"type:uuid;primaryKey"`
	SellerID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt      time.Time
}

func (delegationRecord) TableName() string {
	return "user_delegations"
}

// GormAccessProvider implements identity.AccessProvider from the users and
// user_delegations tables.
type GormAccessProvider struct {
	db *gorm.DB
}

// NewGormAccessProvider creates a new GormAccessProvider
func NewGormAccessProvider(db *gorm.DB) *GormAccessProvider {
	return &GormAccessProvider{db: db}
}

// ActorFor resolves a user ID to a fully populated Actor
func (p *GormAccessProvider) ActorFor(ctx context.Context, userID uuid.UUID) (identity.Actor, error) {
	var user userRecord
	if err := dbFrom(ctx, p.db).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return identity.Actor{}, shared.ErrNotFound
		}
		return identity.Actor{}, err
	}

	role, ok := identity.ResolveRole(user.Role)
	if !ok {
		return identity.Actor{}, shared.NewValidationError(fmt.Sprintf("User %s has unknown role %q", userID, user.Role))
	}

	actor := identity.NewActor(user.ID, role)
	if role == identity.RoleTelemarketer {
		sellers, err := p.DelegatedSellers(ctx, user.ID)
		if err != nil {
			return identity.Actor{}, err
		}
		actor = actor.WithDelegations(sellers)
	}
	return actor, nil
}

// DelegatedSellers returns the seller IDs a telemarketer may act for
func (p *GormAccessProvider) DelegatedSellers(ctx context.Context, telemarketerID uuid.UUID) ([]uuid.UUID, error) {
	var sellerIDs []uuid.UUID
	err := dbFrom(ctx, p.db).Model(&delegationRecord{}).
		Where("telemarketer_id = ?", telemarketerID).
		Order("created_at ASC").
		Pluck("seller_id", &sellerIDs).Error
	if err != nil {
		return nil, err
	}
	return sellerIDs, nil
}
