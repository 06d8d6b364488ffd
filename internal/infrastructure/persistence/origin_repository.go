package persistence

import (
	"context"
	"errors"

	"github.com/crm/backend/internal/domain/funnel"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOriginRepository implements funnel.OriginRepository using GORM
type GormOriginRepository struct {
	db *gorm.DB
}

// NewGormOriginRepository creates a new GormOriginRepository
func NewGormOriginRepository(db *gorm.DB) *GormOriginRepository {
	return &GormOriginRepository{db: db}
}

// FindByID finds an origin by its ID
func (r *GormOriginRepository) FindByID(ctx context.Context, id uuid.UUID) (*funnel.Origin, error) {
	var origin funnel.Origin
	if err := dbFrom(ctx, r.db).First(&origin, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &origin, nil
}

// FindByName finds an origin by its unique name
func (r *GormOriginRepository) FindByName(ctx context.Context, name string) (*funnel.Origin, error) {
	var origin funnel.Origin
	if err := dbFrom(ctx, r.db).First(&origin, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &origin, nil
}

// EnsureByName returns the origin with the given name, creating it with the
// given kind when missing.
func (r *GormOriginRepository) EnsureByName(ctx context.Context, name, kind string) (*funnel.Origin, error) {
	existing, err := r.FindByName(ctx, name)
	if err == nil {
		return existing, nil
	}
	if !shared.IsNotFound(err) {
		return nil, err
	}

	origin, err := funnel.NewOrigin(name, kind)
	if err != nil {
		return nil, err
	}
	if err := dbFrom(ctx, r.db).Create(origin).Error; err != nil {
		return nil, err
	}
	return origin, nil
}

// Save creates or updates an origin
func (r *GormOriginRepository) Save(ctx context.Context, origin *funnel.Origin) error {
	return dbFrom(ctx, r.db).Save(origin).Error
}
