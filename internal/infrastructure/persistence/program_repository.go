package persistence

import (
	"context"
	"errors"

	"github.com/crm/backend/internal/domain/referral"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProgramRepository implements referral.ProgramRepository using GORM
type GormProgramRepository struct {
	db *gorm.DB
}

// NewGormProgramRepository creates a new GormProgramRepository
func NewGormProgramRepository(db *gorm.DB) *GormProgramRepository {
	return &GormProgramRepository{db: db}
}

// FindByID finds a referral program by its ID
func (r *GormProgramRepository) FindByID(ctx context.Context, id uuid.UUID) (*referral.ReferralProgram, error) {
	var program referral.ReferralProgram
	if err := dbFrom(ctx, r.db).First(&program, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &program, nil
}

// FindAll finds all referral programs matching the filter
func (r *GormProgramRepository) FindAll(ctx context.Context, filter shared.Filter) ([]referral.ReferralProgram, error) {
	var programs []referral.ReferralProgram
	query := dbFrom(ctx, r.db).Model(&referral.ReferralProgram{})

	if status, ok := filter.Filters["status"].(string); ok {
		query = query.Where("status = ?", status)
	}
	if pType, ok := filter.Filters["type"].(string); ok {
		query = query.Where("type = ?", pType)
	}
	if advisorID, ok := filter.Filters["advisor_user_id"].(uuid.UUID); ok {
		query = query.Where("advisor_user_id = ?", advisorID)
	}

	orderBy := ValidateSortField(filter.OrderBy, ProgramSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(orderBy + " " + orderDir)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if err := query.Find(&programs).Error; err != nil {
		return nil, err
	}
	return programs, nil
}

// FindByOpportunityAndType returns the non-cancelled program of the given type
// attached to an opportunity, or ErrNotFound.
func (r *GormProgramRepository) FindByOpportunityAndType(ctx context.Context, opportunityID uuid.UUID, pType referral.ProgramType) (*referral.ReferralProgram, error) {
	var program referral.ReferralProgram
	err := dbFrom(ctx, r.db).
		Where("opportunity_id = ? AND type = ? AND status <> ?",
			opportunityID, pType, referral.ProgramStatusCancelled).
		First(&program).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &program, nil
}

// FindByOwner finds all programs belonging to an owner
func (r *GormProgramRepository) FindByOwner(ctx context.Context, ownerType referral.OwnerType, ownerID uuid.UUID) ([]referral.ReferralProgram, error) {
	var programs []referral.ReferralProgram
	err := dbFrom(ctx, r.db).
		Where("owner_type = ? AND owner_id = ?", ownerType, ownerID).
		Order("created_at DESC").
		Find(&programs).Error
	if err != nil {
		return nil, err
	}
	return programs, nil
}

// Save creates or updates a referral program
func (r *GormProgramRepository) Save(ctx context.Context, program *referral.ReferralProgram) error {
	return dbFrom(ctx, r.db).Save(program).Error
}
