package persistence

import (
	"context"
	"errors"

	"github.com/crm/backend/internal/domain/funnel"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOpportunityRepository implements funnel.OpportunityRepository using GORM
type GormOpportunityRepository struct {
	db *gorm.DB
}

// NewGormOpportunityRepository creates a new GormOpportunityRepository
func NewGormOpportunityRepository(db *gorm.DB) *GormOpportunityRepository {
	return &GormOpportunityRepository{db: db}
}

// FindByID finds an opportunity by its ID
func (r *GormOpportunityRepository) FindByID(ctx context.Context, id uuid.UUID) (*funnel.Opportunity, error) {
	var opp funnel.Opportunity
	if err := dbFrom(ctx, r.db).First(&opp, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &opp, nil
}

// FindAll finds all opportunities matching the filter
func (r *GormOpportunityRepository) FindAll(ctx context.Context, filter shared.Filter) ([]funnel.Opportunity, error) {
	var opps []funnel.Opportunity
	query := r.applyFilter(dbFrom(ctx, r.db).Model(&funnel.Opportunity{}), filter, true)
	if err := query.Find(&opps).Error; err != nil {
		return nil, err
	}
	return opps, nil
}

// FindActiveByContact returns the contact's opportunity whose closure state is
// still active and whose stage is not terminal, or ErrNotFound.
func (r *GormOpportunityRepository) FindActiveByContact(ctx context.Context, contactID uuid.UUID) (*funnel.Opportunity, error) {
	var opp funnel.Opportunity
	err := dbFrom(ctx, r.db).
		Where("contact_id = ? AND closure_state = ? AND stage NOT IN ?",
			contactID, funnel.ClosureActive, []string{funnel.StageWon.String(), funnel.StageLost.String()}).
		First(&opp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &opp, nil
}

// FindByContact finds all opportunities bound to a contact
func (r *GormOpportunityRepository) FindByContact(ctx context.Context, contactID uuid.UUID) ([]funnel.Opportunity, error) {
	var opps []funnel.Opportunity
	err := dbFrom(ctx, r.db).
		Where("contact_id = ?", contactID).
		Order("created_at DESC").
		Find(&opps).Error
	if err != nil {
		return nil, err
	}
	return opps, nil
}

// Save creates or updates an opportunity
func (r *GormOpportunityRepository) Save(ctx context.Context, opp *funnel.Opportunity) error {
	return dbFrom(ctx, r.db).Save(opp).Error
}

// Delete removes an opportunity by its ID
func (r *GormOpportunityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := dbFrom(ctx, r.db).Delete(&funnel.Opportunity{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts opportunities matching the filter
func (r *GormOpportunityRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(dbFrom(ctx, r.db).Model(&funnel.Opportunity{}), filter, false)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormOpportunityRepository) applyFilter(query *gorm.DB, filter shared.Filter, paginate bool) *gorm.DB {
	if stage, ok := filter.Filters["stage"].(string); ok {
		query = query.Where("stage = ?", stage)
	}
	if stages, ok := filter.Filters["stages"].([]string); ok {
		query = query.Where("stage IN ?", stages)
	}
	if excluded, ok := filter.Filters["exclude_stages"].([]string); ok {
		query = query.Where("stage NOT IN ?", excluded)
	}
	if ownerIDs, ok := filter.Filters["owner_ids"].([]uuid.UUID); ok {
		query = query.Where("owner_user_id IN ?", ownerIDs)
	}
	if originID, ok := filter.Filters["origin_id"].(uuid.UUID); ok {
		query = query.Where("origin_id = ?", originID)
	}
	if productLike, ok := filter.Filters["product_like"].(string); ok {
		query = query.Where("product LIKE ?", "%"+productLike+"%")
	}
	if closureState, ok := filter.Filters["closure_state"].(string); ok {
		query = query.Where("closure_state = ?", closureState)
	}

	if !paginate {
		return query
	}

	orderBy := ValidateSortField(filter.OrderBy, OpportunitySortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(orderBy + " " + orderDir)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	return query
}
