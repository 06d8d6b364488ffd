package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/crm/backend/internal/domain/funnel"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// legacyPhoneStrip is a SQL expression that strips common punctuation from a
// free-form phone column so it can be compared against canonical digits.
const legacyPhoneStrip = "replace(replace(replace(replace(replace(replace(phone, '-', ''), ' ', ''), '(', ''), ')', ''), '+', ''), '.', '')"

// GormContactRepository implements funnel.ContactRepository using GORM
type GormContactRepository struct {
	db *gorm.DB
}

// NewGormContactRepository creates a new GormContactRepository
func NewGormContactRepository(db *gorm.DB) *GormContactRepository {
	return &GormContactRepository{db: db}
}

// FindByID finds a contact by its ID
func (r *GormContactRepository) FindByID(ctx context.Context, id uuid.UUID) (*funnel.Contact, error) {
	var contact funnel.Contact
	if err := dbFrom(ctx, r.db).First(&contact, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &contact, nil
}

// FindAll finds all contacts matching the filter
func (r *GormContactRepository) FindAll(ctx context.Context, filter shared.Filter) ([]funnel.Contact, error) {
	var contacts []funnel.Contact
	query := r.applyFilter(dbFrom(ctx, r.db).Model(&funnel.Contact{}), filter, true)
	if err := query.Find(&contacts).Error; err != nil {
		return nil, err
	}
	return contacts, nil
}

// FindByPhoneDigits looks up a contact by canonical ten-digit phone. Rows
// written before phone normalization existed carry an empty phone_digits
// column; those are matched by stripping punctuation from the raw phone in
// the query and comparing its last ten characters.
func (r *GormContactRepository) FindByPhoneDigits(ctx context.Context, digits string) (*funnel.Contact, error) {
	if digits == "" {
		return nil, shared.NewValidationError("Phone digits cannot be empty")
	}

	db := dbFrom(ctx, r.db)

	var contact funnel.Contact
	err := db.First(&contact, "phone_digits = ?", digits).Error
	if err == nil {
		return &contact, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	legacyMatch := fmt.Sprintf("phone_digits = '' AND %s LIKE ?", legacyPhoneStrip)
	err = db.Where(legacyMatch, "%"+digits).First(&contact).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &contact, nil
}

// Save creates or updates a contact
func (r *GormContactRepository) Save(ctx context.Context, contact *funnel.Contact) error {
	return dbFrom(ctx, r.db).Save(contact).Error
}

// Delete removes a contact by its ID
func (r *GormContactRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := dbFrom(ctx, r.db).Delete(&funnel.Contact{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts contacts matching the filter
func (r *GormContactRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(dbFrom(ctx, r.db).Model(&funnel.Contact{}), filter, false)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormContactRepository) applyFilter(query *gorm.DB, filter shared.Filter, paginate bool) *gorm.DB {
	if ids, ok := filter.Filters["assigned_to_ids"].([]uuid.UUID); ok {
		query = query.Where("assigned_to IN ?", ids)
	}
	if converted, ok := filter.Filters["converted"].(bool); ok {
		query = query.Where("converted = ?", converted)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR phone LIKE ? OR phone_digits LIKE ?", pattern, pattern, pattern)
	}

	if !paginate {
		return query
	}

	orderBy := ValidateSortField(filter.OrderBy, ContactSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(orderBy + " " + orderDir)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	return query
}
