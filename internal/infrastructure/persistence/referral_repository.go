package persistence

import (
	"context"
	"errors"

	"github.com/crm/backend/internal/domain/referral"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// demoReached are the statuses that count toward a program's demo metric.
var demoReached = []referral.ReferralStatus{
	referral.ReferralStatusDemo,
	referral.ReferralStatusConverted,
}

// GormReferralRepository implements referral.ReferralRepository using GORM
type GormReferralRepository struct {
	db *gorm.DB
}

// NewGormReferralRepository creates a new GormReferralRepository
func NewGormReferralRepository(db *gorm.DB) *GormReferralRepository {
	return &GormReferralRepository{db: db}
}

// FindByID finds a referral by its ID
func (r *GormReferralRepository) FindByID(ctx context.Context, id uuid.UUID) (*referral.Referral, error) {
	var ref referral.Referral
	if err := dbFrom(ctx, r.db).First(&ref, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &ref, nil
}

// FindByProgram finds all referrals belonging to a program
func (r *GormReferralRepository) FindByProgram(ctx context.Context, programID uuid.UUID) ([]referral.Referral, error) {
	var refs []referral.Referral
	err := dbFrom(ctx, r.db).
		Where("program_id = ?", programID).
		Order("created_at ASC").
		Find(&refs).Error
	if err != nil {
		return nil, err
	}
	return refs, nil
}

// MetricsByProgram counts the program's referrals and how many reached demo.
func (r *GormReferralRepository) MetricsByProgram(ctx context.Context, programID uuid.UUID) (referral.Metrics, error) {
	db := dbFrom(ctx, r.db)

	var total int64
	if err := db.Model(&referral.Referral{}).
		Where("program_id = ?", programID).
		Count(&total).Error; err != nil {
		return referral.Metrics{}, err
	}

	var demos int64
	if err := db.Model(&referral.Referral{}).
		Where("program_id = ? AND status IN ?", programID, demoReached).
		Count(&demos).Error; err != nil {
		return referral.Metrics{}, err
	}

	return referral.Metrics{
		ReferralCount: int(total),
		DemoCount:     int(demos),
	}, nil
}

// ExistsByProgramAndPhone reports whether the program already holds a referral
// with the given normalized phone. Referrals without a phone never collide.
func (r *GormReferralRepository) ExistsByProgramAndPhone(ctx context.Context, programID uuid.UUID, phoneDigits string) (bool, error) {
	if phoneDigits == "" {
		return false, nil
	}
	var count int64
	err := dbFrom(ctx, r.db).Model(&referral.Referral{}).
		Where("program_id = ? AND phone = ?", programID, phoneDigits).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a referral
func (r *GormReferralRepository) Save(ctx context.Context, ref *referral.Referral) error {
	return dbFrom(ctx, r.db).Save(ref).Error
}

// Delete removes a referral by its ID
func (r *GormReferralRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := dbFrom(ctx, r.db).Delete(&referral.Referral{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
