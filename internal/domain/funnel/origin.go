package funnel

import (
	"github.com/crm/backend/internal/domain/shared"
)

// Origin classifies where a lead came from
type Origin struct {
	shared.BaseEntity
	Name string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Kind string `gorm:"type:varchar(50);not null"`
}

// Well-known origin names seeded by migration
const (
	OriginNameReferral = "Referral"
	OriginNameIntake   = "Intake"

	OriginKindOrganic  = "organic"
	OriginKindReferral = "referral"
	OriginKindImport   = "import"
)

// TableName returns the table name for GORM
func (Origin) TableName() string {
	return "origins"
}

// NewOrigin creates an origin classification record
func NewOrigin(name, kind string) (*Origin, error) {
	if name == "" {
		return nil, shared.NewValidationError("Origin name cannot be empty")
	}
	if kind == "" {
		kind = OriginKindOrganic
	}
	return &Origin{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Kind:       kind,
	}, nil
}
