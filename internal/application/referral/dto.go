package referral

import (
	"time"

	"github.com/crm/backend/internal/domain/referral"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Program DTOs ====================

// CreateProgramRequest represents a request to open a referral program
type CreateProgramRequest struct {
	Type referral.ProgramType `json:"type" binding:"required"`

	// OpportunityID ties the program to an opportunity; the owner is derived
	// from the opportunity's prospect.
	OpportunityID *uuid.UUID `json:"opportunity_id"`

	// OwnerType/OwnerID are required for programs created without an
	// opportunity (simple referrals attached directly to an owner).
	OwnerType *referral.OwnerType `json:"owner_type"`
	OwnerID   *uuid.UUID          `json:"owner_id"`

	AdvisorUserID *uuid.UUID       `json:"advisor_user_id"` // defaults to the opportunity owner, else the acting user
	GiftValue     *decimal.Decimal `json:"gift_value"`

	// Override lets a privileged actor skip the demo-completed stage
	// precondition.
	Override bool `json:"override"`
}

// UpdateProgramStateRequest patches a program's reward/notification state
type UpdateProgramStateRequest struct {
	InvitationSent *bool            `json:"invitation_sent"`
	GiftDelivered  *bool            `json:"gift_delivered"`
	GiftValue      *decimal.Decimal `json:"gift_value"`
	Cancel         *bool            `json:"cancel"`
}

// ProgramResponse represents a program in API responses
type ProgramResponse struct {
	ID               uuid.UUID               `json:"id"`
	Type             referral.ProgramType    `json:"type"`
	OwnerType        referral.OwnerType      `json:"owner_type"`
	OwnerID          uuid.UUID               `json:"owner_id"`
	OpportunityID    *uuid.UUID              `json:"opportunity_id,omitempty"`
	AdvisorUserID    uuid.UUID               `json:"advisor_user_id"`
	Status           referral.ProgramStatus  `json:"status"`
	StartDate        time.Time               `json:"start_date"`
	EndDate          *time.Time              `json:"end_date,omitempty"`
	ReferralCount    int                     `json:"referral_count"`
	DemoCount        int                     `json:"demo_count"`
	GiftEligible     bool                    `json:"gift_eligible"`
	InvitationSentAt *time.Time              `json:"invitation_sent_at,omitempty"`
	GiftDeliveredAt  *time.Time              `json:"gift_delivered_at,omitempty"`
	GiftValue        decimal.Decimal         `json:"gift_value"`
	CreatedAt        time.Time               `json:"created_at"`
}

// ToProgramResponse maps a domain program to its response form
func ToProgramResponse(p *referral.ReferralProgram) ProgramResponse {
	return ProgramResponse{
		ID:               p.ID,
		Type:             p.Type,
		OwnerType:        p.OwnerType,
		OwnerID:          p.OwnerID,
		OpportunityID:    p.OpportunityID,
		AdvisorUserID:    p.AdvisorUserID,
		Status:           p.Status,
		StartDate:        p.StartDate,
		EndDate:          p.EndDate,
		ReferralCount:    p.ReferralCount,
		DemoCount:        p.DemoCount,
		GiftEligible:     p.GiftEligible(),
		InvitationSentAt: p.InvitationSentAt,
		GiftDeliveredAt:  p.GiftDeliveredAt,
		GiftValue:        p.GiftValue,
		CreatedAt:        p.CreatedAt,
	}
}

// ProgramDetailResponse bundles a program with its referrals
type ProgramDetailResponse struct {
	Program   ProgramResponse    `json:"program"`
	Referrals []ReferralResponse `json:"referrals"`
}

// ==================== Referral DTOs ====================

// AddReferralRequest represents a single structured referral
type AddReferralRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=200"`
	Phone string `json:"phone"`
}

// ReferralRowInput represents one pre-parsed row of a structured bulk import
type ReferralRowInput struct {
	Name  string `json:"name" binding:"required,min=1,max=200"`
	Phone string `json:"phone"`
}

// ImportReferralsRequest represents a bulk import: either pasted free text or
// structured rows.
type ImportReferralsRequest struct {
	Text string             `json:"text"`
	Rows []ReferralRowInput `json:"rows"`
}

// ImportResult summarizes a bulk import
type ImportResult struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
	Invalid  int `json:"invalid"`
}

// UpdateReferralStatusRequest moves a referral to a new status
type UpdateReferralStatusRequest struct {
	Status referral.ReferralStatus `json:"status" binding:"required"`
}

// ReferralResponse represents a referral in API responses
type ReferralResponse struct {
	ID                   uuid.UUID               `json:"id"`
	ProgramID            uuid.UUID               `json:"program_id"`
	Name                 string                  `json:"name"`
	Phone                string                  `json:"phone,omitempty"`
	Status               referral.ReferralStatus `json:"status"`
	ContactID            *uuid.UUID              `json:"contact_id,omitempty"`
	SpawnedContactID     *uuid.UUID              `json:"spawned_contact_id,omitempty"`
	SpawnedOpportunityID *uuid.UUID              `json:"spawned_opportunity_id,omitempty"`
	CreatedAt            time.Time               `json:"created_at"`
}

// ToReferralResponse maps a domain referral to its response form
func ToReferralResponse(r *referral.Referral) ReferralResponse {
	return ReferralResponse{
		ID:                   r.ID,
		ProgramID:            r.ProgramID,
		Name:                 r.Name,
		Phone:                r.Phone,
		Status:               r.Status,
		ContactID:            r.ContactID,
		SpawnedContactID:     r.SpawnedContactID,
		SpawnedOpportunityID: r.SpawnedOpportunityID,
		CreatedAt:            r.CreatedAt,
	}
}

// ToReferralResponses maps a slice of referrals
func ToReferralResponses(referrals []referral.Referral) []ReferralResponse {
	responses := make([]ReferralResponse, len(referrals))
	for i := range referrals {
		responses[i] = ToReferralResponse(&referrals[i])
	}
	return responses
}
