package funnel

import (
	"time"

	"github.com/crm/backend/internal/domain/funnel"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Opportunity DTOs ====================

// CreateOpportunityRequest represents a request to open a new opportunity
type CreateOpportunityRequest struct {
	ContactID      uuid.UUID        `json:"contact_id" binding:"required"`
	OwnerUserID    *uuid.UUID       `json:"owner_user_id"` // defaults to the acting user
	OriginID       *uuid.UUID       `json:"origin_id"`
	SourceLabel    string           `json:"source_label"`
	Product        string           `json:"product"`
	EstimatedValue *decimal.Decimal `json:"estimated_value"`
	// Force overrides the duplicate-active-opportunity guard
	Force bool `json:"force"`
}

// TransitionStageRequest represents a stage write with its transition-specific fields
type TransitionStageRequest struct {
	Stage          funnel.Stage `json:"stage" binding:"required"`
	AppointmentAt  *time.Time   `json:"appointment_at"`
	NextAction     string       `json:"next_action"`
	NextActionDate *time.Time   `json:"next_action_date"`
	LossReason     string       `json:"loss_reason"`
}

// SetClosureRequest represents a closure sub-state write
type SetClosureRequest struct {
	State           funnel.ClosureState `json:"state" binding:"required"`
	Reason          string              `json:"reason"`
	NextContactDate *time.Time          `json:"next_contact_date"`
}

// OpportunityListFilter represents list filtering options
type OpportunityListFilter struct {
	Stage         *funnel.Stage        `form:"stage"`
	ExcludeStages []funnel.Stage       `form:"exclude_stages"`
	OwnerIDs      []uuid.UUID          `form:"owner_ids"`
	OriginID      *uuid.UUID           `form:"origin_id"`
	ProductLike   string               `form:"product_like"`
	ClosureState  *funnel.ClosureState `form:"closure_state"`
	Page          int                  `form:"page"`
	PageSize      int                  `form:"page_size"`
	OrderBy       string               `form:"order_by"`
	OrderDir      string               `form:"order_dir"`
}

// ReassignOpportunityRequest moves an opportunity to another seller
type ReassignOpportunityRequest struct {
	OwnerUserID uuid.UUID `json:"owner_user_id" binding:"required"`
}

// OpportunityResponse represents an opportunity in API responses
type OpportunityResponse struct {
	ID              uuid.UUID           `json:"id"`
	ContactID       *uuid.UUID          `json:"contact_id,omitempty"`
	ClientID        *uuid.UUID          `json:"client_id,omitempty"`
	OwnerUserID     uuid.UUID           `json:"owner_user_id"`
	OriginID        *uuid.UUID          `json:"origin_id,omitempty"`
	SourceLabel     string              `json:"source_label,omitempty"`
	Product         string              `json:"product,omitempty"`
	EstimatedValue  decimal.Decimal     `json:"estimated_value"`
	Stage           funnel.Stage        `json:"stage"`
	ClosureState    funnel.ClosureState `json:"closure_state"`
	AppointmentAt   *time.Time          `json:"appointment_at,omitempty"`
	NextAction      string              `json:"next_action,omitempty"`
	NextActionDate  *time.Time          `json:"next_action_date,omitempty"`
	NextContactDate *time.Time          `json:"next_contact_date,omitempty"`
	LossReason      string              `json:"loss_reason,omitempty"`
	ClosureReason   string              `json:"closure_reason,omitempty"`
	WonAt           *time.Time          `json:"won_at,omitempty"`
	LostAt          *time.Time          `json:"lost_at,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// ToOpportunityResponse maps a domain opportunity to its response form
func ToOpportunityResponse(o *funnel.Opportunity) OpportunityResponse {
	return OpportunityResponse{
		ID:              o.ID,
		ContactID:       o.ContactID,
		ClientID:        o.ClientID,
		OwnerUserID:     o.OwnerUserID,
		OriginID:        o.OriginID,
		SourceLabel:     o.SourceLabel,
		Product:         o.Product,
		EstimatedValue:  o.EstimatedValue,
		Stage:           o.Stage,
		ClosureState:    o.ClosureState,
		AppointmentAt:   o.AppointmentAt,
		NextAction:      o.NextAction,
		NextActionDate:  o.NextActionDate,
		NextContactDate: o.NextContactDate,
		LossReason:      o.LossReason,
		ClosureReason:   o.ClosureReason,
		WonAt:           o.WonAt,
		LostAt:          o.LostAt,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

// ToOpportunityResponses maps a slice of opportunities
func ToOpportunityResponses(opps []funnel.Opportunity) []OpportunityResponse {
	responses := make([]OpportunityResponse, len(opps))
	for i := range opps {
		responses[i] = ToOpportunityResponse(&opps[i])
	}
	return responses
}

// ==================== Contact DTOs ====================

// CreateContactRequest represents contact intake
type CreateContactRequest struct {
	Name       string     `json:"name" binding:"required,min=1,max=200"`
	Phone      string     `json:"phone"`
	Email      string     `json:"email"`
	Address    string     `json:"address"`
	City       string     `json:"city"`
	State      string     `json:"state"`
	AssignedTo *uuid.UUID `json:"assigned_to"` // defaults to the acting user
}

// UpdateQualificationRequest updates a contact's qualification fields
type UpdateQualificationRequest struct {
	MaritalStatus string `json:"marital_status"`
	HomeOwnership string `json:"home_ownership"`
	City          string `json:"city"`
	State         string `json:"state"`
}

// ContactResponse represents a contact in API responses
type ContactResponse struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Phone       string     `json:"phone,omitempty"`
	PhoneDigits string     `json:"phone_digits,omitempty"`
	Email       string     `json:"email,omitempty"`
	City        string     `json:"city"`
	State       string     `json:"state"`
	OriginType  string     `json:"origin_type"`
	AssignedTo  uuid.UUID  `json:"assigned_to"`
	Converted   bool       `json:"converted"`
	ClientID    *uuid.UUID `json:"client_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ToContactResponse maps a domain contact to its response form
func ToContactResponse(c *funnel.Contact) ContactResponse {
	return ContactResponse{
		ID:          c.ID,
		Name:        c.Name,
		Phone:       c.Phone,
		PhoneDigits: c.PhoneDigits,
		Email:       c.Email,
		City:        c.City,
		State:       c.State,
		OriginType:  c.OriginType,
		AssignedTo:  c.AssignedTo,
		Converted:   c.Converted,
		ClientID:    c.ClientID,
		CreatedAt:   c.CreatedAt,
	}
}
