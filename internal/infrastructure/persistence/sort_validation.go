package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// ContactSortFields contains allowed sort fields for contacts
var ContactSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"name":        true,
	"city":        true,
	"state":       true,
	"assigned_to": true,
	"converted":   true,
}

// OpportunitySortFields contains allowed sort fields for opportunities
var OpportunitySortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"stage":           true,
	"closure_state":   true,
	"owner_user_id":   true,
	"product":         true,
	"estimated_value": true,
	"appointment_at":  true,
	"won_at":          true,
	"lost_at":         true,
}

// ProgramSortFields contains allowed sort fields for referral programs
var ProgramSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"type":       true,
	"status":     true,
	"start_date": true,
}

// ReferralSortFields contains allowed sort fields for referrals
var ReferralSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"status":     true,
}
