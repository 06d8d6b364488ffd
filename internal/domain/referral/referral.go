package referral

import (
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ReferralStatus tracks how far a referred person has progressed
type ReferralStatus string

const (
	ReferralStatusNew           ReferralStatus = "NEW"
	ReferralStatusContacted     ReferralStatus = "CONTACTED"
	ReferralStatusDemoScheduled ReferralStatus = "DEMO_SCHEDULED"
	ReferralStatusDemo          ReferralStatus = "DEMO"
	ReferralStatusConverted     ReferralStatus = "CONVERTED"
	ReferralStatusDeclined      ReferralStatus = "DECLINED"
)

// IsValid checks if the status is a known ReferralStatus
func (s ReferralStatus) IsValid() bool {
	switch s {
	case ReferralStatusNew, ReferralStatusContacted, ReferralStatusDemoScheduled,
		ReferralStatusDemo, ReferralStatusConverted, ReferralStatusDeclined:
		return true
	}
	return false
}

// ReachedDemo reports whether the referred person completed a demo. Converted
// referrals count: conversion implies the demo happened.
func (s ReferralStatus) ReachedDemo() bool {
	return s == ReferralStatusDemo || s == ReferralStatusConverted
}

// Referral is one person named by a program's owner. The spawned ids are
// owning references: when the referral cascaded into a new contact and
// opportunity, deleting the referral removes both.
type Referral struct {
	shared.BaseAggregateRoot
	ProgramID uuid.UUID `gorm:"type:uuid;not null;index"`

	Name  string `gorm:"type:varchar(200);not null"`
	Phone string `gorm:"type:varchar(10);index"` // normalized digits, empty when unknown

	Status ReferralStatus `gorm:"type:varchar(20);not null;default:'NEW'"`

	ContactID            *uuid.UUID `gorm:"type:uuid;index"` // the resolved person
	SpawnedContactID     *uuid.UUID `gorm:"type:uuid"`       // set only when this referral created the contact
	SpawnedOpportunityID *uuid.UUID `gorm:"type:uuid"`       // set only when this referral created the opportunity
}

// TableName returns the table name for GORM
func (Referral) TableName() string {
	return "referrals"
}

// NewReferral creates a referral. The phone may be empty; the pasted-list
// parser accepts name-only lines.
func NewReferral(programID uuid.UUID, name, phoneDigits string) (*Referral, error) {
	if programID == uuid.Nil {
		return nil, shared.NewValidationError("Referral must belong to a program")
	}
	if name == "" {
		return nil, shared.NewValidationError("Referral name cannot be empty")
	}

	r := &Referral{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProgramID:         programID,
		Name:              name,
		Phone:             phoneDigits,
		Status:            ReferralStatusNew,
	}

	r.AddDomainEvent(NewReferralAddedEvent(r))

	return r, nil
}

// UpdateStatus moves the referral to a new status
func (r *Referral) UpdateStatus(status ReferralStatus) error {
	if !status.IsValid() {
		return shared.NewValidationError("Unknown referral status")
	}
	previous := r.Status
	r.Status = status
	r.UpdatedAt = time.Now()

	if !previous.ReachedDemo() && status.ReachedDemo() {
		r.AddDomainEvent(NewReferralReachedDemoEvent(r))
	}

	return nil
}

// LinkContact records the contact this referral resolved to
func (r *Referral) LinkContact(contactID uuid.UUID) {
	id := contactID
	r.ContactID = &id
	r.UpdatedAt = time.Now()
}

// LinkSpawned records the records this referral exclusively created, so a
// later delete can cascade to them.
func (r *Referral) LinkSpawned(contactID, opportunityID *uuid.UUID) {
	r.SpawnedContactID = contactID
	r.SpawnedOpportunityID = opportunityID
	r.UpdatedAt = time.Now()
}

// HasSpawnedRecords reports whether deleting this referral must cascade
func (r *Referral) HasSpawnedRecords() bool {
	return r.SpawnedContactID != nil || r.SpawnedOpportunityID != nil
}
