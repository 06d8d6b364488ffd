// Package integration exercises the application services end to end against
// real repositories on an in-process database.
package integration

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var schema = []string{
	`CREATE TABLE origins (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		name TEXT NOT NULL UNIQUE,
		kind TEXT NOT NULL
	)`,
	`CREATE TABLE contacts (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		name TEXT NOT NULL,
		phone TEXT,
		phone_digits TEXT,
		email TEXT,
		address TEXT,
		city TEXT NOT NULL,
		state TEXT NOT NULL,
		origin_type TEXT NOT NULL,
		referred_by_type TEXT NOT NULL,
		referred_by_id TEXT,
		relation_to_referrer TEXT NOT NULL,
		assigned_to TEXT NOT NULL,
		marital_status TEXT,
		home_ownership TEXT,
		converted INTEGER NOT NULL DEFAULT 0,
		client_id TEXT
	)`,
	`CREATE TABLE clients (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		name TEXT NOT NULL,
		phone TEXT,
		phone_digits TEXT,
		email TEXT,
		address TEXT,
		city TEXT,
		state TEXT,
		contact_id TEXT
	)`,
	`CREATE TABLE billing_accounts (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		client_id TEXT NOT NULL UNIQUE,
		status TEXT NOT NULL DEFAULT 'open'
	)`,
	`CREATE TABLE opportunities (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		contact_id TEXT,
		client_id TEXT,
		owner_user_id TEXT NOT NULL,
		origin_id TEXT,
		source_label TEXT,
		product TEXT,
		estimated_value NUMERIC NOT NULL DEFAULT 0,
		stage TEXT NOT NULL DEFAULT 'NEW_LEAD',
		closure_state TEXT NOT NULL DEFAULT 'ACTIVE',
		appointment_at DATETIME,
		next_action TEXT,
		next_action_date DATETIME,
		next_contact_date DATETIME,
		loss_reason TEXT,
		closure_reason TEXT,
		won_at DATETIME,
		lost_at DATETIME
	)`,
	`CREATE TABLE referral_programs (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		type TEXT NOT NULL,
		owner_type TEXT NOT NULL,
		owner_id TEXT NOT NULL,
		opportunity_id TEXT,
		advisor_user_id TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'PENDING',
		start_date DATETIME NOT NULL,
		end_date DATETIME,
		referral_count INTEGER NOT NULL DEFAULT 0,
		demo_count INTEGER NOT NULL DEFAULT 0,
		invitation_sent_at DATETIME,
		gift_delivered_at DATETIME,
		gift_value NUMERIC NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE referrals (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		program_id TEXT NOT NULL,
		name TEXT NOT NULL,
		phone TEXT,
		status TEXT NOT NULL DEFAULT 'NEW',
		contact_id TEXT,
		spawned_contact_id TEXT,
		spawned_opportunity_id TEXT
	)`,
}

// setupTestDB opens an in-memory database with the full schema. The pool is
// pinned to one connection: a second connection would see a different
// in-memory database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	for _, stmt := range schema {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}
