package referral

import (
	"context"

	"github.com/google/uuid"
)

// Notifier delivers program notifications to referral owners. Dispatch is
// best-effort: callers log failures and never let them fail a write.
type Notifier interface {
	// SendReferralSummary tells the program owner how many referrals the
	// program holds to date.
	SendReferralSummary(ctx context.Context, programID uuid.UUID, ownerName string, referralCount int) error

	// SendDemoUpdate tells the program owner a referred person completed a
	// demo and how many qualifying demos the program now counts.
	SendDemoUpdate(ctx context.Context, programID uuid.UUID, referralName string, demoCount int) error
}
