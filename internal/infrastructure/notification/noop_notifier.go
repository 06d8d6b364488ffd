package notification

import (
	"context"

	"github.com/crm/backend/internal/domain/referral"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LogNotifier implements referral.Notifier by logging only. Used when SMTP is
// disabled in configuration.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a notifier that only logs
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// SendReferralSummary logs the summary notification
func (n *LogNotifier) SendReferralSummary(_ context.Context, programID uuid.UUID, ownerName string, referralCount int) error {
	n.logger.Info("referral summary notification",
		zap.String("program_id", programID.String()),
		zap.String("owner_name", ownerName),
		zap.Int("referral_count", referralCount),
	)
	return nil
}

// SendDemoUpdate logs the demo update notification
func (n *LogNotifier) SendDemoUpdate(_ context.Context, programID uuid.UUID, referralName string, demoCount int) error {
	n.logger.Info("demo update notification",
		zap.String("program_id", programID.String()),
		zap.String("referral_name", referralName),
		zap.Int("demo_count", demoCount),
	)
	return nil
}

var _ referral.Notifier = (*LogNotifier)(nil)
