package notification

import (
	"context"
	"fmt"

	"github.com/crm/backend/internal/domain/referral"
	"github.com/crm/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// EmailNotifier implements referral.Notifier over SMTP. Owners without an
// email address are skipped, not failed; delivery problems surface as errors
// for the caller to log.
type EmailNotifier struct {
	from     string
	resolver RecipientResolver
	logger   *zap.Logger
	send     func(*gomail.Message) error
}

// NewEmailNotifier creates an SMTP-backed notifier
func NewEmailNotifier(cfg config.SMTPConfig, resolver RecipientResolver, logger *zap.Logger) *EmailNotifier {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	return &EmailNotifier{
		from:     cfg.From,
		resolver: resolver,
		logger:   logger,
		send: func(m *gomail.Message) error {
			return dialer.DialAndSend(m)
		},
	}
}

// SendReferralSummary emails the program owner their current referral count
func (n *EmailNotifier) SendReferralSummary(ctx context.Context, programID uuid.UUID, ownerName string, referralCount int) error {
	subject := "Your referral program update"
	body := fmt.Sprintf(
		"Hi %s,\n\nThank you for your referrals! Your program now counts %d referral(s).\n",
		ownerName, referralCount,
	)
	return n.deliver(ctx, programID, subject, body)
}

// SendDemoUpdate emails the program owner that a referred person completed a demo
func (n *EmailNotifier) SendDemoUpdate(ctx context.Context, programID uuid.UUID, referralName string, demoCount int) error {
	subject := "A referral completed a demo"
	body := fmt.Sprintf(
		"Good news! %s completed a demo. Your program now counts %d qualifying demo(s).\n",
		referralName, demoCount,
	)
	return n.deliver(ctx, programID, subject, body)
}

func (n *EmailNotifier) deliver(ctx context.Context, programID uuid.UUID, subject, body string) error {
	recipient, err := n.resolver.RecipientFor(ctx, programID)
	if err != nil {
		return err
	}
	if recipient.Email == "" {
		n.logger.Info("program owner has no email, notification skipped",
			zap.String("program_id", programID.String()))
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", m.FormatAddress(recipient.Email, recipient.Name))
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	return n.send(m)
}

var _ referral.Notifier = (*EmailNotifier)(nil)
