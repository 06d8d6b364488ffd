package event

import (
	"context"

	"github.com/crm/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ActivityLogHandler writes every domain event to the structured log. It is a
// wildcard subscriber and serves as the audit trail for funnel and referral
// activity.
type ActivityLogHandler struct {
	logger *zap.Logger
}

// NewActivityLogHandler creates a new activity log handler
func NewActivityLogHandler(logger *zap.Logger) *ActivityLogHandler {
	return &ActivityLogHandler{logger: logger}
}

// Handle logs the event
func (h *ActivityLogHandler) Handle(_ context.Context, evt shared.DomainEvent) error {
	h.logger.Info("domain event",
		zap.String("event_type", evt.EventType()),
		zap.String("aggregate_type", evt.AggregateType()),
		zap.String("aggregate_id", evt.AggregateID().String()),
		zap.Time("occurred_at", evt.OccurredAt()),
	)
	return nil
}

// EventTypes returns an empty slice; the handler receives all events
func (h *ActivityLogHandler) EventTypes() []string {
	return nil
}
