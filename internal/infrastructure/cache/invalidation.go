package cache

import (
	"context"

	"github.com/academy/backend/internal/domain/fees"
	"github.com/academy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SummaryInvalidator is the slice of the cache the invalidation handler needs
type SummaryInvalidator interface {
	Invalidate(ctx context.Context, accountID uuid.UUID) error
}

// SummaryInvalidationHandler drops cached fee summaries whenever a billing
// event changes what the projection would return. Subscribed on the event
// bus next to the application services.
type SummaryInvalidationHandler struct {
	cache  SummaryInvalidator
	logger *zap.Logger
}

// NewSummaryInvalidationHandler creates the invalidation handler
func NewSummaryInvalidationHandler(cache SummaryInvalidator, logger *zap.Logger) *SummaryInvalidationHandler {
	return &SummaryInvalidationHandler{
		cache:  cache,
		logger: logger,
	}
}

// EventTypes returns the billing events that move an account's summary
func (h *SummaryInvalidationHandler) EventTypes() []string {
	return []string{
		"BillGenerated",
		"BillPaid",
		"PartialPaymentRecorded",
		"InstallmentMarkedPaid",
	}
}

// Handle drops the summary for the account the event belongs to
func (h *SummaryInvalidationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	accountID, ok := accountIDFromEvent(event)
	if !ok {
		return nil
	}

	if err := h.cache.Invalidate(ctx, accountID); err != nil {
		// Cache failures never block event processing; the TTL cleans up
		h.logger.Warn("summary cache invalidation failed",
			zap.String("event_type", event.EventType()),
			zap.String("account_id", accountID.String()),
			zap.Error(err),
		)
	}
	return nil
}

func accountIDFromEvent(event shared.DomainEvent) (uuid.UUID, bool) {
	switch e := event.(type) {
	case *fees.BillGeneratedEvent:
		return e.AccountID, true
	case *fees.BillPaidEvent:
		return e.AccountID, true
	case *fees.PartialPaymentRecordedEvent:
		return e.AccountID, true
	case *fees.InstallmentMarkedPaidEvent:
		return e.AccountID, true
	}
	return uuid.Nil, false
}

// Ensure SummaryInvalidationHandler implements shared.EventHandler
var _ shared.EventHandler = (*SummaryInvalidationHandler)(nil)
