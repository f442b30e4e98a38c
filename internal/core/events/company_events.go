package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const (
	CompanyCreated     = "company.created"
	CompanyUpdated     = "company.updated"
	CompanyArchived    = "company.archived"
	CompanyReactivated = "company.reactivated"
	CompanyDeleted     = "company.deleted"
)

// NewCompanyEvent builds a lifecycle event for a committed company
// transition. Published after commit, never inside the transaction.
func NewCompanyEvent(eventType string, companyID, actorID int64) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"company_id": companyID,
			"actor_id":   actorID,
		},
	}
}

// RegisterAuditLogger subscribes a structured-log audit trail for every
// company lifecycle event.
func RegisterAuditLogger(bus *EventBus, logger *slog.Logger) {
	handler := func(ctx context.Context, event Event) error {
		logger.Info("audit: company lifecycle transition",
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"occurred_at", event.OccurredAt(),
			"payload", event.Payload())
		return nil
	}

	for _, eventType := range []string{
		CompanyCreated,
		CompanyUpdated,
		CompanyArchived,
		CompanyReactivated,
		CompanyDeleted,
	} {
		bus.Subscribe(eventType, handler)
	}
}
