package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	redisstore "github.com/gosuda/aquabill/internal/store/redis"
)

type EventType string

const (
	EventTenantCreated     EventType = "tenant.created"
	EventTenantDeactivated EventType = "tenant.deactivated"
	EventTenantDeleted     EventType = "tenant.deleted"
	EventReadingRecorded   EventType = "reading.recorded"
	EventReadingRegression EventType = "reading.regression"
	EventBillGenerated     EventType = "bill.generated"
	EventBillPaid          EventType = "bill.paid"
)

// Event is published on the billing channel and on the owning tenant's
// channel after a state change commits.
type Event struct {
	ID         uuid.UUID `json:"id"`
	Type       EventType `json:"type"`
	TenantID   string    `json:"tenant_id"`
	BillID     int64     `json:"bill_id,omitempty"`
	ReadingID  int64     `json:"reading_id,omitempty"`
	Data       any       `json:"data,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher abstracts the Redis pub/sub publish operation.
// *redisstore.PubSub satisfies this interface.
type EventPublisher interface {
	PublishJSON(ctx context.Context, v any, channels ...string) error
}

// RegressionDetail accompanies EventReadingRegression.
type RegressionDetail struct {
	PreviousReadingID int64  `json:"previous_reading_id"`
	PreviousUnits     string `json:"previous_units"`
	NewUnits          string `json:"new_units"`
}

// emit publishes evt without failing the caller; events are a side channel.
func (s *Service) emit(ctx context.Context, evt Event) {
	if s.events == nil {
		return
	}

	evt.ID = uuid.New()
	evt.OccurredAt = s.now()

	err := s.events.PublishJSON(ctx, evt, redisstore.BillingChannel, redisstore.TenantChannel(evt.TenantID))
	if err != nil {
		log.Error().Err(err).
			Str("event", string(evt.Type)).
			Str("tenant_id", evt.TenantID).
			Msg("publish billing event")
	}
}
