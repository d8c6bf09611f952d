package event

import (
	"go.uber.org/zap"

	"github.com/recyclemart/backend/internal/domain/shared"
)

// Drain writes the pending domain events of the given aggregates to the
// structured log and clears them. Services call it after the transaction
// carrying the mutation has committed, so the journal only ever records
// state changes that actually happened.
func Drain(logger *zap.Logger, roots ...shared.AggregateRoot) {
	for _, root := range roots {
		for _, e := range root.GetDomainEvents() {
			logger.Info("Domain event",
				zap.String("event_id", e.EventID().String()),
				zap.String("event_type", e.EventType()),
				zap.String("aggregate_type", e.AggregateType()),
				zap.String("aggregate_id", e.AggregateID().String()),
				zap.Time("occurred_at", e.OccurredAt()))
		}
		root.ClearDomainEvents()
	}
}
