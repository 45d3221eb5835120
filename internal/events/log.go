package events

import (
	"context"

	"github.com/nikolayk812/orderflow/internal/domain"
	"go.uber.org/zap"
)

// Log writes order events to the log. It is used when no broker is
// configured.
type Log struct {
	logger *zap.Logger
}

func NewLog(logger *zap.Logger) *Log {
	return &Log{logger: logger.With(zap.String("component", "event_log"))}
}

func (l *Log) Publish(_ context.Context, event domain.OrderEvent) error {
	l.logger.Info("order_event",
		zap.String("event_type", string(event.Type)),
		zap.Stringer("order_id", event.OrderID),
		zap.String("owner_id", event.OwnerID),
		zap.String("status", string(event.Status)),
		zap.Bool("is_paid", event.IsPaid),
		zap.String("total_cost", event.TotalCost),
		zap.String("currency", event.Currency),
		zap.String("reason", event.Reason),
		zap.Time("occurred_at", event.OccurredAt),
	)
	return nil
}
