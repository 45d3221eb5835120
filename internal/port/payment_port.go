package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikolayk812/orderflow/internal/domain"
)

type PaymentGateway interface {
	CreatePaymentURL(ctx context.Context, order domain.Order) (string, error)
	QueryTradeStatus(ctx context.Context, orderID uuid.UUID) (domain.TradeStatus, error)
}

type TaskQueue interface {
	Enqueue(ctx context.Context, task domain.ReconcileTask) error
	// Dequeue blocks until a task is available or ctx is done.
	Dequeue(ctx context.Context) (domain.ReconcileTask, error)
}

type ReconcileScheduler interface {
	Schedule(ctx context.Context, orderID uuid.UUID) error
	Cancel(orderID uuid.UUID) bool
}

type EventPublisher interface {
	Publish(ctx context.Context, event domain.OrderEvent) error
}
