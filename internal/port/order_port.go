package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikolayk812/orderflow/internal/domain"
)

type OrderRepository interface {
	CreateOrder(ctx context.Context, order domain.Order) error
	GetOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error)
	LockOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error)
	ListOrders(ctx context.Context, ownerID string, limit, offset int) ([]domain.Order, int, error)
	UpdateOrderState(ctx context.Context, order domain.Order) error
}

type ReconciliationRepository interface {
	UpsertPending(ctx context.Context, orderID uuid.UUID) (domain.Reconciliation, error)
	GetReconciliation(ctx context.Context, orderID uuid.UUID) (domain.Reconciliation, error)
	RecordAttempt(ctx context.Context, orderID uuid.UUID, attempts int, lastError string) error
	Resolve(ctx context.Context, orderID uuid.UUID, state domain.ReconcileState, lastError string) error
	ListPending(ctx context.Context) ([]uuid.UUID, error)
}
