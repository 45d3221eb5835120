package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/nikolayk812/orderflow/internal/domain"
	"github.com/nikolayk812/orderflow/internal/metrics"
	"github.com/nikolayk812/orderflow/internal/port"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// SettlementService applies the payment-confirmed transition. It is the
// single path that decrements stock.
type SettlementService struct {
	store     port.Store
	publisher port.EventPublisher
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

func NewSettlementService(store port.Store, publisher port.EventPublisher, logger *zap.Logger, m *metrics.Metrics) *SettlementService {
	return &SettlementService{
		store:     store,
		publisher: publisher,
		logger:    logger.With(zap.String("component", "settlement_service")),
		metrics:   m,
	}
}

// ConfirmPayment marks the order paid, moves it to processing and takes
// every line's quantity out of stock, all in one transaction. A second call
// for the same order is a no-op. Lines whose product no longer exists are
// skipped; any other stock failure aborts the whole transition.
func (s *SettlementService) ConfirmPayment(ctx context.Context, orderID uuid.UUID) (_ domain.PaymentConfirmation, err error) {
	ctx, uc := startUsecase(ctx, s.logger, s.metrics, "order.confirm_payment", attribute.String("order_id", orderID.String()))
	defer func() { uc.end(err) }()

	var confirmation domain.PaymentConfirmation

	err = s.store.WithinTx(ctx, func(ctx context.Context, tx port.Repositories) error {
		confirmation = domain.PaymentConfirmation{}

		order, err := tx.Orders().LockOrder(ctx, orderID)
		if err != nil {
			return fmt.Errorf("orders.LockOrder: %w", err)
		}

		applied, err := order.ConfirmPayment(utcNow())
		if err != nil {
			return err
		}

		confirmation.Order = order
		confirmation.Applied = applied
		if !applied {
			return nil
		}

		for _, line := range order.Lines {
			_, err := tx.Products().DecrementStock(ctx, line.ProductID, line.Quantity)
			switch {
			case err == nil:
			case errors.Is(err, domain.ErrNotFound):
				confirmation.SkippedProducts = append(confirmation.SkippedProducts, line.ProductID)
			default:
				return fmt.Errorf("products.DecrementStock[%s]: %w", line.ProductID, err)
			}
		}

		if err := tx.Orders().UpdateOrderState(ctx, order); err != nil {
			return fmt.Errorf("orders.UpdateOrderState: %w", err)
		}

		return nil
	})
	if err != nil {
		s.logger.Error("payment confirmation aborted, manual reconciliation needed",
			zap.Stringer("order_id", orderID),
			zap.Error(err),
		)
		return domain.PaymentConfirmation{}, err
	}

	for _, productID := range confirmation.SkippedProducts {
		s.logger.Warn("stock decrement skipped, product no longer exists",
			zap.Stringer("order_id", orderID),
			zap.Stringer("product_id", productID),
		)
	}

	if confirmation.Applied {
		order := confirmation.Order
		publish(ctx, s.publisher, s.logger, domain.NewOrderEvent(domain.EventOrderPaid, order, order.UpdatedAt))
	}

	return confirmation, nil
}
