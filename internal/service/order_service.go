package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/nikolayk812/orderflow/internal/domain"
	"github.com/nikolayk812/orderflow/internal/metrics"
	"github.com/nikolayk812/orderflow/internal/port"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type ReconcileCanceller interface {
	Cancel(orderID uuid.UUID) bool
}

type OrderService struct {
	store     port.Store
	canceller ReconcileCanceller
	publisher port.EventPublisher
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

func NewOrderService(
	store port.Store,
	canceller ReconcileCanceller,
	publisher port.EventPublisher,
	logger *zap.Logger,
	m *metrics.Metrics,
) *OrderService {
	return &OrderService{
		store:     store,
		canceller: canceller,
		publisher: publisher,
		logger:    logger.With(zap.String("component", "order_service")),
		metrics:   m,
	}
}

// CreateOrder snapshots the owner's cart and the chosen address into an
// unpaid order and empties the cart, both in one transaction. Stock is not
// touched until payment is confirmed.
func (s *OrderService) CreateOrder(ctx context.Context, ownerID string, addressID uuid.UUID) (_ domain.Order, err error) {
	ctx, uc := startUsecase(ctx, s.logger, s.metrics, "order.create",
		attribute.String("owner_id", ownerID),
		attribute.String("address_id", addressID.String()),
	)
	defer func() { uc.end(err) }()

	var order domain.Order

	err = s.store.WithinTx(ctx, func(ctx context.Context, tx port.Repositories) error {
		cart, err := tx.Carts().LockCart(ctx, ownerID)
		if err != nil {
			return fmt.Errorf("carts.LockCart: %w", err)
		}

		address, err := tx.Addresses().GetAddress(ctx, ownerID, addressID)
		if err != nil {
			return fmt.Errorf("addresses.GetAddress: %w", err)
		}

		lines, err := tx.Carts().ListLines(ctx, cart.ID)
		if err != nil {
			return fmt.Errorf("carts.ListLines: %w", err)
		}

		order, err = domain.NewOrder(ownerID, lines, address, utcNow())
		if err != nil {
			return err
		}

		if err := tx.Orders().CreateOrder(ctx, order); err != nil {
			return fmt.Errorf("orders.CreateOrder: %w", err)
		}

		if _, err := tx.Carts().ClearItems(ctx, cart.ID); err != nil {
			return fmt.Errorf("carts.ClearItems: %w", err)
		}

		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	publish(ctx, s.publisher, s.logger, domain.NewOrderEvent(domain.EventOrderCreated, order, order.CreatedAt))

	return order, nil
}

// GetOrder returns an order of the owner. Orders of other owners are
// reported as not found.
func (s *OrderService) GetOrder(ctx context.Context, ownerID string, orderID uuid.UUID) (_ domain.Order, err error) {
	ctx, uc := startUsecase(ctx, s.logger, s.metrics, "order.get",
		attribute.String("owner_id", ownerID),
		attribute.String("order_id", orderID.String()),
	)
	defer func() { uc.end(err) }()

	order, err := s.store.Orders().GetOrder(ctx, orderID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("orders.GetOrder: %w", err)
	}

	if err := checkOwner(order, ownerID); err != nil {
		return domain.Order{}, err
	}

	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, ownerID string, page, pageSize int) (_ domain.OrderPage, err error) {
	ctx, uc := startUsecase(ctx, s.logger, s.metrics, "order.list", attribute.String("owner_id", ownerID))
	defer func() { uc.end(err) }()

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	orders, total, err := s.store.Orders().ListOrders(ctx, ownerID, pageSize, (page-1)*pageSize)
	if err != nil {
		return domain.OrderPage{}, fmt.Errorf("orders.ListOrders: %w", err)
	}

	return domain.OrderPage{
		Orders:   orders,
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	}, nil
}

// Cancel moves a non-terminal order of the owner to cancel and stops any
// in-flight payment reconciliation for it. Stock is not restored.
func (s *OrderService) Cancel(ctx context.Context, ownerID string, orderID uuid.UUID) (_ domain.Order, err error) {
	ctx, uc := startUsecase(ctx, s.logger, s.metrics, "order.cancel",
		attribute.String("owner_id", ownerID),
		attribute.String("order_id", orderID.String()),
	)
	defer func() { uc.end(err) }()

	order, err := s.transition(ctx, orderID, func(o *domain.Order) error {
		if err := checkOwner(*o, ownerID); err != nil {
			return err
		}
		return o.Cancel(utcNow())
	})
	if err != nil {
		return domain.Order{}, err
	}

	if s.canceller.Cancel(orderID) {
		s.logger.Info("in-flight reconciliation cancelled", zap.Stringer("order_id", orderID))
	}

	publish(ctx, s.publisher, s.logger, domain.NewOrderEvent(domain.EventOrderCancelled, order, order.UpdatedAt))

	return order, nil
}

// MarkDelivered is the manager transition. It requires a paid order.
func (s *OrderService) MarkDelivered(ctx context.Context, orderID uuid.UUID) (_ domain.Order, err error) {
	ctx, uc := startUsecase(ctx, s.logger, s.metrics, "order.mark_delivered", attribute.String("order_id", orderID.String()))
	defer func() { uc.end(err) }()

	order, err := s.transition(ctx, orderID, func(o *domain.Order) error {
		return o.MarkDelivered(utcNow())
	})
	if err != nil {
		return domain.Order{}, err
	}

	publish(ctx, s.publisher, s.logger, domain.NewOrderEvent(domain.EventOrderDelivered, order, order.UpdatedAt))

	return order, nil
}

// MarkDone lets the owner confirm receipt of a delivered order.
func (s *OrderService) MarkDone(ctx context.Context, ownerID string, orderID uuid.UUID) (_ domain.Order, err error) {
	ctx, uc := startUsecase(ctx, s.logger, s.metrics, "order.mark_done",
		attribute.String("owner_id", ownerID),
		attribute.String("order_id", orderID.String()),
	)
	defer func() { uc.end(err) }()

	order, err := s.transition(ctx, orderID, func(o *domain.Order) error {
		if err := checkOwner(*o, ownerID); err != nil {
			return err
		}
		return o.MarkDone(utcNow())
	})
	if err != nil {
		return domain.Order{}, err
	}

	publish(ctx, s.publisher, s.logger, domain.NewOrderEvent(domain.EventOrderDone, order, order.UpdatedAt))

	return order, nil
}

func (s *OrderService) transition(ctx context.Context, orderID uuid.UUID, apply func(o *domain.Order) error) (domain.Order, error) {
	var order domain.Order

	err := s.store.WithinTx(ctx, func(ctx context.Context, tx port.Repositories) error {
		var err error
		order, err = tx.Orders().LockOrder(ctx, orderID)
		if err != nil {
			return fmt.Errorf("orders.LockOrder: %w", err)
		}

		if err := apply(&order); err != nil {
			return err
		}

		if err := tx.Orders().UpdateOrderState(ctx, order); err != nil {
			return fmt.Errorf("orders.UpdateOrderState: %w", err)
		}

		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	return order, nil
}

func checkOwner(order domain.Order, ownerID string) error {
	if order.OwnerID != ownerID {
		return fmt.Errorf("order[%s]: %w", order.ID, domain.ErrNotFound)
	}
	return nil
}
