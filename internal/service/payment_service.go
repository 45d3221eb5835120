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

type PaymentService struct {
	orders    port.OrderRepository
	gateway   port.PaymentGateway
	scheduler port.ReconcileScheduler
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

func NewPaymentService(
	orders port.OrderRepository,
	gateway port.PaymentGateway,
	scheduler port.ReconcileScheduler,
	logger *zap.Logger,
	m *metrics.Metrics,
) *PaymentService {
	return &PaymentService{
		orders:    orders,
		gateway:   gateway,
		scheduler: scheduler,
		logger:    logger.With(zap.String("component", "payment_service")),
		metrics:   m,
	}
}

// StartPayment returns a gateway payment URL for an unpaid order of the
// owner and schedules the reconciler to poll for the result.
func (s *PaymentService) StartPayment(ctx context.Context, ownerID string, orderID uuid.UUID) (_ string, err error) {
	ctx, uc := startUsecase(ctx, s.logger, s.metrics, "payment.start",
		attribute.String("owner_id", ownerID),
		attribute.String("order_id", orderID.String()),
	)
	defer func() { uc.end(err) }()

	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return "", fmt.Errorf("orders.GetOrder: %w", err)
	}

	if err := checkOwner(order, ownerID); err != nil {
		return "", err
	}

	if order.IsPaid || order.Status != domain.OrderStatusUnpaid {
		return "", fmt.Errorf("%w: payment from %s", domain.ErrInvalidTransition, order.Status)
	}

	url, err := s.gateway.CreatePaymentURL(ctx, order)
	if err != nil {
		if !errors.Is(err, domain.ErrGatewayFailure) {
			err = fmt.Errorf("%w: %w", domain.ErrGatewayFailure, err)
		}
		return "", fmt.Errorf("gateway.CreatePaymentURL: %w", err)
	}

	if err := s.scheduler.Schedule(ctx, orderID); err != nil {
		return "", fmt.Errorf("scheduler.Schedule: %w", err)
	}

	return url, nil
}
