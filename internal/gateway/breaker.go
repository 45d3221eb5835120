package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/orderflow/internal/domain"
	"github.com/nikolayk812/orderflow/internal/metrics"
	"github.com/nikolayk812/orderflow/internal/port"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

const (
	opCreatePaymentURL = "create_payment_url"
	opQueryTradeStatus = "query_trade_status"
)

type BreakerConfig struct {
	// Failures is the number of consecutive failures that opens the breaker.
	Failures uint32
	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration
}

// Breaker guards a payment gateway with one circuit breaker per operation.
// Every error it returns wraps domain.ErrGatewayFailure.
type Breaker struct {
	next     port.PaymentGateway
	urls     *gobreaker.CircuitBreaker[string]
	statuses *gobreaker.CircuitBreaker[domain.TradeStatus]
	metrics  *metrics.Metrics
}

var _ port.PaymentGateway = (*Breaker)(nil)

func NewBreaker(next port.PaymentGateway, cfg BreakerConfig, logger *zap.Logger, m *metrics.Metrics) *Breaker {
	logger = logger.With(zap.String("component", "gateway_breaker"))

	return &Breaker{
		next:     next,
		urls:     gobreaker.NewCircuitBreaker[string](breakerSettings(opCreatePaymentURL, cfg, logger)),
		statuses: gobreaker.NewCircuitBreaker[domain.TradeStatus](breakerSettings(opQueryTradeStatus, cfg, logger)),
		metrics:  m,
	}
}

func breakerSettings(name string, cfg BreakerConfig, logger *zap.Logger) gobreaker.Settings {
	failures := cfg.Failures
	if failures == 0 {
		failures = 5
	}

	return gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}
}

func (b *Breaker) CreatePaymentURL(ctx context.Context, order domain.Order) (_ string, err error) {
	start := time.Now()
	defer func() { b.metrics.ObserveGateway(opCreatePaymentURL, start, err) }()

	url, err := b.urls.Execute(func() (string, error) {
		return b.next.CreatePaymentURL(ctx, order)
	})
	if err != nil {
		return "", gatewayFailure(opCreatePaymentURL, err)
	}

	return url, nil
}

func (b *Breaker) QueryTradeStatus(ctx context.Context, orderID uuid.UUID) (_ domain.TradeStatus, err error) {
	start := time.Now()
	defer func() { b.metrics.ObserveGateway(opQueryTradeStatus, start, err) }()

	status, err := b.statuses.Execute(func() (domain.TradeStatus, error) {
		return b.next.QueryTradeStatus(ctx, orderID)
	})
	if err != nil {
		return "", gatewayFailure(opQueryTradeStatus, err)
	}

	return status, nil
}

func gatewayFailure(op string, err error) error {
	if errors.Is(err, domain.ErrGatewayFailure) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrGatewayFailure, err)
}
