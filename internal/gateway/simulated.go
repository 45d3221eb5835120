package gateway

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/orderflow/internal/domain"
)

// Simulated is a sandbox gateway for local runs. A trade reports success
// once settleAfter has passed since its payment URL was created.
type Simulated struct {
	baseURL     string
	settleAfter time.Duration
	now         func() time.Time

	mu      sync.Mutex
	created map[uuid.UUID]time.Time
}

func NewSimulated(baseURL string, settleAfter time.Duration) *Simulated {
	return &Simulated{
		baseURL:     strings.TrimRight(baseURL, "/"),
		settleAfter: settleAfter,
		now:         time.Now,
		created:     make(map[uuid.UUID]time.Time),
	}
}

func (s *Simulated) CreatePaymentURL(_ context.Context, order domain.Order) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.created[order.ID]; !ok {
		s.created[order.ID] = s.now()
	}

	return fmt.Sprintf("%s/pay/%s?amount=%s&currency=%s",
		s.baseURL, order.ID, order.TotalCost.Amount.StringFixed(2), order.TotalCost.Currency), nil
}

func (s *Simulated) QueryTradeStatus(_ context.Context, orderID uuid.UUID) (domain.TradeStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created, ok := s.created[orderID]
	if !ok {
		return domain.TradeStatusPending, nil
	}

	if s.now().Sub(created) >= s.settleAfter {
		return domain.TradeStatusSuccess, nil
	}

	return domain.TradeStatusPending, nil
}
