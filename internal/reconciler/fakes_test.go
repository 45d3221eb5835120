package reconciler_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/orderflow/internal/domain"
)

var errUnsupported = errors.New("unsupported in fake")

type fakeRecs struct {
	mu   sync.Mutex
	recs map[uuid.UUID]domain.Reconciliation
}

func newFakeRecs() *fakeRecs {
	return &fakeRecs{recs: map[uuid.UUID]domain.Reconciliation{}}
}

func (f *fakeRecs) put(rec domain.Reconciliation) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recs[rec.OrderID] = rec
}

func (f *fakeRecs) get(orderID uuid.UUID) domain.Reconciliation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.recs[orderID]
}

func (f *fakeRecs) UpsertPending(_ context.Context, orderID uuid.UUID) (domain.Reconciliation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rec, ok := f.recs[orderID]
	if !ok || rec.State != domain.ReconcileStatePending {
		rec = domain.Reconciliation{OrderID: orderID, State: domain.ReconcileStatePending, CreatedAt: time.Now()}
		f.recs[orderID] = rec
	}
	return rec, nil
}

func (f *fakeRecs) GetReconciliation(_ context.Context, orderID uuid.UUID) (domain.Reconciliation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rec, ok := f.recs[orderID]
	if !ok {
		return domain.Reconciliation{}, fmt.Errorf("reconciliation[%s]: %w", orderID, domain.ErrNotFound)
	}
	return rec, nil
}

func (f *fakeRecs) RecordAttempt(_ context.Context, orderID uuid.UUID, attempts int, lastError string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	rec := f.recs[orderID]
	rec.Attempts = attempts
	rec.LastError = lastError
	f.recs[orderID] = rec
	return nil
}

func (f *fakeRecs) Resolve(_ context.Context, orderID uuid.UUID, state domain.ReconcileState, lastError string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	rec := f.recs[orderID]
	rec.State = state
	rec.LastError = lastError
	f.recs[orderID] = rec
	return nil
}

func (f *fakeRecs) ListPending(context.Context) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var ids []uuid.UUID
	for id, rec := range f.recs {
		if rec.State == domain.ReconcileStatePending {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type fakeOrders struct {
	mu     sync.Mutex
	orders map[uuid.UUID]domain.Order
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{orders: map[uuid.UUID]domain.Order{}}
}

func (f *fakeOrders) put(o domain.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[o.ID] = o
}

func (f *fakeOrders) CreateOrder(context.Context, domain.Order) error {
	return errUnsupported
}

func (f *fakeOrders) GetOrder(_ context.Context, id uuid.UUID) (domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	o, ok := f.orders[id]
	if !ok {
		return domain.Order{}, fmt.Errorf("order[%s]: %w", id, domain.ErrNotFound)
	}
	return o, nil
}

func (f *fakeOrders) LockOrder(ctx context.Context, id uuid.UUID) (domain.Order, error) {
	return f.GetOrder(ctx, id)
}

func (f *fakeOrders) ListOrders(context.Context, string, int, int) ([]domain.Order, int, error) {
	return nil, 0, errUnsupported
}

func (f *fakeOrders) UpdateOrderState(_ context.Context, o domain.Order) error {
	f.put(o)
	return nil
}

// scriptedGateway answers QueryTradeStatus from a script, repeating the last
// step once the script runs out.
type scriptedGateway struct {
	mu    sync.Mutex
	steps []gatewayStep
	calls int
}

type gatewayStep struct {
	status domain.TradeStatus
	err    error
	panic  bool
}

func (g *scriptedGateway) CreatePaymentURL(context.Context, domain.Order) (string, error) {
	return "", errUnsupported
}

func (g *scriptedGateway) QueryTradeStatus(context.Context, uuid.UUID) (domain.TradeStatus, error) {
	g.mu.Lock()
	step := g.steps[min(g.calls, len(g.steps)-1)]
	g.calls++
	g.mu.Unlock()

	if step.panic {
		panic("gateway exploded")
	}
	return step.status, step.err
}

func (g *scriptedGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

// fakeSettler marks the order paid in fakeOrders.
type fakeSettler struct {
	orders *fakeOrders
	err    error
	// afterCommit runs once the order is stored as paid.
	afterCommit func(orderID uuid.UUID)

	mu    sync.Mutex
	calls int
}

func (s *fakeSettler) ConfirmPayment(ctx context.Context, orderID uuid.UUID) (domain.PaymentConfirmation, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	if s.err != nil {
		return domain.PaymentConfirmation{}, s.err
	}

	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return domain.PaymentConfirmation{}, err
	}

	applied, err := order.ConfirmPayment(time.Now())
	if err != nil {
		return domain.PaymentConfirmation{}, err
	}
	s.orders.put(order)

	if s.afterCommit != nil {
		s.afterCommit(orderID)
	}

	return domain.PaymentConfirmation{Order: order, Applied: applied}, nil
}

func (s *fakeSettler) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.OrderEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event domain.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) all() []domain.OrderEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.OrderEvent(nil), p.events...)
}
