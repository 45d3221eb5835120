package service_test

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/orderflow/internal/domain"
	"github.com/nikolayk812/orderflow/internal/port"
)

// memStore is an in-memory port.Store. Transactions are serialized and
// rolled back by restoring a snapshot taken at begin.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	carts     map[string]domain.Cart
	items     map[uuid.UUID]map[uuid.UUID]domain.CartItem
	products  map[uuid.UUID]domain.Product
	addresses map[uuid.UUID]domain.Address
	orders    map[uuid.UUID]domain.Order
	recs      map[uuid.UUID]domain.Reconciliation

	// failures maps an operation name to the error it returns.
	failures map[string]error
}

var _ port.Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{
		carts:     map[string]domain.Cart{},
		items:     map[uuid.UUID]map[uuid.UUID]domain.CartItem{},
		products:  map[uuid.UUID]domain.Product{},
		addresses: map[uuid.UUID]domain.Address{},
		orders:    map[uuid.UUID]domain.Order{},
		recs:      map[uuid.UUID]domain.Reconciliation{},
		failures:  map[string]error{},
	}
}

func (s *memStore) failOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

func (s *memStore) fail(op string) error {
	return s.failures[op]
}

type memSnapshot struct {
	carts     map[string]domain.Cart
	items     map[uuid.UUID]map[uuid.UUID]domain.CartItem
	products  map[uuid.UUID]domain.Product
	addresses map[uuid.UUID]domain.Address
	orders    map[uuid.UUID]domain.Order
	recs      map[uuid.UUID]domain.Reconciliation
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make(map[uuid.UUID]map[uuid.UUID]domain.CartItem, len(s.items))
	for cartID, m := range s.items {
		items[cartID] = maps.Clone(m)
	}

	return memSnapshot{
		carts:     maps.Clone(s.carts),
		items:     items,
		products:  maps.Clone(s.products),
		addresses: maps.Clone(s.addresses),
		orders:    maps.Clone(s.orders),
		recs:      maps.Clone(s.recs),
	}
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.carts = snap.carts
	s.items = snap.items
	s.products = snap.products
	s.addresses = snap.addresses
	s.orders = snap.orders
	s.recs = snap.recs
}

func (s *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx port.Repositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(ctx, s); err != nil {
		s.restore(snap)
		return err
	}

	return nil
}

func (s *memStore) Carts() port.CartRepository                      { return memCarts{s} }
func (s *memStore) Products() port.ProductRepository                { return memProducts{s} }
func (s *memStore) Addresses() port.AddressRepository               { return memAddresses{s} }
func (s *memStore) Orders() port.OrderRepository                    { return memOrders{s} }
func (s *memStore) Reconciliations() port.ReconciliationRepository { return memReconciliations{s} }

func (s *memStore) addProduct(p domain.Product) domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	s.products[p.ID] = p
	return p
}

func (s *memStore) product(id uuid.UUID) domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id]
}

func (s *memStore) deleteProduct(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.products, id)
}

func (s *memStore) order(id uuid.UUID) domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orders[id]
}

func (s *memStore) putOrder(o domain.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = o
}

func (s *memStore) cartItems(ownerID string) map[uuid.UUID]domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.items[s.carts[ownerID].ID])
}

type memCarts struct{ s *memStore }

func (r memCarts) CreateCart(_ context.Context, ownerID string) (domain.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if cart, ok := r.s.carts[ownerID]; ok {
		return cart, nil
	}

	cart := domain.Cart{ID: uuid.New(), OwnerID: ownerID, CreatedAt: time.Now()}
	r.s.carts[ownerID] = cart
	r.s.items[cart.ID] = map[uuid.UUID]domain.CartItem{}
	return cart, nil
}

func (r memCarts) GetCart(_ context.Context, ownerID string) (domain.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cart, ok := r.s.carts[ownerID]
	if !ok {
		return domain.Cart{}, fmt.Errorf("cart[%s]: %w", ownerID, domain.ErrNotFound)
	}
	return cart, nil
}

func (r memCarts) LockCart(ctx context.Context, ownerID string) (domain.Cart, error) {
	return r.GetCart(ctx, ownerID)
}

func (r memCarts) GetItem(_ context.Context, cartID, productID uuid.UUID) (domain.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	item, ok := r.s.items[cartID][productID]
	if !ok {
		return domain.CartItem{}, fmt.Errorf("cart item[%s]: %w", productID, domain.ErrNotFound)
	}
	return item, nil
}

func (r memCarts) UpsertItem(_ context.Context, cartID, productID uuid.UUID, quantity int) (domain.CartItem, error) {
	if quantity < 1 {
		return domain.CartItem{}, fmt.Errorf("quantity is not positive")
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now()
	item, ok := r.s.items[cartID][productID]
	if !ok {
		item = domain.CartItem{ID: uuid.New(), ProductID: productID, CreatedAt: now}
	}
	item.Quantity = quantity
	item.UpdatedAt = now

	if r.s.items[cartID] == nil {
		r.s.items[cartID] = map[uuid.UUID]domain.CartItem{}
	}
	r.s.items[cartID][productID] = item
	return item, nil
}

func (r memCarts) DeleteItem(_ context.Context, cartID, productID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.items[cartID][productID]; !ok {
		return false, nil
	}
	delete(r.s.items[cartID], productID)
	return true, nil
}

func (r memCarts) ListLines(_ context.Context, cartID uuid.UUID) ([]domain.CartLine, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var lines []domain.CartLine
	for productID, item := range r.s.items[cartID] {
		product, ok := r.s.products[productID]
		if !ok {
			continue
		}
		lines = append(lines, domain.CartLine{
			Item:        item,
			ProductName: product.Name,
			UnitPrice:   product.Price,
		})
	}

	sort.Slice(lines, func(i, j int) bool {
		return lines[i].Item.CreatedAt.Before(lines[j].Item.CreatedAt)
	})
	return lines, nil
}

func (r memCarts) ClearItems(_ context.Context, cartID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.fail("ClearItems"); err != nil {
		return 0, err
	}

	n := int64(len(r.s.items[cartID]))
	r.s.items[cartID] = map[uuid.UUID]domain.CartItem{}
	return n, nil
}

type memProducts struct{ s *memStore }

func (r memProducts) CreateProduct(_ context.Context, p domain.Product) (domain.Product, error) {
	return r.s.addProduct(p), nil
}

func (r memProducts) GetProduct(_ context.Context, id uuid.UUID) (domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[id]
	if !ok {
		return domain.Product{}, fmt.Errorf("product[%s]: %w", id, domain.ErrNotFound)
	}
	return p, nil
}

func (r memProducts) DecrementStock(_ context.Context, id uuid.UUID, quantity int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[id]
	if !ok {
		return 0, fmt.Errorf("product[%s]: %w", id, domain.ErrNotFound)
	}
	if p.Stock < quantity {
		return 0, fmt.Errorf("product[%s]: %w", id, domain.ErrInsufficientStock)
	}

	p.Stock -= quantity
	r.s.products[id] = p
	return p.Stock, nil
}

type memAddresses struct{ s *memStore }

func (r memAddresses) CreateAddress(_ context.Context, a domain.Address) (domain.Address, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.CreatedAt = time.Now()
	r.s.addresses[a.ID] = a
	return a, nil
}

func (r memAddresses) GetAddress(_ context.Context, ownerID string, id uuid.UUID) (domain.Address, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.addresses[id]
	if !ok || a.OwnerID != ownerID {
		return domain.Address{}, fmt.Errorf("address[%s]: %w", id, domain.ErrNotFound)
	}
	return a, nil
}

type memOrders struct{ s *memStore }

func (r memOrders) CreateOrder(_ context.Context, o domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.orders[o.ID] = o
	return nil
}

func (r memOrders) GetOrder(_ context.Context, id uuid.UUID) (domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[id]
	if !ok {
		return domain.Order{}, fmt.Errorf("order[%s]: %w", id, domain.ErrNotFound)
	}
	return o, nil
}

func (r memOrders) LockOrder(ctx context.Context, id uuid.UUID) (domain.Order, error) {
	return r.GetOrder(ctx, id)
}

func (r memOrders) ListOrders(_ context.Context, ownerID string, limit, offset int) ([]domain.Order, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var owned []domain.Order
	for _, o := range r.s.orders {
		if o.OwnerID == ownerID {
			owned = append(owned, o)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		return owned[i].CreatedAt.After(owned[j].CreatedAt)
	})

	total := len(owned)
	if offset >= total {
		return nil, total, nil
	}
	return owned[offset:min(offset+limit, total)], total, nil
}

func (r memOrders) UpdateOrderState(_ context.Context, o domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.fail("UpdateOrderState"); err != nil {
		return err
	}

	stored, ok := r.s.orders[o.ID]
	if !ok {
		return fmt.Errorf("order[%s]: %w", o.ID, domain.ErrNotFound)
	}
	stored.Status = o.Status
	stored.IsPaid = o.IsPaid
	stored.FinishedAt = o.FinishedAt
	stored.UpdatedAt = o.UpdatedAt
	r.s.orders[o.ID] = stored
	return nil
}

type memReconciliations struct{ s *memStore }

func (r memReconciliations) UpsertPending(_ context.Context, orderID uuid.UUID) (domain.Reconciliation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.recs[orderID]
	if ok && rec.State == domain.ReconcileStatePending {
		return rec, nil
	}
	now := time.Now()
	rec = domain.Reconciliation{OrderID: orderID, State: domain.ReconcileStatePending, CreatedAt: now, UpdatedAt: now}
	r.s.recs[orderID] = rec
	return rec, nil
}

func (r memReconciliations) GetReconciliation(_ context.Context, orderID uuid.UUID) (domain.Reconciliation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.recs[orderID]
	if !ok {
		return domain.Reconciliation{}, fmt.Errorf("reconciliation[%s]: %w", orderID, domain.ErrNotFound)
	}
	return rec, nil
}

func (r memReconciliations) RecordAttempt(_ context.Context, orderID uuid.UUID, attempts int, lastError string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.recs[orderID]
	if !ok || rec.State != domain.ReconcileStatePending {
		return fmt.Errorf("reconciliation[%s]: %w", orderID, domain.ErrNotFound)
	}
	rec.Attempts = attempts
	rec.LastError = lastError
	r.s.recs[orderID] = rec
	return nil
}

func (r memReconciliations) Resolve(_ context.Context, orderID uuid.UUID, state domain.ReconcileState, lastError string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.recs[orderID]
	if !ok {
		return fmt.Errorf("reconciliation[%s]: %w", orderID, domain.ErrNotFound)
	}
	rec.State = state
	rec.LastError = lastError
	r.s.recs[orderID] = rec
	return nil
}

func (r memReconciliations) ListPending(_ context.Context) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var ids []uuid.UUID
	for id, rec := range r.s.recs {
		if rec.State == domain.ReconcileStatePending {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.OrderEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event domain.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) types() []domain.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]domain.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fakeScheduler struct {
	mu        sync.Mutex
	scheduled []uuid.UUID
	cancelled []uuid.UUID
	err       error
}

func (f *fakeScheduler) Schedule(_ context.Context, orderID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	f.scheduled = append(f.scheduled, orderID)
	return nil
}

func (f *fakeScheduler) Cancel(orderID uuid.UUID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.cancelled = append(f.cancelled, orderID)
	return true
}

type fakeGateway struct {
	url    string
	err    error
	status domain.TradeStatus
}

func (g *fakeGateway) CreatePaymentURL(_ context.Context, order domain.Order) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	return g.url + "?order=" + order.ID.String(), nil
}

func (g *fakeGateway) QueryTradeStatus(context.Context, uuid.UUID) (domain.TradeStatus, error) {
	return g.status, g.err
}
