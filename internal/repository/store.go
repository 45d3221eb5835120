package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/orderflow/internal/db"
	"github.com/nikolayk812/orderflow/internal/port"
)

type store struct {
	pool *pgxpool.Pool
	q    *db.Queries
}

func NewStore(pool *pgxpool.Pool) port.Store {
	return &store{
		pool: pool,
		q:    db.New(pool),
	}
}

func (s *store) Carts() port.CartRepository {
	return &cartRepository{q: s.q}
}

func (s *store) Products() port.ProductRepository {
	return &productRepository{q: s.q}
}

func (s *store) Addresses() port.AddressRepository {
	return &addressRepository{q: s.q}
}

func (s *store) Orders() port.OrderRepository {
	return &orderRepository{q: s.q, pool: s.pool}
}

func (s *store) Reconciliations() port.ReconciliationRepository {
	return &reconciliationRepository{q: s.q}
}

// WithinTx runs fn with repositories sharing one transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
func (s *store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx port.Repositories) error) error {
	_, err := withTx(ctx, s.pool, s.q, func(q *db.Queries) (struct{}, error) {
		return struct{}{}, fn(ctx, txRepositories{q: q})
	})

	return err
}

type txRepositories struct {
	q *db.Queries
}

func (r txRepositories) Carts() port.CartRepository {
	return &cartRepository{q: r.q}
}

func (r txRepositories) Products() port.ProductRepository {
	return &productRepository{q: r.q}
}

func (r txRepositories) Addresses() port.AddressRepository {
	return &addressRepository{q: r.q}
}

func (r txRepositories) Orders() port.OrderRepository {
	return &orderRepository{q: r.q, pool: nil}
}

func (r txRepositories) Reconciliations() port.ReconciliationRepository {
	return &reconciliationRepository{q: r.q}
}
