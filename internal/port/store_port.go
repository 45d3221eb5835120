package port

import "context"

type Repositories interface {
	Carts() CartRepository
	Products() ProductRepository
	Addresses() AddressRepository
	Orders() OrderRepository
	Reconciliations() ReconciliationRepository
}

// Store hands out repositories bound either to the pool or to a single
// transaction.
type Store interface {
	Repositories
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Repositories) error) error
}
