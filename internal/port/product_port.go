package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikolayk812/orderflow/internal/domain"
)

// ProductRepository is the catalog and the stock ledger.
type ProductRepository interface {
	CreateProduct(ctx context.Context, product domain.Product) (domain.Product, error)
	GetProduct(ctx context.Context, productID uuid.UUID) (domain.Product, error)
	// DecrementStock is the only stock mutation. It fails with
	// domain.ErrInsufficientStock rather than going below zero.
	DecrementStock(ctx context.Context, productID uuid.UUID, quantity int) (int, error)
}

type AddressRepository interface {
	CreateAddress(ctx context.Context, address domain.Address) (domain.Address, error)
	GetAddress(ctx context.Context, ownerID string, addressID uuid.UUID) (domain.Address, error)
}
