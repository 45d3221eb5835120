package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikolayk812/orderflow/internal/domain"
)

type CartRepository interface {
	CreateCart(ctx context.Context, ownerID string) (domain.Cart, error)
	GetCart(ctx context.Context, ownerID string) (domain.Cart, error)
	// LockCart takes a row lock on the owner's cart until the surrounding
	// transaction ends.
	LockCart(ctx context.Context, ownerID string) (domain.Cart, error)
	GetItem(ctx context.Context, cartID, productID uuid.UUID) (domain.CartItem, error)
	UpsertItem(ctx context.Context, cartID uuid.UUID, productID uuid.UUID, quantity int) (domain.CartItem, error)
	DeleteItem(ctx context.Context, cartID, productID uuid.UUID) (bool, error)
	ListLines(ctx context.Context, cartID uuid.UUID) ([]domain.CartLine, error)
	ClearItems(ctx context.Context, cartID uuid.UUID) (int64, error)
}
