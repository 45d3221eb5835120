package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/orderflow/internal/db"
	"github.com/nikolayk812/orderflow/internal/domain"
	"github.com/nikolayk812/orderflow/internal/port"
	"golang.org/x/text/currency"
)

type cartRepository struct {
	q *db.Queries
}

func NewCart(pool *pgxpool.Pool) port.CartRepository {
	return &cartRepository{q: db.New(pool)}
}

func NewCartWithTx(tx pgx.Tx) port.CartRepository {
	return &cartRepository{q: db.New(tx)}
}

func (r *cartRepository) CreateCart(ctx context.Context, ownerID string) (domain.Cart, error) {
	if ownerID == "" {
		return domain.Cart{}, fmt.Errorf("ownerID is empty")
	}

	dbCart, err := r.q.CreateCart(ctx, db.CreateCartParams{
		ID:      uuid.New(),
		OwnerID: ownerID,
	})
	if err != nil {
		return domain.Cart{}, fmt.Errorf("q.CreateCart: %w", err)
	}

	return mapCartToDomain(dbCart), nil
}

func (r *cartRepository) GetCart(ctx context.Context, ownerID string) (domain.Cart, error) {
	if ownerID == "" {
		return domain.Cart{}, fmt.Errorf("ownerID is empty")
	}

	dbCart, err := r.q.GetCartByOwner(ctx, ownerID)
	if err != nil {
		return domain.Cart{}, notFound(err, "q.GetCartByOwner[%s]", ownerID)
	}

	return mapCartToDomain(dbCart), nil
}

func (r *cartRepository) LockCart(ctx context.Context, ownerID string) (domain.Cart, error) {
	if ownerID == "" {
		return domain.Cart{}, fmt.Errorf("ownerID is empty")
	}

	dbCart, err := r.q.LockCartByOwner(ctx, ownerID)
	if err != nil {
		return domain.Cart{}, notFound(err, "q.LockCartByOwner[%s]", ownerID)
	}

	return mapCartToDomain(dbCart), nil
}

func (r *cartRepository) GetItem(ctx context.Context, cartID, productID uuid.UUID) (domain.CartItem, error) {
	dbItem, err := r.q.GetCartItem(ctx, db.GetCartItemParams{
		CartID:    cartID,
		ProductID: productID,
	})
	if err != nil {
		return domain.CartItem{}, notFound(err, "q.GetCartItem[%s]", productID)
	}

	return mapCartItemToDomain(dbItem), nil
}

func (r *cartRepository) UpsertItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) (domain.CartItem, error) {
	if quantity < 1 {
		return domain.CartItem{}, fmt.Errorf("quantity is not positive")
	}

	dbItem, err := r.q.UpsertCartItem(ctx, db.UpsertCartItemParams{
		ID:        uuid.New(),
		CartID:    cartID,
		ProductID: productID,
		Quantity:  int32(quantity),
	})
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("q.UpsertCartItem: %w", err)
	}

	return mapCartItemToDomain(dbItem), nil
}

func (r *cartRepository) DeleteItem(ctx context.Context, cartID, productID uuid.UUID) (bool, error) {
	rowsAffected, err := r.q.DeleteCartItem(ctx, db.DeleteCartItemParams{
		CartID:    cartID,
		ProductID: productID,
	})
	if err != nil {
		return false, fmt.Errorf("q.DeleteCartItem: %w", err)
	}

	return rowsAffected > 0, nil
}

func (r *cartRepository) ListLines(ctx context.Context, cartID uuid.UUID) ([]domain.CartLine, error) {
	rows, err := r.q.ListCartLines(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("q.ListCartLines: %w", err)
	}

	lines, err := mapCartLineRowsToDomain(rows)
	if err != nil {
		return nil, fmt.Errorf("mapCartLineRowsToDomain: %w", err)
	}

	return lines, nil
}

func (r *cartRepository) ClearItems(ctx context.Context, cartID uuid.UUID) (int64, error) {
	rowsAffected, err := r.q.DeleteCartItems(ctx, cartID)
	if err != nil {
		return 0, fmt.Errorf("q.DeleteCartItems: %w", err)
	}

	return rowsAffected, nil
}

func mapCartToDomain(c db.Cart) domain.Cart {
	return domain.Cart{
		ID:        c.ID,
		OwnerID:   c.OwnerID,
		CreatedAt: c.CreatedAt,
	}
}

func mapCartItemToDomain(i db.CartItem) domain.CartItem {
	return domain.CartItem{
		ID:        i.ID,
		ProductID: i.ProductID,
		Quantity:  int(i.Quantity),
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}
}

func mapCartLineRowToDomain(row db.ListCartLinesRow) (domain.CartLine, error) {
	parsedCurrency, err := currency.ParseISO(row.PriceCurrency)
	if err != nil {
		return domain.CartLine{}, fmt.Errorf("currency[%s] is not valid: %w", row.PriceCurrency, err)
	}

	return domain.CartLine{
		Item: domain.CartItem{
			ID:        row.ID,
			ProductID: row.ProductID,
			Quantity:  int(row.Quantity),
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
		},
		ProductName: row.ProductName,
		UnitPrice:   domain.Money{Amount: row.PriceAmount, Currency: parsedCurrency},
	}, nil
}

func mapCartLineRowsToDomain(rows []db.ListCartLinesRow) ([]domain.CartLine, error) {
	var lines []domain.CartLine

	for _, row := range rows {
		line, err := mapCartLineRowToDomain(row)
		if err != nil {
			return nil, fmt.Errorf("mapCartLineRowToDomain: %w", err)
		}

		lines = append(lines, line)
	}

	return lines, nil
}
