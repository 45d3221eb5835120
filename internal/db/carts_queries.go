package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const createCart = `
INSERT INTO carts (id, owner_id)
VALUES ($1, $2)
ON CONFLICT (owner_id) DO UPDATE SET owner_id = EXCLUDED.owner_id
RETURNING id, owner_id, created_at
`

type CreateCartParams struct {
	ID      uuid.UUID
	OwnerID string
}

func (q *Queries) CreateCart(ctx context.Context, arg CreateCartParams) (Cart, error) {
	row := q.db.QueryRow(ctx, createCart, arg.ID, arg.OwnerID)
	var i Cart
	err := row.Scan(&i.ID, &i.OwnerID, &i.CreatedAt)
	return i, err
}

const getCartByOwner = `
SELECT id, owner_id, created_at FROM carts
WHERE owner_id = $1
`

func (q *Queries) GetCartByOwner(ctx context.Context, ownerID string) (Cart, error) {
	row := q.db.QueryRow(ctx, getCartByOwner, ownerID)
	var i Cart
	err := row.Scan(&i.ID, &i.OwnerID, &i.CreatedAt)
	return i, err
}

const lockCartByOwner = `
SELECT id, owner_id, created_at FROM carts
WHERE owner_id = $1
FOR UPDATE
`

func (q *Queries) LockCartByOwner(ctx context.Context, ownerID string) (Cart, error) {
	row := q.db.QueryRow(ctx, lockCartByOwner, ownerID)
	var i Cart
	err := row.Scan(&i.ID, &i.OwnerID, &i.CreatedAt)
	return i, err
}

const getCartItem = `
SELECT id, cart_id, product_id, quantity, created_at, updated_at FROM cart_items
WHERE cart_id = $1 AND product_id = $2
`

type GetCartItemParams struct {
	CartID    uuid.UUID
	ProductID uuid.UUID
}

func (q *Queries) GetCartItem(ctx context.Context, arg GetCartItemParams) (CartItem, error) {
	row := q.db.QueryRow(ctx, getCartItem, arg.CartID, arg.ProductID)
	var i CartItem
	err := row.Scan(
		&i.ID,
		&i.CartID,
		&i.ProductID,
		&i.Quantity,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const upsertCartItem = `
INSERT INTO cart_items (id, cart_id, product_id, quantity)
VALUES ($1, $2, $3, $4)
ON CONFLICT (cart_id, product_id) DO UPDATE
SET quantity = EXCLUDED.quantity, updated_at = now()
RETURNING id, cart_id, product_id, quantity, created_at, updated_at
`

type UpsertCartItemParams struct {
	ID        uuid.UUID
	CartID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int32
}

func (q *Queries) UpsertCartItem(ctx context.Context, arg UpsertCartItemParams) (CartItem, error) {
	row := q.db.QueryRow(ctx, upsertCartItem,
		arg.ID,
		arg.CartID,
		arg.ProductID,
		arg.Quantity,
	)
	var i CartItem
	err := row.Scan(
		&i.ID,
		&i.CartID,
		&i.ProductID,
		&i.Quantity,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const deleteCartItem = `
DELETE FROM cart_items
WHERE cart_id = $1 AND product_id = $2
`

type DeleteCartItemParams struct {
	CartID    uuid.UUID
	ProductID uuid.UUID
}

func (q *Queries) DeleteCartItem(ctx context.Context, arg DeleteCartItemParams) (int64, error) {
	result, err := q.db.Exec(ctx, deleteCartItem, arg.CartID, arg.ProductID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const deleteCartItems = `
DELETE FROM cart_items
WHERE cart_id = $1
`

func (q *Queries) DeleteCartItems(ctx context.Context, cartID uuid.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, deleteCartItems, cartID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const listCartLines = `
SELECT ci.id, ci.product_id, ci.quantity, ci.created_at, ci.updated_at,
       p.name, p.price_amount, p.price_currency
FROM cart_items ci
JOIN products p ON p.id = ci.product_id
WHERE ci.cart_id = $1
ORDER BY ci.created_at, ci.id
`

type ListCartLinesRow struct {
	ID            uuid.UUID
	ProductID     uuid.UUID
	Quantity      int32
	CreatedAt     time.Time
	UpdatedAt     time.Time
	ProductName   string
	PriceAmount   decimal.Decimal
	PriceCurrency string
}

func (q *Queries) ListCartLines(ctx context.Context, cartID uuid.UUID) ([]ListCartLinesRow, error) {
	rows, err := q.db.Query(ctx, listCartLines, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListCartLinesRow
	for rows.Next() {
		var i ListCartLinesRow
		if err := rows.Scan(
			&i.ID,
			&i.ProductID,
			&i.Quantity,
			&i.CreatedAt,
			&i.UpdatedAt,
			&i.ProductName,
			&i.PriceAmount,
			&i.PriceCurrency,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
