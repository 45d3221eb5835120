package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const createProduct = `
INSERT INTO products (id, name, price_amount, price_currency, stock, category_id)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, name, price_amount, price_currency, stock, category_id, created_at, updated_at
`

type CreateProductParams struct {
	ID            uuid.UUID
	Name          string
	PriceAmount   decimal.Decimal
	PriceCurrency string
	Stock         int32
	CategoryID    uuid.NullUUID
}

func (q *Queries) CreateProduct(ctx context.Context, arg CreateProductParams) (Product, error) {
	row := q.db.QueryRow(ctx, createProduct,
		arg.ID,
		arg.Name,
		arg.PriceAmount,
		arg.PriceCurrency,
		arg.Stock,
		arg.CategoryID,
	)
	var i Product
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.PriceAmount,
		&i.PriceCurrency,
		&i.Stock,
		&i.CategoryID,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getProduct = `
SELECT id, name, price_amount, price_currency, stock, category_id, created_at, updated_at FROM products
WHERE id = $1
`

func (q *Queries) GetProduct(ctx context.Context, id uuid.UUID) (Product, error) {
	row := q.db.QueryRow(ctx, getProduct, id)
	var i Product
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.PriceAmount,
		&i.PriceCurrency,
		&i.Stock,
		&i.CategoryID,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const decrementStock = `
UPDATE products
SET stock = stock - $2, updated_at = now()
WHERE id = $1 AND stock >= $2
RETURNING stock
`

type DecrementStockParams struct {
	ID       uuid.UUID
	Quantity int32
}

func (q *Queries) DecrementStock(ctx context.Context, arg DecrementStockParams) (int32, error) {
	row := q.db.QueryRow(ctx, decrementStock, arg.ID, arg.Quantity)
	var stock int32
	err := row.Scan(&stock)
	return stock, err
}

const productExists = `
SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)
`

func (q *Queries) ProductExists(ctx context.Context, id uuid.UUID) (bool, error) {
	row := q.db.QueryRow(ctx, productExists, id)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}
