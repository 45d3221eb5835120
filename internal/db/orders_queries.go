package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const orderColumns = `id, owner_id, total_amount, total_currency, status, is_paid,
       ship_house_number_and_street, ship_area, ship_town, ship_county, ship_postcode, ship_country,
       created_at, finished_at, updated_at`

const insertOrder = `
INSERT INTO orders (id, owner_id, total_amount, total_currency, status, is_paid,
                    ship_house_number_and_street, ship_area, ship_town, ship_county, ship_postcode, ship_country,
                    created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)
`

type InsertOrderParams struct {
	ID                       uuid.UUID
	OwnerID                  string
	TotalAmount              decimal.Decimal
	TotalCurrency            string
	Status                   string
	IsPaid                   bool
	ShipHouseNumberAndStreet string
	ShipArea                 string
	ShipTown                 string
	ShipCounty               string
	ShipPostcode             string
	ShipCountry              string
	CreatedAt                time.Time
}

func (q *Queries) InsertOrder(ctx context.Context, arg InsertOrderParams) error {
	_, err := q.db.Exec(ctx, insertOrder,
		arg.ID,
		arg.OwnerID,
		arg.TotalAmount,
		arg.TotalCurrency,
		arg.Status,
		arg.IsPaid,
		arg.ShipHouseNumberAndStreet,
		arg.ShipArea,
		arg.ShipTown,
		arg.ShipCounty,
		arg.ShipPostcode,
		arg.ShipCountry,
		arg.CreatedAt,
	)
	return err
}

const insertOrderLine = `
INSERT INTO order_lines (order_id, line_no, product_id, product_name, quantity, unit_price, final_price)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`

type InsertOrderLineParams struct {
	OrderID     uuid.UUID
	LineNo      int32
	ProductID   uuid.UUID
	ProductName string
	Quantity    int32
	UnitPrice   decimal.Decimal
	FinalPrice  decimal.Decimal
}

func (q *Queries) InsertOrderLine(ctx context.Context, arg InsertOrderLineParams) error {
	_, err := q.db.Exec(ctx, insertOrderLine,
		arg.OrderID,
		arg.LineNo,
		arg.ProductID,
		arg.ProductName,
		arg.Quantity,
		arg.UnitPrice,
		arg.FinalPrice,
	)
	return err
}

const getOrder = `SELECT ` + orderColumns + ` FROM orders
WHERE id = $1
`

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrder, id))
}

const lockOrder = `SELECT ` + orderColumns + ` FROM orders
WHERE id = $1
FOR UPDATE
`

func (q *Queries) LockOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, lockOrder, id))
}

const listOrdersByOwner = `SELECT ` + orderColumns + ` FROM orders
WHERE owner_id = $1
ORDER BY created_at, id
LIMIT $2 OFFSET $3
`

type ListOrdersByOwnerParams struct {
	OwnerID string
	Limit   int32
	Offset  int32
}

func (q *Queries) ListOrdersByOwner(ctx context.Context, arg ListOrdersByOwnerParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrdersByOwner, arg.OwnerID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Order
	for rows.Next() {
		i, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countOrdersByOwner = `
SELECT count(*) FROM orders
WHERE owner_id = $1
`

func (q *Queries) CountOrdersByOwner(ctx context.Context, ownerID string) (int64, error) {
	row := q.db.QueryRow(ctx, countOrdersByOwner, ownerID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const listOrderLines = `
SELECT order_id, line_no, product_id, product_name, quantity, unit_price, final_price FROM order_lines
WHERE order_id = $1
ORDER BY line_no
`

func (q *Queries) ListOrderLines(ctx context.Context, orderID uuid.UUID) ([]OrderLine, error) {
	rows, err := q.db.Query(ctx, listOrderLines, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderLine
	for rows.Next() {
		var i OrderLine
		if err := rows.Scan(
			&i.OrderID,
			&i.LineNo,
			&i.ProductID,
			&i.ProductName,
			&i.Quantity,
			&i.UnitPrice,
			&i.FinalPrice,
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

const updateOrderState = `
UPDATE orders
SET status = $2, is_paid = $3, finished_at = $4, updated_at = $5
WHERE id = $1
`

type UpdateOrderStateParams struct {
	ID         uuid.UUID
	Status     string
	IsPaid     bool
	FinishedAt *time.Time
	UpdatedAt  time.Time
}

func (q *Queries) UpdateOrderState(ctx context.Context, arg UpdateOrderStateParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateOrderState,
		arg.ID,
		arg.Status,
		arg.IsPaid,
		arg.FinishedAt,
		arg.UpdatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (Order, error) {
	var i Order
	err := row.Scan(
		&i.ID,
		&i.OwnerID,
		&i.TotalAmount,
		&i.TotalCurrency,
		&i.Status,
		&i.IsPaid,
		&i.ShipHouseNumberAndStreet,
		&i.ShipArea,
		&i.ShipTown,
		&i.ShipCounty,
		&i.ShipPostcode,
		&i.ShipCountry,
		&i.CreatedAt,
		&i.FinishedAt,
		&i.UpdatedAt,
	)
	return i, err
}
