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

type orderRepository struct {
	q    *db.Queries
	pool *pgxpool.Pool
}

func NewOrder(pool *pgxpool.Pool) port.OrderRepository {
	return &orderRepository{
		q:    db.New(pool),
		pool: pool,
	}
}

func NewOrderWithTx(tx pgx.Tx) port.OrderRepository {
	return &orderRepository{
		q:    db.New(tx),
		pool: nil, // use provided transaction instead
	}
}

func (r *orderRepository) CreateOrder(ctx context.Context, order domain.Order) error {
	if order.OwnerID == "" {
		return fmt.Errorf("ownerID is empty")
	}
	if len(order.Lines) == 0 {
		return fmt.Errorf("order has no lines")
	}

	_, err := withTx(ctx, r.pool, r.q, func(q *db.Queries) (struct{}, error) {
		err := q.InsertOrder(ctx, db.InsertOrderParams{
			ID:                       order.ID,
			OwnerID:                  order.OwnerID,
			TotalAmount:              order.TotalCost.Amount,
			TotalCurrency:            order.TotalCost.Currency.String(),
			Status:                   string(order.Status),
			IsPaid:                   order.IsPaid,
			ShipHouseNumberAndStreet: order.Address.HouseNumberAndStreet,
			ShipArea:                 order.Address.Area,
			ShipTown:                 order.Address.Town,
			ShipCounty:               order.Address.County,
			ShipPostcode:             order.Address.Postcode,
			ShipCountry:              order.Address.Country,
			CreatedAt:                order.CreatedAt,
		})
		if err != nil {
			return struct{}{}, fmt.Errorf("q.InsertOrder: %w", err)
		}

		for i, line := range order.Lines {
			err := q.InsertOrderLine(ctx, db.InsertOrderLineParams{
				OrderID:     order.ID,
				LineNo:      int32(i + 1),
				ProductID:   line.ProductID,
				ProductName: line.ProductName,
				Quantity:    int32(line.Quantity),
				UnitPrice:   line.UnitPrice.Amount,
				FinalPrice:  line.FinalPrice.Amount,
			})
			if err != nil {
				return struct{}{}, fmt.Errorf("q.InsertOrderLine[%d]: %w", i+1, err)
			}
		}

		return struct{}{}, nil
	})

	return err
}

func (r *orderRepository) GetOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error) {
	dbOrder, err := r.q.GetOrder(ctx, orderID)
	if err != nil {
		return domain.Order{}, notFound(err, "q.GetOrder[%s]", orderID)
	}

	return r.withLines(ctx, dbOrder)
}

// LockOrder must run inside a transaction, otherwise the lock is released
// as soon as the row is read.
func (r *orderRepository) LockOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error) {
	if r.pool != nil {
		return domain.Order{}, fmt.Errorf("LockOrder requires a transaction")
	}

	dbOrder, err := r.q.LockOrder(ctx, orderID)
	if err != nil {
		return domain.Order{}, notFound(err, "q.LockOrder[%s]", orderID)
	}

	return r.withLines(ctx, dbOrder)
}

func (r *orderRepository) ListOrders(ctx context.Context, ownerID string, limit, offset int) ([]domain.Order, int, error) {
	if ownerID == "" {
		return nil, 0, fmt.Errorf("ownerID is empty")
	}

	total, err := r.q.CountOrdersByOwner(ctx, ownerID)
	if err != nil {
		return nil, 0, fmt.Errorf("q.CountOrdersByOwner: %w", err)
	}

	dbOrders, err := r.q.ListOrdersByOwner(ctx, db.ListOrdersByOwnerParams{
		OwnerID: ownerID,
		Limit:   int32(limit),
		Offset:  int32(offset),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("q.ListOrdersByOwner: %w", err)
	}

	orders := make([]domain.Order, 0, len(dbOrders))
	for _, dbOrder := range dbOrders {
		order, err := mapOrderToDomain(dbOrder, nil)
		if err != nil {
			return nil, 0, fmt.Errorf("mapOrderToDomain: %w", err)
		}

		orders = append(orders, order)
	}

	return orders, int(total), nil
}

func (r *orderRepository) UpdateOrderState(ctx context.Context, order domain.Order) error {
	rowsAffected, err := r.q.UpdateOrderState(ctx, db.UpdateOrderStateParams{
		ID:         order.ID,
		Status:     string(order.Status),
		IsPaid:     order.IsPaid,
		FinishedAt: order.FinishedAt,
		UpdatedAt:  order.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("q.UpdateOrderState: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("order[%s]: %w", order.ID, domain.ErrNotFound)
	}

	return nil
}

func (r *orderRepository) withLines(ctx context.Context, dbOrder db.Order) (domain.Order, error) {
	dbLines, err := r.q.ListOrderLines(ctx, dbOrder.ID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("q.ListOrderLines: %w", err)
	}

	order, err := mapOrderToDomain(dbOrder, dbLines)
	if err != nil {
		return domain.Order{}, fmt.Errorf("mapOrderToDomain: %w", err)
	}

	return order, nil
}

func mapOrderToDomain(o db.Order, lines []db.OrderLine) (domain.Order, error) {
	parsedCurrency, err := currency.ParseISO(o.TotalCurrency)
	if err != nil {
		return domain.Order{}, fmt.Errorf("currency[%s] is not valid: %w", o.TotalCurrency, err)
	}

	status, err := domain.ParseOrderStatus(o.Status)
	if err != nil {
		return domain.Order{}, err
	}

	var orderLines []domain.OrderLine
	for _, line := range lines {
		orderLines = append(orderLines, domain.OrderLine{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    int(line.Quantity),
			UnitPrice:   domain.Money{Amount: line.UnitPrice, Currency: parsedCurrency},
			FinalPrice:  domain.Money{Amount: line.FinalPrice, Currency: parsedCurrency},
		})
	}

	return domain.Order{
		ID:      o.ID,
		OwnerID: o.OwnerID,
		Lines:   orderLines,
		Address: domain.AddressSnapshot{
			HouseNumberAndStreet: o.ShipHouseNumberAndStreet,
			Area:                 o.ShipArea,
			Town:                 o.ShipTown,
			County:               o.ShipCounty,
			Postcode:             o.ShipPostcode,
			Country:              o.ShipCountry,
		},
		TotalCost:  domain.Money{Amount: o.TotalAmount, Currency: parsedCurrency},
		Status:     status,
		IsPaid:     o.IsPaid,
		CreatedAt:  o.CreatedAt,
		FinishedAt: o.FinishedAt,
		UpdatedAt:  o.UpdatedAt,
	}, nil
}
