package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Order struct {
	ID        uuid.UUID
	OwnerID   string
	Lines     []OrderLine
	Address   AddressSnapshot
	TotalCost Money

	Status     OrderStatus
	IsPaid     bool
	CreatedAt  time.Time
	FinishedAt *time.Time
	UpdatedAt  time.Time
}

// OrderLine is a frozen copy of a cart line. It does not follow later
// changes to the product.
type OrderLine struct {
	ProductID   uuid.UUID
	ProductName string
	Quantity    int
	UnitPrice   Money
	FinalPrice  Money
}

type OrderPage struct {
	Orders   []Order
	Page     int
	PageSize int
	Total    int
}

// NewOrder snapshots priced cart lines and an address into an unpaid order.
func NewOrder(ownerID string, lines []CartLine, address Address, now time.Time) (Order, error) {
	if len(lines) == 0 {
		return Order{}, ErrEmptyCart
	}

	orderLines := make([]OrderLine, 0, len(lines))
	total := ZeroMoney(lines[0].UnitPrice.Currency)

	for _, line := range lines {
		finalPrice := line.UnitPrice.Times(line.Item.Quantity)

		var err error
		total, err = total.Add(finalPrice)
		if err != nil {
			return Order{}, fmt.Errorf("product[%s]: %w", line.Item.ProductID, err)
		}

		orderLines = append(orderLines, OrderLine{
			ProductID:   line.Item.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Item.Quantity,
			UnitPrice:   line.UnitPrice,
			FinalPrice:  finalPrice,
		})
	}

	return Order{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Lines:     orderLines,
		Address:   address.Snapshot(),
		TotalCost: total,
		Status:    OrderStatusUnpaid,
		IsPaid:    false,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// LinesTotal sums the snapshotted final prices.
func (o Order) LinesTotal() (Money, error) {
	total := ZeroMoney(o.TotalCost.Currency)

	for _, line := range o.Lines {
		var err error
		total, err = total.Add(line.FinalPrice)
		if err != nil {
			return Money{}, err
		}
	}

	return total, nil
}

func (o *Order) Cancel(now time.Time) error {
	next, err := o.state().cancel(o)
	if err != nil {
		return err
	}

	o.apply(next, now)
	return nil
}

func (o *Order) MarkDelivered(now time.Time) error {
	next, err := o.state().markDelivered(o)
	if err != nil {
		return err
	}

	o.apply(next, now)
	return nil
}

func (o *Order) MarkDone(now time.Time) error {
	next, err := o.state().markDone(o)
	if err != nil {
		return err
	}

	o.FinishedAt = &now
	o.apply(next, now)
	return nil
}

// ConfirmPayment marks the order paid and moves it to processing. It reports
// false without error when the order was already paid.
func (o *Order) ConfirmPayment(now time.Time) (bool, error) {
	if o.IsPaid {
		return false, nil
	}

	next, err := o.state().confirmPayment(o)
	if err != nil {
		return false, err
	}

	o.IsPaid = true
	o.apply(next, now)
	return true, nil
}

func (o *Order) apply(next orderState, now time.Time) {
	o.Status = next.status()
	o.UpdatedAt = now
}
