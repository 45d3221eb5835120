package domain

import "fmt"

type OrderStatus string

const (
	OrderStatusUnpaid     OrderStatus = "unpaid"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusDone       OrderStatus = "done"
	OrderStatusCancelled  OrderStatus = "cancel"
)

func ParseOrderStatus(s string) (OrderStatus, error) {
	switch status := OrderStatus(s); status {
	case OrderStatusUnpaid, OrderStatusProcessing, OrderStatusDelivered, OrderStatusDone, OrderStatusCancelled:
		return status, nil
	default:
		return "", fmt.Errorf("order status[%s] is not valid", s)
	}
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDone || s == OrderStatusCancelled
}

// orderState implements the state pattern for order lifecycle transitions.
type orderState interface {
	status() OrderStatus
	cancel(o *Order) (orderState, error)
	markDelivered(o *Order) (orderState, error)
	markDone(o *Order) (orderState, error)
	confirmPayment(o *Order) (orderState, error)
}

func (o *Order) state() orderState {
	switch o.Status {
	case OrderStatusUnpaid:
		return unpaidState{}
	case OrderStatusProcessing:
		return processingState{}
	case OrderStatusDelivered:
		return deliveredState{}
	case OrderStatusDone:
		return doneState{}
	default:
		return cancelledState{}
	}
}

func invalidTransition(from OrderStatus, action string) error {
	return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, action, from)
}

type unpaidState struct{}

func (unpaidState) status() OrderStatus { return OrderStatusUnpaid }

func (unpaidState) cancel(*Order) (orderState, error) {
	return cancelledState{}, nil
}

func (unpaidState) markDelivered(*Order) (orderState, error) {
	return nil, ErrPaymentRequired
}

func (unpaidState) markDone(*Order) (orderState, error) {
	return nil, invalidTransition(OrderStatusUnpaid, "done")
}

func (unpaidState) confirmPayment(*Order) (orderState, error) {
	return processingState{}, nil
}

type processingState struct{}

func (processingState) status() OrderStatus { return OrderStatusProcessing }

func (processingState) cancel(*Order) (orderState, error) {
	return cancelledState{}, nil
}

func (processingState) markDelivered(o *Order) (orderState, error) {
	if !o.IsPaid {
		return nil, ErrPaymentRequired
	}

	return deliveredState{}, nil
}

func (processingState) markDone(*Order) (orderState, error) {
	return nil, invalidTransition(OrderStatusProcessing, "done")
}

func (processingState) confirmPayment(*Order) (orderState, error) {
	return processingState{}, nil
}

type deliveredState struct{}

func (deliveredState) status() OrderStatus { return OrderStatusDelivered }

func (deliveredState) cancel(*Order) (orderState, error) {
	return cancelledState{}, nil
}

func (deliveredState) markDelivered(*Order) (orderState, error) {
	return nil, invalidTransition(OrderStatusDelivered, "delivered")
}

func (deliveredState) markDone(*Order) (orderState, error) {
	return doneState{}, nil
}

func (deliveredState) confirmPayment(*Order) (orderState, error) {
	return nil, invalidTransition(OrderStatusDelivered, "payment confirmed")
}

type doneState struct{}

func (doneState) status() OrderStatus { return OrderStatusDone }

func (doneState) cancel(*Order) (orderState, error) {
	return nil, invalidTransition(OrderStatusDone, "cancel")
}

func (doneState) markDelivered(*Order) (orderState, error) {
	return nil, invalidTransition(OrderStatusDone, "delivered")
}

func (doneState) markDone(*Order) (orderState, error) {
	return nil, invalidTransition(OrderStatusDone, "done")
}

func (doneState) confirmPayment(*Order) (orderState, error) {
	return nil, invalidTransition(OrderStatusDone, "payment confirmed")
}

type cancelledState struct{}

func (cancelledState) status() OrderStatus { return OrderStatusCancelled }

func (cancelledState) cancel(*Order) (orderState, error) {
	return nil, invalidTransition(OrderStatusCancelled, "cancel")
}

func (cancelledState) markDelivered(*Order) (orderState, error) {
	return nil, invalidTransition(OrderStatusCancelled, "delivered")
}

func (cancelledState) markDone(*Order) (orderState, error) {
	return nil, invalidTransition(OrderStatusCancelled, "done")
}

func (cancelledState) confirmPayment(*Order) (orderState, error) {
	return nil, invalidTransition(OrderStatusCancelled, "payment confirmed")
}
