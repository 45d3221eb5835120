package domain

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventOrderCreated      EventType = "order.created"
	EventOrderPaid         EventType = "order.paid"
	EventOrderCancelled    EventType = "order.cancelled"
	EventOrderDelivered    EventType = "order.delivered"
	EventOrderDone         EventType = "order.done"
	EventPaymentUnresolved EventType = "payment.unresolved"
)

type OrderEvent struct {
	Type       EventType   `json:"type"`
	OrderID    uuid.UUID   `json:"order_id"`
	OwnerID    string      `json:"owner_id"`
	Status     OrderStatus `json:"status"`
	IsPaid     bool        `json:"is_paid"`
	TotalCost  string      `json:"total_cost"`
	Currency   string      `json:"currency"`
	Reason     string      `json:"reason,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
}

func NewOrderEvent(eventType EventType, o Order, now time.Time) OrderEvent {
	return OrderEvent{
		Type:       eventType,
		OrderID:    o.ID,
		OwnerID:    o.OwnerID,
		Status:     o.Status,
		IsPaid:     o.IsPaid,
		TotalCost:  o.TotalCost.Amount.StringFixed(moneyScale),
		Currency:   o.TotalCost.Currency.String(),
		OccurredAt: now,
	}
}
