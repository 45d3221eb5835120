package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TradeStatus is the payment gateway's view of an order's payment.
type TradeStatus string

const (
	TradeStatusPending  TradeStatus = "pending"
	TradeStatusSuccess  TradeStatus = "success"
	TradeStatusFinished TradeStatus = "finished"
	TradeStatusClosed   TradeStatus = "closed"
)

// IsPaid reports whether the gateway considers the payment settled.
func (s TradeStatus) IsPaid() bool {
	return s == TradeStatusSuccess || s == TradeStatusFinished
}

type ReconcileState string

const (
	ReconcileStatePending    ReconcileState = "pending"
	ReconcileStateConfirmed  ReconcileState = "confirmed"
	ReconcileStateUnresolved ReconcileState = "unresolved"
	ReconcileStateCancelled  ReconcileState = "cancelled"
)

func ParseReconcileState(s string) (ReconcileState, error) {
	switch state := ReconcileState(s); state {
	case ReconcileStatePending, ReconcileStateConfirmed, ReconcileStateUnresolved, ReconcileStateCancelled:
		return state, nil
	default:
		return "", fmt.Errorf("reconcile state[%s] is not valid", s)
	}
}

// Reconciliation tracks the payment polling of one order across restarts.
type Reconciliation struct {
	OrderID   uuid.UUID
	State     ReconcileState
	Attempts  int
	LastError string

	CreatedAt time.Time
	UpdatedAt time.Time
}

type ReconcileOutcome string

const (
	ReconcileConfirmed   ReconcileOutcome = "confirmed"
	ReconcileAlreadyPaid ReconcileOutcome = "already_paid"
	ReconcileCancelled   ReconcileOutcome = "cancelled"
	ReconcileTimedOut    ReconcileOutcome = "timed_out"
	ReconcileFailed      ReconcileOutcome = "failed"
	ReconcileInterrupted ReconcileOutcome = "interrupted"
	ReconcileSkipped     ReconcileOutcome = "skipped"
)

type ReconcileTask struct {
	OrderID uuid.UUID `json:"order_id"`
}

// PaymentConfirmation is the result of the payment-confirmed transition.
type PaymentConfirmation struct {
	Order Order
	// Applied is false when the order had already been paid.
	Applied         bool
	SkippedProducts []uuid.UUID
}
