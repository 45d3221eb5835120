package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Money amounts are kept at cent precision.
const moneyScale = 2

type Money struct {
	Amount   decimal.Decimal
	Currency currency.Unit
}

func NewMoney(amount decimal.Decimal, unit currency.Unit) Money {
	return Money{Amount: amount.Round(moneyScale), Currency: unit}
}

func ZeroMoney(unit currency.Unit) Money {
	return Money{Amount: decimal.Zero, Currency: unit}
}

// Times returns the line total for quantity units, rounded to cents.
func (m Money) Times(quantity int) Money {
	return Money{
		Amount:   m.Amount.Mul(decimal.NewFromInt(int64(quantity))).Round(moneyScale),
		Currency: m.Currency,
	}
}

func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("%w: %s and %s", ErrCurrencyMismatch, m.Currency, other.Currency)
	}

	return Money{
		Amount:   m.Amount.Add(other.Amount).Round(moneyScale),
		Currency: m.Currency,
	}, nil
}

func (m Money) IsNegative() bool {
	return m.Amount.IsNegative()
}

// MinorUnits returns the amount in cents, as payment gateways expect it.
func (m Money) MinorUnits() int64 {
	return m.Amount.Shift(moneyScale).Round(0).IntPart()
}

func (m Money) String() string {
	return m.Amount.StringFixed(moneyScale) + " " + m.Currency.String()
}
