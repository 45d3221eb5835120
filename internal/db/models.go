package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Cart struct {
	ID        uuid.UUID
	OwnerID   string
	CreatedAt time.Time
}

type CartItem struct {
	ID        uuid.UUID
	CartID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int32
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Product struct {
	ID            uuid.UUID
	Name          string
	PriceAmount   decimal.Decimal
	PriceCurrency string
	Stock         int32
	CategoryID    uuid.NullUUID
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Address struct {
	ID                   uuid.UUID
	OwnerID              string
	HouseNumberAndStreet string
	Area                 string
	Town                 string
	County               string
	Postcode             string
	Country              string
	CreatedAt            time.Time
}

type Order struct {
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
	FinishedAt               *time.Time
	UpdatedAt                time.Time
}

type OrderLine struct {
	OrderID     uuid.UUID
	LineNo      int32
	ProductID   uuid.UUID
	ProductName string
	Quantity    int32
	UnitPrice   decimal.Decimal
	FinalPrice  decimal.Decimal
}

type PaymentReconciliation struct {
	OrderID   uuid.UUID
	State     string
	Attempts  int32
	LastError string
	CreatedAt time.Time
	UpdatedAt time.Time
}
