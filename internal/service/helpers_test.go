package service_test

import (
	"context"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/nikolayk812/orderflow/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"
)

func usd(amount string) domain.Money {
	return domain.NewMoney(decimal.RequireFromString(amount), currency.USD)
}

func seedProduct(store *memStore, price string, stock int) domain.Product {
	return store.addProduct(domain.Product{
		Name:  gofakeit.ProductName(),
		Price: usd(price),
		Stock: stock,
	})
}

func seedAddress(t *testing.T, store *memStore, ownerID string) domain.Address {
	t.Helper()

	address, err := store.Addresses().CreateAddress(context.Background(), domain.Address{
		OwnerID:              ownerID,
		HouseNumberAndStreet: gofakeit.Street(),
		Town:                 gofakeit.City(),
		Postcode:             gofakeit.Zip(),
		Country:              gofakeit.Country(),
	})
	require.NoError(t, err)

	return address
}

func randomOwner() string {
	return gofakeit.UUID()
}

func seedOrder(store *memStore, ownerID string, status domain.OrderStatus, paid bool, lines ...domain.OrderLine) domain.Order {
	order := domain.Order{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Lines:     lines,
		TotalCost: usd("10.00"),
		Status:    status,
		IsPaid:    paid,
	}
	store.putOrder(order)
	return order
}
