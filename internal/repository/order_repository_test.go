package repository_test

import (
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/nikolayk812/orderflow/internal/domain"
	"github.com/nikolayk812/orderflow/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *repositorySuite) TestCreateOrder() {
	defer suite.deleteAll()

	tests := []struct {
		name      string
		mutate    func(o *domain.Order)
		wantError string
	}{
		{
			name: "create order: ok",
		},
		{
			name:      "create order with empty owner ID: error",
			mutate:    func(o *domain.Order) { o.OwnerID = "" },
			wantError: "ownerID is empty",
		},
		{
			name:      "create order without lines: error",
			mutate:    func(o *domain.Order) { o.Lines = nil },
			wantError: "order has no lines",
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()
			ctx := t.Context()

			ownerID := gofakeit.UUID()
			lines := []domain.CartLine{
				{
					Item:        domain.CartItem{ProductID: newID(), Quantity: 3},
					ProductName: gofakeit.ProductName(),
					UnitPrice:   randomMoney(randomCurrency()),
				},
			}
			order, err := domain.NewOrder(ownerID, lines, randomAddress(ownerID), time.Now().UTC())
			require.NoError(t, err)

			if tt.mutate != nil {
				tt.mutate(&order)
			}

			err = suite.orders.CreateOrder(ctx, order)
			if tt.wantError != "" {
				require.EqualError(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)

			got, err := suite.orders.GetOrder(ctx, order.ID)
			require.NoError(t, err)
			assertEqual(t, order, got)
		})
	}
}

func (suite *repositorySuite) TestCreateOrder_SnapshotSurvivesProductDeletion() {
	defer suite.deleteAll()
	t := suite.T()
	ctx := t.Context()

	product := suite.createProduct(4)
	order := suite.createOrder(gofakeit.UUID(), product)

	_, err := suite.pool.Exec(ctx, "DELETE FROM products WHERE id = $1", product.ID)
	require.NoError(t, err)

	got, err := suite.orders.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, product.Name, got.Lines[0].ProductName)
	assertEqual(t, product.Price, got.Lines[0].UnitPrice)
}

func (suite *repositorySuite) TestGetOrder_NotFound() {
	t := suite.T()

	_, err := suite.orders.GetOrder(t.Context(), newID())
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func (suite *repositorySuite) TestListOrders() {
	defer suite.deleteAll()
	t := suite.T()
	ctx := t.Context()

	ownerID := gofakeit.UUID()
	product := suite.createProduct(10)

	var created []domain.Order
	for range 3 {
		created = append(created, suite.createOrder(ownerID, product))
	}
	// another owner's order stays invisible
	suite.createOrder(gofakeit.UUID(), product)

	page, total, err := suite.orders.ListOrders(ctx, ownerID, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 2)
	assert.Equal(t, created[0].ID, page[0].ID)
	assert.Equal(t, created[1].ID, page[1].ID)

	page, total, err = suite.orders.ListOrders(ctx, ownerID, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 1)
	assert.Equal(t, created[2].ID, page[0].ID)

	page, total, err = suite.orders.ListOrders(ctx, gofakeit.UUID(), 2, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, page)

	_, _, err = suite.orders.ListOrders(ctx, "", 2, 0)
	require.EqualError(t, err, "ownerID is empty")
}

func (suite *repositorySuite) TestUpdateOrderState() {
	defer suite.deleteAll()
	t := suite.T()
	ctx := t.Context()

	order := suite.createOrder(gofakeit.UUID(), suite.createProduct(10))

	now := time.Now().UTC()
	applied, err := order.ConfirmPayment(now)
	require.NoError(t, err)
	require.True(t, applied)

	require.NoError(t, order.MarkDelivered(now))
	require.NoError(t, order.MarkDone(now))
	require.NoError(t, suite.orders.UpdateOrderState(ctx, order))

	got, err := suite.orders.GetOrder(ctx, order.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusDone, got.Status)
	assert.True(t, got.IsPaid)
	require.NotNil(t, got.FinishedAt)
	assert.WithinDuration(t, now, *got.FinishedAt, time.Millisecond)

	missing := order
	missing.ID = newID()
	err = suite.orders.UpdateOrderState(ctx, missing)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func (suite *repositorySuite) TestLockOrder() {
	defer suite.deleteAll()
	t := suite.T()
	ctx := t.Context()

	order := suite.createOrder(gofakeit.UUID(), suite.createProduct(10))

	_, err := suite.orders.LockOrder(ctx, order.ID)
	require.EqualError(t, err, "LockOrder requires a transaction")

	tx, err := suite.pool.Begin(ctx)
	require.NoError(t, err)
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txOrders := repository.NewOrderWithTx(tx)

	locked, err := txOrders.LockOrder(ctx, order.ID)
	require.NoError(t, err)
	assertEqual(t, order, locked)

	_, err = txOrders.LockOrder(ctx, newID())
	require.ErrorIs(t, err, domain.ErrNotFound)
}
