package repository_test

import (
	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/nikolayk812/orderflow/internal/domain"
	"github.com/nikolayk812/orderflow/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *repositorySuite) TestCreateCart() {
	defer suite.deleteAll()

	tests := []struct {
		name      string
		ownerID   string
		wantError string
	}{
		{
			name:    "create cart: ok",
			ownerID: gofakeit.UUID(),
		},
		{
			name:      "create cart with empty owner ID: error",
			ownerID:   "",
			wantError: "ownerID is empty",
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()
			ctx := t.Context()

			cart, err := suite.carts.CreateCart(ctx, tt.ownerID)
			if tt.wantError != "" {
				require.EqualError(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, tt.ownerID, cart.OwnerID)
			assert.NotEqual(t, uuid.Nil, cart.ID)
			assert.False(t, cart.CreatedAt.IsZero())

			// a second provision returns the same cart
			again, err := suite.carts.CreateCart(ctx, tt.ownerID)
			require.NoError(t, err)
			assert.Equal(t, cart.ID, again.ID)

			got, err := suite.carts.GetCart(ctx, tt.ownerID)
			require.NoError(t, err)
			assert.Equal(t, cart.ID, got.ID)
		})
	}
}

func (suite *repositorySuite) TestGetCart_NotFound() {
	t := suite.T()

	_, err := suite.carts.GetCart(t.Context(), gofakeit.UUID())
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = suite.carts.GetCart(t.Context(), "")
	require.EqualError(t, err, "ownerID is empty")
}

func (suite *repositorySuite) TestUpsertItem() {
	defer suite.deleteAll()

	tests := []struct {
		name         string
		quantities   []int
		wantQuantity int
		wantError    string
	}{
		{
			name:         "insert item: ok",
			quantities:   []int{3},
			wantQuantity: 3,
		},
		{
			name:         "overwrite quantity: ok",
			quantities:   []int{3, 1},
			wantQuantity: 1,
		},
		{
			name:       "zero quantity: error",
			quantities: []int{0},
			wantError:  "quantity is not positive",
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()
			ctx := t.Context()

			cart, err := suite.carts.CreateCart(ctx, gofakeit.UUID())
			require.NoError(t, err)
			product := suite.createProduct(10)

			var item domain.CartItem
			for _, quantity := range tt.quantities {
				item, err = suite.carts.UpsertItem(ctx, cart.ID, product.ID, quantity)
			}
			if tt.wantError != "" {
				require.EqualError(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, product.ID, item.ProductID)
			assert.Equal(t, tt.wantQuantity, item.Quantity)

			stored, err := suite.carts.GetItem(ctx, cart.ID, product.ID)
			require.NoError(t, err)
			assertEqual(t, item, stored)
		})
	}
}

func (suite *repositorySuite) TestUpsertItem_UnknownProduct() {
	defer suite.deleteAll()
	t := suite.T()
	ctx := t.Context()

	cart, err := suite.carts.CreateCart(ctx, gofakeit.UUID())
	require.NoError(t, err)

	_, err = suite.carts.UpsertItem(ctx, cart.ID, newID(), 1)
	require.Error(t, err)
}

func (suite *repositorySuite) TestDeleteItem() {
	defer suite.deleteAll()

	tests := []struct {
		name        string
		seed        bool
		wantDeleted bool
	}{
		{
			name:        "delete existing item: ok",
			seed:        true,
			wantDeleted: true,
		},
		{
			name:        "delete from empty cart: not found",
			seed:        false,
			wantDeleted: false,
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()
			ctx := t.Context()

			cart, err := suite.carts.CreateCart(ctx, gofakeit.UUID())
			require.NoError(t, err)
			product := suite.createProduct(5)

			if tt.seed {
				_, err := suite.carts.UpsertItem(ctx, cart.ID, product.ID, 2)
				require.NoError(t, err)
			}

			deleted, err := suite.carts.DeleteItem(ctx, cart.ID, product.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDeleted, deleted)

			_, err = suite.carts.GetItem(ctx, cart.ID, product.ID)
			require.ErrorIs(t, err, domain.ErrNotFound)
		})
	}
}

func (suite *repositorySuite) TestListLinesAndClearItems() {
	defer suite.deleteAll()
	t := suite.T()
	ctx := t.Context()

	cart, err := suite.carts.CreateCart(ctx, gofakeit.UUID())
	require.NoError(t, err)

	first := suite.createProduct(10)
	second := suite.createProduct(10)

	firstItem, err := suite.carts.UpsertItem(ctx, cart.ID, first.ID, 1)
	require.NoError(t, err)
	secondItem, err := suite.carts.UpsertItem(ctx, cart.ID, second.ID, 4)
	require.NoError(t, err)

	lines, err := suite.carts.ListLines(ctx, cart.ID)
	require.NoError(t, err)

	expected := []domain.CartLine{
		{Item: firstItem, ProductName: first.Name, UnitPrice: first.Price},
		{Item: secondItem, ProductName: second.Name, UnitPrice: second.Price},
	}
	assertEqual(t, expected, lines, cmpopts.IgnoreFields(domain.CartLine{}, "FinalPrice"))

	cleared, err := suite.carts.ClearItems(ctx, cart.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, cleared)

	lines, err = suite.carts.ListLines(ctx, cart.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func (suite *repositorySuite) TestCartWithTx_Rollback() {
	defer suite.deleteAll()
	t := suite.T()
	ctx := t.Context()

	ownerID := gofakeit.UUID()
	product := suite.createProduct(3)

	tx, err := suite.pool.Begin(ctx)
	require.NoError(t, err)

	txCarts := repository.NewCartWithTx(tx)

	cart, err := txCarts.CreateCart(ctx, ownerID)
	require.NoError(t, err)
	_, err = txCarts.UpsertItem(ctx, cart.ID, product.ID, 1)
	require.NoError(t, err)

	locked, err := txCarts.LockCart(ctx, ownerID)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, locked.ID)

	require.NoError(t, tx.Rollback(ctx))

	_, err = suite.carts.GetCart(ctx, ownerID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}
