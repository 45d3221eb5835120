package repository_test

import (
	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/nikolayk812/orderflow/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *repositorySuite) TestUpsertPending() {
	defer suite.deleteAll()

	tests := []struct {
		name         string
		prior        *domain.ReconcileState
		wantAttempts int
	}{
		{
			name:         "first schedule: pending with no attempts",
			wantAttempts: 0,
		},
		{
			name:         "reschedule pending: attempts kept",
			prior:        ptr(domain.ReconcileStatePending),
			wantAttempts: 2,
		},
		{
			name:         "reschedule unresolved: attempts reset",
			prior:        ptr(domain.ReconcileStateUnresolved),
			wantAttempts: 0,
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()
			ctx := t.Context()

			order := suite.createOrder(gofakeit.UUID(), suite.createProduct(5))

			if tt.prior != nil {
				_, err := suite.recs.UpsertPending(ctx, order.ID)
				require.NoError(t, err)
				require.NoError(t, suite.recs.RecordAttempt(ctx, order.ID, 2, "gateway timeout"))

				if *tt.prior != domain.ReconcileStatePending {
					require.NoError(t, suite.recs.Resolve(ctx, order.ID, *tt.prior, "gave up"))
				}
			}

			rec, err := suite.recs.UpsertPending(ctx, order.ID)
			require.NoError(t, err)

			assert.Equal(t, order.ID, rec.OrderID)
			assert.Equal(t, domain.ReconcileStatePending, rec.State)
			assert.Equal(t, tt.wantAttempts, rec.Attempts)

			stored, err := suite.recs.GetReconciliation(ctx, order.ID)
			require.NoError(t, err)
			assertEqual(t, rec, stored)
		})
	}
}

func (suite *repositorySuite) TestUpsertPending_UnknownOrder() {
	t := suite.T()

	_, err := suite.recs.UpsertPending(t.Context(), newID())
	require.Error(t, err)
}

func (suite *repositorySuite) TestRecordAttemptAndResolve() {
	defer suite.deleteAll()
	t := suite.T()
	ctx := t.Context()

	order := suite.createOrder(gofakeit.UUID(), suite.createProduct(5))

	_, err := suite.recs.UpsertPending(ctx, order.ID)
	require.NoError(t, err)

	require.NoError(t, suite.recs.RecordAttempt(ctx, order.ID, 1, "trade pending"))

	rec, err := suite.recs.GetReconciliation(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Attempts)
	assert.Equal(t, "trade pending", rec.LastError)

	require.NoError(t, suite.recs.Resolve(ctx, order.ID, domain.ReconcileStateConfirmed, ""))

	// a resolved record ignores late attempts
	require.NoError(t, suite.recs.RecordAttempt(ctx, order.ID, 5, "late"))

	rec, err = suite.recs.GetReconciliation(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReconcileStateConfirmed, rec.State)
	assert.Equal(t, 1, rec.Attempts)
	assert.Empty(t, rec.LastError)

	err = suite.recs.Resolve(ctx, newID(), domain.ReconcileStateCancelled, "")
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = suite.recs.GetReconciliation(ctx, newID())
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func (suite *repositorySuite) TestListPending() {
	defer suite.deleteAll()
	t := suite.T()
	ctx := t.Context()

	product := suite.createProduct(10)

	var pending []uuid.UUID
	for range 2 {
		order := suite.createOrder(gofakeit.UUID(), product)
		_, err := suite.recs.UpsertPending(ctx, order.ID)
		require.NoError(t, err)

		pending = append(pending, order.ID)
	}

	resolved := suite.createOrder(gofakeit.UUID(), product)
	_, err := suite.recs.UpsertPending(ctx, resolved.ID)
	require.NoError(t, err)
	require.NoError(t, suite.recs.Resolve(ctx, resolved.ID, domain.ReconcileStateUnresolved, "timed out"))

	got, err := suite.recs.ListPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, pending, got)
}

func ptr[T any](v T) *T {
	return &v
}
