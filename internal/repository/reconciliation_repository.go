package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/orderflow/internal/db"
	"github.com/nikolayk812/orderflow/internal/domain"
	"github.com/nikolayk812/orderflow/internal/port"
)

type reconciliationRepository struct {
	q *db.Queries
}

func NewReconciliation(pool *pgxpool.Pool) port.ReconciliationRepository {
	return &reconciliationRepository{q: db.New(pool)}
}

func (r *reconciliationRepository) UpsertPending(ctx context.Context, orderID uuid.UUID) (domain.Reconciliation, error) {
	dbRec, err := r.q.UpsertPendingReconciliation(ctx, orderID)
	if err != nil {
		return domain.Reconciliation{}, fmt.Errorf("q.UpsertPendingReconciliation: %w", err)
	}

	return mapReconciliationToDomain(dbRec)
}

func (r *reconciliationRepository) GetReconciliation(ctx context.Context, orderID uuid.UUID) (domain.Reconciliation, error) {
	dbRec, err := r.q.GetReconciliation(ctx, orderID)
	if err != nil {
		return domain.Reconciliation{}, notFound(err, "q.GetReconciliation[%s]", orderID)
	}

	return mapReconciliationToDomain(dbRec)
}

func (r *reconciliationRepository) RecordAttempt(ctx context.Context, orderID uuid.UUID, attempts int, lastError string) error {
	_, err := r.q.RecordReconciliationAttempt(ctx, db.RecordReconciliationAttemptParams{
		OrderID:   orderID,
		Attempts:  int32(attempts),
		LastError: lastError,
	})
	if err != nil {
		return fmt.Errorf("q.RecordReconciliationAttempt: %w", err)
	}

	return nil
}

func (r *reconciliationRepository) Resolve(ctx context.Context, orderID uuid.UUID, state domain.ReconcileState, lastError string) error {
	rowsAffected, err := r.q.ResolveReconciliation(ctx, db.ResolveReconciliationParams{
		OrderID:   orderID,
		State:     string(state),
		LastError: lastError,
	})
	if err != nil {
		return fmt.Errorf("q.ResolveReconciliation: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("reconciliation[%s]: %w", orderID, domain.ErrNotFound)
	}

	return nil
}

func (r *reconciliationRepository) ListPending(ctx context.Context) ([]uuid.UUID, error) {
	orderIDs, err := r.q.ListPendingReconciliations(ctx)
	if err != nil {
		return nil, fmt.Errorf("q.ListPendingReconciliations: %w", err)
	}

	return orderIDs, nil
}

func mapReconciliationToDomain(r db.PaymentReconciliation) (domain.Reconciliation, error) {
	state, err := domain.ParseReconcileState(r.State)
	if err != nil {
		return domain.Reconciliation{}, err
	}

	return domain.Reconciliation{
		OrderID:   r.OrderID,
		State:     state,
		Attempts:  int(r.Attempts),
		LastError: r.LastError,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}, nil
}
