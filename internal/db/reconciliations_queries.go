package db

import (
	"context"

	"github.com/google/uuid"
)

const reconciliationColumns = `order_id, state, attempts, last_error, created_at, updated_at`

// A finished run restarts from zero attempts, a pending one keeps its count.
const upsertPendingReconciliation = `
INSERT INTO payment_reconciliations (order_id, state, attempts, last_error)
VALUES ($1, 'pending', 0, '')
ON CONFLICT (order_id) DO UPDATE
SET state      = 'pending',
    attempts   = CASE WHEN payment_reconciliations.state = 'pending' THEN payment_reconciliations.attempts ELSE 0 END,
    last_error = CASE WHEN payment_reconciliations.state = 'pending' THEN payment_reconciliations.last_error ELSE '' END,
    updated_at = now()
RETURNING ` + reconciliationColumns

func (q *Queries) UpsertPendingReconciliation(ctx context.Context, orderID uuid.UUID) (PaymentReconciliation, error) {
	return scanReconciliation(q.db.QueryRow(ctx, upsertPendingReconciliation, orderID))
}

const getReconciliation = `SELECT ` + reconciliationColumns + ` FROM payment_reconciliations
WHERE order_id = $1
`

func (q *Queries) GetReconciliation(ctx context.Context, orderID uuid.UUID) (PaymentReconciliation, error) {
	return scanReconciliation(q.db.QueryRow(ctx, getReconciliation, orderID))
}

const recordReconciliationAttempt = `
UPDATE payment_reconciliations
SET attempts = $2, last_error = $3, updated_at = now()
WHERE order_id = $1 AND state = 'pending'
`

type RecordReconciliationAttemptParams struct {
	OrderID   uuid.UUID
	Attempts  int32
	LastError string
}

func (q *Queries) RecordReconciliationAttempt(ctx context.Context, arg RecordReconciliationAttemptParams) (int64, error) {
	result, err := q.db.Exec(ctx, recordReconciliationAttempt, arg.OrderID, arg.Attempts, arg.LastError)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const resolveReconciliation = `
UPDATE payment_reconciliations
SET state = $2, last_error = $3, updated_at = now()
WHERE order_id = $1
`

type ResolveReconciliationParams struct {
	OrderID   uuid.UUID
	State     string
	LastError string
}

func (q *Queries) ResolveReconciliation(ctx context.Context, arg ResolveReconciliationParams) (int64, error) {
	result, err := q.db.Exec(ctx, resolveReconciliation, arg.OrderID, arg.State, arg.LastError)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const listPendingReconciliations = `
SELECT order_id FROM payment_reconciliations
WHERE state = 'pending'
ORDER BY updated_at
`

func (q *Queries) ListPendingReconciliations(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := q.db.Query(ctx, listPendingReconciliations)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []uuid.UUID
	for rows.Next() {
		var orderID uuid.UUID
		if err := rows.Scan(&orderID); err != nil {
			return nil, err
		}
		items = append(items, orderID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func scanReconciliation(row rowScanner) (PaymentReconciliation, error) {
	var i PaymentReconciliation
	err := row.Scan(
		&i.OrderID,
		&i.State,
		&i.Attempts,
		&i.LastError,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
