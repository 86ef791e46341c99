package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vardast/ops-dashboard/internal/domain"
)

type refundTable struct {
	pool *pgxpool.Pool
}

// NewRefundTable returns a Postgres-backed refunds table.
func NewRefundTable(pool *pgxpool.Pool) Table[domain.RefundRequest] {
	return &refundTable{pool: pool}
}

func (r *refundTable) List(ctx context.Context) ([]domain.RefundRequest, error) {
	const query = `
        SELECT id, COALESCE(username,''), COALESCE(requested_at,''), COALESCE(reason,''), COALESCE(duration,''),
               COALESCE(category,''), COALESCE(action,''), COALESCE(suggestion,''), COALESCE(can_return,''),
               COALESCE(sales_source,''), COALESCE(ops_note,''), COALESCE(flag,'')
        FROM refunds ORDER BY id DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.RefundRequest{}
	for rows.Next() {
		var refund domain.RefundRequest
		if err := rows.Scan(
			&refund.ID,
			&refund.Username,
			&refund.RequestedAt,
			&refund.Reason,
			&refund.Duration,
			&refund.Category,
			&refund.Action,
			&refund.Suggestion,
			&refund.CanReturn,
			&refund.SalesSource,
			&refund.OpsNote,
			&refund.Flag,
		); err != nil {
			return nil, err
		}
		result = append(result, refund)
	}
	return result, rows.Err()
}

func (r *refundTable) Insert(ctx context.Context, refund *domain.RefundRequest) error {
	const query = `
        INSERT INTO refunds (username, requested_at, reason, duration, category, action, suggestion,
            can_return, sales_source, ops_note, flag)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		refund.Username,
		refund.RequestedAt,
		refund.Reason,
		refund.Duration,
		refund.Category,
		refund.Action,
		refund.Suggestion,
		refund.CanReturn,
		refund.SalesSource,
		refund.OpsNote,
		nullIfEmpty(refund.Flag),
	).Scan(&refund.ID)
}

func (r *refundTable) Update(ctx context.Context, refund *domain.RefundRequest) error {
	const query = `
        UPDATE refunds SET username=$1, reason=$2, duration=$3, category=$4, action=$5, suggestion=$6,
            can_return=$7, sales_source=$8, ops_note=$9, flag=$10
        WHERE id=$11`
	cmd, err := r.pool.Exec(ctx, query,
		refund.Username,
		refund.Reason,
		refund.Duration,
		refund.Category,
		refund.Action,
		refund.Suggestion,
		refund.CanReturn,
		refund.SalesSource,
		refund.OpsNote,
		nullIfEmpty(refund.Flag),
		refund.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
