package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vardast/ops-dashboard/internal/domain"
)

type frozenTable struct {
	pool *pgxpool.Pool
}

// NewFrozenTable returns a Postgres-backed frozen accounts table.
func NewFrozenTable(pool *pgxpool.Pool) Table[domain.FrozenAccount] {
	return &frozenTable{pool: pool}
}

func (r *frozenTable) List(ctx context.Context) ([]domain.FrozenAccount, error) {
	const query = `
        SELECT id, COALESCE(username,''), COALESCE(frozen_at,''), COALESCE(desc_text,''), COALESCE(module,''),
               COALESCE(cause,''), COALESCE(status,''), COALESCE(subscription_status,''), COALESCE(first_frozen_at,''),
               freeze_count, COALESCE(last_frozen_at,''), COALESCE(resolve_status,''), COALESCE(note,''), COALESCE(flag,'')
        FROM frozen ORDER BY id DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.FrozenAccount{}
	for rows.Next() {
		var acct domain.FrozenAccount
		if err := rows.Scan(
			&acct.ID,
			&acct.Username,
			&acct.FrozenAt,
			&acct.Description,
			&acct.Module,
			&acct.Cause,
			&acct.Status,
			&acct.SubscriptionStatus,
			&acct.FirstFrozenAt,
			&acct.FreezeCount,
			&acct.LastFrozenAt,
			&acct.ResolveStatus,
			&acct.Note,
			&acct.Flag,
		); err != nil {
			return nil, err
		}
		result = append(result, acct)
	}
	return result, rows.Err()
}

func (r *frozenTable) Insert(ctx context.Context, acct *domain.FrozenAccount) error {
	const query = `
        INSERT INTO frozen (username, frozen_at, desc_text, module, cause, status, subscription_status,
            first_frozen_at, freeze_count, last_frozen_at, resolve_status, note, flag)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		acct.Username,
		acct.FrozenAt,
		acct.Description,
		acct.Module,
		acct.Cause,
		acct.Status,
		acct.SubscriptionStatus,
		acct.FirstFrozenAt,
		acct.FreezeCount,
		acct.LastFrozenAt,
		acct.ResolveStatus,
		acct.Note,
		nullIfEmpty(acct.Flag),
	).Scan(&acct.ID)
}

func (r *frozenTable) Update(ctx context.Context, acct *domain.FrozenAccount) error {
	const query = `
        UPDATE frozen SET username=$1, desc_text=$2, module=$3, cause=$4, status=$5, subscription_status=$6,
            first_frozen_at=$7, freeze_count=$8, last_frozen_at=$9, resolve_status=$10, note=$11, flag=$12
        WHERE id=$13`
	cmd, err := r.pool.Exec(ctx, query,
		acct.Username,
		acct.Description,
		acct.Module,
		acct.Cause,
		acct.Status,
		acct.SubscriptionStatus,
		acct.FirstFrozenAt,
		acct.FreezeCount,
		acct.LastFrozenAt,
		acct.ResolveStatus,
		acct.Note,
		nullIfEmpty(acct.Flag),
		acct.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
