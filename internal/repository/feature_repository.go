package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vardast/ops-dashboard/internal/domain"
)

type featureTable struct {
	pool *pgxpool.Pool
}

// NewFeatureTable returns a Postgres-backed feature requests table.
func NewFeatureTable(pool *pgxpool.Pool) Table[domain.FeatureRequest] {
	return &featureTable{pool: pool}
}

func (r *featureTable) List(ctx context.Context) ([]domain.FeatureRequest, error) {
	const query = `
        SELECT id, COALESCE(username,''), COALESCE(created_at,''), COALESCE(desc_text,''), COALESCE(title,''),
               COALESCE(category,''), COALESCE(status,''), repeat_count, importance,
               COALESCE(internal_note,''), COALESCE(flag,'')
        FROM features ORDER BY id DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.FeatureRequest{}
	for rows.Next() {
		var feature domain.FeatureRequest
		if err := rows.Scan(
			&feature.ID,
			&feature.Username,
			&feature.CreatedAt,
			&feature.Description,
			&feature.Title,
			&feature.Category,
			&feature.Status,
			&feature.RepeatCount,
			&feature.Importance,
			&feature.InternalNote,
			&feature.Flag,
		); err != nil {
			return nil, err
		}
		result = append(result, feature)
	}
	return result, rows.Err()
}

func (r *featureTable) Insert(ctx context.Context, feature *domain.FeatureRequest) error {
	const query = `
        INSERT INTO features (username, created_at, desc_text, title, category, status,
            repeat_count, importance, internal_note, flag)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		feature.Username,
		feature.CreatedAt,
		feature.Description,
		feature.Title,
		feature.Category,
		feature.Status,
		feature.RepeatCount,
		feature.Importance,
		feature.InternalNote,
		nullIfEmpty(feature.Flag),
	).Scan(&feature.ID)
}

func (r *featureTable) Update(ctx context.Context, feature *domain.FeatureRequest) error {
	const query = `
        UPDATE features SET username=$1, desc_text=$2, title=$3, category=$4, status=$5,
            repeat_count=$6, importance=$7, internal_note=$8, flag=$9
        WHERE id=$10`
	cmd, err := r.pool.Exec(ctx, query,
		feature.Username,
		feature.Description,
		feature.Title,
		feature.Category,
		feature.Status,
		feature.RepeatCount,
		feature.Importance,
		feature.InternalNote,
		nullIfEmpty(feature.Flag),
		feature.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
