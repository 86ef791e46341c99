package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vardast/ops-dashboard/internal/domain"
)

type issueTable struct {
	pool *pgxpool.Pool
}

// NewIssueTable returns a Postgres-backed issues table.
func NewIssueTable(pool *pgxpool.Pool) Table[domain.Issue] {
	return &issueTable{pool: pool}
}

func (r *issueTable) List(ctx context.Context) ([]domain.Issue, error) {
	const query = `
        SELECT id, COALESCE(username,''), COALESCE(created_at,''), COALESCE(desc_text,''), COALESCE(module,''),
               COALESCE(type,''), COALESCE(status,''), COALESCE(support,''), COALESCE(subscription_status,''),
               COALESCE(resolved_at,''), COALESCE(technical_note,''), COALESCE(flag,''), COALESCE(contact,'')
        FROM issues ORDER BY id DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Issue{}
	for rows.Next() {
		var issue domain.Issue
		if err := rows.Scan(
			&issue.ID,
			&issue.Username,
			&issue.CreatedAt,
			&issue.Description,
			&issue.Module,
			&issue.Type,
			&issue.Status,
			&issue.Support,
			&issue.SubscriptionStatus,
			&issue.ResolvedAt,
			&issue.TechnicalNote,
			&issue.Flag,
			&issue.Contact,
		); err != nil {
			return nil, err
		}
		result = append(result, issue)
	}
	return result, rows.Err()
}

func (r *issueTable) Insert(ctx context.Context, issue *domain.Issue) error {
	const query = `
        INSERT INTO issues (username, created_at, desc_text, module, type, status, support,
            subscription_status, resolved_at, technical_note, flag, contact)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		issue.Username,
		issue.CreatedAt,
		issue.Description,
		issue.Module,
		issue.Type,
		issue.Status,
		issue.Support,
		issue.SubscriptionStatus,
		issue.ResolvedAt,
		issue.TechnicalNote,
		nullIfEmpty(issue.Flag),
		issue.Contact,
	).Scan(&issue.ID)
}

func (r *issueTable) Update(ctx context.Context, issue *domain.Issue) error {
	const query = `
        UPDATE issues SET username=$1, desc_text=$2, module=$3, type=$4, status=$5, support=$6,
            subscription_status=$7, resolved_at=$8, technical_note=$9, flag=$10, contact=$11
        WHERE id=$12`
	cmd, err := r.pool.Exec(ctx, query,
		issue.Username,
		issue.Description,
		issue.Module,
		issue.Type,
		issue.Status,
		issue.Support,
		issue.SubscriptionStatus,
		issue.ResolvedAt,
		issue.TechnicalNote,
		nullIfEmpty(issue.Flag),
		issue.Contact,
		issue.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
