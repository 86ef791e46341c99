package repository

import "github.com/jackc/pgx/v5/pgxpool"

// NewPostgresGateway wires the four tables to one pool. A nil pool yields a
// nil gateway, which callers treat as "not configured".
func NewPostgresGateway(pool *pgxpool.Pool) *Gateway {
	if pool == nil {
		return nil
	}
	return &Gateway{
		Issues:   NewIssueTable(pool),
		Frozen:   NewFrozenTable(pool),
		Features: NewFeatureTable(pool),
		Refunds:  NewRefundTable(pool),
	}
}
