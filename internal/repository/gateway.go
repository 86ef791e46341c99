package repository

import (
	"context"

	"github.com/vardast/ops-dashboard/internal/domain"
)

// Table encapsulates persistence for one record kind.
type Table[T domain.Record] interface {
	// List returns every row ordered by descending identity.
	List(ctx context.Context) ([]T, error)
	// Insert creates the row and writes the gateway-assigned identity back.
	Insert(ctx context.Context, record *T) error
	// Update overwrites the row matching record's identity. The kind's date
	// column is left untouched.
	Update(ctx context.Context, record *T) error
}

// Gateway bundles the four record tables of the remote data store.
type Gateway struct {
	Issues   Table[domain.Issue]
	Frozen   Table[domain.FrozenAccount]
	Features Table[domain.FeatureRequest]
	Refunds  Table[domain.RefundRequest]
}

// Configured reports whether a client for every table is present.
func (g *Gateway) Configured() bool {
	return g != nil && g.Issues != nil && g.Frozen != nil && g.Features != nil && g.Refunds != nil
}

func nullIfEmpty[S ~string](v S) any {
	if v == "" {
		return nil
	}
	return string(v)
}
