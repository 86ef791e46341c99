package service

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"

	"go.uber.org/zap"

	"github.com/vardast/ops-dashboard/internal/aggregate"
	"github.com/vardast/ops-dashboard/internal/domain"
	"github.com/vardast/ops-dashboard/internal/store"
	apperrors "github.com/vardast/ops-dashboard/pkg/util/errorutil"
)

// utf8BOM lets spreadsheet tools detect UTF-8 in the exported file.
const utf8BOM = "\ufeff"

// RecordEntry pairs a record with its reconciliation state.
type RecordEntry struct {
	State  domain.ReconcileState `json:"reconcile_state"`
	Record domain.Record         `json:"record"`
}

// RecordList is one collection as rendered in a table tab.
type RecordList struct {
	Kind      domain.Kind   `json:"kind"`
	Connected bool          `json:"connected"`
	Version   uint64        `json:"version"`
	Records   []RecordEntry `json:"records"`
}

// Profile is a customer's cross-table history.
type Profile struct {
	Username string                   `json:"username"`
	History  []aggregate.HistoryEntry `json:"history"`
}

// Status summarises the store for the header badge.
type Status struct {
	Connected bool           `json:"connected"`
	Version   uint64         `json:"version"`
	Counts    map[string]int `json:"counts"`
}

// RecordService serves read access to the store.
type RecordService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewRecordService builds the service.
func NewRecordService(st *store.Store, logger *zap.Logger) *RecordService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordService{store: st, logger: logger}
}

func (s *RecordService) snapshot(ctx context.Context) (store.Snapshot, error) {
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return store.Snapshot{}, apperrors.NewInternalError(err)
	}
	return snap, nil
}

// Status reports the connected flag and collection sizes.
func (s *RecordService) Status(ctx context.Context) (Status, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return Status{}, err
	}
	return Status{
		Connected: snap.Connected,
		Version:   snap.Version,
		Counts: map[string]int{
			string(domain.KindIssue):   len(snap.Issues),
			string(domain.KindFrozen):  len(snap.Frozen),
			string(domain.KindFeature): len(snap.Features),
			string(domain.KindRefund):  len(snap.Refunds),
		},
	}, nil
}

// List returns the collection of kind, newest first.
func (s *RecordService) List(ctx context.Context, kind domain.Kind) (RecordList, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return RecordList{}, err
	}
	records := snap.Collection(kind)
	entries := make([]RecordEntry, len(records))
	for i, rec := range records {
		entries[i] = RecordEntry{State: snap.State(kind, rec.RecordID()), Record: rec}
	}
	return RecordList{Kind: kind, Connected: snap.Connected, Version: snap.Version, Records: entries}, nil
}

// Reload re-seeds the store from the gateway.
func (s *RecordService) Reload(ctx context.Context) (Status, error) {
	if err := s.store.Reload(ctx); err != nil {
		return Status{}, apperrors.NewGatewayError(err)
	}
	return s.Status(ctx)
}

// ExportCSV writes the collection of kind as CSV with a UTF-8 BOM, columns
// in display order. An empty collection is reported as a validation error.
func (s *RecordService) ExportCSV(ctx context.Context, kind domain.Kind, w io.Writer) error {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return err
	}
	records := snap.Collection(kind)
	if len(records) == 0 {
		return apperrors.NewValidationError("no data to export", map[string]any{"kind": string(kind)})
	}
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}

	columns := kind.Columns()
	out := csv.NewWriter(w)
	if err := out.Write(columns); err != nil {
		return err
	}
	row := make([]string, len(columns))
	for _, rec := range records {
		fields := rec.Fields()
		for i, col := range columns {
			if col == "id" {
				row[i] = strconv.FormatInt(rec.RecordID(), 10)
				continue
			}
			row[i] = fields[col]
		}
		if err := out.Write(row); err != nil {
			return err
		}
	}
	out.Flush()
	return out.Error()
}

// SuggestUsernames completes a partial username.
func (s *RecordService) SuggestUsernames(ctx context.Context, query string) ([]string, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return aggregate.SuggestUsernames(snap.Records(), query), nil
}

// Profile gathers every record filed under username.
func (s *RecordService) Profile(ctx context.Context, username string) (Profile, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return Profile{}, err
	}
	history := aggregate.UserHistory(snap.Records(), username)
	if len(history) == 0 {
		return Profile{}, apperrors.NewNotFound("user", map[string]any{"username": username})
	}
	return Profile{Username: username, History: history}, nil
}
