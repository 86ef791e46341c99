// Package store mirrors the four record collections in memory. A single
// goroutine owns the collections; every read and write goes through it.
package store

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vardast/ops-dashboard/internal/aggregate"
	"github.com/vardast/ops-dashboard/internal/domain"
	"github.com/vardast/ops-dashboard/internal/events"
	"github.com/vardast/ops-dashboard/internal/repository"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("record store closed")

type recordKey struct {
	kind domain.Kind
	id   int64
}

type state struct {
	version   uint64
	connected bool
	issues    []domain.Issue
	frozen    []domain.FrozenAccount
	features  []domain.FeatureRequest
	refunds   []domain.RefundRequest
	// records missing from the map are confirmed
	reconcile map[recordKey]domain.ReconcileState
}

// Store is the actor-owned Record Store.
type Store struct {
	gateway *repository.Gateway
	logger  *zap.Logger

	ops       chan func(*state)
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// New starts the store goroutine. gateway may be nil, in which case the
// store stays empty and disconnected.
func New(gateway *repository.Gateway, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		gateway: gateway,
		logger:  logger,
		ops:     make(chan func(*state)),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go s.loop()
	return s
}

func (s *Store) loop() {
	defer close(s.done)
	st := &state{reconcile: make(map[recordKey]domain.ReconcileState)}
	for {
		select {
		case op := <-s.ops:
			op(st)
		case <-s.quit:
			return
		}
	}
}

// Close stops the owner goroutine and waits for it to exit.
func (s *Store) Close() {
	s.closeOnce.Do(func() { close(s.quit) })
	<-s.done
}

// do runs fn on the owner goroutine and waits for it to finish.
func (s *Store) do(ctx context.Context, fn func(*state)) error {
	finished := make(chan struct{})
	op := func(st *state) {
		fn(st)
		close(finished)
	}
	select {
	case s.ops <- op:
	case <-s.quit:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	<-finished
	return nil
}

// Seed bulk-loads every collection. Collections whose fetch fails keep their
// previous content; the joined fetch errors are returned. The connected flag
// follows gateway configuration, not fetch success.
func (s *Store) Seed(ctx context.Context) error {
	configured := s.gateway.Configured()
	if err := s.do(ctx, func(st *state) {
		st.connected = configured
		st.version++
	}); err != nil {
		return err
	}
	if !configured {
		s.logger.Warn("record gateway not configured; store stays empty")
		return nil
	}

	var (
		issues   []domain.Issue
		frozen   []domain.FrozenAccount
		features []domain.FeatureRequest
		refunds  []domain.RefundRequest
		errs     [4]error
	)
	// A plain group: one failed table must not cancel the other fetches.
	var g errgroup.Group
	g.Go(func() error {
		issues, errs[0] = s.gateway.Issues.List(ctx)
		return errs[0]
	})
	g.Go(func() error {
		frozen, errs[1] = s.gateway.Frozen.List(ctx)
		return errs[1]
	})
	g.Go(func() error {
		features, errs[2] = s.gateway.Features.List(ctx)
		return errs[2]
	})
	g.Go(func() error {
		refunds, errs[3] = s.gateway.Refunds.List(ctx)
		return errs[3]
	})
	if err := g.Wait(); err != nil {
		s.logger.Warn("partial seed, keeping previous content of failed tables", zap.Error(err))
	}

	err := s.do(ctx, func(st *state) {
		if errs[0] == nil {
			st.issues = issues
			st.clearStates(domain.KindIssue)
		}
		if errs[1] == nil {
			st.frozen = frozen
			st.clearStates(domain.KindFrozen)
		}
		if errs[2] == nil {
			st.features = features
			st.clearStates(domain.KindFeature)
		}
		if errs[3] == nil {
			st.refunds = refunds
			st.clearStates(domain.KindRefund)
		}
		st.version++
	})
	if err != nil {
		return err
	}

	var failures []error
	for i, fetchErr := range errs {
		if fetchErr != nil {
			s.logger.Error("seed fetch failed", zap.String("table", string(domain.Kinds[i])), zap.Error(fetchErr))
			failures = append(failures, fmt.Errorf("load %s: %w", domain.Kinds[i], fetchErr))
		}
	}
	if len(failures) == 0 {
		s.logger.Info("record store seeded",
			zap.Int("issues", len(issues)),
			zap.Int("frozen", len(frozen)),
			zap.Int("features", len(features)),
			zap.Int("refunds", len(refunds)))
	}
	return errors.Join(failures...)
}

// Reload discards local divergence by re-seeding from the gateway.
func (s *Store) Reload(ctx context.Context) error {
	s.logger.Info("reloading record store")
	return s.Seed(ctx)
}

// Subscribe attaches the store to the change feed.
func (s *Store) Subscribe(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventRecordInserted, s.handleInsert)
	dispatcher.Subscribe(events.EventRecordUpdated, s.handleUpdate)
}

func (s *Store) handleInsert(ctx context.Context, ev events.Event) error {
	rec, err := domain.DecodeRow(ev.Table, ev.Row)
	if err != nil {
		s.logger.Warn("dropping insert event", zap.String("table", string(ev.Table)), zap.Error(err))
		return nil
	}
	var added bool
	if err := s.do(ctx, func(st *state) {
		added = st.prepend(rec)
		if added {
			st.version++
		}
	}); err != nil {
		return err
	}
	if !added {
		s.logger.Debug("insert already mirrored", zap.String("table", string(ev.Table)), zap.Int64("id", rec.RecordID()))
	}
	return nil
}

// handleUpdate marks a confirmed record stale when the remote row no longer
// matches the local copy. Pending writes are left alone; their own outcome
// settles the state.
func (s *Store) handleUpdate(ctx context.Context, ev events.Event) error {
	remote, err := domain.DecodeRow(ev.Table, ev.Row)
	if err != nil {
		s.logger.Warn("dropping update event", zap.String("table", string(ev.Table)), zap.Error(err))
		return nil
	}
	return s.do(ctx, func(st *state) {
		key := recordKey{kind: remote.RecordKind(), id: remote.RecordID()}
		local, ok := st.find(key.kind, key.id)
		if !ok || st.stateOf(key) == domain.ReconcilePendingWrite {
			return
		}
		if reflect.DeepEqual(local, remote) {
			return
		}
		st.reconcile[key] = domain.ReconcileStale
		st.version++
	})
}

// MarkPending flags a record as having an in-flight write and returns its
// previous state so a failed write can restore it.
func (s *Store) MarkPending(ctx context.Context, kind domain.Kind, id int64) (domain.ReconcileState, error) {
	prev := domain.ReconcileConfirmed
	err := s.do(ctx, func(st *state) {
		key := recordKey{kind: kind, id: id}
		prev = st.stateOf(key)
		st.reconcile[key] = domain.ReconcilePendingWrite
		st.version++
	})
	return prev, err
}

// RestoreState puts back the state captured by MarkPending.
func (s *Store) RestoreState(ctx context.Context, kind domain.Kind, id int64, prev domain.ReconcileState) error {
	return s.do(ctx, func(st *state) {
		st.setState(recordKey{kind: kind, id: id}, prev)
		st.version++
	})
}

// ApplyUpdate merges a successfully written record into the local copy,
// keeping the local date column, and marks it confirmed. It reports whether
// the record was present.
func (s *Store) ApplyUpdate(ctx context.Context, rec domain.Record) (bool, error) {
	var found bool
	err := s.do(ctx, func(st *state) {
		found = st.merge(rec)
		st.setState(recordKey{kind: rec.RecordKind(), id: rec.RecordID()}, domain.ReconcileConfirmed)
		st.version++
	})
	return found, err
}

// Find looks up one record.
func (s *Store) Find(ctx context.Context, kind domain.Kind, id int64) (domain.Record, bool, error) {
	var (
		rec   domain.Record
		found bool
	)
	err := s.do(ctx, func(st *state) {
		rec, found = st.find(kind, id)
	})
	return rec, found, err
}

// Snapshot returns a copy of the current collections.
func (s *Store) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := s.do(ctx, func(st *state) {
		snap = Snapshot{
			Version:   st.version,
			Connected: st.connected,
			Issues:    append([]domain.Issue{}, st.issues...),
			Frozen:    append([]domain.FrozenAccount{}, st.frozen...),
			Features:  append([]domain.FeatureRequest{}, st.features...),
			Refunds:   append([]domain.RefundRequest{}, st.refunds...),
			states:    make(map[recordKey]domain.ReconcileState, len(st.reconcile)),
		}
		for k, v := range st.reconcile {
			snap.states[k] = v
		}
	})
	return snap, err
}

func (st *state) stateOf(key recordKey) domain.ReconcileState {
	if v, ok := st.reconcile[key]; ok {
		return v
	}
	return domain.ReconcileConfirmed
}

func (st *state) setState(key recordKey, v domain.ReconcileState) {
	if v == domain.ReconcileConfirmed || v == "" {
		delete(st.reconcile, key)
		return
	}
	st.reconcile[key] = v
}

func (st *state) clearStates(kind domain.Kind) {
	for k := range st.reconcile {
		if k.kind == kind {
			delete(st.reconcile, k)
		}
	}
}

func (st *state) prepend(rec domain.Record) bool {
	var added bool
	switch r := rec.(type) {
	case domain.Issue:
		st.issues, added = prependUnique(st.issues, r)
	case domain.FrozenAccount:
		st.frozen, added = prependUnique(st.frozen, r)
	case domain.FeatureRequest:
		st.features, added = prependUnique(st.features, r)
	case domain.RefundRequest:
		st.refunds, added = prependUnique(st.refunds, r)
	}
	return added
}

func (st *state) merge(rec domain.Record) bool {
	switch r := rec.(type) {
	case domain.Issue:
		return mergeInto(st.issues, r)
	case domain.FrozenAccount:
		return mergeInto(st.frozen, r)
	case domain.FeatureRequest:
		return mergeInto(st.features, r)
	case domain.RefundRequest:
		return mergeInto(st.refunds, r)
	}
	return false
}

func (st *state) find(kind domain.Kind, id int64) (domain.Record, bool) {
	switch kind {
	case domain.KindIssue:
		return findIn(st.issues, id)
	case domain.KindFrozen:
		return findIn(st.frozen, id)
	case domain.KindFeature:
		return findIn(st.features, id)
	case domain.KindRefund:
		return findIn(st.refunds, id)
	}
	return nil, false
}

func prependUnique[T domain.Record](list []T, rec T) ([]T, bool) {
	if _, ok := findIn(list, rec.RecordID()); ok {
		return list, false
	}
	out := make([]T, 0, len(list)+1)
	out = append(out, rec)
	return append(out, list...), true
}

func mergeInto[T domain.Record](list []T, rec T) bool {
	for i := range list {
		if list[i].RecordID() == rec.RecordID() {
			list[i] = domain.KeepDate(list[i], rec)
			return true
		}
	}
	return false
}

func findIn[T domain.Record](list []T, id int64) (domain.Record, bool) {
	for _, r := range list {
		if r.RecordID() == id {
			return r, true
		}
	}
	return nil, false
}

// Snapshot is a point-in-time copy of the store.
type Snapshot struct {
	Version   uint64
	Connected bool
	Issues    []domain.Issue
	Frozen    []domain.FrozenAccount
	Features  []domain.FeatureRequest
	Refunds   []domain.RefundRequest
	states    map[recordKey]domain.ReconcileState
}

// State reports the reconciliation state of one record.
func (s Snapshot) State(kind domain.Kind, id int64) domain.ReconcileState {
	if v, ok := s.states[recordKey{kind: kind, id: id}]; ok {
		return v
	}
	return domain.ReconcileConfirmed
}

// Records exposes the snapshot to the aggregation functions.
func (s Snapshot) Records() aggregate.Records {
	return aggregate.Records{Issues: s.Issues, Frozen: s.Frozen, Features: s.Features, Refunds: s.Refunds}
}

// Collection returns the records of kind, newest first.
func (s Snapshot) Collection(kind domain.Kind) []domain.Record {
	switch kind {
	case domain.KindIssue:
		return asRecords(s.Issues)
	case domain.KindFrozen:
		return asRecords(s.Frozen)
	case domain.KindFeature:
		return asRecords(s.Features)
	case domain.KindRefund:
		return asRecords(s.Refunds)
	}
	return []domain.Record{}
}

func asRecords[T domain.Record](list []T) []domain.Record {
	out := make([]domain.Record, len(list))
	for i, r := range list {
		out[i] = r
	}
	return out
}
