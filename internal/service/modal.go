package service

import (
	"context"
	"sync"

	"github.com/vardast/ops-dashboard/internal/domain"
)

// ModalView is the client-visible state of one session's modal.
type ModalView struct {
	Open       bool              `json:"open"`
	Kind       domain.Kind       `json:"kind,omitempty"`
	Mode       FormMode          `json:"mode,omitempty"`
	RecordID   int64             `json:"record_id,omitempty"`
	Fields     map[string]string `json:"fields,omitempty"`
	Error      string            `json:"error,omitempty"`
	AIBusy     bool              `json:"ai_busy"`
	Generation uint64            `json:"generation"`
}

// modal is the per-session edit surface. Every open starts a new generation
// with its own context; closing cancels that context so late AI results
// are dropped.
type modal struct {
	mu         sync.Mutex
	open       bool
	kind       domain.Kind
	mode       FormMode
	recordID   int64
	fields     map[string]string
	lastErr    string
	aiBusy     bool
	generation uint64
	ctx        context.Context
	cancel     context.CancelFunc
}

// openLocked resets the modal for a new edit. Caller holds mu.
func (m *modal) openLocked(kind domain.Kind, mode FormMode, recordID int64, fields map[string]string) {
	m.closeLocked()
	m.open = true
	m.kind = kind
	m.mode = mode
	m.recordID = recordID
	m.fields = fields
	m.ctx, m.cancel = context.WithCancel(context.Background())
}

// closeLocked clears edit state and bumps the generation. Caller holds mu.
func (m *modal) closeLocked() {
	if m.cancel != nil {
		m.cancel()
	}
	m.generation++
	m.open = false
	m.kind = ""
	m.mode = ""
	m.recordID = 0
	m.fields = nil
	m.lastErr = ""
	m.aiBusy = false
	m.ctx, m.cancel = nil, nil
}

func (m *modal) viewLocked() ModalView {
	v := ModalView{
		Open:       m.open,
		Kind:       m.kind,
		Mode:       m.mode,
		RecordID:   m.recordID,
		Error:      m.lastErr,
		AIBusy:     m.aiBusy,
		Generation: m.generation,
	}
	if m.fields != nil {
		v.Fields = copyFields(m.fields)
	}
	return v
}

func copyFields(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

type modalRegistry struct {
	mu     sync.Mutex
	modals map[string]*modal
}

func newModalRegistry() *modalRegistry {
	return &modalRegistry{modals: make(map[string]*modal)}
}

func (r *modalRegistry) get(session string) *modal {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.modals[session]
	if !ok {
		m = &modal{}
		r.modals[session] = m
	}
	return m
}

// drop closes and forgets the session's modal.
func (r *modalRegistry) drop(session string) {
	r.mu.Lock()
	m, ok := r.modals[session]
	delete(r.modals, session)
	r.mu.Unlock()
	if ok {
		m.mu.Lock()
		m.closeLocked()
		m.mu.Unlock()
	}
}
