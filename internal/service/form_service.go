package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/vardast/ops-dashboard/internal/ai"
	"github.com/vardast/ops-dashboard/internal/domain"
	"github.com/vardast/ops-dashboard/internal/locale"
	"github.com/vardast/ops-dashboard/internal/repository"
	"github.com/vardast/ops-dashboard/internal/store"
	apperrors "github.com/vardast/ops-dashboard/pkg/util/errorutil"
)

// FormService is the form/modal controller. It writes through the gateway;
// inserts come back through the change feed while updates are merged into
// the store as soon as the gateway accepts them.
type FormService struct {
	gateway   *repository.Gateway
	store     *store.Store
	ai        ai.Generator
	dates     *locale.DateFormatter
	aiTimeout time.Duration
	logger    *zap.Logger
	modals    *modalRegistry
}

// FormDependencies bundles the collaborators of the form controller.
type FormDependencies struct {
	Gateway   *repository.Gateway
	Store     *store.Store
	AI        ai.Generator
	Dates     *locale.DateFormatter
	AITimeout time.Duration
	Logger    *zap.Logger
}

// NewFormService builds the controller.
func NewFormService(deps FormDependencies) *FormService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	dates := deps.Dates
	if dates == nil {
		dates = locale.NewDateFormatter("fa-IR", nil)
	}
	return &FormService{
		gateway:   deps.Gateway,
		store:     deps.Store,
		ai:        deps.AI,
		dates:     dates,
		aiTimeout: deps.AITimeout,
		logger:    logger,
		modals:    newModalRegistry(),
	}
}

// Modal returns the session's current modal state.
func (s *FormService) Modal(session string) ModalView {
	m := s.modals.get(session)
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.viewLocked()
}

// Open shows the modal for kind. With recordID > 0 the modal edits that
// record, pre-filled from the store.
func (s *FormService) Open(ctx context.Context, session string, kind domain.Kind, recordID int64) (ModalView, error) {
	mode := FormModeCreate
	form := BlankForm()
	if recordID > 0 {
		rec, ok, err := s.store.Find(ctx, kind, recordID)
		if err != nil {
			return ModalView{}, apperrors.NewInternalError(err)
		}
		if !ok {
			return ModalView{}, apperrors.NewNotFound("record", map[string]any{"kind": string(kind), "id": recordID})
		}
		mode = FormModeEdit
		form = FormFromRecord(rec)
	}

	m := s.modals.get(session)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.openLocked(kind, mode, recordID, form)
	return m.viewLocked(), nil
}

// SetFields merges user input into the open form.
func (s *FormService) SetFields(session string, fields map[string]string) (ModalView, error) {
	for k := range fields {
		if _, ok := knownFormField[k]; !ok {
			return ModalView{}, apperrors.NewValidationError("unknown field", map[string]any{"field": k})
		}
	}
	m := s.modals.get(session)
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.open {
		return m.viewLocked(), errModalClosed()
	}
	for k, v := range fields {
		m.fields[k] = v
	}
	return m.viewLocked(), nil
}

// Cancel closes the modal without writing.
func (s *FormService) Cancel(session string) ModalView {
	m := s.modals.get(session)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeLocked()
	return m.viewLocked()
}

// Forget drops all modal state of a session, e.g. on logout.
func (s *FormService) Forget(session string) {
	s.modals.drop(session)
}

// Submit validates the form and writes it. On success the modal closes; on
// failure it stays open with the error recorded. Concurrent submits are not
// serialised.
func (s *FormService) Submit(ctx context.Context, session string) (domain.Record, error) {
	m := s.modals.get(session)
	m.mu.Lock()
	if !m.open {
		m.mu.Unlock()
		return nil, errModalClosed()
	}
	kind, mode, recordID, generation := m.kind, m.mode, m.recordID, m.generation
	form := copyFields(m.fields)
	m.mu.Unlock()

	rec, err := s.write(ctx, kind, mode, recordID, form)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.generation != generation {
		return rec, err
	}
	if err != nil {
		m.lastErr = apperrors.ToDomainError(err).Message
		return nil, err
	}
	m.closeLocked()
	return rec, nil
}

func (s *FormService) write(ctx context.Context, kind domain.Kind, mode FormMode, recordID int64, form map[string]string) (domain.Record, error) {
	if !s.gateway.Configured() {
		return nil, apperrors.NewGatewayNotConfigured()
	}
	rec, err := BuildRecord(kind, mode, form, s.dates.Today())
	if err != nil {
		return nil, err
	}

	if mode == FormModeCreate {
		created, err := insertRecord(ctx, s.gateway, rec)
		if err != nil {
			s.logger.Warn("insert failed", zap.String("table", string(kind)), zap.Error(err))
			return nil, apperrors.NewGatewayError(err)
		}
		s.logger.Info("record created", zap.String("table", string(kind)), zap.Int64("id", created.RecordID()))
		return created, nil
	}

	rec = domain.WithID(rec, recordID)
	prev, err := s.store.MarkPending(ctx, kind, recordID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if err := updateRecord(ctx, s.gateway, rec); err != nil {
		if restoreErr := s.store.RestoreState(context.WithoutCancel(ctx), kind, recordID, prev); restoreErr != nil {
			s.logger.Warn("restore reconcile state", zap.Error(restoreErr))
		}
		s.logger.Warn("update failed", zap.String("table", string(kind)), zap.Int64("id", recordID), zap.Error(err))
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("record", map[string]any{"kind": string(kind), "id": recordID})
		}
		return nil, apperrors.NewGatewayError(err)
	}
	if _, err := s.store.ApplyUpdate(context.WithoutCancel(ctx), rec); err != nil {
		s.logger.Warn("apply update locally", zap.Error(err))
	}
	s.logger.Info("record updated", zap.String("table", string(kind)), zap.Int64("id", recordID))
	return rec, nil
}

// ClassifyIssue asks the model for module, type and a technical note and
// merges the non-empty answers into the form.
func (s *FormService) ClassifyIssue(ctx context.Context, session string) (ModalView, error) {
	return s.assist(ctx, session,
		func(form map[string]string) (string, bool, error) {
			if strings.TrimSpace(form["desc_text"]) == "" {
				return "", false, apperrors.NewValidationError("description is required", map[string]any{"field": "desc_text"})
			}
			return ai.ClassifyIssuePrompt(form["desc_text"]), true, nil
		},
		func(form map[string]string, text string) error {
			var parsed struct {
				Module string `json:"module"`
				Type   string `json:"type"`
				Note   string `json:"note"`
			}
			if err := json.Unmarshal([]byte(text), &parsed); err != nil {
				return apperrors.NewAIParseFailed(text)
			}
			mergeNonEmpty(form, "module", parsed.Module)
			mergeNonEmpty(form, "type", parsed.Type)
			mergeNonEmpty(form, "technical_note", parsed.Note)
			return nil
		})
}

// DraftRefundResponse stores a suggested reply to the customer.
func (s *FormService) DraftRefundResponse(ctx context.Context, session string) (ModalView, error) {
	return s.assist(ctx, session,
		func(form map[string]string) (string, bool, error) {
			if form["username"] == "" && form["reason"] == "" {
				return "", false, apperrors.NewValidationError("username or reason is required", nil)
			}
			return ai.RefundResponsePrompt(form["username"], form["reason"]), false, nil
		},
		func(form map[string]string, text string) error {
			form["suggestion"] = strings.TrimSpace(text)
			return nil
		})
}

// DraftFeatureTitle stores a short title for the feature description.
func (s *FormService) DraftFeatureTitle(ctx context.Context, session string) (ModalView, error) {
	return s.assist(ctx, session,
		func(form map[string]string) (string, bool, error) {
			if strings.TrimSpace(form["desc_text"]) == "" {
				return "", false, apperrors.NewValidationError("description is required", map[string]any{"field": "desc_text"})
			}
			return ai.FeatureTitlePrompt(form["desc_text"]), false, nil
		},
		func(form map[string]string, text string) error {
			form["title"] = strings.TrimSpace(text)
			return nil
		})
}

// assist runs one AI call against the open modal. Only one call per modal
// may be in flight. The result is discarded if the modal was closed or
// reopened meanwhile.
func (s *FormService) assist(
	ctx context.Context,
	session string,
	prompt func(form map[string]string) (string, bool, error),
	apply func(form map[string]string, text string) error,
) (ModalView, error) {
	m := s.modals.get(session)
	m.mu.Lock()
	if !m.open {
		defer m.mu.Unlock()
		return m.viewLocked(), errModalClosed()
	}
	if m.aiBusy {
		defer m.mu.Unlock()
		return m.viewLocked(), apperrors.NewConflict("an AI request is already running", nil)
	}
	text, asJSON, err := prompt(copyFields(m.fields))
	if err != nil {
		defer m.mu.Unlock()
		return m.viewLocked(), err
	}
	if s.ai == nil {
		defer m.mu.Unlock()
		return m.viewLocked(), apperrors.NewAIUnavailable("AI key not configured")
	}
	m.aiBusy = true
	generation := m.generation
	modalCtx := m.ctx
	m.mu.Unlock()

	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(modalCtx, cancel)
	defer stop()
	if s.aiTimeout > 0 {
		var cancelTimeout context.CancelFunc
		callCtx, cancelTimeout = context.WithTimeout(callCtx, s.aiTimeout)
		defer cancelTimeout()
	}

	result, genErr := s.ai.Generate(callCtx, text, asJSON)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.generation != generation || !m.open {
		s.logger.Debug("discarding AI result for a closed modal", zap.String("session", session))
		return m.viewLocked(), apperrors.NewConflict("modal was closed before the AI answered", nil)
	}
	m.aiBusy = false
	if genErr != nil {
		if errors.Is(genErr, ai.ErrNotConfigured) {
			return m.viewLocked(), apperrors.NewAIUnavailable("AI key not configured")
		}
		if !errors.Is(genErr, ai.ErrEmptyResponse) {
			s.logger.Warn("AI request failed, no suggestion", zap.Error(genErr))
		}
		return m.viewLocked(), nil
	}
	if err := apply(m.fields, result); err != nil {
		return m.viewLocked(), err
	}
	return m.viewLocked(), nil
}

func mergeNonEmpty(form map[string]string, key, value string) {
	if value != "" {
		form[key] = value
	}
}

func errModalClosed() error {
	return apperrors.NewConflict("modal is not open", nil)
}

func insertRecord(ctx context.Context, gw *repository.Gateway, rec domain.Record) (domain.Record, error) {
	switch r := rec.(type) {
	case domain.Issue:
		err := gw.Issues.Insert(ctx, &r)
		return r, err
	case domain.FrozenAccount:
		err := gw.Frozen.Insert(ctx, &r)
		return r, err
	case domain.FeatureRequest:
		err := gw.Features.Insert(ctx, &r)
		return r, err
	case domain.RefundRequest:
		err := gw.Refunds.Insert(ctx, &r)
		return r, err
	}
	return nil, errors.New("unsupported record type")
}

func updateRecord(ctx context.Context, gw *repository.Gateway, rec domain.Record) error {
	switch r := rec.(type) {
	case domain.Issue:
		return gw.Issues.Update(ctx, &r)
	case domain.FrozenAccount:
		return gw.Frozen.Update(ctx, &r)
	case domain.FeatureRequest:
		return gw.Features.Update(ctx, &r)
	case domain.RefundRequest:
		return gw.Refunds.Update(ctx, &r)
	}
	return errors.New("unsupported record type")
}
