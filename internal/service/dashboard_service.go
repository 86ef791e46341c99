package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/vardast/ops-dashboard/internal/aggregate"
	"github.com/vardast/ops-dashboard/internal/ai"
	"github.com/vardast/ops-dashboard/internal/config"
	"github.com/vardast/ops-dashboard/internal/store"
	apperrors "github.com/vardast/ops-dashboard/pkg/util/errorutil"
)

// DashboardView is the dashboard tab plus the churn list.
type DashboardView struct {
	aggregate.Dashboard
	ChurnRisks []aggregate.ChurnRisk `json:"churn_risks"`
	Connected  bool                  `json:"connected"`
	Version    uint64                `json:"version"`
}

// ChurnExplanation is the model's reading of a customer's repeated issues.
// When the answer is not valid JSON only Raw is set.
type ChurnExplanation struct {
	Username         string `json:"username"`
	AngerScore       *int   `json:"anger_score,omitempty"`
	RootCause        string `json:"root_cause,omitempty"`
	SuggestedMessage string `json:"suggested_message,omitempty"`
	Raw              string `json:"raw,omitempty"`
}

// DashboardService derives metrics from store snapshots, recomputing only
// when the store version moves.
type DashboardService struct {
	store  *store.Store
	ai     ai.Generator
	cfg    config.DashboardConfig
	logger *zap.Logger

	mu     sync.Mutex
	cached *DashboardView
}

// NewDashboardService builds the service.
func NewDashboardService(st *store.Store, generator ai.Generator, cfg config.DashboardConfig, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{store: st, ai: generator, cfg: cfg, logger: logger}
}

// Dashboard returns the current metrics.
func (s *DashboardService) Dashboard(ctx context.Context) (DashboardView, error) {
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return DashboardView{}, apperrors.NewInternalError(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached != nil && s.cached.Version == snap.Version {
		return *s.cached, nil
	}
	view := DashboardView{
		Dashboard:  aggregate.BuildDashboard(snap.Issues, snap.Frozen, snap.Refunds, aggregate.Options{TimelineWindow: s.cfg.TimelineWindow}),
		ChurnRisks: aggregate.ChurnRisks(snap.Issues, s.cfg.ChurnWindow, s.cfg.ChurnThreshold),
		Connected:  snap.Connected,
		Version:    snap.Version,
	}
	s.cached = &view
	return view, nil
}

// ChurnRisks returns the customers flagged by the churn heuristic.
func (s *DashboardService) ChurnRisks(ctx context.Context) ([]aggregate.ChurnRisk, error) {
	view, err := s.Dashboard(ctx)
	if err != nil {
		return nil, err
	}
	return view.ChurnRisks, nil
}

// ExplainChurn asks the model why a flagged customer keeps coming back. A
// failed call yields an explanation with no content.
func (s *DashboardService) ExplainChurn(ctx context.Context, username string) (ChurnExplanation, error) {
	risks, err := s.ChurnRisks(ctx)
	if err != nil {
		return ChurnExplanation{}, err
	}
	var risk *aggregate.ChurnRisk
	for i := range risks {
		if risks[i].Username == username {
			risk = &risks[i]
			break
		}
	}
	if risk == nil {
		return ChurnExplanation{}, apperrors.NewNotFound("churn risk", map[string]any{"username": username})
	}
	if s.ai == nil {
		return ChurnExplanation{}, apperrors.NewAIUnavailable("AI key not configured")
	}

	text, err := s.ai.Generate(ctx, ai.ChurnExplanationPrompt(risk.Username, risk.Descriptions), true)
	if err != nil {
		s.logger.Warn("churn explanation failed", zap.String("username", username), zap.Error(err))
		if errors.Is(err, ai.ErrNotConfigured) {
			return ChurnExplanation{}, apperrors.NewAIUnavailable("AI key not configured")
		}
		return ChurnExplanation{Username: username}, nil
	}

	explanation := ChurnExplanation{Username: username}
	if err := json.Unmarshal([]byte(text), &explanation); err != nil {
		return ChurnExplanation{Username: username, Raw: text}, nil
	}
	explanation.Username = username
	return explanation, nil
}
