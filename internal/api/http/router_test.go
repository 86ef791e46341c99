package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vardast/ops-dashboard/internal/api/http/handlers"
	"github.com/vardast/ops-dashboard/internal/auth"
	"github.com/vardast/ops-dashboard/internal/config"
	"github.com/vardast/ops-dashboard/internal/domain"
	"github.com/vardast/ops-dashboard/internal/events"
	"github.com/vardast/ops-dashboard/internal/observability"
	"github.com/vardast/ops-dashboard/internal/repository"
	"github.com/vardast/ops-dashboard/internal/service"
	"github.com/vardast/ops-dashboard/internal/store"
)

type stubGenerator struct {
	reply string
}

func (g stubGenerator) Generate(context.Context, string, bool) (string, error) {
	return g.reply, nil
}

type testServer struct {
	app     *fiber.App
	gateway *repository.Gateway
	metrics *observability.Metrics
}

func newTestServer(t *testing.T, password string, reply string) *testServer {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()

	dispatcher := events.NewInMemoryDispatcher()
	gw := repository.NewMemoryGateway(dispatcher)
	st := store.New(gw, logger)
	t.Cleanup(st.Close)
	require.NoError(t, st.Seed(ctx))
	st.Subscribe(dispatcher)

	gen := stubGenerator{reply: reply}
	authService, err := service.NewAuthService(config.AuthConfig{
		AppPassword: password,
		JWTSecret:   "test-secret",
		BcryptCost:  4,
	}, repository.NewMemorySessionRepository(), logger)
	require.NoError(t, err)

	forms := service.NewFormService(service.FormDependencies{Gateway: gw, Store: st, AI: gen, Logger: logger})
	dashboards := service.NewDashboardService(st, gen, config.DashboardConfig{ChurnWindow: 100, ChurnThreshold: 3}, logger)
	records := service.NewRecordService(st, logger)
	metrics := observability.NewMetrics()

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:            handlers.NewHealthHandler("vardast-ops", "test", nil, nil),
		Metrics:           handlers.NewMetricsHandler(metrics),
		Auth:              handlers.NewAuthHandler(authService, forms),
		Dashboard:         handlers.NewDashboardHandler(dashboards),
		Records:           handlers.NewRecordsHandler(records),
		Modal:             handlers.NewModalHandler(forms),
		SessionMiddleware: auth.NewSessionMiddleware(authService),
	})
	return &testServer{app: app, gateway: gw, metrics: metrics}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, map[string]any, string) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(raw))
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	decoded := map[string]any{}
	if strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) && len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp.StatusCode, decoded, string(raw)
}

func errorCode(body map[string]any) string {
	errBody, _ := body["error"].(map[string]any)
	code, _ := errBody["code"].(string)
	return code
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t, "", "")

	status, body, _ := srv.do(t, fiber.MethodGet, "/health/live", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "alive", body["status"])

	status, body, _ = srv.do(t, fiber.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	deps := body["dependencies"].(map[string]any)
	assert.Equal(t, "disabled", deps["postgres"])

	status, body, _ = srv.do(t, fiber.MethodGet, "/metrics", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	requests := body["requests"].(map[string]any)
	assert.Contains(t, requests, "/health/live|GET|200")
}

func TestOpenAccessUsesDefaultSession(t *testing.T) {
	srv := newTestServer(t, "", "")

	status, body, _ := srv.do(t, fiber.MethodGet, "/api/status", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	data := body["data"].(map[string]any)
	assert.Equal(t, true, data["connected"])
}

func TestPasswordGate(t *testing.T) {
	srv := newTestServer(t, "s3cret", "")

	status, body, _ := srv.do(t, fiber.MethodGet, "/api/dashboard", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", errorCode(body))

	status, body, _ = srv.do(t, fiber.MethodPost, "/auth/login", "", map[string]string{"password": "wrong"})
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, body, _ = srv.do(t, fiber.MethodPost, "/auth/login", "", map[string]string{"password": "s3cret"})
	require.Equal(t, fiber.StatusOK, status)
	token := body["data"].(map[string]any)["token"].(string)
	require.NotEmpty(t, token)

	status, _, _ = srv.do(t, fiber.MethodGet, "/api/dashboard", token, nil)
	assert.Equal(t, fiber.StatusOK, status)

	status, _, _ = srv.do(t, fiber.MethodPost, "/auth/logout", token, nil)
	assert.Equal(t, fiber.StatusNoContent, status)

	status, _, _ = srv.do(t, fiber.MethodGet, "/api/dashboard", token, nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestModalCreateFlowReachesTables(t *testing.T) {
	srv := newTestServer(t, "", "")

	status, body, _ := srv.do(t, fiber.MethodPost, "/api/modal/open", "", map[string]any{"kind": "issue"})
	require.Equal(t, fiber.StatusOK, status)
	modal := body["data"].(map[string]any)
	assert.Equal(t, true, modal["open"])

	status, _, _ = srv.do(t, fiber.MethodPost, "/api/modal/fields", "", map[string]any{
		"fields": map[string]string{"username": "ali", "desc_text": "پرداخت ناموفق", "module": "پرداخت"},
	})
	require.Equal(t, fiber.StatusOK, status)

	status, body, _ = srv.do(t, fiber.MethodPost, "/api/modal/submit", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	result := body["data"].(map[string]any)
	assert.Equal(t, "issues", result["kind"])
	assert.Equal(t, false, result["modal"].(map[string]any)["open"])

	status, body, _ = srv.do(t, fiber.MethodGet, "/api/records/issues", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	list := body["data"].(map[string]any)["records"].([]any)
	require.Len(t, list, 1)
	entry := list[0].(map[string]any)
	assert.Equal(t, "ali", entry["record"].(map[string]any)["username"])
	assert.Equal(t, string(domain.IssueStatusOpen), entry["record"].(map[string]any)["status"])

	status, body, _ = srv.do(t, fiber.MethodGet, "/api/profile/"+url.PathEscape("ali"), "", nil)
	require.Equal(t, fiber.StatusOK, status)
	history := body["data"].(map[string]any)["history"].([]any)
	assert.Len(t, history, 1)
}

func TestModalErrors(t *testing.T) {
	srv := newTestServer(t, "", "")

	status, body, _ := srv.do(t, fiber.MethodPost, "/api/modal/submit", "", nil)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "CONFLICT", errorCode(body))

	status, body, _ = srv.do(t, fiber.MethodPost, "/api/modal/open", "", map[string]any{"kind": "ticket"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))

	_, _, _ = srv.do(t, fiber.MethodPost, "/api/modal/open", "", map[string]any{"kind": "refund"})
	status, body, _ = srv.do(t, fiber.MethodPost, "/api/modal/submit", "", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body, _ = srv.do(t, fiber.MethodGet, "/api/modal", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	modal := body["data"].(map[string]any)
	assert.Equal(t, true, modal["open"])
	assert.NotEmpty(t, modal["error"])
}

func TestModalAIAssist(t *testing.T) {
	srv := newTestServer(t, "", "  بازگشت وجه تایید شد  ")

	_, _, _ = srv.do(t, fiber.MethodPost, "/api/modal/open", "", map[string]any{"kind": "refund"})
	_, _, _ = srv.do(t, fiber.MethodPost, "/api/modal/fields", "", map[string]any{
		"fields": map[string]string{"username": "sara", "reason": "کیفیت"},
	})
	status, body, _ := srv.do(t, fiber.MethodPost, "/api/modal/ai/refund", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	fields := body["data"].(map[string]any)["fields"].(map[string]any)
	assert.Equal(t, "بازگشت وجه تایید شد", fields["suggestion"])
}

func TestRecordsEndpoints(t *testing.T) {
	srv := newTestServer(t, "", "")
	ctx := context.Background()
	refund := domain.RefundRequest{Username: "sara", Reason: "گران", Action: domain.RefundActionRefunded}
	require.NoError(t, srv.gateway.Refunds.Insert(ctx, &refund))

	status, _, _ := srv.do(t, fiber.MethodGet, "/api/records/tickets", "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _, raw := srv.do(t, fiber.MethodGet, "/api/records/refunds/export", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.True(t, strings.HasPrefix(raw, "\ufeff"))
	assert.Contains(t, raw, "sara")

	status, body, _ := srv.do(t, fiber.MethodGet, "/api/records/issues/export", "", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))

	status, body, _ = srv.do(t, fiber.MethodGet, "/api/profile/suggest?q=sa", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, []any{"sara"}, body["data"])

	status, _, _ = srv.do(t, fiber.MethodGet, "/api/profile/nobody", "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, body, _ = srv.do(t, fiber.MethodPost, "/api/records/reload", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	counts := body["data"].(map[string]any)["counts"].(map[string]any)
	assert.EqualValues(t, 1, counts["refunds"])
}

func TestDashboardEndpoints(t *testing.T) {
	srv := newTestServer(t, "", "")

	status, body, _ := srv.do(t, fiber.MethodGet, "/api/dashboard", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body["data"], "connected")

	status, body, _ = srv.do(t, fiber.MethodGet, "/api/churn", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Empty(t, body["data"])

	status, _, _ = srv.do(t, fiber.MethodPost, "/api/churn/"+url.PathEscape("علی")+"/explain", "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}
