package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vardast/ops-dashboard/internal/service"
)

// DashboardHandler serves aggregated metrics.
type DashboardHandler struct {
	dashboards *service.DashboardService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(dashboards *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboards: dashboards}
}

// Dashboard GET /api/dashboard.
func (h *DashboardHandler) Dashboard(c *fiber.Ctx) error {
	view, err := h.dashboards.Dashboard(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": view})
}

// Churn GET /api/churn.
func (h *DashboardHandler) Churn(c *fiber.Ctx) error {
	risks, err := h.dashboards.ChurnRisks(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": risks})
}

// ExplainChurn POST /api/churn/:username/explain.
func (h *DashboardHandler) ExplainChurn(c *fiber.Ctx) error {
	username, err := pathUnescape(c.Params("username"))
	if err != nil {
		return err
	}
	explanation, err := h.dashboards.ExplainChurn(c.UserContext(), username)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": explanation})
}
