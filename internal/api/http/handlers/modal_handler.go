package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/vardast/ops-dashboard/internal/api/dto"
	"github.com/vardast/ops-dashboard/internal/auth"
	"github.com/vardast/ops-dashboard/internal/domain"
	"github.com/vardast/ops-dashboard/internal/service"
	apperrors "github.com/vardast/ops-dashboard/pkg/util/errorutil"
)

// ModalHandler drives the per-session record form.
type ModalHandler struct {
	forms *service.FormService
}

// NewModalHandler constructs handler.
func NewModalHandler(forms *service.FormService) *ModalHandler {
	return &ModalHandler{forms: forms}
}

// Get GET /api/modal.
func (h *ModalHandler) Get(c *fiber.Ctx) error {
	session, err := sessionOf(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.forms.Modal(session)})
}

// Open POST /api/modal/open.
func (h *ModalHandler) Open(c *fiber.Ctx) error {
	session, err := sessionOf(c)
	if err != nil {
		return err
	}
	var req dto.OpenModalRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	kind, ok := domain.ParseKind(req.Kind)
	if !ok {
		return apperrors.NewValidationError("unknown kind", map[string]any{"kind": req.Kind})
	}
	view, err := h.forms.Open(c.UserContext(), session, kind, req.RecordID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": view})
}

// SetFields POST /api/modal/fields.
func (h *ModalHandler) SetFields(c *fiber.Ctx) error {
	session, err := sessionOf(c)
	if err != nil {
		return err
	}
	var req dto.ModalFieldsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	view, err := h.forms.SetFields(session, req.Fields)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": view})
}

// Submit POST /api/modal/submit.
func (h *ModalHandler) Submit(c *fiber.Ctx) error {
	session, err := sessionOf(c)
	if err != nil {
		return err
	}
	rec, err := h.forms.Submit(c.UserContext(), session)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"kind":   rec.RecordKind(),
		"record": rec,
		"modal":  h.forms.Modal(session),
	}})
}

// Cancel POST /api/modal/cancel.
func (h *ModalHandler) Cancel(c *fiber.Ctx) error {
	session, err := sessionOf(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.forms.Cancel(session)})
}

// Classify POST /api/modal/ai/classify.
func (h *ModalHandler) Classify(c *fiber.Ctx) error {
	return h.assist(c, h.forms.ClassifyIssue)
}

// Refund POST /api/modal/ai/refund.
func (h *ModalHandler) Refund(c *fiber.Ctx) error {
	return h.assist(c, h.forms.DraftRefundResponse)
}

// Title POST /api/modal/ai/title.
func (h *ModalHandler) Title(c *fiber.Ctx) error {
	return h.assist(c, h.forms.DraftFeatureTitle)
}

func (h *ModalHandler) assist(c *fiber.Ctx, call func(context.Context, string) (service.ModalView, error)) error {
	session, err := sessionOf(c)
	if err != nil {
		return err
	}
	view, err := call(c.UserContext(), session)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": view})
}

func sessionOf(c *fiber.Ctx) (string, error) {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return "", apperrors.NewUnauthorized("session required")
	}
	return session, nil
}
