package handlers

import (
	"bytes"
	"fmt"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/vardast/ops-dashboard/internal/domain"
	"github.com/vardast/ops-dashboard/internal/service"
	apperrors "github.com/vardast/ops-dashboard/pkg/util/errorutil"
)

// RecordsHandler exposes the table tabs, export and the user profile.
type RecordsHandler struct {
	records *service.RecordService
}

// NewRecordsHandler constructs handler.
func NewRecordsHandler(records *service.RecordService) *RecordsHandler {
	return &RecordsHandler{records: records}
}

// Status GET /api/status.
func (h *RecordsHandler) Status(c *fiber.Ctx) error {
	status, err := h.records.Status(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": status})
}

// List GET /api/records/:kind.
func (h *RecordsHandler) List(c *fiber.Ctx) error {
	kind, err := kindParam(c)
	if err != nil {
		return err
	}
	list, err := h.records.List(c.UserContext(), kind)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": list})
}

// Export GET /api/records/:kind/export.
func (h *RecordsHandler) Export(c *fiber.Ctx) error {
	kind, err := kindParam(c)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := h.records.ExportCSV(c.UserContext(), kind, &buf); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s.csv"`, kind))
	return c.Send(buf.Bytes())
}

// Reload POST /api/records/reload.
func (h *RecordsHandler) Reload(c *fiber.Ctx) error {
	status, err := h.records.Reload(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": status})
}

// Suggest GET /api/profile/suggest?q=.
func (h *RecordsHandler) Suggest(c *fiber.Ctx) error {
	names, err := h.records.SuggestUsernames(c.UserContext(), c.Query("q"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": names})
}

// Profile GET /api/profile/:username.
func (h *RecordsHandler) Profile(c *fiber.Ctx) error {
	username, err := pathUnescape(c.Params("username"))
	if err != nil {
		return err
	}
	profile, err := h.records.Profile(c.UserContext(), username)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": profile})
}

func kindParam(c *fiber.Ctx) (domain.Kind, error) {
	kind, ok := domain.ParseKind(c.Params("kind"))
	if !ok {
		return "", apperrors.NewNotFound("table", map[string]any{"kind": c.Params("kind")})
	}
	return kind, nil
}

// pathUnescape decodes percent-encoded usernames (Persian, spaces, @).
func pathUnescape(raw string) (string, error) {
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return "", apperrors.NewValidationError("invalid path parameter", map[string]any{"value": raw})
	}
	return decoded, nil
}
