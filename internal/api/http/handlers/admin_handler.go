package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/job-portal/internal/api/dto"
	"github.com/spec-kit/job-portal/internal/auth"
	"github.com/spec-kit/job-portal/internal/domain"
	"github.com/spec-kit/job-portal/internal/service"
	apperrors "github.com/spec-kit/job-portal/pkg/util"
)

// AdminHandler exposes the moderation endpoints.
type AdminHandler struct {
	moderation *service.ModerationService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(moderation *service.ModerationService) *AdminHandler {
	return &AdminHandler{moderation: moderation}
}

// ListAll GET /job/admin/all.
func (h *AdminHandler) ListAll(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 50)
	filter := service.ModerationFilter{
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	}
	if status := c.Query("status"); status != "" {
		st := domain.JobStatus(status)
		filter.Status = &st
	}

	jobs, err := h.moderation.ListAll(c.UserContext(), principal, filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": dto.NewJobList(jobs),
		"meta": fiber.Map{"page": page, "page_size": pageSize},
	})
}

// SetStatus PUT /job/admin/:id/status.
func (h *AdminHandler) SetStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if !req.Status.Valid() {
		return apperrors.NewValidationError("invalid status", map[string]any{"status": req.Status})
	}

	job, err := h.moderation.SetStatus(c.UserContext(), principal, c.Params("id"), req.Status, req.ExpectedVersion)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewJobResponse(job)})
}

// History GET /job/admin/:id/history.
func (h *AdminHandler) History(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	entries, err := h.moderation.History(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewHistoryList(entries)})
}
