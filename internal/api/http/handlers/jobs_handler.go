package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/job-portal/internal/api/dto"
	"github.com/spec-kit/job-portal/internal/auth"
	"github.com/spec-kit/job-portal/internal/service"
	apperrors "github.com/spec-kit/job-portal/pkg/util"
)

// JobsHandler serves hiring-manager and student job endpoints.
type JobsHandler struct {
	admission    *service.AdmissionService
	lifecycle    *service.LifecycleService
	applications *service.ApplicationService
}

// NewJobsHandler constructs handler.
func NewJobsHandler(admission *service.AdmissionService, lifecycle *service.LifecycleService, applications *service.ApplicationService) *JobsHandler {
	return &JobsHandler{admission: admission, lifecycle: lifecycle, applications: applications}
}

// Create POST /job.
func (h *JobsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateJobRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	draft := service.JobDraft{
		Title:      req.Title,
		Department: req.Department,
		Location:   req.Location,
	}
	if req.Deadline != "" {
		deadline, err := time.Parse(time.RFC3339, req.Deadline)
		if err != nil {
			return apperrors.NewValidationError("invalid job draft", map[string]any{"deadline": "must be RFC 3339"})
		}
		draft.Deadline = deadline
	}

	job, err := h.admission.AdmitJob(c.UserContext(), draft, principal)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewJobResponse(job)})
}

// Get GET /job/:id.
func (h *JobsHandler) Get(c *fiber.Ctx) error {
	job, err := h.lifecycle.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewJobResponse(job)})
}

// Apply POST /job/:id/apply.
func (h *JobsHandler) Apply(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	application, err := h.applications.Apply(c.UserContext(), c.Params("id"), principal)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.ApplyResponse{ApplicationID: application.ID}})
}

// ListApplications GET /job/:id/applications.
func (h *JobsHandler) ListApplications(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	apps, err := h.applications.ListApplications(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewApplicationList(apps)})
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
