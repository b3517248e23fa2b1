package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/job-portal/internal/domain"
	"github.com/spec-kit/job-portal/internal/events"
	"github.com/spec-kit/job-portal/internal/repository"
	apperrors "github.com/spec-kit/job-portal/pkg/util"
)

// AdmissionService gates job creation on hiring-manager verification.
type AdmissionService struct {
	jobs       repository.JobRepository
	directory  repository.HiringManagerDirectory
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// AdmissionDependencies bundles collaborators. Directory is optional; without
// it the verified claim of the token is authoritative.
type AdmissionDependencies struct {
	JobRepo    repository.JobRepository
	Directory  repository.HiringManagerDirectory
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Clock      func() time.Time
}

// JobDraft is the hiring manager's submission.
type JobDraft struct {
	Title      string
	Department string
	Location   string
	Deadline   time.Time
}

// NewAdmissionService constructs the service.
func NewAdmissionService(deps AdmissionDependencies) *AdmissionService {
	s := &AdmissionService{
		jobs:       deps.JobRepo,
		directory:  deps.Directory,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		now:        deps.Clock,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// AdmitJob creates a pending job for a verified hiring manager. Eligibility is
// checked before anything is written.
func (s *AdmissionService) AdmitJob(ctx context.Context, draft JobDraft, actor domain.Principal) (*domain.Job, error) {
	if err := s.checkEligible(ctx, actor); err != nil {
		return nil, err
	}
	job, err := s.validateDraft(draft)
	if err != nil {
		return nil, err
	}
	job.ID = uuid.NewString()
	job.HiringManagerID = actor.ID
	job.Status = domain.JobStatusPending
	job.Version = 0

	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, mapStoreError(err, "job", jobDetails(job.ID))
	}
	if s.dispatcher != nil {
		err := s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventJobCreated,
			JobID:     job.ID,
			Actor:     events.ActorFromPrincipal(actor),
			Timestamp: s.now(),
			Payload: events.JobCreatedPayload{
				HiringManagerID: job.HiringManagerID,
				Title:           job.Title,
				Deadline:        job.Deadline,
			},
		})
		if err != nil {
			s.logger.Error("failed to publish job created event",
				zap.String("job_id", job.ID), zap.Error(err))
		}
	}
	return job, nil
}

func (s *AdmissionService) checkEligible(ctx context.Context, actor domain.Principal) error {
	if actor.Role != domain.RoleHiringManager {
		return apperrors.NewForbidden("hiring manager role required")
	}
	if !actor.Verified {
		return apperrors.NewForbidden("hiring manager is not verified")
	}
	if s.directory == nil {
		return nil
	}
	manager, err := s.directory.GetByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewForbidden("hiring manager is not verified")
		}
		return mapStoreError(err, "hiring manager", nil)
	}
	if manager.VerificationStatus != domain.VerificationVerified {
		return apperrors.NewForbidden("hiring manager is " + string(manager.VerificationStatus))
	}
	return nil
}

func (s *AdmissionService) validateDraft(draft JobDraft) (*domain.Job, error) {
	job := &domain.Job{
		Title:      strings.TrimSpace(draft.Title),
		Department: strings.TrimSpace(draft.Department),
		Location:   strings.TrimSpace(draft.Location),
		Deadline:   draft.Deadline.UTC(),
	}
	details := map[string]any{}
	if job.Title == "" {
		details["title"] = "required"
	}
	if job.Department == "" {
		details["department"] = "required"
	}
	if job.Location == "" {
		details["location"] = "required"
	}
	if draft.Deadline.IsZero() {
		details["deadline"] = "required"
	} else if !draft.Deadline.After(s.now()) {
		details["deadline"] = "must be in the future"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid job draft", details)
	}
	return job, nil
}
