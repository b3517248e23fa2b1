package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/job-portal/internal/domain"
	"github.com/spec-kit/job-portal/internal/events"
	"github.com/spec-kit/job-portal/internal/observability"
	"github.com/spec-kit/job-portal/internal/repository"
	apperrors "github.com/spec-kit/job-portal/pkg/util"
)

// ApplicationService links students to live jobs.
type ApplicationService struct {
	lifecycle    *LifecycleService
	applications repository.ApplicationRepository
	dispatcher   events.Dispatcher
	metrics      *observability.Metrics
	logger       *zap.Logger
	now          func() time.Time
}

// ApplicationDependencies bundles collaborators.
type ApplicationDependencies struct {
	Lifecycle       *LifecycleService
	ApplicationRepo repository.ApplicationRepository
	Dispatcher      events.Dispatcher
	Metrics         *observability.Metrics
	Logger          *zap.Logger
	Clock           func() time.Time
}

// NewApplicationService constructs the service.
func NewApplicationService(deps ApplicationDependencies) *ApplicationService {
	s := &ApplicationService{
		lifecycle:    deps.Lifecycle,
		applications: deps.ApplicationRepo,
		dispatcher:   deps.Dispatcher,
		metrics:      deps.Metrics,
		logger:       deps.Logger,
		now:          deps.Clock,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Apply records a student's application to a live job. The job is re-read and
// re-checked against the clock right before the insert; the store's unique
// (job, student) constraint decides between concurrent duplicates.
func (s *ApplicationService) Apply(ctx context.Context, jobID string, actor domain.Principal) (*domain.JobApplication, error) {
	if actor.Role != domain.RoleStudent {
		return nil, apperrors.NewForbidden("student role required")
	}
	job, err := s.lifecycle.Get(ctx, jobID)
	if err != nil {
		s.metrics.RecordApplication("error")
		return nil, err
	}
	if job.Status != domain.JobStatusLive || job.Expired(s.now()) {
		s.metrics.RecordApplication("job_not_live")
		return nil, apperrors.NewInvalidState("job is not accepting applications", map[string]any{
			"job_id": jobID,
			"status": job.Status,
		})
	}

	application := &domain.JobApplication{
		ID:        uuid.NewString(),
		JobID:     job.ID,
		StudentID: actor.ID,
		Status:    domain.ApplicationStatusSubmitted,
	}
	if err := s.applications.Create(ctx, application); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			s.metrics.RecordApplication("duplicate")
			return nil, apperrors.NewConflict("already applied", map[string]any{"job_id": jobID})
		}
		return nil, mapStoreError(err, "job", jobDetails(jobID))
	}

	if s.dispatcher != nil {
		err := s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventApplicationSubmitted,
			JobID:     job.ID,
			Actor:     events.ActorFromPrincipal(actor),
			Timestamp: s.now(),
			Payload: events.ApplicationSubmittedPayload{
				ApplicationID: application.ID,
				StudentID:     application.StudentID,
			},
		})
		if err != nil {
			s.logger.Error("failed to publish application event",
				zap.String("job_id", job.ID), zap.String("application_id", application.ID), zap.Error(err))
		}
	}
	return application, nil
}

// ListApplications returns the applications of a job to an admin or to the
// hiring manager who owns it.
func (s *ApplicationService) ListApplications(ctx context.Context, actor domain.Principal, jobID string) ([]domain.JobApplication, error) {
	job, err := s.lifecycle.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	switch {
	case actor.Role == domain.RoleAdmin:
	case actor.Role == domain.RoleHiringManager && actor.ID == job.HiringManagerID:
	default:
		return nil, apperrors.NewForbidden("access denied")
	}
	apps, err := s.applications.ListByJob(ctx, job.ID)
	if err != nil {
		return nil, mapStoreError(err, "job", jobDetails(jobID))
	}
	return apps, nil
}
