package service

import (
	"context"

	"github.com/spec-kit/job-portal/internal/domain"
	"github.com/spec-kit/job-portal/internal/repository"
	apperrors "github.com/spec-kit/job-portal/pkg/util"
)

// ModerationService is the admin surface over the lifecycle engine.
type ModerationService struct {
	lifecycle *LifecycleService
	history   repository.JobHistoryRepository
}

// NewModerationService constructs the service.
func NewModerationService(lifecycle *LifecycleService, history repository.JobHistoryRepository) *ModerationService {
	return &ModerationService{lifecycle: lifecycle, history: history}
}

// ModerationFilter narrows an admin listing.
type ModerationFilter struct {
	Status *domain.JobStatus
	Limit  int
	Offset int
}

// ListAll returns jobs after the archival sweep. The sweep runs before the
// query, so the stored status is already current; the page is narrowed again
// only to drop jobs that expired between the two steps.
func (s *ModerationService) ListAll(ctx context.Context, actor domain.Principal, filter ModerationFilter) ([]domain.Job, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("admin role required")
	}
	repoFilter := repository.JobFilter{Limit: filter.Limit, Offset: filter.Offset}
	if filter.Status != nil {
		if !filter.Status.Valid() {
			return nil, apperrors.NewValidationError("unknown status filter", map[string]any{"status": *filter.Status})
		}
		repoFilter.Statuses = []domain.JobStatus{*filter.Status}
	}

	jobs, err := s.lifecycle.ListForAdmin(ctx, repoFilter)
	if err != nil {
		return nil, err
	}
	if filter.Status == nil {
		return jobs, nil
	}
	narrowed := make([]domain.Job, 0, len(jobs))
	for _, job := range jobs {
		if job.Status == *filter.Status {
			narrowed = append(narrowed, job)
		}
	}
	return narrowed, nil
}

// SetStatus applies an admin decision; errors pass through unchanged.
func (s *ModerationService) SetStatus(ctx context.Context, actor domain.Principal, jobID string, target domain.JobStatus, expectedVersion *int64) (*domain.Job, error) {
	return s.lifecycle.Transition(ctx, jobID, target, actor, expectedVersion)
}

// History returns the audit trail of a job.
func (s *ModerationService) History(ctx context.Context, actor domain.Principal, jobID string) ([]domain.JobStatusHistory, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("admin role required")
	}
	if _, err := s.lifecycle.Get(ctx, jobID); err != nil {
		return nil, err
	}
	entries, err := s.history.ListByJob(ctx, jobID)
	if err != nil {
		return nil, mapStoreError(err, "job", jobDetails(jobID))
	}
	return entries, nil
}
