package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/job-portal/internal/domain"
	"github.com/spec-kit/job-portal/internal/events"
	"github.com/spec-kit/job-portal/internal/repository"
	apperrors "github.com/spec-kit/job-portal/pkg/util"
)

// LifecycleService owns the job state machine and the lazy archival sweep.
// It is the only component that changes a job's status.
type LifecycleService struct {
	jobs        repository.JobRepository
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	now         func() time.Time
	maxAttempts int
	batchSize   int
}

// LifecycleDependencies bundles collaborators for the lifecycle service.
type LifecycleDependencies struct {
	JobRepo          repository.JobRepository
	Dispatcher       events.Dispatcher
	Logger           *zap.Logger
	Clock            func() time.Time
	SweepMaxAttempts int
	SweepBatchSize   int
}

// NewLifecycleService constructs the service.
func NewLifecycleService(deps LifecycleDependencies) *LifecycleService {
	s := &LifecycleService{
		jobs:        deps.JobRepo,
		dispatcher:  deps.Dispatcher,
		logger:      deps.Logger,
		now:         deps.Clock,
		maxAttempts: deps.SweepMaxAttempts,
		batchSize:   deps.SweepBatchSize,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.maxAttempts <= 0 {
		s.maxAttempts = 3
	}
	if s.batchSize <= 0 {
		s.batchSize = 200
	}
	return s
}

// adminTransitions lists what an admin may request. live -> archived and
// pending -> archived belong to the sweep; archived and rejected are terminal.
var adminTransitions = map[domain.JobStatus][]domain.JobStatus{
	domain.JobStatusPending:  {domain.JobStatusLive, domain.JobStatusRejected},
	domain.JobStatusLive:     {},
	domain.JobStatusArchived: {},
	domain.JobStatusRejected: {},
}

func isValidTransition(current, next domain.JobStatus) bool {
	for _, candidate := range adminTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// Get returns a job after applying the archival check to it.
func (s *LifecycleService) Get(ctx context.Context, jobID string) (*domain.Job, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, mapStoreError(err, "job", jobDetails(jobID))
	}
	current, _, err := s.sweepOne(ctx, *job)
	return current, err
}

// Transition moves a pending job to live or rejected on behalf of an admin.
// expectedVersion, when set, must match the stored version. A lost
// compare-and-swap is reported as a conflict and never retried here.
func (s *LifecycleService) Transition(ctx context.Context, jobID string, target domain.JobStatus, actor domain.Principal, expectedVersion *int64) (*domain.Job, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("admin role required")
	}
	job, err := s.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if expectedVersion != nil && *expectedVersion != job.Version {
		return nil, apperrors.NewConflict("job was modified concurrently; reload and retry", map[string]any{
			"job_id":           jobID,
			"expected_version": *expectedVersion,
			"current_version":  job.Version,
		})
	}
	if !isValidTransition(job.Status, target) {
		return nil, apperrors.NewInvalidTransition("invalid status transition", map[string]any{
			"job_id": jobID,
			"from":   job.Status,
			"to":     target,
		})
	}

	oldStatus := job.Status
	updated, err := s.jobs.UpdateStatus(ctx, job.ID, job.Version, target)
	if err != nil {
		return nil, mapStoreError(err, "job", jobDetails(jobID))
	}
	s.recordTransition(ctx, updated, oldStatus, actor, domain.ReasonAdminDecision)
	return updated, nil
}

// SweepArchival archives every job in the batch that is pending or live with a
// deadline in the past, and returns the jobs it actually transitioned.
func (s *LifecycleService) SweepArchival(ctx context.Context, jobs []domain.Job) ([]domain.Job, error) {
	_, archived, err := s.sweep(ctx, jobs)
	return archived, err
}

// ListForAdmin archives every expired job, then lists and re-checks the page,
// so callers never observe an expired job still marked pending or live.
func (s *LifecycleService) ListForAdmin(ctx context.Context, filter repository.JobFilter) ([]domain.Job, error) {
	if _, err := s.SweepAll(ctx); err != nil {
		return nil, err
	}
	jobs, err := s.jobs.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, mapStoreError(err, "job", nil)
	}
	current, _, err := s.sweep(ctx, jobs)
	if err != nil {
		return nil, err
	}
	return current, nil
}

// SweepAll archives all pending or live jobs whose deadline has passed and
// returns how many were transitioned.
func (s *LifecycleService) SweepAll(ctx context.Context) (int, error) {
	total := 0
	for {
		now := s.now()
		batch, err := s.jobs.ListWithFilter(ctx, repository.JobFilter{
			Statuses:       []domain.JobStatus{domain.JobStatusPending, domain.JobStatusLive},
			DeadlineBefore: &now,
			Limit:          s.batchSize,
		})
		if err != nil {
			return total, mapStoreError(err, "job", nil)
		}
		if len(batch) == 0 {
			return total, nil
		}
		_, archived, err := s.sweep(ctx, batch)
		total += len(archived)
		if err != nil {
			return total, err
		}
		if len(batch) < s.batchSize {
			return total, nil
		}
	}
}

// sweep returns the post-sweep view of jobs alongside the archived subset.
func (s *LifecycleService) sweep(ctx context.Context, jobs []domain.Job) ([]domain.Job, []domain.Job, error) {
	current := make([]domain.Job, 0, len(jobs))
	archived := []domain.Job{}
	for _, job := range jobs {
		result, transitioned, err := s.sweepOne(ctx, job)
		if err != nil {
			return nil, archived, err
		}
		if transitioned {
			archived = append(archived, *result)
		}
		current = append(current, *result)
	}
	return current, archived, nil
}

// sweepOne archives a single expired job. On a lost compare-and-swap it
// re-reads the record and re-evaluates rather than overwriting.
func (s *LifecycleService) sweepOne(ctx context.Context, job domain.Job) (*domain.Job, bool, error) {
	current := job
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		if !current.Sweepable(s.now()) {
			return &current, false, nil
		}
		updated, err := s.jobs.UpdateStatus(ctx, current.ID, current.Version, domain.JobStatusArchived)
		if err == nil {
			s.recordTransition(ctx, updated, current.Status, domain.SystemPrincipal(), domain.ReasonDeadlinePassed)
			return updated, true, nil
		}
		if !errors.Is(err, repository.ErrVersionConflict) {
			return nil, false, mapStoreError(err, "job", jobDetails(current.ID))
		}
		refreshed, err := s.jobs.GetByID(ctx, current.ID)
		if err != nil {
			return nil, false, mapStoreError(err, "job", jobDetails(current.ID))
		}
		current = *refreshed
	}
	s.logger.Warn("archival sweep gave up after repeated conflicts",
		zap.String("job_id", current.ID), zap.Int("attempts", s.maxAttempts))
	return nil, false, apperrors.NewConflict("job was modified concurrently during archival; retry", jobDetails(current.ID))
}

// recordTransition emits the audit event for a committed transition. The
// change is already durable, so failures here are logged and not returned.
func (s *LifecycleService) recordTransition(ctx context.Context, job *domain.Job, from domain.JobStatus, actor domain.Principal, reason domain.TransitionReason) {
	occurredAt := s.now()
	s.logger.Info("job status transition",
		zap.String("job_id", job.ID),
		zap.String("from_status", string(from)),
		zap.String("to_status", string(job.Status)),
		zap.String("actor", actor.ID),
		zap.String("reason", string(reason)),
		zap.Int64("version", job.Version),
		zap.Time("timestamp", occurredAt),
	)
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventJobStatusChanged,
		JobID:     job.ID,
		Actor:     events.ActorFromPrincipal(actor),
		Timestamp: occurredAt,
		Payload: events.JobStatusChangedPayload{
			HistoryID: uuid.NewString(),
			OldStatus: from,
			NewStatus: job.Status,
			Version:   job.Version,
			Reason:    reason,
		},
	}
	if err := s.dispatcher.Publish(context.WithoutCancel(ctx), event); err != nil {
		s.logger.Error("failed to record job status transition",
			zap.String("job_id", job.ID), zap.Error(err))
	}
}
