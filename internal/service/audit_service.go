package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/job-portal/internal/domain"
	"github.com/spec-kit/job-portal/internal/events"
	"github.com/spec-kit/job-portal/internal/observability"
	"github.com/spec-kit/job-portal/internal/repository"
)

// AuditService persists the status history and counts domain events.
type AuditService struct {
	dispatcher events.Dispatcher
	history    repository.JobHistoryRepository
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, history repository.JobHistoryRepository, metrics *observability.Metrics, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{
		dispatcher: dispatcher,
		history:    history,
		metrics:    metrics,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventJobCreated, a.handleJobCreated)
	a.dispatcher.Subscribe(events.EventJobStatusChanged, a.handleJobStatusChanged)
	a.dispatcher.Subscribe(events.EventApplicationSubmitted, a.handleApplicationSubmitted)
}

func (a *AuditService) handleJobCreated(_ context.Context, event events.Event) error {
	a.logger.Debug("JobCreated", zap.String("job_id", event.JobID), zap.String("actor", event.Actor.ID))
	return nil
}

func (a *AuditService) handleJobStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.JobStatusChangedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	a.metrics.RecordTransition(payload.OldStatus, payload.NewStatus, payload.Reason)
	if a.history == nil {
		return nil
	}
	entry := &domain.JobStatusHistory{
		ID:         payload.HistoryID,
		JobID:      event.JobID,
		FromStatus: payload.OldStatus,
		ToStatus:   payload.NewStatus,
		Actor:      event.Actor.ID,
		ActorRole:  event.Actor.Role,
		Reason:     payload.Reason,
		OccurredAt: event.Timestamp,
	}
	if err := a.history.Create(ctx, entry); err != nil {
		return fmt.Errorf("persist history for job %s: %w", event.JobID, err)
	}
	return nil
}

func (a *AuditService) handleApplicationSubmitted(_ context.Context, event events.Event) error {
	a.metrics.RecordApplication("submitted")
	a.logger.Debug("ApplicationSubmitted", zap.String("job_id", event.JobID), zap.String("actor", event.Actor.ID))
	return nil
}
