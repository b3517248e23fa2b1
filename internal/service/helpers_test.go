package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/job-portal/internal/domain"
	"github.com/spec-kit/job-portal/internal/events"
	"github.com/spec-kit/job-portal/internal/observability"
	"github.com/spec-kit/job-portal/internal/repository"
	apperrors "github.com/spec-kit/job-portal/pkg/util"
)

var (
	admin    = domain.Principal{ID: "admin-1", Role: domain.RoleAdmin}
	manager  = domain.Principal{ID: "hm-1", Role: domain.RoleHiringManager, Verified: true}
	student  = domain.Principal{ID: "student-1", Role: domain.RoleStudent}
	student2 = domain.Principal{ID: "student-2", Role: domain.RoleStudent}
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type harness struct {
	store        *repository.MemoryStore
	jobs         repository.JobRepository
	clock        *testClock
	dispatcher   events.Dispatcher
	logs         *observer.ObservedLogs
	lifecycle    *LifecycleService
	admission    *AdmissionService
	applications *ApplicationService
	moderation   *ModerationService
}

type harnessOption func(*LifecycleDependencies, *AdmissionDependencies)

func withJobRepo(repo repository.JobRepository) harnessOption {
	return func(l *LifecycleDependencies, a *AdmissionDependencies) {
		l.JobRepo = repo
		a.JobRepo = repo
	}
}

func withDirectory(dir repository.HiringManagerDirectory) harnessOption {
	return func(_ *LifecycleDependencies, a *AdmissionDependencies) {
		a.Directory = dir
	}
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()
	store := repository.NewMemoryStore()
	clock := &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)
	NewAuditService(dispatcher, store.History(), metrics, zap.NewNop()).RegisterHandlers()

	lifecycleDeps := LifecycleDependencies{
		JobRepo:          store.Jobs(),
		Dispatcher:       dispatcher,
		Logger:           logger,
		Clock:            clock.Now,
		SweepMaxAttempts: 3,
		SweepBatchSize:   2,
	}
	admissionDeps := AdmissionDependencies{
		JobRepo:    store.Jobs(),
		Dispatcher: dispatcher,
		Logger:     logger,
		Clock:      clock.Now,
	}
	for _, opt := range opts {
		opt(&lifecycleDeps, &admissionDeps)
	}

	lifecycle := NewLifecycleService(lifecycleDeps)
	return &harness{
		store:      store,
		jobs:       lifecycleDeps.JobRepo,
		clock:      clock,
		dispatcher: dispatcher,
		logs:       logs,
		lifecycle:  lifecycle,
		admission:  NewAdmissionService(admissionDeps),
		applications: NewApplicationService(ApplicationDependencies{
			Lifecycle:       lifecycle,
			ApplicationRepo: store.Applications(),
			Dispatcher:      dispatcher,
			Metrics:         metrics,
			Logger:          logger,
			Clock:           clock.Now,
		}),
		moderation: NewModerationService(lifecycle, store.History()),
	}
}

// seedJob writes a job straight to the store, bypassing the admission gate.
func (h *harness) seedJob(t *testing.T, status domain.JobStatus, deadline time.Duration) *domain.Job {
	t.Helper()
	job := &domain.Job{
		ID:              uuid.NewString(),
		HiringManagerID: manager.ID,
		Title:           "Data Analyst",
		Department:      "Research",
		Location:        "Berlin",
		Deadline:        h.clock.Now().Add(deadline),
		Status:          status,
	}
	require.NoError(t, h.store.Jobs().Create(context.Background(), job))
	return job
}

func (h *harness) storedJob(t *testing.T, id string) *domain.Job {
	t.Helper()
	job, err := h.store.Jobs().GetByID(context.Background(), id)
	require.NoError(t, err)
	return job
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, apperrors.HasCode(err, code), "expected %s, got %v", code, err)
}

type staticDirectory map[string]domain.VerificationStatus

func (d staticDirectory) GetByID(_ context.Context, id string) (*domain.HiringManager, error) {
	status, ok := d[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &domain.HiringManager{ID: id, VerificationStatus: status}, nil
}

// failOn subscribes a handler that rejects every event of the given type.
func (h *harness) failOn(eventType events.EventType) {
	h.dispatcher.Subscribe(eventType, func(context.Context, events.Event) error {
		return errors.New("subscriber down")
	})
}
