package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/job-portal/internal/domain"
	"github.com/spec-kit/job-portal/internal/repository"
	apperrors "github.com/spec-kit/job-portal/pkg/util"
)

func TestTransition_Table(t *testing.T) {
	statuses := []domain.JobStatus{
		domain.JobStatusPending,
		domain.JobStatusLive,
		domain.JobStatusArchived,
		domain.JobStatusRejected,
	}
	for _, from := range statuses {
		for _, to := range statuses {
			t.Run(string(from)+"->"+string(to), func(t *testing.T) {
				h := newHarness(t)
				job := h.seedJob(t, from, time.Hour)

				updated, err := h.lifecycle.Transition(context.Background(), job.ID, to, admin, nil)

				allowed := from == domain.JobStatusPending && (to == domain.JobStatusLive || to == domain.JobStatusRejected)
				if !allowed {
					requireCode(t, err, apperrors.CodeInvalidTransition)
					assert.Equal(t, from, h.storedJob(t, job.ID).Status)
					return
				}
				require.NoError(t, err)
				assert.Equal(t, to, updated.Status)
				assert.Equal(t, int64(1), updated.Version)
			})
		}
	}
}

func TestTransition_RequiresAdmin(t *testing.T) {
	h := newHarness(t)
	job := h.seedJob(t, domain.JobStatusPending, time.Hour)

	for _, actor := range []domain.Principal{manager, student, domain.SystemPrincipal()} {
		_, err := h.lifecycle.Transition(context.Background(), job.ID, domain.JobStatusLive, actor, nil)
		requireCode(t, err, apperrors.CodeForbidden)
	}
	assert.Equal(t, domain.JobStatusPending, h.storedJob(t, job.ID).Status)
}

func TestTransition_UnknownJob(t *testing.T) {
	h := newHarness(t)
	_, err := h.lifecycle.Transition(context.Background(), "missing", domain.JobStatusLive, admin, nil)
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestTransition_ExpectedVersionMismatch(t *testing.T) {
	h := newHarness(t)
	job := h.seedJob(t, domain.JobStatusPending, time.Hour)
	stale := int64(7)

	_, err := h.lifecycle.Transition(context.Background(), job.ID, domain.JobStatusLive, admin, &stale)
	requireCode(t, err, apperrors.CodeConflict)
	assert.Equal(t, domain.JobStatusPending, h.storedJob(t, job.ID).Status)
}

func TestTransition_ConcurrentSameVersionOneWinner(t *testing.T) {
	h := newHarness(t)
	job := h.seedJob(t, domain.JobStatusPending, time.Hour)
	version := job.Version

	targets := []domain.JobStatus{domain.JobStatusLive, domain.JobStatusRejected}
	errs := make([]error, len(targets))
	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Add(1)
		go func(i int, target domain.JobStatus) {
			defer wg.Done()
			_, errs[i] = h.lifecycle.Transition(context.Background(), job.ID, target, admin, &version)
		}(i, target)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		requireCode(t, err, apperrors.CodeConflict)
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, int64(1), h.storedJob(t, job.ID).Version)
}

// raceOnceRepo bumps the version under the caller's feet on the first update.
type raceOnceRepo struct {
	repository.JobRepository
	once sync.Once
}

func (r *raceOnceRepo) UpdateStatus(ctx context.Context, id string, expectedVersion int64, status domain.JobStatus) (*domain.Job, error) {
	r.once.Do(func() {
		current, _ := r.JobRepository.GetByID(ctx, id)
		_, _ = r.JobRepository.UpdateStatus(ctx, id, current.Version, current.Status)
	})
	return r.JobRepository.UpdateStatus(ctx, id, expectedVersion, status)
}

func TestTransition_LostCASIsConflictNotRetried(t *testing.T) {
	store := repository.NewMemoryStore()
	h := newHarness(t, withJobRepo(&raceOnceRepo{JobRepository: store.Jobs()}))
	h.store = store
	job := h.seedJob(t, domain.JobStatusPending, time.Hour)

	_, err := h.lifecycle.Transition(context.Background(), job.ID, domain.JobStatusLive, admin, nil)
	requireCode(t, err, apperrors.CodeConflict)

	stored := h.storedJob(t, job.ID)
	assert.Equal(t, domain.JobStatusPending, stored.Status)
	assert.Equal(t, int64(1), stored.Version)
}

func TestSweepArchival_RetriesAgainstRefreshedRecord(t *testing.T) {
	store := repository.NewMemoryStore()
	h := newHarness(t, withJobRepo(&raceOnceRepo{JobRepository: store.Jobs()}))
	h.store = store
	job := h.seedJob(t, domain.JobStatusLive, -time.Minute)

	archived, err := h.lifecycle.SweepArchival(context.Background(), []domain.Job{*job})
	require.NoError(t, err)
	require.Len(t, archived, 1)

	stored := h.storedJob(t, job.ID)
	assert.Equal(t, domain.JobStatusArchived, stored.Status)
	assert.Equal(t, int64(2), stored.Version)
}

func TestSweepArchival_OnlyExpiredPendingOrLive(t *testing.T) {
	h := newHarness(t)
	expiredPending := h.seedJob(t, domain.JobStatusPending, -time.Hour)
	expiredLive := h.seedJob(t, domain.JobStatusLive, -time.Second)
	futureLive := h.seedJob(t, domain.JobStatusLive, time.Hour)
	expiredRejected := h.seedJob(t, domain.JobStatusRejected, -time.Hour)
	expiredArchived := h.seedJob(t, domain.JobStatusArchived, -time.Hour)

	batch := []domain.Job{*expiredPending, *expiredLive, *futureLive, *expiredRejected, *expiredArchived}
	archived, err := h.lifecycle.SweepArchival(context.Background(), batch)
	require.NoError(t, err)

	ids := []string{}
	for _, job := range archived {
		assert.Equal(t, domain.JobStatusArchived, job.Status)
		ids = append(ids, job.ID)
	}
	assert.ElementsMatch(t, []string{expiredPending.ID, expiredLive.ID}, ids)
	assert.Equal(t, domain.JobStatusLive, h.storedJob(t, futureLive.ID).Status)
	assert.Equal(t, domain.JobStatusRejected, h.storedJob(t, expiredRejected.ID).Status)
	assert.Equal(t, int64(0), h.storedJob(t, expiredArchived.ID).Version)

	// Stale input must not archive twice.
	again, err := h.lifecycle.SweepArchival(context.Background(), batch)
	require.NoError(t, err)
	assert.Empty(t, again)
	assert.Equal(t, int64(1), h.storedJob(t, expiredPending.ID).Version)
}

func TestSweepArchival_DeadlineBoundaryIsStrict(t *testing.T) {
	h := newHarness(t)
	job := h.seedJob(t, domain.JobStatusLive, 0)

	archived, err := h.lifecycle.SweepArchival(context.Background(), []domain.Job{*job})
	require.NoError(t, err)
	assert.Empty(t, archived)

	h.clock.Advance(time.Nanosecond)
	archived, err = h.lifecycle.SweepArchival(context.Background(), []domain.Job{*job})
	require.NoError(t, err)
	assert.Len(t, archived, 1)
}

func TestListForAdmin_ArchivesEveryExpiredJob(t *testing.T) {
	h := newHarness(t)
	var expired []*domain.Job
	for i := 0; i < 5; i++ {
		expired = append(expired, h.seedJob(t, domain.JobStatusPending, -time.Duration(i+1)*time.Minute))
	}
	fresh := h.seedJob(t, domain.JobStatusLive, time.Hour)

	// A one-item page must still leave no expired job unarchived.
	page, err := h.lifecycle.ListForAdmin(context.Background(), repository.JobFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)

	for _, job := range expired {
		assert.Equal(t, domain.JobStatusArchived, h.storedJob(t, job.ID).Status)
	}
	assert.Equal(t, domain.JobStatusLive, h.storedJob(t, fresh.ID).Status)
}

func TestListForAdmin_ExpiredPendingThenApproveFails(t *testing.T) {
	h := newHarness(t)
	job := h.seedJob(t, domain.JobStatusPending, -time.Hour)

	jobs, err := h.lifecycle.ListForAdmin(context.Background(), repository.JobFilter{})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, domain.JobStatusArchived, jobs[0].Status)

	_, err = h.lifecycle.Transition(context.Background(), job.ID, domain.JobStatusLive, admin, nil)
	requireCode(t, err, apperrors.CodeInvalidTransition)

	history, err := h.store.History().ListByJob(context.Background(), job.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.JobStatusPending, history[0].FromStatus)
	assert.Equal(t, domain.JobStatusArchived, history[0].ToStatus)
	assert.Equal(t, domain.ActorSystem, history[0].Actor)
	assert.Equal(t, domain.ReasonDeadlinePassed, history[0].Reason)
}

func TestGet_AppliesSweep(t *testing.T) {
	h := newHarness(t)
	job := h.seedJob(t, domain.JobStatusLive, time.Minute)

	h.clock.Advance(2 * time.Minute)
	got, err := h.lifecycle.Get(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusArchived, got.Status)
	assert.Equal(t, domain.JobStatusArchived, h.storedJob(t, job.ID).Status)
}

func TestTransition_RecordsAudit(t *testing.T) {
	h := newHarness(t)
	job := h.seedJob(t, domain.JobStatusPending, time.Hour)

	_, err := h.lifecycle.Transition(context.Background(), job.ID, domain.JobStatusRejected, admin, nil)
	require.NoError(t, err)

	history, err := h.store.History().ListByJob(context.Background(), job.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, admin.ID, history[0].Actor)
	assert.Equal(t, domain.RoleAdmin, history[0].ActorRole)
	assert.Equal(t, domain.ReasonAdminDecision, history[0].Reason)
	assert.Equal(t, h.clock.Now(), history[0].OccurredAt)
}

func TestLifecycle_TimeoutIsUnavailable(t *testing.T) {
	h := newHarness(t)
	job := h.seedJob(t, domain.JobStatusPending, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.lifecycle.Transition(ctx, job.ID, domain.JobStatusLive, admin, nil)
	requireCode(t, err, apperrors.CodeUnavailable)
	assert.True(t, apperrors.ToDomainError(err).Retryable())
}
