package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/job-portal/internal/domain"
	apperrors "github.com/spec-kit/job-portal/pkg/util"
)

func statusPtr(s domain.JobStatus) *domain.JobStatus { return &s }

func jobIDs(jobs []domain.Job) []string {
	ids := make([]string, 0, len(jobs))
	for _, job := range jobs {
		ids = append(ids, job.ID)
	}
	return ids
}

func TestListAll_RequiresAdmin(t *testing.T) {
	h := newHarness(t)
	_, err := h.moderation.ListAll(context.Background(), manager, ModerationFilter{})
	requireCode(t, err, apperrors.CodeForbidden)
}

func TestListAll_PendingFilterExcludesJustExpired(t *testing.T) {
	h := newHarness(t)
	stillPending := h.seedJob(t, domain.JobStatusPending, time.Hour)
	expiring := h.seedJob(t, domain.JobStatusPending, time.Minute)
	h.clock.Advance(2 * time.Minute)

	jobs, err := h.moderation.ListAll(context.Background(), admin, ModerationFilter{Status: statusPtr(domain.JobStatusPending)})
	require.NoError(t, err)
	assert.Equal(t, []string{stillPending.ID}, jobIDs(jobs))

	archived, err := h.moderation.ListAll(context.Background(), admin, ModerationFilter{Status: statusPtr(domain.JobStatusArchived)})
	require.NoError(t, err)
	assert.Equal(t, []string{expiring.ID}, jobIDs(archived))
}

func TestListAll_ArchivedFilterPagesOverArchivedOnly(t *testing.T) {
	h := newHarness(t)
	archived := h.seedJob(t, domain.JobStatusArchived, -time.Hour)
	for i := 0; i < 3; i++ {
		h.clock.Advance(time.Second)
		h.seedJob(t, domain.JobStatusLive, time.Hour)
	}

	jobs, err := h.moderation.ListAll(context.Background(), admin, ModerationFilter{
		Status: statusPtr(domain.JobStatusArchived),
		Limit:  2,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{archived.ID}, jobIDs(jobs))

	next, err := h.moderation.ListAll(context.Background(), admin, ModerationFilter{
		Status: statusPtr(domain.JobStatusArchived),
		Limit:  2,
		Offset: 1,
	})
	require.NoError(t, err)
	assert.Empty(t, next)
}

func TestListAll_NoFilterShowsEverything(t *testing.T) {
	h := newHarness(t)
	live := h.seedJob(t, domain.JobStatusLive, time.Hour)
	rejected := h.seedJob(t, domain.JobStatusRejected, -time.Hour)
	expired := h.seedJob(t, domain.JobStatusLive, -time.Hour)

	jobs, err := h.moderation.ListAll(context.Background(), admin, ModerationFilter{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{live.ID, rejected.ID, expired.ID}, jobIDs(jobs))
	for _, job := range jobs {
		assert.False(t, job.Sweepable(h.clock.Now()), "job %s left unarchived", job.ID)
	}
}

func TestListAll_InvalidStatus(t *testing.T) {
	h := newHarness(t)
	_, err := h.moderation.ListAll(context.Background(), admin, ModerationFilter{Status: statusPtr("closed")})
	requireCode(t, err, apperrors.CodeValidation)
}

func TestSetStatus_ApproveThenApply(t *testing.T) {
	h := newHarness(t)
	job, err := h.admission.AdmitJob(context.Background(), validDraft(h), manager)
	require.NoError(t, err)

	_, err = h.applications.Apply(context.Background(), job.ID, student)
	requireCode(t, err, apperrors.CodeInvalidState)

	version := job.Version
	live, err := h.moderation.SetStatus(context.Background(), admin, job.ID, domain.JobStatusLive, &version)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusLive, live.Status)

	_, err = h.applications.Apply(context.Background(), job.ID, student)
	require.NoError(t, err)

	_, err = h.moderation.SetStatus(context.Background(), admin, job.ID, domain.JobStatusRejected, nil)
	requireCode(t, err, apperrors.CodeInvalidTransition)
}

func TestHistory_ReturnsAuditTrail(t *testing.T) {
	h := newHarness(t)
	job := h.seedJob(t, domain.JobStatusPending, time.Hour)
	_, err := h.moderation.SetStatus(context.Background(), admin, job.ID, domain.JobStatusLive, nil)
	require.NoError(t, err)
	h.clock.Advance(2 * time.Hour)

	entries, err := h.moderation.History(context.Background(), admin, job.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.ReasonAdminDecision, entries[0].Reason)
	assert.Equal(t, domain.JobStatusLive, entries[0].ToStatus)
	assert.Equal(t, domain.ReasonDeadlinePassed, entries[1].Reason)
	assert.Equal(t, domain.ActorSystem, entries[1].Actor)

	_, err = h.moderation.History(context.Background(), student, job.ID)
	requireCode(t, err, apperrors.CodeForbidden)

	_, err = h.moderation.History(context.Background(), admin, "missing")
	requireCode(t, err, apperrors.CodeNotFound)
}
