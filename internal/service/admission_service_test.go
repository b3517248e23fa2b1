package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/job-portal/internal/domain"
	"github.com/spec-kit/job-portal/internal/events"
	"github.com/spec-kit/job-portal/internal/repository"
	apperrors "github.com/spec-kit/job-portal/pkg/util"
)

func validDraft(h *harness) JobDraft {
	return JobDraft{
		Title:      "  Backend Engineer ",
		Department: "Platform",
		Location:   "Remote",
		Deadline:   h.clock.Now().Add(14 * 24 * time.Hour),
	}
}

func allJobs(t *testing.T, h *harness) []domain.Job {
	t.Helper()
	jobs, err := h.store.Jobs().ListWithFilter(context.Background(), repository.JobFilter{Limit: 500})
	require.NoError(t, err)
	return jobs
}

func TestAdmitJob_CreatesPendingJob(t *testing.T) {
	h := newHarness(t)

	job, err := h.admission.AdmitJob(context.Background(), validDraft(h), manager)
	require.NoError(t, err)

	assert.NotEmpty(t, job.ID)
	assert.Equal(t, domain.JobStatusPending, job.Status)
	assert.Equal(t, int64(0), job.Version)
	assert.Equal(t, manager.ID, job.HiringManagerID)
	assert.Equal(t, "Backend Engineer", job.Title)

	stored := h.storedJob(t, job.ID)
	assert.Equal(t, domain.JobStatusPending, stored.Status)
}

func TestAdmitJob_UnverifiedManagerRejectedWithoutWrite(t *testing.T) {
	h := newHarness(t)
	unverified := domain.Principal{ID: "hm-2", Role: domain.RoleHiringManager}

	_, err := h.admission.AdmitJob(context.Background(), validDraft(h), unverified)
	requireCode(t, err, apperrors.CodeForbidden)
	assert.Empty(t, allJobs(t, h))
}

func TestAdmitJob_WrongRole(t *testing.T) {
	h := newHarness(t)
	for _, actor := range []domain.Principal{student, admin} {
		_, err := h.admission.AdmitJob(context.Background(), validDraft(h), actor)
		requireCode(t, err, apperrors.CodeForbidden)
	}
	assert.Empty(t, allJobs(t, h))
}

func TestAdmitJob_DirectoryIsAuthoritative(t *testing.T) {
	cases := map[string]staticDirectory{
		"suspended":  {manager.ID: domain.VerificationSuspended},
		"unverified": {manager.ID: domain.VerificationUnverified},
		"missing":    {},
	}
	for name, dir := range cases {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t, withDirectory(dir))
			_, err := h.admission.AdmitJob(context.Background(), validDraft(h), manager)
			requireCode(t, err, apperrors.CodeForbidden)
			assert.Empty(t, allJobs(t, h))
		})
	}

	h := newHarness(t, withDirectory(staticDirectory{manager.ID: domain.VerificationVerified}))
	_, err := h.admission.AdmitJob(context.Background(), validDraft(h), manager)
	require.NoError(t, err)
}

func TestAdmitJob_ValidationDetails(t *testing.T) {
	h := newHarness(t)
	draft := JobDraft{
		Title:      "   ",
		Department: "",
		Location:   "Remote",
		Deadline:   h.clock.Now(),
	}

	_, err := h.admission.AdmitJob(context.Background(), draft, manager)
	requireCode(t, err, apperrors.CodeValidation)

	details := apperrors.ToDomainError(err).Details
	assert.Equal(t, "required", details["title"])
	assert.Equal(t, "required", details["department"])
	assert.Equal(t, "must be in the future", details["deadline"])
	assert.NotContains(t, details, "location")
	assert.Empty(t, allJobs(t, h))
}

func TestAdmitJob_MissingDeadline(t *testing.T) {
	h := newHarness(t)
	draft := validDraft(h)
	draft.Deadline = time.Time{}

	_, err := h.admission.AdmitJob(context.Background(), draft, manager)
	requireCode(t, err, apperrors.CodeValidation)
	assert.Equal(t, "required", apperrors.ToDomainError(err).Details["deadline"])
}

func TestAdmitJob_LogsPublishFailure(t *testing.T) {
	h := newHarness(t)
	h.failOn(events.EventJobCreated)

	job, err := h.admission.AdmitJob(context.Background(), validDraft(h), manager)
	require.NoError(t, err)

	entries := h.logs.FilterMessage("failed to publish job created event").All()
	require.Len(t, entries, 1)
	assert.Equal(t, job.ID, entries[0].ContextMap()["job_id"])
	assert.Contains(t, entries[0].ContextMap()["error"], "subscriber down")
}
