package dto

import (
	"time"

	"github.com/spec-kit/job-portal/internal/domain"
)

// CreateJobRequest payload. Deadline is RFC 3339.
type CreateJobRequest struct {
	Title      string `json:"title"`
	Department string `json:"department"`
	Location   string `json:"location"`
	Deadline   string `json:"deadline"`
}

// UpdateStatusRequest payload for the moderation endpoint.
type UpdateStatusRequest struct {
	Status          domain.JobStatus `json:"status"`
	ExpectedVersion *int64           `json:"expected_version"`
}

// JobResponse represents a job posting.
type JobResponse struct {
	ID              string           `json:"id"`
	HiringManagerID string           `json:"hiring_manager_id"`
	Title           string           `json:"title"`
	Department      string           `json:"department"`
	Location        string           `json:"location"`
	Deadline        time.Time        `json:"deadline"`
	Status          domain.JobStatus `json:"status"`
	Version         int64            `json:"version"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// ApplicationResponse represents a submitted application.
type ApplicationResponse struct {
	ID          string                   `json:"id"`
	JobID       string                   `json:"job_id"`
	StudentID   string                   `json:"student_id"`
	Status      domain.ApplicationStatus `json:"status"`
	SubmittedAt time.Time                `json:"submitted_at"`
}

// ApplyResponse is returned from POST /job/:id/apply.
type ApplyResponse struct {
	ApplicationID string `json:"application_id"`
}

// HistoryResponse is one audit entry.
type HistoryResponse struct {
	ID         string                  `json:"id"`
	FromStatus domain.JobStatus        `json:"from_status"`
	ToStatus   domain.JobStatus        `json:"to_status"`
	Actor      string                  `json:"actor"`
	ActorRole  domain.Role             `json:"actor_role,omitempty"`
	Reason     domain.TransitionReason `json:"reason"`
	OccurredAt time.Time               `json:"occurred_at"`
}

// NewJobResponse maps the domain job.
func NewJobResponse(job *domain.Job) JobResponse {
	return JobResponse{
		ID:              job.ID,
		HiringManagerID: job.HiringManagerID,
		Title:           job.Title,
		Department:      job.Department,
		Location:        job.Location,
		Deadline:        job.Deadline,
		Status:          job.Status,
		Version:         job.Version,
		CreatedAt:       job.CreatedAt,
		UpdatedAt:       job.UpdatedAt,
	}
}

// NewJobList maps a page of jobs.
func NewJobList(jobs []domain.Job) []JobResponse {
	items := make([]JobResponse, 0, len(jobs))
	for i := range jobs {
		items = append(items, NewJobResponse(&jobs[i]))
	}
	return items
}

// NewApplicationList maps applications.
func NewApplicationList(apps []domain.JobApplication) []ApplicationResponse {
	items := make([]ApplicationResponse, 0, len(apps))
	for _, app := range apps {
		items = append(items, ApplicationResponse{
			ID:          app.ID,
			JobID:       app.JobID,
			StudentID:   app.StudentID,
			Status:      app.Status,
			SubmittedAt: app.SubmittedAt,
		})
	}
	return items
}

// NewHistoryList maps audit entries.
func NewHistoryList(entries []domain.JobStatusHistory) []HistoryResponse {
	items := make([]HistoryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, HistoryResponse{
			ID:         entry.ID,
			FromStatus: entry.FromStatus,
			ToStatus:   entry.ToStatus,
			Actor:      entry.Actor,
			ActorRole:  entry.ActorRole,
			Reason:     entry.Reason,
			OccurredAt: entry.OccurredAt,
		})
	}
	return items
}
