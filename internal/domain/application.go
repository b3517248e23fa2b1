package domain

import "time"

// ApplicationStatus tracks the application-level state.
type ApplicationStatus string

const (
	ApplicationStatusSubmitted ApplicationStatus = "submitted"
)

// JobApplication links a student to a job. Immutable once created.
type JobApplication struct {
	ID          string
	JobID       string
	StudentID   string
	Status      ApplicationStatus
	SubmittedAt time.Time
}
