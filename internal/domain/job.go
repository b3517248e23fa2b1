package domain

import "time"

// JobStatus enumerates lifecycle states for job postings.
type JobStatus string

const (
	JobStatusPending  JobStatus = "pending"
	JobStatusLive     JobStatus = "live"
	JobStatusArchived JobStatus = "archived"
	JobStatusRejected JobStatus = "rejected"
)

// Valid reports whether s is a known job status.
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusPending, JobStatusLive, JobStatusArchived, JobStatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further transition is defined from s.
func (s JobStatus) Terminal() bool {
	return s == JobStatusArchived || s == JobStatusRejected
}

// Job is the aggregate for a posted position.
type Job struct {
	ID              string
	HiringManagerID string
	Title           string
	Department      string
	Location        string
	Deadline        time.Time
	Status          JobStatus
	Version         int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Expired reports whether the deadline lies strictly before now.
func (j *Job) Expired(now time.Time) bool {
	return j.Deadline.Before(now)
}

// Sweepable reports whether the archival sweep should move the job to archived.
func (j *Job) Sweepable(now time.Time) bool {
	if j.Status != JobStatusPending && j.Status != JobStatusLive {
		return false
	}
	return j.Expired(now)
}
