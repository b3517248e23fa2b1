package events

import (
	"time"

	"github.com/spec-kit/job-portal/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventJobCreated           EventType = "job_created"
	EventJobStatusChanged     EventType = "job_status_changed"
	EventApplicationSubmitted EventType = "application_submitted"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	ID   string      `json:"id"`
	Role domain.Role `json:"role,omitempty"`
}

// ActorFromPrincipal converts an authenticated principal.
func ActorFromPrincipal(p domain.Principal) Actor {
	return Actor{ID: p.ID, Role: p.Role}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	JobID     string      `json:"job_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// JobCreatedPayload payload.
type JobCreatedPayload struct {
	HiringManagerID string    `json:"hiring_manager_id"`
	Title           string    `json:"title"`
	Deadline        time.Time `json:"deadline"`
}

// JobStatusChangedPayload carries the audit record of a committed transition.
type JobStatusChangedPayload struct {
	HistoryID string                  `json:"history_id"`
	OldStatus domain.JobStatus        `json:"old_status"`
	NewStatus domain.JobStatus        `json:"new_status"`
	Version   int64                   `json:"version"`
	Reason    domain.TransitionReason `json:"reason"`
}

// ApplicationSubmittedPayload payload.
type ApplicationSubmittedPayload struct {
	ApplicationID string `json:"application_id"`
	StudentID     string `json:"student_id"`
}
