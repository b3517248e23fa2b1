package domain

import "time"

// TransitionReason records why a status change happened.
type TransitionReason string

const (
	ReasonAdminDecision  TransitionReason = "admin_decision"
	ReasonDeadlinePassed TransitionReason = "deadline_passed"
)

// JobStatusHistory is an immutable audit trail entry.
type JobStatusHistory struct {
	ID         string
	JobID      string
	FromStatus JobStatus
	ToStatus   JobStatus
	Actor      string
	ActorRole  Role
	Reason     TransitionReason
	OccurredAt time.Time
}
