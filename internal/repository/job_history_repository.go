package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/job-portal/internal/domain"
)

// JobHistoryRepository stores audit entries for status transitions.
type JobHistoryRepository interface {
	Create(ctx context.Context, entry *domain.JobStatusHistory) error
	ListByJob(ctx context.Context, jobID string) ([]domain.JobStatusHistory, error)
}

type jobHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewJobHistoryRepository builds repository.
func NewJobHistoryRepository(pool *pgxpool.Pool) JobHistoryRepository {
	return &jobHistoryRepository{pool: pool}
}

func (r *jobHistoryRepository) Create(ctx context.Context, entry *domain.JobStatusHistory) error {
	const query = `
        INSERT INTO job_status_history (id, job_id, from_status, to_status, actor, actor_role, reason, occurred_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err := r.pool.Exec(ctx, query,
		entry.ID,
		entry.JobID,
		entry.FromStatus,
		entry.ToStatus,
		entry.Actor,
		entry.ActorRole,
		entry.Reason,
		entry.OccurredAt,
	)
	return classify(err)
}

func (r *jobHistoryRepository) ListByJob(ctx context.Context, jobID string) ([]domain.JobStatusHistory, error) {
	const query = `
        SELECT id, job_id, from_status, to_status, actor, actor_role, reason, occurred_at
        FROM job_status_history WHERE job_id=$1 ORDER BY occurred_at ASC`
	rows, err := r.pool.Query(ctx, query, jobID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var result []domain.JobStatusHistory
	for rows.Next() {
		var entry domain.JobStatusHistory
		if err := rows.Scan(
			&entry.ID,
			&entry.JobID,
			&entry.FromStatus,
			&entry.ToStatus,
			&entry.Actor,
			&entry.ActorRole,
			&entry.Reason,
			&entry.OccurredAt,
		); err != nil {
			return nil, classify(err)
		}
		result = append(result, entry)
	}
	return result, classify(rows.Err())
}
