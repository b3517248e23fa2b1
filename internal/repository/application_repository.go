package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/job-portal/internal/domain"
)

// ApplicationRepository stores job applications. Create is an atomic insert
// guarded by the (job_id, student_id) unique constraint.
type ApplicationRepository interface {
	Create(ctx context.Context, application *domain.JobApplication) error
	GetByID(ctx context.Context, id string) (*domain.JobApplication, error)
	ListByJob(ctx context.Context, jobID string) ([]domain.JobApplication, error)
	CountByJob(ctx context.Context, jobID string) (int, error)
}

type applicationRepository struct {
	pool *pgxpool.Pool
}

// NewApplicationRepository builds a Postgres-backed repository.
func NewApplicationRepository(pool *pgxpool.Pool) ApplicationRepository {
	return &applicationRepository{pool: pool}
}

func (r *applicationRepository) Create(ctx context.Context, application *domain.JobApplication) error {
	const query = `
        INSERT INTO job_applications (id, job_id, student_id, status)
        VALUES ($1,$2,$3,$4)
        ON CONFLICT ON CONSTRAINT uq_job_applications_job_student DO NOTHING
        RETURNING submitted_at`
	err := r.pool.QueryRow(ctx, query,
		application.ID,
		application.JobID,
		application.StudentID,
		application.Status,
	).Scan(&application.SubmittedAt)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		// DO NOTHING returns no row when the pair already exists.
		return ErrDuplicate
	default:
		return classify(err)
	}
}

func (r *applicationRepository) GetByID(ctx context.Context, id string) (*domain.JobApplication, error) {
	const query = `
        SELECT id, job_id, student_id, status, submitted_at
        FROM job_applications WHERE id=$1`
	var app domain.JobApplication
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&app.ID,
		&app.JobID,
		&app.StudentID,
		&app.Status,
		&app.SubmittedAt,
	); err != nil {
		return nil, classify(err)
	}
	return &app, nil
}

func (r *applicationRepository) ListByJob(ctx context.Context, jobID string) ([]domain.JobApplication, error) {
	const query = `
        SELECT id, job_id, student_id, status, submitted_at
        FROM job_applications WHERE job_id=$1 ORDER BY submitted_at ASC`
	rows, err := r.pool.Query(ctx, query, jobID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var result []domain.JobApplication
	for rows.Next() {
		var app domain.JobApplication
		if err := rows.Scan(
			&app.ID,
			&app.JobID,
			&app.StudentID,
			&app.Status,
			&app.SubmittedAt,
		); err != nil {
			return nil, classify(err)
		}
		result = append(result, app)
	}
	return result, classify(rows.Err())
}

func (r *applicationRepository) CountByJob(ctx context.Context, jobID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM job_applications WHERE job_id=$1`, jobID).Scan(&count)
	return count, classify(err)
}
