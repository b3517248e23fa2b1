package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/job-portal/internal/domain"
)

// JobFilter captures listing parameters.
type JobFilter struct {
	Statuses        []domain.JobStatus
	HiringManagerID *string
	DeadlineBefore  *time.Time
	Limit           int
	Offset          int
}

const (
	defaultJobLimit = 50
	maxJobLimit     = 500
)

func (f JobFilter) limit() int {
	switch {
	case f.Limit <= 0:
		return defaultJobLimit
	case f.Limit > maxJobLimit:
		return maxJobLimit
	}
	return f.Limit
}

func (f JobFilter) offset() int {
	if f.Offset < 0 {
		return 0
	}
	return f.Offset
}

// JobRepository encapsulates job persistence. Status changes go through
// UpdateStatus only, which compares and swaps on the version column.
type JobRepository interface {
	Create(ctx context.Context, job *domain.Job) error
	GetByID(ctx context.Context, id string) (*domain.Job, error)
	ListWithFilter(ctx context.Context, filter JobFilter) ([]domain.Job, error)
	UpdateStatus(ctx context.Context, id string, expectedVersion int64, status domain.JobStatus) (*domain.Job, error)
}

type jobRepository struct {
	pool *pgxpool.Pool
}

// NewJobRepository instantiates a Postgres-backed repository.
func NewJobRepository(pool *pgxpool.Pool) JobRepository {
	return &jobRepository{pool: pool}
}

const jobColumns = `id, hiring_manager_id, title, department, location, deadline, status, version, created_at, updated_at`

func (r *jobRepository) Create(ctx context.Context, job *domain.Job) error {
	const query = `
        INSERT INTO jobs (id, hiring_manager_id, title, department, location, deadline, status, version)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		job.ID,
		job.HiringManagerID,
		job.Title,
		job.Department,
		job.Location,
		job.Deadline,
		job.Status,
		job.Version,
	).Scan(&job.CreatedAt, &job.UpdatedAt)
	return classify(err)
}

func (r *jobRepository) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id=$1`
	job, err := scanJob(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, classify(err)
	}
	return job, nil
}

func (r *jobRepository) UpdateStatus(ctx context.Context, id string, expectedVersion int64, status domain.JobStatus) (*domain.Job, error) {
	query := `
        UPDATE jobs SET status=$1, version=version+1, updated_at=NOW()
        WHERE id=$2 AND version=$3
        RETURNING ` + jobColumns
	job, err := scanJob(r.pool.QueryRow(ctx, query, status, id, expectedVersion))
	if err == nil {
		return job, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, classify(err)
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM jobs WHERE id=$1)`, id).Scan(&exists); err != nil {
		return nil, classify(err)
	}
	if !exists {
		return nil, ErrNotFound
	}
	return nil, ErrVersionConflict
}

func (r *jobRepository) ListWithFilter(ctx context.Context, filter JobFilter) ([]domain.Job, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.HiringManagerID != nil {
		args = append(args, *filter.HiringManagerID)
		clauses = append(clauses, fmt.Sprintf("hiring_manager_id=$%d", len(args)))
	}
	if filter.DeadlineBefore != nil {
		args = append(args, *filter.DeadlineBefore)
		clauses = append(clauses, fmt.Sprintf("deadline < $%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM jobs WHERE %s ORDER BY created_at DESC, id LIMIT %d OFFSET %d`,
		jobColumns, strings.Join(clauses, " AND "), filter.limit(), filter.offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var result []domain.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, classify(err)
		}
		result = append(result, *job)
	}
	return result, classify(rows.Err())
}

func scanJob(row pgx.Row) (*domain.Job, error) {
	var job domain.Job
	if err := row.Scan(
		&job.ID,
		&job.HiringManagerID,
		&job.Title,
		&job.Department,
		&job.Location,
		&job.Deadline,
		&job.Status,
		&job.Version,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &job, nil
}
