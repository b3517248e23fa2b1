package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/spec-kit/job-portal/internal/domain"
)

// MemoryStore keeps jobs, applications and history in process. It honours the
// same compare-and-swap and uniqueness contracts as the Postgres repositories
// and backs the service when no database is configured.
type MemoryStore struct {
	mu           sync.RWMutex
	jobs         map[string]domain.Job
	applications map[string]domain.JobApplication
	appByPair    map[applicationKey]string
	history      map[string][]domain.JobStatusHistory
	now          func() time.Time
}

type applicationKey struct {
	jobID     string
	studentID string
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs:         make(map[string]domain.Job),
		applications: make(map[string]domain.JobApplication),
		appByPair:    make(map[applicationKey]string),
		history:      make(map[string][]domain.JobStatusHistory),
		now:          time.Now,
	}
}

// Jobs returns the job repository view.
func (s *MemoryStore) Jobs() JobRepository { return memoryJobs{s} }

// Applications returns the application repository view.
func (s *MemoryStore) Applications() ApplicationRepository { return memoryApplications{s} }

// History returns the audit repository view.
func (s *MemoryStore) History() JobHistoryRepository { return memoryHistory{s} }

type memoryJobs struct{ s *MemoryStore }

func (r memoryJobs) Create(ctx context.Context, job *domain.Job) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.jobs[job.ID]; exists {
		return ErrDuplicate
	}
	now := r.s.now()
	job.CreatedAt = now
	job.UpdatedAt = now
	r.s.jobs[job.ID] = *job
	return nil
}

func (r memoryJobs) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	job, ok := r.s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &job, nil
}

func (r memoryJobs) ListWithFilter(ctx context.Context, filter JobFilter) ([]domain.Job, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	statuses := make(map[domain.JobStatus]struct{}, len(filter.Statuses))
	for _, st := range filter.Statuses {
		statuses[st] = struct{}{}
	}

	r.s.mu.RLock()
	matched := make([]domain.Job, 0, len(r.s.jobs))
	for _, job := range r.s.jobs {
		if len(statuses) > 0 {
			if _, ok := statuses[job.Status]; !ok {
				continue
			}
		}
		if filter.HiringManagerID != nil && job.HiringManagerID != *filter.HiringManagerID {
			continue
		}
		if filter.DeadlineBefore != nil && !job.Deadline.Before(*filter.DeadlineBefore) {
			continue
		}
		matched = append(matched, job)
	}
	r.s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})

	offset := filter.offset()
	if offset >= len(matched) {
		return []domain.Job{}, nil
	}
	end := offset + filter.limit()
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (r memoryJobs) UpdateStatus(ctx context.Context, id string, expectedVersion int64, status domain.JobStatus) (*domain.Job, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	job, ok := r.s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	if job.Version != expectedVersion {
		return nil, ErrVersionConflict
	}
	job.Status = status
	job.Version++
	job.UpdatedAt = r.s.now()
	r.s.jobs[id] = job
	return &job, nil
}

type memoryApplications struct{ s *MemoryStore }

func (r memoryApplications) Create(ctx context.Context, application *domain.JobApplication) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.jobs[application.JobID]; !ok {
		return ErrNotFound
	}
	key := applicationKey{jobID: application.JobID, studentID: application.StudentID}
	if _, exists := r.s.appByPair[key]; exists {
		return ErrDuplicate
	}
	application.SubmittedAt = r.s.now()
	r.s.applications[application.ID] = *application
	r.s.appByPair[key] = application.ID
	return nil
}

func (r memoryApplications) GetByID(ctx context.Context, id string) (*domain.JobApplication, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	app, ok := r.s.applications[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &app, nil
}

func (r memoryApplications) ListByJob(ctx context.Context, jobID string) ([]domain.JobApplication, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	result := []domain.JobApplication{}
	for _, app := range r.s.applications {
		if app.JobID == jobID {
			result = append(result, app)
		}
	}
	r.s.mu.RUnlock()
	sort.Slice(result, func(i, j int) bool {
		return result[i].SubmittedAt.Before(result[j].SubmittedAt)
	})
	return result, nil
}

func (r memoryApplications) CountByJob(ctx context.Context, jobID string) (int, error) {
	apps, err := r.ListByJob(ctx, jobID)
	if err != nil {
		return 0, err
	}
	return len(apps), nil
}

type memoryHistory struct{ s *MemoryStore }

func (r memoryHistory) Create(ctx context.Context, entry *domain.JobStatusHistory) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.history[entry.JobID] = append(r.s.history[entry.JobID], *entry)
	return nil
}

func (r memoryHistory) ListByJob(ctx context.Context, jobID string) ([]domain.JobStatusHistory, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return append([]domain.JobStatusHistory{}, r.s.history[jobID]...), nil
}
