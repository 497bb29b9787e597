package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/vidforge/vidforge/internal/domain"
)

// InMemoryJobRepository implements JobRepository using in-memory storage.
//
// Jobs cross the repository boundary by value: both directions copy, so
// a caller mutating a returned job cannot touch stored state until it
// hands the job back through Update. Workers and API readers therefore
// never share Job memory.
type InMemoryJobRepository struct {
	mu    sync.RWMutex
	jobs  map[domain.JobID]*domain.Job
	queue []domain.JobID // FIFO queue of pending job IDs
}

// cloneJob snapshots a job, including its result, so no memory is
// shared across the repository boundary.
func cloneJob(job *domain.Job) *domain.Job {
	c := *job
	if job.Result != nil {
		res := *job.Result
		c.Result = &res
	}
	return &c
}

// NewInMemoryJobRepository creates a new in-memory job repository.
func NewInMemoryJobRepository() *InMemoryJobRepository {
	return &InMemoryJobRepository{
		jobs:  make(map[domain.JobID]*domain.Job),
		queue: make([]domain.JobID, 0),
	}
}

// Enqueue adds a job to the queue.
func (r *InMemoryJobRepository) Enqueue(ctx context.Context, job *domain.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.jobs[job.ID] = cloneJob(job)
	r.queue = append(r.queue, job.ID)

	return nil
}

// Dequeue retrieves the next pending job (FIFO).
func (r *InMemoryJobRepository) Dequeue(ctx context.Context) (*domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Find first job that is queued or retrying
	for i, jobID := range r.queue {
		job, ok := r.jobs[jobID]
		if !ok {
			continue
		}

		if job.Status == domain.JobStatusQueued || job.Status == domain.JobStatusRetrying {
			r.queue = append(r.queue[:i], r.queue[i+1:]...)
			return cloneJob(job), nil
		}
	}

	return nil, domain.ErrNoJobs
}

// Get retrieves a job by ID.
func (r *InMemoryJobRepository) Get(ctx context.Context, id domain.JobID) (*domain.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}

	return cloneJob(job), nil
}

// Update modifies job state.
func (r *InMemoryJobRepository) Update(ctx context.Context, job *domain.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.jobs[job.ID]; !ok {
		return domain.ErrJobNotFound
	}

	r.jobs[job.ID] = cloneJob(job)

	// Retrying jobs go back to the end of the queue
	if job.Status == domain.JobStatusRetrying {
		r.queue = append(r.queue, job.ID)
	}

	return nil
}

// List returns all known jobs, newest first.
func (r *InMemoryJobRepository) List(ctx context.Context, limit int) ([]*domain.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Job, 0, len(r.jobs))
	for _, job := range r.jobs {
		result = append(result, cloneJob(job))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

// Stats summarizes queue state.
func (r *InMemoryJobRepository) Stats(ctx context.Context) (*QueueStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &QueueStats{}
	for _, job := range r.jobs {
		switch job.Status {
		case domain.JobStatusQueued, domain.JobStatusRetrying:
			stats.Queued++
		case domain.JobStatusProcessing:
			stats.Processing++
		case domain.JobStatusCompleted:
			stats.Completed++
		case domain.JobStatusFailed:
			stats.Failed++
		case domain.JobStatusAuthWait:
			stats.AuthWait++
		}
	}
	return stats, nil
}
