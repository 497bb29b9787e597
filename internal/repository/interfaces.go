package repository

import (
	"context"

	"github.com/vidforge/vidforge/internal/domain"
)

// JobRepository manages the download job queue.
type JobRepository interface {
	// Enqueue adds a job to the queue.
	Enqueue(ctx context.Context, job *domain.Job) error

	// Dequeue retrieves the next pending job (FIFO).
	Dequeue(ctx context.Context) (*domain.Job, error)

	// Get retrieves a job by ID.
	Get(ctx context.Context, id domain.JobID) (*domain.Job, error)

	// Update modifies job state. Retrying jobs rejoin the queue.
	Update(ctx context.Context, job *domain.Job) error

	// List returns all known jobs, newest first.
	List(ctx context.Context, limit int) ([]*domain.Job, error)

	// Stats summarizes queue state.
	Stats(ctx context.Context) (*QueueStats, error)
}

// QueueStats counts jobs per state.
type QueueStats struct {
	Queued     int `json:"queued"`
	Processing int `json:"processing"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
	AuthWait   int `json:"auth_wait"`
}

// HistoryRepository records finished pipeline runs.
type HistoryRepository interface {
	// Record persists one acquisition outcome.
	Record(ctx context.Context, acq *domain.Acquisition) error

	// Get retrieves a single record by ID.
	Get(ctx context.Context, id string) (*domain.Acquisition, error)

	// Recent returns the most recent records, newest first.
	Recent(ctx context.Context, limit int) ([]*domain.Acquisition, error)

	// Close releases the underlying store.
	Close() error
}
