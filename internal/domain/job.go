package domain

import (
	"time"
)

// JobID is a unique identifier for a job.
type JobID string

// String returns the string representation of the JobID.
func (id JobID) String() string {
	return string(id)
}

// JobStatus represents the current state of a job.
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusRetrying   JobStatus = "retrying"
	// JobStatusAuthWait marks a job parked until fresh credentials arrive.
	JobStatusAuthWait JobStatus = "auth_wait"
)

// Job represents a queued acquisition.
type Job struct {
	ID         JobID
	Request    DownloadRequest
	Status     JobStatus
	Attempts   int
	MaxRetries int
	LastError  string
	Result     *DownloadResult
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewJob creates a new acquisition job.
func NewJob(id JobID, req DownloadRequest, maxRetries int) *Job {
	now := time.Now()
	return &Job{
		ID:         id,
		Request:    req,
		Status:     JobStatusQueued,
		MaxRetries: maxRetries,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// CanRetry returns true if the job can be retried.
func (j *Job) CanRetry() bool {
	return j.Attempts < j.MaxRetries
}

// MarkProcessing updates the job status to processing.
func (j *Job) MarkProcessing() {
	j.Status = JobStatusProcessing
	j.UpdatedAt = time.Now()
}

// MarkCompleted records the result and marks the job completed.
func (j *Job) MarkCompleted(res *DownloadResult) {
	j.Status = JobStatusCompleted
	j.Result = res
	j.UpdatedAt = time.Now()
}

// MarkAuthWait parks the job pending a credential refresh.
func (j *Job) MarkAuthWait() {
	j.Status = JobStatusAuthWait
	j.LastError = ErrAuthRequired.Error()
	j.UpdatedAt = time.Now()
}

// MarkFailed records an error and either schedules a retry or fails
// the job permanently.
func (j *Job) MarkFailed(errMsg string) {
	j.Attempts++
	j.LastError = errMsg
	j.UpdatedAt = time.Now()

	if j.CanRetry() {
		j.Status = JobStatusRetrying
	} else {
		j.Status = JobStatusFailed
	}
}
