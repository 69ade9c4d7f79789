package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// Job is one run of a named background job. A failed run is resubmitted as
// the same Job until RetryCount reaches MaxRetries.
type Job struct {
	ID     uuid.UUID
	Name   string
	Status JobStatus
	Error  string

	StartedAt   *time.Time
	CompletedAt *time.Time

	RetryCount  int
	MaxRetries  int
	NextRetryAt *time.Time
}

func NewJob(name string, maxRetries int) *Job {
	return &Job{ID: uuid.New(), Name: name, Status: JobStatusPending, MaxRetries: maxRetries}
}

func (j *Job) Start() {
	now := time.Now()
	j.Status, j.StartedAt, j.Error = JobStatusRunning, &now, ""
}

func (j *Job) Complete() {
	j.finish(JobStatusSuccess, "")
}

func (j *Job) Fail(reason string) {
	j.finish(JobStatusFailed, reason)
}

func (j *Job) finish(status JobStatus, reason string) {
	now := time.Now()
	j.Status, j.CompletedAt, j.Error = status, &now, reason
}

// ShouldRetry reports whether a failed run has retries left
func (j *Job) ShouldRetry() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// ScheduleRetry puts the job back to pending, due after delay
func (j *Job) ScheduleRetry(delay time.Duration) {
	due := time.Now().Add(delay)
	j.RetryCount++
	j.Status, j.NextRetryAt, j.Error = JobStatusPending, &due, ""
}

// JobExecutor runs one kind of job
type JobExecutor interface {
	Execute(ctx context.Context, job *Job) error
}
