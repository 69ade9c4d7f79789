package scheduler

import "errors"

var (
	ErrSchedulerNotRunning = errors.New("scheduler is not running")
	ErrJobQueueFull        = errors.New("job queue is full")
	// ErrUnknownJob means no executor is registered under the job name
	ErrUnknownJob    = errors.New("unknown job")
	ErrInvalidConfig = errors.New("invalid scheduler configuration")
)
