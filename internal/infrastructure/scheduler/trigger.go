package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// JobSubmitter queues runs of named jobs
type JobSubmitter interface {
	Submit(name string) (*Job, error)
}

// TriggerConfig holds configuration for an interval trigger
type TriggerConfig struct {
	JobName  string
	Interval time.Duration
	// RunOnStart submits one run immediately instead of waiting a full interval
	RunOnStart bool
}

// Trigger submits a named job every Interval until stopped
type Trigger struct {
	config    TriggerConfig
	submitter JobSubmitter
	logger    *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewTrigger creates a new interval trigger
func NewTrigger(config TriggerConfig, submitter JobSubmitter, logger *zap.Logger) (*Trigger, error) {
	if config.JobName == "" || config.Interval <= 0 {
		return nil, ErrInvalidConfig
	}
	return &Trigger{
		config:    config,
		submitter: submitter,
		logger:    logger,
	}, nil
}

// Start starts the trigger
func (t *Trigger) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = true
	t.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	t.wg.Add(1)
	go t.runLoop(ctx)

	t.logger.Info("Job trigger started",
		zap.String("job", t.config.JobName),
		zap.Duration("interval", t.config.Interval),
	)
	return nil
}

// Stop stops the trigger
func (t *Trigger) Stop(ctx context.Context) error {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = false
	t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.logger.Info("Job trigger stopped", zap.String("job", t.config.JobName))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Trigger) runLoop(ctx context.Context) {
	defer t.wg.Done()

	if t.config.RunOnStart {
		t.fire()
	}

	ticker := time.NewTicker(t.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.fire()
		}
	}
}

func (t *Trigger) fire() {
	_, err := t.submitter.Submit(t.config.JobName)
	switch {
	case err == nil:
	case errors.Is(err, ErrJobQueueFull):
		t.logger.Warn("Job queue full, skipping tick", zap.String("job", t.config.JobName))
	default:
		t.logger.Error("Failed to submit job",
			zap.String("job", t.config.JobName),
			zap.Error(err),
		)
	}
}
