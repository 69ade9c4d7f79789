package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

const queueSize = 100

// SchedulerConfig mirrors the scheduler block of the application config.
type SchedulerConfig struct {
	Enabled           bool
	MaxConcurrentJobs int
	JobTimeout        time.Duration
	RetryAttempts     int
	RetryDelay        time.Duration
}

func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled:           true,
		MaxConcurrentJobs: 3,
		JobTimeout:        30 * time.Minute,
		RetryAttempts:     3,
		RetryDelay:        5 * time.Minute,
	}
}

// Scheduler runs submitted jobs on MaxConcurrentJobs workers. Executors are
// looked up by job name, so the suggestion scan and outbox jobs share one
// pool and one retry policy.
type Scheduler struct {
	config SchedulerConfig
	logger *zap.Logger

	mu        sync.Mutex
	executors map[string]JobExecutor
	queue     chan *Job
	running   bool
	cancel    context.CancelFunc
	workers   sync.WaitGroup
}

func NewScheduler(config SchedulerConfig, logger *zap.Logger) (*Scheduler, error) {
	if config.MaxConcurrentJobs <= 0 || config.JobTimeout <= 0 {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		config:    config,
		logger:    logger.Named("scheduler"),
		executors: make(map[string]JobExecutor),
		queue:     make(chan *Job, queueSize),
	}, nil
}

// Register binds executor to name. Call before Start.
func (s *Scheduler) Register(name string, executor JobExecutor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.executors[name] = executor
}

func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Start launches the workers. Starting a running scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.running = true
	for range s.config.MaxConcurrentJobs {
		s.workers.Add(1)
		go s.work(ctx)
	}

	s.logger.Info("Job scheduler started",
		zap.Int("workers", s.config.MaxConcurrentJobs),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)
	return nil
}

// Stop refuses new submissions, cancels running jobs and waits for the
// workers until ctx expires. Queued jobs that have not started are dropped.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.queue)
	s.cancel()
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.workers.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Job scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Job scheduler stop timed out", zap.Error(ctx.Err()))
		return ctx.Err()
	}
}

// Submit queues a new run of the named job
func (s *Scheduler) Submit(name string) (*Job, error) {
	job := NewJob(name, s.config.RetryAttempts)
	if err := s.SubmitJob(job); err != nil {
		return nil, err
	}
	return job, nil
}

// SubmitJob queues job without blocking; ErrJobQueueFull when the queue is saturated
func (s *Scheduler) SubmitJob(job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return ErrSchedulerNotRunning
	}
	if _, ok := s.executors[job.Name]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, job.Name)
	}

	select {
	case s.queue <- job:
		s.logger.Debug("Job queued", zap.String("job", job.Name), zap.String("job_id", job.ID.String()))
		return nil
	default:
		return ErrJobQueueFull
	}
}

func (s *Scheduler) work(ctx context.Context) {
	defer s.workers.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-s.queue:
			if !ok {
				return
			}
			s.run(ctx, job)
		}
	}
}

func (s *Scheduler) run(ctx context.Context, job *Job) {
	s.mu.Lock()
	executor := s.executors[job.Name]
	s.mu.Unlock()

	log := s.logger.With(zap.String("job", job.Name), zap.String("job_id", job.ID.String()))

	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	job.Start()
	if err := executor.Execute(jobCtx, job); err != nil {
		job.Fail(err.Error())
		log.Error("Job failed", zap.Int("retry_count", job.RetryCount), zap.Error(err))
		s.retry(job, log)
		return
	}
	job.Complete()
	log.Debug("Job completed", zap.Duration("elapsed", job.CompletedAt.Sub(*job.StartedAt)))
}

// retry resubmits a failed job after RetryDelay while it has attempts left
func (s *Scheduler) retry(job *Job, log *zap.Logger) {
	if !job.ShouldRetry() {
		return
	}
	job.ScheduleRetry(s.config.RetryDelay)
	log.Info("Job retry scheduled",
		zap.Int("retry_count", job.RetryCount),
		zap.Int("max_retries", job.MaxRetries),
		zap.Time("next_retry_at", *job.NextRetryAt),
	)

	time.AfterFunc(s.config.RetryDelay, func() {
		if err := s.SubmitJob(job); err != nil {
			log.Warn("Job retry dropped", zap.Error(err))
		}
	})
}
