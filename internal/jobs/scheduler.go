package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Job represents a background job.
type Job interface {
	Name() string
	Execute(ctx context.Context) error
}

type scheduledJob struct {
	job      Job
	interval time.Duration
}

// Scheduler runs each job on its own ticker until Stop or the parent context ends.
type Scheduler struct {
	mu      sync.Mutex
	jobs    map[string]scheduledJob
	logger  *slog.Logger
	timeout time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a new job scheduler.
func NewScheduler(logger *slog.Logger) *Scheduler {
	return &Scheduler{
		jobs:    make(map[string]scheduledJob),
		logger:  logger,
		timeout: 5 * time.Minute,
	}
}

// AddJob registers job to run every interval.
func (s *Scheduler) AddJob(job Job, interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.Name()] = scheduledJob{job: job, interval: interval}
}

// Start launches every registered job. Calling Start twice is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)
	for _, sj := range s.jobs {
		s.wg.Add(1)
		go s.loop(ctx, sj)
	}
	s.logger.Info("job scheduler started", slog.Int("jobs", len(s.jobs)))
}

func (s *Scheduler) loop(ctx context.Context, sj scheduledJob) {
	defer s.wg.Done()
	ticker := time.NewTicker(sj.interval)
	defer ticker.Stop()

	s.logger.Info("starting job", slog.String("name", sj.job.Name()), slog.Duration("interval", sj.interval))
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.execute(ctx, sj.job)
		}
	}
}

func (s *Scheduler) execute(ctx context.Context, job Job) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("job panic", slog.String("name", job.Name()), slog.Any("panic", r))
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	if err := job.Execute(ctx); err != nil {
		s.logger.Error("job execution failed",
			slog.String("name", job.Name()),
			slog.String("error", err.Error()),
			slog.Duration("duration", time.Since(start)),
		)
		return
	}
	s.logger.Debug("job completed", slog.String("name", job.Name()), slog.Duration("duration", time.Since(start)))
}

// Stop cancels all jobs and waits for in-flight runs to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()
	s.logger.Info("job scheduler stopped")
}

// RunOnce executes a registered job immediately.
func (s *Scheduler) RunOnce(ctx context.Context, name string) error {
	s.mu.Lock()
	sj, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("job not found: %s", name)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return sj.job.Execute(ctx)
}
