// Package scheduler runs periodic maintenance jobs, such as expiring stale
// carts and quotes, on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// JobStatus represents the outcome of a job's latest run
type JobStatus string

const (
	JobStatusIdle    JobStatus = "IDLE"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// Task is a unit of periodic work. Run returns how many rows it changed.
type Task interface {
	Name() string
	Run(ctx context.Context, now time.Time) (int64, error)
}

// JobState is a snapshot of a registered job.
type JobState struct {
	Name        string
	Status      JobStatus
	LastRunAt   *time.Time
	LastError   string
	LastChanged int64
	Runs        int
}

type job struct {
	task  Task
	mu    sync.Mutex
	state JobState
}

// Config holds scheduler configuration
type Config struct {
	Enabled    bool
	Schedule   string // six-field cron expression, seconds first
	JobTimeout time.Duration
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() Config {
	return Config{
		Enabled:    true,
		Schedule:   "0 */15 * * * *",
		JobTimeout: 5 * time.Minute,
	}
}

// Scheduler runs every registered Task on one cron schedule.
type Scheduler struct {
	config Config
	logger *zap.Logger
	now    func() time.Time

	cron      *cron.Cron
	jobs      map[string]*job
	order     []string
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.Mutex
	isRunning bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock overrides the time passed to tasks.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

// New creates a scheduler for tasks. Task names must be unique.
func New(config Config, logger *zap.Logger, tasks []Task, opts ...Option) (*Scheduler, error) {
	if config.JobTimeout <= 0 {
		return nil, fmt.Errorf("%w: job timeout must be positive", ErrInvalidConfig)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Scheduler{
		config: config,
		logger: logger,
		now:    time.Now,
		cron:   cron.New(cron.WithSeconds(), cron.WithChain(cron.Recover(cron.DiscardLogger))),
		jobs:   make(map[string]*job, len(tasks)),
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, t := range tasks {
		name := t.Name()
		if _, dup := s.jobs[name]; dup {
			return nil, fmt.Errorf("%w: duplicate job %q", ErrInvalidConfig, name)
		}
		s.jobs[name] = &job{task: t, state: JobState{Name: name, Status: JobStatusIdle}}
		s.order = append(s.order, name)
	}

	if _, err := s.cron.AddFunc(config.Schedule, s.runAll); err != nil {
		return nil, fmt.Errorf("%w: schedule %q: %v", ErrInvalidConfig, config.Schedule, err)
	}
	return s, nil
}

// Start starts the cron loop. It is a no-op when disabled or already running.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.logger.Info("Scheduler disabled")
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.isRunning = true
	s.cron.Start()

	s.logger.Info("Scheduler started",
		zap.String("schedule", s.config.Schedule),
		zap.Strings("jobs", s.order),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)
	return nil
}

// Stop stops scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	cancel := s.cancel
	s.mu.Unlock()

	done := s.cron.Stop().Done()
	cancel()

	select {
	case <-done:
		s.logger.Info("Scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out")
		return ctx.Err()
	}
}

// IsRunning reports whether the cron loop is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// RunNow runs the named job immediately and waits for it.
func (s *Scheduler) RunNow(ctx context.Context, name string) (int64, error) {
	j, ok := s.jobs[name]
	if !ok {
		return 0, ErrJobNotFound
	}
	return s.execute(ctx, j)
}

// States returns a snapshot of every job in registration order.
func (s *Scheduler) States() []JobState {
	out := make([]JobState, 0, len(s.order))
	for _, name := range s.order {
		j := s.jobs[name]
		j.mu.Lock()
		out = append(out, j.state)
		j.mu.Unlock()
	}
	return out
}

func (s *Scheduler) runAll() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx == nil || ctx.Err() != nil {
		return
	}
	// failures are logged by execute and do not stop later jobs
	for _, name := range s.order {
		_, _ = s.execute(ctx, s.jobs[name])
	}
}

func (s *Scheduler) execute(ctx context.Context, j *job) (int64, error) {
	j.mu.Lock()
	if j.state.Status == JobStatusRunning {
		j.mu.Unlock()
		s.logger.Warn("Skipping job, previous run still in progress", zap.String("job", j.state.Name))
		return 0, ErrJobAlreadyRunning
	}
	j.state.Status = JobStatusRunning
	j.mu.Unlock()

	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	started := s.now()
	changed, err := j.task.Run(jobCtx, started)

	j.mu.Lock()
	j.state.Runs++
	j.state.LastRunAt = &started
	j.state.LastChanged = changed
	if err != nil {
		j.state.Status = JobStatusFailed
		j.state.LastError = err.Error()
	} else {
		j.state.Status = JobStatusSuccess
		j.state.LastError = ""
	}
	j.mu.Unlock()

	if err != nil {
		s.logger.Error("Job failed", zap.String("job", j.state.Name), zap.Error(err))
		return changed, err
	}
	s.logger.Info("Job completed",
		zap.String("job", j.state.Name),
		zap.Int64("changed", changed),
		zap.Duration("duration", s.now().Sub(started)),
	)
	return changed, nil
}
