package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/lock"
	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

// Job represents a scheduled job
type Job struct {
	Name string
	Spec string
	Fn   func(ctx context.Context) error
}

type Options struct {
	// Timeout bounds a single run of a job.
	Timeout time.Duration
	// LockTTL is how long a run holds its lock if it never releases it.
	LockTTL time.Duration
}

// Scheduler runs jobs on cron specs in a fixed time zone. Each run holds a
// lock so that only one replica executes it.
type Scheduler struct {
	cron   *cron.Cron
	locker lock.Locker
	opts   Options
	jobs   map[string]Job
	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewScheduler creates a new cron scheduler
func NewScheduler(loc *time.Location, locker lock.Locker, opts Options) *Scheduler {
	if locker == nil {
		locker = lock.NoopLocker{}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Minute
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = opts.Timeout + time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())
	logger := slogLogger{}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		locker: locker,
		opts:   opts,
		jobs:   make(map[string]Job),
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddJob adds a job to the scheduler
func (s *Scheduler) AddJob(name, spec string, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("cron job %q already registered", name)
	}

	job := Job{Name: name, Spec: spec, Fn: fn}
	if _, err := s.cron.AddFunc(spec, func() { s.executeJob(s.ctx, job) }); err != nil {
		return fmt.Errorf("invalid spec %q for cron job %q: %w", spec, name, err)
	}
	s.jobs[name] = job

	slog.Info("Cron job registered", "name", name, "spec", spec)
	return nil
}

// Start begins running all scheduled jobs
func (s *Scheduler) Start() {
	s.cron.Start()
	slog.Info("Cron scheduler started", "job_count", len(s.jobs))
}

// Stop waits for running jobs, up to ctx, then cancels them.
func (s *Scheduler) Stop(ctx context.Context) {
	slog.Info("Stopping cron scheduler...")
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		slog.Warn("Cron jobs still running at shutdown, cancelling")
	}
	s.cancel()
	slog.Info("Cron scheduler stopped")
}

// RunNow runs the named job once under the same lock and timeout as a
// scheduled run. ran is false when another owner held the lock.
func (s *Scheduler) RunNow(ctx context.Context, name string) (ran bool, err error) {
	s.mu.Lock()
	job, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return false, fmt.Errorf("cron job %q not registered", name)
	}
	return s.run(ctx, job)
}

// executeJob executes a job and logs results
func (s *Scheduler) executeJob(ctx context.Context, job Job) {
	start := time.Now()
	ran, err := s.run(ctx, job)
	switch {
	case err != nil:
		slog.Error("Cron job failed", "name", job.Name, "error", err, "duration", time.Since(start))
	case !ran:
		slog.Info("Cron job skipped, lock held elsewhere", "name", job.Name)
	default:
		slog.Info("Cron job completed", "name", job.Name, "duration", time.Since(start))
	}
}

func (s *Scheduler) run(ctx context.Context, job Job) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	ctx, span := otel.Tracer("payroll/cron").Start(ctx, "cron."+job.Name)
	defer span.End()

	release, ok, err := s.locker.Acquire(ctx, "job:"+job.Name, s.opts.LockTTL)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	defer release()

	if err := job.Fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return true, err
	}
	return true, nil
}

// slogLogger adapts slog to cron.Logger.
type slogLogger struct{}

func (slogLogger) Info(msg string, keysAndValues ...interface{}) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (slogLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	slog.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
