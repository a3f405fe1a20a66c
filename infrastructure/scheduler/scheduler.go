package scheduler

import (
	"context"
	"fmt"
	"time"

	"socialflow/infrastructure/logger"
	"socialflow/infrastructure/metrics"

	"github.com/robfig/cron/v3"
)

// Job is a unit of scheduled work.
type Job func(ctx context.Context) error

// DueDispatcher publishes scheduled posts whose time has come.
type DueDispatcher interface {
	DispatchDue(ctx context.Context, limit int) (int, error)
}

// Scheduler runs periodic jobs on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	jobs    map[string]cron.EntryID
	timeout time.Duration
}

func New(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(loc), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		jobs:    make(map[string]cron.EntryID),
		timeout: 2 * time.Minute,
	}
}

// AddJob registers job under name. spec is a standard cron expression or a
// descriptor such as "@every 1m".
func (s *Scheduler) AddJob(name, spec string, job Job) error {
	entryID, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		s.run(ctx, name, job)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", name, err)
	}
	s.jobs[name] = entryID
	logger.GetLogger().WithField("job", name).WithField("schedule", spec).Info("scheduler job added")
	return nil
}

// AddDispatchJob sweeps due scheduled posts in batches of batchSize.
func (s *Scheduler) AddDispatchJob(spec string, batchSize int, d DueDispatcher) error {
	return s.AddJob("dispatch-due", spec, DispatchDueJob(d, batchSize))
}

// DispatchDueJob wraps d as a Job.
func DispatchDueJob(d DueDispatcher, batchSize int) Job {
	return func(ctx context.Context) error {
		metrics.DispatchSweep()
		n, err := d.DispatchDue(ctx, batchSize)
		if n > 0 {
			logger.GetLogger().WithField("dispatched", n).Info("due posts dispatched")
		}
		return err
	}
}

func (s *Scheduler) run(ctx context.Context, name string, job Job) {
	start := time.Now()
	lg := logger.GetLogger().WithField("job", name)
	if err := job(ctx); err != nil {
		lg.WithField("error", err).Error("scheduler job failed")
		return
	}
	lg.WithField("elapsed", time.Since(start).String()).Debug("scheduler job completed")
}

// RunNow executes a registered job's function immediately.
func (s *Scheduler) RunNow(ctx context.Context, name string, job Job) error {
	logger.GetLogger().WithField("job", name).Info("running job now")
	return job(ctx)
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler. The returned context is done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// NextRun returns the next activation of the named job.
func (s *Scheduler) NextRun(name string) (time.Time, bool) {
	id, ok := s.jobs[name]
	if !ok {
		return time.Time{}, false
	}
	return s.cron.Entry(id).Next, true
}
