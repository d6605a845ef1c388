package main

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
)

// This file implements the job scheduler: four cron-driven jobs sharing one
// store, each with its own non-reentrant guard and an isolated failure
// domain. A panic or error in one job never reaches the others or the
// process.

const (
	jobFetch      = "fetch"
	jobAggregate  = "aggregate"
	jobAlertCheck = "alert-check"
	jobCleanup    = "cleanup"
)

// scheduledJob is one registered job. The mutex is the per-job run guard: a
// cron tick that cannot take it finds the previous run still going and is
// skipped.
type scheduledJob struct {
	name    string
	spec    string
	run     func(ctx context.Context) (string, error)
	entryID cron.EntryID
	guard   sync.Mutex
	running atomic.Bool

	mu         sync.Mutex
	lastResult *JobResult
}

type Scheduler struct {
	cfg  *apiConfig
	cron *cron.Cron
	jobs map[string]*scheduledJob
	// order preserves registration order for status listings.
	order []string
	wg    sync.WaitGroup
}

// NewScheduler registers the four pipeline jobs against their configured cron
// expressions, evaluated in the configured timezone. It fails if any
// expression does not parse.
func NewScheduler(cfg *apiConfig) (*Scheduler, error) {
	s := &Scheduler{
		cfg:  cfg,
		cron: cron.New(cron.WithLocation(cfg.timezone)),
		jobs: make(map[string]*scheduledJob),
	}

	jobs := []struct {
		name string
		spec string
		run  func(ctx context.Context) (string, error)
	}{
		{jobFetch, cfg.cronFetch, cfg.runFetchJob},
		{jobAggregate, cfg.cronAggregate, cfg.runAggregateJob},
		{jobAlertCheck, cfg.cronAlertCheck, cfg.runAlertCheckJob},
		{jobCleanup, cfg.cronCleanup, cfg.runCleanupJob},
	}
	for _, j := range jobs {
		if err := s.register(j.name, j.spec, j.run); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Scheduler) register(name, spec string, run func(ctx context.Context) (string, error)) error {
	job := &scheduledJob{name: name, spec: spec, run: run}
	entryID, err := s.cron.AddFunc(spec, func() {
		s.executeJob(context.Background(), job)
	})
	if err != nil {
		return fmt.Errorf("could not schedule job %q with spec %q: %w", name, spec, err)
	}
	job.entryID = entryID
	s.jobs[name] = job
	s.order = append(s.order, name)
	return nil
}

// Start begins firing the cron entries. It returns immediately.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels future firings and waits for in-flight job runs to finish,
// bounded by the given context. An in-flight run is never interrupted;
// callers that need a hard deadline pass a context with one.
func (s *Scheduler) Stop(ctx context.Context) error {
	stopCtx := s.cron.Stop()
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		<-stopCtx.Done()
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler shutdown timed out: %w", ctx.Err())
	}
}

// RunJob runs one registered job immediately, outside its schedule. The
// per-job guard still applies, so a manual run cannot overlap a cron run.
func (s *Scheduler) RunJob(ctx context.Context, name string) (JobResult, error) {
	job, ok := s.jobs[name]
	if !ok {
		return JobResult{}, fmt.Errorf("unknown job %q", name)
	}
	return s.executeJob(ctx, job), nil
}

// Status reports every registered job with its schedule, whether a run is in
// flight, the next firing, and the last run's result.
func (s *Scheduler) Status() []JobStatus {
	statuses := make([]JobStatus, 0, len(s.order))
	for _, name := range s.order {
		job := s.jobs[name]
		job.mu.Lock()
		last := job.lastResult
		job.mu.Unlock()
		statuses = append(statuses, JobStatus{
			Job:     name,
			Spec:    job.spec,
			Running: job.running.Load(),
			NextRun: s.cron.Entry(job.entryID).Next,
			LastRun: last,
		})
	}
	return statuses
}

// executeJob runs one job under its guard, timing it and converting any error
// or panic into a structured JobResult.
func (s *Scheduler) executeJob(ctx context.Context, job *scheduledJob) JobResult {
	if !job.guard.TryLock() {
		s.cfg.logger.Warn("skipping job tick, previous run still in progress", "job", job.name)
		jobSkipsTotal.WithLabelValues(job.name).Inc()
		return JobResult{
			Job:     job.name,
			Success: false,
			Message: "previous run still in progress, tick skipped",
			RanAt:   time.Now().UTC(),
		}
	}
	defer job.guard.Unlock()

	s.wg.Add(1)
	defer s.wg.Done()
	job.running.Store(true)
	defer job.running.Store(false)

	start := time.Now()
	s.cfg.logger.Debug("job starting", "job", job.name)

	var message string
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("job panicked: %v", r)
			}
		}()
		message, err = job.run(ctx)
	}()

	duration := time.Since(start)
	result := JobResult{
		Job:      job.name,
		Success:  err == nil,
		Message:  message,
		Duration: duration,
		Elapsed:  duration.String(),
		RanAt:    start.UTC(),
	}

	outcome := "success"
	if err != nil {
		outcome = "failure"
		result.Error = err.Error()
		s.cfg.logger.Error("job failed", "job", job.name, "duration", duration.String(), "error", err)
	} else {
		s.cfg.logger.Info("job finished", "job", job.name, "duration", duration.String(), "message", message)
	}
	jobRunsTotal.WithLabelValues(job.name, outcome).Inc()
	jobDurationSeconds.WithLabelValues(job.name).Observe(duration.Seconds())

	job.mu.Lock()
	job.lastResult = &result
	job.mu.Unlock()

	return result
}
