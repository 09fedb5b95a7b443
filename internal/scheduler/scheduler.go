// Package scheduler runs the periodic alert scans on cron schedules.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"inventory-engine/internal/app"
	"inventory-engine/internal/config"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const (
	JobLowStock     = "low-stock"
	JobExpiringLots = "expiring-lots"

	moduleName     = "scheduler"
	defaultLockTTL = 5 * time.Minute
)

// Job is one named unit of scheduled work. Run reports how many items it produced.
type Job struct {
	Name     string
	Schedule string
	Run      func(ctx context.Context) (int, error)
}

// Scheduler wraps a cron runner. Each job runs isolated: a failure or panic in one
// is logged and never stops the others.
type Scheduler struct {
	cron    *cron.Cron
	jobs    map[string]Job
	locker  Locker
	logger  logrus.FieldLogger
	lockTTL time.Duration
}

// New creates a scheduler. A nil locker runs every tick locally.
func New(logger logrus.FieldLogger, locker Locker) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		jobs:    make(map[string]Job),
		locker:  locker,
		logger:  logger,
		lockTTL: defaultLockTTL,
	}
}

// AlertJobs builds the low-stock and expiring-lot scans over the application service.
func AlertJobs(svc app.ApplicationService, cfg *config.Config) []Job {
	return []Job{
		{
			Name:     JobLowStock,
			Schedule: cfg.CronLowStock,
			Run: func(ctx context.Context) (int, error) {
				res, err := svc.CheckLowStock(ctx)
				if err != nil {
					return 0, err
				}
				return res.Created, nil
			},
		},
		{
			Name:     JobExpiringLots,
			Schedule: cfg.CronExpiringLots,
			Run: func(ctx context.Context) (int, error) {
				res, err := svc.CheckExpiringLots(ctx)
				if err != nil {
					return 0, err
				}
				return res.Created, nil
			},
		},
	}
}

// Register validates the schedule and adds the job to the cron table.
func (s *Scheduler) Register(job Job) error {
	if job.Name == "" || job.Run == nil {
		return errors.New("job requires a name and a run function")
	}
	if _, ok := s.jobs[job.Name]; ok {
		return fmt.Errorf("duplicate job %s", job.Name)
	}
	name := job.Name
	if _, err := s.cron.AddFunc(job.Schedule, func() {
		_ = s.RunJob(context.Background(), name)
	}); err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", job.Schedule, job.Name, err)
	}
	s.jobs[job.Name] = job
	return nil
}

// Jobs returns the registered job names, sorted.
func (s *Scheduler) Jobs() []string {
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RunJob executes one job immediately. When a locker is configured and another runner
// holds the job's lock the tick is skipped and nil is returned.
func (s *Scheduler) RunJob(ctx context.Context, name string) (err error) {
	job, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("unknown job %s", name)
	}
	log := s.logger.WithField("job", name)

	if s.locker != nil {
		release, obtained, lockErr := s.locker.TryLock(ctx, "cron:"+name, s.lockTTL)
		if lockErr != nil {
			config.LogError(s.logger, moduleName, "RunJob", "Error obtaining job lock", name, lockErr)
			return lockErr
		}
		if !obtained {
			log.Info("job skipped: lock held by another runner")
			return nil
		}
		defer release()
	}

	start := time.Now()
	defer func() {
		if rv := recover(); rv != nil {
			err = fmt.Errorf("job %s panicked: %v", name, rv)
		}
		if err != nil {
			config.LogError(s.logger, moduleName, "RunJob", "Job failed", name, err)
		}
	}()

	log.Info("job started")
	created, err := job.Run(ctx)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"created":     created,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("job finished")
	return nil
}

// Start begins firing jobs on their schedules in background goroutines.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule; the returned context is done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// Shutdown halts the schedule and blocks until running jobs finish.
func (s *Scheduler) Shutdown() {
	<-s.Stop().Done()
}
