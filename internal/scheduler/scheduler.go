// Package scheduler runs the board's periodic jobs: reloading the board and
// polling the messaging task history.
package scheduler

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Job is one periodic task. Spec accepts the standard five-field syntax and
// descriptors such as "@every 2m".
type Job struct {
	Name string
	Spec string
	Run  func(ctx context.Context) error
}

// Scheduler wraps robfig/cron. A run still in progress when its next tick
// fires is skipped rather than stacked.
type Scheduler struct {
	cron *cron.Cron
	jobs []Job
	log  logrus.FieldLogger
	wg   sync.WaitGroup
}

// New creates a Scheduler for jobs.
func New(log logrus.FieldLogger, jobs ...Job) *Scheduler {
	l := log.WithField("component", "scheduler")
	cl := cronLogger{l}
	return &Scheduler{
		cron: cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		jobs: jobs,
		log:  l,
	}
}

// Validate checks a cron spec without scheduling anything.
func Validate(spec string) error {
	_, err := cron.ParseStandard(spec)
	return errors.Wrapf(err, "cron spec %q", spec)
}

// Start registers every job, starts the scheduler and runs each job once
// immediately so the first refresh does not wait for a tick.
func (s *Scheduler) Start(ctx context.Context) error {
	for _, j := range s.jobs {
		j := j
		if _, err := s.cron.AddFunc(j.Spec, func() { s.run(ctx, j) }); err != nil {
			return errors.Wrapf(err, "schedule %s", j.Name)
		}
	}
	s.cron.Start()
	s.log.WithField("jobs", len(s.jobs)).Info("cron started")

	for _, j := range s.jobs {
		s.wg.Add(1)
		go func(j Job) {
			defer s.wg.Done()
			s.run(ctx, j)
		}(j)
	}
	return nil
}

// Stop halts the scheduler and waits for running jobs to return.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.wg.Wait()
	s.log.Info("cron stopped")
}

func (s *Scheduler) run(ctx context.Context, j Job) {
	if ctx.Err() != nil {
		return
	}
	log := s.log.WithField("job", j.Name)
	if err := j.Run(ctx); err != nil {
		log.WithError(err).Warn("job failed")
		return
	}
	log.Debug("job done")
}

// cronLogger adapts logrus to cron.Logger.
type cronLogger struct{ l logrus.FieldLogger }

func (c cronLogger) Info(msg string, kv ...interface{}) {
	c.l.WithFields(fields(kv)).Debug(msg)
}

func (c cronLogger) Error(err error, msg string, kv ...interface{}) {
	c.l.WithFields(fields(kv)).WithError(err).Error(msg)
}

func fields(kv []interface{}) logrus.Fields {
	f := logrus.Fields{}
	for i := 0; i+1 < len(kv); i += 2 {
		if k, ok := kv[i].(string); ok {
			f[k] = kv[i+1]
		}
	}
	return f
}
