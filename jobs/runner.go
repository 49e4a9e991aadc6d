// Package jobs runs the wall clock scheduled work of the bot: the midnight
// vote summary and the daily restart window.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/Soypete/mathy-bot/logging"
	"github.com/Soypete/mathy-bot/metrics"
	"github.com/robfig/cron/v3"
)

// Job is one scheduled unit of work. A returned error is logged; the job is
// still run at its next occurrence.
type Job func(ctx context.Context) error

// Runner triggers jobs from cron expressions evaluated in a fixed location.
// The next occurrence is recomputed from the wall clock after every run, so
// clock adjustments do not accumulate drift.
type Runner struct {
	cron   *cron.Cron
	logger *logging.Logger
	base   context.Context
}

func NewRunner(loc *time.Location, logger *logging.Logger) *Runner {
	if logger == nil {
		logger = logging.Default()
	}
	cl := cronLogger{logger: logger}
	return &Runner{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger: logger,
		base:   context.Background(),
	}
}

// Add registers job under name. timeout bounds a single run; zero means none.
func (r *Runner) Add(name, spec string, timeout time.Duration, job Job) error {
	_, err := r.cron.AddFunc(spec, func() {
		r.run(name, timeout, job)
	})
	if err != nil {
		return fmt.Errorf("could not add %s job with spec %q: %w", name, spec, err)
	}
	r.logger.Info("scheduled job", "job", name, "spec", spec)
	return nil
}

func (r *Runner) run(name string, timeout time.Duration, job Job) {
	ctx := r.base
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	r.logger.Info("cron job triggered", "job", name)
	err := job(ctx)
	metrics.ScheduledJobDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		r.logger.Error("cron job failed", "job", name, "error", err.Error())
		return
	}
	r.logger.Debug("cron job finished", "job", name, "duration", time.Since(start).String())
}

// Run starts the scheduler and blocks until ctx is done, then waits for
// running jobs to finish.
func (r *Runner) Run(ctx context.Context) error {
	r.base = ctx
	r.cron.Start()
	r.logger.Info("job runner started", "jobs", len(r.cron.Entries()))

	<-ctx.Done()

	r.logger.Info("stopping job runner")
	stopped := r.cron.Stop()
	<-stopped.Done()
	r.logger.Info("job runner stopped")
	return ctx.Err()
}

// cronLogger routes cron's own logging into the application logger.
type cronLogger struct {
	logger *logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err.Error())...)
}
