package jobs

import (
	"context"
	"time"

	"github.com/Soypete/mathy-bot/logging"
)

// Restarter asks the process to shut down for a restart, but only once it
// has been up for a minimum time. A supervisor is expected to start it again.
type Restarter struct {
	started   time.Time
	minUptime time.Duration
	now       func() time.Time
	shutdown  func(reason string)
	logger    *logging.Logger
}

func NewRestarter(started time.Time, minUptime time.Duration, shutdown func(reason string), logger *logging.Logger) *Restarter {
	if logger == nil {
		logger = logging.Default()
	}
	return &Restarter{
		started:   started,
		minUptime: minUptime,
		now:       time.Now,
		shutdown:  shutdown,
		logger:    logger,
	}
}

// Run is a Job.
func (r *Restarter) Run(_ context.Context) error {
	uptime := r.now().Sub(r.started)
	if uptime < r.minUptime {
		r.logger.Info("skipping scheduled restart", "uptime", uptime.Round(time.Minute).String(), "minUptime", r.minUptime.String())
		return nil
	}
	r.logger.Info("scheduled restart", "uptime", uptime.Round(time.Minute).String())
	r.shutdown("scheduled restart")
	return nil
}
