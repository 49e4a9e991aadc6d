// Package watchdog runs beside the bot and alerts the owner on Discord when
// the bot stops answering its health check or reports an error.
package watchdog

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Soypete/mathy-bot/logging"
	"github.com/Soypete/mathy-bot/status"
	"golang.org/x/sync/errgroup"
)

// Probe returns nil when the checked thing is healthy.
type Probe func(ctx context.Context) error

// Check is one thing the watchdog watches.
type Check struct {
	Name  string
	Probe Probe
	// Threshold is the number of consecutive failures before the first alert.
	Threshold int
}

// CheckState tracks a check between runs.
type CheckState struct {
	Name                string
	LastCheckTime       time.Time
	LastAlertTime       time.Time
	LastError           string
	ConsecutiveFailures int
	IsHealthy           bool
	alerted             bool
}

// Alerter defines the interface for sending alerts
type Alerter interface {
	SendAlert(ctx context.Context, checkName string, message string) error
}

// Service runs every check on an interval.
type Service struct {
	checks        []Check
	checkInterval time.Duration
	alertInterval time.Duration
	alerter       Alerter
	logger        *logging.Logger
	now           func() time.Time

	mu     sync.RWMutex
	states map[string]*CheckState
}

func NewService(checks []Check, checkInterval, alertInterval time.Duration, alerter Alerter, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	s := &Service{
		checks:        checks,
		checkInterval: checkInterval,
		alertInterval: alertInterval,
		alerter:       alerter,
		logger:        logger,
		now:           time.Now,
		states:        make(map[string]*CheckState, len(checks)),
	}
	for _, c := range checks {
		s.states[c.Name] = &CheckState{Name: c.Name, IsHealthy: true}
	}
	return s
}

// Start begins the monitoring loop
func (s *Service) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	s.CheckAll(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("watchdog shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.CheckAll(ctx)
		}
	}
}

// CheckAll runs the checks in parallel and waits for them.
func (s *Service) CheckAll(ctx context.Context) {
	var eg errgroup.Group
	for _, c := range s.checks {
		eg.Go(func() error {
			s.check(ctx, c)
			return nil
		})
	}
	// check handles its own failures
	_ = eg.Wait()
}

func (s *Service) check(ctx context.Context, c Check) {
	err := c.Probe(ctx)

	s.mu.Lock()
	state := s.states[c.Name]
	state.LastCheckTime = s.now()
	msg := s.transition(c, state, err)
	s.mu.Unlock()

	if msg == "" {
		return
	}
	if err := s.alerter.SendAlert(ctx, c.Name, msg); err != nil {
		s.logger.Error("failed to send alert", "check", c.Name, "error", err.Error())
	}
}

// transition updates state with the probe result and returns the alert to
// send, if any. The caller holds s.mu.
func (s *Service) transition(c Check, state *CheckState, err error) string {
	threshold := c.Threshold
	if threshold < 1 {
		threshold = 1
	}

	if err == nil {
		defer func() {
			state.IsHealthy = true
			state.ConsecutiveFailures = 0
			state.LastError = ""
			state.alerted = false
		}()
		if state.IsHealthy {
			return ""
		}
		s.logger.Info("check recovered", "check", c.Name, "after_failures", state.ConsecutiveFailures)
		if !state.alerted {
			return ""
		}
		return fmt.Sprintf("✅ %s has recovered after %d failed checks", c.Name, state.ConsecutiveFailures)
	}

	state.ConsecutiveFailures++
	state.IsHealthy = false
	state.LastError = err.Error()
	s.logger.Warn("check failed",
		"check", c.Name,
		"consecutive_failures", state.ConsecutiveFailures,
		"error", err.Error())

	switch {
	case state.ConsecutiveFailures < threshold:
		return ""
	case !state.alerted:
		state.alerted = true
		state.LastAlertTime = s.now()
		return fmt.Sprintf("🚨 %s is failing after %d checks: %s", c.Name, state.ConsecutiveFailures, err.Error())
	case s.now().Sub(state.LastAlertTime) >= s.alertInterval:
		state.LastAlertTime = s.now()
		return fmt.Sprintf("🚨 %s is still failing (consecutive failures: %d): %s", c.Name, state.ConsecutiveFailures, err.Error())
	}
	return ""
}

// States returns a copy of every check state.
func (s *Service) States() map[string]CheckState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]CheckState, len(s.states))
	for name, state := range s.states {
		out[name] = *state
	}
	return out
}

// HTTPProbe expects a 200 from url within attempts tries, waiting delay
// before the first retry and doubling it after each.
func HTTPProbe(client *http.Client, url string, attempts int, delay time.Duration) Probe {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if attempts < 1 {
		attempts = 1
	}
	return func(ctx context.Context) error {
		var lastErr error
		wait := delay
		for attempt := 0; attempt < attempts; attempt++ {
			if attempt > 0 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(wait):
				}
				wait *= 2
			}

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return fmt.Errorf("bad health url %s: %w", url, err)
			}
			resp, err := client.Do(req)
			if err != nil {
				lastErr = fmt.Errorf("health check request failed: %w", err)
				continue
			}
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
			lastErr = fmt.Errorf("health check returned status %d", resp.StatusCode)
		}
		return lastErr
	}
}

// StatusReader is the bot's status file.
type StatusReader interface {
	Read() (status.Status, error)
	SetError(value bool) error
}

// StatusProbe fails once for every error the bot reports, then clears the
// flag so the next run sees only new errors.
func StatusProbe(file StatusReader) Probe {
	return func(context.Context) error {
		current, err := file.Read()
		if err != nil {
			return fmt.Errorf("could not read status file: %w", err)
		}
		if !current.Error {
			return nil
		}
		if err := file.SetError(false); err != nil {
			return fmt.Errorf("bot reported an error and the flag could not be cleared: %w", err)
		}
		return fmt.Errorf("bot reported an error, check its logs")
	}
}
