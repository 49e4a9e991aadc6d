package daily

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Soypete/mathy-bot/database"
	"github.com/Soypete/mathy-bot/logging"
	"github.com/Soypete/mathy-bot/metrics"
	"github.com/Soypete/mathy-bot/types"
)

const (
	defaultPollInterval = time.Minute
	// summaryLookback picks the problem a summary run is about: the calendar
	// day containing now-12h. A midnight run summarizes the day that just ended.
	summaryLookback = 12 * time.Hour
)

// state is owned by the Scheduler. Run is the only writer of lastSent; the
// summary job and commands only read.
type state struct {
	lastSent       time.Time
	problem        *types.DailyProblem
	sleepAnnounced bool
}

// Scheduler posts one problem per day inside the send window and summarizes
// the votes on it later. The store is the authority on whether today's problem
// was already posted, so a restart inside the window does not post twice.
type Scheduler struct {
	gate         *Gate
	gen          Generator
	channel      Channel
	store        Store
	status       StatusSink
	composer     *Composer
	logger       *logging.Logger
	mention      string
	pollInterval time.Duration
	now          func() time.Time

	mu    sync.RWMutex
	state state
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithMention prefixes posted problems and summaries, e.g. a role ping.
func WithMention(mention string) Option {
	return func(s *Scheduler) {
		s.mention = mention
	}
}

// WithPollInterval sets how often Run evaluates the window.
func WithPollInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

func NewScheduler(gate *Gate, gen Generator, channel Channel, store Store, status StatusSink, logger *logging.Logger, opts ...Option) *Scheduler {
	if logger == nil {
		logger = logging.Default()
	}
	s := &Scheduler{
		gate:         gate,
		gen:          gen,
		channel:      channel,
		store:        store,
		status:       status,
		composer:     NewComposer(gen),
		logger:       logger,
		pollInterval: defaultPollInterval,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Current returns the problem being tracked for voting, if any.
func (s *Scheduler) Current() (types.DailyProblem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.problem == nil {
		return types.DailyProblem{}, false
	}
	return *s.state.problem, true
}

// Rehydrate loads today's problem from the store after a restart.
func (s *Scheduler) Rehydrate(ctx context.Context) error {
	today := s.gate.Today(s.now())
	problem, err := s.store.GetDailyProblem(ctx, today)
	if errors.Is(err, database.ErrNotFound) {
		s.logger.Info("no daily problem stored for today", "date", today.Format(time.DateOnly))
		return nil
	}
	if err != nil {
		return s.fail(StageLookup, today, err)
	}

	s.mu.Lock()
	s.state.problem = &problem
	s.state.lastSent = today
	s.mu.Unlock()

	s.logger.Info("loaded today's daily problem from store",
		"date", problem.DateKey(),
		"messageID", problem.Message(),
		"answer", string(problem.Letter()))
	return nil
}

// Run ticks until ctx is done. Tick failures are logged and retried on the
// next tick; they never end the loop.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	s.logger.Info("daily problem scheduler started", "pollInterval", s.pollInterval.String())
	_ = s.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("daily problem scheduler shutting down")
			return ctx.Err()
		case <-ticker.C:
			_ = s.Tick(ctx)
		}
	}
}

// Tick posts today's problem when the window is open and no problem is stored
// for today. It returns the StageError of a failed attempt.
func (s *Scheduler) Tick(ctx context.Context) error {
	now := s.now()

	s.mu.RLock()
	lastSent := s.state.lastSent
	s.mu.RUnlock()

	if !s.gate.Due(now, lastSent) {
		s.announceSleep(now)
		return nil
	}

	today := s.gate.Today(now)
	existing, err := s.store.GetDailyProblem(ctx, today)
	switch {
	case err == nil:
		s.mu.Lock()
		s.state.problem = &existing
		s.state.lastSent = today
		s.mu.Unlock()
		s.logger.Info("daily problem already stored for today, not resending", "date", existing.DateKey())
		return nil
	case !errors.Is(err, database.ErrNotFound):
		return s.fail(StageLookup, today, err)
	}

	return s.send(ctx, today)
}

// send publishes and reacts before storing, so a stored row always names a
// message that carries every option reaction. If any step fails nothing is
// stored and the next tick runs the whole sequence again.
func (s *Scheduler) send(ctx context.Context, today time.Time) error {
	raw, err := s.gen.Generate(ctx, buildProblemPrompt(s.previousProblem(ctx)))
	if err != nil {
		return s.fail(StageGenerate, today, err)
	}

	text, letter := ParseProblem(TrimToHeader(raw))
	if letter == "" {
		s.logger.Warn("generated problem has no answer key", "date", today.Format(time.DateOnly))
	}

	messageID, err := s.channel.Publish(ctx, s.mention+text)
	if err != nil {
		return s.fail(StagePublish, today, err)
	}
	s.logger.Info("daily problem sent", "date", today.Format(time.DateOnly), "answer", string(letter), "option", letter.Symbol(), "messageID", messageID)

	for _, symbol := range types.OptionSymbols() {
		if err := s.channel.AddReaction(ctx, messageID, symbol); err != nil {
			return s.fail(StageReact, today, err)
		}
	}

	problem, err := types.NewDailyProblem(today, text, letter, messageID)
	if err != nil {
		return s.fail(StageStore, today, err)
	}
	if err := s.store.UpsertDailyProblem(ctx, problem); err != nil {
		return s.fail(StageStore, today, err)
	}

	s.mu.Lock()
	s.state.problem = &problem
	s.state.lastSent = today
	s.state.sleepAnnounced = false
	s.mu.Unlock()

	metrics.DailyProblemsSent.Inc()
	return nil
}

func (s *Scheduler) previousProblem(ctx context.Context) string {
	latest, err := s.store.LatestDailyProblem(ctx)
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			s.logger.Warn("could not load previous daily problem", "error", err.Error())
		}
		return ""
	}
	return latest.ProblemText
}

func (s *Scheduler) announceSleep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.sleepAnnounced {
		return
	}
	next := s.gate.NextSend(now)
	wait := next.Sub(now)
	s.logger.Info("sleeping until next daily problem",
		"next", next.Format(time.RFC3339),
		"hours", int(wait.Hours()),
		"minutes", int(wait.Minutes())%60)
	s.state.sleepAnnounced = true
}

// Summarize posts the vote summary for the most recent problem. Problems
// without a posted message are skipped.
func (s *Scheduler) Summarize(ctx context.Context) error {
	now := s.now()
	target := s.gate.Today(now.Add(-summaryLookback))

	problem, ok := s.Current()
	if !ok || problem.DateKey() != target.Format(time.DateOnly) {
		stored, err := s.store.GetDailyProblem(ctx, target)
		if errors.Is(err, database.ErrNotFound) {
			s.logger.Info("no active daily problem for vote summary", "date", target.Format(time.DateOnly))
			metrics.VoteSummaries.WithLabelValues("skipped").Inc()
			return nil
		}
		if err != nil {
			return s.fail(StageLookup, target, err)
		}
		problem = stored
	}

	if problem.Message() == "" {
		s.logger.Info("daily problem has no posted message, skipping vote summary", "date", problem.DateKey())
		metrics.VoteSummaries.WithLabelValues("skipped").Inc()
		return nil
	}

	raw, err := s.channel.FetchReactions(ctx, problem.Message())
	if err != nil {
		return s.fail(StageFetch, target, err)
	}
	tally := NewTally(raw)

	summary, err := s.composer.Compose(ctx, problem, tally)
	if err != nil {
		return s.fail(StageSummary, target, err)
	}

	text := summary.Text
	outcome := "no_votes"
	if !summary.NoVotes {
		text = s.mention + summary.Text + "\n\n" + summary.Breakdown
		outcome = "summary"
	}
	if _, err := s.channel.Publish(ctx, text); err != nil {
		return s.fail(StagePublish, target, err)
	}

	metrics.VoteSummaries.WithLabelValues(outcome).Inc()
	s.logger.Info("sent vote summary", "date", problem.DateKey(), "totalVotes", tally.Total(), "outcome", outcome)
	return nil
}

// Votes reports the live standings of the current problem.
func (s *Scheduler) Votes(ctx context.Context) (string, error) {
	problem, ok := s.Current()
	if !ok || problem.Message() == "" {
		return NoActiveProblemMessage, nil
	}
	raw, err := s.channel.FetchReactions(ctx, problem.Message())
	if err != nil {
		return "", &StageError{Stage: StageFetch, Date: problem.DateKey(), Err: err}
	}
	tally := NewTally(raw)
	if len(tally) == 0 {
		return NoVotesYetMessage, nil
	}
	return Standings(problem.Option(), tally), nil
}

func (s *Scheduler) fail(stage Stage, date time.Time, err error) error {
	stageErr := &StageError{Stage: stage, Date: date.Format(time.DateOnly), Err: err}
	s.logger.Error("daily problem operation failed",
		"stage", string(stage),
		"date", stageErr.Date,
		"error", err.Error())
	metrics.DailyProblemFailures.WithLabelValues(string(stage)).Inc()
	if s.status != nil {
		if err := s.status.SetError(true); err != nil {
			s.logger.Error("failed to raise status error flag", "error", err.Error())
		}
	}
	return stageErr
}
