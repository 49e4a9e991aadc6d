package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/Soypete/mathy-bot/ai"
	"github.com/Soypete/mathy-bot/config"
	"github.com/Soypete/mathy-bot/daily"
	"github.com/Soypete/mathy-bot/database"
	"github.com/Soypete/mathy-bot/discord"
	"github.com/Soypete/mathy-bot/jobs"
	"github.com/Soypete/mathy-bot/logging"
	"github.com/Soypete/mathy-bot/metrics"
	"github.com/Soypete/mathy-bot/status"
	"golang.org/x/sync/errgroup"
)

// exitRestart tells the supervisor the bot asked to be restarted.
const exitRestart = 3

func main() {
	var configPath string
	var logLevel string
	flag.StringVar(&configPath, "config", "", "path to the YAML config file")
	flag.StringVar(&logLevel, "logLevel", "", "Log level (debug, info, warn, error), overrides the config")
	flag.Parse()

	os.Exit(run(configPath, logLevel))
}

func run(configPath, logLevel string) int {
	started := time.Now()

	cfg, err := config.Load(configPath)
	if err != nil {
		logging.Default().Error("failed to load config", "error", err.Error())
		return 1
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	logger, logFile, err := logging.NewFileLogger(logging.LogLevel(cfg.LogLevel), cfg.Paths.LogDir, started)
	if err != nil {
		logging.Default().Error("failed to open log file", "error", err.Error())
		return 1
	}
	defer logFile.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var restart atomic.Bool
	shutdown := func(reason string) {
		logger.Info("shutdown requested", "reason", reason)
		restart.Store(true)
		cancel()
	}

	// the flag stays as it was until startup succeeds; failures below raise it
	statusFile := status.NewFile(cfg.Paths.StatusFile)

	db, err := database.Open(ctx, cfg.Database.Driver, cfg.Database.URL, logger)
	if err != nil {
		return failStartup(logger, statusFile, "failed to connect to database", "driver", cfg.Database.Driver, "error", err.Error())
	}
	defer db.Close()

	model, err := ai.NewModel(ctx, cfg.ModelConfig(), logger)
	if err != nil {
		return failStartup(logger, statusFile, "failed to setup LLM", "provider", cfg.LLM.Provider, "error", err.Error())
	}
	llm := ai.NewClient(model, logger,
		ai.WithOwnerID(cfg.Discord.OwnerID),
		ai.WithModelName(cfg.LLM.Model),
		ai.WithMemory(ai.NewMemory(ai.DefaultHistorySize)))

	journal, err := logging.OpenJournal(cfg.Paths.JournalPath)
	if err != nil {
		return failStartup(logger, statusFile, "failed to open interaction journal", "error", err.Error())
	}
	defer journal.Close()

	gate, err := cfg.Window()
	if err != nil {
		return failStartup(logger, statusFile, "invalid daily window", "error", err.Error())
	}

	// handlers only run after Open, by which time the scheduler exists
	var scheduler *daily.Scheduler
	bot, err := discord.Setup(discord.Options{
		Token:          cfg.Discord.Token,
		OwnerID:        cfg.Discord.OwnerID,
		MemberRoleName: cfg.Discord.MemberRoleName,
		LLM:            llm,
		Votes:          discord.VotesFunc(func(ctx context.Context) (string, error) { return scheduler.Votes(ctx) }),
		DB:             db,
		Journal:        journal,
		Status:         statusFile,
		Shutdown:       shutdown,
		Logger:         logger,
	})
	if err != nil {
		return failStartup(logger, statusFile, "failed to setup discord session", "error", err.Error())
	}

	scheduler = daily.NewScheduler(gate, llm, bot.DailyChannel(cfg.Discord.DailyChannelID), db, statusFile, logger,
		daily.WithMention(cfg.Mention()),
		daily.WithPollInterval(cfg.Daily.PollInterval))

	runner := jobs.NewRunner(gate.Location(), logger)
	if err := runner.Add("vote_summary", cfg.Jobs.SummarySpec, 5*time.Minute, scheduler.Summarize); err != nil {
		return failStartup(logger, statusFile, "failed to schedule vote summary", "error", err.Error())
	}
	if cfg.Jobs.RestartMinUptime > 0 {
		restarter := jobs.NewRestarter(started, cfg.Jobs.RestartMinUptime, shutdown, logger)
		if err := runner.Add("restart", cfg.Jobs.RestartSpec, time.Minute, restarter.Run); err != nil {
			return failStartup(logger, statusFile, "failed to schedule restart", "error", err.Error())
		}
	}

	if err := bot.Open(); err != nil {
		return failStartup(logger, statusFile, "failed to open discord session", "error", err.Error())
	}
	defer bot.Close()

	if err := statusFile.Reset(); err != nil {
		logger.Error("failed to reset status file", "path", statusFile.Path(), "error", err.Error())
		return 1
	}
	if err := scheduler.Rehydrate(ctx); err != nil {
		// the first tick looks the problem up again
		logger.Warn("could not load today's problem", "error", err.Error())
	}

	server := metrics.SetupServer(cfg.MetricsAddr)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return scheduler.Run(gctx)
	})
	g.Go(func() error {
		return runner.Run(gctx)
	})
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	logger.Info("Mathy is running", "metrics", cfg.MetricsAddr, "channel", cfg.Discord.DailyChannelID)
	err = g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("bot stopped with error", "error", err.Error())
		return 1
	}

	if restart.Load() {
		logger.Info("exiting for restart")
		return exitRestart
	}
	logger.Info("Shutting down")
	return 0
}

// errorSink is the status file flag raised when the bot cannot start.
type errorSink interface {
	SetError(value bool) error
}

func failStartup(logger *logging.Logger, sink errorSink, msg string, args ...any) int {
	logger.Error(msg, args...)
	if err := sink.SetError(true); err != nil {
		logger.Error("failed to raise status error flag", "error", err.Error())
	}
	return 1
}
