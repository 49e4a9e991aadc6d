package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Soypete/mathy-bot/config"
	"github.com/Soypete/mathy-bot/logging"
	"github.com/Soypete/mathy-bot/status"
	"github.com/Soypete/mathy-bot/watchdog"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.LoadWatchdog(configPath)
	if err != nil {
		logging.Default().Error("failed to load config", "error", err.Error())
		os.Exit(1)
	}
	logger := logging.NewLogger(logging.LogLevel(cfg.LogLevel), os.Stdout)

	alerter, err := watchdog.NewDiscordAlerter(cfg.Discord.Token, cfg.Watchdog.AlertChannelID, cfg.Discord.OwnerID, logger)
	if err != nil {
		logger.Error("failed to create Discord alerter", "error", err.Error())
		os.Exit(1)
	}

	checks := []watchdog.Check{
		{
			Name:      "Mathy health",
			Probe:     watchdog.HTTPProbe(nil, cfg.Watchdog.HealthURL, 3, time.Second),
			Threshold: cfg.Watchdog.FailureThreshold,
		},
		{
			Name:      "Mathy status",
			Probe:     watchdog.StatusProbe(status.NewFile(cfg.Paths.StatusFile)),
			Threshold: 1,
		},
	}
	svc := watchdog.NewService(checks, cfg.Watchdog.CheckInterval, cfg.Watchdog.AlertInterval, alerter, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting watchdog",
		"health_url", cfg.Watchdog.HealthURL,
		"status_file", cfg.Paths.StatusFile,
		"check_interval", cfg.Watchdog.CheckInterval.String(),
		"alert_interval", cfg.Watchdog.AlertInterval.String())

	if err := svc.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("watchdog error", "error", err.Error())
		os.Exit(1)
	}
	logger.Info("watchdog stopped")
}
