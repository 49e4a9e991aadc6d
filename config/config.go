// Package config loads the bot configuration: defaults, an optional YAML file
// and environment overrides for secrets. A .env file in the working directory
// is loaded into the environment first.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/Soypete/mathy-bot/ai"
	"github.com/Soypete/mathy-bot/daily"
	"github.com/Soypete/mathy-bot/database"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config is the full configuration of the bot.
type Config struct {
	LogLevel string `yaml:"log_level"`

	Discord  DiscordConfig  `yaml:"discord"`
	Daily    DailyConfig    `yaml:"daily"`
	Jobs     JobsConfig     `yaml:"jobs"`
	LLM      LLMConfig      `yaml:"llm"`
	Database DatabaseConfig `yaml:"database"`
	Paths    PathsConfig    `yaml:"paths"`
	Watchdog WatchdogConfig `yaml:"watchdog"`

	// MetricsAddr serves /metrics and /healthz.
	MetricsAddr string `yaml:"metrics_addr"`
}

type DiscordConfig struct {
	// Token is only read from DISCORD_TOKEN.
	Token          string `yaml:"-"`
	DailyChannelID string `yaml:"daily_channel_id"`
	// AnnounceRoleID is pinged with every problem and summary. Optional.
	AnnounceRoleID string `yaml:"announce_role_id"`
	// MemberRoleName is given to every member that joins.
	MemberRoleName string `yaml:"member_role_name"`
	OwnerID        string `yaml:"owner_id"`
}

type DailyConfig struct {
	Timezone     string        `yaml:"timezone"`
	WindowStart  string        `yaml:"window_start"`
	WindowEnd    string        `yaml:"window_end"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

type JobsConfig struct {
	// SummarySpec and RestartSpec are standard five field cron expressions
	// evaluated in the daily timezone.
	SummarySpec string `yaml:"summary_spec"`
	RestartSpec string `yaml:"restart_spec"`
	// RestartMinUptime keeps the restart job idle until the bot has been up this long.
	// Zero disables the restart job.
	RestartMinUptime time.Duration `yaml:"restart_min_uptime"`
}

type LLMConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
	APIKey   string `yaml:"-"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	URL    string `yaml:"url"`
}

type PathsConfig struct {
	StatusFile  string `yaml:"status_file"`
	LogDir      string `yaml:"log_dir"`
	JournalPath string `yaml:"journal_path"`
}

// WatchdogConfig configures the separate watchdog process.
type WatchdogConfig struct {
	HealthURL        string        `yaml:"health_url"`
	AlertChannelID   string        `yaml:"alert_channel_id"`
	CheckInterval    time.Duration `yaml:"check_interval"`
	AlertInterval    time.Duration `yaml:"alert_interval"`
	FailureThreshold int           `yaml:"failure_threshold"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Discord: DiscordConfig{
			MemberRoleName: "MathMind",
		},
		Daily: DailyConfig{
			Timezone:     "Asia/Kolkata",
			WindowStart:  "08:00",
			WindowEnd:    "08:30",
			PollInterval: time.Minute,
		},
		Jobs: JobsConfig{
			SummarySpec:      "0 0 * * *",
			RestartSpec:      "30 2 * * *",
			RestartMinUptime: 12 * time.Hour,
		},
		LLM: LLMConfig{
			Provider: ai.ProviderGemini,
			Model:    ai.DefaultGeminiModel,
		},
		Database: DatabaseConfig{
			Driver: database.DriverPostgres,
		},
		Paths: PathsConfig{
			StatusFile:  "bot_status.json",
			LogDir:      "logs",
			JournalPath: "message_logs.jsonl",
		},
		Watchdog: WatchdogConfig{
			HealthURL:        "http://127.0.0.1:6060/healthz",
			CheckInterval:    30 * time.Second,
			AlertInterval:    15 * time.Minute,
			FailureThreshold: 3,
		},
		MetricsAddr: ":6060",
	}
}

// Load reads .env, the YAML file at path (optional) and the environment.
func Load(path string) (*Config, error) {
	// a missing .env is normal in production
	_ = godotenv.Load()
	return load(path, os.LookupEnv, validateConfig)
}

// LoadWatchdog is Load for the watchdog process, which only needs the
// Discord token, the alert channel and the watchdog section.
func LoadWatchdog(path string) (*Config, error) {
	_ = godotenv.Load()
	return load(path, os.LookupEnv, validateWatchdog)
}

func load(path string, lookup func(string) (string, bool), validate func(*Config) error) (*Config, error) {
	config := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", path)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, errors.Wrap(err, "failed to parse config YAML")
		}
	}

	applyEnv(config, lookup)

	if err := validate(config); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return config, nil
}

func applyEnv(config *Config, lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set("DISCORD_TOKEN", &config.Discord.Token)
	set("OWNER_ID", &config.Discord.OwnerID)
	set("DATABASE_URL", &config.Database.URL)
	set("DATABASE_DRIVER", &config.Database.Driver)
	set("LOG_LEVEL", &config.LogLevel)
	set("LLAMA_CPP_PATH", &config.LLM.BaseURL)
	set("ALERT_CHANNEL_ID", &config.Watchdog.AlertChannelID)
	set("HEALTH_URL", &config.Watchdog.HealthURL)

	switch config.LLM.Provider {
	case ai.ProviderGemini:
		set("GEMINI_API_KEY", &config.LLM.APIKey)
	case ai.ProviderOpenAI:
		set("OPENAI_API_KEY", &config.LLM.APIKey)
	}
}

// validateConfig ensures required fields are present and values are sensible
func validateConfig(config *Config) error {
	if config.Discord.Token == "" {
		return fmt.Errorf("DISCORD_TOKEN is required")
	}
	if config.Discord.DailyChannelID == "" {
		return fmt.Errorf("discord.daily_channel_id is required")
	}

	if _, err := config.Location(); err != nil {
		return err
	}
	if _, err := config.Window(); err != nil {
		return err
	}
	if config.Daily.PollInterval <= 0 {
		return fmt.Errorf("daily.poll_interval must be positive, got %s", config.Daily.PollInterval)
	}

	if _, err := cron.ParseStandard(config.Jobs.SummarySpec); err != nil {
		return fmt.Errorf("jobs.summary_spec %q: %w", config.Jobs.SummarySpec, err)
	}
	if _, err := cron.ParseStandard(config.Jobs.RestartSpec); err != nil {
		return fmt.Errorf("jobs.restart_spec %q: %w", config.Jobs.RestartSpec, err)
	}
	if config.Jobs.RestartMinUptime < 0 {
		return fmt.Errorf("jobs.restart_min_uptime must be non-negative, got %s", config.Jobs.RestartMinUptime)
	}

	switch config.LLM.Provider {
	case ai.ProviderGemini:
		if config.LLM.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for the gemini provider")
		}
	case ai.ProviderOpenAI:
		if config.LLM.BaseURL == "" && config.LLM.APIKey == "" {
			return fmt.Errorf("openai provider needs LLAMA_CPP_PATH or OPENAI_API_KEY")
		}
	default:
		return fmt.Errorf("llm.provider must be %q or %q, got %q", ai.ProviderGemini, ai.ProviderOpenAI, config.LLM.Provider)
	}

	switch config.Database.Driver {
	case database.DriverPostgres, database.DriverSQLite:
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", database.DriverPostgres, database.DriverSQLite, config.Database.Driver)
	}
	if config.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	return nil
}

func validateWatchdog(config *Config) error {
	if config.Discord.Token == "" {
		return fmt.Errorf("DISCORD_TOKEN is required")
	}
	w := config.Watchdog
	if w.AlertChannelID == "" {
		return fmt.Errorf("watchdog.alert_channel_id is required")
	}
	if w.HealthURL == "" {
		return fmt.Errorf("watchdog.health_url is required")
	}
	if w.CheckInterval <= 0 || w.AlertInterval <= 0 {
		return fmt.Errorf("watchdog intervals must be positive, got check %s alert %s", w.CheckInterval, w.AlertInterval)
	}
	if w.FailureThreshold < 1 {
		return fmt.Errorf("watchdog.failure_threshold must be at least 1, got %d", w.FailureThreshold)
	}
	return nil
}

// Location is the timezone every daily schedule runs in.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Daily.Timezone)
	if err != nil {
		return nil, fmt.Errorf("daily.timezone %q: %w", c.Daily.Timezone, err)
	}
	return loc, nil
}

// Window builds the send window gate.
func (c *Config) Window() (*daily.Gate, error) {
	loc, err := c.Location()
	if err != nil {
		return nil, err
	}
	start, err := daily.ParseTimeOfDay(c.Daily.WindowStart)
	if err != nil {
		return nil, fmt.Errorf("daily.window_start: %w", err)
	}
	end, err := daily.ParseTimeOfDay(c.Daily.WindowEnd)
	if err != nil {
		return nil, fmt.Errorf("daily.window_end: %w", err)
	}
	gate, err := daily.NewGate(loc, start, end)
	if err != nil {
		return nil, fmt.Errorf("daily window: %w", err)
	}
	return gate, nil
}

// Mention is the prefix of every scheduled post.
func (c *Config) Mention() string {
	if c.Discord.AnnounceRoleID == "" {
		return ""
	}
	return fmt.Sprintf("<@&%s> \n\n", c.Discord.AnnounceRoleID)
}

// ModelConfig converts the LLM section for ai.NewModel.
func (c *Config) ModelConfig() ai.ModelConfig {
	return ai.ModelConfig{
		Provider: c.LLM.Provider,
		Model:    c.LLM.Model,
		BaseURL:  c.LLM.BaseURL,
		APIKey:   c.LLM.APIKey,
	}
}
