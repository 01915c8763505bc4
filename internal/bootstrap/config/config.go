package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"voltway/internal/bootstrap/logging"
	"voltway/internal/errs"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Database  DatabaseConfig  `mapstructure:"database"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Retry     RetryConfig     `mapstructure:"retry"`
	Assistant AssistantConfig `mapstructure:"assistant"`
	Planning  PlanningConfig  `mapstructure:"planning"`
	Ingest    IngestConfig    `mapstructure:"ingest"`
	HTTP      HTTPConfig      `mapstructure:"http"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	// SimulatedToday pins every date-relative calculation to a fixed day
	// (format 2006-01-02). Empty means wall clock.
	SimulatedToday string `mapstructure:"simulated_today"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type LLMConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// RetryConfig bounds retries on rate-limited or failed provider calls.
// Applies to classification and tool-selection alike.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	Delay       time.Duration `mapstructure:"delay"`
}

type AssistantConfig struct {
	// MaxToolIterations caps the dispatch loop; the loop never runs unbounded.
	MaxToolIterations int `mapstructure:"max_tool_iterations"`
	// HistoryTurns limits how many prior conversation turns are replayed.
	HistoryTurns int `mapstructure:"history_turns"`
}

type PlanningConfig struct {
	ServiceLevelZ float64 `mapstructure:"service_level_z"`
	// DemandSigmaCoefficient is the fallback proxy for demand stddev when the
	// caller does not supply one: sigma = coefficient * averageDailyDemand.
	DemandSigmaCoefficient float64 `mapstructure:"demand_sigma_coefficient"`
	LowStockThreshold      int     `mapstructure:"low_stock_threshold"`
}

type IngestConfig struct {
	Dir         string `mapstructure:"dir"`
	NATSUrl     string `mapstructure:"nats_url"`
	NATSSubject string `mapstructure:"nats_subject"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

func Load(ctx context.Context, configFile string) (Config, error) {
	if ctx == nil {
		return Config{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Config{}, errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.config"))

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("VOLTWAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			// Keep default and env-backed config when no file is provided.
			logging.Warn(logCtx, "config file not found, fallback to defaults and env")
		} else {
			return Config{}, errs.Wrap(err, "read config")
		}
	} else {
		logging.Info(logCtx, "using config file", slog.String("path", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errs.Wrap(err, "unmarshal config")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	logging.Info(
		logCtx,
		"config loaded",
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
		slog.String("database_driver", cfg.Database.Driver),
		slog.String("simulated_today", cfg.App.SimulatedToday),
	)

	return cfg, nil
}

func (c Config) Validate() error {
	if c.Database.DSN == "" {
		return errors.New("database.dsn is required")
	}
	if c.Retry.MaxAttempts < 1 {
		return errors.New("retry.max_attempts must be >= 1")
	}
	if c.Retry.Delay < 0 {
		return errors.New("retry.delay must be >= 0")
	}
	if c.Assistant.MaxToolIterations < 1 {
		return errors.New("assistant.max_tool_iterations must be >= 1")
	}
	if c.Planning.ServiceLevelZ <= 0 {
		return errors.New("planning.service_level_z must be > 0")
	}
	if c.Planning.DemandSigmaCoefficient < 0 {
		return errors.New("planning.demand_sigma_coefficient must be >= 0")
	}
	if c.App.SimulatedToday != "" {
		if _, err := time.Parse("2006-01-02", c.App.SimulatedToday); err != nil {
			return errs.Wrapf(err, "parse app.simulated_today %q", c.App.SimulatedToday)
		}
	}
	return nil
}

// Clock resolves the injectable clock: a fixed day when simulated_today is
// set, otherwise UTC wall clock. Every date-relative calculation receives
// this instead of reading time.Now itself.
func (c Config) Clock() (func() time.Time, error) {
	if c.App.SimulatedToday == "" {
		return func() time.Time { return time.Now().UTC() }, nil
	}

	day, err := time.Parse("2006-01-02", c.App.SimulatedToday)
	if err != nil {
		return nil, fmt.Errorf("parse simulated today: %w", err)
	}
	fixed := day.UTC()
	return func() time.Time { return fixed }, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "voltway")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.simulated_today", "")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "data/voltway.sqlite")

	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.temperature", 0.0)
	v.SetDefault("llm.timeout", "30s")

	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.delay", "10s")

	v.SetDefault("assistant.max_tool_iterations", 6)
	v.SetDefault("assistant.history_turns", 4)

	v.SetDefault("planning.service_level_z", 1.65)
	v.SetDefault("planning.demand_sigma_coefficient", 0.2)
	v.SetDefault("planning.low_stock_threshold", 50)

	v.SetDefault("ingest.dir", "data/emails")
	v.SetDefault("ingest.nats_url", "")
	v.SetDefault("ingest.nats_subject", "voltway.inbox")

	v.SetDefault("http.addr", ":8080")
}
