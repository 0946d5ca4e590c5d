// Package config loads application configuration from config.yaml and the
// environment and owns the global zap logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Horizons accepted by the AlphaVantage EARNINGS_CALENDAR endpoint.
var validHorizons = map[string]bool{
	"3month":  true,
	"6month":  true,
	"12month": true,
}

// Config holds the full application configuration.
type Config struct {
	AlphaVantage AlphaVantageConfig `yaml:"alphavantage" mapstructure:"alphavantage"`
	Paths        PathsConfig        `yaml:"paths" mapstructure:"paths"`
	Gate         GateConfig         `yaml:"gate" mapstructure:"gate"`
	Backfill     BackfillConfig     `yaml:"backfill" mapstructure:"backfill"`
	Log          LogConfig          `yaml:"log" mapstructure:"log"`
}

// AlphaVantageConfig holds the provider endpoint settings.
type AlphaVantageConfig struct {
	APIKey      string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	Horizon     string `yaml:"horizon" mapstructure:"horizon"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// PathsConfig holds the file-system locations of all persisted artifacts.
type PathsConfig struct {
	UniverseCSV string `yaml:"universe_csv" mapstructure:"universe_csv"`
	CacheJSON   string `yaml:"cache_json" mapstructure:"cache_json"`
	ArchiveDir  string `yaml:"archive_dir" mapstructure:"archive_dir"`
	HistoryDir  string `yaml:"history_dir" mapstructure:"history_dir"`
	RunlogDB    string `yaml:"runlog_db" mapstructure:"runlog_db"`
}

// GateConfig holds the sanity-gate row-count thresholds.
type GateConfig struct {
	MinRawRows      int `yaml:"min_raw_rows" mapstructure:"min_raw_rows"`
	MinFilteredRows int `yaml:"min_filtered_rows" mapstructure:"min_filtered_rows"`
}

// BackfillConfig configures the history backfill window.
type BackfillConfig struct {
	WindowDays int `yaml:"window_days" mapstructure:"window_days"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("EARNINGS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("alphavantage.base_url", "https://www.alphavantage.co/query")
	v.SetDefault("alphavantage.horizon", "3month")
	v.SetDefault("alphavantage.timeout_secs", 30)
	v.SetDefault("paths.universe_csv", "eps_calendar_universe.csv")
	v.SetDefault("paths.cache_json", "earnings_cache.json")
	v.SetDefault("paths.archive_dir", "earnings_archive")
	v.SetDefault("paths.history_dir", "earnings_history")
	v.SetDefault("paths.runlog_db", "earnings_runs.db")
	v.SetDefault("gate.min_raw_rows", 100)
	v.SetDefault("gate.min_filtered_rows", 10)
	v.SetDefault("backfill.window_days", 30)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if !validHorizons[cfg.AlphaVantage.Horizon] {
		return nil, eris.Errorf("config: invalid horizon %q (want 3month, 6month, or 12month)", cfg.AlphaVantage.Horizon)
	}

	return &cfg, nil
}

// RequireAPIKey fails fast when no provider key is configured.
// Checked before any file or network I/O so a misconfigured run is a no-op.
func (c *Config) RequireAPIKey() error {
	if c.AlphaVantage.APIKey == "" {
		return eris.New("config: alphavantage api_key is not set (export EARNINGS_ALPHAVANTAGE_API_KEY)")
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
