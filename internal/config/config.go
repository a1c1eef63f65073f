// Package config loads service settings from defaults, an optional YAML
// file and TERMPLAN_ environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/cyp0633/termplan/internal/reload"
	"github.com/cyp0633/termplan/planner/recurrence"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the complete service configuration.
type Config struct {
	Server   ServerConfig  `mapstructure:"server"`
	Log      LogConfig     `mapstructure:"log"`
	Holidays HolidayConfig `mapstructure:"holidays"`
	Plans    PlansConfig   `mapstructure:"plans"`
	Engine   EngineConfig  `mapstructure:"engine"`
}

// ServerConfig HTTP server settings
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LogConfig logging settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// HolidayConfig names the holiday file. Empty means the built-in table.
type HolidayConfig struct {
	File string `mapstructure:"file"`
}

// PlansConfig is the directory plan files are loaded from. A non-empty
// Reload cron schedule re-reads it while serving.
type PlansConfig struct {
	Dir    string `mapstructure:"dir"`
	Reload string `mapstructure:"reload"`
}

// EngineConfig controls schedule caching.
type EngineConfig struct {
	Cache           bool          `mapstructure:"cache"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
	CacheMaxEntries int           `mapstructure:"cache_max_entries"`
}

// Load reads configuration. Priority: environment > file > defaults. A
// missing file is not an error when path is empty.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "5s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("holidays.file", "")
	v.SetDefault("plans.dir", "plans")
	v.SetDefault("plans.reload", "")

	v.SetDefault("engine.cache", true)
	v.SetDefault("engine.cache_ttl", recurrence.DefaultCacheConfig.TTL.String())
	v.SetDefault("engine.cache_max_entries", recurrence.DefaultCacheConfig.MaxEntries)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("termplan")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("TERMPLAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// no config file, defaults and environment only
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadEnv exports the variables of a dotenv file into the process
// environment so the TERMPLAN_ overrides can live next to the service.
// Variables already set win. A missing file is not an error.
func LoadEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// Validate checks the settings that have no safe fallback.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("invalid config: server.addr must not be empty")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid config: unknown log.level %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid config: unknown log.format %q", c.Log.Format)
	}
	if c.Plans.Reload != "" {
		if err := reload.ValidateSchedule(c.Plans.Reload); err != nil {
			return fmt.Errorf("invalid config: plans.reload: %w", err)
		}
	}
	if c.Engine.Cache && c.Engine.CacheMaxEntries <= 0 {
		return fmt.Errorf("invalid config: engine.cache_max_entries must be positive")
	}
	return nil
}

// RecurrenceConfig converts the engine settings.
func (c *Config) RecurrenceConfig() recurrence.EngineConfig {
	if !c.Engine.Cache {
		return recurrence.DefaultEngineConfig
	}
	cache := recurrence.DefaultCacheConfig
	if c.Engine.CacheTTL > 0 {
		cache.TTL = c.Engine.CacheTTL
	}
	cache.MaxEntries = c.Engine.CacheMaxEntries
	return recurrence.EngineConfig{CacheEnabled: true, CacheConfig: cache}
}
