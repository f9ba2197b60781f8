package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/UltraBlur/Elephant-Toolkits-Open/pkg/timecode"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	History HistoryConfig `mapstructure:"history"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Batch   BatchConfig   `mapstructure:"batch"`
	Sentry  SentryConfig  `mapstructure:"sentry"`
}

type ServerConfig struct {
	HTTPPort        int           `mapstructure:"http_port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// Token bucket applied to API requests. Zero disables limiting.
	RateLimit float64 `mapstructure:"rate_limit"` // requests per second
	RateBurst int     `mapstructure:"rate_burst"`

	CORSOrigin string `mapstructure:"cors_origin"`
}

type HistoryConfig struct {
	Backend    string `mapstructure:"backend"` // memory, redis or sqlite
	Limit      int    `mapstructure:"limit"`
	SQLitePath string `mapstructure:"sqlite_path"`
	RedisKey   string `mapstructure:"redis_key"`
}

type RedisConfig struct {
	Addresses    []string      `mapstructure:"addresses"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	MaxRetries   int           `mapstructure:"max_retries"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`     // json or text
	Output     string `mapstructure:"output"`     // stdout, stderr, or file path
	MaxSize    int    `mapstructure:"max_size"`   // MB
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
	Port    int    `mapstructure:"port"`
}

// EngineConfig holds the defaults the tools start with.
type EngineConfig struct {
	DefaultRate   string `mapstructure:"default_rate"`
	DefaultFormat string `mapstructure:"default_format"`
	DropFrame     bool   `mapstructure:"drop_frame"`
	Strict        bool   `mapstructure:"strict"`
}

type BatchConfig struct {
	ToolPath    string        `mapstructure:"tool_path"`
	ToolTimeout time.Duration `mapstructure:"tool_timeout"`
	Concurrency int           `mapstructure:"concurrency"`
	SampleRate  int64         `mapstructure:"sample_rate"` // used when a file reports none
	ToolRate    float64       `mapstructure:"tool_rate"`   // tool invocations per second, zero is unlimited
	ToolBurst   int           `mapstructure:"tool_burst"`
}

type SentryConfig struct {
	DSN         string `mapstructure:"dsn"`
	Environment string `mapstructure:"environment"`
}

// Load reads configuration from configPath. An empty path uses defaults and
// TCTOOL_ environment variables only.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	// Environment variable override
	v.SetEnvPrefix("TCTOOL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.rate_limit", 50)
	v.SetDefault("server.rate_burst", 100)
	v.SetDefault("server.cors_origin", "*")

	// History defaults
	v.SetDefault("history.backend", "memory")
	v.SetDefault("history.limit", 10)
	v.SetDefault("history.sqlite_path", "./data/history.db")
	v.SetDefault("history.redis_key", "tctool:history")

	// Redis defaults
	v.SetDefault("redis.addresses", []string{"localhost:6379"})
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.dial_timeout", "5s")
	v.SetDefault("redis.read_timeout", "3s")
	v.SetDefault("redis.write_timeout", "3s")
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 1)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.max_size", 100)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age", 30)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.port", 9090)

	// Engine defaults
	v.SetDefault("engine.default_rate", "25")
	v.SetDefault("engine.default_format", string(timecode.FormatSMPTE))
	v.SetDefault("engine.drop_frame", false)
	v.SetDefault("engine.strict", false)

	// Batch defaults
	v.SetDefault("batch.tool_path", "bwfmetaedit")
	v.SetDefault("batch.tool_timeout", "30s")
	v.SetDefault("batch.concurrency", 4)
	v.SetDefault("batch.sample_rate", 48000)
	v.SetDefault("batch.tool_rate", 0)
	v.SetDefault("batch.tool_burst", 1)

	// Sentry defaults
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "development")
}

// Rate returns the parsed default frame rate.
func (e *EngineConfig) Rate() timecode.Rate {
	r, err := timecode.ParseRate(e.DefaultRate)
	if err != nil {
		return timecode.Rate25
	}
	return r
}

// Format returns the parsed default format.
func (e *EngineConfig) Format() timecode.Format {
	f, err := timecode.ParseFormat(e.DefaultFormat)
	if err != nil {
		return timecode.FormatSMPTE
	}
	return f
}

// Options returns the decode options configured for the engine.
func (e *EngineConfig) Options() timecode.Options {
	return timecode.Options{DropFrame: e.DropFrame, Strict: e.Strict}
}
