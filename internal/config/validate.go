package config

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/UltraBlur/Elephant-Toolkits-Open/pkg/timecode"
)

func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.History.Validate(); err != nil {
		return fmt.Errorf("history config: %w", err)
	}

	// Redis settings only matter when something talks to Redis.
	if c.History.Backend == "redis" {
		if err := c.Redis.Validate(); err != nil {
			return fmt.Errorf("redis config: %w", err)
		}
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("metrics config: %w", err)
	}

	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("engine config: %w", err)
	}

	if err := c.Batch.Validate(); err != nil {
		return fmt.Errorf("batch config: %w", err)
	}

	return nil
}

func (s *ServerConfig) Validate() error {
	if s.HTTPPort < 1 || s.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", s.HTTPPort)
	}

	if s.ReadTimeout <= 0 || s.WriteTimeout <= 0 {
		return fmt.Errorf("read and write timeouts must be positive")
	}

	if s.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative")
	}

	if s.RateLimit > 0 && s.RateBurst < 1 {
		return fmt.Errorf("rate_burst must be at least 1 when rate_limit is set")
	}

	return nil
}

func (h *HistoryConfig) Validate() error {
	switch h.Backend {
	case "memory", "redis":
	case "sqlite":
		if h.SQLitePath == "" {
			return fmt.Errorf("sqlite_path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("invalid history backend: %s", h.Backend)
	}

	if h.Limit < 1 {
		return fmt.Errorf("limit must be positive")
	}

	if h.Backend == "redis" && h.RedisKey == "" {
		return fmt.Errorf("redis_key is required for the redis backend")
	}

	return nil
}

func (r *RedisConfig) Validate() error {
	if len(r.Addresses) == 0 {
		return fmt.Errorf("at least one Redis address is required")
	}

	if r.DB < 0 || r.DB > 15 {
		return fmt.Errorf("invalid Redis DB: %d", r.DB)
	}

	if r.PoolSize < 1 {
		return fmt.Errorf("pool_size must be positive")
	}

	if r.MinIdleConns > r.PoolSize {
		return fmt.Errorf("min_idle_conns cannot exceed pool_size")
	}

	return nil
}

func (l *LoggingConfig) Validate() error {
	if _, err := logrus.ParseLevel(l.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", l.Level)
	}

	if l.Format != "json" && l.Format != "text" {
		return fmt.Errorf("invalid log format: %s", l.Format)
	}

	if l.Output == "" {
		return fmt.Errorf("log output is required")
	}

	if l.Output != "stdout" && l.Output != "stderr" {
		if l.MaxSize < 1 {
			return fmt.Errorf("max_size must be positive for file output")
		}
	}

	return nil
}

func (m *MetricsConfig) Validate() error {
	if !m.Enabled {
		return nil
	}

	if m.Port < 1 || m.Port > 65535 {
		return fmt.Errorf("invalid metrics port: %d", m.Port)
	}

	if !strings.HasPrefix(m.Path, "/") {
		return fmt.Errorf("metrics path must start with /")
	}

	return nil
}

func (e *EngineConfig) Validate() error {
	rate, err := timecode.ParseRate(e.DefaultRate)
	if err != nil {
		return fmt.Errorf("invalid default_rate %q: %w", e.DefaultRate, err)
	}

	if err := timecode.ValidateCustomRate(rate); err != nil {
		return fmt.Errorf("invalid default_rate %q: %w", e.DefaultRate, err)
	}

	if _, err := timecode.ParseFormat(e.DefaultFormat); err != nil {
		return fmt.Errorf("invalid default_format: %w", err)
	}

	if e.DropFrame && !timecode.IsDropFrameEligible(rate) {
		return fmt.Errorf("drop_frame is not available at %s fps", rate)
	}

	return nil
}

func (b *BatchConfig) Validate() error {
	if b.ToolPath == "" {
		return fmt.Errorf("tool_path is required")
	}

	if b.ToolTimeout <= 0 {
		return fmt.Errorf("tool_timeout must be positive")
	}

	if b.Concurrency < 1 || b.Concurrency > 64 {
		return fmt.Errorf("concurrency must be between 1 and 64")
	}

	if b.SampleRate <= 0 {
		return fmt.Errorf("sample_rate must be positive")
	}

	if b.ToolRate < 0 {
		return fmt.Errorf("tool_rate must not be negative")
	}

	if b.ToolRate > 0 && b.ToolBurst < 1 {
		return fmt.Errorf("tool_burst must be at least 1 when tool_rate is set")
	}

	return nil
}
