// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config aggregates settings sourced from defaults, an optional config file
// and the environment, in increasing precedence.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Log       LogConfig       `mapstructure:"log"`
	Render    RenderConfig    `mapstructure:"render"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Match     MatchConfig     `mapstructure:"match"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	CORSOrigin      string        `mapstructure:"cors_origin"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds the PostgreSQL connection URL. Empty means the
// in-memory store.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// RedisConfig configures the PDF cache. Empty Addr disables caching.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// LogConfig selects level and formatter.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RenderConfig configures LaTeX compilation and the PDF engine.
type RenderConfig struct {
	Engine   string        `mapstructure:"engine"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Template string        `mapstructure:"template"`
}

// RateLimitConfig configures per-client request limiting.
type RateLimitConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	DefaultLimit int           `mapstructure:"default_limit"`
	Window       time.Duration `mapstructure:"window"`
	Whitelist    []string      `mapstructure:"whitelist"`
	Blacklist    []string      `mapstructure:"blacklist"`
}

// MatchConfig bounds the analyze-all fan-out.
type MatchConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// Load reads configuration. path may be empty; when set, the file must exist
// and its format is taken from the extension (json, yaml, toml).
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	v.SetEnvPrefix("RB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// Env lists arrive as one comma-separated string.
	cfg.RateLimit.Whitelist = splitList(cfg.RateLimit.Whitelist)
	cfg.RateLimit.Blacklist = splitList(cfg.RateLimit.Blacklist)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origin", "*")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("database.url", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 24*time.Hour)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("render.engine", "pdflatex")
	v.SetDefault("render.timeout", 30*time.Second)
	v.SetDefault("render.template", "")
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.default_limit", 1000)
	v.SetDefault("rate_limit.window", time.Minute)
	v.SetDefault("rate_limit.whitelist", []string{})
	v.SetDefault("rate_limit.blacklist", []string{})
	v.SetDefault("match.concurrency", 4)
}

// bindEnv maps the conventional unprefixed variables; RB_* variables are
// picked up by AutomaticEnv.
func bindEnv(v *viper.Viper) error {
	mappings := map[string][]string{
		"server.port":  {"RB_SERVER_PORT", "PORT"},
		"database.url": {"RB_DATABASE_URL", "DATABASE_URL"},
		"redis.addr":   {"RB_REDIS_ADDR", "REDIS_ADDR"},
		"log.level":    {"RB_LOG_LEVEL", "LOG_LEVEL"},
	}
	for key, envs := range mappings {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}
	return nil
}

// Validate checks ranges and referenced files.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config error: server port %d out of range", c.Server.Port)
	}
	if c.Render.Timeout <= 0 {
		return errors.New("config error: render timeout must be positive")
	}
	if c.Render.Engine == "" {
		return errors.New("config error: render engine is required")
	}
	if c.Render.Template != "" {
		if _, err := os.Stat(c.Render.Template); os.IsNotExist(err) {
			return fmt.Errorf("config error: template file not found: %s", c.Render.Template)
		}
	}
	if c.Redis.TTL < 0 {
		return errors.New("config error: redis ttl must be non-negative")
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.DefaultLimit <= 0 {
			return errors.New("config error: rate limit default_limit must be positive")
		}
		if c.RateLimit.Window <= 0 {
			return errors.New("config error: rate limit window must be positive")
		}
	}
	if c.Match.Concurrency <= 0 {
		return errors.New("config error: match concurrency must be positive")
	}
	return nil
}

func splitList(in []string) []string {
	out := []string{}
	for _, entry := range in {
		for _, part := range strings.Split(entry, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
