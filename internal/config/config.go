// Package config loads application configuration from a TOML file with
// environment overrides. A .env file in the working directory is loaded into
// the environment first, so local setups can keep secrets out of the TOML.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix and EnvSeparator build override names such as
// LETTERS__DATABASE__URL for the key database.url.
const (
	EnvPrefix    = "LETTERS"
	EnvSeparator = "__"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "letters.toml"

// Config is built once at startup and never mutated afterwards.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Events    EventsConfig    `mapstructure:"events"`
	Jobs      JobsConfig      `mapstructure:"jobs"`
}

type ServerConfig struct {
	Port                  int    `mapstructure:"port"`
	LogLevel              string `mapstructure:"log_level"`
	LogPretty             bool   `mapstructure:"log_pretty"`
	RequestTimeoutSeconds int    `mapstructure:"request_timeout_seconds"`
}

type DatabaseConfig struct {
	URL            string `mapstructure:"url"`
	MaxConnections int    `mapstructure:"max_connections"`
}

type AuthConfig struct {
	Secret         string `mapstructure:"secret"`
	TimeoutSeconds uint64 `mapstructure:"timeout_seconds"`
}

type EventsConfig struct {
	AMQPURL string `mapstructure:"amqp_url"`
	Queue   string `mapstructure:"queue"`
}

type JobsConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	StatsSchedule string `mapstructure:"stats_schedule"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

func (s ServerConfig) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutSeconds) * time.Second
}

func (a AuthConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_pretty", false)
	v.SetDefault("server.request_timeout_seconds", 30)

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_connections", 5)

	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.timeout_seconds", 3600)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.tls", false)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.capacity", 60)
	v.SetDefault("rate_limit.refill_tokens", 1)
	v.SetDefault("rate_limit.refill_interval", "1s")
	v.SetDefault("rate_limit.ttl", "10m")
	v.SetDefault("rate_limit.key_strategy", "ip_user_route")
	v.SetDefault("rate_limit.prefix", "rl")

	v.SetDefault("events.amqp_url", "")
	v.SetDefault("events.queue", "article.events")

	v.SetDefault("jobs.enabled", true)
	v.SetDefault("jobs.stats_schedule", "@every 5m")
}

// EnvName returns the environment variable that overrides key.
func EnvName(key string) string {
	parts := strings.Split(strings.ToUpper(key), ".")
	return EnvPrefix + EnvSeparator + strings.Join(parts, EnvSeparator)
}

// Load reads path (or DefaultFile when path is empty and the file exists),
// applies environment overrides and validates the result.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigType("toml")

	switch {
	case path != "":
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	default:
		if _, err := os.Stat(DefaultFile); err == nil {
			v.SetConfigFile(DefaultFile)
			if err := v.ReadInConfig(); err != nil {
				return Config{}, fmt.Errorf("read config %s: %w", DefaultFile, err)
			}
		}
	}

	for _, key := range v.AllKeys() {
		if err := v.BindEnv(key, EnvName(key)); err != nil {
			return Config{}, fmt.Errorf("bind env for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.RateLimit = cfg.RateLimit.Normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values every command needs.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.URL) == "" {
		return fmt.Errorf("missing required config: database.url (env %s)", EnvName("database.url"))
	}
	if c.Auth.Secret == "" {
		return fmt.Errorf("missing required config: auth.secret (env %s)", EnvName("auth.secret"))
	}
	if c.Auth.TimeoutSeconds == 0 {
		return errors.New("auth.timeout_seconds must be positive")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port: %d", c.Server.Port)
	}
	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database.max_connections must be at least 1, got %d", c.Database.MaxConnections)
	}
	return nil
}
