// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// GenerationConfig holds everything the status tracker needs to reach the
// generation backend. All polling knobs are overridable; the defaults
// match the documented contract (5000 ms interval, 3 attempts, 1000 ms
// retry delay).
type GenerationConfig struct {
	BaseURL          string `yaml:"base_url"`
	AccessToken      string `yaml:"access_token"` // bootstrap token; normally granted at runtime
	PollIntervalMs   int    `yaml:"poll_interval_ms"`
	RetryAttempts    int    `yaml:"retry_attempts"`
	RetryDelayMs     int    `yaml:"retry_delay_ms"`
	RequestTimeoutMs int    `yaml:"request_timeout_ms"`
}

func (g GenerationConfig) PollInterval() time.Duration {
	return time.Duration(g.PollIntervalMs) * time.Millisecond
}
func (g GenerationConfig) RetryDelay() time.Duration {
	return time.Duration(g.RetryDelayMs) * time.Millisecond
}
func (g GenerationConfig) RequestTimeout() time.Duration {
	return time.Duration(g.RequestTimeoutMs) * time.Millisecond
}

type DemoConfig struct {
	AccessCode    string `yaml:"access_code"`
	SessionSecret string `yaml:"session_secret"`
	SessionTTLMin int    `yaml:"session_ttl_min"`
}

func (d DemoConfig) SessionTTL() time.Duration {
	return time.Duration(d.SessionTTLMin) * time.Minute
}

type WaitlistConfig struct {
	RateLimit     int `yaml:"rate_limit"` // signups per window per client
	RateWindowMin int `yaml:"rate_window_min"`
}

func (w WaitlistConfig) RateWindow() time.Duration {
	return time.Duration(w.RateWindowMin) * time.Minute
}

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Generation GenerationConfig `yaml:"generation"`
	Demo       DemoConfig       `yaml:"demo"`
	Waitlist   WaitlistConfig   `yaml:"waitlist"`

	Runtime RuntimeConfig `yaml:"-"`
}

const defaultGenerationBaseURL = "https://api.forma3d.app"

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Demo.SessionSecret == "" {
		return nil, errors.New("demo.session_secret is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	// The base URL is environment-provided in deployments; the config file
	// value wins, then the env var, then the documented default.
	if cfg.Generation.BaseURL == "" {
		cfg.Generation.BaseURL = os.Getenv("GENERATION_API_BASE")
	}
	if cfg.Generation.BaseURL == "" {
		cfg.Generation.BaseURL = defaultGenerationBaseURL
	}
	if cfg.Generation.PollIntervalMs <= 0 {
		cfg.Generation.PollIntervalMs = 5000
	}
	if cfg.Generation.RetryAttempts <= 0 {
		cfg.Generation.RetryAttempts = 3
	}
	if cfg.Generation.RetryDelayMs <= 0 {
		cfg.Generation.RetryDelayMs = 1000
	}
	if cfg.Generation.RequestTimeoutMs <= 0 {
		cfg.Generation.RequestTimeoutMs = 10000
	}
	if cfg.Demo.SessionTTLMin <= 0 {
		cfg.Demo.SessionTTLMin = 30
	}
	if cfg.Waitlist.RateLimit <= 0 {
		cfg.Waitlist.RateLimit = 5
	}
	if cfg.Waitlist.RateWindowMin <= 0 {
		cfg.Waitlist.RateWindowMin = 60
	}
}
