package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/adamwoolhether/qbit/client"
	"github.com/adamwoolhether/qbit/client/session"
	"github.com/adamwoolhether/qbit/client/throttle"
)

// Config defines configuration for the qbitctl CLI.
type Config struct {
	URL        string          `yaml:"url"`
	Username   string          `yaml:"username"`
	Password   string          `yaml:"password"`
	Timeout    time.Duration   `yaml:"timeout"`
	SessionTTL time.Duration   `yaml:"session_ttl"`
	UserAgent  string          `yaml:"user_agent"`
	LogLevel   string          `yaml:"log_level"`
	Throttle   throttle.Config `yaml:"throttle"`
}

// Default returns a Config with sensible defaults. Throttling is off.
func Default() Config {
	return Config{
		Timeout:    30 * time.Second,
		SessionTTL: session.DefaultTTL,
		UserAgent:  "qbitctl",
		LogLevel:   "warn",
	}
}

// yamlConfig is used for YAML unmarshaling with string durations.
type yamlConfig struct {
	URL        string          `yaml:"url"`
	Username   string          `yaml:"username"`
	Password   string          `yaml:"password"`
	Timeout    string          `yaml:"timeout"`
	SessionTTL string          `yaml:"session_ttl"`
	UserAgent  string          `yaml:"user_agent"`
	LogLevel   string          `yaml:"log_level"`
	Throttle   throttle.Config `yaml:"throttle"`
}

// LoadFromFile loads configuration from a YAML file on top of [Default].
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default()

	if yc.URL != "" {
		cfg.URL = yc.URL
	}
	if yc.Username != "" {
		cfg.Username = yc.Username
	}
	cfg.Password = yc.Password
	if yc.Timeout != "" {
		d, err := time.ParseDuration(yc.Timeout)
		if err != nil {
			return Config{}, fmt.Errorf("parse timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if yc.SessionTTL != "" {
		d, err := time.ParseDuration(yc.SessionTTL)
		if err != nil {
			return Config{}, fmt.Errorf("parse session_ttl: %w", err)
		}
		cfg.SessionTTL = d
	}
	if yc.UserAgent != "" {
		cfg.UserAgent = yc.UserAgent
	}
	if yc.LogLevel != "" {
		cfg.LogLevel = yc.LogLevel
	}
	cfg.Throttle = yc.Throttle

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the QBIT_ prefix.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("QBIT_URL"); v != "" {
		c.URL = v
	}
	if v := os.Getenv("QBIT_USERNAME"); v != "" {
		c.Username = v
	}
	if v := os.Getenv("QBIT_PASSWORD"); v != "" {
		c.Password = v
	}
	if v := os.Getenv("QBIT_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse QBIT_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	if v := os.Getenv("QBIT_SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse QBIT_SESSION_TTL: %w", err)
		}
		c.SessionTTL = d
	}
	if v := os.Getenv("QBIT_USER_AGENT"); v != "" {
		c.UserAgent = v
	}
	if v := os.Getenv("QBIT_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("QBIT_RPS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse QBIT_RPS: %w", err)
		}
		c.Throttle.RPS = n
	}
	if v := os.Getenv("QBIT_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse QBIT_BURST: %w", err)
		}
		c.Throttle.Burst = n
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.URL == "" {
		return errors.New("config: url is required")
	}
	if u, err := url.Parse(c.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("config: url %q must be an http(s) URL", c.URL)
	}
	if c.Username == "" {
		return errors.New("config: username is required")
	}
	if c.Timeout < 0 {
		return errors.New("config: timeout must not be negative")
	}
	if c.SessionTTL <= 0 {
		return errors.New("config: session_ttl must be positive")
	}
	if c.Throttle != (throttle.Config{}) {
		if err := c.Throttle.Validate(); err != nil {
			return fmt.Errorf("config: throttle: %w", err)
		}
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Merge merges override values into c, returning a new Config.
// Zero values in override are ignored.
func (c Config) Merge(override Config) Config {
	if override.URL != "" {
		c.URL = override.URL
	}
	if override.Username != "" {
		c.Username = override.Username
	}
	if override.Password != "" {
		c.Password = override.Password
	}
	if override.Timeout != 0 {
		c.Timeout = override.Timeout
	}
	if override.SessionTTL != 0 {
		c.SessionTTL = override.SessionTTL
	}
	if override.UserAgent != "" {
		c.UserAgent = override.UserAgent
	}
	if override.LogLevel != "" {
		c.LogLevel = override.LogLevel
	}
	if override.Throttle.RPS != 0 {
		c.Throttle.RPS = override.Throttle.RPS
	}
	if override.Throttle.Burst != 0 {
		c.Throttle.Burst = override.Throttle.Burst
	}
	return c
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("config: log_level: %w", err)
	}
	return level, nil
}

// Credentials returns the WebUI login.
func (c *Config) Credentials() client.Credentials {
	return client.NewCredentials(c.Username, c.Password)
}

// ClientOptions translates c into options for [client.Build].
func (c *Config) ClientOptions(logger *slog.Logger) []client.Option {
	opts := []client.Option{
		client.WithTimeout(c.Timeout),
		client.WithSessionTTL(c.SessionTTL),
	}
	if c.UserAgent != "" {
		opts = append(opts, client.WithUserAgent(c.UserAgent))
	}
	if c.Throttle != (throttle.Config{}) {
		opts = append(opts, client.WithThrottle(c.Throttle.RPS, c.Throttle.Burst))
	}
	if logger != nil {
		opts = append(opts, client.WithLogger(logger))
	}
	return opts
}
