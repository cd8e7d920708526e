package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/sydlexius/coverlens/internal/shs"
)

// Config holds all application configuration.
type Config struct {
	API      APIConfig      `yaml:"api"`
	Resolver ResolverConfig `yaml:"resolver"`
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// APIConfig holds upstream SecondHandSongs settings.
type APIConfig struct {
	BaseURL           string  `yaml:"base_url"`
	APIKey            string  `yaml:"api_key"`
	UserAgent         string  `yaml:"user_agent"`
	TimeoutSeconds    int     `yaml:"timeout_seconds"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// Timeout returns the request timeout as a duration.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ResolverConfig holds cover resolution settings.
type ResolverConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port     int    `yaml:"port"`
	BasePath string `yaml:"base_path"`

	// RateLimitPerMinute caps API requests per client IP; 0 disables it.
	RateLimitPerMinute int `yaml:"rate_limit_per_minute"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level          string `yaml:"level"`
	Format         string `yaml:"format"`
	FilePath       string `yaml:"file_path"`
	FileMaxSizeMB  int    `yaml:"file_max_size_mb"`
	FileMaxFiles   int    `yaml:"file_max_files"`
	FileMaxAgeDays int    `yaml:"file_max_age_days"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:           shs.DefaultBaseURL,
			TimeoutSeconds:    10,
			RequestsPerSecond: 2,
		},
		Resolver: ResolverConfig{
			Concurrency: 4,
		},
		Server: ServerConfig{
			Port:               8080,
			BasePath:           "/",
			RateLimitPerMinute: 60,
		},
		Logging: LoggingConfig{
			Level:          "info",
			Format:         "text",
			FileMaxSizeMB:  100,
			FileMaxFiles:   3,
			FileMaxAgeDays: 30,
		},
	}
}

// Load reads config from a YAML file (if it exists), then a .env file in the
// working directory (if it exists), and overrides with environment
// variables. Environment variables take precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFromFile(path); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	cfg.loadFromEnv()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path from flag or env
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) loadFromEnv() {
	if v := os.Getenv("CL_API_BASE_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("CL_API_KEY"); v != "" {
		c.API.APIKey = v
	}
	if v := os.Getenv("CL_API_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.API.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("CL_API_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.API.RequestsPerSecond = f
		}
	}
	if v := os.Getenv("CL_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("CL_BASE_PATH"); v != "" {
		c.Server.BasePath = v
	}
	if v := os.Getenv("CL_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("CL_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("CL_LOG_FILE"); v != "" {
		c.Logging.FilePath = v
	}
}

func (c *Config) validate() error {
	err := validation.Errors{
		"api": validation.ValidateStruct(&c.API,
			validation.Field(&c.API.BaseURL, validation.Required, is.URL),
			validation.Field(&c.API.TimeoutSeconds, validation.Required, validation.Min(1)),
			validation.Field(&c.API.RequestsPerSecond, validation.Min(0.0)),
		),
		"resolver": validation.ValidateStruct(&c.Resolver,
			validation.Field(&c.Resolver.Concurrency, validation.Min(1), validation.Max(32)),
		),
		"server": validation.ValidateStruct(&c.Server,
			validation.Field(&c.Server.Port, validation.Required, validation.Min(1), validation.Max(65535)),
			validation.Field(&c.Server.RateLimitPerMinute, validation.Min(0)),
		),
		"logging": validation.ValidateStruct(&c.Logging,
			validation.Field(&c.Logging.Level, validation.In("debug", "info", "warn", "error")),
			validation.Field(&c.Logging.Format, validation.In("json", "text")),
		),
	}.Filter()
	if err != nil {
		return err
	}
	c.Server.BasePath = strings.TrimRight(c.Server.BasePath, "/")
	return nil
}
