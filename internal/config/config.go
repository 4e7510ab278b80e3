// Package config provides configuration loading and validation for the pipeline worker and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"
)

// Defaults applied after environment and file values are merged
const (
	DefaultNATSURL          = "nats://127.0.0.1:4222"
	DefaultNATSQueue        = "outreach-workers"
	DefaultLogLevel         = "info"
	DefaultMetricsAddr      = ":9090"
	DefaultEmailReadyStatus = "Scheduled"
)

// Config is built once at process start and injected into every stage.
// Nothing mutates it after Validate succeeds.
type Config struct {
	// Store
	DatabaseURL string `envconfig:"DATABASE_URL" json:"database_url,omitempty"`

	// Generation
	APIKey          string `envconfig:"GEMINI_API_KEY" json:"api_key,omitempty"`
	GenerationModel string `envconfig:"GENERATION_MODEL" json:"generation_model,omitempty"` // Overrides the model for every tier
	SmartDorks      bool   `envconfig:"SMART_DORKS" json:"smart_dorks,omitempty"`           // Ask the model for dorks before the templates

	// Bus
	NATSURL        string        `envconfig:"NATS_URL" json:"nats_url,omitempty"`
	NATSQueue      string        `envconfig:"NATS_QUEUE" json:"nats_queue,omitempty"`
	HandlerTimeout time.Duration `envconfig:"HANDLER_TIMEOUT" json:"handler_timeout,omitempty"` // Zero means handlers run unbounded

	// Behavior
	EmailReadyStatus string `envconfig:"EMAIL_READY_STATUS" json:"email_ready_status,omitempty"`
	LogLevel         string `envconfig:"LOG_LEVEL" json:"log_level,omitempty"`
	MetricsAddr      string `envconfig:"METRICS_ADDR" json:"metrics_addr,omitempty"`
}

// ConfigurationError reports a missing or malformed setting
type ConfigurationError struct {
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("config error: %s: %s", e.Field, e.Message)
}

// Load reads the environment and, when path is set, a JSON config file.
// Environment values win over the file; defaults fill whatever is left.
func Load(path string) (*Config, error) {
	var env Config
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	merged := env
	if path != "" {
		fileCfg, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		merged = env.MergeWithDefaults(*fileCfg)
	}

	merged.applyDefaults()
	return &merged, nil
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.GenerationModel == "" {
		result.GenerationModel = defaults.GenerationModel
	}
	if result.NATSURL == "" {
		result.NATSURL = defaults.NATSURL
	}
	if result.NATSQueue == "" {
		result.NATSQueue = defaults.NATSQueue
	}
	if result.HandlerTimeout == 0 {
		result.HandlerTimeout = defaults.HandlerTimeout
	}
	if result.EmailReadyStatus == "" {
		result.EmailReadyStatus = defaults.EmailReadyStatus
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.MetricsAddr == "" {
		result.MetricsAddr = defaults.MetricsAddr
	}

	// Bools cannot distinguish unset from false; either source may enable them
	result.SmartDorks = result.SmartDorks || defaults.SmartDorks

	return result
}

func (c *Config) applyDefaults() {
	merged := c.MergeWithDefaults(Config{
		NATSURL:          DefaultNATSURL,
		NATSQueue:        DefaultNATSQueue,
		LogLevel:         DefaultLogLevel,
		MetricsAddr:      DefaultMetricsAddr,
		EmailReadyStatus: DefaultEmailReadyStatus,
	})
	*c = merged
}

// Validate checks that the configured values are well formed.
// Presence of credentials is checked separately by RequireWorker.
func (c *Config) Validate() error {
	if c.HandlerTimeout < 0 {
		return &ConfigurationError{Field: "HANDLER_TIMEOUT", Message: "must be non-negative"}
	}
	if c.LogLevel != "" {
		if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
			return &ConfigurationError{Field: "LOG_LEVEL", Message: fmt.Sprintf("unknown level %q", c.LogLevel)}
		}
	}
	if c.NATSURL != "" && !strings.Contains(c.NATSURL, "://") {
		return &ConfigurationError{Field: "NATS_URL", Message: "must be a URL such as nats://host:4222"}
	}
	if strings.TrimSpace(c.EmailReadyStatus) == "" {
		return &ConfigurationError{Field: "EMAIL_READY_STATUS", Message: "must not be empty"}
	}
	return nil
}

// RequireWorker checks the settings the long-running worker cannot start without
func (c *Config) RequireWorker() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.DatabaseURL == "" {
		return &ConfigurationError{Field: "DATABASE_URL", Message: "store credentials are required"}
	}
	if c.APIKey == "" {
		return &ConfigurationError{Field: "GEMINI_API_KEY", Message: "generation API key is required"}
	}
	if c.NATSURL == "" {
		return &ConfigurationError{Field: "NATS_URL", Message: "event bus URL is required"}
	}
	return nil
}
