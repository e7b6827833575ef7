// Package config provides configuration loading and validation for the CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Company represents one watched vendor. Newsroom is optional; companies
// without one still contribute watchlist context but are not crawled.
type Company struct {
	Name     string `yaml:"name" validate:"required"`
	Ticker   string `yaml:"ticker,omitempty"`
	Newsroom string `yaml:"newsroom,omitempty" validate:"omitempty,url"`
}

// LLMSettings controls the classification model.
type LLMSettings struct {
	Tier           string `yaml:"tier" validate:"oneof=lite standard advanced"`
	Model          string `yaml:"model,omitempty"` // overrides the tier's default model
	TimeoutSeconds int    `yaml:"timeout_seconds" validate:"gte=5,lte=600"`
}

// EmailSettings controls the notification digest. The API key and recipient
// come from the environment; email silently disables when either is missing.
type EmailSettings struct {
	Enabled bool   `yaml:"enabled"`
	From    string `yaml:"from" validate:"required"`
	To      string `yaml:"-"`
	APIKey  string `yaml:"-"`
}

// Config is the immutable configuration for one run. It is constructed once
// in the CLI (defaults, then YAML file, then environment, then changed flags)
// and passed into every component constructor.
type Config struct {
	// Collection
	LookbackDays       int       `yaml:"lookback_days" validate:"gte=1,lte=365"`
	SearchTerms        []string  `yaml:"search_terms" validate:"min=1,dive,required"`
	Watchlist          []Company `yaml:"watchlist" validate:"dive"`
	FDAResultLimit     int       `yaml:"fda_result_limit" validate:"gte=1,lte=1000"`
	PubMedPerTermLimit int       `yaml:"pubmed_per_term_limit" validate:"gte=1,lte=200"`
	TrialsTermLimit    int       `yaml:"trials_term_limit" validate:"gte=1,lte=20"`
	TrialsPageSize     int       `yaml:"trials_page_size" validate:"gte=1,lte=100"`
	HTTPTimeoutSeconds int       `yaml:"http_timeout_seconds" validate:"gte=1,lte=300"`

	// Thresholds
	DraftThreshold  float64 `yaml:"draft_threshold" validate:"gte=0,lte=1"`
	NotifyThreshold float64 `yaml:"notify_threshold" validate:"gte=0,lte=1"`
	HighConfidence  float64 `yaml:"high_confidence" validate:"gte=0,lte=1"`

	// Paths
	DatasetPath string `yaml:"dataset_path" validate:"required"`
	SeenPath    string `yaml:"seen_path" validate:"required"`
	OutputDir   string `yaml:"output_dir" validate:"required"`

	LLM   LLMSettings   `yaml:"llm"`
	Email EmailSettings `yaml:"email"`

	// Environment-only secrets
	APIKey      string `yaml:"-"`
	DatabaseURL string `yaml:"-"`
}

// DefaultConfig returns the compiled-in configuration. A YAML file and the
// environment overlay it; they never need to be complete.
func DefaultConfig() *Config {
	return &Config{
		LookbackDays:       30,
		SearchTerms:        defaultSearchTerms(),
		Watchlist:          defaultWatchlist(),
		FDAResultLimit:     100,
		PubMedPerTermLimit: 20,
		TrialsTermLimit:    3,
		TrialsPageSize:     10,
		HTTPTimeoutSeconds: 20,
		DraftThreshold:     0.75,
		NotifyThreshold:    0.7,
		HighConfidence:     0.85,
		DatasetPath:        filepath.Join("data", "dataset.js"),
		SeenPath:           filepath.Join("data", "seen_candidates.json"),
		OutputDir:          "output",
		LLM: LLMSettings{
			Tier:           "standard",
			TimeoutSeconds: 60,
		},
		Email: EmailSettings{
			Enabled: true,
			From:    "OncoScout <onboarding@resend.dev>",
		},
	}
}

// Load builds the configuration: defaults, overlaid by an optional YAML file,
// overlaid by environment variables. Flag overrides are applied by the CLI
// afterwards.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	cfg.ApplyEnv()
	return cfg, nil
}

// ApplyEnv overlays environment-provided secrets onto the config.
// godotenv has already populated the process environment from .env by the
// time this runs.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("RESEND_API_KEY"); v != "" {
		c.Email.APIKey = v
	}
	if v := os.Getenv("NOTIFY_EMAIL"); v != "" {
		c.Email.To = v
	}
}

// Validate checks the configuration using the validator tags.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// HTTPTimeout returns the collector HTTP timeout as a duration.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// LLMTimeout returns the per-classification-call timeout as a duration.
func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLM.TimeoutSeconds) * time.Second
}

// EmailConfigured reports whether the notifier has everything it needs to send.
func (c *Config) EmailConfigured() bool {
	return c.Email.Enabled && c.Email.APIKey != "" && c.Email.To != ""
}
