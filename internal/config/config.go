package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the env-derived static configuration: server binding,
// storage location, and the compiled-in defaults the settings record is
// created from (and reset to).
type Config struct {
	Host        string `env:"HOST" envDefault:"0.0.0.0"`
	Port        int    `env:"PORT" envDefault:"8080"`
	ReleaseMode bool   `env:"RELEASE_MODE"`

	DatabasePath string `env:"DATABASE_PATH" envDefault:"banana.db"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	// Default AI provider configuration. Which base/key pair applies
	// depends on AIProviderFormat ("openai" or "gemini").
	AIProviderFormat string `env:"AI_PROVIDER_FORMAT" envDefault:"gemini"`
	OpenAIAPIBase    string `env:"OPENAI_API_BASE"`
	OpenAIAPIKey     string `env:"OPENAI_API_KEY"`
	GoogleAPIBase    string `env:"GOOGLE_API_BASE"`
	GoogleAPIKey     string `env:"GOOGLE_API_KEY"`

	// Image generation defaults.
	DefaultResolution  string `env:"DEFAULT_RESOLUTION" envDefault:"1K"`
	DefaultAspectRatio string `env:"DEFAULT_ASPECT_RATIO" envDefault:"16:9"`

	// Worker pool sizing.
	MaxDescriptionWorkers int `env:"MAX_DESCRIPTION_WORKERS" envDefault:"5"`
	MaxImageWorkers       int `env:"MAX_IMAGE_WORKERS" envDefault:"5"`
}

// Load populates a Config from the process environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
