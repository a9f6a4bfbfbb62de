package services

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/moonheart/banana-slides/internal/config"
	"github.com/moonheart/banana-slides/internal/models"
	"github.com/moonheart/banana-slides/internal/repositories"
)

// ValidationError is a client-caused error naming the offending field.
// It maps to HTTP 400 at the handler boundary.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// SettingsService manages the singleton settings record and keeps the
// runtime configuration mirror in sync with it.
type SettingsService interface {
	Get(ctx context.Context) (*models.Settings, error)
	Update(ctx context.Context, fields map[string]any) (*models.Settings, error)
	Reset(ctx context.Context) (*models.Settings, error)
}

type settingsService struct {
	repo    repositories.SettingsRepository
	cfg     *config.Config
	runtime *config.Runtime
	logger  *log.Logger
}

func NewSettingsService(repo repositories.SettingsRepository, cfg *config.Config, runtime *config.Runtime, logger *log.Logger) SettingsService {
	return &settingsService{repo: repo, cfg: cfg, runtime: runtime, logger: logger}
}

// Get returns the settings row, creating it with defaults on first access.
// The runtime mirror is re-projected from the persisted row on every read,
// so it can always be re-derived after a crash between persist and sync.
func (s *settingsService) Get(ctx context.Context) (*models.Settings, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	s.syncToRuntime(settings)
	return settings, nil
}

// Update applies a partial update. Unrecognized fields are ignored; any
// invalid value fails the whole request before anything is persisted.
func (s *settingsService) Update(ctx context.Context, fields map[string]any) (*models.Settings, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}

	if raw, ok := fields["ai_provider_format"]; ok {
		format, ok := raw.(string)
		if !ok || (format != "openai" && format != "gemini") {
			return nil, invalid("ai_provider_format", "AI provider format must be 'openai' or 'gemini'")
		}
		settings.AIProviderFormat = format
	}

	if raw, ok := fields["api_base_url"]; ok {
		base, err := optionalString(raw)
		if err != nil {
			return nil, invalid("api_base_url", "API base URL must be a string or null")
		}
		// Whitespace-only input clears the override so the env default
		// takes effect again.
		if base != nil {
			trimmed := strings.TrimSpace(*base)
			if trimmed == "" {
				base = nil
			} else {
				base = &trimmed
			}
		}
		settings.APIBaseURL = base
	}

	if raw, ok := fields["api_key"]; ok {
		key, err := optionalString(raw)
		if err != nil {
			return nil, invalid("api_key", "API key must be a string or null")
		}
		// Stored verbatim: an explicit empty string stays distinct from null.
		settings.APIKey = key
	}

	if raw, ok := fields["image_resolution"]; ok {
		resolution, ok := raw.(string)
		if !ok || (resolution != "1K" && resolution != "2K" && resolution != "4K") {
			return nil, invalid("image_resolution", "Resolution must be 1K, 2K, or 4K")
		}
		settings.ImageResolution = resolution
	}

	if raw, ok := fields["image_aspect_ratio"]; ok {
		ratio, ok := raw.(string)
		if !ok {
			return nil, invalid("image_aspect_ratio", "Image aspect ratio must be a string")
		}
		settings.ImageAspectRatio = ratio
	}

	if raw, ok := fields["max_description_workers"]; ok {
		workers, ok := intValue(raw)
		if !ok || workers < 1 || workers > 20 {
			return nil, invalid("max_description_workers", "Max description workers must be between 1 and 20")
		}
		settings.MaxDescriptionWorkers = workers
	}

	if raw, ok := fields["max_image_workers"]; ok {
		workers, ok := intValue(raw)
		if !ok || workers < 1 || workers > 20 {
			return nil, invalid("max_image_workers", "Max image workers must be between 1 and 20")
		}
		settings.MaxImageWorkers = workers
	}

	settings.UpdatedAt = time.Now().UTC()
	if err := s.repo.Save(ctx, settings); err != nil {
		return nil, err
	}

	s.syncToRuntime(settings)
	s.logger.Info("settings updated")
	return settings, nil
}

// Reset restores every field to its static default. The configured
// provider format decides which endpoint/key pair is restored.
func (s *settingsService) Reset(ctx context.Context) (*models.Settings, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}

	defaults := models.DefaultSettings(s.cfg)
	settings.AIProviderFormat = defaults.AIProviderFormat
	settings.APIBaseURL = defaults.APIBaseURL
	settings.APIKey = defaults.APIKey
	settings.ImageResolution = defaults.ImageResolution
	settings.ImageAspectRatio = defaults.ImageAspectRatio
	settings.MaxDescriptionWorkers = defaults.MaxDescriptionWorkers
	settings.MaxImageWorkers = defaults.MaxImageWorkers
	settings.UpdatedAt = time.Now().UTC()

	if err := s.repo.Save(ctx, settings); err != nil {
		return nil, err
	}

	s.syncToRuntime(settings)
	s.logger.Info("settings reset to defaults")
	return settings, nil
}

// optionalString accepts null or a string, anything else is an error.
func optionalString(v any) (*string, error) {
	if v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, &ValidationError{Message: "expected a string or null"}
	}
	return &s, nil
}

// intValue coerces the JSON representations of an integer. Fractional
// numbers and unparseable strings are rejected.
func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == math.Trunc(n) {
			return int(n), true
		}
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i, true
		}
	}
	return 0, false
}
