package services

import (
	"github.com/moonheart/banana-slides/internal/config"
	"github.com/moonheart/banana-slides/internal/models"
)

// syncToRuntime projects the persisted settings row onto the runtime
// configuration mirror. Base URL and key overrides are written to both the
// Google-style and OpenAI-style keys so whichever provider path is active
// picks them up; a nil override removes the keys so env defaults apply.
func (s *settingsService) syncToRuntime(settings *models.Settings) {
	if settings.AIProviderFormat != "" {
		s.runtime.Set(config.KeyAIProviderFormat, settings.AIProviderFormat)
	}

	if settings.APIBaseURL != nil {
		s.runtime.Set(config.KeyGoogleAPIBase, *settings.APIBaseURL)
		s.runtime.Set(config.KeyOpenAIAPIBase, *settings.APIBaseURL)
	} else {
		s.runtime.Delete(config.KeyGoogleAPIBase)
		s.runtime.Delete(config.KeyOpenAIAPIBase)
	}

	// An explicit empty key is written through (it disables the
	// credential); only nil removes the override.
	if settings.APIKey != nil {
		s.runtime.Set(config.KeyGoogleAPIKey, *settings.APIKey)
		s.runtime.Set(config.KeyOpenAIAPIKey, *settings.APIKey)
	} else {
		s.runtime.Delete(config.KeyGoogleAPIKey)
		s.runtime.Delete(config.KeyOpenAIAPIKey)
	}

	s.runtime.Set(config.KeyDefaultResolution, settings.ImageResolution)
	s.runtime.Set(config.KeyDefaultAspectRatio, settings.ImageAspectRatio)
	s.runtime.Set(config.KeyMaxDescriptionWorkers, settings.MaxDescriptionWorkers)
	s.runtime.Set(config.KeyMaxImageWorkers, settings.MaxImageWorkers)

	s.logger.Debug("runtime config synced",
		"provider", settings.AIProviderFormat,
		"resolution", settings.ImageResolution,
		"aspect_ratio", settings.ImageAspectRatio,
		"description_workers", settings.MaxDescriptionWorkers,
		"image_workers", settings.MaxImageWorkers)
}
