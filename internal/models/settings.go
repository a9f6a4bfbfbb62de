package models

import (
	"strings"
	"time"

	"github.com/moonheart/banana-slides/internal/config"
)

// SettingsID is the primary key of the single settings row.
const SettingsID uint = 1

// Settings is the application settings record. Exactly one row exists
// after first access; it is created lazily and never deleted.
type Settings struct {
	ID               uint    `gorm:"primaryKey" json:"id"`
	AIProviderFormat string  `gorm:"not null" json:"ai_provider_format"` // "openai" | "gemini"
	APIBaseURL       *string `json:"api_base_url"`                       // nil = no override
	APIKey           *string `json:"api_key"`                            // nil = no override, "" = explicit empty

	ImageResolution  string `gorm:"not null" json:"image_resolution"` // "1K" | "2K" | "4K"
	ImageAspectRatio string `gorm:"not null" json:"image_aspect_ratio"`

	MaxDescriptionWorkers int `gorm:"not null" json:"max_description_workers"`
	MaxImageWorkers       int `gorm:"not null" json:"max_image_workers"`

	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultSettings builds the settings row from static configuration.
// The provider format picks which endpoint/key pair seeds the overrides;
// empty defaults become nil so the env value stays authoritative.
func DefaultSettings(cfg *config.Config) *Settings {
	base, key := cfg.GoogleAPIBase, cfg.GoogleAPIKey
	if strings.EqualFold(cfg.AIProviderFormat, "openai") {
		base, key = cfg.OpenAIAPIBase, cfg.OpenAIAPIKey
	}
	return &Settings{
		ID:                    SettingsID,
		AIProviderFormat:      cfg.AIProviderFormat,
		APIBaseURL:            optional(base),
		APIKey:                optional(key),
		ImageResolution:       cfg.DefaultResolution,
		ImageAspectRatio:      cfg.DefaultAspectRatio,
		MaxDescriptionWorkers: cfg.MaxDescriptionWorkers,
		MaxImageWorkers:       cfg.MaxImageWorkers,
		UpdatedAt:             time.Now().UTC(),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
