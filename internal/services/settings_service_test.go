package services_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moonheart/banana-slides/internal/config"
	"github.com/moonheart/banana-slides/internal/models"
	"github.com/moonheart/banana-slides/internal/services"
)

type settingsRepositoryMock struct {
	GetFunc  func(ctx context.Context) (*models.Settings, error)
	SaveFunc func(ctx context.Context, settings *models.Settings) error
}

func (m *settingsRepositoryMock) Get(ctx context.Context) (*models.Settings, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx)
	}
	return baseSettings(), nil
}

func (m *settingsRepositoryMock) Save(ctx context.Context, settings *models.Settings) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, settings)
	}
	return nil
}

func baseSettings() *models.Settings {
	return &models.Settings{
		ID:                    models.SettingsID,
		AIProviderFormat:      "gemini",
		ImageResolution:       "1K",
		ImageAspectRatio:      "16:9",
		MaxDescriptionWorkers: 5,
		MaxImageWorkers:       5,
	}
}

func testConfig() *config.Config {
	return &config.Config{
		AIProviderFormat:      "gemini",
		GoogleAPIBase:         "https://gemini.example.com",
		GoogleAPIKey:          "google-key",
		OpenAIAPIBase:         "https://openai.example.com",
		OpenAIAPIKey:          "openai-key",
		DefaultResolution:     "1K",
		DefaultAspectRatio:    "16:9",
		MaxDescriptionWorkers: 5,
		MaxImageWorkers:       5,
	}
}

func newTestService(repo *settingsRepositoryMock, cfg *config.Config) (services.SettingsService, *config.Runtime) {
	rt := config.NewRuntime()
	logger := log.New(io.Discard)
	return services.NewSettingsService(repo, cfg, rt, logger), rt
}

func TestGet_SyncsRuntimeMirror(t *testing.T) {
	base := "https://override.example.com"
	repo := &settingsRepositoryMock{
		GetFunc: func(ctx context.Context) (*models.Settings, error) {
			s := baseSettings()
			s.APIBaseURL = &base
			s.ImageResolution = "2K"
			return s, nil
		},
	}
	svc, rt := newTestService(repo, testConfig())

	settings, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "gemini", settings.AIProviderFormat)

	v, ok := rt.GetString(config.KeyGoogleAPIBase)
	require.True(t, ok)
	assert.Equal(t, base, v)
	v, ok = rt.GetString(config.KeyOpenAIAPIBase)
	require.True(t, ok)
	assert.Equal(t, base, v)

	res, ok := rt.GetString(config.KeyDefaultResolution)
	require.True(t, ok)
	assert.Equal(t, "2K", res)
}

func TestGet_RepositoryError(t *testing.T) {
	repo := &settingsRepositoryMock{
		GetFunc: func(ctx context.Context) (*models.Settings, error) {
			return nil, errors.New("database error")
		},
	}
	svc, _ := newTestService(repo, testConfig())

	_, err := svc.Get(context.Background())
	assert.EqualError(t, err, "database error")
}

func TestUpdate_InvalidProviderFormat(t *testing.T) {
	saved := false
	repo := &settingsRepositoryMock{
		SaveFunc: func(ctx context.Context, settings *models.Settings) error {
			saved = true
			return nil
		},
	}
	svc, _ := newTestService(repo, testConfig())

	_, err := svc.Update(context.Background(), map[string]any{"ai_provider_format": "claude"})
	var verr *services.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "ai_provider_format", verr.Field)
	assert.Equal(t, "AI provider format must be 'openai' or 'gemini'", verr.Message)
	assert.False(t, saved, "nothing may be persisted on validation failure")
}

func TestUpdate_WorkerBounds(t *testing.T) {
	for _, v := range []any{float64(0), float64(21), "abc", 2.5} {
		repo := &settingsRepositoryMock{}
		svc, _ := newTestService(repo, testConfig())

		_, err := svc.Update(context.Background(), map[string]any{"max_description_workers": v})
		var verr *services.ValidationError
		require.ErrorAs(t, err, &verr, "value %v must be rejected", v)
		assert.Equal(t, "Max description workers must be between 1 and 20", verr.Message)
	}

	repo := &settingsRepositoryMock{}
	svc, _ := newTestService(repo, testConfig())
	settings, err := svc.Update(context.Background(), map[string]any{"max_description_workers": float64(20)})
	require.NoError(t, err)
	assert.Equal(t, 20, settings.MaxDescriptionWorkers)
}

func TestUpdate_MaxImageWorkersOutOfRange(t *testing.T) {
	prior := baseSettings()
	repo := &settingsRepositoryMock{
		GetFunc: func(ctx context.Context) (*models.Settings, error) {
			s := *prior
			return &s, nil
		},
	}
	svc, _ := newTestService(repo, testConfig())

	_, err := svc.Update(context.Background(), map[string]any{"max_image_workers": float64(25)})
	var verr *services.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Max image workers must be between 1 and 20", verr.Message)
	assert.Equal(t, 5, prior.MaxImageWorkers)
}

func TestUpdate_ResolutionEnum(t *testing.T) {
	repo := &settingsRepositoryMock{}
	svc, _ := newTestService(repo, testConfig())

	_, err := svc.Update(context.Background(), map[string]any{"image_resolution": "8K"})
	var verr *services.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Resolution must be 1K, 2K, or 4K", verr.Message)

	settings, err := svc.Update(context.Background(), map[string]any{"image_resolution": "4K"})
	require.NoError(t, err)
	assert.Equal(t, "4K", settings.ImageResolution)
}

func TestUpdate_BaseURLWhitespaceClearsOverride(t *testing.T) {
	existing := "https://old.example.com"
	repo := &settingsRepositoryMock{
		GetFunc: func(ctx context.Context) (*models.Settings, error) {
			s := baseSettings()
			s.APIBaseURL = &existing
			return s, nil
		},
	}
	svc, rt := newTestService(repo, testConfig())

	settings, err := svc.Update(context.Background(), map[string]any{"api_base_url": "   "})
	require.NoError(t, err)
	assert.Nil(t, settings.APIBaseURL)

	_, ok := rt.GetString(config.KeyGoogleAPIBase)
	assert.False(t, ok, "cleared override must remove the endpoint key")
	_, ok = rt.GetString(config.KeyOpenAIAPIBase)
	assert.False(t, ok)
}

func TestUpdate_BaseURLTrimmed(t *testing.T) {
	repo := &settingsRepositoryMock{}
	svc, _ := newTestService(repo, testConfig())

	settings, err := svc.Update(context.Background(), map[string]any{"api_base_url": "  https://new.example.com  "})
	require.NoError(t, err)
	require.NotNil(t, settings.APIBaseURL)
	assert.Equal(t, "https://new.example.com", *settings.APIBaseURL)
}

func TestUpdate_EmptyAPIKeyWrittenThrough(t *testing.T) {
	repo := &settingsRepositoryMock{}
	svc, rt := newTestService(repo, testConfig())

	settings, err := svc.Update(context.Background(), map[string]any{"api_key": ""})
	require.NoError(t, err)
	require.NotNil(t, settings.APIKey)
	assert.Equal(t, "", *settings.APIKey)

	v, ok := rt.GetString(config.KeyGoogleAPIKey)
	require.True(t, ok, "explicit empty key must be written through")
	assert.Equal(t, "", v)
}

func TestUpdate_NullAPIKeyRemovesOverride(t *testing.T) {
	key := "secret"
	repo := &settingsRepositoryMock{
		GetFunc: func(ctx context.Context) (*models.Settings, error) {
			s := baseSettings()
			s.APIKey = &key
			return s, nil
		},
	}
	svc, rt := newTestService(repo, testConfig())

	settings, err := svc.Update(context.Background(), map[string]any{"api_key": nil})
	require.NoError(t, err)
	assert.Nil(t, settings.APIKey)

	_, ok := rt.GetString(config.KeyGoogleAPIKey)
	assert.False(t, ok)
	_, ok = rt.GetString(config.KeyOpenAIAPIKey)
	assert.False(t, ok)
}

func TestUpdate_UnrecognizedFieldsIgnored(t *testing.T) {
	repo := &settingsRepositoryMock{}
	svc, _ := newTestService(repo, testConfig())

	settings, err := svc.Update(context.Background(), map[string]any{
		"theme":              "dark",
		"image_aspect_ratio": "4:3",
	})
	require.NoError(t, err)
	assert.Equal(t, "4:3", settings.ImageAspectRatio)
}

func TestUpdate_SaveErrorIsNotValidation(t *testing.T) {
	repo := &settingsRepositoryMock{
		SaveFunc: func(ctx context.Context, settings *models.Settings) error {
			return errors.New("disk full")
		},
	}
	svc, _ := newTestService(repo, testConfig())

	_, err := svc.Update(context.Background(), map[string]any{"image_resolution": "2K"})
	require.Error(t, err)
	var verr *services.ValidationError
	assert.False(t, errors.As(err, &verr))
}

func TestUpdate_SyncInvariant(t *testing.T) {
	repo := &settingsRepositoryMock{}
	svc, rt := newTestService(repo, testConfig())

	settings, err := svc.Update(context.Background(), map[string]any{
		"ai_provider_format":      "openai",
		"api_base_url":            "https://api.example.com",
		"api_key":                 "k",
		"image_resolution":        "2K",
		"image_aspect_ratio":      "1:1",
		"max_description_workers": float64(3),
		"max_image_workers":       float64(7),
	})
	require.NoError(t, err)

	mirror := rt.Snapshot()
	assert.Equal(t, settings.AIProviderFormat, mirror[config.KeyAIProviderFormat])
	assert.Equal(t, *settings.APIBaseURL, mirror[config.KeyGoogleAPIBase])
	assert.Equal(t, *settings.APIBaseURL, mirror[config.KeyOpenAIAPIBase])
	assert.Equal(t, *settings.APIKey, mirror[config.KeyGoogleAPIKey])
	assert.Equal(t, *settings.APIKey, mirror[config.KeyOpenAIAPIKey])
	assert.Equal(t, settings.ImageResolution, mirror[config.KeyDefaultResolution])
	assert.Equal(t, settings.ImageAspectRatio, mirror[config.KeyDefaultAspectRatio])
	assert.Equal(t, settings.MaxDescriptionWorkers, mirror[config.KeyMaxDescriptionWorkers])
	assert.Equal(t, settings.MaxImageWorkers, mirror[config.KeyMaxImageWorkers])
	assert.False(t, settings.UpdatedAt.IsZero())
}

func TestReset_RestoresGeminiDefaults(t *testing.T) {
	base := "https://changed.example.com"
	repo := &settingsRepositoryMock{
		GetFunc: func(ctx context.Context) (*models.Settings, error) {
			s := baseSettings()
			s.AIProviderFormat = "openai"
			s.APIBaseURL = &base
			s.ImageResolution = "4K"
			s.MaxImageWorkers = 12
			return s, nil
		},
	}
	cfg := testConfig()
	svc, _ := newTestService(repo, cfg)

	settings, err := svc.Reset(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "gemini", settings.AIProviderFormat)
	require.NotNil(t, settings.APIBaseURL)
	assert.Equal(t, cfg.GoogleAPIBase, *settings.APIBaseURL)
	require.NotNil(t, settings.APIKey)
	assert.Equal(t, cfg.GoogleAPIKey, *settings.APIKey)
	assert.Equal(t, "1K", settings.ImageResolution)
	assert.Equal(t, "16:9", settings.ImageAspectRatio)
	assert.Equal(t, 5, settings.MaxDescriptionWorkers)
	assert.Equal(t, 5, settings.MaxImageWorkers)
}

func TestReset_RestoresOpenAIDefaults(t *testing.T) {
	repo := &settingsRepositoryMock{}
	cfg := testConfig()
	cfg.AIProviderFormat = "OpenAI" // provider match is case-insensitive
	svc, _ := newTestService(repo, cfg)

	settings, err := svc.Reset(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "OpenAI", settings.AIProviderFormat)
	require.NotNil(t, settings.APIBaseURL)
	assert.Equal(t, cfg.OpenAIAPIBase, *settings.APIBaseURL)
	require.NotNil(t, settings.APIKey)
	assert.Equal(t, cfg.OpenAIAPIKey, *settings.APIKey)
}

func TestReset_EmptyDefaultsBecomeNil(t *testing.T) {
	repo := &settingsRepositoryMock{}
	cfg := testConfig()
	cfg.GoogleAPIBase = ""
	cfg.GoogleAPIKey = ""
	svc, rt := newTestService(repo, cfg)

	settings, err := svc.Reset(context.Background())
	require.NoError(t, err)
	assert.Nil(t, settings.APIBaseURL)
	assert.Nil(t, settings.APIKey)

	_, ok := rt.GetString(config.KeyGoogleAPIBase)
	assert.False(t, ok)
	_, ok = rt.GetString(config.KeyGoogleAPIKey)
	assert.False(t, ok)
}
