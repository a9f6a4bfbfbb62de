package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/moonheart/banana-slides/internal/config"
	"github.com/moonheart/banana-slides/internal/models"
)

// SettingsRepository owns the singleton settings row.
type SettingsRepository interface {
	// Get returns the settings row, creating it from static defaults on
	// first access.
	Get(ctx context.Context) (*models.Settings, error)
	// Save persists the full row inside a transaction.
	Save(ctx context.Context, settings *models.Settings) error
}

type settingsRepository struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewSettingsRepository(db *gorm.DB, cfg *config.Config) SettingsRepository {
	return &settingsRepository{db: db, cfg: cfg}
}

func (r *settingsRepository) Get(ctx context.Context) (*models.Settings, error) {
	var s models.Settings
	err := r.db.WithContext(ctx).First(&s, models.SettingsID).Error
	if err == nil {
		return &s, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created := models.DefaultSettings(r.cfg)
	if err := r.db.WithContext(ctx).Create(created).Error; err != nil {
		// A concurrent first access may have inserted the row already.
		if rerr := r.db.WithContext(ctx).First(&s, models.SettingsID).Error; rerr == nil {
			return &s, nil
		}
		return nil, err
	}
	return created, nil
}

func (r *settingsRepository) Save(ctx context.Context, settings *models.Settings) error {
	settings.ID = models.SettingsID
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Save(settings).Error
	})
}
