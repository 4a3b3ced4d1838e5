package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kursadbilgin/slowmode-engine/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Setting keys.
const (
	SettingSlowModeDuration = "Slow_Mode_Duration"
	SettingRelaySecret      = "relay_secret"
)

type SettingsRepository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// GetOrCreate stores value only when key is absent and returns the stored value.
	GetOrCreate(ctx context.Context, key, value string) (string, error)
}

type GormSettingsRepo struct {
	db *gorm.DB
}

func NewGormSettingsRepo(db *gorm.DB) *GormSettingsRepo {
	return &GormSettingsRepo{db: db}
}

func (r *GormSettingsRepo) Get(ctx context.Context, key string) (string, bool, error) {
	var model SettingModel
	err := r.db.WithContext(ctx).Where("key = ?", key).Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return model.Value, true, nil
}

func (r *GormSettingsRepo) Set(ctx context.Context, key, value string) error {
	model := &SettingModel{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(model).Error
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrWriteFailed, err)
	}
	return nil
}

func (r *GormSettingsRepo) GetOrCreate(ctx context.Context, key, value string) (string, error) {
	model := &SettingModel{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(model).Error
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrWriteFailed, err)
	}

	stored, ok, err := r.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: setting %q missing after create", domain.ErrWriteFailed, key)
	}
	return stored, nil
}
