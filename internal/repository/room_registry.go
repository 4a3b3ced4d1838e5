package repository

import (
	"context"
	"fmt"

	"github.com/kursadbilgin/slowmode-engine/internal/domain"
	"github.com/kursadbilgin/slowmode-engine/internal/throttle"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ throttle.RoomRegistry = (*GormRoomRegistry)(nil)

// GormRoomRegistry stores throttled rooms in postgres.
type GormRoomRegistry struct {
	db *gorm.DB
}

func NewGormRoomRegistry(db *gorm.DB) *GormRoomRegistry {
	return &GormRoomRegistry{db: db}
}

func (r *GormRoomRegistry) IsThrottled(ctx context.Context, roomID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&ThrottledRoomModel{}).
		Where("room_id = ?", roomID).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormRoomRegistry) Enable(ctx context.Context, room domain.Room) (string, error) {
	model := throttledRoomModelFromDomain(room)
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(model)
	if result.Error != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrWriteFailed, result.Error)
	}
	if result.RowsAffected == 0 {
		return "", domain.ErrAlreadyEnabled
	}
	return model.RoomID, nil
}

func (r *GormRoomRegistry) Disable(ctx context.Context, roomID string) error {
	result := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Delete(&ThrottledRoomModel{})
	if result.Error != nil {
		return fmt.Errorf("%w: %v", domain.ErrWriteFailed, result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotEnabled
	}
	return nil
}

func (r *GormRoomRegistry) ListAll(ctx context.Context) ([]domain.ThrottledRoom, error) {
	var models []ThrottledRoomModel
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}

	rooms := make([]domain.ThrottledRoom, 0, len(models))
	for i := range models {
		rooms = append(rooms, throttledRoomModelToDomain(&models[i]))
	}
	return rooms, nil
}

func (r *GormRoomRegistry) DropAll(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&ThrottledRoomModel{}).Error
}
