package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kursadbilgin/slowmode-engine/internal/domain"
	"github.com/kursadbilgin/slowmode-engine/internal/throttle"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ throttle.TimestampStore = (*GormTimestampStore)(nil)

// GormTimestampStore stores last accepted message times in postgres.
type GormTimestampStore struct {
	db *gorm.DB
}

func NewGormTimestampStore(db *gorm.DB) *GormTimestampStore {
	return &GormTimestampStore{db: db}
}

func (s *GormTimestampStore) LastMessageTime(ctx context.Context, userID, roomID string) (time.Time, bool, error) {
	var model LastMessageModel
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND room_id = ?", userID, roomID).
		Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return model.CreatedAt, true, nil
}

func (s *GormTimestampStore) RecordMessage(ctx context.Context, userID, roomID string, at time.Time) error {
	model := &LastMessageModel{
		UserID:    userID,
		RoomID:    roomID,
		CreatedAt: at.UTC(),
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "room_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"created_at"}),
		}).
		Create(model).Error
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrWriteFailed, err)
	}
	return nil
}

func (s *GormTimestampStore) DropAll(ctx context.Context) error {
	return s.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&LastMessageModel{}).Error
}
