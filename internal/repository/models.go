package repository

import (
	"time"

	"github.com/kursadbilgin/slowmode-engine/internal/domain"
)

// ThrottledRoomModel is the persistence model for the throttled_rooms table.
type ThrottledRoomModel struct {
	RoomID      string `gorm:"type:varchar(64);primaryKey"`
	DisplayName string `gorm:"type:varchar(255);not null;default:''"`
	CreatedAt   time.Time
}

func (ThrottledRoomModel) TableName() string {
	return "throttled_rooms"
}

// LastMessageModel is the persistence model for last_messages.
// (user_id, room_id) is the composite primary key, one row per pair.
// timestamptz keeps microseconds, so a read returns the recorded time
// truncated to the microsecond.
type LastMessageModel struct {
	UserID    string    `gorm:"type:varchar(64);primaryKey"`
	RoomID    string    `gorm:"type:varchar(64);primaryKey"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null;autoCreateTime:false"`
}

func (LastMessageModel) TableName() string {
	return "last_messages"
}

// SettingModel is the persistence model for app_settings.
type SettingModel struct {
	Key       string `gorm:"type:varchar(64);primaryKey"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (SettingModel) TableName() string {
	return "app_settings"
}

func throttledRoomModelFromDomain(room domain.Room) *ThrottledRoomModel {
	return &ThrottledRoomModel{
		RoomID:      room.ID,
		DisplayName: room.DisplayName,
	}
}

func throttledRoomModelToDomain(m *ThrottledRoomModel) domain.ThrottledRoom {
	if m == nil {
		return domain.ThrottledRoom{}
	}

	return domain.ThrottledRoom{
		RoomID:      m.RoomID,
		DisplayName: m.DisplayName,
		CreatedAt:   m.CreatedAt,
	}
}
