package throttle

import (
	"context"
	"time"

	"github.com/kursadbilgin/slowmode-engine/internal/domain"
)

// RoomRegistry tracks which rooms have slow mode enabled.
type RoomRegistry interface {
	IsThrottled(ctx context.Context, roomID string) (bool, error)
	// Enable returns domain.ErrAlreadyEnabled when the room is already a member.
	Enable(ctx context.Context, room domain.Room) (string, error)
	// Disable returns domain.ErrNotEnabled when the room is not a member.
	Disable(ctx context.Context, roomID string) error
	ListAll(ctx context.Context) ([]domain.ThrottledRoom, error)
	DropAll(ctx context.Context) error
}

// TimestampStore keeps the last accepted message time per (user, room).
type TimestampStore interface {
	// LastMessageTime reports ok=false when no record exists for the pair.
	LastMessageTime(ctx context.Context, userID, roomID string) (time.Time, bool, error)
	// RecordMessage overwrites the record for the pair. Only accepted messages may be recorded.
	RecordMessage(ctx context.Context, userID, roomID string, at time.Time) error
	DropAll(ctx context.Context) error
}
