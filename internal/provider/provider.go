package provider

import (
	"context"

	"github.com/kursadbilgin/slowmode-engine/internal/domain"
)

// Platform is the chat platform port used to resolve rooms and users and to
// deliver direct notices.
type Platform interface {
	GetRoom(ctx context.Context, roomID string) (*domain.Room, error)
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	NotifyUser(ctx context.Context, notice DirectNotice) error
}

// DirectNotice is a message shown only to UserID inside RoomID.
type DirectNotice struct {
	UserID   string
	RoomID   string
	SenderID string
	Text     string
}
