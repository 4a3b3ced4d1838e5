package domain

import (
	"fmt"
	"strings"
)

// RoomType is the kind of chat room as reported by the chat platform.
type RoomType string

const (
	RoomTypeChannel       RoomType = "CHANNEL"
	RoomTypePrivateGroup  RoomType = "PRIVATE_GROUP"
	RoomTypeDirectMessage RoomType = "DIRECT_MESSAGE"
	RoomTypeLivechat      RoomType = "LIVE_CHAT"
)

func (t RoomType) String() string { return string(t) }

func (t RoomType) IsValid() bool {
	switch t {
	case RoomTypeChannel, RoomTypePrivateGroup, RoomTypeDirectMessage, RoomTypeLivechat:
		return true
	}
	return false
}

func ParseRoomTypeFromString(s string) (RoomType, error) {
	rt := RoomType(strings.ToUpper(strings.TrimSpace(s)))
	if !rt.IsValid() {
		return "", fmt.Errorf("%w: invalid room type %q", ErrValidation, s)
	}
	return rt, nil
}

// Room is a chat room resolved from the chat platform.
type Room struct {
	ID          string
	DisplayName string
	Type        RoomType
}

// IsDirect reports whether the room is a one-to-one conversation.
func (r Room) IsDirect() bool {
	return r.Type == RoomTypeDirectMessage
}

// Roles allowed to manage slow mode.
const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
)

// User is a chat user resolved from the chat platform.
type User struct {
	ID       string
	Username string
	Roles    []string
}

// CanManageSlowMode reports whether the user holds an admin or moderator role.
func (u User) CanManageSlowMode() bool {
	for _, role := range u.Roles {
		switch strings.ToLower(strings.TrimSpace(role)) {
		case RoleAdmin, RoleModerator:
			return true
		}
	}
	return false
}
