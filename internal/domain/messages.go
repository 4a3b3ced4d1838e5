package domain

import (
	"fmt"
	"strings"
)

// User facing texts of the slow mode command and notices.
const (
	MsgMustBeModeratorOrAdmin = "Only admins and global moderators can interact with Slow Mode. Please ask an administrator to enable slow mode"
	MsgNoDirectRoom           = "Slow mode cannot be enabled inside a direct room."
	MsgAlreadySlowed          = "This room already has slow mode enabled. If not in effect please contact an administrator or moderator"
	MsgAlreadyNotSlowed       = "This room does not have slow mode enabled. If that is not the case, please contact an administrator or moderator"
	MsgEnableFailed           = "Failed to enable slow mode! I don't know what is wrong. Please contact your server administrator"
	MsgDisableFailed          = "Failed to disable slow mode! I don't know what is wrong. Please contact your server administrator"
	MsgEnableSuccessful       = "Slow mode enabled for this room"
	MsgDisableSuccessful      = "Slow mode disabled for this room"
	MsgNoSlowedRooms          = "no rooms have slow mode enabled"
)

// HelpText lists the slow mode subcommands.
func HelpText() string {
	return strings.Join([]string{
		"`/slowmode enable` to enable slow mode for current room",
		"`/slowmode disable` to disable slow mode for current room",
		"`/slowmode list` to show list of rooms where slow mode is enabled",
	}, "\n")
}

// WaitNotice is the text delivered to a blocked user.
func WaitNotice(secondsRemaining int) string {
	unit := "second"
	if secondsRemaining != 1 {
		unit = "seconds"
	}
	return fmt.Sprintf(
		"Slow mode is enabled for this room, you must wait %d more %s before sending another message",
		secondsRemaining,
		unit,
	)
}

// RoomListText renders enabled rooms as a numbered list.
func RoomListText(rooms []ThrottledRoom) string {
	if len(rooms) == 0 {
		return MsgNoSlowedRooms
	}

	lines := make([]string, 0, len(rooms))
	for i, room := range rooms {
		name := strings.TrimSpace(room.DisplayName)
		if name == "" {
			name = room.RoomID
		}
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, name))
	}
	return strings.Join(lines, "\n")
}
