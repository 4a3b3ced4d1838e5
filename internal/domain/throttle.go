package domain

import (
	"fmt"
	"strings"
	"time"
)

// ThrottledRoom is a room with slow mode enabled.
type ThrottledRoom struct {
	RoomID      string
	DisplayName string
	CreatedAt   time.Time
}

// LastMessageRecord is the send time of a user's last accepted message in a room.
type LastMessageRecord struct {
	UserID    string
	RoomID    string
	CreatedAt time.Time
}

// Message is an outgoing chat message offered to the prevention hook.
type Message struct {
	ID        string
	UserID    string
	RoomID    string
	CreatedAt time.Time
}

func (m Message) Validate() error {
	if strings.TrimSpace(m.UserID) == "" {
		return fmt.Errorf("%w: userId is required", ErrValidation)
	}
	if strings.TrimSpace(m.RoomID) == "" {
		return fmt.Errorf("%w: roomId is required", ErrValidation)
	}
	return nil
}

// Decision is the outcome of evaluating one message.
type Decision struct {
	Allowed bool
	// Throttled is true when the room had slow mode enabled at evaluation time.
	// Accepted messages in throttled rooms must be recorded by the caller.
	Throttled bool
	// SecondsRemaining is set only for denials and is always >= 1.
	SecondsRemaining int
}

// Accept returns an allowing decision.
func Accept(throttled bool) Decision {
	return Decision{Allowed: true, Throttled: throttled}
}

// Deny returns a blocking decision with the given wait in whole seconds.
func Deny(secondsRemaining int) Decision {
	if secondsRemaining < 1 {
		secondsRemaining = 1
	}
	return Decision{Throttled: true, SecondsRemaining: secondsRemaining}
}

// PendingNotice carries a denial from the prevention hook to the relay consumer.
type PendingNotice struct {
	ID               string
	UserID           string
	RoomID           string
	SecondsRemaining int
	Secret           string
	CreatedAt        time.Time
}

func (n PendingNotice) Validate() error {
	if strings.TrimSpace(n.UserID) == "" {
		return fmt.Errorf("%w: userId is required", ErrValidation)
	}
	if strings.TrimSpace(n.RoomID) == "" {
		return fmt.Errorf("%w: roomId is required", ErrValidation)
	}
	if n.SecondsRemaining < 1 {
		return fmt.Errorf("%w: timeLeft must be a positive integer", ErrValidation)
	}
	return nil
}
