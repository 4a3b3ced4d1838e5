package throttle

import (
	"context"
	"fmt"
	"time"

	"github.com/kursadbilgin/slowmode-engine/internal/domain"
)

// Evaluator decides whether a message may be sent. It holds no state of its own.
type Evaluator struct {
	rooms      RoomRegistry
	timestamps TimestampStore
	cooldown   *Cooldown
}

func NewEvaluator(rooms RoomRegistry, timestamps TimestampStore, cooldown *Cooldown) (*Evaluator, error) {
	if rooms == nil {
		return nil, fmt.Errorf("room registry is required")
	}
	if timestamps == nil {
		return nil, fmt.Errorf("timestamp store is required")
	}
	if cooldown == nil {
		cooldown = NewCooldown(DefaultCooldownSeconds)
	}

	return &Evaluator{
		rooms:      rooms,
		timestamps: timestamps,
		cooldown:   cooldown,
	}, nil
}

// Evaluate returns the decision for a message sent by userID in roomID at now.
// On a read error the returned decision allows the message and the error is
// reported alongside it, so callers can fail open.
func (e *Evaluator) Evaluate(ctx context.Context, userID, roomID string, now time.Time) (domain.Decision, error) {
	throttled, err := e.rooms.IsThrottled(ctx, roomID)
	if err != nil {
		return domain.Accept(false), fmt.Errorf("failed to read room registry: %w", err)
	}
	if !throttled {
		return domain.Accept(false), nil
	}

	last, ok, err := e.timestamps.LastMessageTime(ctx, userID, roomID)
	if err != nil {
		return domain.Accept(true), fmt.Errorf("failed to read last message time: %w", err)
	}
	if !ok {
		return domain.Accept(true), nil
	}

	return Decide(last, now, e.cooldown.Duration()), nil
}

// Decide applies the cooldown window to a known last message time.
func Decide(last, now time.Time, cooldown time.Duration) domain.Decision {
	elapsed := now.Sub(last)
	// A clock that went backwards counts as no time elapsed.
	if elapsed < 0 {
		elapsed = 0
	}

	remaining := cooldown - elapsed
	if remaining <= 0 {
		return domain.Accept(true)
	}

	return domain.Deny(CeilSeconds(remaining))
}

// CeilSeconds rounds a positive duration up to whole seconds.
func CeilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}
