package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/kursadbilgin/slowmode-engine/internal/domain"
	"github.com/kursadbilgin/slowmode-engine/internal/throttle"
	goredis "github.com/redis/go-redis/v9"
)

const lastMessagesKeySuffix = "last_messages"

var _ throttle.TimestampStore = (*TimestampStore)(nil)

// TimestampStore keeps last accepted message times in a single redis hash,
// one field per (user, room) pair holding unix nanoseconds.
type TimestampStore struct {
	client *goredis.Client
	key    string
}

func NewTimestampStore(client *goredis.Client, keyPrefix string) (*TimestampStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}

	return &TimestampStore{
		client: client,
		key:    normalizePrefix(keyPrefix) + ":" + lastMessagesKeySuffix,
	}, nil
}

func (s *TimestampStore) LastMessageTime(ctx context.Context, userID, roomID string) (time.Time, bool, error) {
	raw, err := s.client.HGet(ctx, s.key, pairField(userID, roomID)).Result()
	if errors.Is(err, goredis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to read last message time: %w", err)
	}

	nanos, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("corrupt last message time %q: %w", raw, err)
	}
	return time.Unix(0, nanos).UTC(), true, nil
}

func (s *TimestampStore) RecordMessage(ctx context.Context, userID, roomID string, at time.Time) error {
	err := s.client.HSet(ctx, s.key, pairField(userID, roomID), strconv.FormatInt(at.UnixNano(), 10)).Err()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrWriteFailed, err)
	}
	return nil
}

func (s *TimestampStore) DropAll(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("failed to drop last message times: %w", err)
	}
	return nil
}

// pairField length-prefixes the user id so ids containing ':' cannot collide.
func pairField(userID, roomID string) string {
	return strconv.Itoa(len(userID)) + ":" + userID + ":" + roomID
}
