package redis

import (
	"context"
	"fmt"
	"strings"

	"github.com/kursadbilgin/slowmode-engine/internal/domain"
	"github.com/kursadbilgin/slowmode-engine/internal/throttle"
	goredis "github.com/redis/go-redis/v9"
)

const (
	defaultKeyPrefix = "slowmode"
	roomsKeySuffix   = "rooms"
	namesKeySuffix   = "rooms:names"
)

// enableScript adds the room to the set and records its display name only
// when the room was not a member yet.
var enableScript = goredis.NewScript(`
if redis.call("SADD", KEYS[1], ARGV[1]) == 0 then
  return 0
end
redis.call("HSET", KEYS[2], ARGV[1], ARGV[2])
return 1
`)

var disableScript = goredis.NewScript(`
if redis.call("SREM", KEYS[1], ARGV[1]) == 0 then
  return 0
end
redis.call("HDEL", KEYS[2], ARGV[1])
return 1
`)

var _ throttle.RoomRegistry = (*RoomRegistry)(nil)

// RoomRegistry keeps throttled room ids in a redis set.
type RoomRegistry struct {
	client   *goredis.Client
	roomsKey string
	namesKey string
}

func NewRoomRegistry(client *goredis.Client, keyPrefix string) (*RoomRegistry, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}

	prefix := normalizePrefix(keyPrefix)
	return &RoomRegistry{
		client:   client,
		roomsKey: prefix + ":" + roomsKeySuffix,
		namesKey: prefix + ":" + namesKeySuffix,
	}, nil
}

func (r *RoomRegistry) IsThrottled(ctx context.Context, roomID string) (bool, error) {
	ok, err := r.client.SIsMember(ctx, r.roomsKey, roomID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to read throttled rooms: %w", err)
	}
	return ok, nil
}

func (r *RoomRegistry) Enable(ctx context.Context, room domain.Room) (string, error) {
	added, err := enableScript.Run(ctx, r.client, []string{r.roomsKey, r.namesKey}, room.ID, room.DisplayName).Int()
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrWriteFailed, err)
	}
	if added == 0 {
		return "", domain.ErrAlreadyEnabled
	}
	return room.ID, nil
}

func (r *RoomRegistry) Disable(ctx context.Context, roomID string) error {
	removed, err := disableScript.Run(ctx, r.client, []string{r.roomsKey, r.namesKey}, roomID).Int()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrWriteFailed, err)
	}
	if removed == 0 {
		return domain.ErrNotEnabled
	}
	return nil
}

func (r *RoomRegistry) ListAll(ctx context.Context) ([]domain.ThrottledRoom, error) {
	ids, err := r.client.SMembers(ctx, r.roomsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list throttled rooms: %w", err)
	}
	if len(ids) == 0 {
		return []domain.ThrottledRoom{}, nil
	}

	names, err := r.client.HMGet(ctx, r.namesKey, ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read room names: %w", err)
	}

	rooms := make([]domain.ThrottledRoom, 0, len(ids))
	for i, id := range ids {
		room := domain.ThrottledRoom{RoomID: id}
		if i < len(names) {
			if name, ok := names[i].(string); ok {
				room.DisplayName = name
			}
		}
		rooms = append(rooms, room)
	}
	return rooms, nil
}

func (r *RoomRegistry) DropAll(ctx context.Context) error {
	if err := r.client.Del(ctx, r.roomsKey, r.namesKey).Err(); err != nil {
		return fmt.Errorf("failed to drop throttled rooms: %w", err)
	}
	return nil
}

func normalizePrefix(prefix string) string {
	trimmed := strings.Trim(strings.TrimSpace(prefix), ":")
	if trimmed == "" {
		return defaultKeyPrefix
	}
	return trimmed
}
