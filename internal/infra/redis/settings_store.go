package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/kursadbilgin/slowmode-engine/internal/domain"
	"github.com/kursadbilgin/slowmode-engine/internal/repository"
	goredis "github.com/redis/go-redis/v9"
)

const settingsKeySuffix = "settings"

var _ repository.SettingsRepository = (*SettingsStore)(nil)

// SettingsStore keeps runtime settings in a redis hash.
type SettingsStore struct {
	client *goredis.Client
	key    string
}

func NewSettingsStore(client *goredis.Client, keyPrefix string) (*SettingsStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}

	return &SettingsStore{
		client: client,
		key:    normalizePrefix(keyPrefix) + ":" + settingsKeySuffix,
	}, nil
}

func (s *SettingsStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.HGet(ctx, s.key, key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read setting %q: %w", key, err)
	}
	return value, true, nil
}

func (s *SettingsStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.HSet(ctx, s.key, key, value).Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrWriteFailed, err)
	}
	return nil
}

func (s *SettingsStore) GetOrCreate(ctx context.Context, key, value string) (string, error) {
	if err := s.client.HSetNX(ctx, s.key, key, value).Err(); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrWriteFailed, err)
	}

	stored, ok, err := s.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: setting %q missing after create", domain.ErrWriteFailed, key)
	}
	return stored, nil
}
