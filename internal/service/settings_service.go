package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/kursadbilgin/slowmode-engine/internal/domain"
	"github.com/kursadbilgin/slowmode-engine/internal/relay"
	"github.com/kursadbilgin/slowmode-engine/internal/repository"
	"github.com/kursadbilgin/slowmode-engine/internal/throttle"
	"go.uber.org/zap"
)

// SettingsService owns the persisted runtime settings: the cooldown and the
// relay secret.
type SettingsService struct {
	settings       repository.SettingsRepository
	cooldown       *throttle.Cooldown
	logger         *zap.Logger
	generateSecret func(length int) (string, error)
}

func NewSettingsService(
	settings repository.SettingsRepository,
	cooldown *throttle.Cooldown,
	logger *zap.Logger,
) (*SettingsService, error) {
	if settings == nil {
		return nil, fmt.Errorf("settings repository is required")
	}
	if cooldown == nil {
		return nil, fmt.Errorf("cooldown is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &SettingsService{
		settings:       settings,
		cooldown:       cooldown,
		logger:         logger,
		generateSecret: relay.GenerateSecret,
	}, nil
}

// Load applies the persisted cooldown, if any, to the live value. A stored
// value that is not a positive integer is ignored.
func (s *SettingsService) Load(ctx context.Context) error {
	raw, ok, err := s.settings.Get(ctx, repository.SettingSlowModeDuration)
	if err != nil {
		return fmt.Errorf("failed to load cooldown setting: %w", err)
	}
	if !ok {
		return nil
	}

	seconds, err := strconv.Atoi(strings.TrimSpace(raw))
	if err == nil {
		err = s.cooldown.Set(seconds)
	}
	if err != nil {
		s.logger.Warn("ignoring invalid persisted cooldown",
			zap.String("value", raw),
			zap.Error(err),
		)
		return nil
	}

	s.logger.Info("cooldown loaded", zap.Int("seconds", seconds))
	return nil
}

func (s *SettingsService) Cooldown() int {
	return s.cooldown.Seconds()
}

// UpdateCooldown persists seconds and applies it to the next evaluation.
func (s *SettingsService) UpdateCooldown(ctx context.Context, seconds int) error {
	if seconds <= 0 {
		return fmt.Errorf("%w: cooldown must be a positive number of seconds", domain.ErrValidation)
	}

	if err := s.settings.Set(ctx, repository.SettingSlowModeDuration, strconv.Itoa(seconds)); err != nil {
		return fmt.Errorf("failed to persist cooldown: %w", err)
	}
	if err := s.cooldown.Set(seconds); err != nil {
		return err
	}

	s.logger.Info("cooldown updated", zap.Int("seconds", seconds))
	return nil
}

// EnsureSecret returns the relay secret. A non-empty override wins; otherwise
// the secret generated on first install is reused.
func (s *SettingsService) EnsureSecret(ctx context.Context, override string) (string, error) {
	if secret := strings.TrimSpace(override); secret != "" {
		return secret, nil
	}

	generated, err := s.generateSecret(relay.DefaultSecretLength)
	if err != nil {
		return "", err
	}

	secret, err := s.settings.GetOrCreate(ctx, repository.SettingRelaySecret, generated)
	if err != nil {
		return "", fmt.Errorf("failed to persist relay secret: %w", err)
	}
	return secret, nil
}
