package relay

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/kursadbilgin/slowmode-engine/internal/domain"
	"github.com/kursadbilgin/slowmode-engine/internal/observability"
	"github.com/kursadbilgin/slowmode-engine/internal/provider"
	"go.uber.org/zap"
)

// Consumer delivers pending notices that carry the install secret.
type Consumer struct {
	secret    string
	platform  provider.Platform
	botUserID string
	logger    *zap.Logger
	metrics   *observability.Metrics
}

func NewConsumer(secret string, platform provider.Platform, botUserID string, logger *zap.Logger) (*Consumer, error) {
	if secret == "" {
		return nil, fmt.Errorf("relay secret is required")
	}
	if platform == nil {
		return nil, fmt.Errorf("chat platform is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Consumer{
		secret:    secret,
		platform:  platform,
		botUserID: botUserID,
		logger:    logger,
	}, nil
}

func (c *Consumer) SetMetrics(metrics *observability.Metrics) {
	if c == nil {
		return
	}
	c.metrics = metrics
}

// Deliver validates and delivers one notice. It returns domain.ErrUnauthorized
// on a secret mismatch and domain.ErrNotFound when the room or user is gone;
// in both cases nothing is delivered.
func (c *Consumer) Deliver(ctx context.Context, notice domain.PendingNotice) error {
	logger := observability.WithContextLogger(c.logger, ctx).With(
		zap.String("userId", notice.UserID),
		zap.String("roomId", notice.RoomID),
	)

	if subtle.ConstantTimeCompare([]byte(notice.Secret), []byte(c.secret)) != 1 {
		logger.Warn("rejecting slow mode notice: secret mismatch")
		c.metrics.IncNoticeRejected("unauthorized")
		return fmt.Errorf("%w: invalid relay secret", domain.ErrUnauthorized)
	}

	if err := notice.Validate(); err != nil {
		logger.Warn("rejecting slow mode notice: invalid payload", zap.Error(err))
		c.metrics.IncNoticeRejected("invalid")
		return err
	}

	room, err := c.platform.GetRoom(ctx, notice.RoomID)
	if err != nil {
		return c.resolveFailed(logger, "room", err)
	}
	user, err := c.platform.GetUser(ctx, notice.UserID)
	if err != nil {
		return c.resolveFailed(logger, "user", err)
	}

	err = c.platform.NotifyUser(ctx, provider.DirectNotice{
		UserID:   user.ID,
		RoomID:   room.ID,
		SenderID: c.botUserID,
		Text:     domain.WaitNotice(notice.SecondsRemaining),
	})
	if err != nil {
		logger.Error("failed to deliver slow mode notice", zap.Error(err))
		c.metrics.IncNoticeRejected("delivery_failed")
		return fmt.Errorf("failed to deliver notice: %w", err)
	}

	c.metrics.IncNoticeDelivered()
	logger.Debug("slow mode notice delivered", zap.Int("secondsRemaining", notice.SecondsRemaining))
	return nil
}

func (c *Consumer) resolveFailed(logger *zap.Logger, entity string, err error) error {
	if provider.IsNotFound(err) {
		logger.Warn("rejecting slow mode notice: "+entity+" not found", zap.Error(err))
		c.metrics.IncNoticeRejected("not_found")
		return fmt.Errorf("%w: %s", domain.ErrNotFound, entity)
	}

	logger.Error("failed to resolve "+entity+" for slow mode notice", zap.Error(err))
	c.metrics.IncNoticeRejected("resolve_failed")
	return fmt.Errorf("failed to resolve %s: %w", entity, err)
}
