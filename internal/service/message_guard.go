package service

import (
	"context"
	"fmt"
	"time"

	"github.com/kursadbilgin/slowmode-engine/internal/domain"
	"github.com/kursadbilgin/slowmode-engine/internal/observability"
	"github.com/kursadbilgin/slowmode-engine/internal/throttle"
	"go.uber.org/zap"
)

// Notifier schedules a wait notice for a blocked user without blocking.
type Notifier interface {
	Dispatch(ctx context.Context, userID, roomID string, secondsRemaining int)
}

// MessageGuard is the pre-send hook: it evaluates a message, records accepted
// sends in throttled rooms and schedules a notice on denial.
type MessageGuard struct {
	evaluator  *throttle.Evaluator
	timestamps throttle.TimestampStore
	notifier   Notifier
	logger     *zap.Logger
	metrics    *observability.Metrics
	now        func() time.Time
}

func NewMessageGuard(
	evaluator *throttle.Evaluator,
	timestamps throttle.TimestampStore,
	notifier Notifier,
	logger *zap.Logger,
) (*MessageGuard, error) {
	if evaluator == nil {
		return nil, fmt.Errorf("evaluator is required")
	}
	if timestamps == nil {
		return nil, fmt.Errorf("timestamp store is required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &MessageGuard{
		evaluator:  evaluator,
		timestamps: timestamps,
		notifier:   notifier,
		logger:     logger,
		now:        time.Now,
	}, nil
}

func (g *MessageGuard) SetMetrics(metrics *observability.Metrics) {
	if g == nil {
		return
	}
	g.metrics = metrics
}

// Check returns the decision for msg. Only an invalid message yields an
// error; storage failures are logged and the message is let through.
func (g *MessageGuard) Check(ctx context.Context, msg domain.Message) (domain.Decision, error) {
	if err := msg.Validate(); err != nil {
		return domain.Decision{}, err
	}

	sentAt := msg.CreatedAt
	if sentAt.IsZero() {
		sentAt = g.now()
	}
	logger := observability.WithContextLogger(g.logger, ctx).With(
		zap.String("userId", msg.UserID),
		zap.String("roomId", msg.RoomID),
	)

	decision, err := g.evaluator.Evaluate(ctx, msg.UserID, msg.RoomID, sentAt)
	if err != nil {
		logger.Error("slow mode evaluation failed, allowing message", zap.Error(err))
		g.metrics.IncStoreFailure("read")
		g.metrics.IncEvaluation("allowed")
		return decision, nil
	}

	switch {
	case !decision.Allowed:
		logger.Info("message blocked by slow mode", zap.Int("secondsRemaining", decision.SecondsRemaining))
		g.metrics.IncEvaluation("denied")
		g.notifier.Dispatch(ctx, msg.UserID, msg.RoomID, decision.SecondsRemaining)
	case decision.Throttled:
		g.metrics.IncEvaluation("allowed")
		if err := g.timestamps.RecordMessage(ctx, msg.UserID, msg.RoomID, sentAt); err != nil {
			logger.Error("failed to record last message time", zap.Error(err))
			g.metrics.IncStoreFailure("record_message")
		}
	default:
		g.metrics.IncEvaluation("unthrottled")
	}

	return decision, nil
}
