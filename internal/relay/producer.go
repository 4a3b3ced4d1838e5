package relay

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kursadbilgin/slowmode-engine/internal/domain"
	"github.com/kursadbilgin/slowmode-engine/internal/observability"
	"go.uber.org/zap"
)

// Producer schedules wait notices for blocked users. Dispatch never blocks on
// delivery; the caller's decision is returned independently of the transport.
type Producer struct {
	secret     string
	dispatcher Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
	now        func() time.Time
	newID      func() string

	wg sync.WaitGroup
}

func NewProducer(secret string, dispatcher Dispatcher, logger *zap.Logger) (*Producer, error) {
	if secret == "" {
		return nil, fmt.Errorf("relay secret is required")
	}
	if dispatcher == nil {
		return nil, fmt.Errorf("dispatcher is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Producer{
		secret:     secret,
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
		newID:      uuid.NewString,
	}, nil
}

func (p *Producer) SetMetrics(metrics *observability.Metrics) {
	if p == nil {
		return
	}
	p.metrics = metrics
}

// Dispatch sends the notice in the background. Failures are logged and dropped.
func (p *Producer) Dispatch(ctx context.Context, userID, roomID string, secondsRemaining int) {
	notice := domain.PendingNotice{
		ID:               p.newID(),
		UserID:           userID,
		RoomID:           roomID,
		SecondsRemaining: secondsRemaining,
		Secret:           p.secret,
		CreatedAt:        p.now().UTC(),
	}

	// The hook's request context ends as soon as the decision is returned.
	sendCtx := context.WithoutCancel(ctx)
	logger := observability.WithContextLogger(p.logger, ctx)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		transport := p.dispatcher.Name()
		if err := p.dispatcher.Send(sendCtx, notice); err != nil {
			logger.Warn("failed to dispatch slow mode notice",
				zap.String("noticeId", notice.ID),
				zap.String("userId", notice.UserID),
				zap.String("roomId", notice.RoomID),
				zap.String("transport", transport),
				zap.Error(err),
			)
			p.metrics.IncNoticeDispatched(transport, "failed")
			return
		}
		p.metrics.IncNoticeDispatched(transport, "sent")
	}()
}

// Wait blocks until all in-flight dispatches have returned.
func (p *Producer) Wait() {
	p.wg.Wait()
}
