package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/kursadbilgin/slowmode-engine/internal/domain"
	"github.com/kursadbilgin/slowmode-engine/internal/observability"
	"github.com/kursadbilgin/slowmode-engine/internal/queue"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const minWorkerConcurrency = 1

// NoticeDeliverer delivers one pending notice.
type NoticeDeliverer interface {
	Deliver(ctx context.Context, notice domain.PendingNotice) error
}

// NoticeWorker consumes notices from the broker and hands them to the relay
// consumer.
type NoticeWorker struct {
	consumer    queue.Consumer
	deliverer   NoticeDeliverer
	logger      *zap.Logger
	metrics     *observability.Metrics
	concurrency int
}

func NewNoticeWorker(
	consumer queue.Consumer,
	deliverer NoticeDeliverer,
	concurrency int,
	logger *zap.Logger,
) (*NoticeWorker, error) {
	if consumer == nil {
		return nil, fmt.Errorf("queue consumer is required")
	}
	if deliverer == nil {
		return nil, fmt.Errorf("notice deliverer is required")
	}
	if concurrency < minWorkerConcurrency {
		concurrency = minWorkerConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &NoticeWorker{
		consumer:    consumer,
		deliverer:   deliverer,
		logger:      logger,
		concurrency: concurrency,
	}, nil
}

func (w *NoticeWorker) SetMetrics(metrics *observability.Metrics) {
	if w == nil {
		return
	}
	w.metrics = metrics
}

// Start consumes the notice queue until context cancellation.
func (w *NoticeWorker) Start(ctx context.Context) error {
	g, groupCtx := errgroup.WithContext(ctx)
	for i := 0; i < w.concurrency; i++ {
		workerID := i + 1

		g.Go(func() error {
			w.logger.Info("notice worker started", zap.Int("workerId", workerID))

			if err := w.consumer.Consume(groupCtx, w.processMessage); err != nil {
				w.logger.Error("notice worker stopped with error",
					zap.Int("workerId", workerID),
					zap.Error(err),
				)
				return err
			}

			w.logger.Info("notice worker stopped", zap.Int("workerId", workerID))
			return nil
		})
	}

	return g.Wait()
}

// A notice for a room or user that no longer exists is acked and dropped;
// any other failure is returned so the broker dead-letters it.
func (w *NoticeWorker) processMessage(ctx context.Context, msg queue.NoticeMessage) error {
	w.metrics.IncWorkerInFlight()
	defer w.metrics.DecWorkerInFlight()

	err := w.deliverer.Deliver(ctx, msg.ToDomain())
	if err == nil || errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	return fmt.Errorf("failed to deliver notice %s: %w", msg.NoticeID, err)
}
