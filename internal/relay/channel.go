package relay

import (
	"context"
	"errors"
	"sync"

	"github.com/kursadbilgin/slowmode-engine/internal/domain"
	"go.uber.org/zap"
)

const defaultChannelCapacity = 256

// ErrChannelFull is returned when the in-process channel has no free slot.
var ErrChannelFull = errors.New("notice channel is full")

// ErrChannelClosed is returned by Send once Run has stopped.
var ErrChannelClosed = errors.New("notice channel is closed")

var _ Dispatcher = (*Channel)(nil)

// DeliverFunc handles one notice taken off a transport.
type DeliverFunc func(ctx context.Context, notice domain.PendingNotice) error

// Channel is a bounded in-process transport. Every notice is received exactly
// once by Run, or discarded when Run stops.
type Channel struct {
	notices chan domain.PendingNotice
	logger  *zap.Logger

	mu     sync.RWMutex
	closed bool
}

func NewChannel(capacity int, logger *zap.Logger) *Channel {
	if capacity <= 0 {
		capacity = defaultChannelCapacity
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Channel{
		notices: make(chan domain.PendingNotice, capacity),
		logger:  logger,
	}
}

func (c *Channel) Name() string {
	return TransportMemory
}

// Send enqueues without blocking.
func (c *Channel) Send(ctx context.Context, notice domain.PendingNotice) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrChannelClosed
	}

	select {
	case c.notices <- notice:
		return nil
	default:
		return ErrChannelFull
	}
}

// Len returns the number of notices waiting.
func (c *Channel) Len() int {
	return len(c.notices)
}

// Run delivers notices until ctx is done, then drops whatever is still buffered.
func (c *Channel) Run(ctx context.Context, deliver DeliverFunc) error {
	if deliver == nil {
		return errors.New("deliver func is required")
	}

	c.logger.Info("in-process notice relay started", zap.Int("capacity", cap(c.notices)))
	for {
		select {
		case <-ctx.Done():
			c.close()
			c.drain()
			c.logger.Info("in-process notice relay stopped")
			return nil
		case notice := <-c.notices:
			if err := deliver(ctx, notice); err != nil {
				c.logger.Warn("in-process notice delivery failed",
					zap.String("noticeId", notice.ID),
					zap.String("userId", notice.UserID),
					zap.String("roomId", notice.RoomID),
					zap.Error(err),
				)
			}
		}
	}
}

// close rejects further sends. Sends already holding the read lock finish first,
// so drain sees every accepted notice.
func (c *Channel) close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func (c *Channel) drain() {
	for {
		select {
		case notice := <-c.notices:
			c.logger.Warn("discarding undelivered notice on shutdown",
				zap.String("noticeId", notice.ID),
				zap.String("userId", notice.UserID),
				zap.String("roomId", notice.RoomID),
			)
		default:
			return
		}
	}
}
