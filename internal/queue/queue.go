package queue

import (
	"context"
	"time"
)

// Publisher publishes notice messages to the notice queue.
type Publisher interface {
	Publish(ctx context.Context, msg NoticeMessage) error
	Close() error
}

// MessageHandler handles a consumed queue message.
type MessageHandler func(ctx context.Context, msg NoticeMessage) error

// Consumer consumes notice messages from the notice queue.
type Consumer interface {
	Consume(ctx context.Context, handler MessageHandler) error
	Close() error
}

const (
	// NoticeQueueName is the work queue carrying pending wait notices.
	NoticeQueueName = "slowmode.notices"
	// NoticeDLQName collects notices the consumer rejected.
	NoticeDLQName = "dlq." + NoticeQueueName

	noticeRoutingKey = "notices"

	// noticeTTL bounds how long an undelivered notice stays relevant.
	noticeTTL = 5 * time.Minute
)
