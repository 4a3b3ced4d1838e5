package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kursadbilgin/slowmode-engine/internal/domain"
	"github.com/kursadbilgin/slowmode-engine/internal/observability"
	amqp "github.com/rabbitmq/amqp091-go"
)

type RabbitMQPublisher struct {
	client *RabbitMQ
}

func NewRabbitMQPublisher(client *RabbitMQ) *RabbitMQPublisher {
	return &RabbitMQPublisher{client: client}
}

func (p *RabbitMQPublisher) Publish(ctx context.Context, msg NoticeMessage) error {
	if p == nil || p.client == nil {
		return fmt.Errorf("publisher is not initialized")
	}

	publishing, err := buildPublishing(msg, time.Now())
	if err != nil {
		return err
	}

	ch, err := p.client.openChannel(ctx)
	if err != nil {
		return err
	}
	defer ch.Close()

	if err := ch.PublishWithContext(ctx, "", NoticeQueueName, false, false, publishing); err != nil {
		return fmt.Errorf("failed to publish message to queue %q: %w", NoticeQueueName, err)
	}

	return nil
}

// Name identifies the publisher as a relay transport.
func (p *RabbitMQPublisher) Name() string {
	return "amqp"
}

// Send publishes a pending notice, carrying the request id from ctx.
func (p *RabbitMQPublisher) Send(ctx context.Context, notice domain.PendingNotice) error {
	requestID, _ := observability.RequestIDFromContext(ctx)
	return p.Publish(ctx, NoticeMessageFromDomain(notice, requestID))
}

func (p *RabbitMQPublisher) Close() error {
	if p == nil || p.client == nil {
		return nil
	}
	return p.client.Close()
}

// Notices are transient: a broker restart loses them, which is acceptable
// for at-most-once delivery.
func buildPublishing(msg NoticeMessage, now time.Time) (amqp.Publishing, error) {
	if err := msg.Validate(); err != nil {
		return amqp.Publishing{}, fmt.Errorf("invalid notice message: %w", err)
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to marshal notice message: %w", err)
	}

	return amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Transient,
		Timestamp:     now.UTC(),
		MessageId:     msg.NoticeID,
		CorrelationId: msg.RequestID,
		Body:          payload,
	}, nil
}
