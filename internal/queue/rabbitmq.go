package queue

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	dlxExchangeName  = "slowmode.dlx"
	connectionName   = "slowmode-engine"
	dialTimeout      = 10 * time.Second
	reconnectBackoff = time.Second
	maxBackoff       = 30 * time.Second
)

// RabbitMQ owns one broker connection, redialled on demand. The notice
// topology is declared once per connection.
type RabbitMQ struct {
	url string

	mu       sync.Mutex
	conn     *amqp.Connection
	declared bool
}

func NewRabbitMQ(url string) (*RabbitMQ, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("rabbitmq url is required")
	}

	r := &RabbitMQ{url: url}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if _, err := r.connection(ctx); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *RabbitMQ) Close() error {
	r.mu.Lock()
	conn := r.conn
	r.conn = nil
	r.declared = false
	r.mu.Unlock()

	if conn == nil || conn.IsClosed() {
		return nil
	}

	return conn.Close()
}

// openChannel returns a channel on a live connection. A connection that
// refuses new channels is dropped and redialled once.
func (r *RabbitMQ) openChannel(ctx context.Context) (*amqp.Channel, error) {
	for attempt := 0; ; attempt++ {
		conn, err := r.connection(ctx)
		if err != nil {
			return nil, err
		}

		ch, err := conn.Channel()
		if err != nil {
			if attempt > 0 {
				return nil, fmt.Errorf("failed to open rabbitmq channel: %w", err)
			}
			r.discard(conn)
			continue
		}

		if err := r.ensureTopology(conn, ch); err != nil {
			_ = ch.Close()
			return nil, err
		}
		return ch, nil
	}
}

func (r *RabbitMQ) connection(ctx context.Context) (*amqp.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conn != nil && !r.conn.IsClosed() {
		return r.conn, nil
	}

	conn, err := dialWithBackoff(ctx, r.url)
	if err != nil {
		return nil, err
	}
	r.conn = conn
	r.declared = false
	return conn, nil
}

func (r *RabbitMQ) discard(conn *amqp.Connection) {
	r.mu.Lock()
	if r.conn == conn {
		r.conn = nil
		r.declared = false
	}
	r.mu.Unlock()

	if !conn.IsClosed() {
		_ = conn.Close()
	}
}

func (r *RabbitMQ) ensureTopology(conn *amqp.Connection, ch *amqp.Channel) error {
	r.mu.Lock()
	done := r.conn == conn && r.declared
	r.mu.Unlock()
	if done {
		return nil
	}

	if err := declareTopology(ch); err != nil {
		return err
	}

	r.mu.Lock()
	if r.conn == conn {
		r.declared = true
	}
	r.mu.Unlock()
	return nil
}

func dialWithBackoff(ctx context.Context, url string) (*amqp.Connection, error) {
	properties := amqp.NewConnectionProperties()
	properties.SetClientConnectionName(connectionName)
	config := amqp.Config{
		Properties: properties,
		Dial:       amqp.DefaultDial(dialTimeout),
	}

	wait := reconnectBackoff
	for {
		conn, err := amqp.DialConfig(url, config)
		if err == nil {
			return conn, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("rabbitmq dial canceled: %w (last error: %v)", ctx.Err(), err)
		case <-time.After(wait):
		}
		wait = nextBackoff(wait)
	}
}

// nextBackoff doubles d up to maxBackoff.
func nextBackoff(d time.Duration) time.Duration {
	d *= 2
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func declareTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(
		dlxExchangeName,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("failed to declare dlx exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(
		NoticeDLQName,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("failed to declare dlq %q: %w", NoticeDLQName, err)
	}

	if err := ch.QueueBind(NoticeDLQName, noticeRoutingKey, dlxExchangeName, false, nil); err != nil {
		return fmt.Errorf("failed to bind dlq %q: %w", NoticeDLQName, err)
	}

	if _, err := ch.QueueDeclare(
		NoticeQueueName,
		true,
		false,
		false,
		false,
		noticeQueueArgs(),
	); err != nil {
		return fmt.Errorf("failed to declare queue %q: %w", NoticeQueueName, err)
	}

	return nil
}

func noticeQueueArgs() amqp.Table {
	return amqp.Table{
		"x-dead-letter-exchange":    dlxExchangeName,
		"x-dead-letter-routing-key": noticeRoutingKey,
		"x-message-ttl":             int32(noticeTTL / time.Millisecond),
	}
}
