// Package service holds long-lived collaborators shared by the HTTP layer.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/iliyamo/service-b/internal/queue"
)

// defaultDialTimeout bounds the TCP dial and AMQP handshake when the caller's
// context carries no deadline.
const defaultDialTimeout = 5 * time.Second

// EventPublisher publishes request events to a durable RabbitMQ queue over a
// single connection. The connection is opened lazily and re-opened after any
// failure, so a broker outage only costs the events published during it.
type EventPublisher struct {
	url   string
	queue string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewEventPublisher(url, queue string) *EventPublisher {
	return &EventPublisher{url: url, queue: queue}
}

// Publish sends ev as a persistent JSON message routed to the configured queue.
func (p *EventPublisher) Publish(ctx context.Context, ev q.APIRequestEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureChannel(ctx); err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := p.ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		p.reset()
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// dialTimeout is the time left before ctx expires, or defaultDialTimeout.
func dialTimeout(ctx context.Context) time.Duration {
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < defaultDialTimeout {
			return max(left, time.Millisecond)
		}
	}
	return defaultDialTimeout
}

// ensureChannel must be called with p.mu held.
func (p *EventPublisher) ensureChannel(ctx context.Context) error {
	if p.conn != nil && !p.conn.IsClosed() && p.ch != nil && !p.ch.IsClosed() {
		return nil
	}
	p.reset()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	// DefaultDial applies the timeout to the handshake too, not just the TCP connect.
	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(dialTimeout(ctx)),
	})
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("channel open: %w", err)
	}
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("queue declare: %w", err)
	}
	p.conn, p.ch = conn, ch
	return nil
}

func (p *EventPublisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

// Close releases the broker connection. Publish may still be called
// afterwards and will reconnect.
func (p *EventPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}
