// Package service publishes article events to RabbitMQ. Publishing is best
// effort: callers log a failure and carry on with the request.
package service

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/letters/internal/config"
	"github.com/iliyamo/letters/internal/queue"
)

// Publisher sends events to one durable queue. The zero URL disables it.
type Publisher struct {
	url   string
	queue string
	dial  func(url string) (*amqp.Connection, error)
}

func NewPublisher(cfg config.EventsConfig) *Publisher {
	return &Publisher{url: cfg.AMQPURL, queue: cfg.Queue, dial: amqp.Dial}
}

// Enabled reports whether events are actually sent.
func (p *Publisher) Enabled() bool {
	return p != nil && p.url != ""
}

// Publish delivers ev as a persistent JSON message through the default
// exchange. A disabled publisher drops the event.
func (p *Publisher) Publish(ctx context.Context, ev queue.ArticleEvent) error {
	if !p.Enabled() {
		return nil
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	conn, err := p.dial(p.url)
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// durable, not auto-deleted, not exclusive
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", p.queue, err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.ID,
		Type:         ev.Type,
		Timestamp:    ev.OccurredAt,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	return nil
}
