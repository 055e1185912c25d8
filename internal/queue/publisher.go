// Package queue publishes reservation lifecycle events to RabbitMQ.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/kirinyoku/deskgo/internal/events"
)

const DefaultQueue = "deskgo.reservation.events"

// Publisher sends every event as a persistent JSON message to a durable queue
// through the default exchange. The connection is opened on first use and
// reopened after the broker drops it.
type Publisher struct {
	url   string
	queue string
	log   *slog.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewPublisher(url, queue string, log *slog.Logger) *Publisher {
	if queue == "" {
		queue = DefaultQueue
	}
	if log == nil {
		log = slog.Default()
	}

	return &Publisher{url: url, queue: queue, log: log}
}

func (p *Publisher) Publish(ctx context.Context, ev events.Event) error {
	const op = "queue.Publisher.Publish"

	msg, err := encode(ev)
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		p.log.Warn("rabbitmq: connect failed", slog.String("queue", p.queue), slog.Any("err", err))
		return fmt.Errorf("%s:%w", op, err)
	}

	if err := ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key = queue name
		false,
		false,
		msg,
	); err != nil {
		p.log.Warn("rabbitmq: publish failed",
			slog.String("type", string(ev.Type)),
			slog.Int64("reservation_id", ev.ReservationID),
			slog.Any("err", err),
		)
		p.reset()
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

// Close shuts the channel and connection down. A later Publish reconnects.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var err error
	if p.ch != nil {
		err = p.ch.Close()
	}
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	p.ch, p.conn = nil, nil

	return err
}

// channel returns an open channel, dialing when needed. Caller holds p.mu.
func (p *Publisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() && p.conn != nil && !p.conn.IsClosed() {
		return p.ch, nil
	}
	p.reset()

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	// durable, not auto-deleted, not exclusive
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	p.conn, p.ch = conn, ch
	return ch, nil
}

func (p *Publisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.ch, p.conn = nil, nil
}

func encode(ev events.Event) (amqp.Publishing, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return amqp.Publishing{}, err
	}

	ts := ev.OccurredAt
	if ts.IsZero() {
		ts = time.Now()
	}

	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         string(ev.Type),
		Timestamp:    ts.UTC(),
		Body:         body,
	}, nil
}
