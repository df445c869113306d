package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher sends marketplace events to RabbitMQ.  A connection is dialed
// per publish: event volume is low (one per posting or deal) and a
// short-lived connection keeps the publisher free of reconnect state.
// Errors are logged and returned so callers can ignore failures without
// interrupting the main request flow.  A nil Publisher, or one built from
// an empty URL, drops events silently.
type Publisher struct {
	url string
	log *zap.Logger
}

// NewPublisher returns a Publisher for the given AMQP URL.  An empty URL
// disables publishing.
func NewPublisher(url string, log *zap.Logger) *Publisher {
	if url == "" {
		return nil
	}
	return &Publisher{url: url, log: log}
}

// ExchangeCreated publishes an ExchangeCreatedEvent.
func (p *Publisher) ExchangeCreated(ctx context.Context, ev ExchangeCreatedEvent) error {
	return p.publish(ctx, QueueExchangeCreated, ev)
}

// ExchangeAccepted publishes an ExchangeAcceptedEvent.
func (p *Publisher) ExchangeAccepted(ctx context.Context, ev ExchangeAcceptedEvent) error {
	return p.publish(ctx, QueueExchangeAccepted, ev)
}

// MatchFound publishes a MatchFoundEvent.
func (p *Publisher) MatchFound(ctx context.Context, ev MatchFoundEvent) error {
	return p.publish(ctx, QueueMatchFound, ev)
}

func (p *Publisher) publish(ctx context.Context, queue string, event any) error {
	if p == nil {
		return nil
	}
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Error("rabbitmq dial failed", zap.String("queue", queue), zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Error("rabbitmq channel open failed", zap.String("queue", queue), zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	// Declare the queue on every publish; the operation is idempotent and
	// durable queues survive broker restarts.
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		p.log.Error("rabbitmq queue declare failed", zap.String("queue", queue), zap.Error(err))
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.log.Error("event marshal failed", zap.String("queue", queue), zap.Error(err))
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue, false, false, pub); err != nil {
		p.log.Error("rabbitmq publish failed", zap.String("queue", queue), zap.Error(err))
		return err
	}
	p.log.Debug("event published", zap.String("queue", queue), zap.String("message_id", pub.MessageId))
	return nil
}
