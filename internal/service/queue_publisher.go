// Package queue_publisher publishes domain events to RabbitMQ.
// Errors are logged and returned so callers can ignore failures without
// interrupting the main request flow.
package queue_publisher

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	q "github.com/estudiofit/studio-booking/internal/queue"
)

// Publisher sends events to the broker. A nil Publisher or an empty URL
// turns every publish into a no-op, which keeps the HTTP path working
// when no broker is deployed.
type Publisher struct {
	URL string
	Log *zap.Logger
}

// NewPublisher builds a Publisher. url may be empty to disable publishing.
func NewPublisher(url string, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{URL: url, Log: log}
}

// publish marshals the payload and delivers it to the named queue.
// A fresh connection per publish keeps the publisher robust against
// broker restarts at the cost of throughput, which is acceptable for
// the low event volume of a studio.
func (p *Publisher) publish(ctx context.Context, queueName string, payload any) error {
	if p == nil || p.URL == "" {
		return nil
	}
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		p.Log.Warn("rabbitmq dial failed", zap.String("queue", queueName), zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.Log.Warn("rabbitmq channel open failed", zap.String("queue", queueName), zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare. Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		p.Log.Warn("rabbitmq queue declare failed", zap.String("queue", queueName), zap.Error(err))
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		p.Log.Warn("event marshal failed", zap.String("queue", queueName), zap.Error(err))
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queueName, false, false, pub); err != nil {
		p.Log.Warn("rabbitmq publish failed", zap.String("queue", queueName), zap.Error(err))
		return err
	}
	return nil
}

// PublishScheduleSynced reports a completed reconciliation run.
func (p *Publisher) PublishScheduleSynced(ctx context.Context, ev q.ScheduleSyncedEvent) error {
	return p.publish(ctx, q.QueueScheduleSynced, ev)
}

// PublishReservationCancelled reports a cancelled reservation.
func (p *Publisher) PublishReservationCancelled(ctx context.Context, ev q.ReservationCancelledEvent) error {
	return p.publish(ctx, q.QueueReservationCancelled, ev)
}

// PublishWaitlistPromoted reports a member promoted from a waitlist.
func (p *Publisher) PublishWaitlistPromoted(ctx context.Context, ev q.WaitlistPromotedEvent) error {
	return p.publish(ctx, q.QueueWaitlistPromoted, ev)
}

// PublishSessionCancelled reports a session cancelled by an admin.
func (p *Publisher) PublishSessionCancelled(ctx context.Context, ev q.SessionCancelledEvent) error {
	return p.publish(ctx, q.QueueSessionCancelled, ev)
}
