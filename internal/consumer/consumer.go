// Package consumer is the change-event boundary: it drains the record
// change feed from RabbitMQ and hands each before/after snapshot to
// the fan-out engine. Delivery is at-least-once; the engine's record
// writes are idempotent, so redelivery is safe.
package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"notification-service/internal/domain"
	"notification-service/internal/usecase"
)

// BindingKeys covers every record change this service observes.
var BindingKeys = []string{
	"records.quotation.created",
	"records.quotation.updated",
	"records.order.created",
	"records.order.updated",
	"records.chat.created",
}

type envelope struct {
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Before     map[string]any `json:"before,omitempty"`
	After      map[string]any `json:"after"`
}

type Consumer struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	queue    string
	uc       *usecase.FanoutUsecase
}

// New dials the broker and declares the topology: one durable queue
// bound to the topic exchange under every record routing key.
func New(url, exchange, queue string, uc *usecase.FanoutUsecase) (*Consumer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	q, err := ch.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	for _, key := range BindingKeys {
		if err := ch.QueueBind(q.Name, key, exchange, false, nil); err != nil {
			conn.Close()
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}
	if err := ch.Qos(10, 0, false); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set qos: %w", err)
	}

	return &Consumer{
		conn:     conn,
		ch:       ch,
		exchange: exchange,
		queue:    queue,
		uc:       uc,
	}, nil
}

// Run consumes until ctx is cancelled or the channel closes. Each
// delivery is processed to completion independently; only faults the
// engine chooses to propagate are requeued.
func (c *Consumer) Run(ctx context.Context) error {
	msgs, err := c.ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.queue, err)
	}
	log.Printf("📢 Change-event consumer started on queue %s", c.queue)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("amqp channel closed")
			}
			c.handle(ctx, d)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	ev, err := DecodeEvent(d.Body)
	if err != nil {
		// Poison: requeueing cannot fix a malformed payload.
		log.Printf("⚠️ [consumer] dropping malformed event (%s): %v", d.RoutingKey, err)
		_ = d.Ack(false)
		return
	}

	if err := c.uc.Process(ctx, ev); err != nil {
		// Only the quotation-creation flow propagates faults; a Nack
		// asks the broker to redeliver it.
		_ = d.Nack(false, true)
		return
	}
	_ = d.Ack(false)
}

// DecodeEvent parses one change envelope into a domain event.
func DecodeEvent(body []byte) (domain.ChangeEvent, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return domain.ChangeEvent{}, fmt.Errorf("decode envelope: %w", err)
	}
	if env.EntityID == "" {
		return domain.ChangeEvent{}, fmt.Errorf("missing entity_id")
	}

	var et domain.EntityType
	switch env.EntityType {
	case "quotation":
		et = domain.EntityQuotation
	case "order":
		et = domain.EntityOrder
	case "chat_message", "chat":
		et = domain.EntityChatMessage
	default:
		return domain.ChangeEvent{}, fmt.Errorf("unknown entity type %q", env.EntityType)
	}

	ev := domain.ChangeEvent{
		EntityType: et,
		EntityID:   env.EntityID,
		After:      domain.Snapshot(env.After),
	}
	if env.Before != nil {
		ev.Before = domain.Snapshot(env.Before)
	}
	return ev, nil
}

// Close shuts the channel and connection down.
func (c *Consumer) Close() {
	_ = c.ch.Close()
	_ = c.conn.Close()
}
