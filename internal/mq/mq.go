package mq

import (
	"context"
	"encoding/json"
	"log"

	"github.com/rabbitmq/amqp091-go"
)

// Publisher defines a minimal interface for publishing domain events.
// Routing keys follow the entity.verb convention: inspection.started,
// inspection.completed, alteration.created, alteration.corrected,
// template.changed. Payloads include the cache keys the write invalidated, so
// consumers can decide what to re-fetch.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// RabbitPublisher publishes JSON events to a RabbitMQ topic exchange.
type RabbitPublisher struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
}

// NewRabbitPublisher creates a publisher connecting to RabbitMQ.
func NewRabbitPublisher(url, exchange string) (*RabbitPublisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, err
	}
	return &RabbitPublisher{conn: conn, channel: ch, exchange: exchange}, nil
}

// Publish serializes the payload to JSON and sends it to the exchange.
func (p *RabbitPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	if p == nil {
		return nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp091.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}

// Close terminates the connection.
func (p *RabbitPublisher) Close() error {
	if p == nil {
		return nil
	}
	if err := p.channel.Close(); err != nil {
		log.Printf("close channel: %v", err)
	}
	return p.conn.Close()
}
