// Package mq publishes domain events to RabbitMQ.
package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Channel is the subset of *amqp.Channel used for publishing.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Connection wraps an AMQP connection.
type Connection struct {
	mu     sync.RWMutex
	conn   *amqp.Connection
	closed bool
}

// Connect dials the broker at url.
func Connect(url string) (*Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("platform/mq: dial: %w", err)
	}
	return &Connection{conn: conn}, nil
}

// Channel opens a fresh channel.
func (c *Connection) Channel() (Channel, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed || c.conn == nil || c.conn.IsClosed() {
		return nil, fmt.Errorf("platform/mq: connection is closed")
	}
	ch, err := c.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("platform/mq: open channel: %w", err)
	}
	return ch, nil
}

// Close shuts the connection down.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.conn != nil && !c.conn.IsClosed() {
		return c.conn.Close()
	}
	return nil
}

// Publisher sends JSON messages to a durable exchange.
type Publisher struct {
	open     func() (Channel, error)
	exchange string
	kind     string
}

// NewPublisher builds a publisher for the given exchange. open is usually Connection.Channel.
func NewPublisher(open func() (Channel, error), exchange, kind string) *Publisher {
	return &Publisher{open: open, exchange: exchange, kind: kind}
}

// Publish marshals body as JSON and publishes it with routingKey.
func (p *Publisher) Publish(ctx context.Context, routingKey string, body any) error {
	ch, err := p.open()
	if err != nil {
		return err
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(p.exchange, p.kind, true, false, false, false, nil); err != nil {
		return fmt.Errorf("platform/mq: declare exchange %s: %w", p.exchange, err)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("platform/mq: marshal: %w", err)
	}

	err = ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Body:         payload,
	})
	if err != nil {
		return fmt.Errorf("platform/mq: publish %s: %w", routingKey, err)
	}
	return nil
}
