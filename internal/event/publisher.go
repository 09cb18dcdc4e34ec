package event

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type Publisher interface {
	Publish(ctx context.Context, eventType EventType, payload interface{}) error
	Close() error
}

// NewPublisher connects to RabbitMQ, or returns a publisher that only logs
// when no URI is configured.
func NewPublisher(uri, exchange string) (Publisher, error) {
	if uri == "" {
		log.Println("Warning: RabbitMQ URI is empty, event publishing is disabled")
		return NoopPublisher{}, nil
	}
	publisher, err := NewRabbitMQPublisher(uri, exchange)
	if err != nil {
		return nil, err
	}
	return publisher, nil
}

type RabbitMQPublisher struct {
	mu       sync.Mutex
	uri      string
	exchange string
	conn     *amqp.Connection
	channel  *amqp.Channel
}

func NewRabbitMQPublisher(uri, exchange string) (*RabbitMQPublisher, error) {
	p := &RabbitMQPublisher{uri: uri, exchange: exchange}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *RabbitMQPublisher) connect() error {
	conn, err := amqp.Dial(p.uri)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open a channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		p.exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("failed to declare exchange: %w", err)
	}
	p.conn = conn
	p.channel = ch
	return nil
}

// Publish sends the event with its type as routing key. A closed connection
// is reopened once before giving up.
func (p *RabbitMQPublisher) Publish(ctx context.Context, eventType EventType, payload interface{}) error {
	body, err := NewEvent(eventType, payload).ToJSON()
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil || p.conn.IsClosed() || p.channel == nil || p.channel.IsClosed() {
		log.Printf("RabbitMQ connection lost, reconnecting before publishing %s", eventType)
		p.closeLocked()
		if err := p.connect(); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,
		string(eventType),
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

func (p *RabbitMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closeLocked()
}

func (p *RabbitMQPublisher) closeLocked() error {
	var err error
	if p.channel != nil {
		err = p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		err = p.conn.Close()
		p.conn = nil
	}
	return err
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, eventType EventType, payload interface{}) error {
	log.Printf("[EVENT] %s (publishing disabled)", eventType)
	return nil
}

func (NoopPublisher) Close() error { return nil }
