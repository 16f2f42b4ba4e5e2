// Package events publishes order lifecycle messages to RabbitMQ so
// downstream consumers (fulfilment, analytics) can react without the API
// waiting on them.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"

	"storefront/internal/models"
)

const (
	// OrderExchange is the topic exchange all order events go through.
	OrderExchange = "order_exchange"
	// OrderPlacedQueue receives order.placed messages.
	OrderPlacedQueue = "order_placed_queue"
	// OrderPlacedRoutingKey routes accepted orders.
	OrderPlacedRoutingKey = "order.placed"

	publishTimeout = 5 * time.Second
)

// OrderPlacedEvent is the wire payload for an accepted order.
type OrderPlacedEvent struct {
	OrderID   string `json:"order_id"`
	ItemID    string `json:"item_id"`
	UserID    string `json:"user_id"`
	Quantity  int    `json:"quantity"`
	CreatedAt string `json:"created_at"`
}

// Publisher emits order events.
type Publisher interface {
	OrderPlaced(ctx context.Context, order *models.Order) error
	Close() error
}

// Noop drops every event. Used when no broker is configured.
type Noop struct{}

func (Noop) OrderPlaced(context.Context, *models.Order) error { return nil }
func (Noop) Close() error                                     { return nil }

// AMQP publishes to a RabbitMQ topic exchange.
type AMQP struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewAMQP dials the broker, retrying with backoff, and declares the
// exchange and queue so messages survive a consumer that starts late.
func NewAMQP(url string) (*AMQP, error) {
	var conn *amqp.Connection
	var err error
	for i := 0; i < 5; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			break
		}
		retry := time.Duration(i*i)*time.Second + time.Second
		log.Warnf("Failed to connect to RabbitMQ, retrying in %v: %v", retry, err)
		time.Sleep(retry)
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to RabbitMQ after retries: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("opening channel: %w", err)
	}

	if err := channel.ExchangeDeclare(OrderExchange, "topic", true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declaring exchange %s: %w", OrderExchange, err)
	}
	queue, err := channel.QueueDeclare(OrderPlacedQueue, true, false, false, false, nil)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declaring queue %s: %w", OrderPlacedQueue, err)
	}
	if err := channel.QueueBind(queue.Name, OrderPlacedRoutingKey, OrderExchange, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("binding queue %s: %w", queue.Name, err)
	}

	log.WithField("exchange", OrderExchange).Info("Connected to RabbitMQ")
	return &AMQP{conn: conn, channel: channel}, nil
}

// OrderPlaced publishes an order.placed message for an accepted order.
func (p *AMQP) OrderPlaced(ctx context.Context, order *models.Order) error {
	event := OrderPlacedEvent{
		OrderID:   order.ID,
		ItemID:    order.ItemID,
		UserID:    order.UserID,
		Quantity:  order.Quantity,
		CreatedAt: order.Created.Format(time.RFC3339),
	}
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	return p.channel.PublishWithContext(ctx,
		OrderExchange,
		OrderPlacedRoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

// Close shuts down the channel and connection.
func (p *AMQP) Close() error {
	if err := p.channel.Close(); err != nil {
		p.conn.Close()
		return err
	}
	return p.conn.Close()
}
