package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Domain event types emitted after a committed transaction
const (
	EventOrderCreated         = "order_created"
	EventOrderStatusChanged   = "order_status_changed"
	EventOrderReady           = "order_ready"
	EventOrderRejected        = "order_rejected"
	EventItemStatusChanged    = "item_status_changed"
	EventSessionCompleted     = "session_completed"
	EventPaymentStatusChanged = "payment_status_changed"
)

// Logical channels. Table channels are per-table; kitchen and waiter are global.
const (
	ChannelKitchen = "kitchen"
	ChannelWaiter  = "waiter"
)

// TableChannel returns the per-table customer channel name
func TableChannel(tableID uint) string {
	return fmt.Sprintf("table.%d", tableID)
}

// Event is a domain event pushed to real-time subscribers after commit
type Event struct {
	Type      string                 `json:"type"`
	TableID   uint                   `json:"table_id,omitempty"`
	SessionID uint                   `json:"session_id,omitempty"`
	OrderID   uint                   `json:"order_id,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	At        time.Time              `json:"at"`
}

// Channels returns the logical channels this event fans out to
func (e Event) Channels() []string {
	switch e.Type {
	case EventOrderCreated:
		return []string{ChannelKitchen, ChannelWaiter}
	case EventOrderStatusChanged:
		return []string{TableChannel(e.TableID), ChannelKitchen}
	case EventOrderReady:
		return []string{ChannelWaiter}
	case EventItemStatusChanged:
		return []string{TableChannel(e.TableID)}
	case EventOrderRejected:
		return []string{TableChannel(e.TableID), ChannelWaiter}
	case EventSessionCompleted:
		return []string{TableChannel(e.TableID), ChannelWaiter}
	case EventPaymentStatusChanged:
		return []string{TableChannel(e.TableID)}
	default:
		return nil
	}
}

// Notifier pushes committed domain events to real-time channel subscribers.
// Implementations must be safe for concurrent use.
type Notifier interface {
	Publish(event Event) error
}

var notifierInstance Notifier = &NoopNotifier{}

// InitNotifier sets the notifier implementation used by the services
func InitNotifier(n Notifier) Notifier {
	notifierInstance = n
	return notifierInstance
}

// GetNotifier returns the current notifier instance
func GetNotifier() Notifier {
	return notifierInstance
}

// SetNotifier sets the notifier instance (primarily for testing)
func SetNotifier(n Notifier) {
	notifierInstance = n
}

// publishEvent pushes an event after a committed transaction. Delivery is
// fire-and-forget: a publish failure is logged and never surfaced to the
// caller, because notification is a UX convenience, not a consistency
// requirement.
func publishEvent(event Event) {
	if event.At.IsZero() {
		event.At = time.Now()
	}
	if err := notifierInstance.Publish(event); err != nil {
		log.Printf("Failed to publish %s event for session %d: %v", event.Type, event.SessionID, err)
	}
}

// NoopNotifier drops all events. Used when no broker is configured.
type NoopNotifier struct{}

// Publish implements Notifier
func (n *NoopNotifier) Publish(Event) error {
	return nil
}

// ExchangeName is the RabbitMQ topic exchange events are published to, with
// the logical channel as the routing key
const ExchangeName = "restaurant.events"

// RabbitNotifier publishes events to a RabbitMQ topic exchange
type RabbitNotifier struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewRabbitNotifier connects to RabbitMQ and declares the events exchange
func NewRabbitNotifier(url string) (*RabbitNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open RabbitMQ channel: %w", err)
	}

	if err := ch.ExchangeDeclare(ExchangeName, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &RabbitNotifier{conn: conn, channel: ch}, nil
}

// Publish sends the event to every channel it fans out to, one message per
// routing key
func (n *RabbitNotifier) Publish(event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	for _, channel := range event.Channels() {
		if err := n.channel.PublishWithContext(ctx, ExchangeName, channel, false, false, amqp.Publishing{
			ContentType: "application/json",
			Timestamp:   time.Now(),
			Body:        body,
		}); err != nil {
			return fmt.Errorf("failed to publish to %s: %w", channel, err)
		}
	}
	return nil
}

// Close shuts down the RabbitMQ channel and connection
func (n *RabbitNotifier) Close() {
	if n.channel != nil {
		_ = n.channel.Close()
	}
	if n.conn != nil {
		_ = n.conn.Close()
	}
}
