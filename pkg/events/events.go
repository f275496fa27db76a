package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/pitstop/garage-bookings/pkg/logger"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type Subscriber interface {
	Subscribe(subject string, handler func(msg *Message)) error
	Close() error
}

type EventBus interface {
	Publisher
	Subscriber
}

type Message struct {
	Subject   string
	Data      []byte
	Timestamp time.Time
}

// Subjects carried on the bus. The notify consumer listens on both
// booking subjects and turns them into notification intents.
const (
	BookingCreated       = "booking.created"
	BookingStatusUpdated = "booking.status_updated"
)

type BookingCreatedEvent struct {
	BookingID     int64  `json:"booking_id"`
	CustomerEmail string `json:"customer_email"`
	CustomerName  string `json:"customer_name"`
	ServiceType   string `json:"service_type"`
	BookingDate   string `json:"booking_date"`
	BookingTime   string `json:"booking_time"`
	LicensePlate  string `json:"license_plate"`
}

type BookingStatusUpdatedEvent struct {
	BookingID     int64  `json:"booking_id"`
	CustomerEmail string `json:"customer_email"`
	NewStatus     string `json:"new_status"`
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) Subscribe(subject string, handler func(msg *Message)) error {
	_, err := n.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
		})
	})
	return err
}

func (n *NATSEventBus) Close() error {
	n.conn.Close()
	return nil
}

// LocalEventBus is the default bus when no NATS URL is configured. It
// delivers messages synchronously to in-process subscribers, which is
// enough for a single server with a logging notifier.
type LocalEventBus struct {
	handlers map[string][]func(msg *Message)
}

func NewLocalEventBus() *LocalEventBus {
	return &LocalEventBus{handlers: make(map[string][]func(msg *Message))}
}

func (l *LocalEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	msg := &Message{Subject: subject, Data: payload, Timestamp: time.Now()}
	for _, h := range l.handlers[subject] {
		h(msg)
	}
	return nil
}

func (l *LocalEventBus) Subscribe(subject string, handler func(msg *Message)) error {
	l.handlers[subject] = append(l.handlers[subject], handler)
	return nil
}

func (l *LocalEventBus) Close() error {
	return nil
}
