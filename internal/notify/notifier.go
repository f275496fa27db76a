package notify

import (
	"encoding/json"
	"fmt"

	"github.com/pitstop/garage-bookings/pkg/events"
	"github.com/pitstop/garage-bookings/pkg/logger"
)

// Notifier delivers a customer notification. The default implementation
// only logs the intent; real delivery is deliberately out of scope and
// lives behind this interface.
type Notifier interface {
	Notify(toEmail, toName, subject, text string) error
}

// LogNotifier records the notification intent and delivers nothing.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Notify(toEmail, toName, subject, text string) error {
	logger.Info("[NOTIFICATION INTENT]",
		"to", toEmail,
		"name", toName,
		"subject", subject,
		"text", text,
	)
	return nil
}

// Consumer subscribes to booking events and turns them into customer
// notifications.
type Consumer struct {
	notifier Notifier
}

func NewConsumer(notifier Notifier) *Consumer {
	return &Consumer{notifier: notifier}
}

// Start registers the consumer on the bus. Handlers run on the bus's
// delivery goroutine; notification failures are logged, never retried.
func (c *Consumer) Start(bus events.Subscriber) error {
	if err := bus.Subscribe(events.BookingCreated, c.onBookingCreated); err != nil {
		return err
	}
	return bus.Subscribe(events.BookingStatusUpdated, c.onStatusUpdated)
}

func (c *Consumer) onBookingCreated(msg *events.Message) {
	var ev events.BookingCreatedEvent
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		logger.Error("Malformed booking created event", "error", err)
		return
	}

	subject := "Your booking is confirmed"
	text := fmt.Sprintf("Booking #%d for %s on %s at %s (plate %s) has been received.",
		ev.BookingID, ev.ServiceType, ev.BookingDate, ev.BookingTime, ev.LicensePlate)

	if err := c.notifier.Notify(ev.CustomerEmail, ev.CustomerName, subject, text); err != nil {
		logger.Error("Failed to notify customer", "error", err, "booking_id", ev.BookingID)
	}
}

func (c *Consumer) onStatusUpdated(msg *events.Message) {
	var ev events.BookingStatusUpdatedEvent
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		logger.Error("Malformed status updated event", "error", err)
		return
	}

	subject := "Your booking status changed"
	text := fmt.Sprintf("Booking #%d is now %q.", ev.BookingID, ev.NewStatus)

	if err := c.notifier.Notify(ev.CustomerEmail, "", subject, text); err != nil {
		logger.Error("Failed to notify customer", "error", err, "booking_id", ev.BookingID)
	}
}
