package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/diagnosis/homepro-bookings/pkg/logger"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url,
		nats.Name("homepro-bookings"),
		nats.Timeout(3*time.Second),
		nats.MaxReconnects(-1),
	)
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

// Subscribe delivers every message matching subject (NATS wildcards allowed)
// to handler. Handler errors are logged and the message is dropped.
func (n *NATSEventBus) Subscribe(subject string, handler func(subject string, data []byte) error) (*nats.Subscription, error) {
	return n.conn.Subscribe(subject, func(msg *nats.Msg) {
		if err := handler(msg.Subject, msg.Data); err != nil {
			logger.Error("Event handler failed", "subject", msg.Subject, "error", err)
		}
	})
}

func (n *NATSEventBus) Close() error {
	if err := n.conn.Drain(); err != nil {
		n.conn.Close()
		return err
	}
	return nil
}

// NoopBus drops events. It is used when no broker is configured.
type NoopBus struct{}

func (NoopBus) Publish(ctx context.Context, subject string, _ interface{}) error {
	logger.DebugContext(ctx, "Event dropped, no broker configured", "subject", subject)
	return nil
}

func (NoopBus) Close() error { return nil }

// Event types and subjects
const (
	BookingCreated       = "booking.created"
	BookingUpdated       = "booking.updated"
	BookingStatusChanged = "booking.status_changed"
	BookingDeleted       = "booking.deleted"

	PaymentCreated       = "payment.created"
	PaymentStatusChanged = "payment.status_changed"
	PaymentDeleted       = "payment.deleted"

	AllBookingEvents = "booking.>"
	AllPaymentEvents = "payment.>"
)

// Event payloads
type BookingCreatedEvent struct {
	BookingID string    `json:"booking_id"`
	UserID    string    `json:"user_id"`
	Service   string    `json:"service"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	CreatedAt time.Time `json:"created_at"`
}

type BookingUpdatedEvent struct {
	BookingID string    `json:"booking_id"`
	UserID    string    `json:"user_id"`
	Changes   []string  `json:"changes"`
	UpdatedAt time.Time `json:"updated_at"`
}

type StatusChangedEvent struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Status    string    `json:"status"`
	ChangedAt time.Time `json:"changed_at"`
}

type DeletedEvent struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

type PaymentCreatedEvent struct {
	PaymentID     string    `json:"payment_id"`
	BookingID     string    `json:"booking_id"`
	UserID        string    `json:"user_id"`
	Amount        float64   `json:"amount"`
	PaymentMethod string    `json:"payment_method"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}
