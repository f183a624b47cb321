// Package notify turns booking and payment events into user notifications.
// Delivery is pluggable; the default sink writes them to the structured log.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/diagnosis/homepro-bookings/pkg/events"
	"github.com/diagnosis/homepro-bookings/pkg/logger"
)

type Notification struct {
	UserID  string
	Subject string
	Text    string
}

type Sink interface {
	Deliver(ctx context.Context, n Notification) error
}

type LogSink struct{}

func (LogSink) Deliver(ctx context.Context, n Notification) error {
	logger.InfoContext(ctx, "Notification", "user_id", n.UserID, "subject", n.Subject, "text", n.Text)
	return nil
}

type Notifier struct {
	sink Sink
}

func New(sink Sink) *Notifier {
	return &Notifier{sink: sink}
}

// Handle has the signature events.NATSEventBus.Subscribe expects. Unknown
// subjects are ignored.
func (n *Notifier) Handle(subject string, data []byte) error {
	note, err := render(subject, data)
	if err != nil {
		return fmt.Errorf("render %s: %w", subject, err)
	}
	if note == nil {
		return nil
	}
	ctx := context.WithValue(context.Background(), logger.ServiceKey, "notify")
	return n.sink.Deliver(ctx, *note)
}

func render(subject string, data []byte) (*Notification, error) {
	switch subject {
	case events.BookingCreated:
		var e events.BookingCreatedEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, err
		}
		return &Notification{UserID: e.UserID, Subject: subject,
			Text: fmt.Sprintf("Your %s booking for %s %s was received.", e.Service, e.Date, e.Time)}, nil

	case events.BookingUpdated:
		var e events.BookingUpdatedEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, err
		}
		return &Notification{UserID: e.UserID, Subject: subject,
			Text: fmt.Sprintf("Booking %s was updated (%d fields).", e.BookingID, len(e.Changes))}, nil

	case events.BookingStatusChanged, events.PaymentStatusChanged:
		var e events.StatusChangedEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, err
		}
		kind := "Booking"
		if subject == events.PaymentStatusChanged {
			kind = "Payment"
		}
		return &Notification{UserID: e.UserID, Subject: subject,
			Text: fmt.Sprintf("%s %s is now %s.", kind, e.ID, e.Status)}, nil

	case events.PaymentCreated:
		var e events.PaymentCreatedEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, err
		}
		return &Notification{UserID: e.UserID, Subject: subject,
			Text: fmt.Sprintf("Payment of %.2f by %s recorded.", e.Amount, e.PaymentMethod)}, nil

	case events.BookingDeleted, events.PaymentDeleted:
		var e events.DeletedEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, err
		}
		return &Notification{UserID: e.UserID, Subject: subject,
			Text: fmt.Sprintf("Record %s was deleted.", e.ID)}, nil
	}
	return nil, nil
}
