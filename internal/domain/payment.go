package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	switch PaymentStatus(s) {
	case PaymentPending, PaymentCompleted, PaymentFailed, PaymentRefunded:
		return PaymentStatus(s), true
	default:
		return "", false
	}
}

type PaymentMethod string

const (
	MethodCard   PaymentMethod = "card"
	MethodPaypal PaymentMethod = "paypal"
	MethodCash   PaymentMethod = "cash"
)

func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch PaymentMethod(s) {
	case MethodCard, MethodPaypal, MethodCash:
		return PaymentMethod(s), true
	default:
		return "", false
	}
}

const DefaultAmount = 125.00

// BookingSummary is the read-only projection of a booking attached to a
// payment. It is never stored with the payment.
type BookingSummary struct {
	ID      string `json:"id"`
	Service string `json:"service"`
	Date    string `json:"date"`
	Time    string `json:"time"`
}

type Payment struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user"`
	BookingID     string          `json:"bookingId"`
	Amount        float64         `json:"amount"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	Service       string          `json:"service"`
	Location      string          `json:"location,omitempty"`
	Date          string          `json:"date"`
	Time          string          `json:"time"`
	Status        PaymentStatus   `json:"status"`
	CreatedAt     time.Time       `json:"createdAt"`
	Booking       *BookingSummary `json:"booking,omitempty"`
}

type PaymentReq struct {
	BookingID     string   `json:"bookingId"`
	Amount        *float64 `json:"amount"`
	PaymentMethod string   `json:"paymentMethod"`
	Service       string   `json:"service"`
	Location      string   `json:"location"`
	Date          string   `json:"date"`
	Time          string   `json:"time"`
}

// NewPayment builds a completed payment owned by userID. A missing or zero
// amount becomes DefaultAmount and a missing method becomes card; existing
// clients rely on zero meaning "use the default".
func NewPayment(userID string, req PaymentReq, now time.Time) (*Payment, error) {
	p := &Payment{
		ID:            uuid.NewString(),
		UserID:        userID,
		BookingID:     strings.TrimSpace(req.BookingID),
		Amount:        DefaultAmount,
		PaymentMethod: MethodCard,
		Service:       strings.TrimSpace(req.Service),
		Location:      strings.TrimSpace(req.Location),
		Date:          req.Date,
		Time:          req.Time,
		Status:        PaymentCompleted,
		CreatedAt:     now.UTC().Truncate(time.Microsecond),
	}
	if req.Amount != nil && *req.Amount != 0 {
		p.Amount = *req.Amount
	}
	if req.PaymentMethod != "" {
		m, ok := ParsePaymentMethod(req.PaymentMethod)
		if !ok {
			return nil, invalid("paymentMethod", "Invalid payment method")
		}
		p.PaymentMethod = m
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Payment) Validate() error {
	switch {
	case p.BookingID == "":
		return invalid("bookingId", "Booking ID is required")
	case p.Amount < 0:
		return invalid("amount", "Amount must be zero or greater")
	case p.Service == "":
		return invalid("service", "Service is required")
	case p.Date == "":
		return invalid("date", "Date is required")
	case p.Time == "":
		return invalid("time", "Time is required")
	}
	if _, ok := ParsePaymentMethod(string(p.PaymentMethod)); !ok {
		return invalid("paymentMethod", "Invalid payment method")
	}
	if _, ok := ParsePaymentStatus(string(p.Status)); !ok {
		return invalid("status", "Invalid status")
	}
	return nil
}

// Summary projects the fields a payment shows for its booking.
func (b *Booking) Summary() *BookingSummary {
	return &BookingSummary{ID: b.ID, Service: b.Service, Date: b.Date, Time: b.Time}
}
