package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingPending    BookingStatus = "Pending"
	BookingConfirmed  BookingStatus = "Confirmed"
	BookingInProgress BookingStatus = "In Progress"
	BookingCompleted  BookingStatus = "Completed"
	BookingCancelled  BookingStatus = "Cancelled"
)

// ParseBookingStatus is case-sensitive. Any valid status may follow any other.
func ParseBookingStatus(s string) (BookingStatus, bool) {
	switch BookingStatus(s) {
	case BookingPending, BookingConfirmed, BookingInProgress, BookingCompleted, BookingCancelled:
		return BookingStatus(s), true
	default:
		return "", false
	}
}

const DefaultProfessional = "Professional"

type Booking struct {
	ID           string        `json:"id"`
	UserID       string        `json:"user"`
	Service      string        `json:"service"`
	Title        string        `json:"title"`
	Date         string        `json:"date"`
	Time         string        `json:"time"`
	Address      string        `json:"address"`
	City         string        `json:"city"`
	ZipCode      string        `json:"zipCode"`
	Notes        string        `json:"notes"`
	Professional string        `json:"professional"`
	Status       BookingStatus `json:"status"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// BookingReq is the create payload. There is no user field: ownership always
// comes from the authenticated caller.
type BookingReq struct {
	Service      string `json:"service"`
	Title        string `json:"title"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	Address      string `json:"address"`
	City         string `json:"city"`
	ZipCode      string `json:"zipCode"`
	Notes        string `json:"notes"`
	Professional string `json:"professional"`
}

// BookingPatch carries only the fields present in the request body. A
// non-nil pointer overwrites, even when it points at "".
type BookingPatch struct {
	Service      *string `json:"service,omitempty"`
	Title        *string `json:"title,omitempty"`
	Date         *string `json:"date,omitempty"`
	Time         *string `json:"time,omitempty"`
	Address      *string `json:"address,omitempty"`
	City         *string `json:"city,omitempty"`
	ZipCode      *string `json:"zipCode,omitempty"`
	Notes        *string `json:"notes,omitempty"`
	Professional *string `json:"professional,omitempty"`
}

// NewBooking builds a Pending booking owned by userID. An empty professional
// gets DefaultProfessional.
func NewBooking(userID string, req BookingReq, now time.Time) (*Booking, error) {
	b := &Booking{
		ID:           uuid.NewString(),
		UserID:       userID,
		Service:      strings.TrimSpace(req.Service),
		Title:        req.Title,
		Date:         req.Date,
		Time:         req.Time,
		Address:      req.Address,
		City:         req.City,
		ZipCode:      req.ZipCode,
		Notes:        req.Notes,
		Professional: req.Professional,
		Status:       BookingPending,
		CreatedAt:    now.UTC().Truncate(time.Microsecond),
	}
	if b.Professional == "" {
		b.Professional = DefaultProfessional
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Booking) Validate() error {
	if b.Service == "" {
		return invalid("service", "Service is required")
	}
	if _, ok := ParseBookingStatus(string(b.Status)); !ok {
		return invalid("status", "Invalid status")
	}
	return nil
}

// Apply writes the patch onto b. Call Normalize first.
func (p BookingPatch) Apply(b *Booking) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&b.Service, p.Service)
	set(&b.Title, p.Title)
	set(&b.Date, p.Date)
	set(&b.Time, p.Time)
	set(&b.Address, p.Address)
	set(&b.City, p.City)
	set(&b.ZipCode, p.ZipCode)
	set(&b.Notes, p.Notes)
	set(&b.Professional, p.Professional)
}

// Normalize trims Service the same way NewBooking does.
func (p *BookingPatch) Normalize() {
	if p.Service != nil {
		s := strings.TrimSpace(*p.Service)
		p.Service = &s
	}
}

// Validate re-runs the write-time rules that a patch can break.
func (p BookingPatch) Validate() error {
	if p.Service != nil && strings.TrimSpace(*p.Service) == "" {
		return invalid("service", "Service is required")
	}
	return nil
}

// Changes lists the JSON names of the fields the patch touches.
func (p BookingPatch) Changes() []string {
	var out []string
	add := func(name string, v *string) {
		if v != nil {
			out = append(out, name)
		}
	}
	add("service", p.Service)
	add("title", p.Title)
	add("date", p.Date)
	add("time", p.Time)
	add("address", p.Address)
	add("city", p.City)
	add("zipCode", p.ZipCode)
	add("notes", p.Notes)
	add("professional", p.Professional)
	return out
}

func (p BookingPatch) IsEmpty() bool {
	return len(p.Changes()) == 0
}
