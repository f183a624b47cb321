// Package repo declares the record store contracts shared by the Postgres and
// in-memory implementations.
//
// Every owner-scoped method filters by (id, userID) in one step. A record that
// exists but belongs to someone else is reported exactly like a missing one:
// a nil record and a nil error, or false for deletes.
package repo

import (
	"context"
	"errors"

	"github.com/diagnosis/homepro-bookings/internal/domain"
)

var ErrEmailExists = errors.New("email already exists")

type BookingRepo interface {
	Create(ctx context.Context, b *domain.Booking) error
	// ListByUser returns newest first.
	ListByUser(ctx context.Context, userID string) ([]domain.Booking, error)
	GetForUser(ctx context.Context, id, userID string) (*domain.Booking, error)
	UpdateForUser(ctx context.Context, id, userID string, patch domain.BookingPatch) (*domain.Booking, error)
	SetStatusForUser(ctx context.Context, id, userID string, status domain.BookingStatus) (*domain.Booking, error)
	DeleteForUser(ctx context.Context, id, userID string) (bool, error)
}

// PaymentRepo returns payments with Booking set when the referenced booking
// exists and belongs to the same user.
type PaymentRepo interface {
	Create(ctx context.Context, p *domain.Payment) (*domain.Payment, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Payment, error)
	GetForUser(ctx context.Context, id, userID string) (*domain.Payment, error)
	SetStatusForUser(ctx context.Context, id, userID string, status domain.PaymentStatus) (*domain.Payment, error)
	DeleteForUser(ctx context.Context, id, userID string) (bool, error)
}

type UserRepo interface {
	// Create fails with ErrEmailExists on a duplicate email.
	Create(ctx context.Context, u *domain.User) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}
