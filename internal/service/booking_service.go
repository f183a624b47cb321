package service

import (
	"context"
	"fmt"
	"time"

	"github.com/diagnosis/homepro-bookings/internal/domain"
	"github.com/diagnosis/homepro-bookings/internal/repo"
	"github.com/diagnosis/homepro-bookings/pkg/events"
	"github.com/diagnosis/homepro-bookings/pkg/logger"
)

type BookingService struct {
	repo     repo.BookingRepo
	eventBus events.Publisher
	now      func() time.Time
}

func NewBookingService(r repo.BookingRepo, bus events.Publisher) *BookingService {
	return &BookingService{repo: r, eventBus: bus, now: time.Now}
}

func (s *BookingService) List(ctx context.Context, userID string) ([]domain.Booking, error) {
	bs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bs, nil
}

func (s *BookingService) Create(ctx context.Context, userID string, req domain.BookingReq) (*domain.Booking, error) {
	b, err := domain.NewBooking(userID, req, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	s.publish(ctx, events.BookingCreated, events.BookingCreatedEvent{
		BookingID: b.ID,
		UserID:    b.UserID,
		Service:   b.Service,
		Date:      b.Date,
		Time:      b.Time,
		CreatedAt: b.CreatedAt,
	})
	return b, nil
}

func (s *BookingService) Get(ctx context.Context, id, userID string) (*domain.Booking, error) {
	b, err := s.repo.GetForUser(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if b == nil {
		return nil, ErrNotFound
	}
	return b, nil
}

// Update overwrites only the fields present in patch. An empty patch still
// resolves ownership and returns the current record.
func (s *BookingService) Update(ctx context.Context, id, userID string, patch domain.BookingPatch) (*domain.Booking, error) {
	patch.Normalize()
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	var (
		b   *domain.Booking
		err error
	)
	if patch.IsEmpty() {
		b, err = s.repo.GetForUser(ctx, id, userID)
	} else {
		b, err = s.repo.UpdateForUser(ctx, id, userID, patch)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}
	if b == nil {
		return nil, ErrNotFound
	}

	if !patch.IsEmpty() {
		s.publish(ctx, events.BookingUpdated, events.BookingUpdatedEvent{
			BookingID: b.ID,
			UserID:    b.UserID,
			Changes:   patch.Changes(),
			UpdatedAt: s.now().UTC(),
		})
	}
	return b, nil
}

// SetStatus rejects unknown values before touching the store.
func (s *BookingService) SetStatus(ctx context.Context, id, userID, status string) (*domain.Booking, error) {
	st, ok := domain.ParseBookingStatus(status)
	if !ok {
		return nil, ErrInvalidStatus
	}
	b, err := s.repo.SetStatusForUser(ctx, id, userID, st)
	if err != nil {
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}
	if b == nil {
		return nil, ErrNotFound
	}

	s.publish(ctx, events.BookingStatusChanged, events.StatusChangedEvent{
		ID:        b.ID,
		UserID:    b.UserID,
		Status:    string(b.Status),
		ChangedAt: s.now().UTC(),
	})
	return b, nil
}

func (s *BookingService) Delete(ctx context.Context, id, userID string) error {
	ok, err := s.repo.DeleteForUser(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	if !ok {
		return ErrNotFound
	}

	s.publish(ctx, events.BookingDeleted, events.DeletedEvent{
		ID:        id,
		UserID:    userID,
		DeletedAt: s.now().UTC(),
	})
	return nil
}

func (s *BookingService) publish(ctx context.Context, subject string, event interface{}) {
	if err := s.eventBus.Publish(ctx, subject, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish event", "error", err, "subject", subject)
	}
}
