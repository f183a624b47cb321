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

type PaymentService struct {
	repo     repo.PaymentRepo
	eventBus events.Publisher
	now      func() time.Time
}

func NewPaymentService(r repo.PaymentRepo, bus events.Publisher) *PaymentService {
	return &PaymentService{repo: r, eventBus: bus, now: time.Now}
}

func (s *PaymentService) List(ctx context.Context, userID string) ([]domain.Payment, error) {
	ps, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return ps, nil
}

// Create stores the payment without checking bookingId; the reference is
// resolved only when the payment is read.
func (s *PaymentService) Create(ctx context.Context, userID string, req domain.PaymentReq) (*domain.Payment, error) {
	p, err := domain.NewPayment(userID, req, s.now())
	if err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	if err := s.eventBus.Publish(ctx, events.PaymentCreated, events.PaymentCreatedEvent{
		PaymentID:     created.ID,
		BookingID:     created.BookingID,
		UserID:        created.UserID,
		Amount:        created.Amount,
		PaymentMethod: string(created.PaymentMethod),
		Status:        string(created.Status),
		CreatedAt:     created.CreatedAt,
	}); err != nil {
		logger.ErrorContext(ctx, "Failed to publish payment created event", "error", err, "payment_id", created.ID)
	}
	return created, nil
}

func (s *PaymentService) Get(ctx context.Context, id, userID string) (*domain.Payment, error) {
	p, err := s.repo.GetForUser(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *PaymentService) SetStatus(ctx context.Context, id, userID, status string) (*domain.Payment, error) {
	st, ok := domain.ParsePaymentStatus(status)
	if !ok {
		return nil, ErrInvalidStatus
	}
	p, err := s.repo.SetStatusForUser(ctx, id, userID, st)
	if err != nil {
		return nil, fmt.Errorf("failed to update payment status: %w", err)
	}
	if p == nil {
		return nil, ErrNotFound
	}

	if err := s.eventBus.Publish(ctx, events.PaymentStatusChanged, events.StatusChangedEvent{
		ID:        p.ID,
		UserID:    p.UserID,
		Status:    string(p.Status),
		ChangedAt: s.now().UTC(),
	}); err != nil {
		logger.ErrorContext(ctx, "Failed to publish payment status event", "error", err, "payment_id", p.ID)
	}
	return p, nil
}

func (s *PaymentService) Delete(ctx context.Context, id, userID string) error {
	ok, err := s.repo.DeleteForUser(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}
	if !ok {
		return ErrNotFound
	}

	if err := s.eventBus.Publish(ctx, events.PaymentDeleted, events.DeletedEvent{
		ID:        id,
		UserID:    userID,
		DeletedAt: s.now().UTC(),
	}); err != nil {
		logger.ErrorContext(ctx, "Failed to publish payment deleted event", "error", err, "payment_id", id)
	}
	return nil
}
