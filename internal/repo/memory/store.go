// Package memory is a process-local record store used when no DATABASE_URL is
// configured, and by tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/diagnosis/homepro-bookings/internal/domain"
	"github.com/diagnosis/homepro-bookings/internal/repo"
)

type bookingRow struct {
	seq uint64
	b   domain.Booking
}

type paymentRow struct {
	seq uint64
	p   domain.Payment
}

// Store holds every collection behind one lock so payment enrichment reads a
// consistent view of bookings.
type Store struct {
	mu       sync.RWMutex
	seq      uint64
	bookings map[string]*bookingRow
	payments map[string]*paymentRow
	users    map[string]*domain.User
	emails   map[string]string
}

func New() *Store {
	return &Store{
		bookings: make(map[string]*bookingRow),
		payments: make(map[string]*paymentRow),
		users:    make(map[string]*domain.User),
		emails:   make(map[string]string),
	}
}

func (s *Store) Bookings() *BookingRepo { return &BookingRepo{s: s} }
func (s *Store) Payments() *PaymentRepo { return &PaymentRepo{s: s} }
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

func (s *Store) next() uint64 {
	s.seq++
	return s.seq
}

type BookingRepo struct{ s *Store }

func (r *BookingRepo) Create(_ context.Context, b *domain.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.bookings[b.ID] = &bookingRow{seq: r.s.next(), b: *b}
	return nil
}

func (r *BookingRepo) ListByUser(_ context.Context, userID string) ([]domain.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows := make([]*bookingRow, 0)
	for _, row := range r.s.bookings {
		if row.b.UserID == userID {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.b.CreatedAt.Equal(b.b.CreatedAt) {
			return a.b.CreatedAt.After(b.b.CreatedAt)
		}
		return a.seq > b.seq
	})

	out := make([]domain.Booking, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.b)
	}
	return out, nil
}

func (r *BookingRepo) owned(id, userID string) *bookingRow {
	row, ok := r.s.bookings[id]
	if !ok || row.b.UserID != userID {
		return nil
	}
	return row
}

func (r *BookingRepo) GetForUser(_ context.Context, id, userID string) (*domain.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row := r.owned(id, userID)
	if row == nil {
		return nil, nil
	}
	b := row.b
	return &b, nil
}

func (r *BookingRepo) UpdateForUser(_ context.Context, id, userID string, patch domain.BookingPatch) (*domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row := r.owned(id, userID)
	if row == nil {
		return nil, nil
	}
	patch.Apply(&row.b)
	b := row.b
	return &b, nil
}

func (r *BookingRepo) SetStatusForUser(_ context.Context, id, userID string, status domain.BookingStatus) (*domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row := r.owned(id, userID)
	if row == nil {
		return nil, nil
	}
	row.b.Status = status
	b := row.b
	return &b, nil
}

func (r *BookingRepo) DeleteForUser(_ context.Context, id, userID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.owned(id, userID) == nil {
		return false, nil
	}
	delete(r.s.bookings, id)
	return true, nil
}

type PaymentRepo struct{ s *Store }

// enrich must be called with the lock held.
func (r *PaymentRepo) enrich(p domain.Payment) *domain.Payment {
	p.Booking = nil
	if row, ok := r.s.bookings[p.BookingID]; ok && row.b.UserID == p.UserID {
		p.Booking = row.b.Summary()
	}
	return &p
}

func (r *PaymentRepo) Create(_ context.Context, p *domain.Payment) (*domain.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored := *p
	stored.Booking = nil
	r.s.payments[p.ID] = &paymentRow{seq: r.s.next(), p: stored}
	return r.enrich(stored), nil
}

func (r *PaymentRepo) ListByUser(_ context.Context, userID string) ([]domain.Payment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows := make([]*paymentRow, 0)
	for _, row := range r.s.payments {
		if row.p.UserID == userID {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.p.CreatedAt.Equal(b.p.CreatedAt) {
			return a.p.CreatedAt.After(b.p.CreatedAt)
		}
		return a.seq > b.seq
	})

	out := make([]domain.Payment, 0, len(rows))
	for _, row := range rows {
		out = append(out, *r.enrich(row.p))
	}
	return out, nil
}

func (r *PaymentRepo) owned(id, userID string) *paymentRow {
	row, ok := r.s.payments[id]
	if !ok || row.p.UserID != userID {
		return nil
	}
	return row
}

func (r *PaymentRepo) GetForUser(_ context.Context, id, userID string) (*domain.Payment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row := r.owned(id, userID)
	if row == nil {
		return nil, nil
	}
	return r.enrich(row.p), nil
}

func (r *PaymentRepo) SetStatusForUser(_ context.Context, id, userID string, status domain.PaymentStatus) (*domain.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row := r.owned(id, userID)
	if row == nil {
		return nil, nil
	}
	row.p.Status = status
	return r.enrich(row.p), nil
}

func (r *PaymentRepo) DeleteForUser(_ context.Context, id, userID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.owned(id, userID) == nil {
		return false, nil
	}
	delete(r.s.payments, id)
	return true, nil
}

type UserRepo struct{ s *Store }

func (r *UserRepo) Create(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.emails[u.Email]; ok {
		return repo.ErrEmailExists
	}
	cp := *u
	r.s.users[u.ID] = &cp
	r.s.emails[u.Email] = u.ID
	return nil
}

func (r *UserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.emails[email]
	if !ok {
		return nil, nil
	}
	u := *r.s.users[id]
	return &u, nil
}

func (r *UserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

var (
	_ repo.BookingRepo = (*BookingRepo)(nil)
	_ repo.PaymentRepo = (*PaymentRepo)(nil)
	_ repo.UserRepo    = (*UserRepo)(nil)
)
