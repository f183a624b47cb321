package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/diagnosis/homepro-bookings/internal/domain"
	"github.com/diagnosis/homepro-bookings/internal/repo"
)

type PaymentRepoImpl struct{ pool *pgxpool.Pool }

func NewPaymentRepo(pool *pgxpool.Pool) *PaymentRepoImpl { return &PaymentRepoImpl{pool: pool} }

// Columns for a payment row aliased p, joined to its booking aliased b.
const paymentCols = `p.id::text, p.user_id::text, p.booking_id, p.amount::float8, p.payment_method,
p.service, p.location, p.date, p.time, p.status, p.created_at,
b.id::text, b.service, b.date, b.time`

const bookingJoin = `LEFT JOIN bookings b ON b.id::text = p.booking_id AND b.user_id = p.user_id`

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var p domain.Payment
	var bID, bSvc, bDate, bTime *string
	err := row.Scan(
		&p.ID, &p.UserID, &p.BookingID, &p.Amount, &p.PaymentMethod,
		&p.Service, &p.Location, &p.Date, &p.Time, &p.Status, &p.CreatedAt,
		&bID, &bSvc, &bDate, &bTime,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if bID != nil {
		p.Booking = &domain.BookingSummary{ID: *bID, Service: deref(bSvc), Date: deref(bDate), Time: deref(bTime)}
	}
	return &p, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (r *PaymentRepoImpl) Create(ctx context.Context, p *domain.Payment) (*domain.Payment, error) {
	const q = `
		WITH p AS (
			INSERT INTO payments (
				id, user_id, booking_id, amount, payment_method,
				service, location, date, time, status, created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
			RETURNING *
		)
		SELECT ` + paymentCols + ` FROM p ` + bookingJoin

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return scanPayment(r.pool.QueryRow(ctx, q,
		p.ID, p.UserID, p.BookingID, p.Amount, p.PaymentMethod,
		p.Service, p.Location, p.Date, p.Time, p.Status, p.CreatedAt,
	))
}

func (r *PaymentRepoImpl) ListByUser(ctx context.Context, userID string) ([]domain.Payment, error) {
	ps := make([]domain.Payment, 0)
	if !validID(userID) {
		return ps, nil
	}
	const q = `SELECT ` + paymentCols + ` FROM payments p ` + bookingJoin + `
		WHERE p.user_id=$1 ORDER BY p.created_at DESC, p.id DESC`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		ps = append(ps, *p)
	}
	return ps, rows.Err()
}

func (r *PaymentRepoImpl) GetForUser(ctx context.Context, id, userID string) (*domain.Payment, error) {
	if !validID(id) || !validID(userID) {
		return nil, nil
	}
	const q = `SELECT ` + paymentCols + ` FROM payments p ` + bookingJoin + ` WHERE p.id=$1 AND p.user_id=$2`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return scanPayment(r.pool.QueryRow(ctx, q, id, userID))
}

func (r *PaymentRepoImpl) SetStatusForUser(ctx context.Context, id, userID string, status domain.PaymentStatus) (*domain.Payment, error) {
	if !validID(id) || !validID(userID) {
		return nil, nil
	}
	const q = `
		WITH p AS (
			UPDATE payments SET status=$3 WHERE id=$1 AND user_id=$2
			RETURNING *
		)
		SELECT ` + paymentCols + ` FROM p ` + bookingJoin

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return scanPayment(r.pool.QueryRow(ctx, q, id, userID, status))
}

func (r *PaymentRepoImpl) DeleteForUser(ctx context.Context, id, userID string) (bool, error) {
	if !validID(id) || !validID(userID) {
		return false, nil
	}
	const q = `DELETE FROM payments WHERE id=$1 AND user_id=$2`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	ct, err := r.pool.Exec(ctx, q, id, userID)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

var _ repo.PaymentRepo = (*PaymentRepoImpl)(nil)
