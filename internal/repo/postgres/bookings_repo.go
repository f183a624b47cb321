package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/diagnosis/homepro-bookings/internal/domain"
	"github.com/diagnosis/homepro-bookings/internal/repo"
)

type BookingRepoImpl struct{ pool *pgxpool.Pool }

func NewBookingRepo(pool *pgxpool.Pool) *BookingRepoImpl { return &BookingRepoImpl{pool: pool} }

const bookingCols = `id::text, user_id::text, service, title, date, time,
address, city, zip_code, notes, professional, status, created_at`

const queryTimeout = 3 * time.Second

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(
		&b.ID, &b.UserID, &b.Service, &b.Title, &b.Date, &b.Time,
		&b.Address, &b.City, &b.ZipCode, &b.Notes, &b.Professional,
		&b.Status, &b.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// validID reports whether id can match a UUID column. Anything else cannot
// exist, and Postgres would reject it with a cast error.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (r *BookingRepoImpl) Create(ctx context.Context, b *domain.Booking) error {
	const q = `INSERT INTO bookings (
		id, user_id, service, title, date, time,
		address, city, zip_code, notes, professional, status, created_at
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	RETURNING created_at`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	// created_at is read back so the response carries the stored precision.
	return r.pool.QueryRow(ctx, q,
		b.ID, b.UserID, b.Service, b.Title, b.Date, b.Time,
		b.Address, b.City, b.ZipCode, b.Notes, b.Professional, b.Status, b.CreatedAt,
	).Scan(&b.CreatedAt)
}

func (r *BookingRepoImpl) ListByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	bs := make([]domain.Booking, 0)
	if !validID(userID) {
		return bs, nil
	}
	const q = `SELECT ` + bookingCols + ` FROM bookings WHERE user_id=$1 ORDER BY created_at DESC, id DESC`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bs = append(bs, *b)
	}
	return bs, rows.Err()
}

func (r *BookingRepoImpl) GetForUser(ctx context.Context, id, userID string) (*domain.Booking, error) {
	if !validID(id) || !validID(userID) {
		return nil, nil
	}
	const q = `SELECT ` + bookingCols + ` FROM bookings WHERE id=$1 AND user_id=$2`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return scanBooking(r.pool.QueryRow(ctx, q, id, userID))
}

// UpdateForUser applies the patch in a single statement, so the ownership
// check and the write cannot be split by a concurrent request.
func (r *BookingRepoImpl) UpdateForUser(ctx context.Context, id, userID string, patch domain.BookingPatch) (*domain.Booking, error) {
	if !validID(id) || !validID(userID) {
		return nil, nil
	}
	const q = `
		UPDATE bookings
		SET
			service      = COALESCE($3, service),
			title        = COALESCE($4, title),
			date         = COALESCE($5, date),
			time         = COALESCE($6, time),
			address      = COALESCE($7, address),
			city         = COALESCE($8, city),
			zip_code     = COALESCE($9, zip_code),
			notes        = COALESCE($10, notes),
			professional = COALESCE($11, professional)
		WHERE id=$1 AND user_id=$2
		RETURNING ` + bookingCols

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return scanBooking(r.pool.QueryRow(ctx, q,
		id, userID,
		patch.Service,
		patch.Title,
		patch.Date,
		patch.Time,
		patch.Address,
		patch.City,
		patch.ZipCode,
		patch.Notes,
		patch.Professional,
	))
}

func (r *BookingRepoImpl) SetStatusForUser(ctx context.Context, id, userID string, status domain.BookingStatus) (*domain.Booking, error) {
	if !validID(id) || !validID(userID) {
		return nil, nil
	}
	const q = `UPDATE bookings SET status=$3 WHERE id=$1 AND user_id=$2 RETURNING ` + bookingCols
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return scanBooking(r.pool.QueryRow(ctx, q, id, userID, status))
}

func (r *BookingRepoImpl) DeleteForUser(ctx context.Context, id, userID string) (bool, error) {
	if !validID(id) || !validID(userID) {
		return false, nil
	}
	const q = `DELETE FROM bookings WHERE id=$1 AND user_id=$2`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	ct, err := r.pool.Exec(ctx, q, id, userID)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

var _ repo.BookingRepo = (*BookingRepoImpl)(nil)
