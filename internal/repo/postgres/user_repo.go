package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/diagnosis/homepro-bookings/internal/domain"
	"github.com/diagnosis/homepro-bookings/internal/repo"
)

type UsersRepoImpl struct{ pool *pgxpool.Pool }

func NewUsersRepo(pool *pgxpool.Pool) *UsersRepoImpl { return &UsersRepoImpl{pool: pool} }

const userCols = `id::text, name, email, password_hash, role, phone, address, created_at`

const uniqueViolation = "23505"

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Phone, &u.Address, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UsersRepoImpl) Create(ctx context.Context, u *domain.User) error {
	const q = `
INSERT INTO users (id, name, email, password_hash, role, phone, address, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.pool.Exec(ctx, q, u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.Phone, u.Address, u.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return repo.ErrEmailExists
	}
	return err
}

func (r *UsersRepoImpl) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE email=$1`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return scanUser(r.pool.QueryRow(ctx, q, email))
}

func (r *UsersRepoImpl) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if !validID(id) {
		return nil, nil
	}
	const q = `SELECT ` + userCols + ` FROM users WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return scanUser(r.pool.QueryRow(ctx, q, id))
}

var _ repo.UserRepo = (*UsersRepoImpl)(nil)
