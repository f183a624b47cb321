package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexedwards/argon2id"

	"github.com/diagnosis/homepro-bookings/internal/domain"
	"github.com/diagnosis/homepro-bookings/internal/repo"
	"github.com/diagnosis/homepro-bookings/internal/utils"
	"github.com/diagnosis/homepro-bookings/pkg/auth"
	"github.com/diagnosis/homepro-bookings/pkg/logger"
)

type AuthService struct {
	users  repo.UserRepo
	issuer *auth.Issuer
	params *argon2id.Params
	now    func() time.Time
}

func NewAuthService(users repo.UserRepo, issuer *auth.Issuer) *AuthService {
	return &AuthService{users: users, issuer: issuer, params: argon2id.DefaultParams, now: time.Now}
}

func (s *AuthService) Register(ctx context.Context, req domain.RegisterReq) (*domain.AuthRes, error) {
	if req.Password == "" {
		return nil, &domain.ValidationError{Field: "password", Message: "Password is required"}
	}

	u, err := domain.NewUser(req, "", s.now())
	if err != nil {
		return nil, err
	}
	u.PasswordHash, err = argon2id.CreateHash(req.Password, s.params)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrEmailExists) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	logger.InfoContext(ctx, "User registered", "user_id", u.ID, "role", u.Role)

	return s.respond(u)
}

func (s *AuthService) Login(ctx context.Context, req domain.LoginReq) (*domain.AuthRes, error) {
	email := utils.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, &domain.ValidationError{Field: "email", Message: "Email and password are required"}
	}

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	match, err := argon2id.ComparePasswordAndHash(req.Password, u.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !match {
		return nil, ErrInvalidCredentials
	}
	return s.respond(u)
}

func (s *AuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return u, nil
}

func (s *AuthService) respond(u *domain.User) (*domain.AuthRes, error) {
	token, err := s.issuer.NewAccessToken(u.ID, u.Email, string(u.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &domain.AuthRes{Token: token, User: u}, nil
}
