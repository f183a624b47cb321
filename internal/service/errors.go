package service

import "errors"

var (
	// ErrNotFound covers both a missing record and one owned by another user.
	ErrNotFound           = errors.New("not found")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
