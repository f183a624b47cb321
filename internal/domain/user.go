package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/diagnosis/homepro-bookings/internal/utils"
)

type Role string

const (
	RoleUser         Role = "user"
	RoleProfessional Role = "professional"
	RoleAdmin        Role = "admin"
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleUser, RoleProfessional, RoleAdmin:
		return Role(s), true
	default:
		return "", false
	}
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	CreatedAt    time.Time `json:"createdAt"`
}

type RegisterReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

type LoginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthRes struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// NewUser normalizes the registration payload. The password hash is supplied
// by the caller; admin accounts cannot self-register.
func NewUser(req RegisterReq, passwordHash string, now time.Time) (*User, error) {
	u := &User{
		ID:           uuid.NewString(),
		Name:         utils.NormalizeString(req.Name),
		Email:        utils.NormalizeEmail(req.Email),
		PasswordHash: passwordHash,
		Role:         RoleUser,
		Phone:        utils.NormalizePhone(req.Phone),
		Address:      utils.NormalizeString(req.Address),
		CreatedAt:    now.UTC(),
	}
	if req.Role != "" {
		r, ok := ParseRole(req.Role)
		if !ok || r == RoleAdmin {
			return nil, invalid("role", "Invalid role")
		}
		u.Role = r
	}
	if u.Name == "" {
		return nil, invalid("name", "Name is required")
	}
	if !utils.IsValidEmail(u.Email) {
		return nil, invalid("email", "Valid email is required")
	}
	if u.Phone != "" && !utils.IsValidPhone(u.Phone) {
		return nil, invalid("phone", "Invalid phone number")
	}
	return u, nil
}
