package user

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/wastewise/wastewise/internal/auth"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrDuplicateEmail     = errors.New("a user with this email already exists")
	ErrDuplicateKRAPin    = errors.New("a user with this KRA PIN already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRole        = errors.New("invalid role")
)

// User is a registered marketplace company account.
type User struct {
	ID           uuid.UUID
	CompanyName  string
	Email        string
	PasswordHash string
	KRAPin       string
	Role         auth.Role
	IsVerified   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Principal returns the identity used to authorize operations for u.
func (u *User) Principal() auth.Principal {
	return auth.Principal{UserID: u.ID, Role: u.Role}
}
