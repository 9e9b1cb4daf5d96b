package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/wastewise/wastewise/internal/auth"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=user
type Repository interface {
	CreateUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}

type Service struct {
	repo     Repository
	hashCost int

	// dummyHash is compared against when the email is unknown so that both
	// credential failures take roughly the same time.
	dummyHash []byte
}

func NewService(repo Repository) *Service {
	return NewServiceWithCost(repo, bcrypt.DefaultCost)
}

// NewServiceWithCost lets tests use a cheap bcrypt cost.
func NewServiceWithCost(repo Repository, cost int) *Service {
	dummy, _ := bcrypt.GenerateFromPassword([]byte("wastewise-dummy-password"), cost)

	return &Service{repo: repo, hashCost: cost, dummyHash: dummy}
}

type RegisterParams struct {
	CompanyName string
	Email       string
	Password    string
	KRAPin      string
	Role        auth.Role
}

// Register creates a new account. An empty role defaults to Seller; Admin
// accounts cannot be self-registered.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*User, error) {
	role := params.Role
	if role == "" {
		role = auth.RoleSeller
	}

	if !role.Valid() || role == auth.RoleAdmin {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, params.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u := &User{
		CompanyName:  strings.TrimSpace(params.CompanyName),
		Email:        normalizeEmail(params.Email),
		PasswordHash: string(hash),
		KRAPin:       strings.TrimSpace(params.KRAPin),
		Role:         role,
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

// Authenticate verifies the credentials. Unknown email and wrong password both
// return ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}

		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return u, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetUser(ctx, id)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
