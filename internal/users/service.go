package users

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/okean-yachts/okean-cpq/internal/platform/httpx"
)

// Service handles user management business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// GetUser returns a single user.
func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetUser(ctx, id)
}

// CreateUser stores a new account with a hashed password.
func (s *Service) CreateUser(ctx context.Context, email, fullName, password string) (*User, error) {
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must have at least 8 characters", httpx.ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return s.repo.CreateUser(ctx, email, fullName, string(hash))
}

// UpdateUser updates profile and active flag.
func (s *Service) UpdateUser(ctx context.Context, id int64, email, fullName string, isActive bool) error {
	return s.repo.UpdateUser(ctx, id, email, fullName, isActive)
}

// ResetPassword replaces the stored hash.
func (s *Service) ResetPassword(ctx context.Context, id int64, password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: password must have at least 8 characters", httpx.ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.repo.UpdatePassword(ctx, id, string(hash))
}
