package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/todostack/apiserver/internal/store"
	"github.com/todostack/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	UpdateRole(ctx context.Context, id, role string) error
	ListWithTodoCounts(ctx context.Context) ([]types.UserWithTodoCounts, error)
	CountByRole(ctx context.Context) (total, admins int, err error)
}

// AuthService handles registration, login, and caller lookup.
type AuthService struct {
	users UserRepository
}

func NewAuthService(users UserRepository) *AuthService {
	return &AuthService{users: users}
}

// Register creates a new user-role account. A taken email yields
// store.ErrConflict.
func (s *AuthService) Register(ctx context.Context, email, name, password string) (types.User, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return types.User{}, store.ErrConflict
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, fmt.Errorf("check existing email: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return types.User{}, fmt.Errorf("hash password: %w", err)
	}

	return s.users.Create(ctx, types.User{
		Email:        email,
		Name:         name,
		Role:         types.RoleUser,
		PasswordHash: string(hashed),
	})
}

// Login verifies credentials. An unknown email and a wrong password are
// indistinguishable to the caller: both yield ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, email, password string) (types.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrUnauthorized
		}
		return types.User{}, fmt.Errorf("load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return types.User{}, ErrUnauthorized
	}
	return user, nil
}

// GetCurrentUser loads the caller's account. An account that no longer
// exists yields store.ErrNotFound; callers surface that as an explicit
// empty result rather than a failure.
func (s *AuthService) GetCurrentUser(ctx context.Context, userID string) (types.User, error) {
	return s.users.GetByID(ctx, userID)
}
