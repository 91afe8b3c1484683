package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/HealthyWithVictor/storefront/internal/apperror"
	"github.com/HealthyWithVictor/storefront/internal/auth"
	"github.com/HealthyWithVictor/storefront/internal/model"
	"github.com/HealthyWithVictor/storefront/internal/repository"
)

const (
	MaxUsernameLength = 50
	MinPasswordLength = 6
)

// AccountService handles guest self-registration, login, and the startup
// admin bootstrap.
type AccountService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	tokens    *auth.TokenService
	logger    *slog.Logger
}

func NewAccountService(
	users repository.UserRepository,
	passwords *auth.PasswordService,
	tokens *auth.TokenService,
	logger *slog.Logger,
) *AccountService {
	return &AccountService{
		users:     users,
		passwords: passwords,
		tokens:    tokens,
		logger:    logger,
	}
}

// Register creates a guest account. Username and non-empty email are unique
// (Conflict otherwise); email is optional.
func (s *AccountService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}
	if len(username) > MaxUsernameLength {
		return nil, apperror.ValidationFailed("username",
			fmt.Sprintf("username must be %d characters or less", MaxUsernameLength))
	}
	if len(password) < MinPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", err.Error())
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleGuest,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("guest registered",
		slog.String("id", user.ID),
		slog.String("username", user.Username),
	)
	return user, nil
}

// Login verifies credentials and issues a session token. Unknown username
// and wrong password produce the same error, so the response does not leak
// which accounts exist.
func (s *AccountService) Login(ctx context.Context, username, password string) (string, *model.User, error) {
	invalid := apperror.ValidationFailed("credentials", "invalid username or password")

	user, err := s.users.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return "", nil, invalid
		}
		return "", nil, err
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return "", nil, invalid
	}

	token, err := s.tokens.Generate(user.ID, user.Role)
	if err != nil {
		return "", nil, fmt.Errorf("logging in %q: %w", username, err)
	}

	s.logger.Info("user logged in",
		slog.String("id", user.ID),
		slog.String("username", user.Username),
		slog.String("role", user.Role),
	)
	return token, user, nil
}

// EnsureAdmin creates the admin account on first start if it does not exist
// yet. Subsequent starts are a no-op, including after a password change; the
// stored hash is never overwritten.
func (s *AccountService) EnsureAdmin(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return apperror.ValidationFailed("username", "admin username is required")
	}

	_, err := s.users.GetUserByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return fmt.Errorf("checking for admin user: %w", err)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return fmt.Errorf("bootstrapping admin: %w", err)
	}

	admin := &model.User{
		Username:     username,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
	}
	if err := s.users.CreateUser(ctx, admin); err != nil {
		return fmt.Errorf("bootstrapping admin: %w", err)
	}

	s.logger.Warn("admin account bootstrapped, change the password if it is still the default",
		slog.String("username", username),
	)
	return nil
}
