package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/bookshelf-api/internal/domain"
	"github.com/phrazzld/bookshelf-api/internal/redact"
	"github.com/phrazzld/bookshelf-api/internal/service/auth"
	"github.com/phrazzld/bookshelf-api/internal/store"
)

// AuthenticatedUser is a user together with a freshly issued access token.
type AuthenticatedUser struct {
	User  *domain.User
	Token string
}

// UserService provides registration, login and profile lookup.
type UserService interface {
	// Register creates a user and issues a token for them.
	// Client errors are returned as *domain.ValidationError.
	Register(ctx context.Context, username, password string) (*AuthenticatedUser, error)

	// Login verifies the credentials and issues a token.
	// Unknown users and wrong passwords both yield ErrInvalidCredentials
	// wrapped in a *domain.ValidationError.
	Login(ctx context.Context, username, password string) (*AuthenticatedUser, error)

	// GetUser retrieves a user by ID. A missing user is a *domain.NotFoundError.
	GetUser(ctx context.Context, userID string) (*domain.User, error)
}

type userServiceImpl struct {
	users    store.UserStore
	hasher   auth.PasswordHasher
	verifier auth.PasswordVerifier
	tokens   auth.JWTService
	logger   *slog.Logger
}

var _ UserService = (*userServiceImpl)(nil)

// NewUserService creates a UserService. It panics if any dependency is nil.
func NewUserService(
	users store.UserStore,
	hasher auth.PasswordHasher,
	verifier auth.PasswordVerifier,
	tokens auth.JWTService,
	logger *slog.Logger,
) UserService {
	if users == nil {
		panic("users cannot be nil")
	}
	if hasher == nil {
		panic("hasher cannot be nil")
	}
	if verifier == nil {
		panic("verifier cannot be nil")
	}
	if tokens == nil {
		panic("tokens cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	return &userServiceImpl{
		users:    users,
		hasher:   hasher,
		verifier: verifier,
		tokens:   tokens,
		logger:   logger.With(slog.String("component", "user_service")),
	}
}

// Register implements UserService.
func (s *userServiceImpl) Register(
	ctx context.Context,
	username, password string,
) (*AuthenticatedUser, error) {
	user, err := domain.NewUser(username, password)
	if err != nil {
		return nil, domain.NewValidationError(err.Error(), err)
	}

	hashed, err := s.hasher.Hash(user.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.HashedPassword = hashed
	user.Password = ""

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrUsernameExists) {
			s.logger.Debug("registration rejected: username taken",
				slog.String("username", user.Username))
			return nil, domain.NewValidationError("username taken", err)
		}
		s.logger.Error("failed to create user",
			slog.String("error", redact.Error(err)),
			slog.String("username", user.Username))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.tokens.GenerateToken(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("user registered", slog.String("user_id", user.ID))
	return &AuthenticatedUser{User: user, Token: token}, nil
}

// Login implements UserService.
func (s *userServiceImpl) Login(
	ctx context.Context,
	username, password string,
) (*AuthenticatedUser, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, domain.NewValidationError(domain.ErrEmptyUsername.Error(), domain.ErrEmptyUsername)
	}
	if password == "" {
		return nil, domain.NewValidationError(domain.ErrEmptyPassword.Error(), domain.ErrEmptyPassword)
	}

	invalid := domain.NewValidationError("username or password is invalid", ErrInvalidCredentials)

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if store.IsNotFoundError(err) {
			s.logger.Debug("login rejected: unknown username", slog.String("username", username))
			return nil, invalid
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		s.logger.Debug("login rejected: password mismatch", slog.String("user_id", user.ID))
		return nil, invalid
	}

	token, err := s.tokens.GenerateToken(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &AuthenticatedUser{User: user, Token: token}, nil
}

// GetUser implements UserService.
func (s *userServiceImpl) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, domain.NewNotFoundError("user", userID)
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return user, nil
}
