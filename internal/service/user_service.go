package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/taskhub/internal/domain"
	"github.com/phrazzld/taskhub/internal/platform/logger"
	"github.com/phrazzld/taskhub/internal/redact"
	"github.com/phrazzld/taskhub/internal/service/auth"
	"github.com/phrazzld/taskhub/internal/store"
)

// RegisterInput carries a registration request.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	// Role is parsed leniently; unknown or blank roles become "user".
	Role string
}

// AuthResult is a user together with a freshly issued access token.
type AuthResult struct {
	User  *domain.User
	Token string
}

// UserService provides registration, login and profile lookup.
type UserService interface {
	// Register creates a user and issues a token.
	// Returns store.ErrEmailExists when the email is taken.
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)

	// Login checks credentials and issues a token.
	// Returns ErrInvalidCredentials on an unknown email or wrong password.
	Login(ctx context.Context, email, password string) (*AuthResult, error)

	// GetUser returns the user with the given ID.
	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// PasswordHasherVerifier hashes and checks passwords.
type PasswordHasherVerifier interface {
	auth.PasswordHasher
	auth.PasswordVerifier
}

type userServiceImpl struct {
	users     store.UserStore
	passwords PasswordHasherVerifier
	tokens    auth.JWTService
	logger    *slog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(
	users store.UserStore,
	passwords PasswordHasherVerifier,
	tokens auth.JWTService,
	logger *slog.Logger,
) (UserService, error) {
	if users == nil {
		return nil, domain.NewValidationError("users", "cannot be nil", domain.ErrValidation)
	}
	if passwords == nil {
		return nil, domain.NewValidationError("passwords", "cannot be nil", domain.ErrValidation)
	}
	if tokens == nil {
		return nil, domain.NewValidationError("tokens", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &userServiceImpl{
		users:     users,
		passwords: passwords,
		tokens:    tokens,
		logger:    logger.With(slog.String("component", "user_service")),
	}, nil
}

// Register implements UserService.Register
func (s *userServiceImpl) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(in.Password) < domain.MinPasswordLength {
		return nil, domain.NewValidationError("password", "is too short", nil)
	}
	if len(in.Password) > domain.MaxPasswordLength {
		return nil, domain.NewValidationError("password", "is too long", nil)
	}

	hashed, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, NewServiceError("user", "register", err)
	}

	user, err := domain.NewUser(in.Name, in.Email, hashed, domain.ParseRole(in.Role))
	if err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			log.Debug("attempted to register an existing email")
			return nil, err
		}
		log.Error("failed to save user", redact.ErrorAttr(err))
		return nil, NewServiceError("user", "register", err)
	}

	token, err := s.tokens.GenerateToken(ctx, user)
	if err != nil {
		return nil, NewServiceError("user", "register", err)
	}

	log.Info("user registered",
		slog.String("user_id", user.ID.String()),
		slog.String("role", string(user.Role)))
	return &AuthResult{User: user, Token: token}, nil
}

// Login implements UserService.Login
func (s *userServiceImpl) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if strings.TrimSpace(email) == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("login for unknown email")
			return nil, ErrInvalidCredentials
		}
		log.Error("failed to look up user for login", redact.ErrorAttr(err))
		return nil, NewServiceError("user", "login", err)
	}

	if err := s.passwords.Compare(user.HashedPassword, password); err != nil {
		log.Debug("login with wrong password", slog.String("user_id", user.ID.String()))
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(ctx, user)
	if err != nil {
		return nil, NewServiceError("user", "login", err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

// GetUser implements UserService.GetUser
func (s *userServiceImpl) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, err
		}
		return nil, NewServiceError("user", "get", err)
	}
	return user, nil
}
