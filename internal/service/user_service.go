package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/servicehub-api/internal/domain"
	"github.com/phrazzld/servicehub-api/internal/platform/logger"
	"github.com/phrazzld/servicehub-api/internal/service/auth"
	"github.com/phrazzld/servicehub-api/internal/store"
)

// Registration carries the profile of a new user.
type Registration struct {
	Email       string
	Username    string
	Password    string
	FirstName   string
	LastName    string
	PhoneNumber string
	Address     string
	BirthDate   *time.Time
}

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// UserService registers users and exchanges credentials for tokens.
type UserService struct {
	users    store.UserStore
	jwt      auth.JWTService
	verifier auth.PasswordVerifier
	logger   *slog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(
	users store.UserStore,
	jwt auth.JWTService,
	verifier auth.PasswordVerifier,
	logger *slog.Logger,
) (*UserService, error) {
	if users == nil {
		return nil, domain.NewValidationError("users", "cannot be nil", domain.ErrValidation)
	}
	if jwt == nil {
		return nil, domain.NewValidationError("jwt", "cannot be nil", domain.ErrValidation)
	}
	if verifier == nil {
		verifier = auth.NewBcryptVerifier()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		users:    users,
		jwt:      jwt,
		verifier: verifier,
		logger:   logger.With(slog.String("component", "user_service")),
	}, nil
}

// Register creates a non-staff user. The store hashes the password.
func (s *UserService) Register(ctx context.Context, reg Registration) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(reg.Email, reg.Username, reg.Password)
	if err != nil {
		return nil, invalidInput("register", "invalid user", err)
	}
	user.FirstName = reg.FirstName
	user.LastName = reg.LastName
	user.PhoneNumber = reg.PhoneNumber
	user.Address = reg.Address
	user.BirthDate = reg.BirthDate
	if err := user.Validate(); err != nil {
		return nil, invalidInput("register", "invalid user", err)
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			log.Debug("attempted to register with existing email")
		} else {
			log.Error("failed to save user", slog.String("error", err.Error()))
		}
		return nil, NewServiceError("register", "failed to create user", err)
	}

	log.Info("user registered", slog.String("user_id", user.ID.String()))
	return user, nil
}

// GetUser retrieves a user by their ID.
func (s *UserService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, NewServiceError("get_user", "failed to retrieve user", err)
	}
	return user, nil
}

// Login checks the credentials and issues a token pair. Unknown emails and
// wrong passwords fail the same way.
func (s *UserService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("login for unknown email")
			return nil, NewServiceError("login", "invalid credentials", auth.ErrInvalidCredentials)
		}
		return nil, NewServiceError("login", "failed to load user", err)
	}
	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		log.Debug("login with wrong password", slog.String("user_id", user.ID.String()))
		return nil, NewServiceError("login", "invalid credentials", auth.ErrInvalidCredentials)
	}

	return s.issue(ctx, "login", user.ID)
}

// Refresh exchanges a valid refresh token for a new token pair.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.jwt.ValidateRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, NewServiceError("refresh", "invalid refresh token", err)
	}
	if _, err := s.users.GetByID(ctx, claims.UserID); err != nil {
		if store.IsNotFoundError(err) {
			return nil, NewServiceError("refresh", "user no longer exists", auth.ErrInvalidRefreshToken)
		}
		return nil, NewServiceError("refresh", "failed to load user", err)
	}
	return s.issue(ctx, "refresh", claims.UserID)
}

func (s *UserService) issue(ctx context.Context, operation string, userID uuid.UUID) (*TokenPair, error) {
	access, err := s.jwt.GenerateToken(ctx, userID)
	if err != nil {
		return nil, NewServiceError(operation, "failed to generate access token", err)
	}
	accessClaims, err := s.jwt.ValidateToken(ctx, access)
	if err != nil {
		return nil, NewServiceError(operation, "failed to read access token", err)
	}
	refresh, err := s.jwt.GenerateRefreshToken(ctx, userID)
	if err != nil {
		return nil, NewServiceError(operation, "failed to generate refresh token", err)
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    accessClaims.ExpiresAt,
	}, nil
}
