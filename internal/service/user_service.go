package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/twit-api/internal/domain"
	"github.com/phrazzld/twit-api/internal/platform/logger"
	"github.com/phrazzld/twit-api/internal/service/auth"
	"github.com/phrazzld/twit-api/internal/store"
)

// bearerScheme is stripped from raw Authorization header values.
const bearerScheme = "Bearer"

// Session is the result of a successful registration or login.
type Session struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// UserService is the user directory: identity resolution and account access.
type UserService interface {
	// ResolveCaller maps a bearer token (with or without the "Bearer " prefix)
	// to the user it was issued for. Returns auth.ErrMissingToken,
	// auth.ErrInvalidToken or auth.ErrExpiredToken on failure.
	ResolveCaller(ctx context.Context, token string) (*domain.User, error)

	// GetUser retrieves a user by ID. Returns store.ErrUserNotFound when absent.
	GetUser(ctx context.Context, userID int64) (*domain.User, error)

	// Register creates an account and issues a token for it.
	Register(ctx context.Context, email, fullName, password string) (*Session, error)

	// Authenticate checks credentials and issues a token.
	// Returns auth.ErrInvalidCredentials for an unknown email or a wrong password.
	Authenticate(ctx context.Context, email, password string) (*Session, error)
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	userStore        store.UserStore
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	logger           *slog.Logger
}

// Ensure UserServiceImpl implements UserService interface
var _ UserService = (*UserServiceImpl)(nil)

// NewUserService creates a new UserService.
func NewUserService(
	userStore store.UserStore,
	jwtService auth.JWTService,
	passwordVerifier auth.PasswordVerifier,
	logger *slog.Logger,
) *UserServiceImpl {
	if userStore == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("userStore cannot be nil")
	}
	if jwtService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("jwtService cannot be nil")
	}
	if passwordVerifier == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("passwordVerifier cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &UserServiceImpl{
		userStore:        userStore,
		jwtService:       jwtService,
		passwordVerifier: passwordVerifier,
		logger:           logger.With(slog.String("component", "user_service")),
	}
}

// ResolveCaller implements UserService.ResolveCaller
func (s *UserServiceImpl) ResolveCaller(ctx context.Context, token string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	token = stripBearer(token)
	if token == "" {
		return nil, auth.ErrMissingToken
	}

	claims, err := s.jwtService.ValidateToken(ctx, token)
	if err != nil {
		log.Debug("token rejected", slog.String("error", err.Error()))
		return nil, err
	}
	if claims == nil {
		log.Debug("token validated without claims")
		return nil, auth.ErrInvalidToken
	}

	user, err := s.userStore.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("token issued for unknown user", slog.Int64("user_id", claims.UserID))
			return nil, auth.ErrInvalidToken
		}
		log.Error("failed to load caller",
			slog.String("error", err.Error()),
			slog.Int64("user_id", claims.UserID))
		return nil, err
	}

	return user, nil
}

// GetUser implements UserService.GetUser
func (s *UserServiceImpl) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("user not found", slog.Int64("user_id", userID))
		} else {
			log.Error("failed to retrieve user",
				slog.String("error", err.Error()),
				slog.Int64("user_id", userID))
		}
		return nil, err
	}

	return user, nil
}

// Register implements UserService.Register
func (s *UserServiceImpl) Register(ctx context.Context, email, fullName, password string) (*Session, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(strings.TrimSpace(email), strings.TrimSpace(fullName), password)
	if err != nil {
		return nil, err
	}

	if err := s.userStore.Create(ctx, user); err != nil {
		if !errors.Is(err, store.ErrEmailExists) {
			log.Error("failed to create user", slog.String("error", err.Error()))
		}
		return nil, err
	}

	log.Info("user registered", slog.Int64("user_id", user.ID))
	return s.issue(ctx, user)
}

// Authenticate implements UserService.Authenticate
func (s *UserServiceImpl) Authenticate(ctx context.Context, email, password string) (*Session, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.userStore.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("login for unknown email")
			return nil, auth.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.passwordVerifier.Compare(user.HashedPassword, password); err != nil {
		log.Debug("password mismatch", slog.Int64("user_id", user.ID))
		return nil, auth.ErrInvalidCredentials
	}

	return s.issue(ctx, user)
}

func (s *UserServiceImpl) issue(ctx context.Context, user *domain.User) (*Session, error) {
	token, expiresAt, err := s.jwtService.GenerateToken(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// stripBearer removes a case-insensitive "Bearer" scheme and surrounding
// whitespace. A header holding only the scheme yields "".
func stripBearer(header string) string {
	fields := strings.Fields(header)
	if len(fields) > 0 && strings.EqualFold(fields[0], bearerScheme) {
		trimmed := strings.TrimSpace(header)
		return strings.TrimSpace(trimmed[len(fields[0]):])
	}
	return strings.TrimSpace(header)
}
