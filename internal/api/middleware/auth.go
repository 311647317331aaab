package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/phrazzld/twit-api/internal/api/shared"
	"github.com/phrazzld/twit-api/internal/domain"
	"github.com/phrazzld/twit-api/internal/platform/logger"
	"github.com/phrazzld/twit-api/internal/redact"
	"github.com/phrazzld/twit-api/internal/service/auth"
)

// CallerResolver maps a raw Authorization header value to a user.
type CallerResolver interface {
	ResolveCaller(ctx context.Context, token string) (*domain.User, error)
}

// AuthMiddleware provides bearer authentication for routes.
type AuthMiddleware struct {
	resolver CallerResolver
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(resolver CallerResolver) *AuthMiddleware {
	if resolver == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("resolver cannot be nil")
	}
	return &AuthMiddleware{resolver: resolver}
}

// Authenticate resolves the caller from the Authorization header and adds it
// to the request context. Requests without a valid token get 401.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization header required")
			return
		}

		user, err := m.resolver.ResolveCaller(r.Context(), authHeader)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Token expired")
			case errors.Is(err, auth.ErrInvalidToken),
				errors.Is(err, auth.ErrMissingToken),
				errors.Is(err, auth.ErrTokenNotYetValid),
				errors.Is(err, auth.ErrWrongTokenType):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
			default:
				logger.FromContext(r.Context()).Error("failed to resolve caller",
					slog.String("error", redact.Error(err)))
				shared.RespondWithError(w, r, http.StatusInternalServerError, "Authentication error")
			}
			return
		}

		next.ServeHTTP(w, r.WithContext(shared.WithCaller(r.Context(), user)))
	})
}
