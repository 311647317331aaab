package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/twit-api/internal/api/shared"
	"github.com/phrazzld/twit-api/internal/platform/logger"
	"github.com/phrazzld/twit-api/internal/service"
)

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	userService service.UserService
	logger      *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(userService service.UserService, log *slog.Logger) *AuthHandler {
	if userService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("userService cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &AuthHandler{
		userService: userService,
		logger:      log.With(slog.String("component", "auth_handler")),
	}
}

// Register handles the /api/auth/register endpoint.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req RegisterRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	session, err := h.userService.Register(r.Context(), req.Email, req.FullName, req.Password)
	if err != nil {
		message := ""
		if MapErrorToStatusCode(err) == http.StatusInternalServerError {
			message = "Failed to create user"
		}
		HandleAPIError(w, r, err, message)
		return
	}

	log.Info("user registered", slog.Int64("user_id", session.User.ID))
	shared.RespondWithJSON(w, r, http.StatusCreated, sessionToResponse(session))
}

// Login handles the /api/auth/login endpoint.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	session, err := h.userService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		message := ""
		if MapErrorToStatusCode(err) == http.StatusInternalServerError {
			message = "Failed to generate authentication token"
		}
		HandleAPIError(w, r, err, message)
		return
	}

	log.Debug("user logged in", slog.Int64("user_id", session.User.ID))
	shared.RespondWithJSON(w, r, http.StatusOK, sessionToResponse(session))
}

func sessionToResponse(session *service.Session) AuthResponse {
	return AuthResponse{
		UserID:    session.User.ID,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt.Format(time.RFC3339),
	}
}
