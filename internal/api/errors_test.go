package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/twit-api/internal/api/shared"
	"github.com/phrazzld/twit-api/internal/blob"
	"github.com/phrazzld/twit-api/internal/domain"
	"github.com/phrazzld/twit-api/internal/platform/logger"
	"github.com/phrazzld/twit-api/internal/service"
	"github.com/phrazzld/twit-api/internal/service/auth"
	"github.com/phrazzld/twit-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"invalid credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{"not owned", service.NewTwitServiceError("delete_twit", "failed", fmt.Errorf("%w: twit 1", service.ErrNotOwned)), http.StatusForbidden},
		{"twit not found", service.NewTwitServiceError("get_twit", "twit not found", store.ErrTwitNotFound), http.StatusNotFound},
		{"user not found", store.ErrUserNotFound, http.StatusNotFound},
		{"email exists", store.NewStoreError("user", "create", "duplicate", store.ErrEmailExists), http.StatusConflict},
		{"content too long", domain.ErrTwitContentTooLong, http.StatusBadRequest},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest},
		{"missing field", fmt.Errorf("%w: content", shared.ErrMissingField), http.StatusBadRequest},
		{"malformed form", shared.ErrMalformedForm, http.StatusBadRequest},
		{"unsupported media", fmt.Errorf("%w: text/plain", blob.ErrUnsupportedMediaType), http.StatusUnsupportedMediaType},
		{"too large", shared.ErrRequestTooLarge, http.StatusRequestEntityTooLarge},
		{"write failed", blob.ErrWriteFailed, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "An unexpected error occurred"},
		{"twit not found", store.ErrTwitNotFound, "Twit not found"},
		{"user not found", store.ErrUserNotFound, "User not found"},
		{"email exists", store.ErrEmailExists, "Email already exists"},
		{"missing field", fmt.Errorf("%w: content", shared.ErrMissingField), "Missing required field: content"},
		{"content too long", domain.ErrTwitContentTooLong, "Content must be at most 280 characters"},
		{"content not text", domain.ErrTwitContentInvalid, "Invalid input: twit content must be valid UTF-8 text"},
		{"field validation", domain.NewValidationError("twitId", "must be a positive integer", nil), "Invalid twitId: must be a positive integer"},
		{"domain validation", domain.ErrInvalidEmail, "Invalid input: invalid email format"},
		{"unknown", errors.New("pq: relation \"twits\" does not exist"), "An unexpected error occurred"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, GetSafeErrorMessage(tc.err))
		})
	}
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()

	err := validator.New().Struct(&RegisterRequest{Email: "not-an-email", FullName: "A", Password: "longenough"})
	require.Error(t, err)
	assert.Equal(t, "Invalid Email: invalid email format", SanitizeValidationError(err))
	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("other")))
}

func TestHandleAPIError(t *testing.T) {
	t.Parallel()

	log, buf := logger.NewTestLogger(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(logger.WithLogger(req.Context(), log))

	internal := fmt.Errorf("query failed: password=hunter2: %w", store.ErrTwitNotFound)
	rr := httptest.NewRecorder()
	HandleAPIError(rr, req, internal, "")

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "Twit not found")
	assert.NotContains(t, rr.Body.String(), "hunter2")
	assert.NotContains(t, buf.String(), "hunter2")
}
