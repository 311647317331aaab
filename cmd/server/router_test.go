package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/phrazzld/twit-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server:   config.ServerConfig{Port: 8080, LogLevel: "debug"},
		Database: config.DatabaseConfig{URL: "postgres://localhost/twit", MaxOpenConns: 1},
		Auth: config.AuthConfig{
			JWTSecret:            "test-secret-that-is-at-least-32-chars",
			TokenLifetimeMinutes: 60,
			BCryptCost:           4,
		},
		Uploads: config.UploadsConfig{
			Dir:          filepath.Join(t.TempDir(), "uploads"),
			URLPrefix:    "/uploads/",
			MaxBytes:     1 << 20,
			AllowedTypes: []string{"image/png"},
		},
	}
}

func newTestApplication(t *testing.T, cfg *config.Config) *application {
	t.Helper()
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	app, err := newApplication(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), db)
	require.NoError(t, err)
	return app
}

func TestNewApplication(t *testing.T) {
	t.Parallel()

	t.Run("rejects short secret", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Auth.JWTSecret = "short"
		db, _, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		_, err = newApplication(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), db)
		assert.Error(t, err)
	})

	t.Run("with pruning", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Uploads.PruneSuperseded = true
		app := newTestApplication(t, cfg)
		assert.NotNil(t, app.twitService)
		assert.NotNil(t, app.eventEmitter)
	})
}

func TestSetupRouter(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	app := newTestApplication(t, cfg)
	router := app.setupRouter()

	require.NoError(t, os.MkdirAll(filepath.Join(cfg.Uploads.Dir, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Uploads.Dir, "abc_cat.png"), []byte("png-bytes"), 0o644))

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantBody   string
	}{
		{"health", http.MethodGet, "/health", http.StatusOK, "OK"},
		{"twits require auth", http.MethodGet, "/api/twits/", http.StatusUnauthorized, ""},
		{"create requires auth", http.MethodPost, "/api/twits/create", http.StatusUnauthorized, ""},
		{"delete requires auth", http.MethodDelete, "/api/twits/1", http.StatusUnauthorized, ""},
		{"upload served", http.MethodGet, "/uploads/abc_cat.png", http.StatusOK, "png-bytes"},
		{"missing upload", http.MethodGet, "/uploads/missing.png", http.StatusNotFound, ""},
		{"no directory listing", http.MethodGet, "/uploads/nested/", http.StatusNotFound, ""},
		{"unknown route", http.MethodGet, "/nope", http.StatusNotFound, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(tc.method, tc.path, nil))
			assert.Equal(t, tc.wantStatus, rr.Code)
			if tc.wantBody != "" {
				assert.Equal(t, tc.wantBody, rr.Body.String())
			}
		})
	}
}
