package main

import (
	"io/fs"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/twit-api/internal/api"
	apiMiddleware "github.com/phrazzld/twit-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware(app.logger))

	authHandler := api.NewAuthHandler(app.userService, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.userService)
	twitHandler := api.NewTwitHandler(
		app.twitService,
		app.userService,
		app.saver,
		app.config.Uploads.MaxBytes,
		app.logger,
	)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		r.Route("/twits", func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Post("/create", twitHandler.CreateTwit)
			r.Get("/", twitHandler.ListTwits)
			r.Get("/user/{userId}", twitHandler.ListUserTwits)
			r.Put("/{twitId}", twitHandler.UpdateTwit)
			r.Delete("/{twitId}", twitHandler.DeleteTwit)
		})
	})

	// Uploaded attachments
	prefix := app.saver.URLPrefix()
	r.Handle(prefix+"*", http.StripPrefix(prefix, http.FileServer(noDirListing{http.Dir(app.saver.Dir())})))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}

// noDirListing hides directory indexes of the upload directory.
type noDirListing struct {
	fs http.FileSystem
}

func (n noDirListing) Open(name string) (http.File, error) {
	if strings.HasSuffix(name, "/") {
		return nil, fs.ErrNotExist
	}
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	stat, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if stat.IsDir() {
		_ = f.Close()
		return nil, fs.ErrNotExist
	}
	return f, nil
}
