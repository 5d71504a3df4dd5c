package main

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"gorm.io/gorm"
)

// api holds the injected dependencies for every handler. Constructed once
// in main, and directly by tests.
type api struct {
	db   *gorm.DB
	cfg  Config
	log  *slog.Logger
	auth AuthBackend
}

func newAPI(db *gorm.DB, cfg Config, logger *slog.Logger) *api {
	a := &api{db: db, cfg: cfg, log: logger}
	if cfg.AuthBackendURL != "" {
		a.auth = newHTTPAuthBackend(cfg.AuthBackendURL)
	} else {
		a.auth = &localAuthBackend{db: db, jwtSecret: []byte(cfg.JWTSecret)}
	}
	return a
}

func (a *api) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(a.log))

	var origins []string
	for _, p := range strings.Split(a.cfg.CORSOrigin, ",") {
		if o := strings.TrimRight(strings.TrimSpace(p), "/"); o != "" {
			origins = append(origins, o)
		}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Auth
	r.Post("/api/auth/signup", a.handleSignup)
	r.Post("/api/auth/login", a.handleLogin)
	r.Get("/api/auth/session", a.handleSession)
	r.Post("/api/auth/logout", a.handleLogout)

	// Posts & hearts
	r.Post("/api/posts", a.handleCreatePost)
	r.Get("/api/posts", a.handleListPosts)
	r.Get("/api/posts/{id}", a.handleGetPost)
	r.Post("/api/posts/{id}/hearts", a.handleCreateHeart)
	r.Delete("/api/posts/{id}/hearts", a.handleDeleteHeart)
	r.Get("/api/posts/{id}/hearts", a.handleListHearts)
	r.Post("/api/posts/{id}/comments", a.handleCreateComment)
	r.Get("/api/posts/{id}/comments", a.handleListComments)

	// Users
	r.Get("/api/users/profile", a.handleGetProfile)
	r.Put("/api/users/profile", a.handleUpdateProfile)
	r.Get("/api/users/search", a.handleSearchUsers)
	r.Get("/api/users/{id}/posts", a.handleUserPosts)
	r.Post("/api/users/{id}/follow", a.handleFollow)
	r.Delete("/api/users/{id}/follow", a.handleUnfollow)
	r.Get("/api/users/{id}/followers", a.handleListFollowers)
	r.Get("/api/users/{id}/following", a.handleListFollowing)

	// Notifications
	r.Get("/api/notifications", a.handleListNotifications)
	r.Post("/api/notifications", a.handleCreateNotification)

	// Health
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	return r
}
