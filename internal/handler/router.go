// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/kietsocola/blogwebsite/internal/config"
	"github.com/kietsocola/blogwebsite/internal/middleware"
)

// NewRouter builds the full HTTP router with middleware and all routes.
func NewRouter(db *sql.DB, cfg *config.Config) chi.Router {
	h := NewHandler(db, cfg)
	health := NewHealthHandler(db)

	apiLimiter := middleware.NewRateLimiter(20, 40)
	loginLimiter := middleware.NewRateLimiter(1, 5)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(chimw.Timeout(30 * time.Second))

	r.With(optionalTokenAuth(db)).Get("/health", health.Health)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	r.Route("/api", func(r chi.Router) {
		r.Use(apiLimiter.Middleware())

		// Auth
		r.Group(func(r chi.Router) {
			r.Use(loginLimiter.Middleware())
			r.Post("/auth/register", h.Register)
			r.Post("/auth/login", h.Login)
		})
		r.With(middleware.TokenAuth(db)).Get("/auth/me", h.Me)

		// Public reads
		r.Get("/posts", h.ListPublishedPosts)
		r.Get("/posts/search", h.SearchPosts)
		r.Get("/categories", h.ListCategories)
		r.Get("/categories/{slug}/posts", h.CategoryPosts)
		r.Get("/tags", h.ListTags)
		r.Get("/tags/{slug}/posts", h.TagPosts)

		// Authenticated post management
		r.Group(func(r chi.Router) {
			r.Use(middleware.TokenAuth(db))
			r.Get("/posts/my", h.MyPosts)
			r.Post("/posts", h.CreatePost)
			r.Put("/posts/{id:[0-9]+}", h.UpdatePost)
			r.Delete("/posts/{id:[0-9]+}", h.DeletePost)
		})

		// Post detail goes last so /posts/my and /posts/search win.
		// Drafts are visible to their author, so auth is optional here.
		r.With(optionalTokenAuth(db)).Get("/posts/{slug}", h.GetPostBySlug)

		// Admin: category management
		r.Group(func(r chi.Router) {
			r.Use(middleware.TokenAuth(db), middleware.RequireAdmin)
			r.Post("/categories", h.CreateCategory)
			r.Put("/categories/{id:[0-9]+}", h.UpdateCategory)
			r.Delete("/categories/{id:[0-9]+}", h.DeleteCategory)
		})

		// Admin area
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.TokenAuth(db), middleware.RequireAdmin)
			r.Get("/stats", h.Stats)
			r.Get("/users", h.ListUsers)
			r.Delete("/users/{id:[0-9]+}", h.DeleteUser)
			r.Get("/posts", h.AdminPosts)
			r.Put("/posts/{id:[0-9]+}/approve", h.ApprovePost)
			r.Put("/posts/{id:[0-9]+}/reject", h.RejectPost)
			r.Get("/events", h.ListEvents)
		})
	})

	return r
}

// optionalTokenAuth resolves a bearer token when one is present but
// lets unauthenticated requests through.
func optionalTokenAuth(db *sql.DB) func(http.Handler) http.Handler {
	required := middleware.TokenAuth(db)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				next.ServeHTTP(w, r)
				return
			}
			required(next).ServeHTTP(w, r)
		})
	}
}
