// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization, and rate limiting.
package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kietsocola/blogwebsite/internal/model"
	"github.com/kietsocola/blogwebsite/internal/store"
)

// ContextKey is a typed key for request context values.
type ContextKey string

// ContextKeyUser is the context key for the authenticated user.
const ContextKeyUser ContextKey = "user"

// apiError mirrors the handler package's error envelope. Kept local to
// avoid an import cycle between middleware and handler.
type apiError struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Path      string    `json:"path"`
}

// WriteAPIError writes a JSON error response in the API envelope shape.
func WriteAPIError(w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(apiError{
		Timestamp: time.Now().UTC(),
		Status:    statusCode,
		Error:     http.StatusText(statusCode),
		Message:   message,
		Path:      r.URL.Path,
	})
}

// validateToken parses the Authorization header and resolves it to a user.
// Writes an error response and returns nil when the token is missing or
// invalid.
func validateToken(w http.ResponseWriter, r *http.Request, queries *store.Queries) *model.User {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		WriteAPIError(w, r, http.StatusUnauthorized, "Missing Authorization header")
		return nil
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		WriteAPIError(w, r, http.StatusUnauthorized, "Invalid Authorization header format. Use: Bearer <token>")
		return nil
	}

	rawToken := parts[1]
	if rawToken == "" {
		WriteAPIError(w, r, http.StatusUnauthorized, "Token is empty")
		return nil
	}

	token, err := queries.GetAuthTokenByHash(r.Context(), model.HashToken(rawToken))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteAPIError(w, r, http.StatusUnauthorized, "Invalid token")
		} else {
			slog.Error("failed to validate token", "error", err)
			WriteAPIError(w, r, http.StatusInternalServerError, "Failed to validate token")
		}
		return nil
	}

	if token.IsExpired(time.Now()) {
		WriteAPIError(w, r, http.StatusUnauthorized, "Token has expired")
		return nil
	}

	user, err := queries.GetUserByID(r.Context(), token.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteAPIError(w, r, http.StatusUnauthorized, "Invalid token")
		} else {
			slog.Error("failed to load token user", "error", err)
			WriteAPIError(w, r, http.StatusInternalServerError, "Failed to validate token")
		}
		return nil
	}

	return &user
}

// TokenAuth creates middleware that requires a valid bearer token and
// puts the authenticated user into the request context.
func TokenAuth(db *sql.DB) func(http.Handler) http.Handler {
	queries := store.New(db)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := validateToken(w, r, queries)
			if user == nil {
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, *user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin creates middleware that requires the authenticated user
// to have the admin role. Must be used after TokenAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUser(r)
		if user == nil {
			WriteAPIError(w, r, http.StatusUnauthorized, "Authentication required")
			return
		}
		if !user.IsAdmin() {
			WriteAPIError(w, r, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetUser retrieves the authenticated user from the request context.
// Returns nil if no user is in context.
func GetUser(r *http.Request) *model.User {
	user, ok := r.Context().Value(ContextKeyUser).(model.User)
	if !ok {
		return nil
	}
	return &user
}
