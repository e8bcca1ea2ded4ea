// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/kietsocola/blogwebsite/internal/apperr"
	"github.com/kietsocola/blogwebsite/internal/auth"
	"github.com/kietsocola/blogwebsite/internal/middleware"
	"github.com/kietsocola/blogwebsite/internal/model"
	"github.com/kietsocola/blogwebsite/internal/store"
)

// RegisterRequest is the request body for user registration.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	EmailOrUsername string `json:"emailOrUsername"`
	Password        string `json:"password"`
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// AuthResponse is returned from register and login.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

func userToResponse(u model.User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
	}
}

func (req *RegisterRequest) validate() map[string]string {
	fields := make(map[string]string)
	username := strings.TrimSpace(req.Username)
	if username == "" {
		fields["username"] = "Username is required"
	} else if len(username) < 3 || len(username) > 50 {
		fields["username"] = "Username must be between 3 and 50 characters"
	}
	if req.Email == "" {
		fields["email"] = "Email is required"
	} else if _, err := mail.ParseAddress(req.Email); err != nil {
		fields["email"] = "Invalid email format"
	}
	if req.Password == "" {
		fields["password"] = "Password is required"
	} else if len(req.Password) < 6 {
		fields["password"] = "Password must be at least 6 characters"
	}
	return fields
}

// Register handles POST /api/auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, apperr.BadRequest("Invalid JSON body"))
		return
	}
	if fields := req.validate(); len(fields) > 0 {
		WriteError(w, r, apperr.Validation(fields))
		return
	}

	username := strings.TrimSpace(req.Username)

	emailCount, err := h.queries.UserEmailExists(ctx, req.Email)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	if emailCount > 0 {
		WriteError(w, r, apperr.Duplicate("Email already exists"))
		return
	}

	nameCount, err := h.queries.UsernameExists(ctx, username)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	if nameCount > 0 {
		WriteError(w, r, apperr.Duplicate("Username already exists"))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	user, err := h.queries.CreateUser(ctx, store.CreateUserParams{
		Username:     username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         model.RoleAuthor,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		if store.IsUniqueViolation(err) {
			WriteError(w, r, apperr.Duplicate("Email or username already exists"))
			return
		}
		WriteError(w, r, err)
		return
	}

	token, err := h.issueToken(ctx, user.ID)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusCreated, AuthResponse{Token: token, User: userToResponse(user)})
}

// Login handles POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, apperr.BadRequest("Invalid JSON body"))
		return
	}
	if req.EmailOrUsername == "" || req.Password == "" {
		WriteError(w, r, apperr.BadRequest("Email/username and password are required"))
		return
	}

	user, err := h.queries.GetUserByEmailOrUsername(ctx, req.EmailOrUsername)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteError(w, r, apperr.Unauthorized("Invalid credentials"))
			return
		}
		WriteError(w, r, err)
		return
	}

	ok, err := auth.CheckPassword(req.Password, user.PasswordHash)
	if err != nil || !ok {
		WriteError(w, r, apperr.Unauthorized("Invalid credentials"))
		return
	}

	token, err := h.issueToken(ctx, user.ID)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, AuthResponse{Token: token, User: userToResponse(user)})
}

// Me handles GET /api/auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		WriteError(w, r, apperr.Unauthorized("Authentication required"))
		return
	}
	WriteJSON(w, http.StatusOK, userToResponse(*user))
}

// issueToken creates a new bearer token for the user and returns the
// raw token. Only the hash is persisted.
func (h *Handler) issueToken(ctx context.Context, userID int64) (string, error) {
	raw, err := model.GenerateToken()
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	_, err = h.queries.CreateAuthToken(ctx, store.CreateAuthTokenParams{
		UserID:    userID,
		TokenHash: model.HashToken(raw),
		ExpiresAt: now.Add(h.cfg.TokenTTL),
		CreatedAt: now,
	})
	if err != nil {
		return "", err
	}
	return raw, nil
}
