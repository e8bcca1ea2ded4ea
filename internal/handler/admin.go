// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kietsocola/blogwebsite/internal/apperr"
	"github.com/kietsocola/blogwebsite/internal/middleware"
	"github.com/kietsocola/blogwebsite/internal/model"
	"github.com/kietsocola/blogwebsite/internal/store"
)

// StatsResponse contains dashboard statistics.
type StatsResponse struct {
	TotalPosts      int64 `json:"totalPosts"`
	TotalUsers      int64 `json:"totalUsers"`
	TotalCategories int64 `json:"totalCategories"`
	TotalTags       int64 `json:"totalTags"`
}

// UserAdminResponse represents a user in the admin user list.
type UserAdminResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// RejectRequest is the optional request body for rejecting a post.
type RejectRequest struct {
	Reason string `json:"reason"`
}

// Stats handles GET /api/admin/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var resp StatsResponse
	var err error
	if resp.TotalPosts, err = h.queries.CountAllPosts(ctx); err != nil {
		WriteError(w, r, err)
		return
	}
	if resp.TotalUsers, err = h.queries.CountUsers(ctx); err != nil {
		WriteError(w, r, err)
		return
	}
	if resp.TotalCategories, err = h.queries.CountCategories(ctx); err != nil {
		WriteError(w, r, err)
		return
	}
	if resp.TotalTags, err = h.queries.CountTags(ctx); err != nil {
		WriteError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, resp)
}

// ListUsers handles GET /api/admin/users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.queries.ListUsers(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}

	responses := make([]UserAdminResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, UserAdminResponse{
			ID:        u.ID,
			Username:  u.Username,
			Email:     u.Email,
			Role:      u.Role,
			CreatedAt: u.CreatedAt,
		})
	}
	WriteJSON(w, http.StatusOK, responses)
}

// DeleteUser handles DELETE /api/admin/users/{id}
// Admins cannot delete their own account. Users who still own posts
// cannot be deleted.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	current := middleware.GetUser(r)
	if current == nil {
		WriteError(w, r, apperr.Unauthorized("Authentication required"))
		return
	}

	id, err := ParseIDParam(r)
	if err != nil {
		WriteError(w, r, apperr.BadRequest("Invalid user ID"))
		return
	}

	user, err := h.queries.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteError(w, r, apperr.NotFound("User not found"))
		} else {
			WriteError(w, r, err)
		}
		return
	}

	if user.ID == current.ID {
		WriteError(w, r, apperr.BadRequest("Cannot delete your own account"))
		return
	}

	if err := h.queries.DeleteUser(ctx, id); err != nil {
		if store.IsForeignKeyViolation(err) {
			WriteError(w, r, apperr.BadRequest("Cannot delete a user who still has posts. Delete or reassign their posts first."))
			return
		}
		WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AdminPosts handles GET /api/admin/posts?status=&page=
func (h *Handler) AdminPosts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page := ParsePageParam(r)
	status := r.URL.Query().Get("status")
	if status != "" && !model.IsValidPostStatus(status) {
		WriteError(w, r, apperr.BadRequest("Invalid status: %s", status))
		return
	}

	var rows []store.PostRow
	var total int64
	var err error
	if status != "" {
		rows, err = h.queries.ListPostsByStatus(ctx, store.ListPostsByStatusParams{
			Status: status, Limit: pageSize, Offset: int64(page * pageSize),
		})
		if err == nil {
			total, err = h.queries.CountPostsByStatus(ctx, status)
		}
	} else {
		rows, err = h.queries.ListAllPosts(ctx, store.PageParams{
			Limit: pageSize, Offset: int64(page * pageSize),
		})
		if err == nil {
			total, err = h.queries.CountAllPosts(ctx)
		}
	}
	if err != nil {
		WriteError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, NewPageResponse(h.postsToResponses(ctx, rows), page, pageSize, total))
}

// ApprovePost handles PUT /api/admin/posts/{id}/approve
func (h *Handler) ApprovePost(w http.ResponseWriter, r *http.Request) {
	h.setPostStatus(w, r, model.PostStatusPublished)
}

// RejectPost handles PUT /api/admin/posts/{id}/reject
// The body may carry a reason, which is validated and logged but not
// persisted on the post.
func (h *Handler) RejectPost(w http.ResponseWriter, r *http.Request) {
	var req RejectRequest
	if r.Body != nil {
		// Body is optional; ignore decode errors on an empty body
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if len([]rune(req.Reason)) > 500 {
		WriteError(w, r, apperr.Validation(map[string]string{
			"reason": "Reason must not exceed 500 characters",
		}))
		return
	}
	if req.Reason != "" {
		slog.Info("post rejected", "id", chi.URLParam(r, "id"), "reason", req.Reason)
	}

	h.setPostStatus(w, r, model.PostStatusDraft)
}

func (h *Handler) setPostStatus(w http.ResponseWriter, r *http.Request, status string) {
	ctx := r.Context()

	id, err := ParseIDParam(r)
	if err != nil {
		WriteError(w, r, apperr.BadRequest("Invalid post ID"))
		return
	}

	if _, err := h.queries.GetPostByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteError(w, r, apperr.NotFound("Post not found"))
		} else {
			WriteError(w, r, err)
		}
		return
	}

	if _, err := h.queries.SetPostStatus(ctx, store.SetPostStatusParams{
		ID:        id,
		Status:    status,
		UpdatedAt: time.Now().UTC(),
	}); err != nil {
		WriteError(w, r, err)
		return
	}

	row, err := h.queries.GetPostByID(ctx, id)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, h.postToResponse(ctx, row, false))
}

// EventResponse represents a persisted log event in admin responses.
type EventResponse struct {
	ID        int64     `json:"id"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Source    string    `json:"source"`
	Path      string    `json:"path,omitempty"`
	Metadata  string    `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListEvents handles GET /api/admin/events?page=
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := ParsePageParam(r)

	events, err := h.queries.ListEvents(ctx, store.PageParams{
		Limit:  pageSize,
		Offset: int64(page * pageSize),
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}
	total, err := h.queries.CountEvents(ctx)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	responses := make([]EventResponse, 0, len(events))
	for _, e := range events {
		responses = append(responses, EventResponse{
			ID:        e.ID,
			Level:     e.Level,
			Message:   strings.TrimSpace(e.Message),
			Source:    e.Source,
			Path:      e.Path,
			Metadata:  e.Metadata,
			CreatedAt: e.CreatedAt,
		})
	}
	WriteJSON(w, http.StatusOK, NewPageResponse(responses, page, pageSize, total))
}
