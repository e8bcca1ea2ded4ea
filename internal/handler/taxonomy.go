// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kietsocola/blogwebsite/internal/apperr"
	"github.com/kietsocola/blogwebsite/internal/model"
	"github.com/kietsocola/blogwebsite/internal/store"
	"github.com/kietsocola/blogwebsite/internal/util"
)

// CategoryRequest is the request body for creating or updating a category.
type CategoryRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"` // Optional, generated from name if blank
}

func (req *CategoryRequest) validate() map[string]string {
	fields := make(map[string]string)
	if strings.TrimSpace(req.Name) == "" {
		fields["name"] = "Category name is required"
	} else if len([]rune(req.Name)) > 100 {
		fields["name"] = "Category name must not exceed 100 characters"
	}
	return fields
}

func categoryToResponse(c model.Category) CategoryResponse {
	createdAt := c.CreatedAt
	return CategoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		Slug:      c.Slug,
		CreatedAt: &createdAt,
	}
}

func tagToResponse(t model.Tag) TagResponse {
	createdAt := t.CreatedAt
	return TagResponse{
		ID:        t.ID,
		Name:      t.Name,
		Slug:      t.Slug,
		CreatedAt: &createdAt,
	}
}

// ListCategories handles GET /api/categories
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.queries.ListCategories(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}

	responses := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		responses = append(responses, categoryToResponse(c))
	}
	WriteJSON(w, http.StatusOK, responses)
}

// CategoryPosts handles GET /api/categories/{slug}/posts
func (h *Handler) CategoryPosts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := chi.URLParam(r, "slug")

	category, err := h.queries.GetCategoryBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteError(w, r, apperr.NotFound("Category not found: %s", slug))
		} else {
			WriteError(w, r, err)
		}
		return
	}

	page := ParsePageParam(r)
	rows, err := h.queries.ListPublishedPostsByCategory(ctx, store.ListPostsByCategoryParams{
		CategoryID: category.ID,
		Limit:      pageSize,
		Offset:     int64(page * pageSize),
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}
	total, err := h.queries.CountPublishedPostsByCategory(ctx, category.ID)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, NewPageResponse(h.postsToResponses(ctx, rows), page, pageSize, total))
}

// CreateCategory handles POST /api/categories (admin)
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, apperr.BadRequest("Invalid JSON body"))
		return
	}
	if fields := req.validate(); len(fields) > 0 {
		WriteError(w, r, apperr.Validation(fields))
		return
	}

	name := strings.TrimSpace(req.Name)
	nameCount, err := h.queries.CategoryNameExists(ctx, name)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	if nameCount > 0 {
		WriteError(w, r, apperr.Duplicate("Category name already exists"))
		return
	}

	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		slug = util.Slugify(name)
	}
	slugCount, err := h.queries.CategorySlugExists(ctx, slug)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	if slugCount > 0 {
		WriteError(w, r, apperr.Duplicate("Category slug already exists"))
		return
	}

	category, err := h.queries.CreateCategory(ctx, store.CreateCategoryParams{
		Name:      name,
		Slug:      slug,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		if store.IsUniqueViolation(err) {
			WriteError(w, r, apperr.Duplicate("Category already exists"))
			return
		}
		WriteError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusCreated, categoryToResponse(category))
}

// UpdateCategory handles PUT /api/categories/{id} (admin)
func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := ParseIDParam(r)
	if err != nil {
		WriteError(w, r, apperr.BadRequest("Invalid category ID"))
		return
	}

	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, apperr.BadRequest("Invalid JSON body"))
		return
	}
	if fields := req.validate(); len(fields) > 0 {
		WriteError(w, r, apperr.Validation(fields))
		return
	}

	existing, err := h.queries.GetCategoryByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteError(w, r, apperr.NotFound("Category not found"))
		} else {
			WriteError(w, r, err)
		}
		return
	}

	name := strings.TrimSpace(req.Name)
	if name != existing.Name {
		count, err := h.queries.CategoryNameExistsExcluding(ctx, store.CategoryNameExistsParams{Name: name, ID: id})
		if err != nil {
			WriteError(w, r, err)
			return
		}
		if count > 0 {
			WriteError(w, r, apperr.Duplicate("Category name already exists"))
			return
		}
	}

	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		slug = util.Slugify(name)
	}
	if slug != existing.Slug {
		count, err := h.queries.CategorySlugExistsExcluding(ctx, store.CategorySlugExistsParams{Slug: slug, ID: id})
		if err != nil {
			WriteError(w, r, err)
			return
		}
		if count > 0 {
			WriteError(w, r, apperr.Duplicate("Category slug already exists"))
			return
		}
	}

	category, err := h.queries.UpdateCategory(ctx, store.UpdateCategoryParams{
		ID:   id,
		Name: name,
		Slug: slug,
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, categoryToResponse(category))
}

// DeleteCategory handles DELETE /api/categories/{id} (admin)
// Deletion is refused while the category still has posts.
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := ParseIDParam(r)
	if err != nil {
		WriteError(w, r, apperr.BadRequest("Invalid category ID"))
		return
	}

	if _, err := h.queries.GetCategoryByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteError(w, r, apperr.NotFound("Category not found"))
		} else {
			WriteError(w, r, err)
		}
		return
	}

	postCount, err := h.queries.CountPostsByCategory(ctx, id)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	if postCount > 0 {
		WriteError(w, r, apperr.BadRequest(
			"Cannot delete category with %d posts. Move or delete posts first.", postCount))
		return
	}

	if err := h.queries.DeleteCategory(ctx, id); err != nil {
		WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListTags handles GET /api/tags
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.queries.ListTags(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}

	responses := make([]TagResponse, 0, len(tags))
	for _, t := range tags {
		responses = append(responses, tagToResponse(t))
	}
	WriteJSON(w, http.StatusOK, responses)
}

// TagPosts handles GET /api/tags/{slug}/posts
func (h *Handler) TagPosts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := chi.URLParam(r, "slug")

	tag, err := h.queries.GetTagBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteError(w, r, apperr.NotFound("Tag not found: %s", slug))
		} else {
			WriteError(w, r, err)
		}
		return
	}

	page := ParsePageParam(r)
	rows, err := h.queries.ListPublishedPostsByTag(ctx, store.ListPostsByTagParams{
		TagID:  tag.ID,
		Limit:  pageSize,
		Offset: int64(page * pageSize),
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}
	total, err := h.queries.CountPublishedPostsByTag(ctx, tag.ID)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, NewPageResponse(h.postsToResponses(ctx, rows), page, pageSize, total))
}
