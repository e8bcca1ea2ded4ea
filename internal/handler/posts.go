// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kietsocola/blogwebsite/internal/apperr"
	"github.com/kietsocola/blogwebsite/internal/middleware"
	"github.com/kietsocola/blogwebsite/internal/model"
	"github.com/kietsocola/blogwebsite/internal/store"
	"github.com/kietsocola/blogwebsite/internal/util"
)

// excerptLength is the maximum excerpt length in runes.
const excerptLength = 200

// AuthorResponse represents a post author in API responses.
type AuthorResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// CategoryResponse represents a category in API responses. CreatedAt
// is only present in the category endpoints, not when nested in a post.
type CategoryResponse struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Slug      string     `json:"slug"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// TagResponse represents a tag in API responses. CreatedAt is only
// present in the tag endpoints, not when nested in a post.
type TagResponse struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Slug      string     `json:"slug"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// PostResponse represents a post in API responses. Content and its
// rendered HTML are only present in detail views.
type PostResponse struct {
	ID            int64            `json:"id"`
	Title         string           `json:"title"`
	Slug          string           `json:"slug"`
	Content       string           `json:"content,omitempty"`
	ContentHTML   string           `json:"contentHtml,omitempty"`
	Excerpt       string           `json:"excerpt"`
	FeaturedImage string           `json:"featuredImage,omitempty"`
	Status        string           `json:"status"`
	Author        AuthorResponse   `json:"author"`
	Category      CategoryResponse `json:"category"`
	Tags          []TagResponse    `json:"tags"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// PostRequest is the request body for creating or updating a post.
type PostRequest struct {
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	Slug          string   `json:"slug"` // Optional, generated from title if blank
	CategoryID    int64    `json:"categoryId"`
	Tags          []string `json:"tags"` // Tag names, created if they don't exist
	Status        string   `json:"status"`
	FeaturedImage string   `json:"featuredImage"`
}

func (req *PostRequest) validate() map[string]string {
	fields := make(map[string]string)
	if strings.TrimSpace(req.Title) == "" {
		fields["title"] = "Title is required"
	} else if len([]rune(req.Title)) > 200 {
		fields["title"] = "Title must not exceed 200 characters"
	}
	if strings.TrimSpace(req.Content) == "" {
		fields["content"] = "Content is required"
	} else if len([]rune(req.Content)) < 50 {
		fields["content"] = "Content must be at least 50 characters"
	}
	if req.CategoryID == 0 {
		fields["categoryId"] = "Category is required"
	}
	if len([]rune(req.FeaturedImage)) > 500 {
		fields["featuredImage"] = "Featured image URL must not exceed 500 characters"
	}
	if req.Status != "" && !model.IsValidPostStatus(req.Status) {
		fields["status"] = "Status must be 'draft' or 'published'"
	}
	return fields
}

// excerpt returns the first 200 runes of content, with an ellipsis when
// truncated.
func excerpt(content string) string {
	runes := []rune(content)
	if len(runes) <= excerptLength {
		return content
	}
	return string(runes[:excerptLength]) + "..."
}

// postToResponse converts a joined post row to a PostResponse.
// includeContent controls whether the full content and its rendered
// HTML are present.
func (h *Handler) postToResponse(ctx context.Context, row store.PostRow, includeContent bool) PostResponse {
	resp := PostResponse{
		ID:      row.ID,
		Title:   row.Title,
		Slug:    row.Slug,
		Excerpt: excerpt(row.Content),
		Status:  row.Status,
		Author: AuthorResponse{
			ID:       row.AuthorID,
			Username: row.AuthorUsername,
		},
		Category: CategoryResponse{
			ID:   row.CategoryID,
			Name: row.CategoryName,
			Slug: row.CategorySlug,
		},
		Tags:      []TagResponse{},
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}

	if includeContent {
		resp.Content = row.Content
		resp.ContentHTML = renderMarkdown(row.Content)
	}
	if row.FeaturedImage.Valid {
		resp.FeaturedImage = row.FeaturedImage.String
	}

	tags, err := h.queries.GetTagsForPost(ctx, row.ID)
	if err == nil {
		for _, t := range tags {
			resp.Tags = append(resp.Tags, TagResponse{ID: t.ID, Name: t.Name, Slug: t.Slug})
		}
	}

	return resp
}

func (h *Handler) postsToResponses(ctx context.Context, rows []store.PostRow) []PostResponse {
	responses := make([]PostResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, h.postToResponse(ctx, row, false))
	}
	return responses
}

// ListPublishedPosts handles GET /api/posts
func (h *Handler) ListPublishedPosts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := ParsePageParam(r)

	rows, err := h.queries.ListPublishedPosts(ctx, store.PageParams{
		Limit:  pageSize,
		Offset: int64(page * pageSize),
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}
	total, err := h.queries.CountPublishedPosts(ctx)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, NewPageResponse(h.postsToResponses(ctx, rows), page, pageSize, total))
}

// SearchPosts handles GET /api/posts/search?q=
func (h *Handler) SearchPosts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		WriteError(w, r, apperr.BadRequest("Search query is required"))
		return
	}
	page := ParsePageParam(r)

	rows, err := h.queries.SearchPublishedPosts(ctx, store.SearchPostsParams{
		Query:  query,
		Limit:  pageSize,
		Offset: int64(page * pageSize),
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}
	total, err := h.queries.CountSearchPublishedPosts(ctx, query)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, NewPageResponse(h.postsToResponses(ctx, rows), page, pageSize, total))
}

// GetPostBySlug handles GET /api/posts/{slug}
// Drafts are only visible to their author or an admin.
func (h *Handler) GetPostBySlug(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := chi.URLParam(r, "slug")

	row, err := h.queries.GetPostBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteError(w, r, apperr.NotFound("Post not found: %s", slug))
		} else {
			WriteError(w, r, err)
		}
		return
	}

	if !row.IsPublished() {
		user := middleware.GetUser(r)
		if user == nil || !canModifyPost(user, row.Post) {
			WriteError(w, r, apperr.NotFound("Post not found: %s", slug))
			return
		}
	}

	WriteJSON(w, http.StatusOK, h.postToResponse(ctx, row, true))
}

// MyPosts handles GET /api/posts/my?status=&page=
func (h *Handler) MyPosts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.GetUser(r)
	if user == nil {
		WriteError(w, r, apperr.Unauthorized("Authentication required"))
		return
	}

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
		rows, err = h.queries.ListPostsByAuthorAndStatus(ctx, store.ListPostsByAuthorAndStatusParams{
			AuthorID: user.ID, Status: status,
			Limit: pageSize, Offset: int64(page * pageSize),
		})
		if err == nil {
			total, err = h.queries.CountPostsByAuthorAndStatus(ctx, store.CountPostsByAuthorAndStatusParams{
				AuthorID: user.ID, Status: status,
			})
		}
	} else {
		rows, err = h.queries.ListPostsByAuthor(ctx, store.ListPostsByAuthorParams{
			AuthorID: user.ID,
			Limit:    pageSize, Offset: int64(page * pageSize),
		})
		if err == nil {
			total, err = h.queries.CountPostsByAuthor(ctx, user.ID)
		}
	}
	if err != nil {
		WriteError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, NewPageResponse(h.postsToResponses(ctx, rows), page, pageSize, total))
}

// CreatePost handles POST /api/posts
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.GetUser(r)
	if user == nil {
		WriteError(w, r, apperr.Unauthorized("Authentication required"))
		return
	}

	var req PostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, apperr.BadRequest("Invalid JSON body"))
		return
	}
	if fields := req.validate(); len(fields) > 0 {
		WriteError(w, r, apperr.Validation(fields))
		return
	}

	status := req.Status
	if status == "" {
		status = model.PostStatusDraft
	}

	var created model.Post
	err := store.Tx(ctx, h.db, func(q *store.Queries) error {
		if _, err := q.GetCategoryByID(ctx, req.CategoryID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperr.NotFound("Category not found")
			}
			return err
		}

		slug := strings.TrimSpace(req.Slug)
		if slug == "" {
			slug = util.Slugify(req.Title)
		}
		exists, err := q.PostSlugExists(ctx, slug)
		if err != nil {
			return err
		}
		if exists > 0 {
			// Append timestamp to make it unique
			slug = slug + "-" + strconv.FormatInt(time.Now().UnixMilli(), 10)
		}

		now := time.Now().UTC()
		created, err = q.CreatePost(ctx, store.CreatePostParams{
			Title:         req.Title,
			Slug:          slug,
			Content:       req.Content,
			FeaturedImage: toNullString(req.FeaturedImage),
			Status:        status,
			AuthorID:      user.ID,
			CategoryID:    req.CategoryID,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
		if err != nil {
			if store.IsUniqueViolation(err) {
				// Lost a race for the slug between the existence check
				// and the insert.
				return apperr.Duplicate("Slug already exists")
			}
			return err
		}

		return h.attachTags(ctx, q, created.ID, req.Tags)
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}

	row, err := h.queries.GetPostByID(ctx, created.ID)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, h.postToResponse(ctx, row, true))
}

// UpdatePost handles PUT /api/posts/{id}
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.GetUser(r)
	if user == nil {
		WriteError(w, r, apperr.Unauthorized("Authentication required"))
		return
	}

	id, err := ParseIDParam(r)
	if err != nil {
		WriteError(w, r, apperr.BadRequest("Invalid post ID"))
		return
	}

	var req PostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, apperr.BadRequest("Invalid JSON body"))
		return
	}
	if fields := req.validate(); len(fields) > 0 {
		WriteError(w, r, apperr.Validation(fields))
		return
	}

	err = store.Tx(ctx, h.db, func(q *store.Queries) error {
		existing, err := q.GetPostByID(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperr.NotFound("Post not found")
			}
			return err
		}
		if !canModifyPost(user, existing.Post) {
			return apperr.Forbidden("You can only edit your own posts")
		}

		if existing.CategoryID != req.CategoryID {
			if _, err := q.GetCategoryByID(ctx, req.CategoryID); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return apperr.NotFound("Category not found")
				}
				return err
			}
		}

		slug := strings.TrimSpace(req.Slug)
		if slug == "" {
			slug = util.Slugify(req.Title)
		}
		exists, err := q.PostSlugExistsExcluding(ctx, store.PostSlugExistsParams{Slug: slug, ID: id})
		if err != nil {
			return err
		}
		if exists > 0 {
			return apperr.Duplicate("Slug already exists")
		}

		updated, err := q.UpdatePost(ctx, store.UpdatePostParams{
			ID:            id,
			Title:         req.Title,
			Slug:          slug,
			Content:       req.Content,
			FeaturedImage: toNullString(req.FeaturedImage),
			CategoryID:    req.CategoryID,
			UpdatedAt:     time.Now().UTC(),
		})
		if err != nil {
			if store.IsUniqueViolation(err) {
				return apperr.Duplicate("Slug already exists")
			}
			return err
		}

		if req.Status != "" && req.Status != updated.Status {
			if _, err := q.SetPostStatus(ctx, store.SetPostStatusParams{
				ID: id, Status: req.Status, UpdatedAt: updated.UpdatedAt,
			}); err != nil {
				return err
			}
		}

		if err := q.ClearPostTags(ctx, id); err != nil {
			return err
		}
		return h.attachTags(ctx, q, id, req.Tags)
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}

	row, err := h.queries.GetPostByID(ctx, id)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, h.postToResponse(ctx, row, true))
}

// DeletePost handles DELETE /api/posts/{id}
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.GetUser(r)
	if user == nil {
		WriteError(w, r, apperr.Unauthorized("Authentication required"))
		return
	}

	id, err := ParseIDParam(r)
	if err != nil {
		WriteError(w, r, apperr.BadRequest("Invalid post ID"))
		return
	}

	row, err := h.queries.GetPostByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteError(w, r, apperr.NotFound("Post not found"))
		} else {
			WriteError(w, r, err)
		}
		return
	}
	if !canModifyPost(user, row.Post) {
		WriteError(w, r, apperr.Forbidden("You can only delete your own posts"))
		return
	}

	if err := h.queries.DeletePost(ctx, id); err != nil {
		WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// attachTags resolves tag names to tags, creating missing ones, and
// links them to the post. Blank names are skipped.
func (h *Handler) attachTags(ctx context.Context, q *store.Queries, postID int64, names []string) error {
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		tag, err := q.GetTagByName(ctx, name)
		if errors.Is(err, sql.ErrNoRows) {
			tag, err = q.CreateTag(ctx, store.CreateTagParams{
				Name:      name,
				Slug:      util.Slugify(name),
				CreatedAt: time.Now().UTC(),
			})
		}
		if err != nil {
			if store.IsUniqueViolation(err) {
				return apperr.Duplicate("Tag already exists: %s", name)
			}
			return err
		}

		if err := q.AddPostTag(ctx, store.AddPostTagParams{PostID: postID, TagID: tag.ID}); err != nil {
			return err
		}
	}
	return nil
}

func toNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
