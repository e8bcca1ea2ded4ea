// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type postPage struct {
	Content       []PostResponse `json:"content"`
	Page          int            `json:"page"`
	Size          int            `json:"size"`
	TotalElements int64          `json:"totalElements"`
	TotalPages    int            `json:"totalPages"`
	Last          bool           `json:"last"`
}

func createPost(t *testing.T, router chi.Router, token string, categoryID int64, title string, tags ...string) PostResponse {
	t.Helper()

	tagList := ""
	if len(tags) > 0 {
		tagList = `"` + strings.Join(tags, `","`) + `"`
	}
	body := fmt.Sprintf(`{"title":%q,"content":%q,"categoryId":%d,"tags":[%s]}`,
		title, longContent, categoryID, tagList)
	w := doRequest(t, router, http.MethodPost, "/api/posts", token, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return unmarshalBody[PostResponse](t, w)
}

func TestCreatePost(t *testing.T) {
	db, router := testSetup(t)
	token := registerUser(t, router, "writer")
	catID := createCategory(t, db, "Tech", "tech")

	post := createPost(t, router, token, catID, "My First Post", "go", "testing")
	assert.Equal(t, "my-first-post", post.Slug)
	assert.Equal(t, "draft", post.Status)
	assert.Equal(t, "writer", post.Author.Username)
	assert.Equal(t, "Tech", post.Category.Name)
	assert.Len(t, post.Tags, 2)
	assert.NotEmpty(t, post.Content)
	assert.NotEmpty(t, post.ContentHTML)
}

func TestCreatePostValidation(t *testing.T) {
	db, router := testSetup(t)
	token := registerUser(t, router, "writer")
	catID := createCategory(t, db, "Tech", "tech")

	// Content below the minimum length.
	body := fmt.Sprintf(`{"title":"Short","content":"too short","categoryId":%d}`, catID)
	w := doRequest(t, router, http.MethodPost, "/api/posts", token, body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, unmarshalBody[ErrorResponse](t, w).ValidationErrors, "content")

	// Unknown category.
	body = fmt.Sprintf(`{"title":"Orphan","content":%q,"categoryId":9999}`, longContent)
	w = doRequest(t, router, http.MethodPost, "/api/posts", token, body)
	require.Equal(t, http.StatusNotFound, w.Code)

	// Anonymous.
	body = fmt.Sprintf(`{"title":"Anon","content":%q,"categoryId":%d}`, longContent, catID)
	w = doRequest(t, router, http.MethodPost, "/api/posts", "", body)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreatePostDuplicateTitleGetsSuffixedSlug(t *testing.T) {
	db, router := testSetup(t)
	token := registerUser(t, router, "writer")
	catID := createCategory(t, db, "Tech", "tech")

	first := createPost(t, router, token, catID, "Same Title")
	second := createPost(t, router, token, catID, "Same Title")

	assert.Equal(t, "same-title", first.Slug)
	assert.True(t, strings.HasPrefix(second.Slug, "same-title-"), second.Slug)
	suffix := strings.TrimPrefix(second.Slug, "same-title-")
	_, err := strconv.ParseInt(suffix, 10, 64)
	assert.NoError(t, err, "suffix should be numeric: %s", second.Slug)
}

func TestCreatePostSuffixedSlugTakenIsConflict(t *testing.T) {
	db, router := testSetup(t)
	author := registerUser(t, router, "writer")
	catID := createCategory(t, db, "Tech", "tech")

	createPost(t, router, author, catID, "Contested")

	// Occupy every suffixed slug the collision handling could pick in
	// the next ten seconds, so the insert itself hits the unique
	// constraint the way a concurrent create would.
	authorID := userIDByName(t, db, "writer")
	start := time.Now().UnixMilli() - 1000
	_, err := db.Exec(`
		WITH RECURSIVE ms(m) AS (SELECT ? UNION ALL SELECT m + 1 FROM ms WHERE m < ?)
		INSERT INTO posts (title, slug, content, status, author_id, category_id)
		SELECT 'Contested', 'contested-' || m, 'filler', 'draft', ?, ? FROM ms`,
		start, start+11000, authorID, catID)
	require.NoError(t, err)

	body := fmt.Sprintf(`{"title":"Contested","content":%q,"categoryId":%d}`, longContent, catID)
	w := doRequest(t, router, http.MethodPost, "/api/posts", author, body)
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	assert.Equal(t, "Slug already exists", unmarshalBody[ErrorResponse](t, w).Message)
}

func TestDraftVisibility(t *testing.T) {
	db, router := testSetup(t)
	author := registerUser(t, router, "writer")
	other := registerUser(t, router, "reader")
	admin := registerAdmin(t, router, db, "boss")
	catID := createCategory(t, db, "Tech", "tech")

	post := createPost(t, router, author, catID, "Hidden Draft")

	// Drafts are not listed publicly.
	w := doRequest(t, router, http.MethodGet, "/api/posts", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, unmarshalBody[postPage](t, w).Content)

	// Draft detail is hidden from anonymous and other users.
	w = doRequest(t, router, http.MethodGet, "/api/posts/"+post.Slug, "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = doRequest(t, router, http.MethodGet, "/api/posts/"+post.Slug, other, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	// The author and admins can see it.
	w = doRequest(t, router, http.MethodGet, "/api/posts/"+post.Slug, author, "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = doRequest(t, router, http.MethodGet, "/api/posts/"+post.Slug, admin, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestApprovePublishesPost(t *testing.T) {
	db, router := testSetup(t)
	author := registerUser(t, router, "writer")
	admin := registerAdmin(t, router, db, "boss")
	catID := createCategory(t, db, "Tech", "tech")

	post := createPost(t, router, author, catID, "Pending Post")

	// Authors cannot approve.
	path := fmt.Sprintf("/api/admin/posts/%d/approve", post.ID)
	w := doRequest(t, router, http.MethodPut, path, author, "")
	require.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(t, router, http.MethodPut, path, admin, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "published", unmarshalBody[PostResponse](t, w).Status)

	// Now publicly visible with full content.
	w = doRequest(t, router, http.MethodGet, "/api/posts/"+post.Slug, "", "")
	require.Equal(t, http.StatusOK, w.Code)
	detail := unmarshalBody[PostResponse](t, w)
	assert.Equal(t, longContent, detail.Content)
	assert.NotEmpty(t, detail.ContentHTML)

	// And in the public listing, as a summary without content.
	w = doRequest(t, router, http.MethodGet, "/api/posts", "", "")
	page := unmarshalBody[postPage](t, w)
	require.Len(t, page.Content, 1)
	assert.Empty(t, page.Content[0].Content)
	assert.NotEmpty(t, page.Content[0].Excerpt)
}

func TestRejectPost(t *testing.T) {
	db, router := testSetup(t)
	author := registerUser(t, router, "writer")
	admin := registerAdmin(t, router, db, "boss")
	catID := createCategory(t, db, "Tech", "tech")

	post := createPost(t, router, author, catID, "Rejected Post")
	path := fmt.Sprintf("/api/admin/posts/%d/approve", post.ID)
	w := doRequest(t, router, http.MethodPut, path, admin, "")
	require.Equal(t, http.StatusOK, w.Code)

	var logBuf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logBuf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	path = fmt.Sprintf("/api/admin/posts/%d/reject", post.ID)
	w = doRequest(t, router, http.MethodPut, path, admin, `{"reason":"needs work"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "draft", unmarshalBody[PostResponse](t, w).Status)

	// The reason is logged, never stored on the post.
	assert.Contains(t, logBuf.String(), "post rejected")
	assert.Contains(t, logBuf.String(), "needs work")

	// Oversized reason is rejected.
	reason := strings.Repeat("x", 501)
	w = doRequest(t, router, http.MethodPut, path, admin, `{"reason":"`+reason+`"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdatePost(t *testing.T) {
	db, router := testSetup(t)
	author := registerUser(t, router, "writer")
	other := registerUser(t, router, "intruder")
	admin := registerAdmin(t, router, db, "boss")
	catID := createCategory(t, db, "Tech", "tech")

	post := createPost(t, router, author, catID, "Original Title", "go")
	path := fmt.Sprintf("/api/posts/%d", post.ID)
	body := fmt.Sprintf(`{"title":"Updated Title","content":%q,"categoryId":%d,"tags":["go","web"],"status":"published"}`,
		longContent, catID)

	// Only the owner may update.
	w := doRequest(t, router, http.MethodPut, path, other, body)
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "You can only edit your own posts", unmarshalBody[ErrorResponse](t, w).Message)

	w = doRequest(t, router, http.MethodPut, path, author, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := unmarshalBody[PostResponse](t, w)
	assert.Equal(t, "Updated Title", updated.Title)
	assert.Equal(t, "updated-title", updated.Slug, "blank slug is re-derived from the title")
	assert.Equal(t, "published", updated.Status)
	assert.Len(t, updated.Tags, 2)

	// Admins may update any post.
	body = fmt.Sprintf(`{"title":"Admin Edited","content":%q,"categoryId":%d}`, longContent, catID)
	w = doRequest(t, router, http.MethodPut, path, admin, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Admin Edited", unmarshalBody[PostResponse](t, w).Title)
}

func TestUpdatePostSlugConflict(t *testing.T) {
	db, router := testSetup(t)
	author := registerUser(t, router, "writer")
	catID := createCategory(t, db, "Tech", "tech")

	createPost(t, router, author, catID, "Taken Slug")
	post := createPost(t, router, author, catID, "Other Post")

	path := fmt.Sprintf("/api/posts/%d", post.ID)
	body := fmt.Sprintf(`{"title":"Other Post","slug":"taken-slug","content":%q,"categoryId":%d}`,
		longContent, catID)
	w := doRequest(t, router, http.MethodPut, path, author, body)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Slug already exists", unmarshalBody[ErrorResponse](t, w).Message)
}

func TestDeletePost(t *testing.T) {
	db, router := testSetup(t)
	author := registerUser(t, router, "writer")
	other := registerUser(t, router, "intruder")
	admin := registerAdmin(t, router, db, "boss")
	catID := createCategory(t, db, "Tech", "tech")

	post := createPost(t, router, author, catID, "Doomed Post")
	path := fmt.Sprintf("/api/posts/%d", post.ID)

	w := doRequest(t, router, http.MethodDelete, path, other, "")
	require.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(t, router, http.MethodDelete, path, author, "")
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(t, router, http.MethodDelete, path, author, "")
	require.Equal(t, http.StatusNotFound, w.Code)

	// Admins may delete any post.
	second := createPost(t, router, author, catID, "Also Doomed")
	w = doRequest(t, router, http.MethodDelete, fmt.Sprintf("/api/posts/%d", second.ID), admin, "")
	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestMyPosts(t *testing.T) {
	db, router := testSetup(t)
	author := registerUser(t, router, "writer")
	other := registerUser(t, router, "someone")
	admin := registerAdmin(t, router, db, "boss")
	catID := createCategory(t, db, "Tech", "tech")

	createPost(t, router, author, catID, "Mine One")
	p := createPost(t, router, author, catID, "Mine Two")
	createPost(t, router, other, catID, "Not Mine")

	path := fmt.Sprintf("/api/admin/posts/%d/approve", p.ID)
	w := doRequest(t, router, http.MethodPut, path, admin, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, router, http.MethodGet, "/api/posts/my", author, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, unmarshalBody[postPage](t, w).Content, 2)

	w = doRequest(t, router, http.MethodGet, "/api/posts/my?status=published", author, "")
	page := unmarshalBody[postPage](t, w)
	require.Len(t, page.Content, 1)
	assert.Equal(t, "Mine Two", page.Content[0].Title)

	w = doRequest(t, router, http.MethodGet, "/api/posts/my?status=draft", author, "")
	assert.Len(t, unmarshalBody[postPage](t, w).Content, 1)
}

func TestListPostsPagination(t *testing.T) {
	db, router := testSetup(t)
	author := registerUser(t, router, "writer")
	admin := registerAdmin(t, router, db, "boss")
	catID := createCategory(t, db, "Tech", "tech")

	for i := 1; i <= 12; i++ {
		p := createPost(t, router, author, catID, fmt.Sprintf("Post Number %d", i))
		path := fmt.Sprintf("/api/admin/posts/%d/approve", p.ID)
		w := doRequest(t, router, http.MethodPut, path, admin, "")
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := doRequest(t, router, http.MethodGet, "/api/posts", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	page := unmarshalBody[postPage](t, w)
	assert.Len(t, page.Content, 10)
	assert.Equal(t, 0, page.Page)
	assert.Equal(t, int64(12), page.TotalElements)
	assert.Equal(t, 2, page.TotalPages)
	assert.False(t, page.Last)

	w = doRequest(t, router, http.MethodGet, "/api/posts?page=1", "", "")
	page = unmarshalBody[postPage](t, w)
	assert.Len(t, page.Content, 2)
	assert.True(t, page.Last)
}

func TestSearchPosts(t *testing.T) {
	db, router := testSetup(t)
	author := registerUser(t, router, "writer")
	admin := registerAdmin(t, router, db, "boss")
	catID := createCategory(t, db, "Tech", "tech")

	match := createPost(t, router, author, catID, "Kubernetes Deep Dive")
	miss := createPost(t, router, author, catID, "Gardening Basics")
	for _, p := range []PostResponse{match, miss} {
		path := fmt.Sprintf("/api/admin/posts/%d/approve", p.ID)
		w := doRequest(t, router, http.MethodPut, path, admin, "")
		require.Equal(t, http.StatusOK, w.Code)
	}
	// Drafts never match.
	createPost(t, router, author, catID, "Kubernetes Draft Notes")

	w := doRequest(t, router, http.MethodGet, "/api/posts/search?q=kubernetes", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	page := unmarshalBody[postPage](t, w)
	require.Len(t, page.Content, 1)
	assert.Equal(t, "Kubernetes Deep Dive", page.Content[0].Title)

	w = doRequest(t, router, http.MethodGet, "/api/posts/search", "", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
}
