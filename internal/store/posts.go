// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/kietsocola/blogwebsite/internal/model"
)

const postColumns = "p.id, p.title, p.slug, p.content, p.featured_image, p.status, p.author_id, p.category_id, p.created_at, p.updated_at"

// PostRow is a post joined with its author and category names for
// rendering list and detail views without extra round trips.
type PostRow struct {
	model.Post
	AuthorUsername string
	CategoryName   string
	CategorySlug   string
}

const postRowSelect = `
	SELECT ` + postColumns + `, u.username, c.name, c.slug
	FROM posts p
	JOIN users u ON u.id = p.author_id
	JOIN categories c ON c.id = p.category_id`

func scanPostRow(s interface {
	Scan(dest ...any) error
}) (PostRow, error) {
	var r PostRow
	err := s.Scan(
		&r.ID, &r.Title, &r.Slug, &r.Content, &r.FeaturedImage, &r.Status,
		&r.AuthorID, &r.CategoryID, &r.CreatedAt, &r.UpdatedAt,
		&r.AuthorUsername, &r.CategoryName, &r.CategorySlug)
	return r, err
}

func (q *Queries) listPostRows(ctx context.Context, query string, args ...any) ([]PostRow, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []PostRow
	for rows.Next() {
		r, err := scanPostRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// CreatePostParams holds the fields for CreatePost.
type CreatePostParams struct {
	Title         string
	Slug          string
	Content       string
	FeaturedImage sql.NullString
	Status        string
	AuthorID      int64
	CategoryID    int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CreatePost inserts a new post and returns it.
func (q *Queries) CreatePost(ctx context.Context, arg CreatePostParams) (model.Post, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO posts (title, slug, content, featured_image, status, author_id, category_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id, title, slug, content, featured_image, status, author_id, category_id, created_at, updated_at`,
		arg.Title, arg.Slug, arg.Content, arg.FeaturedImage, arg.Status,
		arg.AuthorID, arg.CategoryID, arg.CreatedAt, arg.UpdatedAt)
	return scanPost(row)
}

func scanPost(row *sql.Row) (model.Post, error) {
	var p model.Post
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Content, &p.FeaturedImage,
		&p.Status, &p.AuthorID, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// UpdatePostParams holds the fields for UpdatePost.
type UpdatePostParams struct {
	ID            int64
	Title         string
	Slug          string
	Content       string
	FeaturedImage sql.NullString
	CategoryID    int64
	UpdatedAt     time.Time
}

// UpdatePost updates a post's editable fields and returns the result.
func (q *Queries) UpdatePost(ctx context.Context, arg UpdatePostParams) (model.Post, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE posts
		SET title = ?, slug = ?, content = ?, featured_image = ?, category_id = ?, updated_at = ?
		WHERE id = ?
		RETURNING id, title, slug, content, featured_image, status, author_id, category_id, created_at, updated_at`,
		arg.Title, arg.Slug, arg.Content, arg.FeaturedImage, arg.CategoryID, arg.UpdatedAt, arg.ID)
	return scanPost(row)
}

// SetPostStatusParams holds the fields for SetPostStatus.
type SetPostStatusParams struct {
	ID        int64
	Status    string
	UpdatedAt time.Time
}

// SetPostStatus changes a post's status and returns the result.
func (q *Queries) SetPostStatus(ctx context.Context, arg SetPostStatusParams) (model.Post, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE posts SET status = ?, updated_at = ?
		WHERE id = ?
		RETURNING id, title, slug, content, featured_image, status, author_id, category_id, created_at, updated_at`,
		arg.Status, arg.UpdatedAt, arg.ID)
	return scanPost(row)
}

// GetPostByID fetches a post with author and category data by ID.
func (q *Queries) GetPostByID(ctx context.Context, id int64) (PostRow, error) {
	row := q.db.QueryRowContext(ctx, postRowSelect+" WHERE p.id = ?", id)
	return scanPostRow(row)
}

// GetPostBySlug fetches a post with author and category data by slug.
func (q *Queries) GetPostBySlug(ctx context.Context, slug string) (PostRow, error) {
	row := q.db.QueryRowContext(ctx, postRowSelect+" WHERE p.slug = ?", slug)
	return scanPostRow(row)
}

// DeletePost deletes a post by ID. Tag associations cascade.
func (q *Queries) DeletePost(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, "DELETE FROM posts WHERE id = ?", id)
	return err
}

// PostSlugExists returns the number of posts with the given slug.
func (q *Queries) PostSlugExists(ctx context.Context, slug string) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM posts WHERE slug = ?", slug).Scan(&count)
	return count, err
}

// PostSlugExistsParams holds the fields for PostSlugExistsExcluding.
type PostSlugExistsParams struct {
	Slug string
	ID   int64
}

// PostSlugExistsExcluding returns the number of posts with the given
// slug, excluding the post with the given ID.
func (q *Queries) PostSlugExistsExcluding(ctx context.Context, arg PostSlugExistsParams) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM posts WHERE slug = ? AND id != ?",
		arg.Slug, arg.ID).Scan(&count)
	return count, err
}

// PageParams holds limit and offset for paginated list queries.
type PageParams struct {
	Limit  int64
	Offset int64
}

// ListPublishedPosts returns a page of published posts, newest first.
func (q *Queries) ListPublishedPosts(ctx context.Context, arg PageParams) ([]PostRow, error) {
	return q.listPostRows(ctx, postRowSelect+`
		WHERE p.status = 'published'
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT ? OFFSET ?`, arg.Limit, arg.Offset)
}

// CountPublishedPosts returns the number of published posts.
func (q *Queries) CountPublishedPosts(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM posts WHERE status = 'published'").Scan(&count)
	return count, err
}

// SearchPostsParams holds the fields for SearchPublishedPosts.
type SearchPostsParams struct {
	Query  string
	Limit  int64
	Offset int64
}

// SearchPublishedPosts returns a page of published posts whose title or
// content matches the query, newest first.
func (q *Queries) SearchPublishedPosts(ctx context.Context, arg SearchPostsParams) ([]PostRow, error) {
	pattern := "%" + arg.Query + "%"
	return q.listPostRows(ctx, postRowSelect+`
		WHERE p.status = 'published' AND (p.title LIKE ? OR p.content LIKE ?)
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT ? OFFSET ?`, pattern, pattern, arg.Limit, arg.Offset)
}

// CountSearchPublishedPosts returns the number of published posts
// matching the query.
func (q *Queries) CountSearchPublishedPosts(ctx context.Context, query string) (int64, error) {
	pattern := "%" + query + "%"
	var count int64
	err := q.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM posts WHERE status = 'published' AND (title LIKE ? OR content LIKE ?)",
		pattern, pattern).Scan(&count)
	return count, err
}

// ListPostsByAuthorParams holds the fields for ListPostsByAuthor.
type ListPostsByAuthorParams struct {
	AuthorID int64
	Limit    int64
	Offset   int64
}

// ListPostsByAuthor returns a page of an author's posts in any status,
// newest first.
func (q *Queries) ListPostsByAuthor(ctx context.Context, arg ListPostsByAuthorParams) ([]PostRow, error) {
	return q.listPostRows(ctx, postRowSelect+`
		WHERE p.author_id = ?
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT ? OFFSET ?`, arg.AuthorID, arg.Limit, arg.Offset)
}

// ListPostsByAuthorAndStatusParams holds the fields for
// ListPostsByAuthorAndStatus.
type ListPostsByAuthorAndStatusParams struct {
	AuthorID int64
	Status   string
	Limit    int64
	Offset   int64
}

// ListPostsByAuthorAndStatus returns a page of an author's posts in the
// given status, newest first.
func (q *Queries) ListPostsByAuthorAndStatus(ctx context.Context, arg ListPostsByAuthorAndStatusParams) ([]PostRow, error) {
	return q.listPostRows(ctx, postRowSelect+`
		WHERE p.author_id = ? AND p.status = ?
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT ? OFFSET ?`, arg.AuthorID, arg.Status, arg.Limit, arg.Offset)
}

// CountPostsByAuthorAndStatusParams holds the fields for
// CountPostsByAuthorAndStatus.
type CountPostsByAuthorAndStatusParams struct {
	AuthorID int64
	Status   string
}

// CountPostsByAuthorAndStatus returns the number of posts by the given
// author in the given status.
func (q *Queries) CountPostsByAuthorAndStatus(ctx context.Context, arg CountPostsByAuthorAndStatusParams) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM posts WHERE author_id = ? AND status = ?",
		arg.AuthorID, arg.Status).Scan(&count)
	return count, err
}

// CountPostsByAuthor returns the number of posts by the given author.
func (q *Queries) CountPostsByAuthor(ctx context.Context, authorID int64) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM posts WHERE author_id = ?", authorID).Scan(&count)
	return count, err
}

// ListAllPosts returns a page of posts in any status, newest first.
func (q *Queries) ListAllPosts(ctx context.Context, arg PageParams) ([]PostRow, error) {
	return q.listPostRows(ctx, postRowSelect+`
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT ? OFFSET ?`, arg.Limit, arg.Offset)
}

// CountAllPosts returns the total number of posts.
func (q *Queries) CountAllPosts(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM posts").Scan(&count)
	return count, err
}

// ListPostsByStatusParams holds the fields for ListPostsByStatus.
type ListPostsByStatusParams struct {
	Status string
	Limit  int64
	Offset int64
}

// ListPostsByStatus returns a page of posts in the given status,
// newest first.
func (q *Queries) ListPostsByStatus(ctx context.Context, arg ListPostsByStatusParams) ([]PostRow, error) {
	return q.listPostRows(ctx, postRowSelect+`
		WHERE p.status = ?
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT ? OFFSET ?`, arg.Status, arg.Limit, arg.Offset)
}

// CountPostsByStatus returns the number of posts in the given status.
func (q *Queries) CountPostsByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM posts WHERE status = ?", status).Scan(&count)
	return count, err
}

// ListPostsByCategoryParams holds the fields for
// ListPublishedPostsByCategory.
type ListPostsByCategoryParams struct {
	CategoryID int64
	Limit      int64
	Offset     int64
}

// ListPublishedPostsByCategory returns a page of published posts in the
// given category, newest first.
func (q *Queries) ListPublishedPostsByCategory(ctx context.Context, arg ListPostsByCategoryParams) ([]PostRow, error) {
	return q.listPostRows(ctx, postRowSelect+`
		WHERE p.status = 'published' AND p.category_id = ?
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT ? OFFSET ?`, arg.CategoryID, arg.Limit, arg.Offset)
}

// CountPublishedPostsByCategory returns the number of published posts in
// the given category.
func (q *Queries) CountPublishedPostsByCategory(ctx context.Context, categoryID int64) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM posts WHERE status = 'published' AND category_id = ?",
		categoryID).Scan(&count)
	return count, err
}

// CountPostsByCategory returns the number of posts in the given category
// regardless of status.
func (q *Queries) CountPostsByCategory(ctx context.Context, categoryID int64) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM posts WHERE category_id = ?", categoryID).Scan(&count)
	return count, err
}

// ListPostsByTagParams holds the fields for ListPublishedPostsByTag.
type ListPostsByTagParams struct {
	TagID  int64
	Limit  int64
	Offset int64
}

// ListPublishedPostsByTag returns a page of published posts carrying the
// given tag, newest first.
func (q *Queries) ListPublishedPostsByTag(ctx context.Context, arg ListPostsByTagParams) ([]PostRow, error) {
	return q.listPostRows(ctx, postRowSelect+`
		JOIN post_tags pt ON pt.post_id = p.id
		WHERE p.status = 'published' AND pt.tag_id = ?
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT ? OFFSET ?`, arg.TagID, arg.Limit, arg.Offset)
}

// CountPublishedPostsByTag returns the number of published posts
// carrying the given tag.
func (q *Queries) CountPublishedPostsByTag(ctx context.Context, tagID int64) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM posts p
		JOIN post_tags pt ON pt.post_id = p.id
		WHERE p.status = 'published' AND pt.tag_id = ?`, tagID).Scan(&count)
	return count, err
}

// AddPostTagParams holds the fields for AddPostTag.
type AddPostTagParams struct {
	PostID int64
	TagID  int64
}

// AddPostTag attaches a tag to a post. Duplicate pairs are ignored.
func (q *Queries) AddPostTag(ctx context.Context, arg AddPostTagParams) error {
	_, err := q.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO post_tags (post_id, tag_id) VALUES (?, ?)",
		arg.PostID, arg.TagID)
	return err
}

// ClearPostTags removes all tag associations for a post.
func (q *Queries) ClearPostTags(ctx context.Context, postID int64) error {
	_, err := q.db.ExecContext(ctx, "DELETE FROM post_tags WHERE post_id = ?", postID)
	return err
}

// GetTagsForPost returns the tags attached to a post, ordered by name.
func (q *Queries) GetTagsForPost(ctx context.Context, postID int64) ([]model.Tag, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.slug, t.created_at
		FROM tags t
		JOIN post_tags pt ON pt.tag_id = t.id
		WHERE pt.post_id = ?
		ORDER BY t.name`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []model.Tag
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}
