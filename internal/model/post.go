// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Post statuses
const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
)

// Post represents a blog post. The author and category references are
// required; tags are attached through an explicit join table owned by
// the post.
type Post struct {
	ID            int64          `json:"id"`
	Title         string         `json:"title"`
	Slug          string         `json:"slug"`
	Content       string         `json:"content"`
	FeaturedImage sql.NullString `json:"featured_image,omitempty"`
	Status        string         `json:"status"`
	AuthorID      int64          `json:"author_id"`
	CategoryID    int64          `json:"category_id"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// IsPublished returns true if the post is published.
func (p *Post) IsPublished() bool {
	return p.Status == PostStatusPublished
}

// IsDraft returns true if the post is a draft.
func (p *Post) IsDraft() bool {
	return p.Status == PostStatusDraft
}

// IsValidPostStatus reports whether status is a known post status.
func IsValidPostStatus(status string) bool {
	return status == PostStatusDraft || status == PostStatusPublished
}
