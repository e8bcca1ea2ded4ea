// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/kietsocola/blogwebsite/internal/model"
)

const tagColumns = "id, name, slug, created_at"

func scanTag(row *sql.Row) (model.Tag, error) {
	var t model.Tag
	err := row.Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt)
	return t, err
}

// CreateTagParams holds the fields for CreateTag.
type CreateTagParams struct {
	Name      string
	Slug      string
	CreatedAt time.Time
}

// CreateTag inserts a new tag and returns it.
func (q *Queries) CreateTag(ctx context.Context, arg CreateTagParams) (model.Tag, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO tags (name, slug, created_at)
		VALUES (?, ?, ?)
		RETURNING `+tagColumns,
		arg.Name, arg.Slug, arg.CreatedAt)
	return scanTag(row)
}

// GetTagBySlug fetches a tag by slug.
func (q *Queries) GetTagBySlug(ctx context.Context, slug string) (model.Tag, error) {
	row := q.db.QueryRowContext(ctx, "SELECT "+tagColumns+" FROM tags WHERE slug = ?", slug)
	return scanTag(row)
}

// GetTagByName fetches a tag by exact name.
func (q *Queries) GetTagByName(ctx context.Context, name string) (model.Tag, error) {
	row := q.db.QueryRowContext(ctx, "SELECT "+tagColumns+" FROM tags WHERE name = ?", name)
	return scanTag(row)
}

// ListTags returns all tags ordered by name.
func (q *Queries) ListTags(ctx context.Context) ([]model.Tag, error) {
	rows, err := q.db.QueryContext(ctx, "SELECT "+tagColumns+" FROM tags ORDER BY name")
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

// CountTags returns the total number of tags.
func (q *Queries) CountTags(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tags").Scan(&count)
	return count, err
}
