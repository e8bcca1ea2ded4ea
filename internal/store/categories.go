// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/kietsocola/blogwebsite/internal/model"
)

const categoryColumns = "id, name, slug, created_at"

func scanCategory(row *sql.Row) (model.Category, error) {
	var c model.Category
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt)
	return c, err
}

// CreateCategoryParams holds the fields for CreateCategory.
type CreateCategoryParams struct {
	Name      string
	Slug      string
	CreatedAt time.Time
}

// CreateCategory inserts a new category and returns it.
func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) (model.Category, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO categories (name, slug, created_at)
		VALUES (?, ?, ?)
		RETURNING `+categoryColumns,
		arg.Name, arg.Slug, arg.CreatedAt)
	return scanCategory(row)
}

// GetCategoryByID fetches a category by ID.
func (q *Queries) GetCategoryByID(ctx context.Context, id int64) (model.Category, error) {
	row := q.db.QueryRowContext(ctx, "SELECT "+categoryColumns+" FROM categories WHERE id = ?", id)
	return scanCategory(row)
}

// GetCategoryBySlug fetches a category by slug.
func (q *Queries) GetCategoryBySlug(ctx context.Context, slug string) (model.Category, error) {
	row := q.db.QueryRowContext(ctx, "SELECT "+categoryColumns+" FROM categories WHERE slug = ?", slug)
	return scanCategory(row)
}

// ListCategories returns all categories ordered by name.
func (q *Queries) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+categoryColumns+" FROM categories ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// CategoryNameExistsParams holds the fields for CategoryNameExistsExcluding.
type CategoryNameExistsParams struct {
	Name string
	ID   int64
}

// CategoryNameExists returns the number of categories with the given name.
func (q *Queries) CategoryNameExists(ctx context.Context, name string) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM categories WHERE name = ?", name).Scan(&count)
	return count, err
}

// CategoryNameExistsExcluding returns the number of categories with the
// given name, excluding the category with the given ID.
func (q *Queries) CategoryNameExistsExcluding(ctx context.Context, arg CategoryNameExistsParams) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM categories WHERE name = ? AND id != ?",
		arg.Name, arg.ID).Scan(&count)
	return count, err
}

// CategorySlugExistsParams holds the fields for CategorySlugExistsExcluding.
type CategorySlugExistsParams struct {
	Slug string
	ID   int64
}

// CategorySlugExists returns the number of categories with the given slug.
func (q *Queries) CategorySlugExists(ctx context.Context, slug string) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM categories WHERE slug = ?", slug).Scan(&count)
	return count, err
}

// CategorySlugExistsExcluding returns the number of categories with the
// given slug, excluding the category with the given ID.
func (q *Queries) CategorySlugExistsExcluding(ctx context.Context, arg CategorySlugExistsParams) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM categories WHERE slug = ? AND id != ?",
		arg.Slug, arg.ID).Scan(&count)
	return count, err
}

// UpdateCategoryParams holds the fields for UpdateCategory.
type UpdateCategoryParams struct {
	ID   int64
	Name string
	Slug string
}

// UpdateCategory updates a category's name and slug and returns it.
func (q *Queries) UpdateCategory(ctx context.Context, arg UpdateCategoryParams) (model.Category, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE categories SET name = ?, slug = ?
		WHERE id = ?
		RETURNING `+categoryColumns,
		arg.Name, arg.Slug, arg.ID)
	return scanCategory(row)
}

// DeleteCategory deletes a category by ID.
func (q *Queries) DeleteCategory(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	return err
}

// CountCategories returns the total number of categories.
func (q *Queries) CountCategories(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM categories").Scan(&count)
	return count, err
}
