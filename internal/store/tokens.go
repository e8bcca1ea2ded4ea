// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/kietsocola/blogwebsite/internal/model"
)

// CreateAuthTokenParams holds the fields for CreateAuthToken.
type CreateAuthTokenParams struct {
	UserID    int64
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// CreateAuthToken inserts a new auth token record and returns it.
func (q *Queries) CreateAuthToken(ctx context.Context, arg CreateAuthTokenParams) (model.AuthToken, error) {
	var t model.AuthToken
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO auth_tokens (user_id, token_hash, expires_at, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id, user_id, token_hash, expires_at, created_at`,
		arg.UserID, arg.TokenHash, arg.ExpiresAt, arg.CreatedAt).
		Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.CreatedAt)
	return t, err
}

// GetAuthTokenByHash fetches an auth token by its hash.
func (q *Queries) GetAuthTokenByHash(ctx context.Context, hash string) (model.AuthToken, error) {
	var t model.AuthToken
	err := q.db.QueryRowContext(ctx, `
		SELECT id, user_id, token_hash, expires_at, created_at
		FROM auth_tokens WHERE token_hash = ?`, hash).
		Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.CreatedAt)
	return t, err
}

// DeleteExpiredAuthTokens removes tokens whose expiry is in the past.
func (q *Queries) DeleteExpiredAuthTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, "DELETE FROM auth_tokens WHERE expires_at < ?", now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
