// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/kietsocola/blogwebsite/internal/auth"
	"github.com/kietsocola/blogwebsite/internal/model"
)

const (
	seedAdminUsername = "admin"
	seedAdminEmail    = "admin@example.com"
	seedAdminPassword = "changeme"
)

// Seed creates the default admin account when no admin exists yet.
// The password must be changed after first login.
func Seed(ctx context.Context, db *sql.DB, enabled bool) error {
	if !enabled {
		return nil
	}
	q := New(db)

	var count int64
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE role = ?", model.RoleAdmin).Scan(&count)
	if err != nil {
		return fmt.Errorf("seed: count admins: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword(seedAdminPassword)
	if err != nil {
		return fmt.Errorf("seed: hash password: %w", err)
	}

	u, err := q.CreateUser(ctx, CreateUserParams{
		Username:     seedAdminUsername,
		Email:        seedAdminEmail,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("seed: create admin: %w", err)
	}

	slog.Warn("seeded default admin account, change its password",
		"username", u.Username, "email", u.Email)
	return nil
}
