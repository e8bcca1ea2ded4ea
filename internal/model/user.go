// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain models and types used throughout the application
// including User, Post, Category, Tag, and authentication tokens.
package model

import "time"

// User roles
const (
	RoleAuthor = "author"
	RoleAdmin  = "admin"
)

// User represents a registered user of the blog.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsAdmin returns true if the user has admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsValidRole reports whether role is a known user role.
func IsValidRole(role string) bool {
	return role == RoleAuthor || role == RoleAdmin
}
