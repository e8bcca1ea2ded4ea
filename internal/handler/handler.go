// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"

	"github.com/kietsocola/blogwebsite/internal/config"
	"github.com/kietsocola/blogwebsite/internal/store"
)

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	db      *sql.DB
	queries *store.Queries
	cfg     *config.Config
}

// NewHandler creates a new API handler.
func NewHandler(db *sql.DB, cfg *config.Config) *Handler {
	return &Handler{
		db:      db,
		queries: store.New(db),
		cfg:     cfg,
	}
}
