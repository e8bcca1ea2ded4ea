// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Event levels.
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// Event is a persisted application log record.
type Event struct {
	ID        int64         `json:"id"`
	Level     string        `json:"level"`
	Message   string        `json:"message"`
	Source    string        `json:"source"`
	UserID    sql.NullInt64 `json:"-"`
	Path      string        `json:"path,omitempty"`
	Metadata  string        `json:"metadata,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}
