// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kietsocola/blogwebsite/internal/model"
)

// setupTestDB creates a test database with the users and auth_tokens tables.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	// Single connection so the in-memory database is shared
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'author',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE auth_tokens (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			token_hash TEXT NOT NULL UNIQUE,
			expires_at DATETIME NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		t.Fatalf("failed to create tables: %v", err)
	}

	return db
}

// simpleOKHandler returns 200 OK.
var simpleOKHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

// insertTestToken inserts a user with a token and returns the raw token.
func insertTestToken(t *testing.T, db *sql.DB, role string, expiresAt time.Time) string {
	t.Helper()

	res, err := db.Exec(
		"INSERT INTO users (username, email, password_hash, role) VALUES (?, ?, 'x', ?)",
		"user-"+role, "user-"+role+"@example.com", role)
	if err != nil {
		t.Fatalf("failed to insert user: %v", err)
	}
	userID, _ := res.LastInsertId()

	raw, err := model.GenerateToken()
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	_, err = db.Exec(
		"INSERT INTO auth_tokens (user_id, token_hash, expires_at) VALUES (?, ?, ?)",
		userID, model.HashToken(raw), expiresAt)
	if err != nil {
		t.Fatalf("failed to insert token: %v", err)
	}

	return raw
}

// executeAuthRequest executes a request with an auth header against the handler.
func executeAuthRequest(handler http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/test", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestTokenAuthMissingHeader(t *testing.T) {
	db := setupTestDB(t)
	handler := TokenAuth(db)(simpleOKHandler)

	w := executeAuthRequest(handler, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestTokenAuthMalformedHeader(t *testing.T) {
	db := setupTestDB(t)
	handler := TokenAuth(db)(simpleOKHandler)

	for _, header := range []string{"Basic abc", "Bearer", "token-without-scheme"} {
		w := executeAuthRequest(handler, header)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("header %q: expected 401, got %d", header, w.Code)
		}
	}
}

func TestTokenAuthInvalidToken(t *testing.T) {
	db := setupTestDB(t)
	handler := TokenAuth(db)(simpleOKHandler)

	w := executeAuthRequest(handler, "Bearer this-is-not-a-real-token")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestTokenAuthExpiredToken(t *testing.T) {
	db := setupTestDB(t)
	raw := insertTestToken(t, db, model.RoleAuthor, time.Now().Add(-time.Hour))
	handler := TokenAuth(db)(simpleOKHandler)

	w := executeAuthRequest(handler, "Bearer "+raw)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestTokenAuthValidToken(t *testing.T) {
	db := setupTestDB(t)
	raw := insertTestToken(t, db, model.RoleAuthor, time.Now().Add(time.Hour))

	var captured *model.User
	handler := TokenAuth(db)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetUser(r)
		w.WriteHeader(http.StatusOK)
	}))

	w := executeAuthRequest(handler, "Bearer "+raw)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if captured == nil {
		t.Fatal("expected user in context")
	}
	if captured.Role != model.RoleAuthor {
		t.Errorf("expected author role, got %s", captured.Role)
	}
}

func TestRequireAdmin(t *testing.T) {
	db := setupTestDB(t)

	authorToken := insertTestToken(t, db, model.RoleAuthor, time.Now().Add(time.Hour))
	adminToken := insertTestToken(t, db, model.RoleAdmin, time.Now().Add(time.Hour))

	handler := TokenAuth(db)(RequireAdmin(simpleOKHandler))

	w := executeAuthRequest(handler, "Bearer "+authorToken)
	if w.Code != http.StatusForbidden {
		t.Errorf("author: expected 403, got %d", w.Code)
	}

	w = executeAuthRequest(handler, "Bearer "+adminToken)
	if w.Code != http.StatusOK {
		t.Errorf("admin: expected 200, got %d", w.Code)
	}
}

func TestRequireAdminWithoutAuth(t *testing.T) {
	w := executeAuthRequest(RequireAdmin(simpleOKHandler), "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	handler := rl.Middleware()(simpleOKHandler)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Errorf("expected first two requests to pass, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("expected third request limited, got %v", codes)
	}

	// Different IP gets its own bucket
	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("expected fresh IP to pass, got %d", w.Code)
	}
}
