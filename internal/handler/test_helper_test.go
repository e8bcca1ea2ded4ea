// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kietsocola/blogwebsite/internal/config"
	"github.com/kietsocola/blogwebsite/internal/store"
)

// testSetup creates a migrated test database and the full router.
func testSetup(t *testing.T) (*sql.DB, chi.Router) {
	t.Helper()

	db, err := store.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := store.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	cfg := &config.Config{
		Env:      "test",
		TokenTTL: time.Hour,
	}
	return db, NewRouter(db, cfg)
}

// doRequest executes a request against the router. Each caller gets its
// own client IP so the per-IP rate limiter never interferes.
func doRequest(t *testing.T, router chi.Router, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("X-Real-IP", strings.ReplaceAll(t.Name(), "/", "-"))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// registerUser registers a user through the API and returns the token.
func registerUser(t *testing.T, router chi.Router, username string) string {
	t.Helper()

	body := `{"username":"` + username + `","email":"` + username + `@example.com","password":"secret123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Real-IP", username)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d: %s", username, w.Code, w.Body.String())
	}

	var resp AuthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal auth response: %v", err)
	}
	return resp.Token
}

// registerAdmin registers a user and promotes it to admin. The token
// stays valid because the role is read on every request.
func registerAdmin(t *testing.T, router chi.Router, db *sql.DB, username string) string {
	t.Helper()

	token := registerUser(t, router, username)
	if _, err := db.Exec("UPDATE users SET role = 'admin' WHERE username = ?", username); err != nil {
		t.Fatalf("promote %s: %v", username, err)
	}
	return token
}

// createCategory inserts a category directly into the database.
func createCategory(t *testing.T, db *sql.DB, name, slug string) int64 {
	t.Helper()

	res, err := db.Exec(
		"INSERT INTO categories (name, slug, created_at) VALUES (?, ?, ?)",
		name, slug, time.Now().UTC())
	if err != nil {
		t.Fatalf("create category %s: %v", name, err)
	}
	id, _ := res.LastInsertId()
	return id
}

// unmarshalBody unmarshals a JSON response body into the given type.
func unmarshalBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("unmarshal response %q: %v", w.Body.String(), err)
	}
	return v
}

// longContent is valid post content above the minimum length.
const longContent = "This is a perfectly reasonable amount of post content that easily clears the fifty character minimum."
