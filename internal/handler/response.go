// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler provides REST API handlers for the blog.
package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/kietsocola/blogwebsite/internal/apperr"
)

// ErrorResponse is the standard API error envelope.
type ErrorResponse struct {
	Timestamp        time.Time         `json:"timestamp"`
	Status           int               `json:"status"`
	Error            string            `json:"error"`
	Message          string            `json:"message"`
	Path             string            `json:"path"`
	ValidationErrors map[string]string `json:"validationErrors,omitempty"`
}

// PageResponse is the standard envelope for paginated collections.
type PageResponse struct {
	Content       any   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Last          bool  `json:"last"`
}

// NewPageResponse builds the pagination envelope for a zero-based page.
func NewPageResponse(content any, page, size int, total int64) PageResponse {
	totalPages := int(total) / size
	if int(total)%size != 0 {
		totalPages++
	}
	return PageResponse{
		Content:       content,
		Page:          page,
		Size:          size,
		TotalElements: total,
		TotalPages:    totalPages,
		Last:          page >= totalPages-1,
	}
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

func writeErrorEnvelope(w http.ResponseWriter, r *http.Request, statusCode int, message string, fields map[string]string) {
	WriteJSON(w, statusCode, ErrorResponse{
		Timestamp:        time.Now().UTC(),
		Status:           statusCode,
		Error:            http.StatusText(statusCode),
		Message:          message,
		Path:             r.URL.Path,
		ValidationErrors: fields,
	})
}

// WriteError maps an application error to the API error envelope.
// Unknown errors are logged and answered with a generic message.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *apperr.ValidationError
	if errors.As(err, &vErr) {
		writeErrorEnvelope(w, r, http.StatusBadRequest, "Invalid input data", vErr.Fields)
		return
	}

	var aErr *apperr.Error
	if errors.As(err, &aErr) {
		status := http.StatusInternalServerError
		switch aErr.Kind {
		case apperr.KindNotFound:
			status = http.StatusNotFound
		case apperr.KindBadRequest:
			status = http.StatusBadRequest
		case apperr.KindDuplicate:
			status = http.StatusConflict
		case apperr.KindForbidden:
			status = http.StatusForbidden
		case apperr.KindUnauthorized:
			status = http.StatusUnauthorized
		}
		if status != http.StatusInternalServerError {
			writeErrorEnvelope(w, r, status, aErr.Message, nil)
			return
		}
	}

	if errors.Is(err, sql.ErrNoRows) {
		writeErrorEnvelope(w, r, http.StatusNotFound, "Resource not found", nil)
		return
	}

	slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	writeErrorEnvelope(w, r, http.StatusInternalServerError, "An unexpected error occurred", nil)
}
