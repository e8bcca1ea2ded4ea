// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package apperr defines the domain error taxonomy. Errors are raised
// at the point of detection and propagate unmodified to the HTTP
// boundary, which maps each kind to a status code and a structured
// JSON body.
package apperr

import "fmt"

// Kind classifies a domain error.
type Kind int

// Error kinds, in rough order of specificity.
const (
	KindUnknown Kind = iota
	KindNotFound
	KindBadRequest
	KindDuplicate
	KindForbidden
	KindUnauthorized
)

// Error is a domain error carrying a kind and a client-safe message.
type Error struct {
	Kind    Kind
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// NotFound returns a resource-not-found error.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// BadRequest returns a bad-request error.
func BadRequest(format string, args ...any) *Error {
	return &Error{Kind: KindBadRequest, Message: fmt.Sprintf(format, args...)}
}

// Duplicate returns a duplicate-resource error.
func Duplicate(format string, args ...any) *Error {
	return &Error{Kind: KindDuplicate, Message: fmt.Sprintf(format, args...)}
}

// Forbidden returns a forbidden error.
func Forbidden(format string, args ...any) *Error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

// Unauthorized returns an unauthorized error.
func Unauthorized(format string, args ...any) *Error {
	return &Error{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

// ValidationError carries per-field validation failures. It maps to a
// 400 response with a validationErrors object.
type ValidationError struct {
	Fields map[string]string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return "validation failed"
}

// Validation returns a validation error for the given field failures.
func Validation(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}
