// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides general-purpose utility functions including
// URL slug generation and validation with Unicode normalization support.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// whitespaceRuns matches runs of whitespace characters
	whitespaceRuns = regexp.MustCompile(`\s+`)
	// slugRegex matches characters outside the slug alphabet
	slugRegex = regexp.MustCompile(`[^a-z0-9_-]+`)
	// multipleDashes matches multiple consecutive dashes
	multipleDashes = regexp.MustCompile(`-{2,}`)
)

// Slugify converts a string to a URL-friendly slug.
// Whitespace runs become a single dash, accents are decomposed and
// stripped, anything outside [a-z0-9_-] is removed after ASCII
// lowercasing, consecutive dashes collapse, and leading/trailing
// dashes are trimmed. Empty input yields an empty slug.
func Slugify(s string) string {
	// Replace whitespace runs with a single dash before stripping,
	// so "Multiple   Spaces" becomes one separator, not three.
	result := whitespaceRuns.ReplaceAllString(s, "-")

	// Normalize unicode characters (decompose accents)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ = transform.String(t, result)

	// Lowercase (locale-invariant)
	result = strings.ToLower(result)

	// Remove everything outside the slug alphabet
	result = slugRegex.ReplaceAllString(result, "")

	// Replace multiple dashes with a single dash
	result = multipleDashes.ReplaceAllString(result, "-")

	// Trim dashes from start and end
	result = strings.Trim(result, "-")

	return result
}

// IsValidSlug checks if a string is a valid slug format.
func IsValidSlug(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_') {
			return false
		}
	}

	if s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}

	return !strings.Contains(s, "--")
}
