// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

// htmlSanitizer is a reusable sanitization policy for rendered post
// content. UGCPolicy allows safe HTML tags for user-generated content
// while stripping scripts and dangerous attributes.
var htmlSanitizer = bluemonday.UGCPolicy()

// renderMarkdown converts Markdown post content to sanitized HTML.
// Returns an empty string when conversion fails; the raw content is
// still available to the client.
func renderMarkdown(content string) string {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(content), &buf); err != nil {
		return ""
	}
	return htmlSanitizer.Sanitize(buf.String())
}
