// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import "github.com/kietsocola/blogwebsite/internal/model"

// canModifyPost reports whether the user may edit or delete the post.
// Admins may modify any post, authors only their own.
func canModifyPost(user *model.User, post model.Post) bool {
	return user.IsAdmin() || post.AuthorID == user.ID
}
