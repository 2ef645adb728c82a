package post

import (
	"net/http"

	"social-service/internal/shared/apperr"
)

var (
	ErrEmptyText   = apperr.Validation("empty_text", "Please add some text")
	ErrNotFound    = apperr.NotFound("post_not_found", "Post not found")
	ErrNotAuthor   = apperr.Authorization("not_author", "User not authorized").WithStatus(http.StatusUnauthorized)
	ErrBadPageArgs = apperr.Validation("invalid_page", "page and limit must be positive integers, limit at most 100")
)
