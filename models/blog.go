package models

import (
	"strings"
	"time"
)

type Blog struct {
	ID           string        `json:"_id"`
	Title        string        `json:"title"`
	BlogCategory string        `json:"blogCategory"`
	Desc         string        `json:"desc"`
	Images       []string      `json:"images"`
	ExtraData    BlogExtraData `json:"extraData"`
	CreatedAt    *time.Time    `json:"createdAt,omitempty"`
	UpdatedAt    *time.Time    `json:"updatedAt,omitempty"`
}

type BlogExtraData struct {
	Author string `json:"author"`
	Views  int    `json:"views"`
}

// NewBlog is the admin input for creating or updating a post.
// Uploaded files travel separately as multipart parts.
type NewBlog struct {
	Title          string        `form:"title" json:"title" validate:"required"`
	BlogCategory   string        `form:"blogCategory" json:"blogCategory" validate:"required"`
	Desc           string        `form:"desc" json:"desc" validate:"required"`
	ExtraData      BlogExtraData `json:"extraData"`
	ExistingImages []string      `form:"existingImages" json:"existingImages"`
}

// Matches reports whether the post matches a free-text search over title and author.
func (b *Blog) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(b.Title), q) ||
		strings.Contains(strings.ToLower(b.ExtraData.Author), q)
}
