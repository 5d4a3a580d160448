package model

import (
	"time"
)

// CatalogStory is a browsable story card: either a bundled sample story or
// one of the user's published stories.
type CatalogStory struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Excerpt     string `json:"excerpt"`
	Author      string `json:"author"`
	Genre       string `json:"genre"`
	Likes       int    `json:"likes"`
	Views       int    `json:"views"`
	ReadingTime int    `json:"readingTime"`
	IsLiked     bool   `json:"isLiked"`

	PublishedAt *time.Time `json:"publishedAt,omitempty"`

	// Only set on detail views.
	HTMLContent string `json:"htmlContent,omitempty"`
}
