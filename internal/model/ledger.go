package model

import (
	"time"
)

// Key-value store keys, one JSON array per user each.
const (
	KeyLikedStories       = "likedStories"
	KeyUserStories        = "userStories"
	KeyStoryDrafts        = "storyDrafts"
	KeyMultimediaProjects = "multimediaProjects"
)

// Genres offered by the publish form.
var Genres = []string{"Sci-Fi", "Mystery", "Romance", "Fantasy", "Thriller", "Dystopian", "Steampunk", "Drama", "Comedy", "Horror"}

// StoryFields is the publish form shared by drafts and published stories.
// Drafts are saved as-is; the tags apply when publishing.
type StoryFields struct {
	Title   string `json:"title" validate:"required,max=200"`
	Excerpt string `json:"excerpt" validate:"max=500"`
	Content string `json:"content" validate:"required"`
	Genre   string `json:"genre" validate:"required,oneof=Sci-Fi Mystery Romance Fantasy Thriller Dystopian Steampunk Drama Comedy Horror"`
	Tags    string `json:"tags" validate:"max=200"`
	Author  string `json:"author" validate:"required,max=100"`
}

// Draft is a saved snapshot of the publish form. Every save appends a new draft.
type Draft struct {
	StoryFields
	ID      string    `json:"id"`
	SavedAt time.Time `json:"savedAt"`
}

type PublishedStory struct {
	StoryFields
	ID          string    `json:"id"`
	Likes       int       `json:"likes"`
	Views       int       `json:"views"`
	ReadingTime int       `json:"readingTime"`
	PublishedAt time.Time `json:"publishedAt"`
}
