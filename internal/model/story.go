package model

import (
	"time"
)

// Story is a persisted narrative record owned by the user that created it.
// There is no update path: a story row is immutable once inserted.
type Story struct {
	ID         string    `db:"id" json:"id"`
	Title      string    `db:"title" json:"title"`
	Content    string    `db:"content" json:"content"`
	AuthorName string    `db:"author_name" json:"author_name"`
	UserID     string    `db:"user_id" json:"user_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// OrphanedStory marks a story whose asset write failed after the story was inserted.
type OrphanedStory struct {
	StoryID   string    `db:"story_id"`
	Reason    string    `db:"reason"`
	CreatedAt time.Time `db:"created_at"`
}
