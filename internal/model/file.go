package model

import (
	"time"
)

const (
	FileTypeCover = "cover"

	FileOwnerStory = "story"
)

type File struct {
	ID           string    `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"user_id"`       // Who uploaded this file
	OwnerType    string    `db:"owner_type" json:"owner_type"` // "story"
	OwnerID      string    `db:"owner_id" json:"owner_id"`     // Polymorphic FK
	Type         string    `db:"type" json:"type"`
	Filename     string    `db:"filename" json:"filename"`
	OriginalName string    `db:"original_name" json:"original_name"`
	MimeType     string    `db:"mime_type" json:"mime_type"`
	Size         int64     `db:"size" json:"size"`
	StoragePath  string    `db:"storage_path" json:"-"`
	Public       bool      `db:"public" json:"public"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`

	URL string `db:"-" json:"url,omitempty"`
}
