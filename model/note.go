package model

import (
	"time"
)

type Note struct {
	ID        string    `bson:"_id" json:"id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	Title     string    `bson:"title" json:"title"`
	Content   string    `bson:"content" json:"content"`
	ImageURL  *string   `bson:"image_url,omitempty" json:"image_url"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// NotePatch holds a partial note update. Nil fields are left untouched.
type NotePatch struct {
	Title    *string
	Content  *string
	ImageURL *string
}

func (p NotePatch) IsEmpty() bool {
	return p.Title == nil && p.Content == nil && p.ImageURL == nil
}
