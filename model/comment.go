package model

import "time"

const MaxCommentLength = 500

type Comment struct {
	ID        string    `bson:"_id" json:"id"`
	NoteID    string    `bson:"note_id" json:"note_id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	Content   string    `bson:"content" json:"content"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
