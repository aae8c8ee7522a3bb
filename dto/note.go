package dto

import (
	"noteshare/model"
	"time"
)

const (
	NoteTimeLayout    = "2006-01-02 15:04:05"
	CommentTimeLayout = "2006-01-02 15:04"
)

type NoteResponse struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Content       string  `json:"content"`
	ImageURL      *string `json:"image_url"`
	CreatedAt     string  `json:"created_at"`
	Username      string  `json:"username"`
	FavoriteCount int     `json:"favorite_count"`
	CommentCount  int     `json:"comment_count"`
}

// ToNoteResponse merges a note with its owner name and derived counters.
func ToNoteResponse(note *model.Note, username string, favorites, comments int) NoteResponse {
	return NoteResponse{
		ID:            note.ID,
		Title:         note.Title,
		Content:       note.Content,
		ImageURL:      note.ImageURL,
		CreatedAt:     formatTime(note.CreatedAt, NoteTimeLayout),
		Username:      username,
		FavoriteCount: favorites,
		CommentCount:  comments,
	}
}

type CommentResponse struct {
	ID        string `json:"id"`
	NoteID    string `json:"note_id"`
	Content   string `json:"content"`
	Username  string `json:"username"`
	CreatedAt string `json:"created_at"`
}

func ToCommentResponse(comment *model.Comment, username string) CommentResponse {
	return CommentResponse{
		ID:        comment.ID,
		NoteID:    comment.NoteID,
		Content:   comment.Content,
		Username:  username,
		CreatedAt: formatTime(comment.CreatedAt, CommentTimeLayout),
	}
}

func formatTime(t time.Time, layout string) string {
	return t.UTC().Format(layout)
}
