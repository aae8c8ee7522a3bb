package model

import "time"

type UserStats struct {
	NotesStats struct {
		Total             int `json:"total"`
		WithImages        int `json:"with_images"`
		FavoritesReceived int `json:"favorites_received"`
		CommentsReceived  int `json:"comments_received"`
	} `json:"notes_stats"`
	FavoriteStats struct {
		Favorited int `json:"favorited"`
	} `json:"favorite_stats"`
	ActivityStats struct {
		LastActive     time.Time `json:"last_active"`
		AccountCreated time.Time `json:"account_created"`
		TotalSessions  int       `json:"total_sessions"`
	} `json:"activity_stats"`
}
