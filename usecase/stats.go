package usecase

import (
	"context"
	"errors"

	"noteshare/model"
	"noteshare/repository"
)

// GetStats summarizes the caller's notes, the attention they received and
// recent session activity.
func (s *UserService) GetStats(ctx context.Context, userID string) (*model.UserStats, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	var stats model.UserStats

	notes, err := s.Notes.GetUserNotes(ctx, userID)
	if err != nil {
		return nil, err
	}
	noteIDs := make([]string, 0, len(notes))
	for _, n := range notes {
		noteIDs = append(noteIDs, n.ID)
		if n.ImageURL != nil {
			stats.NotesStats.WithImages++
		}
	}
	stats.NotesStats.Total = len(notes)

	if len(noteIDs) > 0 {
		favorites, err := s.Favorites.CountFavoritesFor(ctx, noteIDs)
		if err != nil {
			return nil, err
		}
		comments, err := s.Comments.CountCommentsFor(ctx, noteIDs)
		if err != nil {
			return nil, err
		}
		for _, id := range noteIDs {
			stats.NotesStats.FavoritesReceived += favorites[id]
			stats.NotesStats.CommentsReceived += comments[id]
		}
	}

	fav, err := s.Favorites.GetFavorites(ctx, userID)
	switch {
	case err == nil:
		stats.FavoriteStats.Favorited = len(fav.Notes)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	sessions, err := s.Sessions.GetUserActiveSessions(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats.ActivityStats.AccountCreated = user.CreatedAt
	stats.ActivityStats.TotalSessions = len(sessions)
	for _, session := range sessions {
		if session.LastActivityAt.After(stats.ActivityStats.LastActive) {
			stats.ActivityStats.LastActive = session.LastActivityAt
		}
	}

	return &stats, nil
}
