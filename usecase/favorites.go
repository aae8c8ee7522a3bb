package usecase

import (
	"context"
	"errors"

	"noteshare/dto"
	"noteshare/model"
	"noteshare/repository"
	"noteshare/utils"
)

type FavoritesService struct {
	Notes     NoteStore
	Favorites FavoriteStore
	Assembler *ResponseAssembler
}

// ToggleFavorite flips membership of noteID in the user's favorite set and
// reports whether the note is now a favorite.
func (s *FavoritesService) ToggleFavorite(ctx context.Context, userID, noteID string) (bool, error) {
	if _, err := s.Notes.GetNoteByID(ctx, noteID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, notFoundError(msgNoteNotFound)
		}
		return false, err
	}

	present := false
	fav, err := s.Favorites.GetFavorites(ctx, userID)
	switch {
	case err == nil:
		for _, id := range fav.Notes {
			if id == noteID {
				present = true
				break
			}
		}
	case !errors.Is(err, repository.ErrNotFound):
		return false, err
	}

	if present {
		err = s.Favorites.RemoveFavorite(ctx, userID, noteID)
	} else {
		err = s.Favorites.AddFavorite(ctx, userID, noteID)
	}
	if err != nil {
		return false, err
	}

	utils.TrackFavoriteToggle(!present)
	return !present, nil
}

// GetFavorites returns the caller's favorites in the order they were added.
// References to notes that no longer exist are skipped.
func (s *FavoritesService) GetFavorites(ctx context.Context, userID string) ([]dto.NoteResponse, error) {
	fav, err := s.Favorites.GetFavorites(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return []dto.NoteResponse{}, nil
		}
		return nil, err
	}

	found, err := s.Notes.GetNotesByIDs(ctx, fav.Notes)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*model.Note, len(found))
	for _, n := range found {
		byID[n.ID] = n
	}

	ordered := make([]*model.Note, 0, len(fav.Notes))
	for _, id := range fav.Notes {
		if n, ok := byID[id]; ok {
			ordered = append(ordered, n)
		}
	}
	return s.Assembler.Notes(ctx, ordered)
}

func (s *FavoritesService) CountFavoritesFor(ctx context.Context, noteIDs []string) (map[string]int, error) {
	return s.Favorites.CountFavoritesFor(ctx, noteIDs)
}
