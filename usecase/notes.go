package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"noteshare/dto"
	"noteshare/model"
	"noteshare/repository"
	"noteshare/utils"

	"github.com/google/uuid"
)

type NotesService struct {
	Notes     NoteStore
	Favorites FavoriteStore
	Comments  CommentStore
	Tx        TxRunner
	Assembler *ResponseAssembler
	Images    *ImageUploader
}

type NoteInput struct {
	Title    string
	Content  *string
	ImageURL *string
}

const msgNoteNotFound = "Note not found"

func (s *NotesService) CreateNote(ctx context.Context, ownerID string, in NoteInput) (*model.Note, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, validationError("Title is required")
	}

	now := time.Now().UTC()
	note := &model.Note{
		ID:        uuid.NewString(),
		UserID:    ownerID,
		Title:     title,
		ImageURL:  optional(in.ImageURL),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.Content != nil {
		note.Content = *in.Content
	}

	if err := s.Notes.CreateNote(ctx, note); err != nil {
		return nil, err
	}
	utils.TrackNoteOperation("create")
	return note, nil
}

func (s *NotesService) GetUserNotes(ctx context.Context, ownerID string) ([]dto.NoteResponse, error) {
	notes, err := s.Notes.GetUserNotes(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return s.Assembler.Notes(ctx, notes)
}

// GetAllNotes lists every user's notes; any authenticated caller may read them.
func (s *NotesService) GetAllNotes(ctx context.Context) ([]dto.NoteResponse, error) {
	notes, err := s.Notes.GetAllNotes(ctx)
	if err != nil {
		return nil, err
	}
	return s.Assembler.Notes(ctx, notes)
}

// UpdateNote changes only the fields present in patch. Notes owned by someone
// else are reported as not found.
func (s *NotesService) UpdateNote(ctx context.Context, noteID, ownerID string, patch model.NotePatch) (*model.Note, error) {
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, validationError("Title cannot be empty")
		}
		patch.Title = &title
	}
	if patch.ImageURL != nil {
		url := strings.TrimSpace(*patch.ImageURL)
		patch.ImageURL = &url
	}

	var (
		note *model.Note
		err  error
	)
	if patch.IsEmpty() {
		note, err = s.Notes.GetNote(ctx, noteID, ownerID)
	} else {
		note, err = s.Notes.UpdateNote(ctx, noteID, ownerID, patch)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundError(msgNoteNotFound)
		}
		return nil, err
	}
	utils.TrackNoteOperation("update")
	return note, nil
}

// DeleteNote removes the note, its comments and every favorite reference to it.
func (s *NotesService) DeleteNote(ctx context.Context, noteID, ownerID string) error {
	if _, err := s.Notes.GetNote(ctx, noteID, ownerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFoundError(msgNoteNotFound)
		}
		return err
	}

	err := runTx(ctx, s.Tx, func(ctx context.Context) error {
		if err := s.Notes.DeleteNote(ctx, noteID, ownerID); err != nil {
			return err
		}
		if _, err := s.Comments.DeleteNoteComments(ctx, []string{noteID}); err != nil {
			return err
		}
		return s.Favorites.RemoveNotesFromFavorites(ctx, []string{noteID})
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFoundError(msgNoteNotFound)
		}
		return err
	}
	utils.TrackNoteOperation("delete")
	return nil
}

// SearchNotes matches query case-insensitively against title or content.
// An empty ownerID searches all notes.
func (s *NotesService) SearchNotes(ctx context.Context, ownerID, query string) ([]dto.NoteResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, validationError("Search query is required")
	}

	notes, err := s.Notes.SearchNotes(ctx, ownerID, query)
	if err != nil {
		return nil, err
	}
	utils.TrackNoteOperation("search")
	return s.Assembler.Notes(ctx, notes)
}

// UploadImage stores a note image and returns the URL to send as image_url.
func (s *NotesService) UploadImage(ctx context.Context, ownerID string, up Upload) (string, error) {
	return s.Images.Store(ctx, ownerID, up, "note")
}
