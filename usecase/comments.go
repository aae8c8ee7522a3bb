package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"noteshare/dto"
	"noteshare/model"
	"noteshare/repository"
	"noteshare/utils"

	"github.com/google/uuid"
)

type CommentsService struct {
	Notes     NoteStore
	Users     UserStore
	Comments  CommentStore
	Assembler *ResponseAssembler
}

func (s *CommentsService) requireNote(ctx context.Context, noteID string) error {
	if _, err := s.Notes.GetNoteByID(ctx, noteID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFoundError(msgNoteNotFound)
		}
		return err
	}
	return nil
}

func (s *CommentsService) AddComment(ctx context.Context, noteID, userID, content string) (*dto.CommentResponse, error) {
	if err := s.requireNote(ctx, noteID); err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, validationError("Comment content is required")
	}
	if utf8.RuneCountInString(content) > model.MaxCommentLength {
		return nil, validationError(fmt.Sprintf("Comment must be at most %d characters", model.MaxCommentLength))
	}

	author, err := s.Users.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundError("User not found")
		}
		return nil, err
	}

	comment := &model.Comment{
		ID:        uuid.NewString(),
		NoteID:    noteID,
		UserID:    userID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Comments.AddComment(ctx, comment); err != nil {
		return nil, err
	}

	utils.TrackCommentOperation("create")
	resp := dto.ToCommentResponse(comment, author.Username)
	return &resp, nil
}

// GetComments lists a note's comments, newest first.
func (s *CommentsService) GetComments(ctx context.Context, noteID string) ([]dto.CommentResponse, error) {
	if err := s.requireNote(ctx, noteID); err != nil {
		return nil, err
	}
	comments, err := s.Comments.GetNoteComments(ctx, noteID)
	if err != nil {
		return nil, err
	}
	return s.Assembler.CommentResponses(ctx, comments)
}

// DeleteComment lets only the author remove a comment.
func (s *CommentsService) DeleteComment(ctx context.Context, commentID, callerID string) error {
	comment, err := s.Comments.GetComment(ctx, commentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFoundError("Comment not found")
		}
		return err
	}
	if comment.UserID != callerID {
		return permissionError("You can only delete your own comments")
	}

	if err := s.Comments.DeleteComment(ctx, commentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFoundError("Comment not found")
		}
		return err
	}
	utils.TrackCommentOperation("delete")
	return nil
}

func (s *CommentsService) CountCommentsFor(ctx context.Context, noteIDs []string) (map[string]int, error) {
	return s.Comments.CountCommentsFor(ctx, noteIDs)
}
