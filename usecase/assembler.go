package usecase

import (
	"context"
	"fmt"

	"noteshare/dto"
	"noteshare/model"
)

// ResponseAssembler joins owner names and favorite/comment counts onto notes
// using one bulk query per concern.
type ResponseAssembler struct {
	Users     UserStore
	Favorites FavoriteStore
	Comments  CommentStore
}

func (a *ResponseAssembler) usernames(ctx context.Context, ids []string) (map[string]string, error) {
	users, err := a.Users.FindUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load owners: %w", err)
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Username
	}
	return names, nil
}

func (a *ResponseAssembler) Notes(ctx context.Context, notes []*model.Note) ([]dto.NoteResponse, error) {
	out := make([]dto.NoteResponse, 0, len(notes))
	if len(notes) == 0 {
		return out, nil
	}

	noteIDs := make([]string, 0, len(notes))
	ownerIDs := make([]string, 0, len(notes))
	seenOwner := make(map[string]bool)
	for _, n := range notes {
		noteIDs = append(noteIDs, n.ID)
		if !seenOwner[n.UserID] {
			seenOwner[n.UserID] = true
			ownerIDs = append(ownerIDs, n.UserID)
		}
	}

	favorites, err := a.Favorites.CountFavoritesFor(ctx, noteIDs)
	if err != nil {
		return nil, err
	}
	comments, err := a.Comments.CountCommentsFor(ctx, noteIDs)
	if err != nil {
		return nil, err
	}
	names, err := a.usernames(ctx, ownerIDs)
	if err != nil {
		return nil, err
	}

	for _, n := range notes {
		out = append(out, dto.ToNoteResponse(n, names[n.UserID], favorites[n.ID], comments[n.ID]))
	}
	return out, nil
}

func (a *ResponseAssembler) CommentResponses(ctx context.Context, comments []*model.Comment) ([]dto.CommentResponse, error) {
	out := make([]dto.CommentResponse, 0, len(comments))
	if len(comments) == 0 {
		return out, nil
	}

	authorIDs := make([]string, 0, len(comments))
	seen := make(map[string]bool)
	for _, c := range comments {
		if !seen[c.UserID] {
			seen[c.UserID] = true
			authorIDs = append(authorIDs, c.UserID)
		}
	}
	names, err := a.usernames(ctx, authorIDs)
	if err != nil {
		return nil, err
	}

	for _, c := range comments {
		out = append(out, dto.ToCommentResponse(c, names[c.UserID]))
	}
	return out, nil
}
