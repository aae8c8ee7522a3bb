package usecase

import (
	"context"
	"time"

	"noteshare/model"
)

// Stores report missing documents with repository.ErrNotFound and unique
// index violations with repository.ErrDuplicate.

type UserStore interface {
	AddUser(ctx context.Context, user *model.User) error
	FindUserByID(ctx context.Context, userID string) (*model.User, error)
	FindUserByUsername(ctx context.Context, username string) (*model.User, error)
	FindUserByEmail(ctx context.Context, email string) (*model.User, error)
	FindUsersByIDs(ctx context.Context, ids []string) ([]*model.User, error)
	UpdateUser(ctx context.Context, userID string, patch model.UserPatch) (*model.User, error)
	SetTwoFactor(ctx context.Context, userID, secret string, enabled bool, recoveryCodes []string) error
	ConsumeRecoveryCode(ctx context.Context, userID, hashedCode string) (bool, error)
	DeleteUserByID(ctx context.Context, userID string) error
}

type NoteStore interface {
	CreateNote(ctx context.Context, note *model.Note) error
	GetNoteByID(ctx context.Context, noteID string) (*model.Note, error)
	GetNote(ctx context.Context, noteID, userID string) (*model.Note, error)
	GetUserNotes(ctx context.Context, userID string) ([]*model.Note, error)
	GetAllNotes(ctx context.Context) ([]*model.Note, error)
	GetNotesByIDs(ctx context.Context, ids []string) ([]*model.Note, error)
	SearchNotes(ctx context.Context, userID, query string) ([]*model.Note, error)
	UpdateNote(ctx context.Context, noteID, userID string, patch model.NotePatch) (*model.Note, error)
	DeleteNote(ctx context.Context, noteID, userID string) error
	GetUserNoteIDs(ctx context.Context, userID string) ([]string, error)
	DeleteUserNotes(ctx context.Context, userID string) (int64, error)
}

type FavoriteStore interface {
	GetFavorites(ctx context.Context, userID string) (*model.Favorite, error)
	AddFavorite(ctx context.Context, userID, noteID string) error
	RemoveFavorite(ctx context.Context, userID, noteID string) error
	CountFavoritesFor(ctx context.Context, noteIDs []string) (map[string]int, error)
	RemoveNotesFromFavorites(ctx context.Context, noteIDs []string) error
	DeleteUserFavorites(ctx context.Context, userID string) error
}

type CommentStore interface {
	AddComment(ctx context.Context, comment *model.Comment) error
	GetComment(ctx context.Context, commentID string) (*model.Comment, error)
	GetNoteComments(ctx context.Context, noteID string) ([]*model.Comment, error)
	DeleteComment(ctx context.Context, commentID string) error
	DeleteNoteComments(ctx context.Context, noteIDs []string) (int64, error)
	DeleteUserComments(ctx context.Context, userID string) (int64, error)
	CountCommentsFor(ctx context.Context, noteIDs []string) (map[string]int, error)
}

type SessionStore interface {
	CreateSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, sessionID string) (*model.Session, error)
	GetUserActiveSessions(ctx context.Context, userID string) ([]*model.Session, error)
	EndSession(ctx context.Context, sessionID string) error
	TouchSession(ctx context.Context, sessionID string, at time.Time) error
	DeleteUserSessions(ctx context.Context, userID string) (int64, error)
}

// TxRunner runs fn as one unit of work where the store supports it.
type TxRunner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

func runTx(ctx context.Context, tx TxRunner, fn func(ctx context.Context) error) error {
	if tx == nil {
		return fn(ctx)
	}
	return tx.RunInTransaction(ctx, fn)
}
