package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	UsersCollection     = "users"
	NotesCollection     = "notes"
	FavoritesCollection = "favorites"
	CommentsCollection  = "comments"
	SessionsCollection  = "sessions"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate key")
)

// DefaultTimeout applies when a repo is built without an operation timeout.
const DefaultTimeout = 10 * time.Second

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = DefaultTimeout
	}
	return context.WithTimeout(ctx, d)
}

// writeErr maps duplicate key failures onto ErrDuplicate and wraps everything else.
func writeErr(op string, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
