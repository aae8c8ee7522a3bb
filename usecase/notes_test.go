package usecase_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"noteshare/model"
	"noteshare/services"
	"noteshare/test/testutils"
	"noteshare/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateNote(t *testing.T) {
	ctx := context.Background()
	app := newApp(t)
	alice := register(t, app, "alice")

	_, err := app.NotesService.CreateNote(ctx, alice.ID, usecase.NoteInput{Title: "   "})
	assert.ErrorIs(t, err, usecase.ErrValidation)

	note, err := app.NotesService.CreateNote(ctx, alice.ID, usecase.NoteInput{Title: " Groceries ", ImageURL: strPtr("")})
	require.NoError(t, err)
	assert.Equal(t, "Groceries", note.Title)
	assert.Equal(t, "", note.Content)
	assert.Nil(t, note.ImageURL)

	notes, err := app.NotesService.GetUserNotes(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, note.ID, notes[0].ID)
	assert.Equal(t, "alice", notes[0].Username)
	assert.Zero(t, notes[0].FavoriteCount)
	assert.Zero(t, notes[0].CommentCount)
}

func TestNotesListedNewestFirst(t *testing.T) {
	ctx := context.Background()
	app := newApp(t)
	alice := register(t, app, "alice")
	bob := register(t, app, "bob")

	first := createNote(t, app, alice.ID, "first", "")
	second := createNote(t, app, bob.ID, "second", "")
	third := createNote(t, app, alice.ID, "third", "")

	mine, err := app.NotesService.GetUserNotes(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, third.ID, mine[0].ID)
	assert.Equal(t, first.ID, mine[1].ID)

	all, err := app.NotesService.GetAllNotes(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{third.ID, second.ID, first.ID}, []string{all[0].ID, all[1].ID, all[2].ID})
	assert.Equal(t, "bob", all[1].Username)
}

func TestUpdateNote(t *testing.T) {
	ctx := context.Background()
	app := newApp(t)
	alice := register(t, app, "alice")
	bob := register(t, app, "bob")
	note := createNote(t, app, alice.ID, "title", "body")

	t.Run("partial update keeps other fields", func(t *testing.T) {
		updated, err := app.NotesService.UpdateNote(ctx, note.ID, alice.ID, model.NotePatch{Title: strPtr("renamed")})
		require.NoError(t, err)
		assert.Equal(t, "renamed", updated.Title)
		assert.Equal(t, "body", updated.Content)
	})

	t.Run("empty patch returns the note", func(t *testing.T) {
		same, err := app.NotesService.UpdateNote(ctx, note.ID, alice.ID, model.NotePatch{})
		require.NoError(t, err)
		assert.Equal(t, "renamed", same.Title)
	})

	t.Run("blank title", func(t *testing.T) {
		_, err := app.NotesService.UpdateNote(ctx, note.ID, alice.ID, model.NotePatch{Title: strPtr("")})
		assert.ErrorIs(t, err, usecase.ErrValidation)
	})

	t.Run("other users see not found", func(t *testing.T) {
		_, err := app.NotesService.UpdateNote(ctx, note.ID, bob.ID, model.NotePatch{Title: strPtr("mine now")})
		assert.ErrorIs(t, err, usecase.ErrNotFound)

		_, err = app.NotesService.UpdateNote(ctx, note.ID, bob.ID, model.NotePatch{})
		assert.ErrorIs(t, err, usecase.ErrNotFound)

		stored, err := app.Notes.GetNoteByID(ctx, note.ID)
		require.NoError(t, err)
		assert.Equal(t, "renamed", stored.Title)
	})

	t.Run("image can be set and cleared", func(t *testing.T) {
		updated, err := app.NotesService.UpdateNote(ctx, note.ID, alice.ID, model.NotePatch{ImageURL: strPtr("/static/uploads/x.png")})
		require.NoError(t, err)
		require.NotNil(t, updated.ImageURL)

		updated, err = app.NotesService.UpdateNote(ctx, note.ID, alice.ID, model.NotePatch{ImageURL: strPtr(" ")})
		require.NoError(t, err)
		assert.Nil(t, updated.ImageURL)
	})
}

func TestDeleteNote(t *testing.T) {
	ctx := context.Background()
	app := newApp(t)
	alice := register(t, app, "alice")
	bob := register(t, app, "bob")
	note := createNote(t, app, alice.ID, "doomed", "")
	other := createNote(t, app, bob.ID, "kept", "")

	_, err := app.CommentsService.AddComment(ctx, note.ID, bob.ID, "first!")
	require.NoError(t, err)
	_, err = app.CommentsService.AddComment(ctx, other.ID, alice.ID, "hello")
	require.NoError(t, err)
	_, err = app.FavoritesService.ToggleFavorite(ctx, bob.ID, note.ID)
	require.NoError(t, err)
	_, err = app.FavoritesService.ToggleFavorite(ctx, bob.ID, other.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, app.NotesService.DeleteNote(ctx, note.ID, bob.ID), usecase.ErrNotFound)
	_, err = app.Notes.GetNoteByID(ctx, note.ID)
	require.NoError(t, err)

	require.NoError(t, app.NotesService.DeleteNote(ctx, note.ID, alice.ID))

	_, err = app.Notes.GetNoteByID(ctx, note.ID)
	assert.Error(t, err)
	assert.Equal(t, 1, app.Comments.Count())

	favorites, err := app.FavoritesService.GetFavorites(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, other.ID, favorites[0].ID)

	assert.ErrorIs(t, app.NotesService.DeleteNote(ctx, note.ID, alice.ID), usecase.ErrNotFound)
}

func TestSearchNotes(t *testing.T) {
	ctx := context.Background()
	app := newApp(t)
	alice := register(t, app, "alice")
	bob := register(t, app, "bob")
	createNote(t, app, alice.ID, "Shopping list", "Milk and EGGS")
	createNote(t, app, alice.ID, "Ideas", "a (b) c")
	createNote(t, app, bob.ID, "Eggs benedict", "recipe")

	t.Run("empty query", func(t *testing.T) {
		_, err := app.NotesService.SearchNotes(ctx, alice.ID, "  ")
		assert.ErrorIs(t, err, usecase.ErrValidation)
	})

	t.Run("no match", func(t *testing.T) {
		found, err := app.NotesService.SearchNotes(ctx, alice.ID, "zebra")
		require.NoError(t, err)
		assert.NotNil(t, found)
		assert.Empty(t, found)
	})

	t.Run("case insensitive over title and content", func(t *testing.T) {
		found, err := app.NotesService.SearchNotes(ctx, alice.ID, "eggs")
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "Shopping list", found[0].Title)

		found, err = app.NotesService.SearchNotes(ctx, alice.ID, "SHOPPING")
		require.NoError(t, err)
		assert.Len(t, found, 1)
	})

	t.Run("special characters are literal", func(t *testing.T) {
		found, err := app.NotesService.SearchNotes(ctx, alice.ID, "(b)")
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "Ideas", found[0].Title)
	})

	t.Run("all users", func(t *testing.T) {
		found, err := app.NotesService.SearchNotes(ctx, "", "eggs")
		require.NoError(t, err)
		assert.Len(t, found, 2)
	})
}

func TestUploadNoteImage(t *testing.T) {
	ctx := context.Background()
	app := newApp(t)
	alice := register(t, app, "alice")

	url, err := app.NotesService.UploadImage(ctx, alice.ID, usecase.Upload{
		Filename: "../../etc/cat photo.png",
		Content:  bytes.NewReader(testutils.PNG()),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, services.PublicUploadPath))
	assert.True(t, strings.HasSuffix(url, "_cat_photo.png"))

	_, err = app.NotesService.UploadImage(ctx, alice.ID, usecase.Upload{Filename: "a.png", Content: strings.NewReader("nope")})
	assert.ErrorIs(t, err, usecase.ErrValidation)

	big := bytes.Repeat([]byte{0}, testutils.TestMaxSize+1)
	_, err = app.NotesService.UploadImage(ctx, alice.ID, usecase.Upload{Filename: "big.png", Content: bytes.NewReader(big)})
	assert.ErrorIs(t, err, usecase.ErrValidation)
	assert.Equal(t, "File too large", usecase.Message(err))

	_, err = app.NotesService.UploadImage(ctx, alice.ID, usecase.Upload{Filename: "empty.png"})
	assert.ErrorIs(t, err, usecase.ErrValidation)

	assert.Len(t, app.Storage.Names(), 1)
}
