package usecase_test

import (
	"context"
	"testing"

	"noteshare/model"
	"noteshare/test/testutils"
	"noteshare/usecase"

	"github.com/stretchr/testify/require"
)

const testPassword = "s3cret-pass"

func newApp(t *testing.T) *testutils.App {
	t.Helper()
	testutils.SetupTestEnvironment()
	return testutils.NewApp(nil)
}

func register(t *testing.T, app *testutils.App, username string) *model.User {
	t.Helper()
	user, err := app.UserService.Register(context.Background(), usecase.RegisterInput{
		Username: username,
		Password: testPassword,
	})
	require.NoError(t, err)
	return user
}

func login(t *testing.T, app *testutils.App, username string) *usecase.LoginResult {
	t.Helper()
	res, err := app.UserService.Login(context.Background(), usecase.LoginInput{
		Username:  username,
		Password:  testPassword,
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		IPAddress: "127.0.0.1",
	})
	require.NoError(t, err)
	return res
}

func createNote(t *testing.T, app *testutils.App, ownerID, title, content string) *model.Note {
	t.Helper()
	note, err := app.NotesService.CreateNote(context.Background(), ownerID, usecase.NoteInput{
		Title:   title,
		Content: &content,
	})
	require.NoError(t, err)
	return note
}

func strPtr(s string) *string {
	return &s
}
